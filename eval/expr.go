// Copyright 2024 The Skylark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eval

import (
	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

func evalExpr(expr ast.Expr, env *Env) (value.Value, error) {
	switch x := expr.(type) {
	case *ast.Ident:
		return lookupIdent(x, env)
	case *ast.BasicLit:
		return evalLit(x)
	case *ast.ListExpr:
		elems, err := evalExprList(x.Elts, env)
		if err != nil {
			return nil, err
		}
		return value.NewList(value.NewScope(), elems), nil
	case *ast.TupleExpr:
		elems, err := evalExprList(x.Elts, env)
		if err != nil {
			return nil, err
		}
		return value.Tuple(elems), nil
	case *ast.DictExpr:
		d := value.NewDict(value.NewScope())
		for _, e := range x.Entries {
			k, err := evalExpr(e.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := evalExpr(e.Value, env)
			if err != nil {
				return nil, err
			}
			if existing, ok := d.Get(k); ok {
				_ = existing
				return nil, errors.New(errors.Value, e.Key.Pos(), "duplicate key %s in dict literal", value.Sprint(k))
			}
			if err := d.Put(e.Key.Pos(), d.Scope(), k, v); err != nil {
				return nil, err
			}
		}
		return d, nil
	case *ast.Comprehension:
		return evalComprehension(x, env)
	case *ast.DotExpr:
		return evalDot(x, env)
	case *ast.IndexExpr:
		return evalIndex(x, env)
	case *ast.SliceExpr:
		return evalSlice(x, env)
	case *ast.UnaryExpr:
		return evalUnary(x, env)
	case *ast.BinaryExpr:
		return evalBinary(x, env)
	case *ast.CondExpr:
		c, err := evalExpr(x.Cond, env)
		if err != nil {
			return nil, err
		}
		if c.Truth() {
			return evalExpr(x.X, env)
		}
		return evalExpr(x.Else, env)
	case *ast.CallExpr:
		return evalCall(x, env)
	case *ast.LambdaExpr:
		return evalLambda(x, env)
	}
	return nil, errors.New(errors.Value, expr.Pos(), "unhandled expression")
}

func evalExprList(exprs []ast.Expr, env *Env) ([]value.Value, error) {
	out := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func lookupIdent(id *ast.Ident, env *Env) (value.Value, error) {
	switch id.Scope {
	case ast.ScopeLocal:
		if env.locals != nil {
			if v, ok := env.locals[id.Name]; ok {
				return v, nil
			}
		}
		return nil, errors.New(errors.Name, id.Pos(), "local variable %q referenced before assignment%s",
			id.Name, suggestAttr(id.Name, identNamesOf(env)))
	case ast.ScopeModule:
		if v, ok := env.module.Lookup(id.Name); ok {
			return v, nil
		}
	case ast.ScopeUniverse, ast.ScopePredeclared:
		if v, ok := env.module.Universe.Lookup(id.Name); ok {
			return v, nil
		}
	}
	return nil, errors.New(errors.Name, id.Pos(), "undefined: %s%s", id.Name, suggestAttr(id.Name, identNamesOf(env)))
}

// identNamesOf collects every name visible to env — locals, module globals,
// and universe/predeclared — for use in a lookupIdent "did you mean"
// suggestion (spec §12).
func identNamesOf(env *Env) []string {
	var names []string
	for n := range env.locals {
		names = append(names, n)
	}
	if env.module != nil {
		names = append(names, env.module.Names()...)
		if env.module.Universe != nil {
			names = append(names, env.module.Universe.Names()...)
		}
	}
	return names
}

func evalLit(x *ast.BasicLit) (value.Value, error) {
	switch x.Kind {
	case ast.IntLit:
		return value.Int(x.Int), nil
	case ast.StringLit:
		return value.Str(x.Str), nil
	case ast.BoolLit:
		return value.Bool(x.Bool), nil
	default:
		return value.None, nil
	}
}

func evalLambda(x *ast.LambdaExpr, env *Env) (value.Value, error) {
	decl := &ast.DefStmt{
		DefPos: x.LambdaPos,
		Name:   &ast.Ident{NamePos: x.LambdaPos, Name: "lambda", Scope: ast.ScopeLocal},
		Params: x.Params,
		Body:   []ast.Stmt{&ast.ReturnStmt{ReturnPos: x.Body.Pos(), Result: x.Body}},
		EndPos: x.Body.End(),
	}
	var defaults []value.Value
	for _, p := range x.Params {
		if p.Default != nil {
			dv, err := evalExpr(p.Default, env)
			if err != nil {
				return nil, err
			}
			defaults = append(defaults, dv)
		}
	}
	return newFunction(decl, env, defaults), nil
}

// ---- indexing & slicing ----

func evalIndex(x *ast.IndexExpr, env *Env) (value.Value, error) {
	xv, err := evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	iv, err := evalExpr(x.Index, env)
	if err != nil {
		return nil, err
	}
	return getIndex(x.Pos(), xv, iv)
}

func getIndex(pos token.Pos, xv, iv value.Value) (value.Value, error) {
	if d, ok := xv.(*value.Dict); ok {
		v, found := d.Get(iv)
		if !found {
			return nil, errors.New(errors.Index, pos, "key %s not found in dict", value.Sprint(iv))
		}
		return v, nil
	}
	ix, ok := xv.(value.Indexable)
	if !ok {
		return nil, errors.New(errors.Type, pos, "%s is not indexable", xv.Type())
	}
	n, err := asIndexInt(pos, iv)
	if err != nil {
		return nil, err
	}
	i := normalizeIndex(int(n), ix.Len())
	if i < 0 || i >= ix.Len() {
		return nil, errors.New(errors.Index, pos, "index out of range (index %d, len %d)", n, ix.Len())
	}
	return ix.Index(i), nil
}

func setIndex(pos token.Pos, xv, iv, v value.Value, env *Env) error {
	if d, ok := xv.(*value.Dict); ok {
		return d.Put(pos, d.Scope(), iv, v)
	}
	if l, ok := xv.(*value.List); ok {
		n, err := asIndexInt(pos, iv)
		if err != nil {
			return err
		}
		i := normalizeIndex(int(n), l.Len())
		return l.SetIndex(pos, l.Scope(), i, v)
	}
	return errors.New(errors.Type, pos, "%s does not support item assignment", xv.Type())
}

func asIndexInt(pos token.Pos, v value.Value) (int64, error) {
	i, ok := v.(value.Int)
	if !ok {
		return 0, errors.New(errors.Type, pos, "index must be int, got %s", v.Type())
	}
	return int64(i), nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

func evalSlice(x *ast.SliceExpr, env *Env) (value.Value, error) {
	xv, err := evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	sl, ok := xv.(value.Sliceable)
	if !ok {
		return nil, errors.New(errors.Type, x.Pos(), "%s does not support slicing", xv.Type())
	}
	step := 1
	if x.Step != nil {
		sv, err := evalExpr(x.Step, env)
		if err != nil {
			return nil, err
		}
		n, err := asIndexInt(x.Pos(), sv)
		if err != nil {
			return nil, err
		}
		step = int(n)
		if step == 0 {
			return nil, errors.New(errors.Value, x.Pos(), "slice step cannot be zero")
		}
	}
	length := sl.Len()
	lo, hi := 0, length
	if step < 0 {
		lo, hi = length-1, -1
	}
	if x.Lo != nil {
		v, err := evalExpr(x.Lo, env)
		if err != nil {
			return nil, err
		}
		n, err := asIndexInt(x.Pos(), v)
		if err != nil {
			return nil, err
		}
		lo = clampSlice(int(n), length, step < 0)
	}
	if x.Hi != nil {
		v, err := evalExpr(x.Hi, env)
		if err != nil {
			return nil, err
		}
		n, err := asIndexInt(x.Pos(), v)
		if err != nil {
			return nil, err
		}
		hi = clampSlice(int(n), length, step < 0)
	}
	return sl.Slice(lo, hi, step), nil
}

func clampSlice(i, n int, reversed bool) int {
	if i < 0 {
		i += n
	}
	if reversed {
		if i < -1 {
			i = -1
		}
		if i >= n {
			i = n - 1
		}
	} else {
		if i < 0 {
			i = 0
		}
		if i > n {
			i = n
		}
	}
	return i
}
