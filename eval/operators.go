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

func evalUnary(x *ast.UnaryExpr, env *Env) (value.Value, error) {
	v, err := evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case token.NOT:
		return value.Bool(!v.Truth()), nil
	case token.MINUS:
		i, ok := v.(value.Int)
		if !ok {
			return nil, errors.New(errors.Type, x.Pos(), "unary - not supported on %s", v.Type())
		}
		return value.SubInt(x.Pos(), 0, i)
	case token.PLUS:
		if _, ok := v.(value.Int); !ok {
			return nil, errors.New(errors.Type, x.Pos(), "unary + not supported on %s", v.Type())
		}
		return v, nil
	case token.TILDE:
		i, ok := v.(value.Int)
		if !ok {
			return nil, errors.New(errors.Type, x.Pos(), "unary ~ not supported on %s", v.Type())
		}
		return value.Int(^int64(i)), nil
	}
	return nil, errors.New(errors.Type, x.Pos(), "unsupported unary operator %s", x.Op)
}

// evalBinary evaluates a BinaryExpr, short-circuiting `and`/`or` before
// evaluating the right operand (spec §4.3 "documented short-circuit for
// and/or").
func evalBinary(x *ast.BinaryExpr, env *Env) (value.Value, error) {
	switch x.Op {
	case token.AND:
		l, err := evalExpr(x.X, env)
		if err != nil {
			return nil, err
		}
		if !l.Truth() {
			return l, nil
		}
		return evalExpr(x.Y, env)
	case token.OR:
		l, err := evalExpr(x.X, env)
		if err != nil {
			return nil, err
		}
		if l.Truth() {
			return l, nil
		}
		return evalExpr(x.Y, env)
	}
	l, err := evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(x.Y, env)
	if err != nil {
		return nil, err
	}
	return binaryOp(x.OpPos, x.Op, l, r, x.Not)
}

// binaryOp implements every non-short-circuit binary operator, shared by
// BinaryExpr and AugAssignStmt evaluation.
func binaryOp(pos token.Pos, op token.Token, l, r value.Value, not bool) (value.Value, error) {
	switch op {
	case token.PLUS:
		return add(pos, l, r)
	case token.MINUS:
		li, lok := l.(value.Int)
		ri, rok := r.(value.Int)
		if !lok || !rok {
			return nil, typeErr(pos, "-", l, r)
		}
		return value.SubInt(pos, li, ri)
	case token.STAR:
		li, lok := l.(value.Int)
		ri, rok := r.(value.Int)
		if !lok || !rok {
			return nil, typeErr(pos, "*", l, r)
		}
		return value.MulInt(pos, li, ri)
	case token.SLASH2:
		li, lok := l.(value.Int)
		ri, rok := r.(value.Int)
		if !lok || !rok {
			return nil, typeErr(pos, "//", l, r)
		}
		return value.FloorDivInt(pos, li, ri)
	case token.PCT:
		if ls, ok := l.(value.Str); ok {
			s, err := value.Format(pos, string(ls), r)
			if err != nil {
				return nil, err
			}
			return value.Str(s), nil
		}
		li, lok := l.(value.Int)
		ri, rok := r.(value.Int)
		if !lok || !rok {
			return nil, typeErr(pos, "%", l, r)
		}
		return value.ModInt(pos, li, ri)
	case token.AMP, token.PIPE, token.CARET, token.LTLT, token.GTGT:
		return bitwise(pos, op, l, r)
	case token.EQ:
		eq, err := value.Equal(l, r)
		return value.Bool(eq), err
	case token.NE:
		eq, err := value.Equal(l, r)
		return value.Bool(!eq), err
	case token.LT, token.GT, token.LE, token.GE:
		c, err := value.Compare(l, r)
		if err != nil {
			return nil, err
		}
		return value.Bool(cmpMatches(op, c)), nil
	case token.IN:
		ok, err := membership(pos, l, r)
		if err != nil {
			return nil, err
		}
		if not {
			ok = !ok
		}
		return value.Bool(ok), nil
	}
	return nil, errors.New(errors.Type, pos, "unsupported binary operator %s", op)
}

func cmpMatches(op token.Token, c int) bool {
	switch op {
	case token.LT:
		return c < 0
	case token.GT:
		return c > 0
	case token.LE:
		return c <= 0
	case token.GE:
		return c >= 0
	}
	return false
}

func add(pos token.Pos, l, r value.Value) (value.Value, error) {
	switch a := l.(type) {
	case value.Int:
		b, ok := r.(value.Int)
		if !ok {
			return nil, typeErr(pos, "+", l, r)
		}
		return value.AddInt(pos, a, b)
	case value.Str:
		b, ok := r.(value.Str)
		if !ok {
			return nil, typeErr(pos, "+", l, r)
		}
		return a + b, nil
	case *value.List:
		b, ok := r.(*value.List)
		if !ok {
			return nil, typeErr(pos, "+", l, r)
		}
		return value.NewList(value.NewScope(), append(append([]value.Value(nil), a.Elems()...), b.Elems()...)), nil
	case value.Tuple:
		b, ok := r.(value.Tuple)
		if !ok {
			return nil, typeErr(pos, "+", l, r)
		}
		return append(append(value.Tuple(nil), a...), b...), nil
	}
	return nil, typeErr(pos, "+", l, r)
}

func bitwise(pos token.Pos, op token.Token, l, r value.Value) (value.Value, error) {
	li, lok := l.(value.Int)
	ri, rok := r.(value.Int)
	if !lok || !rok {
		return nil, typeErr(pos, op.String(), l, r)
	}
	switch op {
	case token.AMP:
		return value.Int(int64(li) & int64(ri)), nil
	case token.PIPE:
		return value.Int(int64(li) | int64(ri)), nil
	case token.CARET:
		return value.Int(int64(li) ^ int64(ri)), nil
	case token.LTLT:
		return value.ShiftLeft(pos, li, ri)
	case token.GTGT:
		return value.ShiftRight(pos, li, ri)
	}
	return nil, errors.New(errors.Type, pos, "unsupported operator %s", op)
}

func membership(pos token.Pos, needle, haystack value.Value) (bool, error) {
	switch h := haystack.(type) {
	case *value.Dict:
		_, ok := h.Get(needle)
		return ok, nil
	case value.Str:
		needleStr, ok := needle.(value.Str)
		if !ok {
			return false, errors.New(errors.Type, pos, "'in <string>' requires string as left operand")
		}
		return stringContains(string(h), string(needleStr)), nil
	case value.Iterable:
		it := h.Iterate()
		defer it.Done()
		for {
			e, ok := it.Next()
			if !ok {
				return false, nil
			}
			eq, err := value.Equal(needle, e)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
	}
	return false, errors.New(errors.Type, pos, "argument of type %s is not iterable", haystack.Type())
}

func stringContains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func typeErr(pos token.Pos, op string, l, r value.Value) error {
	return errors.New(errors.Type, pos, "unsupported operand types for %s: %s and %s", op, l.Type(), r.Type())
}
