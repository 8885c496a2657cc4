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
	"github.com/skylarklang/core/hostbind"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// Env is the evaluator's per-call environment: either a function's locals
// (locals != nil) or the module top level (locals == nil, assignments go to
// module globals). Spec §3 "Module ... Lookup order inside an evaluating
// function frame: local → enclosing module → universe."
type Env struct {
	locals     map[string]value.Value
	module     *value.Module
	thread     *value.Thread
	postAssign func(name string, v value.Value) error

	registry *hostbind.Registry
	legacy   *hostbind.LegacyRegistry
}

func (e *Env) semHash() uint64 {
	if e.thread == nil {
		return 0
	}
	return e.thread.Semantics.Hash()
}

// Options configures the optional host-binding collaborators an evaluation
// may consult (spec §4.6).
type Options struct {
	Registry *hostbind.Registry
	Legacy   *hostbind.LegacyRegistry
}

type flow int

const (
	flowNone flow = iota
	flowBreak
	flowContinue
	flowReturn
)

// Evaluate executes file's top-level statements against module (spec §4.8
// step 6, §6 "evaluate"). Errors are recorded and execution continues with
// the next top-level statement, matching spec §7's propagation policy.
func Evaluate(file *ast.File, module *value.Module, thread *value.Thread, postAssign func(name string, v value.Value) error, opts *Options) *errors.List {
	errs := &errors.List{}
	env := &Env{module: module, thread: thread, postAssign: postAssign}
	if opts != nil {
		env.registry, env.legacy = opts.Registry, opts.Legacy
	}
	for _, stmt := range file.Stmts {
		if _, _, err := execStmt(stmt, env); err != nil {
			if e, ok := err.(errors.Error); ok {
				errs.Add(e)
			} else {
				errs.Addf(errors.Unknown, stmt.Pos(), "%v", err)
			}
		}
	}
	return errs
}

func execStmts(stmts []ast.Stmt, env *Env) (flow, value.Value, error) {
	for _, s := range stmts {
		fl, v, err := execStmt(s, env)
		if err != nil {
			return flowNone, nil, err
		}
		if fl != flowNone {
			return fl, v, nil
		}
	}
	return flowNone, nil, nil
}

func execStmt(stmt ast.Stmt, env *Env) (flow, value.Value, error) {
	if env.thread != nil {
		env.thread.CountOp()
	}
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		v, err := evalExpr(s.RHS, env)
		if err != nil {
			return flowNone, nil, err
		}
		if err := assign(s.LHS, env, v); err != nil {
			return flowNone, nil, err
		}
		return flowNone, nil, nil

	case *ast.AugAssignStmt:
		cur, err := evalExpr(s.LHS, env)
		if err != nil {
			return flowNone, nil, err
		}
		rhs, err := evalExpr(s.RHS, env)
		if err != nil {
			return flowNone, nil, err
		}
		nv, err := binaryOp(s.OpPos, augToBinary(s.Op), cur, rhs, false)
		if err != nil {
			return flowNone, nil, err
		}
		if err := assign(s.LHS, env, nv); err != nil {
			return flowNone, nil, err
		}
		return flowNone, nil, nil

	case *ast.DefStmt:
		defaults := make([]value.Value, 0, len(s.Params))
		for _, p := range s.Params {
			if p.Default != nil {
				dv, err := evalExpr(p.Default, env)
				if err != nil {
					return flowNone, nil, err
				}
				defaults = append(defaults, dv)
			}
		}
		fn := newFunction(s, env, defaults)
		if err := bindIdent(s.Name, env, fn); err != nil {
			return flowNone, nil, err
		}
		return flowNone, nil, nil

	case *ast.IfStmt:
		cond, err := evalExpr(s.Cond, env)
		if err != nil {
			return flowNone, nil, err
		}
		if cond.Truth() {
			return execStmts(s.Then, env)
		}
		return execStmts(s.Else, env)

	case *ast.ForStmt:
		iterVal, err := evalExpr(s.X, env)
		if err != nil {
			return flowNone, nil, err
		}
		iterable, ok := iterVal.(value.Iterable)
		if !ok {
			return flowNone, nil, errors.New(errors.Type, s.X.Pos(), "%s is not iterable", iterVal.Type())
		}
		it := iterable.Iterate()
		defer it.Done()
		for {
			elem, ok := it.Next()
			if !ok {
				break
			}
			if err := assign(s.Targets, env, elem); err != nil {
				return flowNone, nil, err
			}
			fl, v, err := execStmts(s.Body, env)
			if err != nil {
				return flowNone, nil, err
			}
			switch fl {
			case flowBreak:
				return flowNone, nil, nil
			case flowReturn:
				return flowReturn, v, nil
			}
		}
		return flowNone, nil, nil

	case *ast.ReturnStmt:
		if s.Result == nil {
			return flowReturn, value.None, nil
		}
		v, err := evalExpr(s.Result, env)
		if err != nil {
			return flowNone, nil, err
		}
		return flowReturn, v, nil

	case *ast.ExprStmt:
		_, err := evalExpr(s.X, env)
		return flowNone, nil, err

	case *ast.BranchStmt:
		switch s.Kind {
		case ast.Break:
			return flowBreak, nil, nil
		case ast.Continue:
			return flowContinue, nil, nil
		default:
			return flowNone, nil, nil
		}

	case *ast.LoadStmt:
		return flowNone, nil, errors.New(errors.Resolve, s.Pos(), "load statement must be handled by the graph layer, not the evaluator")
	}
	return flowNone, nil, nil
}

func augToBinary(op token.Token) token.Token {
	switch op {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.SLASH2_EQ:
		return token.SLASH2
	case token.PCT_EQ:
		return token.PCT
	case token.AMP_EQ:
		return token.AMP
	case token.PIPE_EQ:
		return token.PIPE
	case token.CARET_EQ:
		return token.CARET
	case token.LTLT_EQ:
		return token.LTLT
	case token.GTGT_EQ:
		return token.GTGT
	}
	return token.ILLEGAL
}

func bindIdent(id *ast.Ident, env *Env, v value.Value) error {
	switch id.Scope {
	case ast.ScopeLocal:
		if env.locals == nil {
			env.locals = map[string]value.Value{}
		}
		env.locals[id.Name] = v
		return nil
	default: // ScopeModule (the resolver never assigns ScopeUniverse/Undefined to a binding Ident)
		env.module.Set(id.Name, v)
		if env.postAssign != nil {
			if err := env.postAssign(id.Name, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// assign implements destructuring assignment to Ident/Tuple/List targets,
// and plain assignment to Index/Dot targets (spec §4.3, §4.5).
func assign(target ast.Expr, env *Env, v value.Value) error {
	switch t := target.(type) {
	case *ast.Ident:
		return bindIdent(t, env, v)
	case *ast.TupleExpr:
		return assignSeq(t.Pos(), t.Elts, env, v)
	case *ast.ListExpr:
		return assignSeq(t.Pos(), t.Elts, env, v)
	case *ast.IndexExpr:
		xv, err := evalExpr(t.X, env)
		if err != nil {
			return err
		}
		iv, err := evalExpr(t.Index, env)
		if err != nil {
			return err
		}
		return setIndex(t.Pos(), xv, iv, v, env)
	case *ast.DotExpr:
		return errors.New(errors.Type, t.Pos(), "cannot assign to attribute %q directly", t.Sel.Name)
	}
	return errors.New(errors.Value, target.Pos(), "invalid assignment target")
}

func assignSeq(pos token.Pos, targets []ast.Expr, env *Env, v value.Value) error {
	iterable, ok := v.(value.Iterable)
	if !ok {
		return errors.New(errors.Type, pos, "cannot unpack non-iterable %s", v.Type())
	}
	it := iterable.Iterate()
	defer it.Done()
	var elems []value.Value
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		elems = append(elems, e)
	}
	if len(elems) != len(targets) {
		return errors.New(errors.Value, pos, "too %s values to unpack (want %d, got %d)",
			tooWord(len(elems), len(targets)), len(targets), len(elems))
	}
	for i, tgt := range targets {
		if err := assign(tgt, env, elems[i]); err != nil {
			return err
		}
	}
	return nil
}

func tooWord(got, want int) string {
	if got < want {
		return "few"
	}
	return "many"
}
