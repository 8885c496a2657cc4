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
	"github.com/skylarklang/core/value"
)

// evalComprehension evaluates a list or dict comprehension in the current
// frame, with iteration variables shadowing outer bindings and restored
// exactly afterward (spec §4.5 "Comprehensions").
func evalComprehension(x *ast.Comprehension, env *Env) (value.Value, error) {
	names := map[string]bool{}
	for _, c := range x.Clauses {
		if fc, ok := c.(*ast.ForClause); ok {
			for _, n := range targetNames(fc.Targets) {
				names[n] = true
			}
		}
	}
	saved := map[string]value.Value{}
	hadSaved := map[string]bool{}
	for n := range names {
		if env.locals != nil {
			if v, ok := env.locals[n]; ok {
				saved[n] = v
				hadSaved[n] = true
			}
		}
	}
	defer func() {
		for n := range names {
			if hadSaved[n] {
				env.locals[n] = saved[n]
			} else if env.locals != nil {
				delete(env.locals, n)
			}
		}
	}()

	var listOut []value.Value
	dictOut := value.NewDict(value.NewScope())
	var runErr error

	var loop func(i int) bool // returns false to abort (error set)
	loop = func(i int) bool {
		if i == len(x.Clauses) {
			if x.IsDict {
				k, err := evalExpr(x.KeyBody, env)
				if err != nil {
					runErr = err
					return false
				}
				v, err := evalExpr(x.ValueBody, env)
				if err != nil {
					runErr = err
					return false
				}
				if err := dictOut.Put(x.Pos(), dictOut.Scope(), k, v); err != nil {
					runErr = err
					return false
				}
			} else {
				v, err := evalExpr(x.Body, env)
				if err != nil {
					runErr = err
					return false
				}
				listOut = append(listOut, v)
			}
			return true
		}
		switch c := x.Clauses[i].(type) {
		case *ast.ForClause:
			iv, err := evalExpr(c.In, env)
			if err != nil {
				runErr = err
				return false
			}
			iterable, ok := iv.(value.Iterable)
			if !ok {
				runErr = errors.New(errors.Type, c.In.Pos(), "%s is not iterable", iv.Type())
				return false
			}
			it := iterable.Iterate()
			defer it.Done()
			for {
				elem, ok := it.Next()
				if !ok {
					break
				}
				if err := assign(c.Targets, env, elem); err != nil {
					runErr = err
					return false
				}
				if !loop(i + 1) {
					return false
				}
			}
			return true
		case *ast.IfClause:
			cv, err := evalExpr(c.Cond, env)
			if err != nil {
				runErr = err
				return false
			}
			if !cv.Truth() {
				return true
			}
			return loop(i + 1)
		}
		return true
	}
	loop(0)
	if runErr != nil {
		return nil, runErr
	}
	if x.IsDict {
		return dictOut, nil
	}
	return value.NewList(value.NewScope(), listOut), nil
}

func targetNames(e ast.Expr) []string {
	switch x := e.(type) {
	case *ast.Ident:
		return []string{x.Name}
	case *ast.TupleExpr:
		var out []string
		for _, el := range x.Elts {
			out = append(out, targetNames(el)...)
		}
		return out
	case *ast.ListExpr:
		var out []string
		for _, el := range x.Elts {
			out = append(out, targetNames(el)...)
		}
		return out
	}
	return nil
}
