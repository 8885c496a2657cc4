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

// Package eval implements the tree-walking evaluator: statement execution,
// the uniform call protocol, comprehensions, attribute dispatch, and
// indexing/slicing (spec §4.5).
package eval

import (
	"fmt"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/hostbind"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// Function is a script-defined Callable: a closure over its defining
// module's globals, plus its signature and body statements (spec §3
// "Callable ... script-defined function").
type Function struct {
	name     string
	decl     *ast.DefStmt
	module   *value.Module
	defaults []value.Value // aligned with optional parameters, evaluated once at def time

	registry *hostbind.Registry
	legacy   *hostbind.LegacyRegistry

	label    string
	exported bool
}

func newFunction(decl *ast.DefStmt, env *Env, defaults []value.Value) *Function {
	return &Function{
		name: decl.Name.Name, decl: decl, module: env.module, defaults: defaults,
		registry: env.registry, legacy: env.legacy,
	}
}

func (f *Function) Type() string   { return "function" }
func (f *Function) Truth() bool    { return true }
func (f *Function) Freeze()        {}
func (f *Function) Name() string   { return f.name }
func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.name) }

func (f *Function) Export(label, name string) error {
	if f.exported {
		return nil
	}
	f.label, f.exported = label, true
	return nil
}
func (f *Function) Exported() bool { return f.exported }

func (f *Function) paramDescs() []value.ParamDesc {
	var out []value.ParamDesc
	defaultIdx := 0
	namedOnly := false
	for _, p := range f.decl.Params {
		switch {
		case p.Star:
			// `*args` also opens the named-only region for everything after
			// it, same as a bare `*` separator (spec §3 "Signature").
			namedOnly = true
			out = append(out, value.ParamDesc{Name: p.Name.Name, Kind: value.StarArgs})
		case p.DStar:
			out = append(out, value.ParamDesc{Name: p.Name.Name, Kind: value.StarStarKwargs})
		case p.StarMark:
			// bare separator: not itself a parameter
			namedOnly = true
		default:
			var def value.Value
			if p.Default != nil {
				def = f.defaults[defaultIdx]
				defaultIdx++
			}
			kind := value.Positional
			if namedOnly {
				kind = value.NamedOnly
			}
			out = append(out, value.ParamDesc{Name: p.Name.Name, Kind: kind, Default: def})
		}
	}
	return out
}

// Call implements the uniform call protocol's binding step for a
// script-defined function, then executes its body (spec §4.5).
func (f *Function) Call(th *value.Thread, pos token.Pos, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
	if err := value.DuplicateKeywords(pos, kwargs); err != nil {
		return nil, err
	}
	bound, err := value.BindArgs(pos, f.name, f.paramDescs(), args, kwargs)
	if err != nil {
		return nil, err
	}
	if _, err := th.Push(f, pos, true); err != nil {
		return nil, err
	}
	defer th.Pop()
	env := &Env{
		locals:   bound,
		module:   f.module,
		thread:   th,
		registry: f.registry,
		legacy:   f.legacy,
	}
	fl, ret, err := execStmts(f.decl.Body, env)
	if err != nil {
		if fe, ok := err.(errors.Error); ok {
			return nil, errors.WithCallSite(fe, pos)
		}
		return nil, err
	}
	if fl == flowReturn {
		return ret, nil
	}
	return value.None, nil
}
