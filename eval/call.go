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

// evalCall implements the uniform call protocol's argument-gathering steps
// (spec §4.5 steps 1–3); steps 4–7 are the callee's responsibility via
// value.BindArgs / host descriptor binding.
func evalCall(x *ast.CallExpr, env *Env) (value.Value, error) {
	fnVal, err := evalExpr(x.Fn, env)
	if err != nil {
		return nil, err
	}
	var positional []value.Value
	var kwargs []value.Kwarg
	for _, a := range x.Args {
		switch {
		case a.Star:
			v, err := evalExpr(a.Value, env)
			if err != nil {
				return nil, err
			}
			iterable, ok := v.(value.Iterable)
			if !ok {
				return nil, errors.New(errors.Type, a.Value.Pos(), "argument following * must be iterable, not %s", v.Type())
			}
			it := iterable.Iterate()
			for {
				e, ok := it.Next()
				if !ok {
					break
				}
				positional = append(positional, e)
			}
			it.Done()
		case a.DStar:
			v, err := evalExpr(a.Value, env)
			if err != nil {
				return nil, err
			}
			d, ok := v.(*value.Dict)
			if !ok {
				return nil, errors.New(errors.Type, a.Value.Pos(), "argument following ** must be a dict, not %s", v.Type())
			}
			for _, k := range d.Keys() {
				ks, ok := k.(value.Str)
				if !ok {
					return nil, errors.New(errors.Type, a.Value.Pos(), "keywords from ** must be strings")
				}
				val, _ := d.Get(k)
				kwargs = append(kwargs, value.Kwarg{Name: string(ks), Value: val})
			}
		case a.Name != nil:
			v, err := evalExpr(a.Value, env)
			if err != nil {
				return nil, err
			}
			kwargs = append(kwargs, value.Kwarg{Name: a.Name.Name, Value: v})
		default:
			v, err := evalExpr(a.Value, env)
			if err != nil {
				return nil, err
			}
			positional = append(positional, v)
		}
	}
	if err := value.DuplicateKeywords(x.Pos(), kwargs); err != nil {
		return nil, err
	}
	callable, ok := fnVal.(value.Callable)
	if !ok {
		return nil, errors.New(errors.Type, x.Pos(), "%s is not callable", fnVal.Type())
	}
	return callable.Call(env.thread, x.Pos(), value.Tuple(positional), kwargs)
}
