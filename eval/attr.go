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
	"reflect"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/hostbind"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// evalDot implements the attribute-access dispatch chain (spec §4.5 "x.f"):
// struct field → built-in method table → host-method registry → legacy
// registry → AttributeError with a "did you mean" suggestion.
func evalDot(x *ast.DotExpr, env *Env) (value.Value, error) {
	xv, err := evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	name := x.Sel.Name

	if attrs, ok := xv.(value.HasAttrs); ok {
		if v, aerr := attrs.Attr(name); aerr == nil {
			return v, nil
		}
	}

	if fn, ok := builtinMethod(xv, name); ok {
		return fn, nil
	}

	if host, ok := xv.(*value.Host); ok && env.registry != nil {
		t := reflect.TypeOf(host.Underlying)
		if d, found := env.registry.Lookup(t, name, env.semHash()); found {
			return bindDescriptor(host, d), nil
		}
	}

	if env.legacy != nil {
		t := reflect.TypeOf(xv)
		recv := xv
		if host, ok := xv.(*value.Host); ok {
			t = reflect.TypeOf(host.Underlying)
		}
		if fn, found := env.legacy.Lookup(t, name); found {
			bf := value.NewBuiltin(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
				return fn(th, recv, args, kwargs)
			})
			return bf, nil
		}
	}

	return nil, errors.New(errors.Type, x.Pos(), "%s has no field or method %q%s",
		xv.Type(), name, suggestAttr(name, attrNamesOf(xv)))
}

func bindDescriptor(recv value.Value, d *hostbind.Descriptor) value.Value {
	return value.NewBuiltin(d.Name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
		return hostbind.Invoke(th, recv, pos, nil, d, args, kwargs)
	})
}

func attrNamesOf(v value.Value) []string {
	if a, ok := v.(value.HasAttrs); ok {
		return a.AttrNames()
	}
	return builtinMethodNames(v)
}

func suggestAttr(name string, names []string) string {
	best, bestDist := "", -1
	for _, c := range names {
		d := editDist(name, c)
		if d <= 2 && (bestDist == -1 || d < bestDist) {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return " (did you mean \"" + best + "\"?)"
}

func editDist(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1
			if cur[j-1]+1 < m {
				m = cur[j-1] + 1
			}
			if prev[j-1]+cost < m {
				m = prev[j-1] + cost
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
