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

package hostbind_test

import (
	"reflect"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/hostbind"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

type widget struct {
	name string
}

func greetDescriptor() *hostbind.Descriptor {
	return &hostbind.Descriptor{
		Kind: hostbind.Method,
		Name: "greet",
		Params: []hostbind.ParamSpec{
			{Name: "prefix", Positional: true, Named: true, Default: value.Str("hello")},
		},
		Func: func(th *value.Thread, recv value.Value, pos token.Pos, callNode interface{}, positional []value.Value, named map[string]value.Value) (value.Value, error) {
			w := recv.(*hostWrapper).w
			prefix := string(positional[0].(value.Str))
			return value.Str(prefix + " " + w.name), nil
		},
	}
}

type hostWrapper struct{ w *widget }

func (h *hostWrapper) Type() string   { return "widget" }
func (h *hostWrapper) Truth() bool    { return true }
func (h *hostWrapper) String() string { return h.w.name }
func (h *hostWrapper) Freeze()        {}

func newRegistry(calls *int) *hostbind.Registry {
	return hostbind.NewRegistry(func(t reflect.Type, name string) (*hostbind.Descriptor, bool) {
		*calls++
		if name != "greet" {
			return nil, false
		}
		return greetDescriptor(), true
	})
}

func TestRegistryMemoisesByTypeNameAndSemantics(t *testing.T) {
	var providerCalls int
	reg := newRegistry(&providerCalls)
	typ := reflect.TypeOf(widget{})

	d1, ok := reg.Lookup(typ, "greet", 0)
	qt.Assert(t, qt.IsTrue(ok))
	d2, ok := reg.Lookup(typ, "greet", 0)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d1, d2))
	qt.Assert(t, qt.Equals(providerCalls, 1))

	// A different semantics hash is a distinct cache key (spec §4.6: "flag
	// change invalidates the cached entry").
	_, ok = reg.Lookup(typ, "greet", 42)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(providerCalls, 2))
}

func TestRegistryLookupMissReturnsFalse(t *testing.T) {
	var providerCalls int
	reg := newRegistry(&providerCalls)
	_, ok := reg.Lookup(reflect.TypeOf(widget{}), "nope", 0)
	qt.Assert(t, qt.IsFalse(ok))
}

func TestInvokeBindsDefaultAndPositionalArgs(t *testing.T) {
	d := greetDescriptor()
	recv := &hostWrapper{w: &widget{name: "gopher"}}
	th := value.NewThread(&value.Semantics{})

	out, err := hostbind.Invoke(th, recv, token.NoPos, nil, d, nil, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(out, value.Value(value.Str("hello gopher"))))

	out, err = hostbind.Invoke(th, recv, token.NoPos, nil, d, value.Tuple{value.Str("hi")}, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(out, value.Value(value.Str("hi gopher"))))

	out, err = hostbind.Invoke(th, recv, token.NoPos, nil, d, nil, []value.Kwarg{{Name: "prefix", Value: value.Str("yo")}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(out, value.Value(value.Str("yo gopher"))))
}

func extrasDescriptor(wantLocation, wantThread, wantSemantics bool) *hostbind.Descriptor {
	return &hostbind.Descriptor{
		Kind:          hostbind.Method,
		Name:          "extras",
		WantLocation:  wantLocation,
		WantThread:    wantThread,
		WantSemantics: wantSemantics,
		Func: func(th *value.Thread, recv value.Value, pos token.Pos, callNode interface{}, positional []value.Value, named map[string]value.Value) (value.Value, error) {
			got := map[string]value.Value{}
			if pos != token.NoPos {
				got["pos"] = value.Bool(true)
			}
			if th != nil {
				got["thread"] = value.Bool(true)
				if th.Semantics != nil && th.Semantics.Get("x") {
					got["semantics"] = value.Bool(true)
				}
			}
			d := value.NewDict(value.NewScope())
			for k, v := range got {
				d.Put(token.NoPos, d.Scope(), value.Str(k), v)
			}
			return d, nil
		},
	}
}

func TestInvokeGatesLocationThreadAndSemanticsExtras(t *testing.T) {
	recv := &hostWrapper{w: &widget{name: "gopher"}}
	sem := value.NewSemantics(map[string]bool{"x": true})
	th := value.NewThread(sem)
	somePos := token.NewFile("extras_test.sky", 1).Pos(0)

	out, err := hostbind.Invoke(th, recv, somePos, nil, extrasDescriptor(false, false, false), nil, nil)
	qt.Assert(t, qt.IsNil(err))
	d := out.(*value.Dict)
	qt.Assert(t, qt.Equals(d.Len(), 0))

	out, err = hostbind.Invoke(th, recv, somePos, nil, extrasDescriptor(true, true, false), nil, nil)
	qt.Assert(t, qt.IsNil(err))
	d = out.(*value.Dict)
	_, hasPos := d.Get(value.Str("pos"))
	_, hasThread := d.Get(value.Str("thread"))
	qt.Assert(t, qt.IsTrue(hasPos))
	qt.Assert(t, qt.IsTrue(hasThread))

	// Wanting only semantics (not the full thread) still surfaces the
	// active semantics flag through a bare thread.
	out, err = hostbind.Invoke(th, recv, somePos, nil, extrasDescriptor(false, false, true), nil, nil)
	qt.Assert(t, qt.IsNil(err))
	d = out.(*value.Dict)
	_, hasSemantics := d.Get(value.Str("semantics"))
	qt.Assert(t, qt.IsTrue(hasSemantics))
}

func TestInvokeRejectsPositionalAndKeywordForSameParam(t *testing.T) {
	d := greetDescriptor()
	recv := &hostWrapper{w: &widget{name: "gopher"}}
	th := value.NewThread(&value.Semantics{})

	_, err := hostbind.Invoke(th, recv, token.NoPos, nil, d,
		value.Tuple{value.Str("hi")},
		[]value.Kwarg{{Name: "prefix", Value: value.Str("yo")}})
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
