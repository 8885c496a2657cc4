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

package value

import (
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

func errUnhashable(v Value) error {
	return errors.New(errors.Type, token.NoPos, "unhashable type: %q", v.Type())
}

// Hash returns v's hash, failing with TypeError if v is not hashable (spec
// §4.1).
func Hash(v Value) (uint32, error) {
	h, ok := v.(Hashable)
	if !ok {
		return 0, errUnhashable(v)
	}
	return h.Hash()
}

// Equal implements structural equality within a type; cross-type equality
// is false except Bool/Int which are never equal to each other even when
// both "truthy" the same way (spec §4.1 "strict typing").
func Equal(x, y Value) (bool, error) {
	switch a := x.(type) {
	case NoneType:
		_, ok := y.(NoneType)
		return ok, nil
	case Bool:
		b, ok := y.(Bool)
		return ok && a == b, nil
	case Int:
		b, ok := y.(Int)
		return ok && a == b, nil
	case Str:
		b, ok := y.(Str)
		return ok && a == b, nil
	case Tuple:
		b, ok := y.(Tuple)
		if !ok || len(a) != len(b) {
			return false, nil
		}
		for i := range a {
			eq, err := Equal(a[i], b[i])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *List:
		b, ok := y.(*List)
		if !ok || len(a.elems) != len(b.elems) {
			return false, nil
		}
		for i := range a.elems {
			eq, err := Equal(a.elems[i], b.elems[i])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *Dict:
		b, ok := y.(*Dict)
		if !ok || a.Len() != b.Len() {
			return false, nil
		}
		for _, k := range a.Keys() {
			av, _ := a.Get(k)
			bv, found := b.Get(k)
			if !found {
				return false, nil
			}
			eq, err := Equal(av, bv)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *Struct:
		b, ok := y.(*Struct)
		if !ok || a.provider != b.provider || len(a.fields) != len(b.fields) {
			return false, nil
		}
		for name, av := range a.fields {
			bv, found := b.fields[name]
			if !found {
				return false, nil
			}
			eq, err := Equal(av, bv)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *Depset:
		b, ok := y.(*Depset)
		if !ok || a.order != b.order {
			return false, nil
		}
		ae, be := a.ToList(), b.ToList()
		if len(ae) != len(be) {
			return false, nil
		}
		for i := range ae {
			eq, err := Equal(ae[i], be[i])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	default:
		return x == y, nil
	}
}

// Compare implements ordering for Int/Int, Str/Str, and element-wise for
// Lists/Tuples of comparable elements (spec §4.1). Returns -1, 0, or 1.
func Compare(x, y Value) (int, error) {
	switch a := x.(type) {
	case Int:
		b, ok := y.(Int)
		if !ok {
			return 0, incomparable(x, y)
		}
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case Str:
		b, ok := y.(Str)
		if !ok {
			return 0, incomparable(x, y)
		}
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case Tuple:
		b, ok := y.(Tuple)
		if !ok {
			return 0, incomparable(x, y)
		}
		return compareSeq(a, b)
	case *List:
		b, ok := y.(*List)
		if !ok {
			return 0, incomparable(x, y)
		}
		return compareSeq(a.elems, b.elems)
	default:
		return 0, incomparable(x, y)
	}
}

func compareSeq(a, b []Value) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	default:
		return 0, nil
	}
}

func incomparable(x, y Value) error {
	return errors.New(errors.Type, token.NoPos, "cannot compare %s and %s", x.Type(), y.Type())
}
