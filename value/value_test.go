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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/token"
)

func TestIntArithmeticIdentity(t *testing.T) {
	for _, ab := range [][2]int64{{3, 4}, {-7, 2}, {0, 0}, {1 << 40, -(1 << 39)}} {
		a, b := Int(ab[0]), Int(ab[1])
		sum, err := AddInt(token.NoPos, a, b)
		qt.Assert(t, qt.IsNil(err))
		back, err := SubInt(token.NoPos, sum, b)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(back, a))
	}
}

func TestIntOverflow(t *testing.T) {
	_, err := AddInt(token.NoPos, Int(1<<62), Int(1<<62))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestFloorDivModIdentity(t *testing.T) {
	cases := [][2]int64{{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {0, 5}}
	for _, c := range cases {
		a, b := Int(c[0]), Int(c[1])
		q, err := FloorDivInt(token.NoPos, a, b)
		qt.Assert(t, qt.IsNil(err))
		m, err := ModInt(token.NoPos, a, b)
		qt.Assert(t, qt.IsNil(err))
		mul, err := MulInt(token.NoPos, q, b)
		qt.Assert(t, qt.IsNil(err))
		sum, err := AddInt(token.NoPos, mul, m)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(sum, a))
		if int64(m) != 0 {
			qt.Assert(t, qt.Equals(int64(m) < 0, b < 0))
		}
	}
}

func TestDictOrderingAfterPopAndReinsert(t *testing.T) {
	sc := NewScope()
	d := NewDict(sc)
	qt.Assert(t, qt.IsNil(d.Put(token.NoPos, sc, Int(0), Int(0))))
	qt.Assert(t, qt.IsNil(d.Put(token.NoPos, sc, Int(2), Int(2))))
	qt.Assert(t, qt.IsNil(d.Put(token.NoPos, sc, Int(1), Int(1))))
	_, found, err := d.Delete(token.NoPos, sc, Int(2))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(found))
	qt.Assert(t, qt.IsNil(d.Put(token.NoPos, sc, Int(0), Str("a"))))
	qt.Assert(t, qt.IsNil(d.Put(token.NoPos, sc, Int(2), Str("b"))))

	var gotKeys []int64
	for _, k := range d.Keys() {
		gotKeys = append(gotKeys, int64(k.(Int)))
	}
	qt.Assert(t, qt.DeepEquals(gotKeys, []int64{0, 1, 2}))

	v0, _ := d.Get(Int(0))
	qt.Assert(t, qt.Equals(v0, Value(Str("a"))))
	v2, _ := d.Get(Int(2))
	qt.Assert(t, qt.Equals(v2, Value(Str("b"))))
}

func TestFreezeIsMonotone(t *testing.T) {
	sc := NewScope()
	l := NewList(sc, []Value{Int(1)})
	qt.Assert(t, qt.IsFalse(sc.Frozen()))
	l.Freeze()
	qt.Assert(t, qt.IsTrue(sc.Frozen()))
	err := l.Append(token.NoPos, sc, Int(2))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestMutateAcrossScopesFails(t *testing.T) {
	owner := NewScope()
	other := NewScope()
	l := NewList(owner, nil)
	err := l.Append(token.NoPos, other, Int(1))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestConcurrentModificationDuringIteration(t *testing.T) {
	sc := NewScope()
	l := NewList(sc, []Value{Int(1), Int(2)})
	it := l.Iterate()
	err := l.Append(token.NoPos, sc, Int(3))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
	it.Done()
	qt.Assert(t, qt.IsNil(l.Append(token.NoPos, sc, Int(3))))
}

func TestTupleHashRequiresHashableElements(t *testing.T) {
	sc := NewScope()
	_, err := Tuple{Int(1), NewList(sc, nil)}.Hash()
	qt.Assert(t, qt.Not(qt.IsNil(err)))

	h, err := Tuple{Int(1), Str("x")}.Hash()
	qt.Assert(t, qt.IsNil(err))
	h2, err := Tuple{Int(1), Str("x")}.Hash()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h, h2))
}

func TestStructEqualIsStructural(t *testing.T) {
	sc := NewScope()
	a := NewStruct(sc, "widget", map[string]Value{"x": Int(1)}, []string{"x"})
	b := NewStruct(sc, "widget", map[string]Value{"x": Int(1)}, []string{"x"})
	eq, err := Equal(a, b)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(eq))

	c := NewStruct(sc, "widget", map[string]Value{"x": Int(2)}, []string{"x"})
	eq, err = Equal(a, c)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(eq))

	d := NewStruct(sc, "gadget", map[string]Value{"x": Int(1)}, []string{"x"})
	eq, err = Equal(a, d)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(eq))
}

func TestDepsetEqualIsStructural(t *testing.T) {
	sc := NewScope()
	a := NewDepset(sc, Default, []Value{Int(1), Int(2)}, nil)
	b := NewDepset(sc, Default, []Value{Int(1), Int(2)}, nil)
	eq, err := Equal(a, b)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(eq))

	c := NewDepset(sc, Default, []Value{Int(2), Int(1)}, nil)
	eq, err = Equal(a, c)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(eq))
}

func TestFormatDirectives(t *testing.T) {
	out, err := Format(token.NoPos, "%s is %d (%r)", Tuple{Str("x"), Int(3), Str("y")})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(out, `x is 3 ("y")`))

	_, err = Format(token.NoPos, "%s", Int(3))
	qt.Assert(t, qt.IsNil(err))

	_, err = Format(token.NoPos, "%s %s", Str("one"))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
