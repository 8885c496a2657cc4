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

import "strings"

// Tuple is trivially immutable (spec §4.1).
type Tuple []Value

func (t Tuple) Type() string { return "tuple" }
func (t Tuple) Truth() bool  { return len(t) != 0 }
func (t Tuple) Freeze()      {}
func (t Tuple) Len() int     { return len(t) }
func (t Tuple) Index(i int) Value { return t[i] }

func (t Tuple) Slice(lo, hi, step int) Value {
	var out Tuple
	if step == 1 {
		out = append(out, t[lo:hi]...)
	} else if step > 0 {
		for i := lo; i < hi; i += step {
			out = append(out, t[i])
		}
	} else {
		for i := lo; i > hi; i += step {
			out = append(out, t[i])
		}
	}
	return out
}

func (t Tuple) Iterate() Iterator { return &tupleIterator{t: t} }

type tupleIterator struct {
	t Tuple
	i int
}

func (it *tupleIterator) Next() (Value, bool) {
	if it.i >= len(it.t) {
		return nil, false
	}
	v := it.t[it.i]
	it.i++
	return v, true
}
func (it *tupleIterator) Done() {}

func (t Tuple) String() string { return t.Repr() }
func (t Tuple) Repr() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Sprint(e))
	}
	if len(t) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// Hash is valid only when every element is hashable (spec §4.1: "Tuples of
// hashable elements are hashable").
func (t Tuple) Hash() (uint32, error) {
	var h uint32 = 0x9e3779b9
	for _, e := range t {
		hv, ok := e.(Hashable)
		if !ok {
			return 0, errUnhashable(e)
		}
		eh, err := hv.Hash()
		if err != nil {
			return 0, err
		}
		h = h*31 + eh
	}
	return h, nil
}
