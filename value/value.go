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
	"fmt"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Value is implemented by every runtime value (spec §3 "Value").
type Value interface {
	Type() string
	String() string // %s form
	Truth() bool
	Freeze() // recursively freezes reachable mutable values, no-op otherwise
}

// Repr is implemented by values whose %r form differs from %s (most
// composite values; strings quote themselves).
type Repr interface {
	Repr() string
}

func Sprint(v Value) string {
	if r, ok := v.(Repr); ok {
		return r.Repr()
	}
	return v.String()
}

// Hashable is implemented by values usable as dict keys or set elements
// (spec §4.1).
type Hashable interface {
	Value
	Hash() (uint32, error)
}

// Iterable is implemented by values that can be iterated with `for`.
type Iterable interface {
	Value
	Iterate() Iterator
}

// Iterator yields successive elements; Done must be called when iteration
// ends, including on early exit, to release any transient read guard.
type Iterator interface {
	Next() (Value, bool)
	Done()
}

// Indexable supports `x[i]`.
type Indexable interface {
	Value
	Index(i int) Value
	Len() int
}

// Sliceable supports `x[lo:hi:step]`.
type Sliceable interface {
	Indexable
	Slice(lo, hi, step int) Value
}

// HasAttrs is implemented by values with dotted-attribute access beyond the
// host-method registry (e.g. Struct).
type HasAttrs interface {
	Value
	Attr(name string) (Value, error)
	AttrNames() []string
}

// ---- None ----

type NoneType struct{}

var None = NoneType{}

func (NoneType) Type() string   { return "NoneType" }
func (NoneType) String() string { return "None" }
func (NoneType) Truth() bool    { return false }
func (NoneType) Freeze()        {}
func (NoneType) Hash() (uint32, error) { return 0x1e4a3b, nil }

// ---- Bool ----

type Bool bool

func (b Bool) Type() string   { return "bool" }
func (b Bool) Truth() bool    { return bool(b) }
func (b Bool) Freeze()        {}
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) Hash() (uint32, error) {
	if b {
		return 1, nil
	}
	return 0, nil
}

// ---- Int ----

// Int is a checked 64-bit machine integer (spec §1 Non-goals: "integers are
// machine-sized with checked overflow").
type Int int64

func (i Int) Type() string   { return "int" }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }
func (i Int) Truth() bool    { return i != 0 }
func (i Int) Freeze()        {}
func (i Int) Hash() (uint32, error) {
	u := uint64(i)
	return uint32(u) ^ uint32(u>>32), nil
}

// ---- Str ----

// Str is an immutable byte-sequence string (spec §1: "strings are byte
// sequences").
type Str string

func (s Str) Type() string   { return "string" }
func (s Str) String() string { return string(s) }
func (s Str) Truth() bool    { return len(s) != 0 }
func (s Str) Freeze()        {}
func (s Str) Repr() string   { return quoteStr(string(s)) }
func (s Str) Hash() (uint32, error) {
	// FNV-1a
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h, nil
}

func (s Str) Len() int { return len(s) }
func (s Str) Index(i int) Value {
	return Str(s[i : i+1])
}
func (s Str) Slice(lo, hi, step int) Value {
	if step == 1 {
		return Str(s[lo:hi])
	}
	var b []byte
	if step > 0 {
		for i := lo; i < hi; i += step {
			b = append(b, s[i])
		}
	} else {
		for i := lo; i > hi; i += step {
			b = append(b, s[i])
		}
	}
	return Str(b)
}

func (s Str) Iterate() Iterator { return &strIterator{s: string(s)} }

type strIterator struct {
	s string
	i int
}

func (it *strIterator) Next() (Value, bool) {
	if it.i >= len(it.s) {
		return nil, false
	}
	v := Str(it.s[it.i : it.i+1])
	it.i++
	return v, true
}
func (it *strIterator) Done() {}

func quoteStr(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}

// AsInt, AsStr are small coercion helpers used throughout eval/hostbind.
func AsInt(v Value, pos token.Pos, what string) (Int, error) {
	i, ok := v.(Int)
	if !ok {
		return 0, errors.New(errors.Type, pos, "%s: got %s, want int", what, v.Type())
	}
	return i, nil
}

func AsStr(v Value, pos token.Pos, what string) (Str, error) {
	s, ok := v.(Str)
	if !ok {
		return "", errors.New(errors.Type, pos, "%s: got %s, want string", what, v.Type())
	}
	return s, nil
}
