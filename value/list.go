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
	"strings"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// List is a scoped-mutable sequence (spec §3 "List").
type List struct {
	elems []Value
	scope *Scope
	guard iterGuard
}

// NewList creates a List owned by scope.
func NewList(scope *Scope, elems []Value) *List {
	return &List{elems: append([]Value(nil), elems...), scope: scope}
}

func (l *List) Type() string { return "list" }
func (l *List) Truth() bool  { return len(l.elems) != 0 }
func (l *List) Len() int     { return len(l.elems) }
func (l *List) Index(i int) Value { return l.elems[i] }

func (l *List) Freeze() {
	l.scope.Freeze()
	for _, e := range l.elems {
		e.Freeze()
	}
}

func (l *List) String() string { return l.Repr() }
func (l *List) Repr() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Sprint(e))
	}
	b.WriteByte(']')
	return b.String()
}

func (l *List) Slice(lo, hi, step int) Value {
	var out []Value
	if step == 1 {
		out = append(out, l.elems[lo:hi]...)
	} else if step > 0 {
		for i := lo; i < hi; i += step {
			out = append(out, l.elems[i])
		}
	} else {
		for i := lo; i > hi; i += step {
			out = append(out, l.elems[i])
		}
	}
	return NewList(NewScope(), out)
}

func (l *List) Iterate() Iterator {
	l.guard.enter()
	return &listIterator{l: l, i: 0}
}

type listIterator struct {
	l *List
	i int
}

func (it *listIterator) Next() (Value, bool) {
	if it.i >= len(it.l.elems) {
		return nil, false
	}
	v := it.l.elems[it.i]
	it.i++
	return v, true
}
func (it *listIterator) Done() { it.l.guard.leave() }

// Append implements `list.append(x)` (spec §4.2 "List.append").
func (l *List) Append(pos token.Pos, caller *Scope, x Value) error {
	if err := checkMutate(pos, l.scope, caller); err != nil {
		return err
	}
	if err := checkModify(pos, &l.guard); err != nil {
		return err
	}
	l.elems = append(l.elems, x)
	return nil
}

// Extend implements `list.extend(xs)`.
func (l *List) Extend(pos token.Pos, caller *Scope, xs []Value) error {
	if err := checkMutate(pos, l.scope, caller); err != nil {
		return err
	}
	if err := checkModify(pos, &l.guard); err != nil {
		return err
	}
	l.elems = append(l.elems, xs...)
	return nil
}

// SetIndex implements `list[i] = x`.
func (l *List) SetIndex(pos token.Pos, caller *Scope, i int, x Value) error {
	if err := checkMutate(pos, l.scope, caller); err != nil {
		return err
	}
	if i < 0 || i >= len(l.elems) {
		return errors.New(errors.Index, pos, "list index out of range")
	}
	l.elems[i] = x
	return nil
}

// Pop implements `list.pop([i])`.
func (l *List) Pop(pos token.Pos, caller *Scope, i int) (Value, error) {
	if err := checkMutate(pos, l.scope, caller); err != nil {
		return nil, err
	}
	if err := checkModify(pos, &l.guard); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(l.elems) {
		return nil, errors.New(errors.Index, pos, "pop index out of range")
	}
	v := l.elems[i]
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return v, nil
}

// InsertAt implements `list.insert(i, x)`.
func (l *List) InsertAt(pos token.Pos, caller *Scope, i int, x Value) error {
	if err := checkMutate(pos, l.scope, caller); err != nil {
		return err
	}
	if err := checkModify(pos, &l.guard); err != nil {
		return err
	}
	if i < 0 {
		i = 0
	}
	if i > len(l.elems) {
		i = len(l.elems)
	}
	l.elems = append(l.elems[:i:i], append([]Value{x}, l.elems[i:]...)...)
	return nil
}

func (l *List) Scope() *Scope { return l.scope }

func (l *List) Elems() []Value { return l.elems }
