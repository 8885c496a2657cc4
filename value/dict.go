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

type dictEntry struct {
	key   Value
	value Value
}

// Dict is an insertion-ordered mapping (spec §4.1 "Dict iteration
// preserves insertion order; reassigning a key does not change its
// position, but deleting and reinserting does").
type Dict struct {
	entries []*dictEntry
	buckets map[uint32][]int // hash -> indices into entries
	scope   *Scope
	guard   iterGuard
}

// NewDict creates an empty Dict owned by scope.
func NewDict(scope *Scope) *Dict {
	return &Dict{buckets: map[uint32][]int{}, scope: scope}
}

func (d *Dict) Type() string { return "dict" }
func (d *Dict) Truth() bool  { return len(d.entries) != 0 }
func (d *Dict) Len() int     { return len(d.entries) }

func (d *Dict) Freeze() {
	d.scope.Freeze()
	for _, e := range d.entries {
		e.key.Freeze()
		e.value.Freeze()
	}
}

func (d *Dict) String() string { return d.Repr() }
func (d *Dict) Repr() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Sprint(e.key))
		b.WriteString(": ")
		b.WriteString(Sprint(e.value))
	}
	b.WriteByte('}')
	return b.String()
}

func (d *Dict) find(key Value) (int, error) {
	h, err := Hash(key)
	if err != nil {
		return -1, err
	}
	for _, idx := range d.buckets[h] {
		eq, err := Equal(d.entries[idx].key, key)
		if err != nil {
			return -1, err
		}
		if eq {
			return idx, nil
		}
	}
	return -1, nil
}

// Get returns the value bound to key, if any.
func (d *Dict) Get(key Value) (Value, bool) {
	idx, err := d.find(key)
	if err != nil || idx < 0 {
		return nil, false
	}
	return d.entries[idx].value, true
}

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []Value {
	out := make([]Value, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.key
	}
	return out
}

// Put inserts or updates key → val. Reassignment keeps the key's existing
// position (spec §4.1, §8 "Dict ordering" property).
func (d *Dict) Put(pos token.Pos, caller *Scope, key, val Value) error {
	if err := checkMutate(pos, d.scope, caller); err != nil {
		return err
	}
	if err := checkModify(pos, &d.guard); err != nil {
		return err
	}
	idx, err := d.find(key)
	if err != nil {
		return errors.Wrap(errors.Type, pos, err, "%v", err)
	}
	if idx >= 0 {
		d.entries[idx].value = val
		return nil
	}
	h, _ := Hash(key) // find() already validated hashability
	d.buckets[h] = append(d.buckets[h], len(d.entries))
	d.entries = append(d.entries, &dictEntry{key: key, value: val})
	return nil
}

// Delete removes key, if present. A subsequent Put of the same key is
// appended at the end (spec §4.1).
func (d *Dict) Delete(pos token.Pos, caller *Scope, key Value) (Value, bool, error) {
	if err := checkMutate(pos, d.scope, caller); err != nil {
		return nil, false, err
	}
	if err := checkModify(pos, &d.guard); err != nil {
		return nil, false, err
	}
	idx, err := d.find(key)
	if err != nil {
		return nil, false, err
	}
	if idx < 0 {
		return nil, false, nil
	}
	v := d.entries[idx].value
	d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	d.rebuildBuckets()
	return v, true, nil
}

func (d *Dict) rebuildBuckets() {
	d.buckets = map[uint32][]int{}
	for i, e := range d.entries {
		h, _ := e.key.(Hashable)
		hv, _ := h.Hash()
		d.buckets[hv] = append(d.buckets[hv], i)
	}
}

func (d *Dict) Iterate() Iterator {
	d.guard.enter()
	return &dictIterator{d: d, i: 0}
}

type dictIterator struct {
	d *Dict
	i int
}

func (it *dictIterator) Next() (Value, bool) {
	if it.i >= len(it.d.entries) {
		return nil, false
	}
	v := it.d.entries[it.i].key
	it.i++
	return v, true
}
func (it *dictIterator) Done() { it.d.guard.leave() }

func (d *Dict) Scope() *Scope { return d.scope }
