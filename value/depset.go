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

// Order is the declared transitive-merge order of a Depset (spec GLOSSARY
// "Depset").
type Order int

const (
	Default Order = iota
	Postorder
	Preorder
	Topological
)

// Depset is a set-like aggregate with a declared transitive-merge order; it
// carries no arithmetic operators in the default configuration (spec
// GLOSSARY).
type Depset struct {
	order      Order
	direct     []Value
	transitive []*Depset
	scope      *Scope
}

func NewDepset(scope *Scope, order Order, direct []Value, transitive []*Depset) *Depset {
	return &Depset{order: order, direct: append([]Value(nil), direct...), transitive: append([]*Depset(nil), transitive...), scope: scope}
}

func (d *Depset) Type() string { return "depset" }
func (d *Depset) Truth() bool  { return len(d.ToList()) != 0 }
func (d *Depset) Freeze() {
	d.scope.Freeze()
	for _, v := range d.direct {
		v.Freeze()
	}
}

func (d *Depset) String() string { return d.Repr() }
func (d *Depset) Repr() string {
	var b strings.Builder
	b.WriteString("depset([")
	for i, e := range d.ToList() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Sprint(e))
	}
	b.WriteString("])")
	return b.String()
}

// ToList flattens the depset according to its declared order, deduplicating
// on first occurrence.
func (d *Depset) ToList() []Value {
	seen := map[Value]bool{}
	var out []Value
	add := func(v Value) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	switch d.order {
	case Preorder:
		for _, v := range d.direct {
			add(v)
		}
		for _, t := range d.transitive {
			for _, v := range t.ToList() {
				add(v)
			}
		}
	default: // Default, Postorder, Topological: children-then-direct approximation
		for _, t := range d.transitive {
			for _, v := range t.ToList() {
				add(v)
			}
		}
		for _, v := range d.direct {
			add(v)
		}
	}
	return out
}

func (d *Depset) Order() Order { return d.order }
