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

import "sort"

// Universe is the immutable top-level namespace seen by every Module
// (spec GLOSSARY "Universe"; §6 "Predeclared names provider").
type Universe interface {
	Lookup(name string) (Value, bool)
	Names() []string
}

type mapUniverse map[string]Value

func NewUniverse(names map[string]Value) Universe { return mapUniverse(names) }

func (u mapUniverse) Lookup(name string) (Value, bool) { v, ok := u[name]; return v, ok }
func (u mapUniverse) Names() []string {
	names := make([]string, 0, len(u))
	for n := range u {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Module is an ordered name→Value mapping plus a reference to a universe of
// predeclared names (spec §3 "Module").
type Module struct {
	Universe Universe
	scope    *Scope
	names    []string
	globals  map[string]Value
}

func NewModule(scope *Scope, universe Universe) *Module {
	return &Module{Universe: universe, scope: scope, globals: map[string]Value{}}
}

func (m *Module) Scope() *Scope { return m.scope }

// Lookup implements the local → module → universe chain for names already
// known to be Module-scoped (Local lookup happens in the evaluator's own
// frame, not here).
func (m *Module) Lookup(name string) (Value, bool) {
	if v, ok := m.globals[name]; ok {
		return v, true
	}
	return m.Universe.Lookup(name)
}

// Set binds name at module scope, recording insertion order the first time
// a name is bound.
func (m *Module) Set(name string, v Value) {
	if _, exists := m.globals[name]; !exists {
		m.names = append(m.names, name)
	}
	m.globals[name] = v
}

// Names returns the module's own bound names (not universe names) in
// insertion order.
func (m *Module) Names() []string { return append([]string(nil), m.names...) }

// Freeze freezes the module's scope and every reachable value, producing
// the immutable module a LoadResult exports (spec §3 "Module").
func (m *Module) Freeze() {
	m.scope.Freeze()
	for _, v := range m.globals {
		v.Freeze()
	}
}
