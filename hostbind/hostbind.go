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

// Package hostbind implements the reflection-style method registry that
// exposes host-language functions and struct-fields to the interpreter
// (spec §4.6). The registry is a concurrent, read-mostly memoising cache
// keyed by (hostType, methodName, semantics-hash), grounded on the
// sync.Map-backed type cache idiom in cue's internal/core/runtime/index.go.
package hostbind

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// Kind distinguishes the three descriptor shapes spec §4.6 names.
type Kind int

const (
	StructField Kind = iota // no argument list
	Method                  // regular method, takes an argument list
	SelfCall                // `x()` where x is itself a host value
)

// ParamSpec is one formal parameter of a host method descriptor.
type ParamSpec struct {
	Name      string
	Named     bool // may be supplied by keyword
	Positional bool // may be supplied positionally
	Default   value.Value // nil if mandatory
	Check     func(value.Value) bool
	FlagGate  string // semantics flag name recorded for this param, or ""; Invoke does not check it
}

// Descriptor fully describes one host method or struct-field binding (spec
// §4.6).
type Descriptor struct {
	Kind   Kind
	Name   string
	Params []ParamSpec

	WantLocation  bool
	WantCallNode  bool
	WantThread    bool
	WantSemantics bool

	Func func(th *value.Thread, recv value.Value, pos token.Pos, callNode interface{}, positional []value.Value, named map[string]value.Value) (value.Value, error)
}

type regKey struct {
	typ     reflect.Type
	name    string
	semHash uint64
}

// Registry memoises descriptors by (hostType, methodName, semantics-hash).
// Lookups are performed on every call, but the registry key deliberately
// includes the semantics hash so that a flag change invalidates the cached
// entry (spec §4.6).
type Registry struct {
	cache    sync.Map // regKey -> *Descriptor
	provider func(t reflect.Type, name string) (*Descriptor, bool)

	selfCalls sync.Map // reflect.Type -> *Descriptor, for ambiguity detection
}

// NewRegistry creates a Registry whose descriptors are produced lazily by
// provider when not already cached.
func NewRegistry(provider func(t reflect.Type, name string) (*Descriptor, bool)) *Registry {
	return &Registry{provider: provider}
}

// Lookup returns the descriptor for (hostType, name) under the given
// semantics hash, populating the cache on miss.
func (r *Registry) Lookup(hostType reflect.Type, name string, semHash uint64) (*Descriptor, bool) {
	key := regKey{hostType, name, semHash}
	if d, ok := r.cache.Load(key); ok {
		return d.(*Descriptor), true
	}
	d, ok := r.provider(hostType, name)
	if !ok {
		return nil, false
	}
	if d.Kind == SelfCall {
		if prev, loaded := r.selfCalls.LoadOrStore(hostType, d); loaded && prev.(*Descriptor).Name != d.Name {
			panic(fmt.Sprintf("hostbind: ambiguous selfCall methods registered for %s", hostType))
		}
	}
	actual, _ := r.cache.LoadOrStore(key, d)
	return actual.(*Descriptor), true
}

// Names reports the known method/field names for hostType, for use in
// "did you mean" suggestions; it requires the provider to support
// enumeration via the optional Enumerator interface.
type Enumerator interface {
	Names(t reflect.Type) []string
}

func (r *Registry) NamesOf(hostType reflect.Type, enum Enumerator) []string {
	if enum == nil {
		return nil
	}
	return enum.Names(hostType)
}
