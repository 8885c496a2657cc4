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

package hostbind

import (
	"reflect"
	"sync"

	"github.com/skylarklang/core/value"
)

// LegacyFunc is the signature of a function registered in the legacy
// registry: a last-resort lookup consulted only after the structured
// Registry has nothing for (type, name) (spec §4.5 attribute dispatch
// chain).
type LegacyFunc func(th *value.Thread, recv value.Value, args value.Tuple, kwargs []value.Kwarg) (value.Value, error)

type legacyKey struct {
	typ  reflect.Type
	name string
}

// LegacyRegistry predates the structured Registry; kept for host code that
// registers functions directly rather than through descriptors.
type LegacyRegistry struct {
	mu   sync.RWMutex
	fns  map[legacyKey]LegacyFunc
}

func NewLegacyRegistry() *LegacyRegistry {
	return &LegacyRegistry{fns: map[legacyKey]LegacyFunc{}}
}

func (r *LegacyRegistry) Register(t reflect.Type, name string, fn LegacyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[legacyKey{t, name}] = fn
}

func (r *LegacyRegistry) Lookup(t reflect.Type, name string) (LegacyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[legacyKey{t, name}]
	return fn, ok
}
