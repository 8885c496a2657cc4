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

// Package value implements the dynamically-typed value model described in
// spec §3–4.1–4.2: tagged Int/Str/Bool/None/List/Tuple/Dict/Depset/Callable/
// Struct/Host variants, a scoped-mutability discipline, hashing, ordering,
// and formatting.
package value

import (
	"sync/atomic"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Scope is the lifetime handle shared by a set of mutable Values (spec
// §4.2). It transitions Open → Frozen exactly once.
type Scope struct {
	frozen int32
}

// NewScope returns a fresh, Open scope.
func NewScope() *Scope { return &Scope{} }

// Freeze flips s to Frozen. Idempotent.
func (s *Scope) Freeze() { atomic.StoreInt32(&s.frozen, 1) }

// Frozen reports whether s has been frozen.
func (s *Scope) Frozen() bool { return atomic.LoadInt32(&s.frozen) != 0 }

// checkMutate enforces spec §4.2: mutation fails if the value's owning
// scope is frozen, or if caller is a different, still-open scope than
// owner.
func checkMutate(pos token.Pos, owner, caller *Scope) error {
	if owner.Frozen() {
		return errors.New(errors.Immutable, pos, "cannot mutate value: its scope has been frozen")
	}
	if owner != caller {
		return errors.New(errors.Immutable, pos, "cannot mutate value: caller does not hold its owning scope")
	}
	return nil
}

// iterGuard implements the transient "being read" tag from spec §5: while
// iterating, any mutation attempt through checkMutate's container-specific
// wrapper fails with ConcurrentModification.
type iterGuard struct {
	active int32
}

func (g *iterGuard) enter() { atomic.AddInt32(&g.active, 1) }
func (g *iterGuard) leave() { atomic.AddInt32(&g.active, -1) }
func (g *iterGuard) reading() bool { return atomic.LoadInt32(&g.active) > 0 }

func checkModify(pos token.Pos, g *iterGuard) error {
	if g.reading() {
		return errors.New(errors.ConcurrentModification, pos, "container modified during iteration")
	}
	return nil
}
