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

package graph

import (
	"sort"
	"strings"

	digest "github.com/opencontainers/go-digest"

	"github.com/mpvl/unique"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/eval"
	"github.com/skylarklang/core/hostbind"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// LoadResult is the extension-evaluation node's output (spec §4.8, §6
// "loadExtension").
type LoadResult struct {
	Key    LoadKey
	Module *value.Module
	Digest digest.Digest
	// Deps is every load statement's resolved LoadKey, in source order,
	// duplicates included — matches spec §4.8 step 3's ordering requirement.
	Deps []LoadKey
}

// Evaluator implements the extension-evaluation node (spec §4.8): it
// drives the loader node, composes dependency bindings, executes the file,
// and publishes the result to the cache.
type Evaluator struct {
	Loader   *Loader
	Cache    *Cache
	Repo     RepoMapping
	Registry *hostbind.Registry
	Legacy   *hostbind.LegacyRegistry
}

func NewEvaluator(loader *Loader, cache *Cache, repo RepoMapping, registry *hostbind.Registry, legacy *hostbind.LegacyRegistry) *Evaluator {
	return &Evaluator{Loader: loader, Cache: cache, Repo: repo, Registry: registry, Legacy: legacy}
}

// loadStack tracks the LoadKeys currently being evaluated by one logical
// "loading thread" (spec §4.8 "Cycle detection"). A fresh stack is created
// per top-level LoadExtension call, so concurrent evaluations never share
// one, matching §5's "no thread-unsafe shared state inside a single
// evaluation".
type loadStack struct {
	keys []LoadKey
}

func (s *loadStack) push(k LoadKey) bool {
	for _, existing := range s.keys {
		if existing == k {
			return false
		}
	}
	s.keys = append(s.keys, k)
	return true
}

func (s *loadStack) pop() { s.keys = s.keys[:len(s.keys)-1] }

func (s *loadStack) cyclePath(closing LoadKey) string {
	var b strings.Builder
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(k.String())
	}
	b.WriteString(" -> ")
	b.WriteString(closing.String())
	return b.String()
}

// LoadExtension is the top-level entry point driving §4.7–§4.9 (spec §6
// "loadExtension").
func (e *Evaluator) LoadExtension(key LoadKey, sem *value.Semantics) (*LoadResult, error) {
	node, err := e.evaluate(key, sem, &loadStack{})
	if err != nil {
		return nil, err
	}
	return node.Result, nil
}

func (e *Evaluator) evaluate(key LoadKey, sem *value.Semantics, stack *loadStack) (*CachedNode, error) {
	if n, ok := e.Cache.get(key); ok {
		return n, nil
	}
	if !stack.push(key) {
		return nil, errors.New(errors.LoadCycle, token.NoPos, "load cycle: %s", stack.cyclePath(key))
	}
	defer stack.pop()

	pf := e.Loader.Load(key)
	if pf.Missing {
		return nil, errors.New(errors.LoadMissing, token.NoPos, "no such extension: %s", key)
	}
	if pf.HasErrors() {
		return nil, errors.New(errors.LoadFailed, token.NoPos, "%s has parse/resolve errors", key)
	}

	loadStmts := loadStatementsOf(pf.AST)
	depKeys := make([]LoadKey, len(loadStmts))
	firstSeenAt := map[LoadKey]int{}
	var moduleErrs errors.List
	for i, ls := range loadStmts {
		modStr := string(ls.Module.Str)
		dk, err := e.Repo(key.Repo, modStr)
		if err != nil {
			return nil, errors.New(errors.LoadMissing, ls.Pos(), "cannot resolve load(%q): %v", modStr, err)
		}
		depKeys[i] = dk
		if first, dup := firstSeenAt[dk]; dup {
			moduleErrs.Addf(errors.Resolve, ls.Pos(), "duplicate load of %s, first loaded at statement %d", dk, first)
		} else {
			firstSeenAt[dk] = i
		}
	}

	// The dependency group is requested once per distinct key (spec §4.8
	// step 3: "a single logical dependency group"); mpvl/unique sorts and
	// dedupes the lookup set while depKeys itself (with duplicates, in
	// source order) still drives binding composition and error ordering.
	distinct := append([]LoadKey(nil), depKeys...)
	n := unique.Sort(byLoadKey(distinct))
	distinct = distinct[:n]

	// distinct is iterated in sorted (not source) order, so a failure must
	// not be reported as soon as it's hit: every dependency is evaluated
	// first, and among any failures the one whose load(...) statement comes
	// earliest in source order is the one reported (spec §5 "Ordering",
	// §4.8 step 3).
	depNodes := make(map[LoadKey]*CachedNode, len(distinct))
	var failKey LoadKey
	var failErr error
	failAt := -1
	for _, dk := range distinct {
		dn, err := e.evaluate(dk, sem, stack)
		if err != nil {
			i := indexOf(depKeys, dk)
			if failAt == -1 || (i >= 0 && i < failAt) {
				failKey, failErr, failAt = dk, err, i
			}
			continue
		}
		depNodes[dk] = dn
	}
	if failErr != nil {
		pos := token.NoPos
		if failAt >= 0 {
			pos = loadStmts[failAt].Pos()
		}
		return nil, errors.Wrap(errors.LoadFailed, pos, failErr, "load(%q) failed", failKey)
	}

	universe, _ := e.Loader.Predeclared(key)
	scope := value.NewScope()
	module := value.NewModule(scope, universe)

	for i, ls := range loadStmts {
		dep := depNodes[depKeys[i]]
		for _, b := range ls.Bindings {
			origName := string(b.Orig.Str)
			v, ok := dep.Result.Module.Lookup(origName)
			if !ok {
				moduleErrs.Addf(errors.LoadMissing, b.Local.Pos(), "load: %s does not export %q", depKeys[i], origName)
				continue
			}
			module.Set(b.Local.Name, v)
		}
	}

	thread := value.NewThread(sem)
	postAssign := func(name string, v value.Value) error {
		ex, ok := v.(value.Exportable)
		if !ok || ex.Exported() {
			return nil
		}
		return ex.Export(key.String(), name)
	}
	execErrs := eval.Evaluate(pf.AST, module, thread, postAssign, &eval.Options{Registry: e.Registry, Legacy: e.Legacy})
	for _, ee := range execErrs.Errors() {
		moduleErrs.Add(ee)
	}

	module.Freeze()

	if moduleErrs.HasErrors() {
		// A node whose file has any accumulated error must not publish a
		// result to the cache (spec §7 "Propagation policy").
		return nil, errors.Wrap(errors.LoadFailed, token.NoPos, moduleErrs.Err(), "%s failed to evaluate", key)
	}

	result := &LoadResult{Key: key, Module: module, Digest: pf.Digest, Deps: depKeys}
	node := &CachedNode{Key: key, Result: result, Deps: distinct}
	return e.Cache.publish(node), nil
}

func loadStatementsOf(f *ast.File) []*ast.LoadStmt {
	var out []*ast.LoadStmt
	for _, s := range f.Stmts {
		if ls, ok := s.(*ast.LoadStmt); ok {
			out = append(out, ls)
		}
	}
	return out
}

func indexOf(keys []LoadKey, k LoadKey) int {
	for i, x := range keys {
		if x == k {
			return i
		}
	}
	return -1
}

type byLoadKey []LoadKey

func (b byLoadKey) Len() int      { return len(b) }
func (b byLoadKey) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byLoadKey) Less(i, j int) bool {
	return b[i].String() < b[j].String()
}
func (b byLoadKey) Equal(i, j int) bool { return b[i] == b[j] }

var _ sort.Interface = byLoadKey(nil)
