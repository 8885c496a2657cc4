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

package graph_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/rogpeppe/go-internal/txtar"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/graph"
	"github.com/skylarklang/core/value"
)

// filesFromArchive unpacks a txtar fixture into the flat string map
// newEvaluator's memFS expects, letting a whole multi-file load graph live
// as one readable literal per test.
func filesFromArchive(data string) map[string]string {
	ar := txtar.Parse([]byte(data))
	out := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		out[f.Name] = string(f.Data)
	}
	return out
}

// codeInChain walks err's Unwrap chain (LoadExtension wraps an inner
// cause's error at every frame it propagates through, spec §4.8 "Cycle
// detection") looking for one with the given Code.
func codeInChain(err error, code errors.Code) bool {
	for err != nil {
		if fe, ok := err.(errors.Error); ok && fe.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// memFS is an in-memory FileSystem collaborator (spec §6 "Filesystem") for
// tests, keyed by the same string a test's PathResolver hands back.
type memFS struct {
	files map[string]string
}

func (fs memFS) Stat(path string) (graph.FileInfo, error) {
	src, ok := fs.files[path]
	if !ok {
		return graph.FileInfo{}, nil
	}
	return graph.FileInfo{Exists: true, IsRegular: true, Size: int64(len(src))}, nil
}

func (fs memFS) Read(path string, knownSize int64) ([]byte, error) {
	return []byte(fs.files[path]), nil
}

func newEvaluator(files map[string]string) *graph.Evaluator {
	fs := memFS{files: files}
	pathOf := func(key graph.LoadKey) (string, error) { return key.Label, nil }
	repo := func(currentRepo, moduleString string) (graph.LoadKey, error) {
		return graph.LoadKey{Repo: currentRepo, Label: moduleString}, nil
	}
	predeclared := func(key graph.LoadKey) (value.Universe, bool) {
		return value.NewUniverse(nil), false
	}
	loader := graph.NewLoader(fs, pathOf, predeclared)
	cache := graph.NewCache()
	return graph.NewEvaluator(loader, cache, repo, nil, nil)
}

func TestBasicLoadPreservesReferenceEquality(t *testing.T) {
	ev := newEvaluator(map[string]string{
		"p.bzl": "X = [1, 2, 3]\n",
		"q.bzl": "load(\"p.bzl\", \"X\")\nY = X\n",
	})
	sem := &value.Semantics{}

	pDirect, err := ev.LoadExtension(graph.LoadKey{Label: "p.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))
	xDirect, ok := pDirect.Module.Lookup("X")
	qt.Assert(t, qt.IsTrue(ok))

	qResult, err := ev.LoadExtension(graph.LoadKey{Label: "q.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))
	yViaQ, ok := qResult.Module.Lookup("Y")
	qt.Assert(t, qt.IsTrue(ok))

	// The cache must hand back the very same node for p.bzl, so X crossing
	// the load boundary into q.bzl is the identical *value.List (spec §4.9
	// "reference equality preserved across loaders").
	qt.Assert(t, qt.Equals(xDirect.(*value.List), yViaQ.(*value.List)))
}

func TestLoadCycleIsDetected(t *testing.T) {
	ev := newEvaluator(map[string]string{
		"p.bzl": "load(\"q.bzl\", \"q\")\np = 1\n",
		"q.bzl": "load(\"r.bzl\", \"r\")\nq = 1\n",
		"r.bzl": "load(\"p.bzl\", \"p\")\nr = 1\n",
	})
	sem := &value.Semantics{}
	_, err := ev.LoadExtension(graph.LoadKey{Label: "p.bzl"}, sem)
	qt.Assert(t, qt.Not(qt.IsNil(err)))
	qt.Assert(t, qt.IsTrue(codeInChain(err, errors.LoadCycle)))
}

func TestMissingLoadTargetFails(t *testing.T) {
	ev := newEvaluator(map[string]string{
		"p.bzl": "load(\"missing.bzl\", \"X\")\n",
	})
	sem := &value.Semantics{}
	_, err := ev.LoadExtension(graph.LoadKey{Label: "p.bzl"}, sem)
	qt.Assert(t, qt.Not(qt.IsNil(err)))
	fe, ok := err.(errors.Error)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fe.Code(), errors.LoadFailed))
}

func TestCacheTraverseVisitsTransitiveDeps(t *testing.T) {
	ev := newEvaluator(map[string]string{
		"base.bzl": "B = 1\n",
		"mid.bzl":  "load(\"base.bzl\", \"B\")\nM = B\n",
		"top.bzl":  "load(\"mid.bzl\", \"M\")\nT = M\n",
	})
	sem := &value.Semantics{}
	_, err := ev.LoadExtension(graph.LoadKey{Label: "top.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))

	var seen []string
	visited := map[graph.LoadKey]bool{}
	ev.Cache.Traverse(graph.LoadKey{Label: "top.bzl"}, func(k graph.LoadKey) {
		seen = append(seen, k.String())
	}, visited)

	qt.Assert(t, qt.DeepEquals(seen, []string{"mid.bzl", "base.bzl"}))
}

func TestRepeatedLoadReusesCachedNode(t *testing.T) {
	ev := newEvaluator(map[string]string{
		"a.bzl": "A = [1]\n",
		"b.bzl": fmt.Sprintf("load(%q, \"A\")\nB1 = A\n", "a.bzl"),
		"c.bzl": fmt.Sprintf("load(%q, \"A\")\nC1 = A\n", "a.bzl"),
	})
	sem := &value.Semantics{}
	bResult, err := ev.LoadExtension(graph.LoadKey{Label: "b.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))
	cResult, err := ev.LoadExtension(graph.LoadKey{Label: "c.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))

	b1, _ := bResult.Module.Lookup("B1")
	c1, _ := cResult.Module.Lookup("C1")
	qt.Assert(t, qt.Equals(b1.(*value.List), c1.(*value.List)))
}

func TestFailedLoadErrorPrefersSourceOrder(t *testing.T) {
	// zzz_missing.bzl sorts after aaa_missing.bzl alphabetically, but it's
	// load()ed first in p.bzl; the reported failure must be the one that
	// appears first in source, not the one sorted first (spec §5
	// "Ordering").
	ev := newEvaluator(map[string]string{
		"p.bzl": "load(\"zzz_missing.bzl\", \"X\")\nload(\"aaa_missing.bzl\", \"Y\")\n",
	})
	sem := &value.Semantics{}
	_, err := ev.LoadExtension(graph.LoadKey{Label: "p.bzl"}, sem)
	qt.Assert(t, qt.Not(qt.IsNil(err)))
	qt.Assert(t, qt.StringContains(err.Error(), "zzz_missing.bzl"))
	qt.Assert(t, qt.Not(qt.StringContains(err.Error(), "aaa_missing.bzl")))
}

func TestDiamondLoadGraphFromArchive(t *testing.T) {
	files := filesFromArchive(`
-- common.bzl --
VALUE = "shared"

-- left.bzl --
load("common.bzl", "VALUE")
LEFT = VALUE

-- right.bzl --
load("common.bzl", "VALUE")
RIGHT = VALUE

-- top.bzl --
load("left.bzl", "LEFT")
load("right.bzl", "RIGHT")
TOP = LEFT + "/" + RIGHT
`)
	ev := newEvaluator(files)
	sem := &value.Semantics{}
	top, err := ev.LoadExtension(graph.LoadKey{Label: "top.bzl"}, sem)
	qt.Assert(t, qt.IsNil(err))

	v, ok := top.Module.Lookup("TOP")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v, value.Value(value.Str("shared/shared"))))
}
