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

package resolve_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/parser"
	"github.com/skylarklang/core/resolve"
)

type fixedUniverse map[string]bool

func (u fixedUniverse) Has(name string) bool { return u[name] }
func (u fixedUniverse) Names() []string {
	out := make([]string, 0, len(u))
	for n := range u {
		out = append(out, n)
	}
	return out
}

func resolveSrc(t *testing.T, src string, universe fixedUniverse, allowInternal bool) *resolve.File {
	t.Helper()
	f := parser.ParseFile("test.sky", []byte(src), ast.FileOptions{LoadBindsInternal: allowInternal})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()), qt.Commentf("parse errors: %v", f.Errors.Errors()))
	return resolve.Resolve(f, universe, allowInternal)
}

func TestUndefinedNameIsNameError(t *testing.T) {
	rf := resolveSrc(t, "x = y + 1\n", fixedUniverse{}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
	qt.Assert(t, qt.Equals(rf.Errors.Errors()[0].Code(), errors.Name))
}

func TestUndefinedNameSuggestsClosestMatch(t *testing.T) {
	rf := resolveSrc(t, "counter = 1\nx = coutner\n", fixedUniverse{}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
	qt.Assert(t, qt.Equals(rf.Errors.Errors()[0].Code(), errors.Name))
	qt.Assert(t, qt.StringContains(rf.Errors.Errors()[0].Error(), "counter"))
}

func TestPrivateLoadNameRejectedWithoutOptIn(t *testing.T) {
	rf := resolveSrc(t, `load("dep.bzl", "_helper")`, fixedUniverse{}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
	qt.Assert(t, qt.Equals(rf.Errors.Errors()[0].Code(), errors.Resolve))
}

func TestPrivateLoadNameAllowedWithOptIn(t *testing.T) {
	rf := resolveSrc(t, `load("dep.bzl", "_helper")`, fixedUniverse{}, true)
	qt.Assert(t, qt.IsFalse(rf.Errors.HasErrors()))
}

func TestLoadShadowingUniverseNameIsRejected(t *testing.T) {
	rf := resolveSrc(t, `load("dep.bzl", "len")`, fixedUniverse{"len": true}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
	qt.Assert(t, qt.Equals(rf.Errors.Errors()[0].Code(), errors.Resolve))
}

func TestReassigningUniverseNameIsRejected(t *testing.T) {
	rf := resolveSrc(t, "len = 3\n", fixedUniverse{"len": true}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
	qt.Assert(t, qt.Equals(rf.Errors.Errors()[0].Code(), errors.Resolve))
}

func TestBindingsRecordedInAssignmentOrder(t *testing.T) {
	rf := resolveSrc(t, "b = 1\na = 2\ndef f():\n    pass\n", fixedUniverse{}, false)
	qt.Assert(t, qt.IsFalse(rf.Errors.HasErrors()))
	qt.Assert(t, qt.DeepEquals(rf.Bindings, []string{"b", "a", "f"}))
}

func TestLoadNotAtTopLevelIsRejected(t *testing.T) {
	rf := resolveSrc(t, "def f():\n    load(\"dep.bzl\", \"x\")\n", fixedUniverse{}, false)
	qt.Assert(t, qt.IsTrue(rf.Errors.HasErrors()))
}
