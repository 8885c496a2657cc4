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

package parser_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/parser"
)

func TestParseFileBasicStatements(t *testing.T) {
	f := parser.ParseFile("test.sky", []byte(`
x = 1
y = [1, 2, 3]

def f(a, b=2, *args, **kwargs):
    return a + b

load("dep.bzl", "z", w = "orig_w")
`), ast.FileOptions{})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()), qt.Commentf("errors: %v", f.Errors.Errors()))
	qt.Assert(t, qt.Equals(len(f.Stmts), 4))

	ld, ok := f.Stmts[3].(*ast.LoadStmt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(ld.Bindings), 2))
	qt.Assert(t, qt.Equals(ld.Bindings[0].Local.Name, "z"))
	qt.Assert(t, qt.Equals(ld.Bindings[1].Local.Name, "w"))
	qt.Assert(t, qt.Equals(ld.Bindings[1].Orig.Str, "orig_w"))
}

func TestParseErrorsDoNotAbortTheParse(t *testing.T) {
	// A malformed second statement must not prevent the parser from
	// recovering and reporting later statements too (spec §4.3: "Parse
	// errors never abort the parse").
	f := parser.ParseFile("test.sky", []byte(`
x = 1
y = (
z = 3
`), ast.FileOptions{})
	qt.Assert(t, qt.IsTrue(f.Errors.HasErrors()))
}

func TestSliceAndIndexExpressionsParse(t *testing.T) {
	f := parser.ParseFile("test.sky", []byte(`
a = x[1]
b = x[1:2]
c = x[1:2:3]
d = x[:]
`), ast.FileOptions{})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()), qt.Commentf("errors: %v", f.Errors.Errors()))
	qt.Assert(t, qt.Equals(len(f.Stmts), 4))
}

func TestDictAndSetLikeLiteralsParse(t *testing.T) {
	f := parser.ParseFile("test.sky", []byte(`
d = {"a": 1, "b": 2}
t = (1, 2, 3)
l = [x for x in d]
`), ast.FileOptions{})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()), qt.Commentf("errors: %v", f.Errors.Errors()))
}
