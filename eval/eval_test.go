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

package eval_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/eval"
	"github.com/skylarklang/core/parser"
	"github.com/skylarklang/core/resolve"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// testUniverse is the minimal predeclared-names set these tests rely on: a
// host embedding this interpreter supplies range/len itself (spec §3
// "Universe ... seen by every Module").
func testUniverse() value.Universe {
	rangeFn := value.NewBuiltin("range", func(th *value.Thread, pos token.Pos, fn *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
		n, ok := args[0].(value.Int)
		if !ok {
			return nil, errors.New(errors.Type, pos, "range() requires an int")
		}
		sc := value.NewScope()
		elems := make([]value.Value, 0, int(n))
		for i := int64(0); i < int64(n); i++ {
			elems = append(elems, value.Int(i))
		}
		return value.NewList(sc, elems), nil
	})
	lenFn := value.NewBuiltin("len", func(th *value.Thread, pos token.Pos, fn *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
		l, ok := args[0].(interface{ Len() int })
		if !ok {
			return nil, errors.New(errors.Type, pos, "len() requires a sized value")
		}
		return value.Int(l.Len()), nil
	})
	return value.NewUniverse(map[string]value.Value{
		"True":  value.Bool(true),
		"False": value.Bool(false),
		"None":  value.None,
		"range": rangeFn,
		"len":   lenFn,
	})
}

// run parses, resolves, and evaluates src as a single module and returns
// the resulting module plus any accumulated errors, matching the pipeline
// a host embedding this interpreter would drive (spec §6).
func run(t *testing.T, src string) (*value.Module, []errors.Error) {
	t.Helper()
	f := parser.ParseFile("test.sky", []byte(src), ast.FileOptions{})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()), qt.Commentf("parse errors: %v", f.Errors.Errors()))

	universe := testUniverse()
	rf := resolve.Resolve(f, resolveAdapter{universe}, false)
	qt.Assert(t, qt.IsFalse(rf.Errors.HasErrors()), qt.Commentf("resolve errors: %v", rf.Errors.Errors()))

	scope := value.NewScope()
	module := value.NewModule(scope, universe)
	thread := value.NewThread(&value.Semantics{})
	errs := eval.Evaluate(f, module, thread, nil, nil)
	return module, errs.Errors()
}

type resolveAdapter struct{ u value.Universe }

func (a resolveAdapter) Has(name string) bool { _, ok := a.u.Lookup(name); return ok }
func (a resolveAdapter) Names() []string      { return a.u.Names() }

func mustLookup(t *testing.T, m *value.Module, name string) value.Value {
	t.Helper()
	v, ok := m.Lookup(name)
	qt.Assert(t, qt.IsTrue(ok), qt.Commentf("module did not bind %q", name))
	return v
}

func TestSimpleAssignmentAndArithmetic(t *testing.T) {
	m, errs := run(t, `
x = 1 + 2
y = x * 3
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "x"), value.Value(value.Int(3))))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "y"), value.Value(value.Int(9))))
}

func TestIfElseAndComparisons(t *testing.T) {
	m, errs := run(t, `
def classify(n):
    if n < 0:
        return "neg"
    elif n == 0:
        return "zero"
    else:
        return "pos"

a = classify(-5)
b = classify(0)
c = classify(7)
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "a"), value.Value(value.Str("neg"))))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "b"), value.Value(value.Str("zero"))))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "c"), value.Value(value.Str("pos"))))
}

func TestForLoopAccumulation(t *testing.T) {
	m, errs := run(t, `
total = 0
for i in range(5):
    total += i
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "total"), value.Value(value.Int(10))))
}

func TestListComprehensionAndFiltering(t *testing.T) {
	m, errs := run(t, `
squares = [x*x for x in range(6) if x % 2 == 0]
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	l, ok := mustLookup(t, m, "squares").(*value.List)
	qt.Assert(t, qt.IsTrue(ok))
	var got []int64
	it := l.Iterate()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, int64(v.(value.Int)))
	}
	it.Done()
	qt.Assert(t, qt.DeepEquals(got, []int64{0, 4, 16}))
}

func TestComprehensionVariableDoesNotLeak(t *testing.T) {
	m, errs := run(t, `
x = "outer"
doubled = [x for x in [1, 2, 3]]
after = x
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "after"), value.Value(value.Str("outer"))))
}

func TestFunctionClosureOverModuleGlobals(t *testing.T) {
	m, errs := run(t, `
counter = 0

def bump():
    return counter + 1

a = bump()
counter = 10
b = bump()
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "a"), value.Value(value.Int(1))))
	qt.Assert(t, qt.Equals(mustLookup(t, m, "b"), value.Value(value.Int(11))))
}

func TestDuplicateKeywordArgumentIsTypeError(t *testing.T) {
	_, errs := run(t, `
def f(**kw):
    return kw

f(a=1, **{"a": 2})
`)
	qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
	found := false
	for _, e := range errs {
		if e.Code() == errors.Type {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

func TestImmutableAfterFreeze(t *testing.T) {
	f := parser.ParseFile("test.sky", []byte(`L = [1, 2, 3]`), ast.FileOptions{})
	qt.Assert(t, qt.IsFalse(f.Errors.HasErrors()))
	universe := testUniverse()
	rf := resolve.Resolve(f, resolveAdapter{universe}, false)
	qt.Assert(t, qt.IsFalse(rf.Errors.HasErrors()))

	scope := value.NewScope()
	module := value.NewModule(scope, universe)
	thread := value.NewThread(&value.Semantics{})
	errs := eval.Evaluate(f, module, thread, nil, nil)
	qt.Assert(t, qt.HasLen(errs.Errors(), 0))

	module.Freeze()

	l := mustLookup(t, module, "L").(*value.List)
	err := l.Append(token.NoPos, scope, value.Int(4))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
	fe, ok := err.(errors.Error)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fe.Code(), errors.Immutable))
}

func TestNamedOnlyParamAfterStarRejectsPositional(t *testing.T) {
	_, errs := run(t, `
def f(a, *, b=2):
    return a, b

f(1, 3)
`)
	qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
	qt.Assert(t, qt.Equals(errs[0].Code(), errors.Type))
}

func TestNamedOnlyParamAfterStarAcceptsKeyword(t *testing.T) {
	m, errs := run(t, `
def f(a, *, b=2):
    return a, b

r = f(1, b=3)
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	tup, ok := mustLookup(t, m, "r").(value.Tuple)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals([]int64{int64(tup[0].(value.Int)), int64(tup[1].(value.Int))}, []int64{1, 3}))
}

func TestParamAfterStarArgsStaysNamedOnly(t *testing.T) {
	// Extra positionals are absorbed by *args; b keeps its default rather
	// than being filled positionally, since it follows *args.
	m, errs := run(t, `
def f(a, *args, b=2):
    return a, b

r = f(1, 2, 3)
`)
	qt.Assert(t, qt.HasLen(errs, 0))
	tup, ok := mustLookup(t, m, "r").(value.Tuple)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(tup[0], value.Value(value.Int(1))))
	qt.Assert(t, qt.Equals(tup[1], value.Value(value.Int(2))))
}

func TestLocalReferencedBeforeAssignmentSuggestsCloseMatch(t *testing.T) {
	_, errs := run(t, `
def f():
    xs = 1
    if False:
        x = 1
    return x

r = f()
`)
	qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
	found := false
	for _, e := range errs {
		if e.Code() == errors.Name && strings.Contains(e.Error(), "did you mean \"xs\"") {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

func TestDirectRecursionIsRejected(t *testing.T) {
	_, errs := run(t, `
def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)

r = fact(6)
`)
	qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
	qt.Assert(t, qt.Equals(errs[0].Code(), errors.Recursion))
}
