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

package scanner_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/skylarklang/core/scanner"
	"github.com/skylarklang/core/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []string, []string) {
	t.Helper()
	file := token.NewFile("test.sky", len(src))
	var errs []string
	s := scanner.Init(file, []byte(src), func(pos token.Pos, msg string) {
		errs = append(errs, msg)
	})
	var toks []token.Token
	var lits []string
	for {
		_, tok, lit := s.Scan()
		toks = append(toks, tok)
		lits = append(lits, lit)
		if tok == token.EOF {
			break
		}
	}
	return toks, lits, errs
}

func TestScanSimpleAssignment(t *testing.T) {
	toks, lits, errs := scanAll(t, "x = 1\n")
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF,
	}))
	qt.Assert(t, qt.Equals(lits[0], "x"))
	qt.Assert(t, qt.Equals(lits[2], "1"))
}

func TestScanIndentAndDedent(t *testing.T) {
	toks, _, errs := scanAll(t, "if x:\n    y = 1\nz = 2\n")
	qt.Assert(t, qt.HasLen(errs, 0))

	hasIndent, hasDedent := false, false
	for _, tk := range toks {
		if tk == token.INDENT {
			hasIndent = true
		}
		if tk == token.DEDENT {
			hasDedent = true
		}
	}
	qt.Assert(t, qt.IsTrue(hasIndent))
	qt.Assert(t, qt.IsTrue(hasDedent))
}

func TestScanStringEscapes(t *testing.T) {
	toks, lits, errs := scanAll(t, `s = "a\nb"`+"\n")
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(toks[2], token.STRING))
	qt.Assert(t, qt.Equals(lits[2], `"a\nb"`))
}

func TestScanIgnoresParenInteriorNewlines(t *testing.T) {
	// Inside parens, a physical newline is not a statement separator (spec
	// §4.2 "implicit line continuation").
	toks, _, errs := scanAll(t, "x = (1 +\n2)\n")
	qt.Assert(t, qt.HasLen(errs, 0))
	newlines := 0
	for _, tk := range toks {
		if tk == token.NEWLINE {
			newlines++
		}
	}
	qt.Assert(t, qt.Equals(newlines, 1))
}

func TestScanReportsIllegalCharacter(t *testing.T) {
	_, _, errs := scanAll(t, "x = 1 $ 2\n")
	qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
}
