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

// Package scanner implements a hand-rolled lexer for the Starlark-like
// source language, in the style of cue/scanner: it never panics on bad
// input, instead reporting through an errors.Handler and returning ILLEGAL
// tokens so the parser can recover (spec §4.3).
package scanner

import (
	"unicode"
	"unicode/utf8"

	"github.com/skylarklang/core/token"
)

// Handler receives a scan-time error at pos.
type Handler func(pos token.Pos, msg string)

// Scanner holds the lexer's state over one source file.
type Scanner struct {
	file *token.File
	src  []byte
	err  Handler

	ch       rune
	offset   int
	rdOffset int

	// indentation tracking (Python-style block structure)
	indents     []int // stack of known indentation widths, indents[0] == 0
	atLineStart bool
	parenDepth  int
	pendingDedents int

	ErrorCount int
}

const eof = -1

// Init prepares s to scan src, whose positions are recorded against file.
// file's size must equal len(src).
func Init(file *token.File, src []byte, err Handler) *Scanner {
	s := &Scanner{
		file:        file,
		src:         src,
		err:         err,
		indents:     []int{0},
		atLineStart: true,
	}
	s.next()
	if s.ch == bom {
		s.next()
	}
	return s
}

const bom = 0xFEFF

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		r, w := rune(s.src[s.rdOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal NUL byte")
		case r >= utf8.RuneSelf:
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			}
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		s.ch = eof
	}
}

func (s *Scanner) peek() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) error(offset int, msg string) {
	s.ErrorCount++
	if s.err != nil {
		s.err(s.file.Pos(offset), msg)
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// Scan returns the next token: its position, kind, and literal text.
func (s *Scanner) Scan() (pos token.Pos, tok token.Token, lit string) {
	if s.pendingDedents > 0 {
		s.pendingDedents--
		return s.file.Pos(s.offset), token.DEDENT, ""
	}

	if s.atLineStart && s.parenDepth == 0 {
		if tok, pos, ok := s.scanIndentation(); ok {
			return pos, tok, ""
		}
	}

	s.skipSpacesAndComments()

	pos = s.file.Pos(s.offset)

	if s.ch == eof {
		return pos, token.EOF, ""
	}

	ch := s.ch
	switch {
	case isLetter(ch):
		lit = s.scanIdentifier()
		return pos, token.Lookup(lit), lit
	case isDigit(ch):
		lit = s.scanNumber()
		return pos, token.INT, lit
	}

	s.next()
	switch ch {
	case '\n':
		s.file.AddLine(s.offset)
		s.atLineStart = true
		return pos, token.NEWLINE, "\n"
	case '"', '\'':
		return pos, token.STRING, s.scanString(byte(ch))
	case '+':
		return pos, s.switch2('=', token.PLUS, token.PLUS_EQ), ""
	case '-':
		if s.ch == '>' {
			s.next()
			return pos, token.ARROW, ""
		}
		return pos, s.switch2('=', token.MINUS, token.MINUS_EQ), ""
	case '*':
		return pos, s.switch2('=', token.STAR, token.STAR_EQ), ""
	case '/':
		if s.ch == '/' {
			s.next()
			return pos, s.switch2('=', token.SLASH2, token.SLASH2_EQ), ""
		}
		return pos, s.switch2('=', token.SLASH, token.SLASH_EQ), ""
	case '%':
		return pos, s.switch2('=', token.PCT, token.PCT_EQ), ""
	case '&':
		return pos, s.switch2('=', token.AMP, token.AMP_EQ), ""
	case '|':
		return pos, s.switch2('=', token.PIPE, token.PIPE_EQ), ""
	case '^':
		return pos, s.switch2('=', token.CARET, token.CARET_EQ), ""
	case '~':
		return pos, token.TILDE, ""
	case '<':
		if s.ch == '<' {
			s.next()
			return pos, s.switch2('=', token.LTLT, token.LTLT_EQ), ""
		}
		return pos, s.switch2('=', token.LT, token.LE), ""
	case '>':
		if s.ch == '>' {
			s.next()
			return pos, s.switch2('=', token.GTGT, token.GTGT_EQ), ""
		}
		return pos, s.switch2('=', token.GT, token.GE), ""
	case '=':
		return pos, s.switch2('=', token.ASSIGN, token.EQ), ""
	case '!':
		if s.ch == '=' {
			s.next()
			return pos, token.NE, ""
		}
		s.error(pos.Offset(), "unexpected character '!'")
		return pos, token.ILLEGAL, "!"
	case '(':
		s.parenDepth++
		return pos, token.LPAREN, ""
	case ')':
		s.parenDepth--
		return pos, token.RPAREN, ""
	case '[':
		s.parenDepth++
		return pos, token.LBRACK, ""
	case ']':
		s.parenDepth--
		return pos, token.RBRACK, ""
	case '{':
		s.parenDepth++
		return pos, token.LBRACE, ""
	case '}':
		s.parenDepth--
		return pos, token.RBRACE, ""
	case ',':
		return pos, token.COMMA, ""
	case '.':
		return pos, token.DOT, ""
	case ':':
		return pos, token.COLON, ""
	case ';':
		return pos, token.SEMI, ""
	default:
		s.error(pos.Offset(), "unexpected character "+string(ch))
		return pos, token.ILLEGAL, string(ch)
	}
}

// switch2 consumes ch2 if it follows immediately, returning tok2; else tok1.
func (s *Scanner) switch2(ch2 rune, tok1, tok2 token.Token) token.Token {
	if s.ch == ch2 {
		s.next()
		return tok2
	}
	return tok1
}

func (s *Scanner) skipSpacesAndComments() {
	for {
		switch s.ch {
		case ' ', '\t', '\r':
			s.next()
		case '\\':
			// line continuation: backslash immediately before newline.
			if s.peek() == '\n' {
				s.next()
				s.next()
				s.file.AddLine(s.offset)
				continue
			}
			return
		case '#':
			for s.ch != '\n' && s.ch != eof {
				s.next()
			}
		default:
			return
		}
	}
}

// scanIndentation is called only at the start of a logical line outside
// brackets. It consumes leading whitespace, skips blank/comment-only lines,
// and returns an INDENT/DEDENT token if the new indentation differs from
// the current level (Python-style block structure).
func (s *Scanner) scanIndentation() (token.Token, token.Pos, bool) {
	for {
		width := 0
		for s.ch == ' ' || s.ch == '\t' {
			if s.ch == '\t' {
				width += 8 - width%8
			} else {
				width++
			}
			s.next()
		}
		if s.ch == '#' {
			for s.ch != '\n' && s.ch != eof {
				s.next()
			}
		}
		if s.ch == '\n' {
			s.file.AddLine(s.offset + 1)
			s.next()
			continue
		}
		if s.ch == eof {
			width = 0
		}
		s.atLineStart = false
		pos := s.file.Pos(s.offset)
		top := s.indents[len(s.indents)-1]
		switch {
		case width > top:
			s.indents = append(s.indents, width)
			return token.INDENT, pos, true
		case width < top:
			n := 0
			for len(s.indents) > 1 && s.indents[len(s.indents)-1] > width {
				s.indents = s.indents[:len(s.indents)-1]
				n++
			}
			if n > 0 {
				s.pendingDedents = n - 1
				return token.DEDENT, pos, true
			}
		}
		return token.ILLEGAL, pos, false
	}
}

func (s *Scanner) scanIdentifier() string {
	start := s.offset
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}
	return string(s.src[start:s.offset])
}

func (s *Scanner) scanNumber() string {
	start := s.offset
	if s.ch == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.next()
		s.next()
		for isHex(s.ch) {
			s.next()
		}
		return string(s.src[start:s.offset])
	}
	for isDigit(s.ch) || s.ch == '_' {
		s.next()
	}
	return string(s.src[start:s.offset])
}

func isHex(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func (s *Scanner) scanString(quote byte) string {
	start := s.offset - 1 // include opening quote
	triple := false
	if byte(s.ch) == quote && s.peek() == quote {
		triple = true
		s.next()
		s.next()
	}
	for {
		if s.ch == eof {
			s.error(s.offset, "unterminated string literal")
			break
		}
		if s.ch == '\\' {
			s.next()
			if s.ch != eof {
				s.next()
			}
			continue
		}
		if byte(s.ch) == quote {
			if !triple {
				s.next()
				break
			}
			save := s.offset
			s.next()
			if byte(s.ch) == quote && s.peek() == quote {
				s.next()
				s.next()
				break
			}
			s.offset = save // not a closing triple; keep scanning
			s.next()
			continue
		}
		if s.ch == '\n' && !triple {
			s.error(s.offset, "unterminated string literal")
			break
		}
		s.next()
	}
	return string(s.src[start:s.offset])
}
