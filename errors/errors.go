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

// Package errors defines the error kinds, positions, and accumulating error
// lists shared by the scanner, parser, resolver, evaluator, and graph
// packages. Modeled on cue/errors: errors carry a stable machine-readable
// Code plus the chain of positions accumulated while unwinding, rather than
// being ad-hoc Go errors.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skylarklang/core/token"
)

// Code is the stable, machine-readable error kind from spec §7.
type Code int

const (
	Unknown Code = iota
	Syntax
	Resolve
	Name
	Type
	Value
	Index
	Arithmetic
	Immutable
	ConcurrentModification
	Recursion
	Interrupted
	IO
	LoadCycle
	LoadMissing
	LoadFailed
)

var codeNames = [...]string{
	Unknown:                 "unknown",
	Syntax:                  "syntax",
	Resolve:                 "resolve",
	Name:                    "name",
	Type:                    "type",
	Value:                   "value",
	Index:                   "index",
	Arithmetic:              "arithmetic",
	Immutable:               "immutable",
	ConcurrentModification:  "concurrent-modification",
	Recursion:               "recursion",
	Interrupted:             "interrupted",
	IO:                      "io",
	LoadCycle:               "load-cycle",
	LoadMissing:             "load-missing",
	LoadFailed:              "load-failed",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// Error is the interface satisfied by every error this module produces.
type Error interface {
	error
	Code() Code
	Position() token.Pos
	// InputPositions returns the chain of call-site positions accumulated
	// while the error unwound through nested calls, innermost first.
	InputPositions() []token.Pos
}

type frameError struct {
	code    Code
	pos     token.Pos
	msg     string
	frames  []token.Pos
	wrapped error
}

func (e *frameError) Error() string {
	var b strings.Builder
	b.WriteString(e.pos.String())
	b.WriteString(": ")
	b.WriteString(e.msg)
	for _, f := range e.frames {
		b.WriteString("\n\tat ")
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *frameError) Code() Code                  { return e.code }
func (e *frameError) Position() token.Pos         { return e.pos }
func (e *frameError) InputPositions() []token.Pos { return e.frames }
func (e *frameError) Unwrap() error                { return e.wrapped }

// New creates a new Error of the given kind at pos.
func New(code Code, pos token.Pos, format string, args ...interface{}) Error {
	return &frameError{code: code, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a LoadFailed-style error that carries an inner cause.
func Wrap(code Code, pos token.Pos, cause error, format string, args ...interface{}) Error {
	return &frameError{code: code, pos: pos, msg: fmt.Sprintf(format, args...), wrapped: cause}
}

// WithCallSite returns a copy of err decorated with an additional call-site
// frame, appended outermost-last as the error propagates up the stack
// (spec §7: "location chain, the error kind ... and the human-readable
// message").
func WithCallSite(err Error, pos token.Pos) Error {
	fe, ok := err.(*frameError)
	if !ok {
		return err
	}
	cp := *fe
	cp.frames = append(append([]token.Pos(nil), fe.frames...), pos)
	return &cp
}

// List accumulates errors without aborting the producing pass, matching
// spec §4.3 ("Parse errors never abort the parse").
type List struct {
	errs []Error
}

// Add appends err to the list. Nil errors are ignored.
func (l *List) Add(err Error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Addf is a convenience wrapper around New+Add.
func (l *List) Addf(code Code, pos token.Pos, format string, args ...interface{}) {
	l.Add(New(code, pos, format, args...))
}

// HasErrors reports whether any error has been recorded.
func (l *List) HasErrors() bool { return len(l.errs) > 0 }

// Errors returns the accumulated errors in the order they were added, sorted
// stably by position so that parallel/interleaved producers still report in
// source order.
func (l *List) Errors() []Error {
	out := append([]Error(nil), l.errs...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Position(), out[j].Position()
		if !pi.IsValid() || !pj.IsValid() {
			return false
		}
		return pi.Offset() < pj.Offset()
	})
	return out
}

// Err returns an error aggregating the list, or nil if the list is empty.
func (l *List) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return listErr(l.Errors())
}

type listErr []Error

func (l listErr) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}
