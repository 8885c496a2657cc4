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

package value

import (
	"sort"
	"strings"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Struct is a record Value with named fields, optionally created by a
// provider constructor (spec §3 "Struct / provider").
type Struct struct {
	provider string // empty for an anonymous `struct(...)`
	fields   map[string]Value
	names    []string // insertion order, for AttrNames/Repr
	scope    *Scope

	label    string
	exported bool
}

func NewStruct(scope *Scope, provider string, fields map[string]Value, order []string) *Struct {
	names := append([]string(nil), order...)
	if len(names) == 0 {
		for n := range fields {
			names = append(names, n)
		}
		sort.Strings(names)
	}
	return &Struct{provider: provider, fields: fields, names: names, scope: scope}
}

func (s *Struct) Type() string {
	if s.provider != "" {
		return s.provider
	}
	return "struct"
}
func (s *Struct) Truth() bool { return true }
func (s *Struct) Freeze() {
	s.scope.Freeze()
	for _, v := range s.fields {
		v.Freeze()
	}
}

func (s *Struct) String() string { return s.Repr() }
func (s *Struct) Repr() string {
	var b strings.Builder
	b.WriteString(s.Type())
	b.WriteByte('(')
	for i, n := range s.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(Sprint(s.fields[n]))
	}
	b.WriteByte(')')
	return b.String()
}

func (s *Struct) Attr(name string) (Value, error) {
	if v, ok := s.fields[name]; ok {
		return v, nil
	}
	return nil, errors.New(errors.Type, token.NoPos, "%s has no field or method %q%s",
		s.Type(), name, didYouMean(name, s.names))
}

func (s *Struct) AttrNames() []string { return append([]string(nil), s.names...) }

// Export implements the "export" hook (spec §4.8): a struct records its own
// label the first time it is assigned at module scope. The binding name is
// not stored.
func (s *Struct) Export(label, name string) error {
	if s.exported {
		return nil
	}
	s.label = label
	s.exported = true
	return nil
}

func (s *Struct) Exported() bool { return s.exported }
func (s *Struct) Label() string  { return s.label }

func didYouMean(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein(name, c)
		if d <= 2 && (bestDist == -1 || d < bestDist) {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return " (did you mean \"" + best + "\"?)"
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1
			if cur[j-1]+1 < m {
				m = cur[j-1] + 1
			}
			if prev[j-1]+cost < m {
				m = prev[j-1] + cost
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
