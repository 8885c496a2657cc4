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

// Package resolve implements the resolver described in spec §4.4: it walks
// a parsed ast.File and annotates every Ident with its binding scope
// (Local / Module / Universe), rejecting constructs that are statically
// illegal rather than merely a runtime error.
package resolve

import (
	"fmt"
	"sort"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
)

// Universe is the set of predeclared names visible to every module (spec
// §6 "Predeclared names provider").
type Universe interface {
	Has(name string) bool
	Names() []string
}

// File is the output of resolving one ast.File: the set of names the file
// binds at module scope (in `load`/assignment order) plus any accumulated
// errors.
type File struct {
	AST      *ast.File
	Bindings []string // module-scope names bound by this file, in order
	Errors   errors.List
}

type scope struct {
	parent *scope
	names  map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]bool{}}
}

func (s *scope) define(name string) { s.names[name] = true }

func (s *scope) has(name string) bool {
	for c := s; c != nil; c = c.parent {
		if c.names[name] {
			return true
		}
	}
	return false
}

type resolver struct {
	universe Universe
	errs     *errors.List
	module   *scope
	// allowInternalLoad permits `load` of leading-underscore names (§4.4).
	allowInternalLoad bool
}

// Resolve walks f, classifying every Ident as ScopeLocal, ScopeModule, or
// ScopeUniverse, and rejecting the constructs spec §4.4 names. allowInternalLoad
// corresponds to a file having "opted into may load internal symbols".
func Resolve(f *ast.File, universe Universe, allowInternalLoad bool) *File {
	r := &resolver{
		universe:          universe,
		errs:              &errors.List{},
		module:            newScope(nil),
		allowInternalLoad: allowInternalLoad,
	}
	out := &File{AST: f}
	for _, stmt := range f.Stmts {
		r.resolveTopStmt(stmt, out)
	}
	for _, e := range r.errs.Errors() {
		out.Errors.Add(e)
	}
	return out
}

func (r *resolver) resolveTopStmt(stmt ast.Stmt, out *File) {
	switch s := stmt.(type) {
	case *ast.LoadStmt:
		r.resolveLoad(s, out)
	default:
		r.resolveStmt(stmt, r.module)
		for _, name := range bindingNames(stmt) {
			if !contains(out.Bindings, name) {
				out.Bindings = append(out.Bindings, name)
			}
		}
	}
}

func (r *resolver) resolveLoad(s *ast.LoadStmt, out *File) {
	for _, b := range s.Bindings {
		name := b.Local.Name
		if isPrivate(name) && !r.allowInternalLoad {
			r.errs.Addf(errors.Resolve, b.Local.Pos(),
				"cannot load private name %q: file has not opted into loading internal symbols", name)
		}
		if r.universe.Has(name) {
			r.errs.Addf(errors.Resolve, b.Local.Pos(),
				"cannot load %q: it shadows a universe name", name)
		}
		r.module.define(name)
		b.Local.Scope = ast.ScopeModule
		if !contains(out.Bindings, name) {
			out.Bindings = append(out.Bindings, name)
		}
	}
}

func isPrivate(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

// bindingNames reports the module-scope names a top-level statement binds
// (assignments and def), in the order they're bound.
func bindingNames(stmt ast.Stmt) []string {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return targetNames(s.LHS)
	case *ast.DefStmt:
		return []string{s.Name.Name}
	}
	return nil
}

func targetNames(e ast.Expr) []string {
	switch x := e.(type) {
	case *ast.Ident:
		return []string{x.Name}
	case *ast.TupleExpr:
		var out []string
		for _, el := range x.Elts {
			out = append(out, targetNames(el)...)
		}
		return out
	case *ast.ListExpr:
		var out []string
		for _, el := range x.Elts {
			out = append(out, targetNames(el)...)
		}
		return out
	}
	return nil
}

func (r *resolver) resolveStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		r.resolveExpr(s.RHS, sc)
		r.bindTarget(s.LHS, sc)
	case *ast.AugAssignStmt:
		if _, ok := s.LHS.(*ast.ListExpr); ok {
			r.errs.Addf(errors.Resolve, s.LHS.Pos(), "augmented assignment to list literal is not allowed")
		}
		r.resolveExpr(s.LHS, sc)
		r.resolveExpr(s.RHS, sc)
	case *ast.DefStmt:
		r.defineIdent(s.Name, sc)
		r.resolveDef(s, sc)
	case *ast.IfStmt:
		r.resolveExpr(s.Cond, sc)
		for _, st := range s.Then {
			r.resolveStmt(st, sc)
		}
		for _, st := range s.Else {
			r.resolveStmt(st, sc)
		}
	case *ast.ForStmt:
		r.resolveExpr(s.X, sc)
		r.bindTarget(s.Targets, sc)
		for _, st := range s.Body {
			r.resolveStmt(st, sc)
		}
	case *ast.ReturnStmt:
		if s.Result != nil {
			r.resolveExpr(s.Result, sc)
		}
	case *ast.ExprStmt:
		r.resolveExpr(s.X, sc)
	case *ast.LoadStmt:
		r.errs.Addf(errors.Resolve, s.Pos(), "load statement must appear at module top level")
	case *ast.BranchStmt:
		// nothing to resolve
	}
}

func (r *resolver) resolveDef(s *ast.DefStmt, parent *scope) {
	fn := newScope(parent)
	mandatoryNamedOnly := false
	seenStar := false
	seen := map[string]bool{}
	for _, p := range s.Params {
		if seen[nameOf(p.Name)] {
			r.errs.Addf(errors.Resolve, p.Name.Pos(), "duplicate parameter %q", p.Name.Name)
		}
		seen[nameOf(p.Name)] = true
		if p.StarMark {
			seenStar = true
			continue
		}
		if p.Star || p.DStar {
			seenStar = p.Star || seenStar
			r.defineIdent(p.Name, fn)
			continue
		}
		if p.Default != nil {
			r.resolveExpr(p.Default, parent)
		} else if seenStar && !p.Star {
			mandatoryNamedOnly = true
		}
		r.defineIdent(p.Name, fn)
	}
	if mandatoryNamedOnly {
		r.errs.Addf(errors.Resolve, s.Pos(),
			"function %q has a mandatory keyword-only parameter, which script-defined functions may not declare", s.Name.Name)
	}
	for _, st := range s.Body {
		r.resolveStmt(st, fn)
	}
}

func nameOf(id *ast.Ident) string {
	if id == nil {
		return ""
	}
	return id.Name
}

func (r *resolver) bindTarget(e ast.Expr, sc *scope) {
	switch x := e.(type) {
	case *ast.Ident:
		r.defineIdent(x, sc)
	case *ast.TupleExpr:
		if len(x.Elts) == 0 {
			r.errs.Addf(errors.Value, x.Pos(), "cannot assign to empty tuple/list")
		}
		for _, el := range x.Elts {
			r.bindTarget(el, sc)
		}
	case *ast.ListExpr:
		if len(x.Elts) == 0 {
			r.errs.Addf(errors.Value, x.Pos(), "cannot assign to empty tuple/list")
		}
		for _, el := range x.Elts {
			r.bindTarget(el, sc)
		}
	case *ast.IndexExpr, *ast.DotExpr:
		r.resolveExpr(x, sc)
	default:
		r.errs.Addf(errors.Resolve, e.Pos(), "invalid assignment target")
	}
}

func (r *resolver) defineIdent(id *ast.Ident, sc *scope) {
	if r.universe.Has(id.Name) {
		r.errs.Addf(errors.Resolve, id.Pos(), "cannot reassign universe name %q", id.Name)
	}
	sc.define(id.Name)
	if sc == r.module {
		id.Scope = ast.ScopeModule
	} else {
		id.Scope = ast.ScopeLocal
	}
}

func (r *resolver) resolveExpr(e ast.Expr, sc *scope) {
	switch x := e.(type) {
	case *ast.Ident:
		switch {
		case sc.has(x.Name):
			if sc == r.module {
				x.Scope = ast.ScopeModule
			} else {
				x.Scope = ast.ScopeLocal
			}
		case r.module.has(x.Name):
			x.Scope = ast.ScopeModule
		case r.universe.Has(x.Name):
			x.Scope = ast.ScopeUniverse
		default:
			x.Scope = ast.ScopeUndefined
			r.errs.Addf(errors.Name, x.Pos(), "undefined: %s%s", x.Name, suggestion(x.Name, r.knownNames(sc)))
		}
	case *ast.BasicLit:
	case *ast.ListExpr:
		for _, el := range x.Elts {
			r.resolveExpr(el, sc)
		}
	case *ast.TupleExpr:
		for _, el := range x.Elts {
			r.resolveExpr(el, sc)
		}
	case *ast.DictExpr:
		for _, e := range x.Entries {
			r.resolveExpr(e.Key, sc)
			r.resolveExpr(e.Value, sc)
		}
	case *ast.Comprehension:
		inner := newScope(sc)
		for _, c := range x.Clauses {
			switch cl := c.(type) {
			case *ast.ForClause:
				r.resolveExpr(cl.In, inner)
				r.bindTarget(cl.Targets, inner)
			case *ast.IfClause:
				r.resolveExpr(cl.Cond, inner)
			}
		}
		if x.IsDict {
			r.resolveExpr(x.KeyBody, inner)
			r.resolveExpr(x.ValueBody, inner)
		} else {
			r.resolveExpr(x.Body, inner)
		}
	case *ast.DotExpr:
		r.resolveExpr(x.X, sc)
	case *ast.IndexExpr:
		r.resolveExpr(x.X, sc)
		r.resolveExpr(x.Index, sc)
	case *ast.SliceExpr:
		r.resolveExpr(x.X, sc)
		for _, e := range []ast.Expr{x.Lo, x.Hi, x.Step} {
			if e != nil {
				r.resolveExpr(e, sc)
			}
		}
	case *ast.UnaryExpr:
		r.resolveExpr(x.X, sc)
	case *ast.BinaryExpr:
		r.resolveExpr(x.X, sc)
		r.resolveExpr(x.Y, sc)
	case *ast.CondExpr:
		r.resolveExpr(x.X, sc)
		r.resolveExpr(x.Cond, sc)
		r.resolveExpr(x.Else, sc)
	case *ast.CallExpr:
		r.resolveExpr(x.Fn, sc)
		for _, a := range x.Args {
			r.resolveExpr(a.Value, sc)
		}
	case *ast.LambdaExpr:
		inner := newScope(sc)
		for _, p := range x.Params {
			if p.Default != nil {
				r.resolveExpr(p.Default, sc)
			}
			r.defineIdent(p.Name, inner)
		}
		r.resolveExpr(x.Body, inner)
	default:
		panic(fmt.Sprintf("resolve: unhandled expression %T", e))
	}
}

func (r *resolver) knownNames(sc *scope) []string {
	set := map[string]bool{}
	for c := sc; c != nil; c = c.parent {
		for n := range c.names {
			set[n] = true
		}
	}
	for _, n := range r.universe.Names() {
		set[n] = true
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// suggestion returns a " (did you mean X?)" hint for the closest known
// name to name, or "" if none is close enough (spec §7).
func suggestion(name string, known []string) string {
	best := ""
	bestDist := -1
	for _, cand := range known {
		d := editDistance(name, cand)
		if d <= 2 && (bestDist == -1 || d < bestDist) {
			best, bestDist = cand, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func editDistance(a, b string) int {
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
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
