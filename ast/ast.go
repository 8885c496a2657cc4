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

// Package ast declares the syntax tree produced by the parser: statements,
// expressions, and the File that collects them together with the errors
// accumulated while building the tree (spec §4.3: "never throws on parse
// errors — errors are collected on the tree").
package ast

import (
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// File is the parsed representation of one source file: an ordered list of
// top-level statements plus the accumulated scanner/parser/resolver errors
// and the file's options (spec §3 "AST").
type File struct {
	Name    string
	Stmts   []Stmt
	Options FileOptions
	Errors  errors.List
	Digest  []byte // content digest, filled in by the loader node (§4.7)

	start, end token.Pos
}

// FileOptions records per-file parsing options (spec §3).
type FileOptions struct {
	// RestrictStringEscapes disallows non-standard string escape sequences.
	RestrictStringEscapes bool
	// LoadBindsInternal allows `load` of leading-underscore names (§4.4).
	LoadBindsInternal bool
}

func (f *File) Pos() token.Pos { return f.start }
func (f *File) End() token.Pos { return f.end }

// ---- identifiers and literals ----

// ScopeKind classifies where an Ident resolves to (spec §4.4).
type ScopeKind int

const (
	ScopeUndefined ScopeKind = iota
	ScopeLocal
	ScopeModule
	ScopeUniverse
	ScopePredeclared
)

// Ident is a name reference or binding occurrence.
type Ident struct {
	NamePos token.Pos
	Name    string
	Scope   ScopeKind // filled in by the resolver
	Index   int       // slot index within its scope, filled in by the resolver
}

func (x *Ident) Pos() token.Pos { return x.NamePos }
func (x *Ident) End() token.Pos { return shift(x.NamePos, len(x.Name)) }
func (*Ident) exprNode()        {}

// LiteralKind distinguishes the kinds of BasicLit.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	StringLit
	BoolLit
	NoneLit
)

// BasicLit is an int, string, bool, or None literal.
type BasicLit struct {
	ValuePos token.Pos
	Kind     LiteralKind
	Raw      string // as it appeared in source (for string: includes quotes)
	Int      int64  // valid when Kind == IntLit
	Str      string // valid when Kind == StringLit (decoded)
	Bool     bool   // valid when Kind == BoolLit
}

func (x *BasicLit) Pos() token.Pos { return x.ValuePos }
func (x *BasicLit) End() token.Pos { return shift(x.ValuePos, len(x.Raw)) }
func (*BasicLit) exprNode()        {}

// ---- composite expressions ----

// ListExpr is `[a, b, c]`.
type ListExpr struct {
	Lbrack, Rbrack token.Pos
	Elts           []Expr
}

func (x *ListExpr) Pos() token.Pos { return x.Lbrack }
func (x *ListExpr) End() token.Pos { return shift(x.Rbrack, 1) }
func (*ListExpr) exprNode()        {}

// TupleExpr is `(a, b, c)` or a bare `a, b, c` in destructuring position.
type TupleExpr struct {
	Lparen, Rparen token.Pos // Lparen may be NoPos for a bare tuple
	Elts           []Expr
}

func (x *TupleExpr) Pos() token.Pos {
	if x.Lparen.IsValid() {
		return x.Lparen
	}
	if len(x.Elts) > 0 {
		return x.Elts[0].Pos()
	}
	return token.NoPos
}
func (x *TupleExpr) End() token.Pos {
	if x.Rparen.IsValid() {
		return shift(x.Rparen, 1)
	}
	if n := len(x.Elts); n > 0 {
		return x.Elts[n-1].End()
	}
	return token.NoPos
}
func (*TupleExpr) exprNode() {}

// DictEntry is one `key: value` pair of a DictExpr.
type DictEntry struct {
	Key, Value Expr
}

// DictExpr is `{k1: v1, k2: v2}`.
type DictExpr struct {
	Lbrace, Rbrace token.Pos
	Entries        []*DictEntry
}

func (x *DictExpr) Pos() token.Pos { return x.Lbrace }
func (x *DictExpr) End() token.Pos { return shift(x.Rbrace, 1) }
func (*DictExpr) exprNode()        {}

// Comprehension is a list or dict comprehension (one or more ForClauses and
// zero or more IfClauses, spec §4.3).
type Comprehension struct {
	Lbrack         token.Pos // Lbrack for list form, Lbrace for dict form
	Rbrack         token.Pos
	IsDict         bool
	Body           Expr       // result expr for list form
	KeyBody        Expr       // key expr for dict form
	ValueBody      Expr       // value expr for dict form
	Clauses        []Clause
}

func (x *Comprehension) Pos() token.Pos { return x.Lbrack }
func (x *Comprehension) End() token.Pos { return shift(x.Rbrack, 1) }
func (*Comprehension) exprNode()        {}

// Clause is implemented by ForClause and IfClause.
type Clause interface {
	Node
	clauseNode()
}

// ForClause is `for <targets> in <iter>`.
type ForClause struct {
	For     token.Pos
	Targets Expr // Ident, TupleExpr, or ListExpr (destructuring)
	In      Expr
}

func (c *ForClause) Pos() token.Pos { return c.For }
func (c *ForClause) End() token.Pos { return c.In.End() }
func (*ForClause) clauseNode()      {}

// IfClause is `if <cond>` inside a comprehension.
type IfClause struct {
	If   token.Pos
	Cond Expr
}

func (c *IfClause) Pos() token.Pos { return c.If }
func (c *IfClause) End() token.Pos { return c.Cond.End() }
func (*IfClause) clauseNode()      {}

// DotExpr is `x.f`.
type DotExpr struct {
	X       Expr
	Dot     token.Pos
	Sel     *Ident
}

func (x *DotExpr) Pos() token.Pos { return x.X.Pos() }
func (x *DotExpr) End() token.Pos { return x.Sel.End() }
func (*DotExpr) exprNode()        {}

// IndexExpr is `x[y]`.
type IndexExpr struct {
	X            Expr
	Lbrack       token.Pos
	Index        Expr
	Rbrack       token.Pos
}

func (x *IndexExpr) Pos() token.Pos { return x.X.Pos() }
func (x *IndexExpr) End() token.Pos { return shift(x.Rbrack, 1) }
func (*IndexExpr) exprNode()        {}

// SliceExpr is `x[lo:hi:step]`; each of Lo/Hi/Step may be nil.
type SliceExpr struct {
	X                  Expr
	Lbrack             token.Pos
	Lo, Hi, Step       Expr
	Rbrack             token.Pos
}

func (x *SliceExpr) Pos() token.Pos { return x.X.Pos() }
func (x *SliceExpr) End() token.Pos { return shift(x.Rbrack, 1) }
func (*SliceExpr) exprNode()        {}

// UnaryExpr is `-x`, `not x`, `~x`.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token
	X     Expr
}

func (x *UnaryExpr) Pos() token.Pos { return x.OpPos }
func (x *UnaryExpr) End() token.Pos { return x.X.End() }
func (*UnaryExpr) exprNode()        {}

// BinaryExpr is `x op y`, including `and`/`or` (short-circuit, §4.5) and
// `in`/`not in`.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Not   bool // true for `not in`
	Y     Expr
}

func (x *BinaryExpr) Pos() token.Pos { return x.X.Pos() }
func (x *BinaryExpr) End() token.Pos { return x.Y.End() }
func (*BinaryExpr) exprNode()        {}

// CondExpr is `x if cond else y`.
type CondExpr struct {
	X, Cond, Else Expr
}

func (x *CondExpr) Pos() token.Pos { return x.X.Pos() }
func (x *CondExpr) End() token.Pos { return x.Else.End() }
func (*CondExpr) exprNode()        {}

// Argument is one call argument: positional, `name=value`, `*expr`, or
// `**expr` (spec §4.5 call protocol).
type Argument struct {
	Name   *Ident // non-nil for keyword arguments
	Value  Expr
	Star   bool // `*expr`
	DStar  bool // `**expr`
}

// CallExpr is `f(args...)`.
type CallExpr struct {
	Fn             Expr
	Lparen, Rparen token.Pos
	Args           []*Argument
}

func (x *CallExpr) Pos() token.Pos { return x.Fn.Pos() }
func (x *CallExpr) End() token.Pos { return shift(x.Rparen, 1) }
func (*CallExpr) exprNode()        {}

// Parameter is one formal parameter of a `def` (spec §3 Signature).
type Parameter struct {
	Name     *Ident
	Default  Expr // nil if mandatory
	Star     bool // `*args`
	DStar    bool // `**kwargs`
	StarMark bool // bare `*` separator (forces following params named-only)
}

// LambdaExpr is `lambda params: body`.
type LambdaExpr struct {
	LambdaPos token.Pos
	Params    []*Parameter
	Body      Expr
}

func (x *LambdaExpr) Pos() token.Pos { return x.LambdaPos }
func (x *LambdaExpr) End() token.Pos { return x.Body.End() }
func (*LambdaExpr) exprNode()        {}

// ---- statements ----

// LoadStmt is `load("module", name, alias="orig_name")`.
type LoadBinding struct {
	Local *Ident // the local name bound in this file
	Orig  *BasicLit // the original exported name as a string literal
}

type LoadStmt struct {
	LoadPos  token.Pos
	Module   *BasicLit
	Bindings []*LoadBinding
	Rparen   token.Pos
}

func (s *LoadStmt) Pos() token.Pos { return s.LoadPos }
func (s *LoadStmt) End() token.Pos { return shift(s.Rparen, 1) }
func (*LoadStmt) stmtNode()        {}

// AssignStmt is `lhs = rhs` with LHS possibly a destructuring
// tuple/list target (spec §4.3).
type AssignStmt struct {
	LHS   Expr
	OpPos token.Pos
	RHS   Expr
}

func (s *AssignStmt) Pos() token.Pos { return s.LHS.Pos() }
func (s *AssignStmt) End() token.Pos { return s.RHS.End() }
func (*AssignStmt) stmtNode()        {}

// AugAssignStmt is `lhs op= rhs`.
type AugAssignStmt struct {
	LHS   Expr
	OpPos token.Pos
	Op    token.Token
	RHS   Expr
}

func (s *AugAssignStmt) Pos() token.Pos { return s.LHS.Pos() }
func (s *AugAssignStmt) End() token.Pos { return s.RHS.End() }
func (*AugAssignStmt) stmtNode()        {}

// DefStmt is `def name(params): body`.
type DefStmt struct {
	DefPos token.Pos
	Name   *Ident
	Params []*Parameter
	Body   []Stmt
	EndPos token.Pos
}

func (s *DefStmt) Pos() token.Pos { return s.DefPos }
func (s *DefStmt) End() token.Pos { return s.EndPos }
func (*DefStmt) stmtNode()        {}

// IfStmt is `if cond: then else: else_`. An `elif` branch is a nested
// *IfStmt, the sole statement of Else.
type IfStmt struct {
	IfPos  token.Pos
	Cond   Expr
	Then   []Stmt
	Else   []Stmt // may contain a single *IfStmt for `elif`
	EndPos token.Pos
}

func (s *IfStmt) Pos() token.Pos { return s.IfPos }
func (s *IfStmt) End() token.Pos { return s.EndPos }
func (*IfStmt) stmtNode()        {}

// ForStmt is `for targets in iter: body`.
type ForStmt struct {
	ForPos  token.Pos
	Targets Expr
	X       Expr
	Body    []Stmt
	EndPos  token.Pos
}

func (s *ForStmt) Pos() token.Pos { return s.ForPos }
func (s *ForStmt) End() token.Pos { return s.EndPos }
func (*ForStmt) stmtNode()        {}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	ReturnPos token.Pos
	Result    Expr // nil for bare `return`
}

func (s *ReturnStmt) Pos() token.Pos { return s.ReturnPos }
func (s *ReturnStmt) End() token.Pos {
	if s.Result != nil {
		return s.Result.End()
	}
	return shift(s.ReturnPos, len("return"))
}
func (*ReturnStmt) stmtNode() {}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Pos() token.Pos { return s.X.Pos() }
func (s *ExprStmt) End() token.Pos { return s.X.End() }
func (*ExprStmt) stmtNode()        {}

// BranchKind distinguishes break/continue/pass.
type BranchKind int

const (
	Break BranchKind = iota
	Continue
	Pass
)

// BranchStmt is `break`, `continue`, or `pass`.
type BranchStmt struct {
	TokPos token.Pos
	Kind   BranchKind
}

func (s *BranchStmt) Pos() token.Pos { return s.TokPos }
func (s *BranchStmt) End() token.Pos { return shift(s.TokPos, branchLen(s.Kind)) }
func (*BranchStmt) stmtNode()        {}

func branchLen(k BranchKind) int {
	switch k {
	case Break:
		return len("break")
	case Continue:
		return len("continue")
	default:
		return len("pass")
	}
}

func shift(p token.Pos, n int) token.Pos {
	if !p.IsValid() {
		return p
	}
	return p.File().Pos(p.Offset() + n)
}
