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

// Package parser implements a recursive-descent parser for the
// Starlark-like source language. Like cue/parser, it never aborts on a
// syntax error: parseStmt records the error on the file's ErrorList and
// resynchronizes at the next statement boundary so the rest of the file
// still parses (spec §4.3).
package parser

import (
	"fmt"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/scanner"
	"github.com/skylarklang/core/token"
)

type tokItem struct {
	pos token.Pos
	tok token.Token
	lit string
}

type parser struct {
	file *token.File
	scan *scanner.Scanner
	errs *errors.List
	opts ast.FileOptions

	pos   token.Pos
	tok   token.Token
	lit   string
	queue []tokItem // single-token lookahead buffer, see peek()
}

// bailout is used internally to unwind out of a badly broken statement.
type bailout struct{}

func newParser(name string, src []byte, opts ast.FileOptions) *parser {
	f := token.NewFile(name, len(src))
	p := &parser{file: f, errs: &errors.List{}, opts: opts}
	p.scan = scanner.Init(f, src, func(pos token.Pos, msg string) {
		p.errs.Addf(errors.Syntax, pos, "%s", msg)
	})
	p.next()
	return p
}

func (p *parser) next() {
	if len(p.queue) > 0 {
		it := p.queue[0]
		p.queue = p.queue[1:]
		p.pos, p.tok, p.lit = it.pos, it.tok, it.lit
		return
	}
	p.pos, p.tok, p.lit = p.scanOne()
}

func (p *parser) scanOne() (token.Pos, token.Token, string) {
	for {
		pos, tok, lit := p.scan.Scan()
		if tok == token.SEMI && lit == "" {
			continue
		}
		return pos, tok, lit
	}
}

// peek returns the token following the current one without consuming it.
func (p *parser) peek() tokItem {
	if len(p.queue) == 0 {
		pos, tok, lit := p.scanOne()
		p.queue = append(p.queue, tokItem{pos, tok, lit})
	}
	return p.queue[0]
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.errs.Addf(errors.Syntax, pos, "%s", fmt.Sprintf(format, args...))
}

func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf(p.pos, "expected %s, got %s", tok, p.tok)
	} else {
		p.next()
	}
	return pos
}

func (p *parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// skipToStmtBoundary consumes tokens until a NEWLINE (at the top level) or
// DEDENT, so a broken statement doesn't cascade into spurious errors for
// the rest of the file.
func (p *parser) skipToStmtBoundary() {
	for p.tok != token.NEWLINE && p.tok != token.DEDENT && p.tok != token.EOF {
		p.next()
	}
	p.accept(token.NEWLINE)
}

// ParseFile scans, parses and (syntactically only) builds src into an
// ast.File. It never returns a non-nil error for recoverable syntax
// problems; check File.Errors instead (spec §6 `parse`).
func ParseFile(name string, src []byte, opts ast.FileOptions) *ast.File {
	p := newParser(name, src, opts)
	f := &ast.File{Name: name, Options: opts}
	for p.tok == token.NEWLINE {
		p.next()
	}
	for p.tok != token.EOF {
		f.Stmts = append(f.Stmts, p.parseTopStmt()...)
		for p.tok == token.NEWLINE {
			p.next()
		}
	}
	for _, e := range p.errs.Errors() {
		f.Errors.Add(e)
	}
	return f
}

// parseTopStmt parses one logical line (which may hold several `;`-joined
// simple statements, or one compound statement) and recovers from a broken
// statement by resynchronizing at the next statement boundary, matching
// cue/parser's panic/recover error-recovery idiom.
func (p *parser) parseTopStmt() (stmts []ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); ok {
				p.skipToStmtBoundary()
				stmts = nil
				return
			}
			panic(r)
		}
	}()
	return p.parseStmt()
}

func (p *parser) parseStmtBlock() []ast.Stmt {
	p.expect(token.COLON)
	if p.tok == token.NEWLINE {
		p.next()
		p.expect(token.INDENT)
		var stmts []ast.Stmt
		for p.tok != token.DEDENT && p.tok != token.EOF {
			stmts = append(stmts, p.parseTopStmt()...)
			for p.tok == token.NEWLINE {
				p.next()
			}
		}
		p.expect(token.DEDENT)
		return stmts
	}
	// single-line suite: `if x: pass`
	return p.parseSimpleStmtLine()
}

func (p *parser) parseStmt() []ast.Stmt {
	switch p.tok {
	case token.DEF:
		return []ast.Stmt{p.parseDefStmt()}
	case token.IF:
		return []ast.Stmt{p.parseIfStmt()}
	case token.FOR:
		return []ast.Stmt{p.parseForStmt()}
	case token.LOAD:
		s := p.parseLoadStmt()
		p.expect(token.NEWLINE)
		return []ast.Stmt{s}
	default:
		return p.parseSimpleStmtLine()
	}
}

// parseSimpleStmtLine parses one or more `;`-separated simple statements
// terminated by NEWLINE (or, inside a single-line suite, by the suite's
// end).
func (p *parser) parseSimpleStmtLine() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		if s := p.parseSimpleStmt(); s != nil {
			stmts = append(stmts, s)
		}
		if !p.accept(token.SEMI) {
			break
		}
		if p.tok == token.NEWLINE || p.tok == token.EOF || p.tok == token.DEDENT {
			break
		}
	}
	p.expect(token.NEWLINE)
	return stmts
}

func (p *parser) parseSimpleStmt() ast.Stmt {
	switch p.tok {
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		pos := p.pos
		p.next()
		return &ast.BranchStmt{TokPos: pos, Kind: ast.Break}
	case token.CONTINUE:
		pos := p.pos
		p.next()
		return &ast.BranchStmt{TokPos: pos, Kind: ast.Continue}
	case token.PASS:
		pos := p.pos
		p.next()
		return &ast.BranchStmt{TokPos: pos, Kind: ast.Pass}
	case token.LOAD:
		return p.parseLoadStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseReturnStmt() ast.Stmt {
	pos := p.expect(token.RETURN)
	if p.tok == token.NEWLINE || p.tok == token.SEMI || p.tok == token.EOF || p.tok == token.DEDENT {
		return &ast.ReturnStmt{ReturnPos: pos}
	}
	return &ast.ReturnStmt{ReturnPos: pos, Result: p.parseExprList()}
}

func (p *parser) parseLoadStmt() ast.Stmt {
	pos := p.expect(token.LOAD)
	p.expect(token.LPAREN)
	mod := p.parseBasicString()
	var bindings []*ast.LoadBinding
	for p.accept(token.COMMA) {
		if p.tok == token.RPAREN {
			break
		}
		if p.tok == token.STRING {
			orig := p.parseBasicString()
			name, _ := unquote(orig.Raw)
			bindings = append(bindings, &ast.LoadBinding{
				Local: &ast.Ident{NamePos: orig.ValuePos, Name: name},
				Orig:  orig,
			})
			continue
		}
		local := p.parseIdent()
		p.expect(token.ASSIGN)
		orig := p.parseBasicString()
		bindings = append(bindings, &ast.LoadBinding{Local: local, Orig: orig})
	}
	rparen := p.expect(token.RPAREN)
	return &ast.LoadStmt{LoadPos: pos, Module: mod, Bindings: bindings, Rparen: rparen}
}

func (p *parser) parseBasicString() *ast.BasicLit {
	if p.tok != token.STRING {
		p.errorf(p.pos, "expected string literal, got %s", p.tok)
		return &ast.BasicLit{ValuePos: p.pos, Kind: ast.StringLit, Raw: `""`}
	}
	lit := &ast.BasicLit{ValuePos: p.pos, Kind: ast.StringLit, Raw: p.lit}
	lit.Str, _ = unquote(p.lit)
	p.next()
	return lit
}

func (p *parser) parseIdent() *ast.Ident {
	if p.tok != token.IDENT {
		pos := p.pos
		p.errorf(pos, "expected identifier, got %s", p.tok)
		return &ast.Ident{NamePos: pos, Name: "_"}
	}
	id := &ast.Ident{NamePos: p.pos, Name: p.lit}
	p.next()
	return id
}

func (p *parser) parseDefStmt() ast.Stmt {
	pos := p.expect(token.DEF)
	name := p.parseIdent()
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)
	if p.tok == token.ARROW { // optional return-type annotation, ignored
		p.next()
		p.parseTest()
	}
	body := p.parseStmtBlock()
	return &ast.DefStmt{DefPos: pos, Name: name, Params: params, Body: body, EndPos: p.pos}
}

func (p *parser) parseParams() []*ast.Parameter {
	var params []*ast.Parameter
	for p.tok != token.RPAREN && p.tok != token.EOF {
		var param ast.Parameter
		if p.tok == token.STAR {
			p.next() // consume first '*'
			switch {
			case p.tok == token.STAR:
				p.next() // consume second '*', making this '**kwargs'
				param.DStar = true
				param.Name = p.parseIdent()
			case p.tok == token.IDENT:
				param.Star = true
				param.Name = p.parseIdent()
			default:
				param.StarMark = true
			}
		} else {
			param.Name = p.parseIdent()
			if p.accept(token.ASSIGN) {
				param.Default = p.parseTest()
			}
		}
		params = append(params, &param)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return params
}

func (p *parser) parseIfStmt() ast.Stmt {
	pos := p.expect(token.IF)
	cond := p.parseTest()
	then := p.parseStmtBlock()
	s := &ast.IfStmt{IfPos: pos, Cond: cond, Then: then}
	if p.tok == token.ELIF {
		s.Else = []ast.Stmt{p.parseElif()}
	} else if p.accept(token.ELSE) {
		s.Else = p.parseStmtBlock()
	}
	s.EndPos = p.pos
	return s
}

func (p *parser) parseElif() ast.Stmt {
	pos := p.expect(token.ELIF)
	cond := p.parseTest()
	then := p.parseStmtBlock()
	s := &ast.IfStmt{IfPos: pos, Cond: cond, Then: then}
	if p.tok == token.ELIF {
		s.Else = []ast.Stmt{p.parseElif()}
	} else if p.accept(token.ELSE) {
		s.Else = p.parseStmtBlock()
	}
	s.EndPos = p.pos
	return s
}

func (p *parser) parseForStmt() ast.Stmt {
	pos := p.expect(token.FOR)
	targets := p.parseTargetList()
	p.expect(token.IN)
	x := p.parseExprList()
	body := p.parseStmtBlock()
	return &ast.ForStmt{ForPos: pos, Targets: targets, X: x, Body: body, EndPos: p.pos}
}

// parseTargetList parses a comma-separated destructuring target list used
// by `for` and the LHS of `=`.
func (p *parser) parseTargetList() ast.Expr {
	first := p.parsePrimary()
	if p.tok != token.COMMA {
		return first
	}
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.IN || p.tok == token.ASSIGN || p.tok == token.COLON {
			break
		}
		elts = append(elts, p.parsePrimary())
	}
	return &ast.TupleExpr{Elts: elts}
}

func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	lhs := p.parseExprList()
	switch p.tok {
	case token.ASSIGN:
		pos := p.pos
		p.next()
		rhs := p.parseExprList()
		return &ast.AssignStmt{LHS: lhs, OpPos: pos, RHS: rhs}
	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ,
		token.SLASH2_EQ, token.PCT_EQ, token.AMP_EQ, token.PIPE_EQ,
		token.CARET_EQ, token.LTLT_EQ, token.GTGT_EQ:
		op, pos := p.tok, p.pos
		p.next()
		rhs := p.parseExprList()
		return &ast.AugAssignStmt{LHS: lhs, OpPos: pos, Op: op, RHS: rhs}
	default:
		return &ast.ExprStmt{X: lhs}
	}
}

// parseExprList parses a comma-separated list of expressions, returning a
// bare *ast.TupleExpr when there's more than one (spec §4.3 destructuring).
func (p *parser) parseExprList() ast.Expr {
	first := p.parseTest()
	if p.tok != token.COMMA {
		return first
	}
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.ASSIGN || p.tok == token.NEWLINE || p.tok == token.EOF ||
			p.tok == token.RPAREN || p.tok == token.RBRACK || p.tok == token.RBRACE ||
			p.tok == token.SEMI {
			break
		}
		elts = append(elts, p.parseTest())
	}
	return &ast.TupleExpr{Elts: elts}
}

// ---- expressions ----

func (p *parser) parseTest() ast.Expr {
	if p.tok == token.LAMBDA {
		return p.parseLambda()
	}
	x := p.parseOr()
	if p.tok == token.IF {
		p.next()
		cond := p.parseOr()
		p.expect(token.ELSE)
		els := p.parseTest()
		return &ast.CondExpr{X: x, Cond: cond, Else: els}
	}
	return x
}

func (p *parser) parseLambda() ast.Expr {
	pos := p.expect(token.LAMBDA)
	var params []*ast.Parameter
	for p.tok != token.COLON && p.tok != token.EOF {
		params = append(params, &ast.Parameter{Name: p.parseIdent()})
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.COLON)
	body := p.parseTest()
	return &ast.LambdaExpr{LambdaPos: pos, Params: params, Body: body}
}

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.tok == token.OR {
		pos := p.pos
		p.next()
		y := p.parseAnd()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: token.OR, Y: y}
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseNot()
	for p.tok == token.AND {
		pos := p.pos
		p.next()
		y := p.parseNot()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: token.AND, Y: y}
	}
	return x
}

func (p *parser) parseNot() ast.Expr {
	if p.tok == token.NOT {
		pos := p.pos
		p.next()
		return &ast.UnaryExpr{OpPos: pos, Op: token.NOT, X: p.parseNot()}
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Token]bool{
	token.EQ: true, token.NE: true, token.LT: true, token.GT: true,
	token.LE: true, token.GE: true, token.IN: true,
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseBitOr()
	for {
		if p.tok == token.NOT {
			// `not in`
			save := p.pos
			p.next()
			if p.tok != token.IN {
				p.errorf(save, "expected 'in' after 'not'")
				return x
			}
			p.next()
			y := p.parseBitOr()
			x = &ast.BinaryExpr{X: x, OpPos: save, Op: token.IN, Not: true, Y: y}
			continue
		}
		if !comparisonOps[p.tok] {
			break
		}
		op, pos := p.tok, p.pos
		p.next()
		y := p.parseBitOr()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseBitOr() ast.Expr {
	x := p.parseBitXor()
	for p.tok == token.PIPE {
		pos := p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: token.PIPE, Y: p.parseBitXor()}
	}
	return x
}

func (p *parser) parseBitXor() ast.Expr {
	x := p.parseBitAnd()
	for p.tok == token.CARET {
		pos := p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: token.CARET, Y: p.parseBitAnd()}
	}
	return x
}

func (p *parser) parseBitAnd() ast.Expr {
	x := p.parseShift()
	for p.tok == token.AMP {
		pos := p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: token.AMP, Y: p.parseShift()}
	}
	return x
}

func (p *parser) parseShift() ast.Expr {
	x := p.parseArith()
	for p.tok == token.LTLT || p.tok == token.GTGT {
		op, pos := p.tok, p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: p.parseArith()}
	}
	return x
}

func (p *parser) parseArith() ast.Expr {
	x := p.parseTerm()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, pos := p.tok, p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: p.parseTerm()}
	}
	return x
}

func (p *parser) parseTerm() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.SLASH2 || p.tok == token.PCT {
		op, pos := p.tok, p.pos
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: p.parseUnary()}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.MINUS || p.tok == token.PLUS || p.tok == token.TILDE {
		op, pos := p.tok, p.pos
		p.next()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: p.parseUnary()}
	}
	return p.parsePrimary()
}

// parsePrimary parses an operand followed by any chain of trailers
// (`.name`, `[...]`, `(...)`, slicing).
func (p *parser) parsePrimary() ast.Expr {
	x := p.parseOperand()
	for {
		switch p.tok {
		case token.DOT:
			dot := p.pos
			p.next()
			sel := p.parseIdent()
			x = &ast.DotExpr{X: x, Dot: dot, Sel: sel}
		case token.LPAREN:
			x = p.parseCall(x)
		case token.LBRACK:
			x = p.parseIndexOrSlice(x)
		default:
			return x
		}
	}
}

func (p *parser) parseCall(fn ast.Expr) ast.Expr {
	lparen := p.expect(token.LPAREN)
	var args []*ast.Argument
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args = append(args, p.parseArgument())
		if !p.accept(token.COMMA) {
			break
		}
	}
	rparen := p.expect(token.RPAREN)
	return &ast.CallExpr{Fn: fn, Lparen: lparen, Rparen: rparen, Args: args}
}

func (p *parser) parseArgument() *ast.Argument {
	if p.tok == token.STAR {
		p.next() // consume first '*'
		if p.tok == token.STAR {
			p.next() // consume second '*', making this '**expr'
			return &ast.Argument{Value: p.parseTest(), DStar: true}
		}
		return &ast.Argument{Value: p.parseTest(), Star: true}
	}
	// A single token of lookahead distinguishes `name=value` from a
	// positional expression that merely starts with an identifier.
	if p.tok == token.IDENT && p.peek().tok == token.ASSIGN {
		name := p.parseIdent()
		p.next() // consume '='
		return &ast.Argument{Name: name, Value: p.parseTest()}
	}
	return &ast.Argument{Value: p.parseTest()}
}

func (p *parser) parseIndexOrSlice(x ast.Expr) ast.Expr {
	lbrack := p.expect(token.LBRACK)
	var lo, hi, step ast.Expr
	isSlice := false
	if p.tok != token.COLON {
		lo = p.parseTest()
	}
	if p.tok == token.COLON {
		isSlice = true
		p.next()
		if p.tok != token.COLON && p.tok != token.RBRACK {
			hi = p.parseTest()
		}
		if p.accept(token.COLON) {
			if p.tok != token.RBRACK {
				step = p.parseTest()
			}
		}
	}
	rbrack := p.expect(token.RBRACK)
	if isSlice {
		return &ast.SliceExpr{X: x, Lbrack: lbrack, Lo: lo, Hi: hi, Step: step, Rbrack: rbrack}
	}
	return &ast.IndexExpr{X: x, Lbrack: lbrack, Index: lo, Rbrack: rbrack}
}

func (p *parser) parseOperand() ast.Expr {
	switch p.tok {
	case token.IDENT:
		return p.parseIdent()
	case token.INT:
		lit := &ast.BasicLit{ValuePos: p.pos, Kind: ast.IntLit, Raw: p.lit}
		lit.Int = parseIntLiteral(p.lit)
		p.next()
		return lit
	case token.STRING:
		lit := &ast.BasicLit{ValuePos: p.pos, Kind: ast.StringLit, Raw: p.lit}
		lit.Str, _ = unquote(p.lit)
		p.next()
		return lit
	case token.LPAREN:
		lparen := p.pos
		p.next()
		if p.tok == token.RPAREN {
			rparen := p.pos
			p.next()
			return &ast.TupleExpr{Lparen: lparen, Rparen: rparen}
		}
		first := p.parseTest()
		if p.tok == token.FOR {
			clauses := p.parseCompClauses()
			rparen := p.expect(token.RPAREN)
			return &ast.Comprehension{Lbrack: lparen, Rbrack: rparen, Body: first, Clauses: clauses}
		}
		if p.tok == token.COMMA {
			elts := []ast.Expr{first}
			for p.accept(token.COMMA) {
				if p.tok == token.RPAREN {
					break
				}
				elts = append(elts, p.parseTest())
			}
			rparen := p.expect(token.RPAREN)
			return &ast.TupleExpr{Lparen: lparen, Rparen: rparen, Elts: elts}
		}
		rparen := p.expect(token.RPAREN)
		_ = rparen
		return first
	case token.LBRACK:
		return p.parseListOrComp()
	case token.LBRACE:
		return p.parseDictOrComp()
	default:
		pos := p.pos
		p.errorf(pos, "unexpected token %s", p.tok)
		p.next()
		return &ast.BasicLit{ValuePos: pos, Kind: ast.NoneLit, Raw: "None"}
	}
}

func (p *parser) parseListOrComp() ast.Expr {
	lbrack := p.expect(token.LBRACK)
	if p.tok == token.RBRACK {
		rbrack := p.pos
		p.next()
		return &ast.ListExpr{Lbrack: lbrack, Rbrack: rbrack}
	}
	first := p.parseTest()
	if p.tok == token.FOR {
		clauses := p.parseCompClauses()
		rbrack := p.expect(token.RBRACK)
		return &ast.Comprehension{Lbrack: lbrack, Rbrack: rbrack, Body: first, Clauses: clauses}
	}
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.RBRACK {
			break
		}
		elts = append(elts, p.parseTest())
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.ListExpr{Lbrack: lbrack, Rbrack: rbrack, Elts: elts}
}

func (p *parser) parseDictOrComp() ast.Expr {
	lbrace := p.expect(token.LBRACE)
	if p.tok == token.RBRACE {
		rbrace := p.pos
		p.next()
		return &ast.DictExpr{Lbrace: lbrace, Rbrace: rbrace}
	}
	key := p.parseTest()
	p.expect(token.COLON)
	val := p.parseTest()
	if p.tok == token.FOR {
		clauses := p.parseCompClauses()
		rbrace := p.expect(token.RBRACE)
		return &ast.Comprehension{Lbrack: lbrace, Rbrack: rbrace, IsDict: true, KeyBody: key, ValueBody: val, Clauses: clauses}
	}
	entries := []*ast.DictEntry{{Key: key, Value: val}}
	for p.accept(token.COMMA) {
		if p.tok == token.RBRACE {
			break
		}
		k := p.parseTest()
		p.expect(token.COLON)
		v := p.parseTest()
		entries = append(entries, &ast.DictEntry{Key: k, Value: v})
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.DictExpr{Lbrace: lbrace, Rbrace: rbrace, Entries: entries}
}

func (p *parser) parseCompClauses() []ast.Clause {
	var clauses []ast.Clause
	for p.tok == token.FOR || p.tok == token.IF {
		if p.tok == token.FOR {
			pos := p.pos
			p.next()
			targets := p.parseTargetList()
			p.expect(token.IN)
			in := p.parseOr()
			clauses = append(clauses, &ast.ForClause{For: pos, Targets: targets, In: in})
		} else {
			pos := p.pos
			p.next()
			clauses = append(clauses, &ast.IfClause{If: pos, Cond: p.parseOr()})
		}
	}
	return clauses
}
