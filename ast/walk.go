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

package ast

// Visitor is called once per node during Walk. If Visitor returns a non-nil
// Visitor w, Walk visits each child of the node with w; it then calls w
// again with a nil node to signal the end of the children (mirroring
// cue/ast/walk.go's pre/post visitor pairing).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	w := v.Visit(node)
	if w == nil {
		return
	}
	switch n := node.(type) {
	case *File:
		for _, s := range n.Stmts {
			Walk(w, s)
		}
	case *LoadStmt:
		for _, b := range n.Bindings {
			Walk(w, b.Local)
		}
	case *AssignStmt:
		Walk(w, n.LHS)
		Walk(w, n.RHS)
	case *AugAssignStmt:
		Walk(w, n.LHS)
		Walk(w, n.RHS)
	case *DefStmt:
		Walk(w, n.Name)
		for _, p := range n.Params {
			Walk(w, p.Name)
			if p.Default != nil {
				Walk(w, p.Default)
			}
		}
		for _, s := range n.Body {
			Walk(w, s)
		}
	case *IfStmt:
		Walk(w, n.Cond)
		for _, s := range n.Then {
			Walk(w, s)
		}
		for _, s := range n.Else {
			Walk(w, s)
		}
	case *ForStmt:
		Walk(w, n.Targets)
		Walk(w, n.X)
		for _, s := range n.Body {
			Walk(w, s)
		}
	case *ReturnStmt:
		if n.Result != nil {
			Walk(w, n.Result)
		}
	case *ExprStmt:
		Walk(w, n.X)
	case *BranchStmt:
		// leaf
	case *Ident, *BasicLit:
		// leaves
	case *ListExpr:
		for _, e := range n.Elts {
			Walk(w, e)
		}
	case *TupleExpr:
		for _, e := range n.Elts {
			Walk(w, e)
		}
	case *DictExpr:
		for _, e := range n.Entries {
			Walk(w, e.Key)
			Walk(w, e.Value)
		}
	case *Comprehension:
		if n.IsDict {
			Walk(w, n.KeyBody)
			Walk(w, n.ValueBody)
		} else {
			Walk(w, n.Body)
		}
		for _, c := range n.Clauses {
			Walk(w, c)
		}
	case *ForClause:
		Walk(w, n.Targets)
		Walk(w, n.In)
	case *IfClause:
		Walk(w, n.Cond)
	case *DotExpr:
		Walk(w, n.X)
		Walk(w, n.Sel)
	case *IndexExpr:
		Walk(w, n.X)
		Walk(w, n.Index)
	case *SliceExpr:
		Walk(w, n.X)
		if n.Lo != nil {
			Walk(w, n.Lo)
		}
		if n.Hi != nil {
			Walk(w, n.Hi)
		}
		if n.Step != nil {
			Walk(w, n.Step)
		}
	case *UnaryExpr:
		Walk(w, n.X)
	case *BinaryExpr:
		Walk(w, n.X)
		Walk(w, n.Y)
	case *CondExpr:
		Walk(w, n.X)
		Walk(w, n.Cond)
		Walk(w, n.Else)
	case *CallExpr:
		Walk(w, n.Fn)
		for _, a := range n.Args {
			if a.Name != nil {
				Walk(w, a.Name)
			}
			Walk(w, a.Value)
		}
	case *LambdaExpr:
		for _, p := range n.Params {
			Walk(w, p.Name)
			if p.Default != nil {
				Walk(w, p.Default)
			}
		}
		Walk(w, n.Body)
	}
	w.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for each node in the tree in depth-first order, including
// nil at the end of each node's children, matching ast.Walk's convention.
// Inspect stops descending into a subtree when f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
