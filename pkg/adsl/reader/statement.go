// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package reader

import (
	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/util/source"
	"github.com/consensys/go-adsl/pkg/util/source/sexp"
)

// readBlock reads a sequence of statements.  Some statements (e.g. create)
// expand into more than one node.
func (p *reader) readBlock(terms []sexp.SExp) (*ast.Block, *source.SyntaxError) {
	var stmts []ast.Stmt
	//
	for _, term := range terms {
		ith, err := p.readStmt(term)
		if err != nil {
			return nil, err
		}
		//
		stmts = append(stmts, ith...)
	}
	//
	return ast.NewBlock(stmts...), nil
}

// readScopedBlock reads a block whose variables are not visible after it.
func (p *reader) readScopedBlock(terms ...sexp.SExp) (*ast.Block, *source.SyntaxError) {
	p.enter()
	defer p.leave()
	//
	return p.readBlock(terms)
}

func (p *reader) readStmt(s sexp.SExp) ([]ast.Stmt, *source.SyntaxError) {
	var (
		stmt ast.Stmt
		err  *source.SyntaxError
	)
	//
	l := s.AsList()
	//
	if l == nil {
		return nil, p.error(s, "expected statement")
	}
	//
	switch l.Head() {
	case "create":
		return p.readCreate(l)
	case "block":
		stmt, err = p.readScopedBlock(l.Elements[1:]...)
	case "let":
		stmt, err = p.readLet(l)
	case "delete":
		stmt, err = p.readDelete(l)
	case "add", "remove", "set":
		stmt, err = p.readTuple(l)
	case "if":
		stmt, err = p.readIf(l)
	case "either":
		stmt, err = p.readEither(l)
	case "foreach":
		stmt, err = p.readForEach(l, ast.Coex)
	case "foreach-seq":
		stmt, err = p.readForEach(l, ast.Seq)
	case "assert":
		stmt, err = p.readAssert(l)
	case "raise":
		if l.Len() != 1 {
			return nil, p.error(l, "malformed raise statement")
		}
		//
		stmt = &ast.Raise{}
	default:
		return nil, p.error(l, "unknown statement")
	}
	//
	if err != nil {
		return nil, err
	}
	//
	return []ast.Stmt{stmt}, nil
}

// Read a creation, such as (create Person) or (create p Person).  The latter
// additionally binds the created object to a variable.
func (p *reader) readCreate(l *sexp.List) ([]ast.Stmt, *source.SyntaxError) {
	if l.Len() != 2 && l.Len() != 3 {
		return nil, p.error(l, "malformed create statement")
	}
	//
	class, err := p.readClassName(l.Get(l.Len() - 1))
	if err != nil {
		return nil, err
	}
	//
	create := &ast.CreateObj{Class: class}
	//
	if l.Len() == 2 {
		return []ast.Stmt{create}, nil
	}
	//
	created := &ast.CreatedObj{Stmt: create}
	//
	v, err := p.assign(l.Get(1), created.Type())
	if err != nil {
		return nil, err
	}
	//
	return []ast.Stmt{create, &ast.Assign{Var: v, Expr: created}}, nil
}

// Read an assignment, such as (let p (oneof (allof Person))).
func (p *reader) readLet(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	if l.Len() != 3 {
		return nil, p.error(l, "malformed let statement")
	}
	// Read expression before binding, since it may refer to a previous value
	expr, err := p.readExpr(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	v, err := p.assign(l.Get(1), expr.Type())
	if err != nil {
		return nil, err
	}
	//
	return &ast.Assign{Var: v, Expr: expr}, nil
}

func (p *reader) readDelete(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed delete statement")
	}
	//
	objset, err := p.readObjset(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	return &ast.DeleteObj{Objset: objset}, nil
}

// Read a tuple statement, such as (add p friends q), (remove p friends q) or
// (set p friends q).
func (p *reader) readTuple(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	if l.Len() != 4 {
		return nil, p.error(l, "malformed tuple statement")
	}
	//
	lhs, err := p.readObjset(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	rel, err := p.readRelationName(l.Get(2), lhs.Type())
	if err != nil {
		return nil, err
	}
	//
	rhs, err := p.readObjset(l.Get(3))
	if err != nil {
		return nil, err
	}
	// Sanity check right-hand side
	if to := p.model.Relation(rel).To; !p.compatible(rhs.Type(), to) {
		return nil, p.error(l.Get(3), "incompatible right-hand side")
	}
	//
	switch l.Head() {
	case "add":
		return &ast.CreateTup{Lhs: lhs, Relation: rel, Rhs: rhs}, nil
	case "remove":
		return &ast.DeleteTup{Lhs: lhs, Relation: rel, Rhs: rhs}, nil
	default:
		return &ast.SetTup{Lhs: lhs, Relation: rel, Rhs: rhs}, nil
	}
}

// Read a conditional, such as (if c s1) or (if c s1 s2).  Both branches share
// the enclosing scope.
func (p *reader) readIf(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	var (
		stmt ast.If
		err  *source.SyntaxError
	)
	//
	if l.Len() != 3 && l.Len() != 4 {
		return nil, p.error(l, "malformed if statement")
	}
	//
	if stmt.Cond, err = p.readBool(l.Get(1)); err != nil {
		return nil, err
	} else if stmt.Then, err = p.readBlock(l.Elements[2:3]); err != nil {
		return nil, err
	} else if l.Len() == 4 {
		if stmt.Else, err = p.readBlock(l.Elements[3:4]); err != nil {
			return nil, err
		}
	}
	//
	return &stmt, nil
}

func (p *reader) readEither(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	var stmt ast.Either
	//
	if l.Len() < 2 {
		return nil, p.error(l, "malformed either statement")
	}
	//
	for _, e := range l.Elements[1:] {
		block, err := p.readBlock([]sexp.SExp{e})
		if err != nil {
			return nil, err
		}
		//
		stmt.Blocks = append(stmt.Blocks, block)
	}
	//
	return &stmt, nil
}

// Read a loop, such as (foreach p (allof Person) s...).  The loop variable is
// only visible within the body.
func (p *reader) readForEach(l *sexp.List, flatness ast.Flatness) (ast.Stmt, *source.SyntaxError) {
	if l.Len() < 3 {
		return nil, p.error(l, "malformed foreach statement")
	}
	//
	objset, err := p.readObjset(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	p.enter()
	defer p.leave()
	//
	t := objset.Type()
	//
	v, err := p.declare(l.Get(1), t.WithCard(ast.One))
	if err != nil {
		return nil, err
	}
	//
	body, err := p.readBlock(l.Elements[3:])
	if err != nil {
		return nil, err
	}
	//
	return &ast.ForEach{Var: v, Objset: objset, Body: body, Flatness: flatness}, nil
}

func (p *reader) readAssert(l *sexp.List) (ast.Stmt, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed assert statement")
	}
	//
	formula, err := p.readBool(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	return &ast.Assert{Formula: formula}, nil
}
