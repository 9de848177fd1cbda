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

// readBool reads an expression which must be a boolean.
func (p *reader) readBool(s sexp.SExp) (ast.Expr, *source.SyntaxError) {
	expr, err := p.readExpr(s)
	//
	if err != nil {
		return nil, err
	} else if !expr.Type().Bool {
		return nil, p.error(s, "expected boolean expression")
	}
	//
	return expr, nil
}

// readObjset reads an expression which must be an object set.
func (p *reader) readObjset(s sexp.SExp) (ast.Expr, *source.SyntaxError) {
	expr, err := p.readExpr(s)
	//
	if err != nil {
		return nil, err
	} else if expr.Type().Bool {
		return nil, p.error(s, "expected object set expression")
	}
	//
	return expr, nil
}

func (p *reader) readExpr(s sexp.SExp) (ast.Expr, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		return p.readSymbol(sym)
	}
	//
	l := s.AsList()
	//
	switch l.Head() {
	case "allof":
		return p.readAllOf(l)
	case "allofusergroup":
		return p.readAllOfUsergroup(l)
	case "subset", "oneof", "tryoneof":
		return p.readChoice(l)
	case "union":
		return p.readUnion(l)
	case "deref":
		return p.readDeref(l)
	case "not":
		return p.readNot(l)
	case "and", "or":
		return p.readJunction(l)
	case "xor", "implies", "equal", "in":
		return p.readBinary(l)
	case "forall", "exists":
		return p.readQuantifier(l)
	case "isempty":
		return p.readIsEmpty(l)
	case "inusergroup":
		return p.readInUsergroup(l)
	case "permitted":
		return p.readPermitted(l)
	}
	//
	return nil, p.error(l, "unknown expression")
}

func (p *reader) readSymbol(sym *sexp.Symbol) (ast.Expr, *source.SyntaxError) {
	switch sym.Value {
	case "true":
		return &ast.BoolConst{Value: true}, nil
	case "false":
		return &ast.BoolConst{Value: false}, nil
	case "*":
		return &ast.Star{}, nil
	case "empty":
		return &ast.Empty{}, nil
	case "currentuser":
		if auth := p.model.Authenticable(); auth.HasValue() {
			return &ast.CurrentUser{Class: auth.Unwrap()}, nil
		}
		//
		return nil, p.error(sym, "no authenticable class")
	}
	//
	if v, ok := p.lookup(sym.Value); ok {
		return &ast.VarRead{Var: v}, nil
	}
	//
	return nil, p.error(sym, "unknown variable")
}

func (p *reader) readAllOf(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed allof expression")
	}
	//
	class, err := p.readClassName(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	return &ast.AllOf{Class: class}, nil
}

func (p *reader) readAllOfUsergroup(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed allofusergroup expression")
	}
	//
	group, err := p.readUsergroupName(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	user, err := p.user(l)
	if err != nil {
		return nil, err
	}
	//
	return &ast.AllOfUsergroup{Usergroup: group, Class: user}, nil
}

// Read a nondeterministic choice, such as (oneof (allof Person)).  Choices
// cannot occur under a quantifier, since they would then denote a different
// choice for each binding.  Nor can they occur in invariants or permission
// rules, which hold in every state rather than being executed.
func (p *reader) readChoice(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed choice expression")
	} else if p.quantifiers > 0 {
		return nil, p.error(l, "choice not permitted under quantifier")
	} else if p.declaring {
		return nil, p.error(l, "choice not permitted in invariant or permission rule")
	}
	//
	arg, err := p.readObjset(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	switch l.Head() {
	case "subset":
		return &ast.Subset{Arg: arg}, nil
	case "oneof":
		return &ast.OneOf{Arg: arg}, nil
	default:
		return &ast.TryOneOf{Arg: arg}, nil
	}
}

func (p *reader) readUnion(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	var union ast.Union
	//
	if l.Len() < 3 {
		return nil, p.error(l, "malformed union expression")
	}
	//
	for _, e := range l.Elements[1:] {
		arg, err := p.readObjset(e)
		if err != nil {
			return nil, err
		}
		//
		union.Args = append(union.Args, arg)
	}
	//
	if !p.sameHierarchy(union.Type().Classes) {
		return nil, p.error(l, "union of unrelated classes")
	}
	//
	return &union, nil
}

// Read a dereference, such as (deref p friends).
func (p *reader) readDeref(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 3 {
		return nil, p.error(l, "malformed deref expression")
	}
	//
	arg, err := p.readObjset(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	rel, err := p.readRelationName(l.Get(2), arg.Type())
	if err != nil {
		return nil, err
	}
	//
	return ast.NewDereference(p.model, arg, rel), nil
}

func (p *reader) readNot(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed not expression")
	}
	//
	arg, err := p.readBool(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	return &ast.Not{Arg: arg}, nil
}

func (p *reader) readJunction(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	var args []ast.Expr
	//
	for _, e := range l.Elements[1:] {
		arg, err := p.readBool(e)
		if err != nil {
			return nil, err
		}
		//
		args = append(args, arg)
	}
	//
	if l.Head() == "and" {
		return &ast.And{Args: args}, nil
	}
	//
	return &ast.Or{Args: args}, nil
}

// Read a binary expression.  Equality applies to either two booleans or two
// object sets, whilst inclusion applies only to object sets.
func (p *reader) readBinary(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 3 {
		return nil, p.error(l, "malformed binary expression")
	}
	//
	lhs, err := p.readExpr(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	rhs, err := p.readExpr(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	lt, rt := lhs.Type(), rhs.Type()
	//
	switch {
	case lt.Bool != rt.Bool:
		return nil, p.error(l, "incompatible operands")
	case !lt.Bool && l.Head() != "equal" && l.Head() != "in":
		return nil, p.error(l, "expected boolean operands")
	case lt.Bool && l.Head() == "in":
		return nil, p.error(l, "expected object set operands")
	case !lt.Bool && !p.sameHierarchy(lt.Join(rt).Classes):
		return nil, p.error(l, "object sets of unrelated classes")
	}
	//
	switch l.Head() {
	case "xor":
		return &ast.Xor{Lhs: lhs, Rhs: rhs}, nil
	case "implies":
		return &ast.Implies{Lhs: lhs, Rhs: rhs}, nil
	case "in":
		return &ast.In{Lhs: lhs, Rhs: rhs}, nil
	default:
		return &ast.Equal{Lhs: lhs, Rhs: rhs}, nil
	}
}

// Read a quantifier, such as (forall ((p (allof Person))) body).
func (p *reader) readQuantifier(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	var bindings []ast.Binding
	//
	if l.Len() != 3 || l.Get(1).AsList() == nil {
		return nil, p.error(l, "malformed quantifier")
	}
	//
	p.enter()
	p.quantifiers++
	//
	defer func() {
		p.quantifiers--
		p.leave()
	}()
	//
	for _, e := range l.Get(1).AsList().Elements {
		b := e.AsList()
		//
		if b == nil || b.Len() != 2 {
			return nil, p.error(e, "malformed quantifier binding")
		}
		//
		domain, err := p.readObjset(b.Get(1))
		if err != nil {
			return nil, err
		}
		//
		v, err := p.declare(b.Get(0), domain.Type().WithCard(ast.One))
		if err != nil {
			return nil, err
		}
		//
		bindings = append(bindings, ast.Binding{Var: v, Domain: domain})
	}
	//
	body, err := p.readBool(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	if l.Head() == "forall" {
		return &ast.ForAll{Bindings: bindings, Body: body}, nil
	}
	//
	return &ast.Exists{Bindings: bindings, Body: body}, nil
}

func (p *reader) readIsEmpty(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 2 {
		return nil, p.error(l, "malformed isempty expression")
	}
	//
	arg, err := p.readObjset(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	return &ast.IsEmpty{Arg: arg}, nil
}

// Read a usergroup test, such as (inusergroup admin) or (inusergroup admin u).
// The former tests the current user.
func (p *reader) readInUsergroup(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	var user ast.Expr
	//
	if l.Len() != 2 && l.Len() != 3 {
		return nil, p.error(l, "malformed inusergroup expression")
	}
	//
	group, err := p.readUsergroupName(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	class, err := p.user(l)
	if err != nil {
		return nil, err
	}
	//
	if l.Len() == 2 {
		user = &ast.CurrentUser{Class: class}
	} else if user, err = p.readObjset(l.Get(2)); err != nil {
		return nil, err
	} else if !p.compatible(user.Type(), class) {
		return nil, p.error(l.Get(2), "expected users")
	}
	//
	return &ast.InUsergroup{Usergroup: group, User: user}, nil
}

// Read a permission test, such as (permitted (read update) p).
func (p *reader) readPermitted(l *sexp.List) (ast.Expr, *source.SyntaxError) {
	if l.Len() != 3 || l.Get(1).AsList() == nil {
		return nil, p.error(l, "malformed permitted expression")
	}
	//
	if _, err := p.user(l); err != nil {
		return nil, err
	}
	//
	ops, err := p.readOps(l.Get(1).AsList())
	if err != nil {
		return nil, err
	}
	//
	arg, err := p.readObjset(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	return &ast.Permitted{Ops: ops, Arg: arg}, nil
}

// user returns the authenticable class, or reports an error against the
// expression requiring it.
func (p *reader) user(l *sexp.List) (ast.ClassId, *source.SyntaxError) {
	if auth := p.model.Authenticable(); auth.HasValue() {
		return auth.Unwrap(), nil
	}
	//
	return 0, p.error(l, "no authenticable class")
}

// compatible checks whether an object set can hold instances of a given class.
func (p *reader) compatible(t ast.Type, class ast.ClassId) bool {
	for _, c := range t.Classes {
		if p.model.Hierarchy(c) != p.model.Hierarchy(class) {
			return false
		}
	}
	//
	return true
}
