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
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/util/source"
	"github.com/consensys/go-adsl/pkg/util/source/sexp"
)

// Read a model from a given source file.  A model is a sequence of
// declarations, each of which can only refer to things declared before it.
// Every malformed declaration is reported, rather than just the first.
func Read(srcfile *source.File) (*ast.Model, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(srcfile)
	// Check file parsed ok
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	var (
		p      = newReader(srcmap)
		errors []source.SyntaxError
	)
	//
	for _, term := range terms {
		if err := p.readDeclaration(term); err != nil {
			errors = append(errors, *err)
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return p.model, nil
}

// ReadString reads a model from a given string.  This is primarily useful for
// testing.
func ReadString(text string) (*ast.Model, []source.SyntaxError) {
	return Read(source.NewSourceFile("", []byte(text)))
}

// ===================================================================
// Private
// ===================================================================

type reader struct {
	srcmap *source.Map[sexp.SExp]
	model  *ast.Model
	// Variables in scope, innermost last.
	scopes []map[string]*ast.Var
	// Number of enclosing quantifiers.
	quantifiers uint
	// Set whilst reading an invariant or permission rule.
	declaring bool
}

func newReader(srcmap *source.Map[sexp.SExp]) *reader {
	return &reader{srcmap: srcmap, model: ast.NewModel()}
}

func (p *reader) error(term sexp.SExp, msg string) *source.SyntaxError {
	return p.srcmap.SyntaxError(term, msg)
}

func (p *reader) readDeclaration(s sexp.SExp) *source.SyntaxError {
	if e, ok := s.(*sexp.List); ok {
		switch e.Head() {
		case "class":
			return p.readClass(e)
		case "relation":
			return p.readRelation(e)
		case "authenticable":
			return p.readAuthenticable(e)
		case "usergroup":
			return p.readUsergroup(e)
		case "permit":
			return p.readPermit(e)
		case "invariant":
			return p.readInvariant(e)
		case "action":
			return p.readAction(e)
		}
	}
	// Error
	return p.error(s, "unexpected declaration")
}

// Read a class declaration, such as (class Student (extends Person)).
func (p *reader) readClass(l *sexp.List) *source.SyntaxError {
	var parents []ast.ClassId
	// Sanity check declaration
	if l.Len() < 2 || l.Len() > 3 || l.Get(1).AsSymbol() == nil {
		return p.error(l, "malformed class declaration")
	}
	//
	name := l.Get(1).AsSymbol().Value
	//
	if _, ok := p.model.ClassByName(name); ok {
		return p.error(l, "duplicate class declaration")
	}
	//
	if l.Len() == 3 {
		extends := l.Get(2).AsList()
		//
		if extends == nil || extends.Head() != "extends" {
			return p.error(l.Get(2), "expected (extends ...)")
		}
		//
		for _, e := range extends.Elements[1:] {
			parent, err := p.readClassName(e)
			if err != nil {
				return err
			}
			//
			parents = append(parents, parent)
		}
	}
	//
	p.model.NewClass(name, parents...)
	//
	return nil
}

// Read a relation declaration, such as (relation Person friends 0+ Person) or
// (relation Person friendOf 0+ Person (inverse-of friends)).
func (p *reader) readRelation(l *sexp.List) *source.SyntaxError {
	// Sanity check declaration
	if (l.Len() != 5 && l.Len() != 6) || l.Get(2).AsSymbol() == nil {
		return p.error(l, "malformed relation declaration")
	}
	//
	from, err := p.readClassName(l.Get(1))
	if err != nil {
		return err
	}
	//
	card, err := p.readCardinality(l.Get(3))
	if err != nil {
		return err
	}
	//
	to, err := p.readClassName(l.Get(4))
	if err != nil {
		return err
	}
	//
	name := l.Get(2).AsSymbol().Value
	//
	if _, ok := p.model.RelationByName(from, name); ok {
		return p.error(l, "duplicate relation declaration")
	} else if l.Len() == 5 {
		p.model.NewRelation(from, name, card, to)
		return nil
	}
	// Inverse relation
	inverse := l.Get(5).AsList()
	//
	if inverse == nil || inverse.Len() != 2 || inverse.Head() != "inverse-of" || inverse.Get(1).AsSymbol() == nil {
		return p.error(l.Get(5), "expected (inverse-of relation)")
	}
	//
	of, ok := p.model.RelationByName(to, inverse.Get(1).AsSymbol().Value)
	//
	if !ok {
		return p.error(inverse.Get(1), "unknown relation")
	} else if rel := p.model.Relation(of); rel.InverseOf.HasValue() {
		return p.error(inverse.Get(1), "relation is itself an inverse")
	} else if from != rel.To || to != rel.From {
		return p.error(inverse.Get(1), "inverse relation has incompatible classes")
	}
	//
	p.model.NewInverseRelation(name, card, of)
	//
	return nil
}

func (p *reader) readAuthenticable(l *sexp.List) *source.SyntaxError {
	if l.Len() != 2 {
		return p.error(l, "malformed authenticable declaration")
	} else if p.model.Authenticable().HasValue() {
		return p.error(l, "duplicate authenticable declaration")
	}
	//
	class, err := p.readClassName(l.Get(1))
	if err != nil {
		return err
	}
	//
	p.model.SetAuthenticable(class)
	//
	return nil
}

func (p *reader) readUsergroup(l *sexp.List) *source.SyntaxError {
	if l.Len() != 2 || l.Get(1).AsSymbol() == nil {
		return p.error(l, "malformed usergroup declaration")
	}
	//
	name := l.Get(1).AsSymbol().Value
	//
	if _, ok := p.model.UsergroupByName(name); ok {
		return p.error(l, "duplicate usergroup declaration")
	}
	//
	p.model.NewUsergroup(name)
	//
	return nil
}

// Read a permission rule, such as (permit (admin) (create delete) (allof Post)).
func (p *reader) readPermit(l *sexp.List) *source.SyntaxError {
	var (
		rule ast.PermissionRule
		err  *source.SyntaxError
	)
	//
	if l.Len() != 4 || l.Get(1).AsList() == nil || l.Get(2).AsList() == nil {
		return p.error(l, "malformed permission rule")
	} else if p.model.Authenticable().IsEmpty() {
		return p.error(l, "permission rule requires authenticable class")
	}
	//
	for _, g := range l.Get(1).AsList().Elements {
		id, err := p.readUsergroupName(g)
		if err != nil {
			return err
		}
		//
		rule.Usergroups = append(rule.Usergroups, id)
	}
	//
	if rule.Ops, err = p.readOps(l.Get(2).AsList()); err != nil {
		return err
	}
	//
	p.enter()
	p.declaring = true
	//
	defer func() {
		p.leave()
		p.declaring = false
	}()
	//
	if rule.Objset, err = p.readObjset(l.Get(3)); err != nil {
		return err
	}
	//
	p.model.AddRule(rule)
	//
	return nil
}

func (p *reader) readInvariant(l *sexp.List) *source.SyntaxError {
	if l.Len() != 3 || l.Get(1).AsSymbol() == nil {
		return p.error(l, "malformed invariant declaration")
	}
	//
	p.enter()
	p.declaring = true
	//
	defer func() {
		p.leave()
		p.declaring = false
	}()
	//
	formula, err := p.readBool(l.Get(2))
	if err != nil {
		return err
	}
	//
	p.model.AddInvariant(l.Get(1).AsSymbol().Value, formula)
	//
	return nil
}

// Read an action declaration, such as (action invite ((p Person)) stmt ...).
func (p *reader) readAction(l *sexp.List) *source.SyntaxError {
	var args []ast.Arg
	//
	if l.Len() < 3 || l.Get(1).AsSymbol() == nil || l.Get(2).AsList() == nil {
		return p.error(l, "malformed action declaration")
	}
	//
	name := l.Get(1).AsSymbol().Value
	//
	if _, ok := p.model.ActionByName(name); ok {
		return p.error(l, "duplicate action declaration")
	}
	//
	p.enter()
	defer p.leave()
	//
	for _, e := range l.Get(2).AsList().Elements {
		arg, err := p.readArg(e)
		if err != nil {
			return err
		}
		//
		args = append(args, arg)
	}
	//
	body, err := p.readBlock(l.Elements[3:])
	if err != nil {
		return err
	}
	//
	p.model.AddAction(ast.NewAction(name, args, body))
	//
	return nil
}

// Read an action argument, such as (p Person) or (ps Person 0+).
func (p *reader) readArg(s sexp.SExp) (ast.Arg, *source.SyntaxError) {
	var (
		l    = s.AsList()
		card = ast.One
		err  *source.SyntaxError
	)
	//
	if l == nil || l.Len() < 2 || l.Len() > 3 || l.Get(0).AsSymbol() == nil {
		return ast.Arg{}, p.error(s, "malformed action argument")
	}
	//
	class, err := p.readClassName(l.Get(1))
	if err != nil {
		return ast.Arg{}, err
	}
	//
	if l.Len() == 3 {
		if card, err = p.readCardinality(l.Get(2)); err != nil {
			return ast.Arg{}, err
		}
	}
	//
	v, err := p.declare(l.Get(0), ast.ObjsetType(card, class))
	//
	return ast.Arg{Var: v, Class: class, Card: card}, err
}

// ===================================================================
// Names
// ===================================================================

func (p *reader) readClassName(s sexp.SExp) (ast.ClassId, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		if id, ok := p.model.ClassByName(sym.Value); ok {
			return id, nil
		}
	}
	//
	return 0, p.error(s, "unknown class")
}

func (p *reader) readUsergroupName(s sexp.SExp) (ast.UsergroupId, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		if id, ok := p.model.UsergroupByName(sym.Value); ok {
			return id, nil
		}
	}
	//
	return 0, p.error(s, "unknown usergroup")
}

// readRelationName resolves a relation declared on (an ancestor of) the class
// of a given object set type.
func (p *reader) readRelationName(s sexp.SExp, t ast.Type) (ast.RelationId, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		for _, class := range t.Classes {
			if id, ok := p.model.RelationByName(class, sym.Value); ok {
				return id, nil
			}
		}
	}
	//
	return 0, p.error(s, "unknown relation")
}

func (p *reader) readOps(l *sexp.List) ([]ast.Op, *source.SyntaxError) {
	var ops []ast.Op
	//
	for _, e := range l.Elements {
		if e.AsSymbol() == nil {
			return nil, p.error(e, "expected operation")
		}
		//
		expanded, err := ast.ParseOp(e.AsSymbol().Value)
		if err != nil {
			return nil, p.error(e, err.Error())
		}
		//
		ops = append(ops, expanded...)
	}
	//
	return ops, nil
}

// readCardinality parses a cardinality, such as 1, 0..1 or 0+.
func (p *reader) readCardinality(s sexp.SExp) (ast.Cardinality, *source.SyntaxError) {
	var (
		sym   = s.AsSymbol()
		lower uint64
		upper uint64
		err   error
	)
	//
	if sym == nil {
		return ast.Cardinality{}, p.error(s, "expected cardinality")
	}
	//
	switch text := sym.Value; {
	case strings.HasSuffix(text, "+"):
		lower, err = strconv.ParseUint(strings.TrimSuffix(text, "+"), 10, 0)
		upper = ast.Unbounded
	case strings.Contains(text, ".."):
		bounds := strings.SplitN(text, "..", 2)
		//
		if lower, err = strconv.ParseUint(bounds[0], 10, 0); err == nil {
			upper, err = strconv.ParseUint(bounds[1], 10, 0)
		}
	default:
		lower, err = strconv.ParseUint(text, 10, 0)
		upper = lower
	}
	//
	if err != nil || lower > upper {
		return ast.Cardinality{}, p.error(s, fmt.Sprintf("invalid cardinality %s", sym.Value))
	}
	//
	return ast.NewCardinality(uint(lower), uint(upper)), nil
}

// ===================================================================
// Scopes
// ===================================================================

func (p *reader) enter() {
	p.scopes = append(p.scopes, make(map[string]*ast.Var))
}

func (p *reader) leave() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *reader) lookup(name string) (*ast.Var, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][name]; ok {
			return v, true
		}
	}
	//
	return nil, false
}

// declare a fresh variable in the innermost scope, shadowing any variable of
// the same name in an enclosing scope.
func (p *reader) declare(s sexp.SExp, t ast.Type) (*ast.Var, *source.SyntaxError) {
	sym := s.AsSymbol()
	//
	if sym == nil || isReserved(sym.Value) {
		return nil, p.error(s, "invalid variable name")
	}
	//
	v := ast.NewVar(sym.Value, t)
	p.scopes[len(p.scopes)-1][sym.Value] = v
	//
	return v, nil
}

// assign to a variable, reusing an existing variable of the same name and kind
// where one is in scope.
func (p *reader) assign(s sexp.SExp, t ast.Type) (*ast.Var, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		if v, ok := p.lookup(sym.Value); ok && v.Type().Bool == t.Bool {
			joined := v.Type().Join(t)
			//
			if !p.sameHierarchy(joined.Classes) {
				return nil, p.error(s, "incompatible reassignment")
			}
			//
			v.Widen(t)
			//
			return v, nil
		}
	}
	//
	return p.declare(s, t)
}

func isReserved(name string) bool {
	switch name {
	case "true", "false", "*", "currentuser", "empty":
		return true
	}
	//
	return false
}

// sameHierarchy checks whether a set of classes can be represented by a single
// sort.
func (p *reader) sameHierarchy(classes []ast.ClassId) bool {
	for _, c := range classes {
		if p.model.Hierarchy(classes[0]) != p.model.Hierarchy(c) {
			return false
		}
	}
	//
	return true
}
