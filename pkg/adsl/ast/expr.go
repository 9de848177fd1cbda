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
package ast

import (
	"fmt"
	"slices"
	"strings"
)

// Expr represents a typed expression of an action body.  Every expression
// either denotes a boolean or a set of objects, as indicated by its type
// signature.  Expressions are pure, though their meaning depends upon the
// state in which they are evaluated.
type Expr interface {
	// Type returns the statically resolved type signature of this expression.
	Type() Type
	isExpr()
}

// Var is a variable of an action.  Variables are identified by their address,
// hence two distinct variables may share the same name (e.g. in disjoint
// scopes).
type Var struct {
	Name string
	typ  Type
}

// NewVar constructs a variable with a given name and type.
func NewVar(name string, typ Type) *Var {
	return &Var{name, typ}
}

// Type returns the type signature of this variable.
func (v *Var) Type() Type {
	return v.typ
}

// Widen the type of this variable so that it can also hold values of a given
// type.  This is used when a variable is reassigned.
func (v *Var) Widen(t Type) {
	v.typ = v.typ.Join(t)
}

func (v *Var) String() string {
	return v.Name
}

// Binding associates a quantified variable with the object set it ranges over.
type Binding struct {
	Var    *Var
	Domain Expr
}

// ============================================================================
// Object sets
// ============================================================================

// AllOf denotes every live instance of a class (including instances of its
// subclasses).
type AllOf struct {
	Class ClassId
}

// Empty denotes the empty object set.
type Empty struct{}

// Subset denotes an arbitrarily chosen subset of its argument.
type Subset struct {
	Arg Expr
}

// OneOf denotes a single, arbitrarily chosen element of its argument.  The
// argument must be non-empty.
type OneOf struct {
	Arg Expr
}

// TryOneOf denotes a single, arbitrarily chosen element of its argument, or
// the empty set if the argument is empty.
type TryOneOf struct {
	Arg Expr
}

// Union denotes the union of two or more object sets.
type Union struct {
	Args []Expr
}

// Dereference denotes all objects reached by following a relation from any
// object in its argument.
type Dereference struct {
	Arg      Expr
	Relation RelationId
	target   ClassId
	card     Cardinality
}

// NewDereference constructs a dereference of a given relation, resolving its
// type against the model.
func NewDereference(m *Model, arg Expr, rel RelationId) *Dereference {
	r := m.Relation(rel)
	return &Dereference{arg, rel, r.To, arg.Type().Card.Mul(r.Card)}
}

// VarRead denotes the current value of a variable.
type VarRead struct {
	Var *Var
}

// CreatedObj denotes the object created by a given creation statement.  This
// is only meaningful after the statement has executed.
type CreatedObj struct {
	Stmt *CreateObj
}

// CurrentUser denotes the user performing an action, which is an instance of
// the authenticable class.
type CurrentUser struct {
	Class ClassId
}

// AllOfUsergroup denotes all live users belonging to a given usergroup.
type AllOfUsergroup struct {
	Usergroup UsergroupId
	Class     ClassId
}

// Type implementation for Expr interface.
func (e *AllOf) Type() Type { return ObjsetType(Any, e.Class) }

// Type implementation for Expr interface.
func (e *Empty) Type() Type { return ObjsetType(Zero) }

// Type implementation for Expr interface.
func (e *Subset) Type() Type {
	t := e.Arg.Type()
	return t.WithCard(Cardinality{0, t.Card.Max})
}

// Type implementation for Expr interface.
func (e *OneOf) Type() Type {
	t := e.Arg.Type()
	//
	if t.IsEmpty() {
		return t
	}
	//
	return t.WithCard(One)
}

// Type implementation for Expr interface.
func (e *TryOneOf) Type() Type {
	t := e.Arg.Type()
	return t.WithCard(Cardinality{min(t.Card.Min, 1), min(t.Card.Max, 1)})
}

// Type implementation for Expr interface.
func (e *Union) Type() Type {
	var (
		classes []ClassId
		card    = Zero
	)
	//
	for _, arg := range e.Args {
		t := arg.Type()
		//
		for _, c := range t.Classes {
			if !slices.Contains(classes, c) {
				classes = append(classes, c)
			}
		}
		//
		card = card.Add(t.Card)
	}
	//
	return ObjsetType(card, classes...)
}

// Type implementation for Expr interface.
func (e *Dereference) Type() Type { return ObjsetType(e.card, e.target) }

// Type implementation for Expr interface.
func (e *VarRead) Type() Type { return e.Var.Type() }

// Type implementation for Expr interface.
func (e *CreatedObj) Type() Type { return ObjsetType(One, e.Stmt.Class) }

// Type implementation for Expr interface.
func (e *CurrentUser) Type() Type { return ObjsetType(One, e.Class) }

// Type implementation for Expr interface.
func (e *AllOfUsergroup) Type() Type { return ObjsetType(Any, e.Class) }

func (e *AllOf) isExpr()          {}
func (e *Empty) isExpr()          {}
func (e *Subset) isExpr()         {}
func (e *OneOf) isExpr()          {}
func (e *TryOneOf) isExpr()       {}
func (e *Union) isExpr()          {}
func (e *Dereference) isExpr()    {}
func (e *VarRead) isExpr()        {}
func (e *CreatedObj) isExpr()     {}
func (e *CurrentUser) isExpr()    {}
func (e *AllOfUsergroup) isExpr() {}

// ============================================================================
// Booleans
// ============================================================================

// BoolConst is a boolean literal.
type BoolConst struct {
	Value bool
}

// Star is a nondeterministically chosen boolean.
type Star struct{}

// Not is logical negation.
type Not struct {
	Arg Expr
}

// And is logical conjunction.
type And struct {
	Args []Expr
}

// Or is logical disjunction.
type Or struct {
	Args []Expr
}

// Xor is exclusive disjunction.
type Xor struct {
	Lhs Expr
	Rhs Expr
}

// Implies is logical implication.
type Implies struct {
	Lhs Expr
	Rhs Expr
}

// Equal compares either two booleans or two object sets.
type Equal struct {
	Lhs Expr
	Rhs Expr
}

// ForAll holds when its body holds for every assignment of objects to its
// bound variables.
type ForAll struct {
	Bindings []Binding
	Body     Expr
}

// Exists holds when its body holds for some assignment of objects to its
// bound variables.
type Exists struct {
	Bindings []Binding
	Body     Expr
}

// In holds when every object of its left-hand side is in its right-hand side.
type In struct {
	Lhs Expr
	Rhs Expr
}

// IsEmpty holds when its argument contains no objects.
type IsEmpty struct {
	Arg Expr
}

// InUsergroup holds when every object of its user argument belongs to a given
// usergroup.
type InUsergroup struct {
	Usergroup UsergroupId
	User      Expr
}

// Permitted holds when the current user is permitted to perform all of the
// given operations on every object of its argument.
type Permitted struct {
	Ops []Op
	Arg Expr
}

// Type implementation for Expr interface.
func (e *BoolConst) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Star) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Not) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *And) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Or) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Xor) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Implies) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Equal) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *ForAll) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Exists) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *In) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *IsEmpty) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *InUsergroup) Type() Type { return BoolType }

// Type implementation for Expr interface.
func (e *Permitted) Type() Type { return BoolType }

func (e *BoolConst) isExpr()   {}
func (e *Star) isExpr()        {}
func (e *Not) isExpr()         {}
func (e *And) isExpr()         {}
func (e *Or) isExpr()          {}
func (e *Xor) isExpr()         {}
func (e *Implies) isExpr()     {}
func (e *Equal) isExpr()       {}
func (e *ForAll) isExpr()      {}
func (e *Exists) isExpr()      {}
func (e *In) isExpr()          {}
func (e *IsEmpty) isExpr()     {}
func (e *InUsergroup) isExpr() {}
func (e *Permitted) isExpr()   {}

// ============================================================================
// Operations
// ============================================================================

// Op identifies an operation which can be permitted by an authorisation rule.
type Op uint

const (
	// Create permits the creation of objects.
	Create Op = iota
	// Read permits the observation of objects.
	Read
	// Update permits modification of an object's attributes.
	Update
	// Delete permits the deletion of objects.
	Delete
	// Associate permits the creation of relation tuples.
	Associate
	// Deassociate permits the deletion of relation tuples.
	Deassociate
)

var opNames = []string{"create", "read", "update", "delete", "associate", "deassociate"}

func (op Op) String() string {
	return opNames[op]
}

// ParseOp parses an operation from its name.  In addition to the operation
// names themselves, "edit" stands for update, associate and deassociate,
// whilst "all" stands for every operation.
func ParseOp(name string) ([]Op, error) {
	switch name = strings.ToLower(name); name {
	case "edit":
		return []Op{Update, Associate, Deassociate}, nil
	case "all":
		return []Op{Create, Read, Update, Delete, Associate, Deassociate}, nil
	}
	//
	if i := slices.Index(opNames, name); i >= 0 {
		return []Op{Op(i)}, nil
	}
	//
	return nil, fmt.Errorf("unknown operation \"%s\"", name)
}
