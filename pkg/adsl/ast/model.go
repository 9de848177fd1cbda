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

	"github.com/consensys/go-adsl/pkg/util"
)

// ClassId is a stable handle identifying a class within a model.
type ClassId uint

// RelationId is a stable handle identifying a relation within a model.
type RelationId uint

// UsergroupId is a stable handle identifying a usergroup within a model.
type UsergroupId uint

// Class represents a class of objects in the data model.  Classes form a
// hierarchy (possibly with multiple parents) via their parent handles.
type Class struct {
	Name    string
	Parents []ClassId
}

// Relation represents a named, directed relationship between two classes.  A
// relation may be declared as the inverse of another, in which case its tuples
// are exactly those of the other relation with endpoints swapped.
type Relation struct {
	Name      string
	From      ClassId
	To        ClassId
	Card      Cardinality
	InverseOf util.Option[RelationId]
}

// Usergroup is a named group of authenticated users.
type Usergroup struct {
	Name string
}

// PermissionRule permits users in any of a set of usergroups (or every user,
// when no usergroups are given) to perform the given operations on the objects
// (or, for association operations, the tuples) denoted by an expression.  The
// expression is evaluated at the top level of an action, and may refer to the
// current user.
type PermissionRule struct {
	Usergroups []UsergroupId
	Ops        []Op
	Objset     Expr
}

// Invariant is a named boolean property which should hold in every state.
type Invariant struct {
	Name    string
	Formula Expr
}

// Model is an arena holding the classes, relations and authorisation rules of
// a data model, along with the invariants and actions defined over it.  All
// cross references are by handle, which allows cyclic structures (e.g. mutual
// inverse relations) without ownership cycles.
type Model struct {
	classes       []Class
	relations     []Relation
	usergroups    []Usergroup
	authenticable util.Option[ClassId]
	rules         []PermissionRule
	invariants    []Invariant
	actions       []*Action
}

// NewModel constructs an initially empty model.
func NewModel() *Model {
	return &Model{authenticable: util.None[ClassId]()}
}

// ============================================================================
// Construction
// ============================================================================

// NewClass allocates a new class with the given parents.
func (m *Model) NewClass(name string, parents ...ClassId) ClassId {
	for _, p := range parents {
		m.checkClass(p)
	}
	//
	m.classes = append(m.classes, Class{name, parents})
	//
	return ClassId(len(m.classes) - 1)
}

// NewRelation allocates a new relation from one class to another.
func (m *Model) NewRelation(from ClassId, name string, card Cardinality, to ClassId) RelationId {
	m.checkClass(from)
	m.checkClass(to)
	m.relations = append(m.relations, Relation{name, from, to, card, util.None[RelationId]()})
	//
	return RelationId(len(m.relations) - 1)
}

// NewInverseRelation allocates a new relation which is the inverse of an
// existing relation.  Hence, it goes from the target class of that relation
// back to its source class.
func (m *Model) NewInverseRelation(name string, card Cardinality, of RelationId) RelationId {
	base := m.Relation(of)
	//
	if base.InverseOf.HasValue() {
		panic(fmt.Sprintf("relation %s is itself an inverse", base.Name))
	}
	//
	m.relations = append(m.relations, Relation{name, base.To, base.From, card, util.Some(of)})
	//
	return RelationId(len(m.relations) - 1)
}

// NewUsergroup allocates a new usergroup.
func (m *Model) NewUsergroup(name string) UsergroupId {
	m.usergroups = append(m.usergroups, Usergroup{name})
	//
	return UsergroupId(len(m.usergroups) - 1)
}

// SetAuthenticable identifies the class whose instances are the users of the
// system.
func (m *Model) SetAuthenticable(class ClassId) {
	m.checkClass(class)
	m.authenticable = util.Some(class)
}

// AddRule adds a permission rule to this model.
func (m *Model) AddRule(rule PermissionRule) {
	m.rules = append(m.rules, rule)
}

// AddInvariant adds an invariant to this model.
func (m *Model) AddInvariant(name string, formula Expr) {
	m.invariants = append(m.invariants, Invariant{name, formula})
}

// AddAction adds an action to this model.
func (m *Model) AddAction(action *Action) {
	m.actions = append(m.actions, action)
}

// ============================================================================
// Queries
// ============================================================================

// Classes returns the handles of all classes in this model.
func (m *Model) Classes() []ClassId {
	ids := make([]ClassId, len(m.classes))
	//
	for i := range m.classes {
		ids[i] = ClassId(i)
	}
	//
	return ids
}

// Class returns the class associated with a given handle.
func (m *Model) Class(id ClassId) *Class {
	m.checkClass(id)
	return &m.classes[id]
}

// ClassByName finds a class with the given name.
func (m *Model) ClassByName(name string) (ClassId, bool) {
	for i, c := range m.classes {
		if c.Name == name {
			return ClassId(i), true
		}
	}
	//
	return 0, false
}

// Relations returns the handles of all relations in this model.
func (m *Model) Relations() []RelationId {
	ids := make([]RelationId, len(m.relations))
	//
	for i := range m.relations {
		ids[i] = RelationId(i)
	}
	//
	return ids
}

// Relation returns the relation associated with a given handle.
func (m *Model) Relation(id RelationId) *Relation {
	if uint(id) >= uint(len(m.relations)) {
		panic(fmt.Sprintf("invalid relation handle %d", id))
	}
	//
	return &m.relations[id]
}

// RelationByName finds a relation with the given name declared on a class, or
// on any of its ancestors.
func (m *Model) RelationByName(class ClassId, name string) (RelationId, bool) {
	for i, r := range m.relations {
		if r.Name == name && m.IsSubclassOf(class, r.From) {
			return RelationId(i), true
		}
	}
	//
	return 0, false
}

// BaseRelation resolves a relation to the relation whose tuples it denotes.
// For inverse relations, this is the relation it is the inverse of, and the
// inverted flag is set.
func (m *Model) BaseRelation(id RelationId) (RelationId, bool) {
	if inv := m.Relation(id).InverseOf; inv.HasValue() {
		return inv.Unwrap(), true
	}
	//
	return id, false
}

// Usergroups returns the handles of all usergroups in this model.
func (m *Model) Usergroups() []UsergroupId {
	ids := make([]UsergroupId, len(m.usergroups))
	//
	for i := range m.usergroups {
		ids[i] = UsergroupId(i)
	}
	//
	return ids
}

// Usergroup returns the usergroup associated with a given handle.
func (m *Model) Usergroup(id UsergroupId) *Usergroup {
	return &m.usergroups[id]
}

// UsergroupByName finds a usergroup with the given name.
func (m *Model) UsergroupByName(name string) (UsergroupId, bool) {
	for i, ug := range m.usergroups {
		if ug.Name == name {
			return UsergroupId(i), true
		}
	}
	//
	return 0, false
}

// Authenticable returns the class of users, if one was declared.
func (m *Model) Authenticable() util.Option[ClassId] {
	return m.authenticable
}

// Rules returns the permission rules of this model.
func (m *Model) Rules() []PermissionRule {
	return m.rules
}

// Invariants returns the invariants of this model.
func (m *Model) Invariants() []Invariant {
	return m.invariants
}

// Actions returns the actions of this model.
func (m *Model) Actions() []*Action {
	return m.actions
}

// ActionByName finds an action with the given name.
func (m *Model) ActionByName(name string) (*Action, bool) {
	for _, a := range m.actions {
		if a.Name == name {
			return a, true
		}
	}
	//
	return nil, false
}

// ============================================================================
// Hierarchy
// ============================================================================

// Children returns the classes which directly extend a given class.
func (m *Model) Children(id ClassId) []ClassId {
	var children []ClassId
	//
	for i, c := range m.classes {
		if slices.Contains(c.Parents, id) {
			children = append(children, ClassId(i))
		}
	}
	//
	return children
}

// IsSubclassOf determines whether one class is (reflexively and transitively) a
// subclass of another.
func (m *Model) IsSubclassOf(sub ClassId, super ClassId) bool {
	if sub == super {
		return true
	}
	//
	for _, p := range m.Class(sub).Parents {
		if m.IsSubclassOf(p, super) {
			return true
		}
	}
	//
	return false
}

// Related determines whether two classes may share an instance, which is the
// case when either is a subclass of the other.
func (m *Model) Related(a ClassId, b ClassId) bool {
	return m.IsSubclassOf(a, b) || m.IsSubclassOf(b, a)
}

// Hierarchy returns a representative class for the connected component of the
// class hierarchy containing a given class.  Classes in the same component
// share one sort, since an object may be an instance of several of them.  The
// representative is the component member with the smallest handle.
func (m *Model) Hierarchy(id ClassId) ClassId {
	var (
		visited  = make([]bool, len(m.classes))
		worklist = []ClassId{id}
		rep      = id
	)
	//
	for len(worklist) > 0 {
		next := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		//
		if visited[next] {
			continue
		}
		//
		visited[next] = true
		rep = min(rep, next)
		worklist = append(worklist, m.classes[next].Parents...)
		worklist = append(worklist, m.Children(next)...)
	}
	//
	return rep
}

func (m *Model) checkClass(id ClassId) {
	if uint(id) >= uint(len(m.classes)) {
		panic(fmt.Sprintf("invalid class handle %d", id))
	}
}
