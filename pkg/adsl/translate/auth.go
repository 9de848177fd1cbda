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
package translate

import (
	"slices"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
)

// currentUser returns the constant identifying the user performing the action,
// allocating it on first use.  The current user is a live instance of the
// authenticable class.
func (t *Translator) currentUser() *fol.Function {
	if t.user != nil {
		return t.user
	}
	//
	auth := t.model.Authenticable()
	//
	if auth.IsEmpty() {
		t.fail(ErrUnregisteredSymbol, "currentuser (no authenticable class)")
	}
	//
	class := t.classes[auth.Unwrap()]
	t.user = t.vocab.NewFunction(class.sort, "currentuser")
	t.axiom(fol.And(t.init.Apply(nil, t.user.Apply()), class.typ.Apply(t.user.Apply())))
	//
	return t.user
}

// usergroup returns the predicate identifying the users of a given usergroup,
// allocating it on first use.
func (t *Translator) usergroup(id ast.UsergroupId) *fol.Predicate {
	if pred, ok := t.usergroups[id]; ok {
		return pred
	}
	//
	var (
		sort = t.currentUser().Result()
		pred = t.vocab.NewPredicate("in_"+t.model.Usergroup(id).Name, sort)
	)
	//
	t.usergroups[id] = pred
	//
	return pred
}

func (t *Translator) inUsergroup(e *ast.InUsergroup) condition {
	pred := t.usergroup(e.Usergroup)
	//
	if _, ok := e.User.(*ast.CurrentUser); ok {
		user := t.currentUser()
		return constant(pred.Apply(user.Apply()))
	}
	//
	users := t.objset(e.User)
	//
	if users.isEmpty() {
		return constant(fol.True)
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return t.forAll([]*fol.Sort{users.sort}, func(xs []fol.Term) fol.Formula {
			return fol.Implies(users.member(ps, xs[0]), pred.Apply(xs[0]))
		})
	}
}

func (t *Translator) permitted(e *ast.Permitted) condition {
	var (
		set   = t.objset(e.Arg)
		state = t.state
	)
	//
	if set.isEmpty() {
		return constant(fol.True)
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return t.forAll([]*fol.Sort{set.sort}, func(xs []fol.Term) fol.Formula {
			conjuncts := make([]fol.Formula, len(e.Ops))
			//
			for i, op := range e.Ops {
				conjuncts[i] = t.permission(op, state, ps, xs[0])
			}
			//
			return fol.Implies(set.member(ps, xs[0]), fol.And(conjuncts...))
		})
	}
}

// permission holds when some rule permits the current user to perform a given
// operation on a given object, with the rules evaluated in a given state.
func (t *Translator) permission(op ast.Op, state *State, ps []fol.Term, o fol.Term) fol.Formula {
	var disjuncts []fol.Formula
	//
	for _, rule := range t.model.Rules() {
		if !slices.Contains(rule.Ops, op) {
			continue
		}
		//
		var set objset
		//
		t.declaration(state, func() { set = t.objset(rule.Objset) })
		//
		disjuncts = append(disjuncts, fol.And(t.groups(rule), set.member(ps, o)))
	}
	//
	return fol.Or(disjuncts...)
}

// permissions holds when some rule permits any of the given operations on a
// given object.
func (t *Translator) permissions(state *State, o fol.Term, ops ...ast.Op) fol.Formula {
	disjuncts := make([]fol.Formula, len(ops))
	//
	for i, op := range ops {
		disjuncts[i] = t.permission(op, state, nil, o)
	}
	//
	return fol.Or(disjuncts...)
}

// tuplePermission holds when some rule explicitly permits the current user to
// perform a given operation on a given tuple of a relation.  Only rules over
// dereferences of that relation can do so.
func (t *Translator) tuplePermission(op ast.Op, state *State, base ast.RelationId, tup fol.Term) fol.Formula {
	var disjuncts []fol.Formula
	//
	for _, rule := range t.model.Rules() {
		deref, ok := rule.Objset.(*ast.Dereference)
		//
		if !ok || !slices.Contains(rule.Ops, op) {
			continue
		} else if rb, _ := t.model.BaseRelation(deref.Relation); rb != base {
			continue
		}
		//
		var (
			_, from, to = t.RelationSort(deref.Relation)
			source      objset
			target      objset
		)
		//
		t.declaration(state, func() {
			source = t.objset(deref.Arg)
			target = t.objset(deref)
		})
		//
		disjuncts = append(disjuncts, fol.And(t.groups(rule), source.member(nil, from.Apply(tup)),
			target.member(nil, to.Apply(tup))))
	}
	//
	return fol.Or(disjuncts...)
}

// groups holds when the current user belongs to one of the usergroups of a
// rule.  Rules without usergroups apply to every user.
func (t *Translator) groups(rule ast.PermissionRule) fol.Formula {
	if len(rule.Usergroups) == 0 {
		return fol.True
	}
	//
	var (
		user      = t.currentUser().Apply()
		disjuncts = make([]fol.Formula, len(rule.Usergroups))
	)
	//
	for i, ug := range rule.Usergroups {
		disjuncts[i] = t.usergroup(ug).Apply(user)
	}
	//
	return fol.Or(disjuncts...)
}
