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
	"fmt"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
	log "github.com/sirupsen/logrus"
)

func (t *Translator) translateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		t.translateBlock(s)
	case *ast.Assign:
		t.translateAssign(s)
	case *ast.CreateObj:
		t.translateCreateObj(s)
	case *ast.DeleteObj:
		t.translateDeleteObj(s)
	case *ast.CreateTup:
		t.translateCreateTup(s)
	case *ast.DeleteTup:
		t.translateDeleteTup(s)
	case *ast.SetTup:
		t.translateSetTup(s)
	case *ast.If:
		t.translateIf(s)
	case *ast.Either:
		t.translateEither(s)
	case *ast.ForEach:
		t.translateForEach(s)
	case *ast.Assert:
		t.translateAssert(s)
	case *ast.Raise:
		t.translateRaise()
	default:
		panic(fmt.Sprintf("unknown statement %T", stmt))
	}
}

func (t *Translator) translateBlock(block *ast.Block) {
	if block == nil {
		return
	}
	//
	for _, stmt := range block.Stmts {
		t.translateStmt(stmt)
	}
}

func (t *Translator) translateAssign(s *ast.Assign) {
	v := t.materialise(s.Var.Name, s.Expr)
	t.env = t.env.Set(s.Var, v)
	// Top-level object sets are observable by the user
	if t.context.IsRoot() && !v.boolean && v.kind != empty {
		t.observations = append(t.observations, observation{t.branchCondition(nil), v.objset()})
	}
}

// translateCreateObj introduces a fresh object of the precise class, for every
// position of the current context.
func (t *Translator) translateCreateObj(s *ast.CreateObj) {
	var (
		class = t.classes[s.Class]
		name  = t.model.Class(s.Class).Name
		link  = t.vocab.NewFunction(class.sort, "created_"+name, t.context.Sorts()...)
		c     = creation{link, t.context}
	)
	//
	t.created[s] = c
	//
	if _, ok := t.creations[s.Class]; !ok {
		t.createdClasses = append(t.createdClasses, s.Class)
	}
	//
	t.creations[s.Class] = append(t.creations[s.Class], c)
	//
	t.transition(func(pre *State, post *State) {
		post.Define(class.sort)
		// Fresh object of the precise class
		t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
			o := link.Apply(ps...)
			return fol.Implies(t.branchCondition(ps), fol.And(fol.Not(pre.Apply(ps, o)), class.precise.Apply(o)))
		}))
		// Post state extends the pre state with exactly that object
		t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
			return fol.Implies(t.branchCondition(ps),
				fol.Equiv(post.Apply(ps, xs[0]), fol.Or(pre.Apply(ps, xs[0]), fol.Equal(xs[0], link.Apply(ps...)))))
		}, class.sort))
		// No existing tuple refers to that object
		for _, id := range t.model.Relations() {
			syms, ok := t.relations[id]
			//
			if !ok {
				continue
			}
			//
			var (
				rel   = t.model.Relation(id)
				left  = t.model.IsSubclassOf(s.Class, rel.From)
				right = t.model.IsSubclassOf(s.Class, rel.To)
			)
			//
			if !left && !right {
				continue
			}
			//
			t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
				var (
					o         = link.Apply(ps...)
					conjuncts []fol.Formula
				)
				//
				if left {
					conjuncts = append(conjuncts, fol.Not(fol.Equal(syms.left.Apply(xs[0]), o)))
				}
				//
				if right {
					conjuncts = append(conjuncts, fol.Not(fol.Equal(syms.right.Apply(xs[0]), o)))
				}
				//
				return fol.Implies(fol.And(t.branchCondition(ps), pre.Apply(ps, xs[0])), fol.And(conjuncts...))
			}, syms.sort))
		}
	})
}

// translateDeleteObj removes every object of the target set, along with every
// tuple linking any of them.
func (t *Translator) translateDeleteObj(s *ast.DeleteObj) {
	target := t.objset(s.Objset)
	//
	if target.isEmpty() {
		log.Debugf("skipping deletion of empty object set")
		return
	}
	//
	t.transition(func(pre *State, post *State) {
		post.Define(target.sort)
		//
		t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
			return fol.Implies(t.branchCondition(ps),
				fol.Equiv(post.Apply(ps, xs[0]), fol.And(pre.Apply(ps, xs[0]), fol.Not(target.member(ps, xs[0])))))
		}, target.sort))
		//
		for _, id := range t.model.Relations() {
			syms, ok := t.relations[id]
			//
			if !ok || (syms.left.Result() != target.sort && syms.right.Result() != target.sort) {
				continue
			}
			//
			post.Define(syms.sort)
			//
			t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
				return fol.Implies(t.branchCondition(ps),
					fol.Equiv(post.Apply(ps, xs[0]), fol.And(pre.Apply(ps, xs[0]),
						fol.Not(target.member(ps, syms.left.Apply(xs[0]))),
						fol.Not(target.member(ps, syms.right.Apply(xs[0]))))))
			}, syms.sort))
		}
	})
}

// tuples identifies the sides of a tuple statement, swapping them for inverse
// relations.  This returns false if either side is empty.
func (t *Translator) tuples(lhs ast.Expr, rel ast.RelationId, rhs ast.Expr) (relationSymbols, objset, objset, bool) {
	var (
		base, inverted = t.model.BaseRelation(rel)
		syms           = t.relations[base]
		left           = t.objset(lhs)
		right          = t.objset(rhs)
	)
	//
	if inverted {
		left, right = right, left
	}
	//
	if left.isEmpty() || right.isEmpty() {
		log.Debugf("skipping tuple statement over empty object set")
		return syms, left, right, false
	}
	//
	return syms, left, right, true
}

// capture defines a fresh predicate holding the objects of a set, for every
// position of the current context.  This fixes the set relative to the current
// state.
func (t *Translator) capture(name string, set objset) objset {
	return t.materialiseObjset(name, set).objset()
}

func (t *Translator) translateCreateTup(s *ast.CreateTup) {
	syms, left, right, ok := t.tuples(s.Lhs, s.Relation, s.Rhs)
	//
	if ok {
		left = t.capture("objset1_pred", left)
		right = t.capture("objset2_pred", right)
		//
		t.transition(func(pre *State, post *State) {
			t.createTuples(syms, left, right, pre, post)
		})
	}
}

func (t *Translator) translateDeleteTup(s *ast.DeleteTup) {
	syms, left, right, ok := t.tuples(s.Lhs, s.Relation, s.Rhs)
	//
	if ok {
		t.transition(func(pre *State, post *State) {
			t.deleteTuples(syms, func(ps []fol.Term, tup fol.Term) fol.Formula {
				return fol.And(left.member(ps, syms.left.Apply(tup)), right.member(ps, syms.right.Apply(tup)))
			}, pre, post)
		})
	}
}

// translateSetTup unlinks the left-hand side from everything it is related to,
// before linking it to the right-hand side.  Both sides are evaluated before
// either change.
func (t *Translator) translateSetTup(s *ast.SetTup) {
	var (
		base, inverted = t.model.BaseRelation(s.Relation)
		syms           = t.relations[base]
		anchor         = t.objset(s.Lhs)
		target         = t.objset(s.Rhs)
		from           = syms.left
	)
	//
	if anchor.isEmpty() {
		log.Debugf("skipping tuple statement over empty object set")
		return
	} else if inverted {
		from = syms.right
	}
	//
	anchor = t.capture("objset1_pred", anchor)
	//
	if !target.isEmpty() {
		target = t.capture("objset2_pred", target)
	}
	//
	t.transition(func(pre *State, post *State) {
		t.deleteTuples(syms, func(ps []fol.Term, tup fol.Term) fol.Formula {
			return anchor.member(ps, from.Apply(tup))
		}, pre, post)
	})
	//
	if !target.isEmpty() {
		left, right := anchor, target
		//
		if inverted {
			left, right = right, left
		}
		//
		t.transition(func(pre *State, post *State) {
			t.createTuples(syms, left, right, pre, post)
		})
	}
}

// createTuples adds tuples linking every object of one set to every object of
// another.  Since tuples are drawn from the sort of all potential links, the
// existence of a live tuple for each such pair must be asserted explicitly.
func (t *Translator) createTuples(syms relationSymbols, left objset, right objset, pre *State, post *State) {
	post.Define(syms.sort)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(t.branchCondition(ps),
			fol.Equiv(post.Apply(ps, xs[0]), fol.Or(pre.Apply(ps, xs[0]),
				fol.And(left.member(ps, syms.left.Apply(xs[0])), right.member(ps, syms.right.Apply(xs[0]))))))
	}, syms.sort))
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		witness := t.exists([]*fol.Sort{syms.sort}, func(ys []fol.Term) fol.Formula {
			return fol.And(post.Apply(ps, ys[0]), fol.Equal(syms.left.Apply(ys[0]), xs[0]),
				fol.Equal(syms.right.Apply(ys[0]), xs[1]))
		})
		//
		return fol.Implies(fol.And(t.branchCondition(ps), left.member(ps, xs[0]), right.member(ps, xs[1])), witness)
	}, syms.left.Result(), syms.right.Result()))
}

// deleteTuples removes those tuples satisfying a given predicate.
func (t *Translator) deleteTuples(syms relationSymbols, target membership, pre *State, post *State) {
	post.Define(syms.sort)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(t.branchCondition(ps),
			fol.Equiv(post.Apply(ps, xs[0]), fol.And(pre.Apply(ps, xs[0]), fol.Not(target(ps, xs[0])))))
	}, syms.sort))
}

func (t *Translator) translateAssert(s *ast.Assert) {
	cond := t.condition(s.Formula)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
		return fol.Implies(t.branchCondition(ps), cond(ps))
	}))
}

// translateRaise asserts that no execution reaches this point.
func (t *Translator) translateRaise() {
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
		return fol.Not(t.branchCondition(ps))
	}))
}
