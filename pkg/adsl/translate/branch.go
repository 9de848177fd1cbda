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
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
)

// translateIf materialises the condition as a predicate over the positions of
// the current context, so that both the branches and the merge which follows
// them refer to the value of the condition in the state before the branch.
func (t *Translator) translateIf(s *ast.If) {
	pred := t.vocab.NewPredicate("cond", t.context.Sorts()...)
	//
	if _, star := s.Cond.(*ast.Star); !star {
		cond := t.condition(s.Cond)
		//
		t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
			return fol.Equiv(pred.Apply(ps...), cond(ps))
		}))
	}
	//
	t.branch(pred, s.Then, s.Else)
}

// translateEither chooses between the first block and the remaining blocks,
// based on an unconstrained predicate.
func (t *Translator) translateEither(s *ast.Either) {
	switch len(s.Blocks) {
	case 0:
		return
	case 1:
		t.translateBlock(s.Blocks[0])
		return
	}
	//
	var (
		pred = t.vocab.NewPredicate("either", t.context.Sorts()...)
		rest = ast.NewBlock(&ast.Either{Blocks: s.Blocks[1:]})
	)
	//
	t.branch(pred, s.Blocks[0], rest)
}

// branch translates both blocks from the current state, and then merges their
// resulting states (and variables) according to a given condition predicate.
func (t *Translator) branch(pred *fol.Predicate, then *ast.Block, els *ast.Block) {
	var (
		pre   = t.state
		env   = t.env
		level = t.context.Level()
	)
	//
	thenPost, thenEnv := t.translateBranch(pred, false, then)
	t.state, t.env = pre, env
	elsePost, elseEnv := t.translateBranch(pred, true, els)
	t.state, t.env = pre, env
	//
	sorts := mergeSorts(thenPost.SortsDifferingFrom(pre), elsePost.SortsDifferingFrom(pre))
	//
	if len(sorts) > 0 {
		t.transition(func(pre *State, post *State) {
			for _, sort := range sorts {
				post.Define(sort)
				//
				t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
					return fol.Implies(t.branchCondition(ps), fol.Equiv(post.Apply(ps, xs[0]),
						fol.IfThenElse(applyAt(pred, level, ps), thenPost.Apply(ps, xs[0]), elsePost.Apply(ps, xs[0]))))
				}, sort))
			}
		})
	}
	// Merged variables are defined relative to the state before the branch
	t.withState(pre, func() {
		t.mergeVariables(pred, env, thenEnv, elseEnv)
	})
}

func (t *Translator) translateBranch(pred *fol.Predicate, negated bool, block *ast.Block) (*State,
	*immutable.Map[*ast.Var, *variable]) {
	height := t.branches.Len()
	t.branches.Push(branch{pred, t.context.Level(), negated})
	//
	defer t.branches.Truncate(height)
	//
	t.translateBlock(block)
	//
	return t.state, t.env
}

// mergeVariables binds every variable assigned by either branch to the value
// it has on the branch actually taken.  A variable not assigned on one branch
// either keeps its original value on that branch or, if it had none, is
// empty.
func (t *Translator) mergeVariables(pred *fol.Predicate, env, thenEnv, elseEnv *immutable.Map[*ast.Var,
	*variable]) {
	level := t.context.Level()
	//
	for _, v := range changedVariables(env, thenEnv, elseEnv) {
		var (
			lhs, _ = thenEnv.Get(v)
			rhs, _ = elseEnv.Get(v)
			merged *variable
		)
		//
		if v.Type().Bool {
			l, r := valueCondition(lhs), valueCondition(rhs)
			//
			merged = t.materialiseCondition(v.Name, func(ps []fol.Term) fol.Formula {
				return fol.IfThenElse(applyAt(pred, level, ps), l(ps), r(ps))
			})
		} else {
			l, r := valueObjset(lhs), valueObjset(rhs)
			//
			sort := l.sort
			if sort == nil {
				sort = r.sort
			}
			//
			merged = t.materialiseObjset(v.Name, objset{sort, func(ps []fol.Term, o fol.Term) fol.Formula {
				return fol.IfThenElse(applyAt(pred, level, ps), l.member(ps, o), r.member(ps, o))
			}})
		}
		//
		t.env = t.env.Set(v, merged)
	}
}

func valueCondition(v *variable) condition {
	if v == nil {
		return constant(fol.False)
	}
	//
	return v.condition()
}

func valueObjset(v *variable) objset {
	if v == nil {
		return objset{}
	}
	//
	return v.objset()
}

// mergeSorts returns the union of two lists of sorts, in order of name.
func mergeSorts(lhs []*fol.Sort, rhs []*fol.Sort) []*fol.Sort {
	sorts := slices.Clone(lhs)
	//
	for _, sort := range rhs {
		if !slices.Contains(sorts, sort) {
			sorts = append(sorts, sort)
		}
	}
	//
	slices.SortFunc(sorts, func(l, r *fol.Sort) int {
		return strings.Compare(l.Name(), r.Name())
	})
	//
	return sorts
}
