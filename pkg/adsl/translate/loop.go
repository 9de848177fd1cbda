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

	"github.com/benbjohnson/immutable"
	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
	log "github.com/sirupsen/logrus"
)

// translateForEach translates the body of a loop once, within a child context
// whose innermost position identifies the iteration.  The states reached by
// the iterations are then merged into the state following the loop.  Outer
// variables reassigned by the body of a sequential loop are carried from each
// iteration to the next, and hold the value of the last iteration after the
// loop.  Otherwise, reassignments within the body do not escape it.
func (t *Translator) translateForEach(s *ast.ForEach) {
	set := t.objset(s.Objset)
	//
	if set.isEmpty() {
		log.Debugf("skipping loop over empty object set")
		return
	}
	//
	var (
		flatness = s.Flatness
		pre      = t.state
		parent   = t.context
		env      = t.env
		level    = parent.Level()
	)
	//
	if t.config.ForceCoex {
		flatness = ast.Coex
	}
	//
	log.Debugf("translating %s loop over %s", flatness, set.sort)
	//
	child := parent.NewChildContext(t.vocab, "iteration", flatness, set.sort)
	// Live iterations are those over live members of the object set
	t.axiom(t.forAllAt(child, func(ps []fol.Term, _ []fol.Term) fol.Formula {
		var (
			outer = ps[:level]
			o     = ps[level]
		)
		//
		return fol.Equiv(child.Type(ps), fol.And(parent.Type(outer), pre.Apply(outer, o), set.member(outer, o)))
	}))
	//
	if flatness == ast.Seq {
		t.orderAxioms(child)
	}
	// Translate the body
	var (
		iterPre = NewState(t.vocab, "s", child)
		iterEnv = env.Set(s.Var, &variable{kind: positional, sort: set.sort, level: level})
		carried []carry
	)
	//
	if flatness == ast.Coex {
		iterPre.Link(pre)
	} else {
		carried = t.carriedVariables(env, s.Body, child)
	}
	//
	for _, c := range carried {
		iterEnv = iterEnv.Set(c.v, c.pre)
	}
	//
	t.context = child
	t.state = iterPre
	t.env = iterEnv
	t.translateBlock(s.Body)
	//
	iterPost, iterEnv := t.state, t.env
	t.context, t.state, t.env = parent, pre, env
	affected := iterPost.SortsDifferingFrom(iterPre)
	//
	if flatness == ast.Seq {
		t.chainAxioms(child, pre, iterPre, iterPost, affected)
		t.chainVariables(child, iterEnv, carried)
	}
	//
	if len(affected) == 0 {
		return
	}
	//
	t.transition(func(pre *State, post *State) {
		for _, sort := range affected {
			post.Define(sort)
			//
			if flatness == ast.Coex {
				t.axiom(t.coexMerge(child, pre, iterPost, post, sort))
			} else {
				t.axiom(t.seqMerge(child, pre, iterPost, post, sort))
			}
		}
	})
}

// coexMerge determines the state following a loop whose iterations commute.
// An object is live after the loop if it was live before and remained so after
// every iteration, or if it was not live before but became so after some
// iteration.
func (t *Translator) coexMerge(child *Context, pre, iterPost, post *State, sort *fol.Sort) fol.Formula {
	iteration := []*fol.Sort{child.Sorts()[child.Level()-1]}
	//
	return t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		var (
			o          = xs[0]
			remaining  = t.forAll(iteration, func(is []fol.Term) fol.Formula {
				inner := extend(ps, is[0])
				return fol.Implies(child.Type(inner), iterPost.Apply(inner, o))
			})
			introduced = t.exists(iteration, func(is []fol.Term) fol.Formula {
				inner := extend(ps, is[0])
				return fol.And(child.Type(inner), iterPost.Apply(inner, o))
			})
		)
		//
		return fol.Implies(t.branchCondition(ps), fol.Equiv(post.Apply(ps, o),
			fol.Or(fol.And(pre.Apply(ps, o), remaining), fol.And(fol.Not(pre.Apply(ps, o)), introduced))))
	}, sort)
}

// seqMerge determines the state following a sequential loop, which is that
// following its last iteration or, if there are no iterations, that before
// the loop.
func (t *Translator) seqMerge(child *Context, pre, iterPost, post *State, sort *fol.Sort) fol.Formula {
	iteration := []*fol.Sort{child.Sorts()[child.Level()-1]}
	//
	return t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		var (
			o        = xs[0]
			nonempty = t.exists(iteration, func(is []fol.Term) fol.Formula {
				return child.Type(extend(ps, is[0]))
			})
			last = t.exists(iteration, func(is []fol.Term) fol.Formula {
				inner := extend(ps, is[0])
				return fol.And(child.Type(inner), t.isLast(child, ps, is[0]), iterPost.Apply(inner, o))
			})
		)
		//
		return fol.Implies(t.branchCondition(ps),
			fol.Equiv(post.Apply(ps, o), fol.IfThenElse(nonempty, last, pre.Apply(ps, o))))
	}, sort)
}

// chainAxioms determine the state before each iteration of a sequential loop.
// For affected sorts, this is the state before the loop for the first
// iteration, and the state after the preceding iteration otherwise.  For
// unaffected sorts, it is simply the state before the loop.
func (t *Translator) chainAxioms(child *Context, pre, iterPre, iterPost *State, affected []*fol.Sort) {
	var (
		level     = child.Level() - 1
		iteration = child.Sorts()[level]
	)
	//
	for _, sort := range iterPre.Sorts() {
		if containsSort(affected, sort) {
			continue
		}
		//
		t.axiom(t.forAllAt(child, func(ps []fol.Term, xs []fol.Term) fol.Formula {
			return fol.Implies(child.Type(ps), fol.Equiv(iterPre.Apply(ps, xs[0]), pre.Apply(ps[:level], xs[0])))
		}, sort))
	}
	//
	for _, sort := range affected {
		t.axiom(t.forAllAt(child, func(ps []fol.Term, xs []fol.Term) fol.Formula {
			outer := ps[:level]
			//
			return fol.Implies(fol.And(child.Type(ps), t.isFirst(child, outer, ps[level])),
				fol.Equiv(iterPre.Apply(ps, xs[0]), pre.Apply(outer, xs[0])))
		}, sort))
		//
		t.axiom(t.forAllAt(t.context, func(outer []fol.Term, xs []fol.Term) fol.Formula {
			var (
				a = extend(outer, xs[0])
				b = extend(outer, xs[1])
			)
			//
			return fol.Implies(child.JustBefore(outer, xs[0], xs[1]),
				fol.Equiv(iterPre.Apply(b, xs[2]), iterPost.Apply(a, xs[2])))
		}, iteration, iteration, sort))
	}
}

// carry is an outer variable reassigned by the body of a sequential loop.
type carry struct {
	v *ast.Var
	// Binding before the loop
	outer *variable
	// Binding at the start of each iteration
	pre *variable
	// Sort of the objects held, or nil for a boolean
	sort *fol.Sort
}

func (c carry) extra() []*fol.Sort {
	if c.sort == nil {
		return nil
	}
	//
	return []*fol.Sort{c.sort}
}

// carriedVariables allocates, for every variable bound before a loop and
// reassigned by its body, a predicate holding its value at the start of each
// iteration.
func (t *Translator) carriedVariables(env *immutable.Map[*ast.Var, *variable], body *ast.Block,
	child *Context) []carry {
	var carried []carry
	//
	for _, v := range assignedVariables(body) {
		outer, ok := env.Get(v)
		//
		if !ok {
			continue
		}
		//
		c := carry{v: v, outer: outer}
		//
		if typ := v.Type(); typ.Bool {
			pred := t.vocab.NewPredicate(v.Name, child.Sorts()...)
			c.pre = &variable{kind: materialised, boolean: true, pred: pred, level: child.Level()}
		} else if len(typ.Classes) > 0 {
			c.sort = t.classes[typ.Classes[0]].sort
			pred := t.vocab.NewPredicate(v.Name, append(slices.Clone(child.Sorts()), c.sort)...)
			c.pre = &variable{kind: materialised, sort: c.sort, pred: pred, level: child.Level()}
		} else {
			// Always empty
			continue
		}
		//
		carried = append(carried, c)
	}
	//
	return carried
}

// chainVariables determine the value of each carried variable at the start of
// each iteration of a sequential loop.  This is its value before the loop for
// the first iteration, and its value after the preceding iteration otherwise.
// After the loop, the variable holds its value after the last iteration or,
// if there are no iterations, its value before the loop.
func (t *Translator) chainVariables(child *Context, iterEnv *immutable.Map[*ast.Var, *variable], carried []carry) {
	var (
		level     = child.Level() - 1
		iteration = child.Sorts()[level]
		one       = []*fol.Sort{iteration}
	)
	//
	for _, c := range carried {
		post, _ := iterEnv.Get(c.v)
		// First iteration
		t.axiom(t.forAllAt(child, func(ps []fol.Term, xs []fol.Term) fol.Formula {
			outer := ps[:level]
			//
			return fol.Implies(fol.And(child.Type(ps), t.isFirst(child, outer, ps[level])),
				fol.Equiv(holds(c.pre, ps, xs), holds(c.outer, outer, xs)))
		}, c.extra()...))
		// Subsequent iterations
		t.axiom(t.forAllAt(t.context, func(outer []fol.Term, xs []fol.Term) fol.Formula {
			var (
				a = extend(outer, xs[0])
				b = extend(outer, xs[1])
			)
			//
			return fol.Implies(child.JustBefore(outer, xs[0], xs[1]),
				fol.Equiv(holds(c.pre, b, xs[2:]), holds(post, a, xs[2:])))
		}, append([]*fol.Sort{iteration, iteration}, c.extra()...)...))
		// After the loop
		final := func(ps []fol.Term, xs []fol.Term) fol.Formula {
			var (
				nonempty = t.exists(one, func(is []fol.Term) fol.Formula {
					return child.Type(extend(ps, is[0]))
				})
				last = t.exists(one, func(is []fol.Term) fol.Formula {
					inner := extend(ps, is[0])
					return fol.And(child.Type(inner), t.isLast(child, ps, is[0]), holds(post, inner, xs))
				})
			)
			//
			return fol.IfThenElse(nonempty, last, holds(c.outer, ps, xs))
		}
		//
		var merged *variable
		//
		if c.sort == nil {
			merged = t.materialiseCondition(c.v.Name, func(ps []fol.Term) fol.Formula {
				return final(ps, nil)
			})
		} else {
			merged = t.materialiseObjset(c.v.Name, objset{c.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
				return final(ps, []fol.Term{o})
			}})
			// Top-level object sets are observable by the user
			if t.context.IsRoot() {
				t.observations = append(t.observations, observation{t.branchCondition(nil), merged.objset()})
			}
		}
		//
		t.env = t.env.Set(c.v, merged)
	}
}

// holds evaluates a variable at a given position, applied to the object (if
// any) given.
func holds(v *variable, ps []fol.Term, xs []fol.Term) fol.Formula {
	if v.boolean {
		return v.condition()(ps)
	}
	//
	return v.objset().member(ps, xs[0])
}

// assignedVariables returns the variables assigned anywhere within a block,
// in order of first assignment.
func assignedVariables(block *ast.Block) []*ast.Var {
	var (
		vars []*ast.Var
		walk func(*ast.Block)
	)
	//
	walk = func(b *ast.Block) {
		if b == nil {
			return
		}
		//
		for _, stmt := range b.Stmts {
			switch s := stmt.(type) {
			case *ast.Assign:
				if !slices.Contains(vars, s.Var) {
					vars = append(vars, s.Var)
				}
			case *ast.Block:
				walk(s)
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			case *ast.Either:
				for _, block := range s.Blocks {
					walk(block)
				}
			case *ast.ForEach:
				walk(s.Body)
			}
		}
	}
	//
	walk(block)
	//
	return vars
}

// orderAxioms constrain the ordering predicates of a sequential context to a
// discrete total order over the live iterations at each parent position.
func (t *Translator) orderAxioms(child *Context) {
	var (
		level     = child.Level() - 1
		iteration = child.Sorts()[level]
		one       = []*fol.Sort{iteration}
		parent    = child.Parent()
	)
	//
	live := func(outer []fol.Term, a fol.Term) fol.Formula {
		return child.Type(extend(outer, a))
	}
	// Irreflexive
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Not(child.Before(outer, xs[0], xs[0]))
	}, iteration))
	// Transitive
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(fol.And(child.Before(outer, xs[0], xs[1]), child.Before(outer, xs[1], xs[2])),
			child.Before(outer, xs[0], xs[2]))
	}, iteration, iteration, iteration))
	// Only relates live iterations, all of which are related
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(child.Before(outer, xs[0], xs[1]), fol.And(live(outer, xs[0]), live(outer, xs[1])))
	}, iteration, iteration))
	//
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(fol.And(live(outer, xs[0]), live(outer, xs[1]), fol.Not(fol.Equal(xs[0], xs[1]))),
			fol.Or(child.Before(outer, xs[0], xs[1]), child.Before(outer, xs[1], xs[0])))
	}, iteration, iteration))
	// Immediate predecessor
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		between := t.exists(one, func(ys []fol.Term) fol.Formula {
			return fol.And(child.Before(outer, xs[0], ys[0]), child.Before(outer, ys[0], xs[1]))
		})
		//
		return fol.Equiv(child.JustBefore(outer, xs[0], xs[1]),
			fol.And(child.Before(outer, xs[0], xs[1]), fol.Not(between)))
	}, iteration, iteration))
	// First and last iterations exist whenever any iteration does
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, _ []fol.Term) fol.Formula {
		var (
			nonempty = t.exists(one, func(xs []fol.Term) fol.Formula { return live(outer, xs[0]) })
			first    = t.exists(one, func(xs []fol.Term) fol.Formula {
				return fol.And(live(outer, xs[0]), t.isFirst(child, outer, xs[0]))
			})
			last = t.exists(one, func(xs []fol.Term) fol.Formula {
				return fol.And(live(outer, xs[0]), t.isLast(child, outer, xs[0]))
			})
		)
		//
		return fol.Implies(nonempty, fol.And(first, last))
	}))
	// Every iteration with a predecessor has an immediate predecessor
	t.axiom(t.forAllAt(parent, func(outer []fol.Term, xs []fol.Term) fol.Formula {
		var (
			preceded  = t.exists(one, func(ys []fol.Term) fol.Formula { return child.Before(outer, ys[0], xs[0]) })
			justAfter = t.exists(one, func(ys []fol.Term) fol.Formula {
				return child.JustBefore(outer, ys[0], xs[0])
			})
		)
		//
		return fol.Implies(preceded, justAfter)
	}, iteration))
}

// isFirst holds when no iteration precedes a given iteration.
func (t *Translator) isFirst(child *Context, outer []fol.Term, a fol.Term) fol.Formula {
	sorts := []*fol.Sort{a.Sort()}
	//
	return fol.Not(t.exists(sorts, func(xs []fol.Term) fol.Formula {
		return child.Before(outer, xs[0], a)
	}))
}

// isLast holds when no iteration follows a given iteration.
func (t *Translator) isLast(child *Context, outer []fol.Term, a fol.Term) fol.Formula {
	sorts := []*fol.Sort{a.Sort()}
	//
	return fol.Not(t.exists(sorts, func(xs []fol.Term) fol.Formula {
		return child.Before(outer, a, xs[0])
	}))
}

func containsSort(sorts []*fol.Sort, sort *fol.Sort) bool {
	for _, s := range sorts {
		if s == sort {
			return true
		}
	}
	//
	return false
}
