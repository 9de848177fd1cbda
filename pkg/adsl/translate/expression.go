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
	"slices"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
	log "github.com/sirupsen/logrus"
)

// objset translates an object set expression relative to the current state.
// The result remains relative to that state, even if it is applied after the
// current state has moved on.  Any symbols needed by the expression are
// allocated (and defined) immediately.
func (t *Translator) objset(expr ast.Expr) objset {
	if expr.Type().IsEmpty() {
		log.Debugf("object set %T is empty", expr)
		return objset{}
	}
	//
	if t.declaring {
		switch expr.(type) {
		case *ast.Subset, *ast.OneOf, *ast.TryOneOf:
			t.fail(ErrChoiceInDeclaration, "%T in invariant or permission rule", expr)
		}
	}
	//
	switch e := expr.(type) {
	case *ast.AllOf:
		return t.allOf(e.Class)
	case *ast.Empty:
		return objset{}
	case *ast.Subset:
		return t.subset(t.objset(e.Arg))
	case *ast.OneOf:
		return t.oneOf(t.objset(e.Arg), false)
	case *ast.TryOneOf:
		return t.oneOf(t.objset(e.Arg), true)
	case *ast.Union:
		return t.union(e.Args)
	case *ast.Dereference:
		return t.dereference(e)
	case *ast.VarRead:
		return t.lookup(e.Var).objset()
	case *ast.CreatedObj:
		return t.createdObj(e.Stmt)
	case *ast.CurrentUser:
		user := t.currentUser()
		//
		return objset{user.Result(), func(_ []fol.Term, o fol.Term) fol.Formula {
			return fol.Equal(o, user.Apply())
		}}
	case *ast.AllOfUsergroup:
		var (
			pred  = t.usergroup(e.Usergroup)
			state = t.state
		)
		//
		return objset{pred.Args()[0], func(ps []fol.Term, o fol.Term) fol.Formula {
			return fol.And(state.Apply(ps, o), pred.Apply(o))
		}}
	default:
		panic(fmt.Sprintf("unknown object set expression %T", expr))
	}
}

// condition translates a boolean expression relative to the current state.
// As for object sets, the result remains relative to that state.
func (t *Translator) condition(expr ast.Expr) condition {
	switch e := expr.(type) {
	case *ast.BoolConst:
		return constant(fol.Truth(e.Value))
	case *ast.Star:
		var (
			level = t.context.Level()
			pred  = t.vocab.NewPredicate("star", t.context.Sorts()...)
		)
		//
		return func(ps []fol.Term) fol.Formula {
			return applyAt(pred, level, ps)
		}
	case *ast.VarRead:
		return t.lookup(e.Var).condition()
	case *ast.Not:
		arg := t.condition(e.Arg)
		//
		return func(ps []fol.Term) fol.Formula {
			return fol.Not(arg(ps))
		}
	case *ast.And:
		return t.junction(fol.And, e.Args)
	case *ast.Or:
		return t.junction(fol.Or, e.Args)
	case *ast.Xor:
		return t.binary(fol.Xor, e.Lhs, e.Rhs)
	case *ast.Implies:
		return t.binary(fol.Implies, e.Lhs, e.Rhs)
	case *ast.Equal:
		if e.Lhs.Type().Bool {
			return t.binary(fol.Equiv, e.Lhs, e.Rhs)
		}
		//
		return t.objsetEqual(t.objset(e.Lhs), t.objset(e.Rhs))
	case *ast.ForAll:
		return t.quantifier(true, e.Bindings, e.Body)
	case *ast.Exists:
		return t.quantifier(false, e.Bindings, e.Body)
	case *ast.In:
		return t.subsetOf(t.objset(e.Lhs), t.objset(e.Rhs))
	case *ast.IsEmpty:
		return t.isEmpty(t.objset(e.Arg))
	case *ast.InUsergroup:
		return t.inUsergroup(e)
	case *ast.Permitted:
		return t.permitted(e)
	default:
		panic(fmt.Sprintf("unknown boolean expression %T", expr))
	}
}

// ============================================================================
// Object sets
// ============================================================================

func (t *Translator) allOf(class ast.ClassId) objset {
	var (
		c     = t.classes[class]
		state = t.state
	)
	//
	return objset{c.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
		return fol.And(c.typ.Apply(o), state.Apply(ps, o))
	}}
}

// subset defines a fresh predicate, for each position of the current context,
// denoting some subset of its argument.
func (t *Translator) subset(arg objset) objset {
	if arg.isEmpty() {
		return arg
	}
	//
	var (
		level = t.context.Level()
		pred  = t.vocab.NewPredicate("subset", append(slices.Clone(t.context.Sorts()), arg.sort)...)
	)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(pred.Apply(extend(ps, xs[0])...), arg.member(ps, xs[0]))
	}, arg.sort))
	//
	return objset{arg.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
		return applyAt(pred, level, ps, o)
	}}
}

// oneOf defines a fresh predicate, for each position of the current context,
// denoting a single element of its argument.  When the choice is tentative,
// the result is empty exactly when the argument is.  Otherwise, the argument
// is assumed to be non-empty on every path reaching this point.
func (t *Translator) oneOf(arg objset, tentative bool) objset {
	if arg.isEmpty() {
		return arg
	}
	//
	var (
		level = t.context.Level()
		one   = []*fol.Sort{arg.sort}
		two   = []*fol.Sort{arg.sort, arg.sort}
		name  = "oneof"
	)
	//
	if tentative {
		name = "tryoneof"
	}
	//
	pred := t.vocab.NewPredicate(name, append(slices.Clone(t.context.Sorts()), arg.sort)...)
	// Containment
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(pred.Apply(extend(ps, xs[0])...), arg.member(ps, xs[0]))
	}, one...))
	// Uniqueness
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Implies(fol.And(pred.Apply(extend(ps, xs[0])...), pred.Apply(extend(ps, xs[1])...)),
			fol.Equal(xs[0], xs[1]))
	}, two...))
	// Existence
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
		var (
			guard   fol.Formula
			witness = t.exists(one, func(xs []fol.Term) fol.Formula {
				return pred.Apply(extend(ps, xs[0])...)
			})
		)
		//
		if tentative {
			guard = t.exists(one, func(xs []fol.Term) fol.Formula { return arg.member(ps, xs[0]) })
		} else {
			guard = t.branchCondition(ps)
		}
		//
		return fol.Implies(guard, witness)
	}))
	//
	return objset{arg.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
		return applyAt(pred, level, ps, o)
	}}
}

func (t *Translator) union(args []ast.Expr) objset {
	var sets []objset
	//
	for _, arg := range args {
		if set := t.objset(arg); !set.isEmpty() {
			if len(sets) > 0 && sets[0].sort != set.sort {
				panic(fmt.Sprintf("union of incompatible sorts %s and %s", sets[0].sort, set.sort))
			}
			//
			sets = append(sets, set)
		}
	}
	//
	switch len(sets) {
	case 0:
		return objset{}
	case 1:
		return sets[0]
	}
	//
	return objset{sets[0].sort, func(ps []fol.Term, o fol.Term) fol.Formula {
		disjuncts := make([]fol.Formula, len(sets))
		//
		for i, set := range sets {
			disjuncts[i] = set.member(ps, o)
		}
		//
		return fol.Or(disjuncts...)
	}}
}

// dereference follows a relation from every object of its argument, via the
// tuples live in the current state.
func (t *Translator) dereference(e *ast.Dereference) objset {
	arg := t.objset(e.Arg)
	//
	if arg.isEmpty() {
		return arg
	}
	//
	var (
		sort, from, to = t.RelationSort(e.Relation)
		state          = t.state
	)
	//
	return objset{to.Result(), func(ps []fol.Term, o fol.Term) fol.Formula {
		return t.exists([]*fol.Sort{sort}, func(xs []fol.Term) fol.Formula {
			return fol.And(state.Apply(ps, xs[0]), arg.member(ps, from.Apply(xs[0])), fol.Equal(o, to.Apply(xs[0])))
		})
	}}
}

func (t *Translator) createdObj(stmt *ast.CreateObj) objset {
	c, ok := t.created[stmt]
	if !ok {
		t.fail(ErrUnregisteredSymbol, "object created by (create %s)", t.model.Class(stmt.Class).Name)
	}
	//
	level := c.context.Level()
	//
	return objset{c.link.Result(), func(ps []fol.Term, o fol.Term) fol.Formula {
		return fol.Equal(o, c.link.Apply(ps[:level]...))
	}}
}

// ============================================================================
// Booleans
// ============================================================================

func constant(f fol.Formula) condition {
	return func([]fol.Term) fol.Formula { return f }
}

func (t *Translator) junction(fn func(...fol.Formula) fol.Formula, args []ast.Expr) condition {
	conds := make([]condition, len(args))
	//
	for i, arg := range args {
		conds[i] = t.condition(arg)
	}
	//
	return func(ps []fol.Term) fol.Formula {
		fs := make([]fol.Formula, len(conds))
		//
		for i, cond := range conds {
			fs[i] = cond(ps)
		}
		//
		return fn(fs...)
	}
}

func (t *Translator) binary(fn func(fol.Formula, fol.Formula) fol.Formula, lhs ast.Expr, rhs ast.Expr) condition {
	var (
		l = t.condition(lhs)
		r = t.condition(rhs)
	)
	//
	return func(ps []fol.Term) fol.Formula {
		return fn(l(ps), r(ps))
	}
}

// objsetEqual holds when two object sets contain exactly the same objects.
func (t *Translator) objsetEqual(lhs objset, rhs objset) condition {
	switch {
	case lhs.isEmpty() && rhs.isEmpty():
		return constant(fol.True)
	case lhs.isEmpty():
		return t.isEmpty(rhs)
	case rhs.isEmpty():
		return t.isEmpty(lhs)
	case lhs.sort != rhs.sort:
		l, r := t.isEmpty(lhs), t.isEmpty(rhs)
		//
		return func(ps []fol.Term) fol.Formula {
			return fol.And(l(ps), r(ps))
		}
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return t.forAll([]*fol.Sort{lhs.sort}, func(xs []fol.Term) fol.Formula {
			return fol.Equiv(lhs.member(ps, xs[0]), rhs.member(ps, xs[0]))
		})
	}
}

// subsetOf holds when every object of one set is in another.
func (t *Translator) subsetOf(lhs objset, rhs objset) condition {
	switch {
	case lhs.isEmpty():
		return constant(fol.True)
	case rhs.isEmpty() || lhs.sort != rhs.sort:
		return t.isEmpty(lhs)
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return t.forAll([]*fol.Sort{lhs.sort}, func(xs []fol.Term) fol.Formula {
			return fol.Implies(lhs.member(ps, xs[0]), rhs.member(ps, xs[0]))
		})
	}
}

func (t *Translator) isEmpty(set objset) condition {
	if set.isEmpty() {
		return constant(fol.True)
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return fol.Not(t.exists([]*fol.Sort{set.sort}, func(xs []fol.Term) fol.Formula {
			return set.member(ps, xs[0])
		}))
	}
}

// quantifier translates a quantified formula.  Each bound variable ranges over
// its domain, which may refer to variables bound before it.  A quantifier over
// an empty domain is trivially true (universal) or false (existential).
func (t *Translator) quantifier(universal bool, bindings []ast.Binding, body ast.Expr) condition {
	var (
		env     = t.env
		cells   = make([]*variable, len(bindings))
		domains = make([]objset, len(bindings))
		sorts   = make([]*fol.Sort, len(bindings))
	)
	//
	defer func() { t.env = env }()
	//
	for i, b := range bindings {
		domains[i] = t.objset(b.Domain)
		//
		if domains[i].isEmpty() {
			log.Debugf("quantifier over empty domain for %s", b.Var.Name)
			return constant(fol.Truth(universal))
		}
		//
		sorts[i] = domains[i].sort
		cells[i] = &variable{kind: quantified, sort: sorts[i]}
		t.env = t.env.Set(b.Var, cells[i])
	}
	//
	cond := t.condition(body)
	//
	return func(ps []fol.Term) fol.Formula {
		return t.quantify(universal, sorts, func(xs []fol.Term) fol.Formula {
			guards := make([]fol.Formula, len(xs))
			//
			for i, x := range xs {
				cells[i].term = x
				guards[i] = domains[i].member(ps, x)
			}
			//
			defer func() {
				for _, cell := range cells {
					cell.term = nil
				}
			}()
			//
			if universal {
				return fol.Implies(fol.And(guards...), cond(ps))
			}
			//
			return fol.And(append(guards, cond(ps))...)
		})
	}
}
