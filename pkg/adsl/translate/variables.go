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
	"github.com/segmentio/fasthash/fnv1a"
)

// membership constructs the formula asserting an object belongs to an object
// set, given the position at which the set is used.
type membership func(ps []fol.Term, o fol.Term) fol.Formula

// condition constructs the formula asserting a boolean holds, given the
// position at which it is used.
type condition func(ps []fol.Term) fol.Formula

// objset is the translation of an object set expression.  The sort is nil for
// object sets which are known to be empty.
type objset struct {
	sort     *fol.Sort
	contains membership
}

// member constructs the formula asserting a given object belongs to this set.
// Objects of a different sort never belong to it.
func (s objset) member(ps []fol.Term, o fol.Term) fol.Formula {
	if s.sort == nil || o.Sort() != s.sort {
		return fol.False
	}
	//
	return s.contains(ps, o)
}

func (s objset) isEmpty() bool {
	return s.sort == nil
}

type varKind uint8

const (
	// Value held by a predicate over the position tuple of its context.
	materialised varKind = iota
	// Object at some index of the position tuple (i.e. a loop variable).
	positional
	// Object bound by a quantifier under construction.
	quantified
	// Object set known to be empty.
	empty
)

// variable records how the value of an action variable is realised.
type variable struct {
	kind    varKind
	boolean bool
	sort    *fol.Sort
	pred    *fol.Predicate
	// Level of the predicate, or index of a positional variable.
	level uint
	// Bound object of a quantified variable.
	term fol.Term
}

func (v *variable) objset() objset {
	switch v.kind {
	case materialised:
		return objset{v.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
			return applyAt(v.pred, v.level, ps, o)
		}}
	case positional:
		return objset{v.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
			return fol.Equal(o, ps[v.level])
		}}
	case quantified:
		return objset{v.sort, func(ps []fol.Term, o fol.Term) fol.Formula {
			if v.term == nil {
				panic("quantified variable used outside of its quantifier")
			}
			//
			return fol.Equal(o, v.term)
		}}
	default:
		return objset{}
	}
}

func (v *variable) condition() condition {
	if !v.boolean {
		panic("object set variable used as a boolean")
	}
	//
	return func(ps []fol.Term) fol.Formula {
		return applyAt(v.pred, v.level, ps)
	}
}

func (t *Translator) lookup(v *ast.Var) *variable {
	binding, ok := t.env.Get(v)
	if !ok {
		t.fail(ErrUnregisteredSymbol, "variable %s", v.Name)
	}
	//
	return binding
}

// materialise defines a fresh predicate holding the value of an expression in
// the current state, parameterised by the position tuple of the current
// context.
func (t *Translator) materialise(name string, expr ast.Expr) *variable {
	if expr.Type().Bool {
		return t.materialiseCondition(name, t.condition(expr))
	}
	//
	return t.materialiseObjset(name, t.objset(expr))
}

func (t *Translator) materialiseCondition(name string, cond condition) *variable {
	var (
		level = t.context.Level()
		pred  = t.vocab.NewPredicate(name, t.context.Sorts()...)
	)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, _ []fol.Term) fol.Formula {
		return fol.Equiv(pred.Apply(ps...), cond(ps))
	}))
	//
	return &variable{kind: materialised, boolean: true, pred: pred, level: level}
}

func (t *Translator) materialiseObjset(name string, set objset) *variable {
	if set.isEmpty() {
		return &variable{kind: empty}
	}
	//
	var (
		level = t.context.Level()
		pred  = t.vocab.NewPredicate(name, append(slices.Clone(t.context.Sorts()), set.sort)...)
	)
	//
	t.axiom(t.forAllAt(t.context, func(ps []fol.Term, xs []fol.Term) fol.Formula {
		return fol.Equiv(pred.Apply(extend(ps, xs[0])...), set.member(ps, xs[0]))
	}, set.sort))
	//
	return &variable{kind: materialised, sort: set.sort, pred: pred, level: level}
}

// changedVariables returns those variables whose bindings in either of two
// environments differ from their binding in an original environment.
// Variables are returned in order of name.
func changedVariables(original, lhs, rhs *immutable.Map[*ast.Var, *variable]) []*ast.Var {
	var changed []*ast.Var
	//
	for _, env := range []*immutable.Map[*ast.Var, *variable]{lhs, rhs} {
		itr := env.Iterator()
		//
		for !itr.Done() {
			v, binding, _ := itr.Next()
			//
			if orig, ok := original.Get(v); (!ok || orig != binding) && !slices.Contains(changed, v) {
				changed = append(changed, v)
			}
		}
	}
	//
	slices.SortStableFunc(changed, func(l, r *ast.Var) int {
		return strings.Compare(l.Name, r.Name)
	})
	//
	return changed
}

// varHasher hashes variables by name, though distinguishes them by identity.
type varHasher struct{}

var _ immutable.Hasher[*ast.Var] = varHasher{}

func (varHasher) Hash(key *ast.Var) uint32 {
	return fnv1a.HashString32(key.Name)
}

func (varHasher) Equal(a, b *ast.Var) bool {
	return a == b
}
