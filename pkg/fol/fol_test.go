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
package fol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================================================================
// Printing
// ===================================================================

func Test_Formula_01(t *testing.T) {
	var (
		person = NewSort("Person")
		isP    = NewPredicate("is_Person", person)
		x      = NewVariable("x", person)
	)
	//
	f := ForAll([]*Variable{x}, Implies(isP.Apply(x), Not(False)))
	assert.Equal(t, "(forall ((x Person)) (=> (is_Person x) (not false)))", f.(*Quantifier).String())
}

func Test_Formula_02(t *testing.T) {
	var (
		person = NewSort("Person")
		cu     = NewFunction(person, "currentuser")
		link   = NewFunction(person, "link", person)
	)
	//
	f := Equal(link.Apply(cu.Apply()), cu.Apply())
	assert.Equal(t, "(= (link currentuser) currentuser)", f.(*Equality).String())
	assert.Equal(t, "(function link (Person) Person)", link.Lisp().String(false))
}

func Test_Formula_03(t *testing.T) {
	var (
		a    = NewSort("A")
		b    = NewSort("B")
		pred = NewPredicate("p", a)
		fn   = NewFunction(a, "f")
	)
	// Sorts must match
	assert.Panics(t, func() { Equal(NewVariable("x", a), NewVariable("y", b)) })
	assert.Panics(t, func() { pred.Apply(NewVariable("y", b)) })
	assert.Panics(t, func() { pred.Apply() })
	assert.NotPanics(t, func() { pred.Apply(fn.Apply()) })
}

func Test_Formula_04(t *testing.T) {
	assert.Equal(t, True, And())
	assert.Equal(t, False, Or())
	//
	p := NewPredicate("p").Apply()
	assert.Same(t, p, And(p))
	assert.Same(t, p, Or(p))
}

// ===================================================================
// Optimisation
// ===================================================================

func Test_Optimize_01(t *testing.T) {
	var (
		p = NewPredicate("p").Apply()
		q = NewPredicate("q").Apply()
	)
	//
	assert.Equal(t, True, Optimize(Implies(False, p)))
	assert.Equal(t, p, Optimize(Implies(True, p)))
	assert.Equal(t, False, Optimize(And(p, False, q)))
	assert.Equal(t, True, Optimize(Or(p, Not(False))))
	assert.Equal(t, p, Optimize(Not(Not(p))))
	assert.Equal(t, True, Optimize(Equiv(p, p)))
	assert.Equal(t, p, Optimize(IfThenElse(True, p, q)))
	assert.Equal(t, q, Optimize(IfThenElse(False, p, q)))
}

func Test_Optimize_02(t *testing.T) {
	var (
		p = NewPredicate("p").Apply()
		q = NewPredicate("q").Apply()
		r = NewPredicate("r").Apply()
	)
	// Nested junctions are flattened, and duplicates removed
	f := Optimize(And(p, And(q, p), True, r))
	conj, ok := f.(*Conjunction)
	require.True(t, ok)
	assert.Len(t, conj.Args, 3)
}

func Test_Optimize_03(t *testing.T) {
	var (
		s    = NewSort("S")
		x    = NewVariable("x", s)
		y    = NewVariable("y", s)
		pred = NewPredicate("p", s)
	)
	// Unused variables are dropped, and nested quantifiers merged
	f := Optimize(ForAll([]*Variable{x}, ForAll([]*Variable{y}, pred.Apply(y))))
	q, ok := f.(*Quantifier)
	require.True(t, ok)
	assert.Equal(t, []*Variable{y}, q.Vars)
	// Quantifiers over nothing disappear
	assert.Equal(t, True, Optimize(Exists([]*Variable{x}, Equal(y, y))))
}

func Test_Optimize_04(t *testing.T) {
	var (
		s    = NewSort("S")
		x    = NewVariable("x", s)
		pred = NewPredicate("p", s)
	)
	//
	assert.True(t, OccursFree(x, pred.Apply(x)))
	assert.False(t, OccursFree(x, ForAll([]*Variable{x}, pred.Apply(x))))
	assert.True(t, Equals(pred.Apply(x), pred.Apply(x)))
}

// ===================================================================
// Theorems
// ===================================================================

func Test_Theorem_01(t *testing.T) {
	var (
		s      = NewSort("S")
		p      = NewPredicate("p", s)
		q      = NewPredicate("q", s)
		x      = NewVariable("x", s)
		axiom  = ForAll([]*Variable{x}, p.Apply(x))
		theory = Theorem{Sorts: []*Sort{s}, Predicates: []*Predicate{p}, Axioms: []Formula{axiom}}
	)
	//
	assert.NoError(t, theory.Undeclared())
	//
	theory.Conjecture = ForAll([]*Variable{x}, q.Apply(x))
	err := theory.Undeclared()
	require.Error(t, err)
	assert.Equal(t, "predicate q", err.Error())
}

func Test_Theorem_02(t *testing.T) {
	var (
		s      = NewSort("S")
		c      = NewFunction(s, "c")
		p      = NewPredicate("p", s)
		theory = Theorem{
			Sorts:      []*Sort{s},
			Predicates: []*Predicate{p},
			Functions:  []*Function{c},
			Axioms:     []Formula{p.Apply(c.Apply())},
			Conjecture: Not(p.Apply(c.Apply())),
		}
	)
	//
	decls := theory.Lisp()
	require.Len(t, decls, 5)
	assert.Equal(t, "(sort S)", decls[0].String(false))
	assert.Equal(t, "(predicate p (S))", decls[1].String(false))
	assert.Equal(t, "(function c () S)", decls[2].String(false))
	assert.Equal(t, "(axiom (p c))", decls[3].String(false))
	assert.Equal(t, "(conjecture (not (p c)))", decls[4].String(false))
}
