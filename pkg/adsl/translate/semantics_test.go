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
	"math"
	"testing"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/adsl/reader"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Upper bound on the number of interpretations searched by a single check.
const maxInterpretations = 1 << 22

const personModel = `
	(class Person)
	(invariant someone (not (isempty (allof Person))))`

// ===================================================================
// Invariants
// ===================================================================

func Test_Semantics_01(t *testing.T) {
	tr := translateText(t, personModel+`(action a () (delete (allof Person)))`, "a", DefaultConfig())
	conjecture, err := tr.Conjecture(InvariantPreservation())
	require.NoError(t, err)
	// Deleting everyone violates the invariant
	assert.True(t, satisfiable(t, tr.Axioms(), 2))
	assert.True(t, hasCountermodel(t, tr, conjecture, 1))
}

func Test_Semantics_02(t *testing.T) {
	tr := translateText(t, personModel+`(action a () (create Person))`, "a", DefaultConfig())
	conjecture, err := tr.Conjecture(InvariantPreservation())
	require.NoError(t, err)
	// Creating someone preserves the invariant
	assert.True(t, satisfiable(t, tr.Axioms(), 2))
	assert.False(t, hasCountermodel(t, tr, conjecture, 2))
}

func Test_Semantics_03(t *testing.T) {
	tr := translateText(t, personModel+`(action a () (delete (oneof (allof Person))))`, "a", DefaultConfig())
	conjecture, err := tr.Conjecture(InvariantPreservation())
	require.NoError(t, err)
	// Choices made by the action do not hide the violation
	assert.True(t, satisfiable(t, tr.Axioms(), 2))
	assert.True(t, hasCountermodel(t, tr, conjecture, 2))
}

func Test_Semantics_04(t *testing.T) {
	model, errs := reader.ReadString(personModel + `(action a () (delete (allof Person)))`)
	require.Empty(t, errs)
	//
	person := model.Classes()[0]
	model.AddInvariant("chosen", &ast.Not{Arg: &ast.IsEmpty{Arg: &ast.OneOf{Arg: &ast.AllOf{Class: person}}}})
	//
	action, _ := model.ActionByName("a")
	tr := New(model, DefaultConfig())
	require.NoError(t, tr.TranslateAction(action))
	// Invariants cannot make choices, since these would be assumed to succeed
	n := len(tr.Axioms())
	_, err := tr.Conjecture(InvariantPreservation())
	assert.ErrorIs(t, err, ErrChoiceInDeclaration)
	assert.Len(t, tr.Axioms(), n)
}

// ===================================================================
// Statements
// ===================================================================

func Test_Semantics_05(t *testing.T) {
	tr := translateText(t, personModel+`(action a () (create p Person) (delete p))`, "a", DefaultConfig())
	// Deleting the object just created restores the initial state
	require.NotEqual(t, tr.InitialState(), tr.FinalState())
	assert.True(t, satisfiable(t, tr.Axioms(), 2))
	assert.False(t, hasCountermodel(t, tr, sameLive(tr, tr.InitialState(), tr.FinalState()), 2))
}

func Test_Semantics_06(t *testing.T) {
	tr := translateText(t, personModel+`(action a ((p Person)) (if * (delete p)))`, "a", DefaultConfig())
	//
	var (
		cond   = predicate(t, tr, "cond").Apply()
		p      = predicate(t, tr, "p")
		sort   = tr.ClassSort(0)
		x      = fol.NewVariable("x", sort)
		init   = tr.InitialState().Apply(nil, x)
		merged = fol.ForAll([]*fol.Variable{x}, fol.Equiv(tr.FinalState().Apply(nil, x),
			fol.IfThenElse(cond, fol.And(init, fol.Not(p.Apply(x))), init)))
	)
	// Both branches are feasible
	assert.True(t, satisfiable(t, append(tr.Axioms(), cond), 2))
	assert.True(t, satisfiable(t, append(tr.Axioms(), fol.Not(cond)), 2))
	// The final state is determined by the branch taken
	assert.False(t, hasCountermodel(t, tr, merged, 2))
}

// ===================================================================
// Access control
// ===================================================================

const followModel = `
	(class User)
	(authenticable User)
	(relation User follows 0+ User)
	(permit () (read) (allof User))`

func Test_Semantics_07(t *testing.T) {
	tr := translateText(t, followModel+`
		(action follow ((u User) (v User)) (add u follows v))`, "follow", DefaultConfig())
	conjecture, err := tr.Conjecture(AccessAssociate())
	require.NoError(t, err)
	// Linking readable objects is permitted, even though neither is created
	assert.True(t, satisfiable(t, tr.Axioms(), 1))
	assert.False(t, hasCountermodel(t, tr, conjecture, 1))
}

func Test_Semantics_08(t *testing.T) {
	tr := translateText(t, `
		(class User)
		(authenticable User)
		(relation User follows 0+ User)
		(action follow ((u User) (v User)) (add u follows v))`, "follow", DefaultConfig())
	conjecture, err := tr.Conjecture(AccessAssociate())
	require.NoError(t, err)
	// Without any permission, linking is not permitted
	assert.True(t, hasCountermodel(t, tr, conjecture, 1))
}

// ===================================================================
// Test Helpers
// ===================================================================

// Check whether some interpretation over the given domain size satisfies the
// axioms of a translation, but not a given conjecture.
func hasCountermodel(t *testing.T, tr *Translator, conjecture fol.Formula, size int) bool {
	return satisfiable(t, append(tr.Axioms(), fol.Not(conjecture)), size)
}

// sameLive asserts two (root) states hold exactly the same objects of the
// first class.
func sameLive(tr *Translator, lhs *State, rhs *State) fol.Formula {
	x := fol.NewVariable("x", tr.ClassSort(0))
	//
	return fol.ForAll([]*fol.Variable{x}, fol.Equiv(lhs.Apply(nil, x), rhs.Apply(nil, x)))
}

func predicate(t *testing.T, tr *Translator, name string) *fol.Predicate {
	for _, pred := range tr.Vocabulary().Predicates() {
		if pred.Name() == name {
			return pred
		}
	}
	//
	t.Fatalf("unknown predicate %s", name)
	//
	return nil
}

// Check whether some interpretation, where every sort has a domain of the
// given size, satisfies every one of the given formulas.  Interpretations are
// searched exhaustively.
func satisfiable(t *testing.T, formulas []fol.Formula, size int) bool {
	var (
		m     = newInterpretation(size)
		preds []*fol.Predicate
		funcs []*fol.Function
		cells []cell
		total = 1.0
	)
	//
	preds, funcs = (&fol.Theorem{Axioms: formulas}).Symbols()
	//
	for _, pred := range preds {
		values := make([]bool, pow(size, pred.Arity()))
		m.preds[pred] = values
		//
		for i := range values {
			cells = append(cells, cell{pred: values, index: i})
			total *= 2
		}
	}
	//
	for _, fn := range funcs {
		values := make([]int, pow(size, fn.Arity()))
		m.funcs[fn] = values
		//
		for i := range values {
			cells = append(cells, cell{fn: values, index: i})
			total *= float64(size)
		}
	}
	//
	if total > maxInterpretations {
		t.Fatalf("too many interpretations (2^%.0f)", math.Log2(total))
	}
	//
	for {
		if m.satisfies(formulas) {
			return true
		}
		// Advance to the next interpretation
		k := 0
		//
		for k < len(cells) && !cells[k].next(size) {
			k++
		}
		//
		if k == len(cells) {
			return false
		}
	}
}

// cell is the value of a single symbol at a single argument tuple.
type cell struct {
	pred  []bool
	fn    []int
	index int
}

// next advances this cell, returning false when it wraps around.
func (c cell) next(size int) bool {
	if c.pred != nil {
		c.pred[c.index] = !c.pred[c.index]
		return c.pred[c.index]
	}
	//
	c.fn[c.index] = (c.fn[c.index] + 1) % size
	//
	return c.fn[c.index] != 0
}

type interpretation struct {
	size  int
	preds map[*fol.Predicate][]bool
	funcs map[*fol.Function][]int
}

func newInterpretation(size int) *interpretation {
	return &interpretation{size, make(map[*fol.Predicate][]bool), make(map[*fol.Function][]int)}
}

func (m *interpretation) satisfies(formulas []fol.Formula) bool {
	env := make(map[*fol.Variable]int)
	//
	for _, f := range formulas {
		if !m.formula(f, env) {
			return false
		}
	}
	//
	return true
}

func (m *interpretation) formula(f fol.Formula, env map[*fol.Variable]int) bool {
	switch f := f.(type) {
	case fol.Constant:
		return bool(f)
	case *fol.Atom:
		return m.preds[f.Pred][m.index(f.Args, env)]
	case *fol.Equality:
		return m.term(f.Lhs, env) == m.term(f.Rhs, env)
	case *fol.Negation:
		return !m.formula(f.Arg, env)
	case *fol.Conjunction:
		for _, arg := range f.Args {
			if !m.formula(arg, env) {
				return false
			}
		}
		//
		return true
	case *fol.Disjunction:
		for _, arg := range f.Args {
			if m.formula(arg, env) {
				return true
			}
		}
		//
		return false
	case *fol.Implication:
		return !m.formula(f.Lhs, env) || m.formula(f.Rhs, env)
	case *fol.Equivalence:
		return m.formula(f.Lhs, env) == m.formula(f.Rhs, env)
	case *fol.ExclusiveOr:
		return m.formula(f.Lhs, env) != m.formula(f.Rhs, env)
	case *fol.Conditional:
		if m.formula(f.Cond, env) {
			return m.formula(f.Then, env)
		}
		//
		return m.formula(f.Else, env)
	case *fol.Quantifier:
		return m.quantifier(f, 0, env)
	}
	//
	panic(fmt.Sprintf("unknown formula %T", f))
}

// quantifier evaluates a quantified formula, binding its variables from a
// given index onwards.
func (m *interpretation) quantifier(q *fol.Quantifier, i int, env map[*fol.Variable]int) bool {
	if i == len(q.Vars) {
		return m.formula(q.Body, env)
	}
	//
	for value := 0; value < m.size; value++ {
		env[q.Vars[i]] = value
		// A counterexample (or witness) decides the quantifier
		if m.quantifier(q, i+1, env) != q.Universal {
			return !q.Universal
		}
	}
	//
	return q.Universal
}

func (m *interpretation) term(t fol.Term, env map[*fol.Variable]int) int {
	switch t := t.(type) {
	case *fol.Variable:
		value, ok := env[t]
		if !ok {
			panic(fmt.Sprintf("unbound variable %s", t.Name()))
		}
		//
		return value
	case *fol.Application:
		return m.funcs[t.Fn][m.index(t.Args, env)]
	}
	//
	panic(fmt.Sprintf("unknown term %T", t))
}

func (m *interpretation) index(args []fol.Term, env map[*fol.Variable]int) int {
	index := 0
	//
	for _, arg := range args {
		index = index*m.size + m.term(arg, env)
	}
	//
	return index
}

func pow(base int, n int) int {
	result := 1
	//
	for i := 0; i < n; i++ {
		result *= base
	}
	//
	return result
}
