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
	"testing"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================================================================
// Registry
// ===================================================================

func Test_Registry_01(t *testing.T) {
	names := NewRegistry()
	//
	assert.Equal(t, "x", names.Register("x"))
	assert.Equal(t, "x_1", names.Register("x"))
	assert.Equal(t, "x_2", names.Register("x"))
	assert.Equal(t, "y", names.Register("y"))
	assert.True(t, names.IsUsed("x_1"))
	assert.False(t, names.IsUsed("x_3"))
}

func Test_Registry_02(t *testing.T) {
	names := NewRegistry()
	names.Register("p")
	//
	assert.Equal(t, []string{"p_1", "q"}, names.Reserve("p", "q"))
	assert.Equal(t, uint(2), names.Reserved())
	assert.True(t, names.IsUsed("q"))
	// Nested reservation
	assert.Equal(t, []string{"q_1"}, names.Reserve("q"))
	names.Release(1)
	assert.False(t, names.IsUsed("q_1"))
	assert.True(t, names.IsUsed("q"))
	//
	names.Release(2)
	assert.Equal(t, uint(0), names.Reserved())
	assert.False(t, names.IsUsed("q"))
	assert.False(t, names.IsUsed("p_1"))
	assert.True(t, names.IsUsed("p"))
	// Released names are available again
	assert.Equal(t, []string{"q"}, names.Reserve("q"))
	names.Release(1)
}

func Test_Registry_03(t *testing.T) {
	names := NewRegistry()
	names.Reserve("x")
	//
	assert.Panics(t, func() { names.Release(2) })
}

func Test_Registry_04(t *testing.T) {
	names := NewRegistry()
	vocab := NewVocabulary(names)
	// Symbols of every kind share the same pool of names
	sort := vocab.NewSort("A")
	pred := vocab.NewPredicate("A", sort)
	fn := vocab.NewFunction(sort, "A")
	//
	assert.Equal(t, "A", sort.Name())
	assert.Equal(t, "A_1", pred.Name())
	assert.Equal(t, "A_2", fn.Name())
	assert.Equal(t, []string{"a"}, names.Reserve("a"))
	names.Release(1)
	//
	assert.Len(t, vocab.Sorts(), 1)
	assert.Len(t, vocab.Predicates(), 1)
	assert.Len(t, vocab.Functions(), 1)
}

// ===================================================================
// States
// ===================================================================

func Test_State_01(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		init  = NewState(vocab, "init", RootContext())
		next  = NewState(vocab, "s", RootContext())
	)
	//
	next.Link(init)
	// Predicates are allocated on first use, and shared by linked states
	assert.Len(t, vocab.Predicates(), 0)
	assert.Equal(t, init.Predicate(a), next.Predicate(a))
	assert.Equal(t, "init_A", next.Predicate(a).Name())
	assert.Len(t, vocab.Predicates(), 1)
	assert.Empty(t, next.Sorts())
	assert.Empty(t, next.SortsDifferingFrom(init))
}

func Test_State_02(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		b     = vocab.NewSort("B")
		init  = NewState(vocab, "init", RootContext())
		next  = NewState(vocab, "s", RootContext())
	)
	// Only sorts with distinct predicates differ
	next.Define(a)
	next.Link(init)
	init.Predicate(b)
	next.Predicate(b)
	//
	assert.Equal(t, "s_A", next.Predicate(a).Name())
	assert.Equal(t, []*fol.Sort{a}, next.SortsDifferingFrom(init))
	assert.Equal(t, []*fol.Sort{a}, init.SortsDifferingFrom(next))
	assert.Equal(t, []*fol.Sort{a}, next.Sorts())
}

func Test_State_03(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		b     = vocab.NewSort("B")
		a     = vocab.NewSort("A")
		init  = NewState(vocab, "init", RootContext())
		next  = NewState(vocab, "s", RootContext())
	)
	// Sorts are ordered by name, not definition
	next.Define(b)
	next.Define(a)
	next.Link(init)
	//
	assert.Equal(t, []*fol.Sort{a, b}, next.SortsDifferingFrom(init))
	assert.Equal(t, []*fol.Sort{a, b}, next.Sorts())
}

func Test_State_04(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		init  = NewState(vocab, "init", RootContext())
		next  = NewState(vocab, "s", RootContext())
	)
	//
	next.Link(init)
	next.Predicate(a)
	// Cannot define a sort which has already been resolved
	assert.Panics(t, func() { next.Define(a) })
	assert.Panics(t, func() { init.Define(a) })
	// Cannot link twice, or to itself
	assert.Panics(t, func() { next.Link(init) })
	assert.Panics(t, func() { init.Link(init) })
}

func Test_State_05(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		b     = vocab.NewSort("B")
		root  = RootContext()
		ctx   = root.NewChildContext(vocab, "iteration", ast.Coex, a)
		init  = NewState(vocab, "init", root)
		inner = NewState(vocab, "s", ctx)
		fresh = NewState(vocab, "s", ctx)
		p     = fol.NewVariable("p", a)
		x     = fol.NewVariable("x", b)
	)
	//
	inner.Link(init)
	// Delegated predicates ignore the extra positions
	assert.Equal(t, "(init_B x)", inner.Apply([]fol.Term{p}, x).String())
	// Predicates allocated within a context take its positions
	assert.Equal(t, "s_1", fresh.Name())
	assert.Equal(t, "(s_1_B p x)", fresh.Apply([]fol.Term{p}, x).String())
	assert.Panics(t, func() { fresh.Apply(nil, x) })
}

// ===================================================================
// Contexts
// ===================================================================

func Test_Context_01(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		root  = RootContext()
		p     = fol.NewVariable("p", a)
		q     = fol.NewVariable("q", a)
	)
	//
	assert.True(t, root.IsRoot())
	assert.Equal(t, uint(0), root.Level())
	assert.Nil(t, root.TypePredicate())
	assert.True(t, fol.IsTrue(root.Type(nil)))
	//
	coex := root.NewChildContext(vocab, "iteration", ast.Coex, a)
	assert.False(t, coex.IsRoot())
	assert.Equal(t, root, coex.Parent())
	assert.Equal(t, uint(1), coex.Level())
	assert.Equal(t, "(iteration p)", coex.Type([]fol.Term{p, q}).String())
	assert.Panics(t, func() { coex.Type(nil) })
	assert.Panics(t, func() { coex.Before(nil, p, q) })
	// Only sequential contexts are ordered
	assert.Len(t, vocab.Predicates(), 1)
}

func Test_Context_02(t *testing.T) {
	var (
		vocab = NewVocabulary(NewRegistry())
		a     = vocab.NewSort("A")
		b     = vocab.NewSort("B")
		p     = fol.NewVariable("p", a)
		x     = fol.NewVariable("x", b)
		y     = fol.NewVariable("y", b)
		outer = RootContext().NewChildContext(vocab, "iteration", ast.Coex, a)
		inner = outer.NewChildContext(vocab, "iteration", ast.Seq, b)
	)
	//
	require.Len(t, vocab.Predicates(), 4)
	assert.Equal(t, "iteration_1", inner.TypePredicate().Name())
	assert.Equal(t, uint(2), inner.Level())
	assert.Equal(t, ast.Seq, inner.Flatness())
	assert.Equal(t, "(iteration_1 p x)", inner.Type([]fol.Term{p, x}).String())
	assert.Equal(t, "(iteration_before p x y)", inner.Before([]fol.Term{p}, x, y).String())
	assert.Equal(t, "(iteration_just_before p x y)", inner.JustBefore([]fol.Term{p, x}, x, y).String())
}
