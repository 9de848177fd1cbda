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
)

// Context represents a (possibly nested) loop scope.  Every level of nesting
// contributes one position parameter, such that a position tuple identifies
// a particular iteration of every enclosing loop.  The root context has no
// position parameters.
type Context struct {
	parent   *Context
	sorts    []*fol.Sort
	flatness ast.Flatness
	// Holds for those position tuples identifying a live iteration.  This is
	// nil for the root context.
	typePred *fol.Predicate
	// Total order on sibling iterations (sequential contexts only).
	before *fol.Predicate
	// Immediate predecessor relation on sibling iterations (sequential
	// contexts only).
	justBefore *fol.Predicate
}

// RootContext constructs a context without any position parameters.
func RootContext() *Context {
	return &Context{}
}

// NewChildContext allocates a context nested within this context, whose last
// position parameter ranges over a given sort.  For sequential contexts, the
// ordering predicates are allocated as well (though their axioms are not
// emitted here).
func (c *Context) NewChildContext(vocab *Vocabulary, name string, flatness ast.Flatness,
	sort *fol.Sort) *Context {
	sorts := append(slices.Clone(c.sorts), sort)
	child := &Context{parent: c, sorts: sorts, flatness: flatness}
	child.typePred = vocab.NewPredicate(name, sorts...)
	//
	if flatness == ast.Seq {
		ordered := append(slices.Clone(sorts), sort)
		child.before = vocab.NewPredicate(name+"_before", ordered...)
		child.justBefore = vocab.NewPredicate(name+"_just_before", ordered...)
	}
	//
	return child
}

// Parent returns the enclosing context, or nil for the root context.
func (c *Context) Parent() *Context {
	return c.parent
}

// Level returns the nesting depth of this context, which is also the length of
// its position tuples.
func (c *Context) Level() uint {
	return uint(len(c.sorts))
}

// Sorts returns the sorts of the position parameters of this context.  The
// returned slice must not be modified.
func (c *Context) Sorts() []*fol.Sort {
	return c.sorts
}

// Flatness returns the flatness of this context.
func (c *Context) Flatness() ast.Flatness {
	return c.flatness
}

// IsRoot checks whether this is the root context.
func (c *Context) IsRoot() bool {
	return c.parent == nil
}

// TypePredicate returns the predicate identifying live iterations of this
// context, or nil for the root context.
func (c *Context) TypePredicate() *fol.Predicate {
	return c.typePred
}

// Type constructs the formula asserting a given position tuple identifies a
// live iteration.  The tuple may be longer than required, in which case it is
// truncated.
func (c *Context) Type(ps []fol.Term) fol.Formula {
	if c.typePred == nil {
		return fol.True
	}
	//
	return c.typePred.Apply(c.truncate(ps)...)
}

// Before constructs the formula asserting, for a given parent position, that
// one iteration precedes another.
func (c *Context) Before(parent []fol.Term, a fol.Term, b fol.Term) fol.Formula {
	return c.ordering(c.before, parent, a, b)
}

// JustBefore constructs the formula asserting, for a given parent position,
// that one iteration immediately precedes another.
func (c *Context) JustBefore(parent []fol.Term, a fol.Term, b fol.Term) fol.Formula {
	return c.ordering(c.justBefore, parent, a, b)
}

func (c *Context) ordering(pred *fol.Predicate, parent []fol.Term, a fol.Term, b fol.Term) fol.Formula {
	if pred == nil {
		panic("ordering only defined for sequential contexts")
	}
	//
	args := append(slices.Clone(c.parent.truncate(parent)), a, b)
	//
	return pred.Apply(args...)
}

// truncate a position tuple to the level of this context.
func (c *Context) truncate(ps []fol.Term) []fol.Term {
	if uint(len(ps)) < c.Level() {
		panic(fmt.Sprintf("context requires %d positions (was %d)", c.Level(), len(ps)))
	}
	//
	return ps[:c.Level()]
}
