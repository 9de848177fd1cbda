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
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/segmentio/fasthash/fnv1a"
)

// State represents the set of live objects (and tuples) at one point of an
// action.  For each sort, a state is realised by a predicate whose arguments
// are the position tuple of the state's context, followed by the entity
// itself.  Sorts which a state does not change are delegated to the previous
// state (when linked), such that both share exactly the same predicate.
type State struct {
	name    string
	vocab   *Vocabulary
	context *Context
	// Predicates bound by this state, keyed by sort name.
	bindings *immutable.Map[string, binding]
	// Previous state, to which unchanged sorts are delegated.
	previous *State
}

type binding struct {
	sort      *fol.Sort
	pred      *fol.Predicate
	level     uint
	inherited bool
}

// NewState constructs a fresh state within a given context.  The state is not
// linked to any previous state.
func NewState(vocab *Vocabulary, name string, context *Context) *State {
	bindings := immutable.NewMap[string, binding](nameHasher{})
	//
	return &State{vocab.names.Register(name), vocab, context, bindings, nil}
}

// Name returns the (unique) name of this state.
func (s *State) Name() string {
	return s.name
}

// Context returns the context in which this state was created.
func (s *State) Context() *Context {
	return s.context
}

// Previous returns the state this state is linked to, or nil if it is not
// linked.
func (s *State) Previous() *State {
	return s.previous
}

// Link this state to a previous state, such that any sort not explicitly
// defined by this state is delegated to the previous state.  A state can be
// linked at most once.
func (s *State) Link(previous *State) {
	if s.previous != nil {
		panic(fmt.Sprintf("state %s already linked to %s", s.name, s.previous.name))
	} else if previous == s {
		panic(fmt.Sprintf("state %s linked to itself", s.name))
	}
	//
	s.previous = previous
}

// Define allocates a fresh predicate for a given sort in this state, thus
// indicating the extension of that sort may differ from the previous state.
// A sort can only be defined if it has not already been resolved.
func (s *State) Define(sort *fol.Sort) *fol.Predicate {
	if b, ok := s.bindings.Get(sort.Name()); ok && b.inherited {
		panic(fmt.Sprintf("state %s already delegates %s", s.name, sort))
	} else if ok {
		panic(fmt.Sprintf("state %s already defines %s", s.name, sort))
	}
	//
	return s.allocate(sort).pred
}

// Predicate returns the predicate realising a given sort in this state.  If
// the state does not define the sort, then it is delegated to the previous
// state or, when there is no previous state, a fresh predicate is allocated.
// Either way, the result is fixed from this point on.
func (s *State) Predicate(sort *fol.Sort) *fol.Predicate {
	return s.resolve(sort).pred
}

// Apply constructs the formula asserting a given entity is live in this state
// at a given position.  The position tuple may be longer than required, in
// which case it is truncated to the level at which the relevant predicate was
// allocated.
func (s *State) Apply(ps []fol.Term, entity fol.Term) fol.Formula {
	b := s.resolve(entity.Sort())
	//
	if uint(len(ps)) < b.level {
		panic(fmt.Sprintf("state %s requires %d positions for %s (was %d)", s.name, b.level, entity.Sort(), len(ps)))
	}
	//
	args := make([]fol.Term, b.level+1)
	copy(args, ps[:b.level])
	args[b.level] = entity
	//
	return b.pred.Apply(args...)
}

// SortsDifferingFrom returns every sort touched by either this state or a
// given state (or the states they are linked to) for which the two states
// resolve to different predicates.  Sorts are returned in order of name.
func (s *State) SortsDifferingFrom(other *State) []*fol.Sort {
	var (
		touched = make(map[string]*fol.Sort)
		sorts   []*fol.Sort
	)
	//
	s.touched(touched)
	other.touched(touched)
	//
	for _, sort := range touched {
		lhs, _ := s.peek(sort.Name())
		rhs, _ := other.peek(sort.Name())
		//
		if lhs.pred != rhs.pred {
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

// Sorts returns the sorts for which this state allocated its own predicate, in
// order of name.
func (s *State) Sorts() []*fol.Sort {
	var (
		sorts []*fol.Sort
		itr   = s.bindings.Iterator()
	)
	//
	for !itr.Done() {
		if _, b, _ := itr.Next(); !b.inherited {
			sorts = append(sorts, b.sort)
		}
	}
	//
	slices.SortFunc(sorts, func(l, r *fol.Sort) int {
		return strings.Compare(l.Name(), r.Name())
	})
	//
	return sorts
}

func (s *State) String() string {
	return s.name
}

func (s *State) resolve(sort *fol.Sort) binding {
	if b, ok := s.bindings.Get(sort.Name()); ok {
		return b
	} else if s.previous == nil {
		return s.allocate(sort)
	}
	//
	b := s.previous.resolve(sort)
	b.inherited = true
	s.bindings = s.bindings.Set(sort.Name(), b)
	//
	return b
}

func (s *State) allocate(sort *fol.Sort) binding {
	var (
		sorts = append(slices.Clone(s.context.Sorts()), sort)
		pred  = s.vocab.NewPredicate(fmt.Sprintf("%s_%s", s.name, sort.Name()), sorts...)
		b     = binding{sort, pred, s.context.Level(), false}
	)
	//
	s.bindings = s.bindings.Set(sort.Name(), b)
	//
	return b
}

// peek resolves a sort without fixing the result or allocating anything.
func (s *State) peek(name string) (binding, bool) {
	if b, ok := s.bindings.Get(name); ok {
		return b, true
	} else if s.previous != nil {
		return s.previous.peek(name)
	}
	//
	return binding{}, false
}

func (s *State) touched(sorts map[string]*fol.Sort) {
	itr := s.bindings.Iterator()
	//
	for !itr.Done() {
		name, b, _ := itr.Next()
		sorts[name] = b.sort
	}
	//
	if s.previous != nil {
		s.previous.touched(sorts)
	}
}

// nameHasher hashes strings for use as keys of persistent maps.
type nameHasher struct{}

var _ immutable.Hasher[string] = nameHasher{}

func (nameHasher) Hash(key string) uint32 {
	return fnv1a.HashString32(key)
}

func (nameHasher) Equal(a, b string) bool {
	return a == b
}
