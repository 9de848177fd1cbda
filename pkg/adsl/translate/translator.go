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
	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/consensys/go-adsl/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// Translator translates a single action of a model into a set of first-order
// axioms over a sequence of states, from which verification problems about
// that action can then be generated.  A translator is not safe for concurrent
// use.
type Translator struct {
	model  *ast.Model
	config Config
	names  *Registry
	vocab  *Vocabulary
	// Axioms generated so far
	axioms []fol.Formula
	// Symbols realising the classes of the model
	classes []classSymbols
	// Symbols realising the (non-inverse) relations of the model
	relations map[ast.RelationId]relationSymbols
	// Current (innermost) context
	context *Context
	// Initial, current and final states.  The final state is nil until an
	// action has been translated.
	init, state, final *State
	// Current variable bindings
	env *immutable.Map[*ast.Var, *variable]
	// Branch conditions of the enclosing if statements
	branches *stack.Stack[branch]
	// Objects created by each creation statement
	created map[*ast.CreateObj]creation
	// Creations grouped by class, in order of first creation
	creations      map[ast.ClassId][]creation
	createdClasses []ast.ClassId
	// Top-level assignments observable by the user
	observations []observation
	// Authorisation symbols, allocated on demand
	user       *fol.Function
	usergroups map[ast.UsergroupId]*fol.Predicate
	// Action being translated
	action *ast.Action
	// Set whilst evaluating invariants and permission rules
	declaring bool
}

type classSymbols struct {
	sort *fol.Sort
	// Holds for instances of the class (including those of subclasses)
	typ *fol.Predicate
	// Holds only for instances of exactly this class
	precise *fol.Predicate
}

type relationSymbols struct {
	sort  *fol.Sort
	left  *fol.Function
	right *fol.Function
}

// branch is one entry of the branch condition stack.
type branch struct {
	pred    *fol.Predicate
	level   uint
	negated bool
}

// creation records the function identifying the object created by a creation
// statement, along with the context in which it was created.
type creation struct {
	link    *fol.Function
	context *Context
}

type observation struct {
	guard fol.Formula
	value objset
}

// New constructs a translator for a given model, declaring the sorts, type
// predicates and relation functions of the model along with the axioms
// relating them.
func New(model *ast.Model, config Config) *Translator {
	names := NewRegistry()
	t := &Translator{
		model:      model,
		config:     config,
		names:      names,
		vocab:      NewVocabulary(names),
		relations:  make(map[ast.RelationId]relationSymbols),
		context:    RootContext(),
		env:        immutable.NewMap[*ast.Var, *variable](varHasher{}),
		branches:   stack.NewStack[branch](),
		created:    make(map[*ast.CreateObj]creation),
		creations:  make(map[ast.ClassId][]creation),
		usergroups: make(map[ast.UsergroupId]*fol.Predicate),
	}
	//
	t.declareClasses()
	t.declareRelations()
	t.init = NewState(t.vocab, "init", t.context)
	t.state = t.init
	t.classAxioms()
	t.relationAxioms()
	//
	return t
}

// TranslateAction translates the body of a given action, starting from the
// initial state.  Only one action can be translated by a given translator.
func (t *Translator) TranslateAction(action *ast.Action) (err error) {
	if t.action != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyTranslated, t.action.Name)
	}
	//
	defer recoverFailure(&err)
	//
	t.action = action
	log.Debugf("translating action %s", action.Name)
	//
	for _, arg := range action.Args {
		t.translateArg(arg)
	}
	//
	t.translateBlock(action.Body)
	t.final = t.state
	t.exclusiveCreations()
	//
	log.Debugf("translated action %s (%d axioms, %d predicates)", action.Name, len(t.axioms),
		len(t.vocab.Predicates()))
	//
	return nil
}

// Model returns the model being translated.
func (t *Translator) Model() *ast.Model {
	return t.model
}

// Names returns the registry of names used by this translator.
func (t *Translator) Names() *Registry {
	return t.names
}

// Vocabulary returns the symbols allocated by this translator.
func (t *Translator) Vocabulary() *Vocabulary {
	return t.vocab
}

// Axioms returns the axioms generated so far.
func (t *Translator) Axioms() []fol.Formula {
	return t.axioms
}

// InitialState returns the state before the action executes.
func (t *Translator) InitialState() *State {
	return t.init
}

// FinalState returns the state after the action executes, or nil if no action
// has been translated.
func (t *Translator) FinalState() *State {
	return t.final
}

// ClassSort returns the sort realising a given class.
func (t *Translator) ClassSort(class ast.ClassId) *fol.Sort {
	return t.classes[class].sort
}

// TypePredicate returns the type predicate of a given class, and its precise
// counterpart.
func (t *Translator) TypePredicate(class ast.ClassId) (*fol.Predicate, *fol.Predicate) {
	return t.classes[class].typ, t.classes[class].precise
}

// RelationSort returns the sort realising the tuples of a given relation,
// along with the functions identifying the left and right objects of a tuple.
// For an inverse relation, the symbols of the relation it is the inverse of
// are returned (hence left and right are swapped).
func (t *Translator) RelationSort(rel ast.RelationId) (*fol.Sort, *fol.Function, *fol.Function) {
	base, inverted := t.model.BaseRelation(rel)
	syms := t.relations[base]
	//
	if inverted {
		return syms.sort, syms.right, syms.left
	}
	//
	return syms.sort, syms.left, syms.right
}

// ============================================================================
// Declarations
// ============================================================================

func (t *Translator) declareClasses() {
	var (
		ids   = t.model.Classes()
		sorts = make(map[ast.ClassId]*fol.Sort)
	)
	//
	t.classes = make([]classSymbols, len(ids))
	// One sort per connected component of the class hierarchy
	for _, id := range ids {
		rep := t.model.Hierarchy(id)
		//
		if _, ok := sorts[rep]; !ok {
			sorts[rep] = t.vocab.NewSort(t.model.Class(rep).Name)
		}
	}
	//
	for _, id := range ids {
		var (
			name = t.model.Class(id).Name
			sort = sorts[t.model.Hierarchy(id)]
		)
		//
		t.classes[id] = classSymbols{
			sort,
			t.vocab.NewPredicate("is_"+name, sort),
			t.vocab.NewPredicate("is_"+name+"_precise", sort),
		}
	}
}

func (t *Translator) declareRelations() {
	for _, id := range t.model.Relations() {
		if _, inverted := t.model.BaseRelation(id); inverted {
			continue
		}
		//
		var (
			rel  = t.model.Relation(id)
			from = t.classes[rel.From]
			to   = t.classes[rel.To]
			sort = t.vocab.NewSort(fmt.Sprintf("%s_%s", t.model.Class(rel.From).Name, rel.Name))
		)
		//
		t.relations[id] = relationSymbols{
			sort,
			t.vocab.NewFunction(from.sort, sort.Name()+"_left", sort),
			t.vocab.NewFunction(to.sort, sort.Name()+"_right", sort),
		}
	}
}

// classAxioms relate the type predicates of each class to those of its
// children, and partition each sort by precise type.
func (t *Translator) classAxioms() {
	var components = make(map[*fol.Sort][]ast.ClassId)
	//
	for _, id := range t.model.Classes() {
		var (
			c        = t.classes[id]
			children = t.model.Children(id)
		)
		//
		t.axiom(t.forAll([]*fol.Sort{c.sort}, func(vs []fol.Term) fol.Formula {
			disjuncts := []fol.Formula{c.precise.Apply(vs[0])}
			//
			for _, child := range children {
				disjuncts = append(disjuncts, t.classes[child].typ.Apply(vs[0]))
			}
			//
			return fol.Equiv(c.typ.Apply(vs[0]), fol.Or(disjuncts...))
		}))
		//
		components[c.sort] = append(components[c.sort], id)
	}
	//
	for _, sort := range t.vocab.Sorts() {
		ids, ok := components[sort]
		if !ok {
			continue
		}
		// Every object has some precise type
		t.axiom(t.forAll([]*fol.Sort{sort}, func(vs []fol.Term) fol.Formula {
			disjuncts := make([]fol.Formula, len(ids))
			//
			for i, id := range ids {
				disjuncts[i] = t.classes[id].precise.Apply(vs[0])
			}
			//
			return fol.Or(disjuncts...)
		}))
		// No object has more than one precise type
		for i, lhs := range ids {
			for _, rhs := range ids[i+1:] {
				t.axiom(t.forAll([]*fol.Sort{sort}, func(vs []fol.Term) fol.Formula {
					return fol.Not(fol.And(t.classes[lhs].precise.Apply(vs[0]), t.classes[rhs].precise.Apply(vs[0])))
				}))
			}
		}
	}
}

// relationAxioms type the endpoints of every tuple, identify tuples by their
// endpoints and ensure tuples in the initial state only link live objects.
func (t *Translator) relationAxioms() {
	for _, id := range t.model.Relations() {
		syms, ok := t.relations[id]
		if !ok {
			continue
		}
		//
		var (
			rel  = t.model.Relation(id)
			from = t.classes[rel.From]
			to   = t.classes[rel.To]
			tup  = []*fol.Sort{syms.sort}
		)
		//
		t.axiom(t.forAll(tup, func(vs []fol.Term) fol.Formula {
			return fol.And(from.typ.Apply(syms.left.Apply(vs[0])), to.typ.Apply(syms.right.Apply(vs[0])))
		}))
		//
		t.axiom(t.forAll([]*fol.Sort{syms.sort, syms.sort}, func(vs []fol.Term) fol.Formula {
			return fol.Implies(
				fol.And(fol.Equal(syms.left.Apply(vs[0]), syms.left.Apply(vs[1])),
					fol.Equal(syms.right.Apply(vs[0]), syms.right.Apply(vs[1]))),
				fol.Equal(vs[0], vs[1]))
		}))
		//
		t.axiom(t.forAll(tup, func(vs []fol.Term) fol.Formula {
			return fol.Implies(t.init.Apply(nil, vs[0]),
				fol.And(t.init.Apply(nil, syms.left.Apply(vs[0])), t.init.Apply(nil, syms.right.Apply(vs[0]))))
		}))
	}
}

// translateArg binds an action argument to the live instances of its class
// chosen by the caller, constrained by the argument's cardinality.
func (t *Translator) translateArg(arg ast.Arg) {
	var (
		c    = t.classes[arg.Class]
		pred = t.vocab.NewPredicate(arg.Var.Name, c.sort)
		one  = []*fol.Sort{c.sort}
	)
	//
	t.axiom(t.forAll(one, func(vs []fol.Term) fol.Formula {
		return fol.Implies(pred.Apply(vs[0]), fol.And(t.init.Apply(nil, vs[0]), c.typ.Apply(vs[0])))
	}))
	//
	if arg.Card.Min > 0 {
		t.axiom(t.exists(one, func(vs []fol.Term) fol.Formula {
			return pred.Apply(vs[0])
		}))
	}
	//
	if arg.Card.Max == 1 {
		t.axiom(t.forAll([]*fol.Sort{c.sort, c.sort}, func(vs []fol.Term) fol.Formula {
			return fol.Implies(fol.And(pred.Apply(vs[0]), pred.Apply(vs[1])), fol.Equal(vs[0], vs[1]))
		}))
	}
	//
	t.env = t.env.Set(arg.Var, &variable{kind: materialised, sort: c.sort, pred: pred})
}

// exclusiveCreations ensures that objects created by distinct creation
// statements (or distinct iterations of the same statement) are distinct, and
// that none of them existed initially.
func (t *Translator) exclusiveCreations() {
	for _, class := range t.createdClasses {
		cs := t.creations[class]
		//
		for i, lhs := range cs {
			t.axiom(t.forAll(lhs.context.Sorts(), func(ps []fol.Term) fol.Formula {
				return fol.Implies(lhs.context.Type(ps), fol.Not(t.init.Apply(nil, lhs.link.Apply(ps...))))
			}))
			//
			for j := i; j < len(cs); j++ {
				rhs := cs[j]
				//
				if i == j && lhs.context.IsRoot() {
					continue
				}
				//
				var (
					n     = lhs.context.Level()
					sorts = append(slices.Clone(lhs.context.Sorts()), rhs.context.Sorts()...)
				)
				//
				t.axiom(t.forAll(sorts, func(vs []fol.Term) fol.Formula {
					var (
						a     = vs[:n]
						b     = vs[n:]
						guard = fol.And(lhs.context.Type(a), rhs.context.Type(b))
					)
					//
					if i == j {
						guard = fol.And(guard, fol.Not(fol.EqualAll(a, b)))
					}
					//
					return fol.Implies(guard, fol.Not(fol.Equal(lhs.link.Apply(a...), rhs.link.Apply(b...))))
				}))
			}
		}
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (t *Translator) axiom(f fol.Formula) {
	t.axioms = append(t.axioms, f)
}

// forAll universally quantifies over fresh variables of the given sorts.  The
// names of these variables are reserved whilst the body is constructed.
func (t *Translator) forAll(sorts []*fol.Sort, body func([]fol.Term) fol.Formula) fol.Formula {
	return t.quantify(true, sorts, body)
}

// exists existentially quantifies over fresh variables of the given sorts.
func (t *Translator) exists(sorts []*fol.Sort, body func([]fol.Term) fol.Formula) fol.Formula {
	return t.quantify(false, sorts, body)
}

func (t *Translator) quantify(universal bool, sorts []*fol.Sort, body func([]fol.Term) fol.Formula) fol.Formula {
	var (
		bases = make([]string, len(sorts))
		vars  = make([]*fol.Variable, len(sorts))
	)
	//
	for i, sort := range sorts {
		bases[i] = strings.ToLower(sort.Name())
	}
	//
	names := t.names.Reserve(bases...)
	defer t.names.Release(uint(len(names)))
	//
	for i, name := range names {
		vars[i] = fol.NewVariable(name, sorts[i])
	}
	//
	f := body(fol.Terms(vars))
	//
	if universal {
		return fol.ForAll(vars, f)
	}
	//
	return fol.Exists(vars, f)
}

// forAllAt universally quantifies over the position tuples of a given context,
// along with fresh variables of any additional sorts.
func (t *Translator) forAllAt(ctx *Context, body func(ps []fol.Term, xs []fol.Term) fol.Formula,
	extra ...*fol.Sort) fol.Formula {
	var (
		n     = ctx.Level()
		sorts = append(slices.Clone(ctx.Sorts()), extra...)
	)
	//
	return t.forAll(sorts, func(vs []fol.Term) fol.Formula {
		return body(vs[:n], vs[n:])
	})
}

// branchCondition holds for those positions of the current context which are
// live iterations reached by every enclosing branch.
func (t *Translator) branchCondition(ps []fol.Term) fol.Formula {
	conjuncts := []fol.Formula{t.context.Type(ps)}
	//
	for _, b := range t.branches.Items() {
		f := b.pred.Apply(ps[:b.level]...)
		//
		if b.negated {
			f = fol.Not(f)
		}
		//
		conjuncts = append(conjuncts, f)
	}
	//
	return fol.And(conjuncts...)
}

// withState evaluates a function with a given state temporarily made current.
func (t *Translator) withState(state *State, fn func()) {
	saved := t.state
	t.state = state
	//
	defer func() { t.state = saved }()
	//
	fn()
}

// declaration evaluates an invariant or permission rule with a given state
// temporarily made current.  Declarations are not part of the action, hence
// cannot make choices.
func (t *Translator) declaration(state *State, fn func()) {
	saved := t.declaring
	t.declaring = true
	//
	defer func() { t.declaring = saved }()
	//
	t.withState(state, fn)
}

// transition allocates the state following the current state, allowing the
// given function to define those sorts which change before linking it to the
// current state and making it current.
func (t *Translator) transition(fn func(pre *State, post *State)) {
	var (
		pre  = t.state
		post = NewState(t.vocab, "s", t.context)
	)
	//
	fn(pre, post)
	post.Link(pre)
	t.state = post
}

// applyAt applies a predicate allocated at a given level to a position tuple
// (truncated to that level) and any further arguments.
func applyAt(pred *fol.Predicate, level uint, ps []fol.Term, xs ...fol.Term) fol.Formula {
	args := make([]fol.Term, 0, level+uint(len(xs)))
	args = append(args, ps[:level]...)
	//
	return pred.Apply(append(args, xs...)...)
}

func extend(ps []fol.Term, xs ...fol.Term) []fol.Term {
	return append(slices.Clone(ps), xs...)
}
