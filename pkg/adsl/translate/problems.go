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
	"go.uber.org/multierr"
)

// Problem is a verification problem about a translated action.  Each problem
// determines a conjecture which holds for every execution of the action
// exactly when the property of interest does.
type Problem interface {
	// Name identifies this problem.
	Name() string
	generate(t *Translator) (fol.Formula, error)
}

// Conjecture constructs the conjunction of the conjectures of the given
// problems.  Every problem is attempted, and the failures of all problems
// which could not be generated are reported together.
func (t *Translator) Conjecture(problems ...Problem) (fol.Formula, error) {
	if t.final == nil {
		return nil, ErrNotTranslated
	}
	//
	var (
		conjuncts []fol.Formula
		errs      error
	)
	//
	for _, problem := range problems {
		f, err := t.generate(problem)
		//
		if err != nil {
			errs = multierr.Append(errs, &ProblemError{problem.Name(), err})
			continue
		}
		//
		log.Debugf("generated problem %s for action %s", problem.Name(), t.action.Name)
		//
		conjuncts = append(conjuncts, f)
	}
	//
	if errs != nil {
		return nil, errs
	}
	//
	return fol.Optimize(fol.And(conjuncts...)), nil
}

func (t *Translator) generate(problem Problem) (f fol.Formula, err error) {
	defer recoverFailure(&err)
	//
	return problem.generate(t)
}

// ParseProblem parses a problem from its name.
func ParseProblem(name string) (Problem, error) {
	switch name {
	case "invariants":
		return InvariantPreservation(), nil
	case "create":
		return AccessCreate(), nil
	case "delete":
		return AccessDelete(), nil
	case "read":
		return AccessRead(), nil
	case "associate":
		return AccessAssociate(), nil
	case "deassociate":
		return AccessDeassociate(), nil
	}
	//
	return nil, fmt.Errorf("%w: unknown problem \"%s\"", ErrProblemConfiguration, name)
}

// ============================================================================
// Invariants
// ============================================================================

// InvariantPreservation constructs the problem of showing the given invariants
// (or all invariants, if none are given) hold after the action, assuming every
// invariant holds before it.
func InvariantPreservation(names ...string) Problem {
	return invariantPreservation{names}
}

type invariantPreservation struct {
	names []string
}

func (p invariantPreservation) Name() string {
	return "invariants"
}

func (p invariantPreservation) generate(t *Translator) (fol.Formula, error) {
	var (
		invariants = t.model.Invariants()
		selected   []ast.Invariant
	)
	//
	for _, name := range p.names {
		i := slices.IndexFunc(invariants, func(inv ast.Invariant) bool { return inv.Name == name })
		//
		if i < 0 {
			return nil, fmt.Errorf("%w: unknown invariant %s", ErrProblemConfiguration, name)
		}
		//
		selected = append(selected, invariants[i])
	}
	//
	if len(p.names) == 0 {
		selected = invariants
	}
	//
	var (
		pre  = t.invariants(t.init, invariants)
		post = t.invariants(t.final, selected)
	)
	//
	return fol.Implies(pre, post), nil
}

// invariants evaluates the conjunction of the given invariants in a given
// state.
func (t *Translator) invariants(state *State, invariants []ast.Invariant) fol.Formula {
	conjuncts := make([]fol.Formula, len(invariants))
	//
	t.declaration(state, func() {
		for i, inv := range invariants {
			conjuncts[i] = t.condition(inv.Formula)(nil)
		}
	})
	//
	return fol.And(conjuncts...)
}

// ============================================================================
// Access control
// ============================================================================

// AccessCreate constructs the problem of showing the current user is permitted
// to create every object created by the action.  Creation is judged in the
// final state.
func AccessCreate() Problem {
	return access{"create", ast.Create}
}

// AccessDelete constructs the problem of showing the current user is permitted
// to delete every object deleted by the action.  Deletion is judged in the
// initial state.
func AccessDelete() Problem {
	return access{"delete", ast.Delete}
}

// AccessRead constructs the problem of showing the current user is permitted
// to read every object observable after the action, where an object is
// observable when it is live in the final state and held by a top-level
// variable.
func AccessRead() Problem {
	return access{"read", ast.Read}
}

// AccessAssociate constructs the problem of showing the current user is
// permitted to create every tuple created by the action.  This is the case if
// a rule explicitly permits it or, failing that, the user may create or read
// each of the objects linked by the tuple.
func AccessAssociate() Problem {
	return access{"associate", ast.Associate}
}

// AccessDeassociate constructs the problem of showing the current user is
// permitted to delete every tuple deleted by the action.  This is the case if
// a rule explicitly permits it or, failing that, the user may delete or read
// each of the objects linked by the tuple.
func AccessDeassociate() Problem {
	return access{"deassociate", ast.Deassociate}
}

type access struct {
	name string
	op   ast.Op
}

func (p access) Name() string {
	return p.name
}

func (p access) generate(t *Translator) (fol.Formula, error) {
	if t.model.Authenticable().IsEmpty() {
		return nil, fmt.Errorf("%w: no authenticable class", ErrProblemConfiguration)
	}
	//
	switch p.op {
	case ast.Create:
		return t.accessCreate(), nil
	case ast.Delete:
		return t.accessDelete(), nil
	case ast.Read:
		return t.accessRead(), nil
	case ast.Associate:
		return t.accessAssociate(), nil
	default:
		return t.accessDeassociate(), nil
	}
}

func (t *Translator) accessCreate() fol.Formula {
	var conjuncts []fol.Formula
	//
	for _, class := range t.createdClasses {
		c := t.classes[class]
		//
		conjuncts = append(conjuncts, t.forAll([]*fol.Sort{c.sort}, func(xs []fol.Term) fol.Formula {
			created := fol.And(c.precise.Apply(xs[0]), t.isCreated(xs[0]))
			return fol.Implies(created, t.permission(ast.Create, t.final, nil, xs[0]))
		}))
	}
	//
	return fol.And(conjuncts...)
}

func (t *Translator) accessDelete() fol.Formula {
	var conjuncts []fol.Formula
	//
	for _, sort := range t.final.SortsDifferingFrom(t.init) {
		if !t.isClassSort(sort) {
			continue
		}
		//
		conjuncts = append(conjuncts, t.forAll([]*fol.Sort{sort}, func(xs []fol.Term) fol.Formula {
			return fol.Implies(t.isDeleted(xs[0]), t.permission(ast.Delete, t.init, nil, xs[0]))
		}))
	}
	//
	return fol.And(conjuncts...)
}

func (t *Translator) accessRead() fol.Formula {
	var conjuncts []fol.Formula
	//
	for _, obs := range t.observations {
		conjuncts = append(conjuncts, t.forAll([]*fol.Sort{obs.value.sort}, func(xs []fol.Term) fol.Formula {
			observed := fol.And(obs.guard, obs.value.member(nil, xs[0]), t.final.Apply(nil, xs[0]))
			return fol.Implies(observed, t.permission(ast.Read, t.final, nil, xs[0]))
		}))
	}
	//
	return fol.And(conjuncts...)
}

func (t *Translator) accessAssociate() fol.Formula {
	return t.accessTuples(ast.Associate, t.final, ast.Create, t.isCreated)
}

func (t *Translator) accessDeassociate() fol.Formula {
	return t.accessTuples(ast.Deassociate, t.init, ast.Delete, t.isDeleted)
}

// accessTuples constructs the access problem for the tuples changed by an
// action.  A changed tuple must either be explicitly permitted, or each of its
// objects must be covered by the given operation or by reading.  The objects
// are covered independently, so linking two objects which are merely readable
// is permitted.
func (t *Translator) accessTuples(op ast.Op, state *State, covering ast.Op,
	changed func(fol.Term) fol.Formula) fol.Formula {
	var conjuncts []fol.Formula
	//
	for _, id := range t.model.Relations() {
		syms, ok := t.relations[id]
		//
		if !ok || !containsSort(t.final.SortsDifferingFrom(t.init), syms.sort) {
			continue
		}
		//
		conjuncts = append(conjuncts, t.forAll([]*fol.Sort{syms.sort}, func(xs []fol.Term) fol.Formula {
			var (
				left  = syms.left.Apply(xs[0])
				right = syms.right.Apply(xs[0])
				both  = fol.And(t.permissions(state, left, covering, ast.Read),
					t.permissions(state, right, covering, ast.Read))
			)
			//
			return fol.Implies(changed(xs[0]), fol.Or(t.tuplePermission(op, state, id, xs[0]), both))
		}))
	}
	//
	return fol.And(conjuncts...)
}

// isCreated holds for entities live in the final state, but not the initial
// state.
func (t *Translator) isCreated(o fol.Term) fol.Formula {
	return fol.And(fol.Not(t.init.Apply(nil, o)), t.final.Apply(nil, o))
}

// isDeleted holds for entities live in the initial state, but not the final
// state.
func (t *Translator) isDeleted(o fol.Term) fol.Formula {
	return fol.And(t.init.Apply(nil, o), fol.Not(t.final.Apply(nil, o)))
}

func (t *Translator) isClassSort(sort *fol.Sort) bool {
	for _, c := range t.classes {
		if c.sort == sort {
			return true
		}
	}
	//
	return false
}
