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
	"fmt"
	"slices"

	"github.com/consensys/go-adsl/pkg/util/source/sexp"
)

// Theorem is a closed first-order theory: the vocabulary it is stated over, a
// set of axioms (premises) and a conjecture.  A prover establishes the theorem
// by showing the axioms together with the negated conjecture are
// unsatisfiable.
type Theorem struct {
	Sorts      []*Sort
	Predicates []*Predicate
	Functions  []*Function
	Axioms     []Formula
	Conjecture Formula
}

// Symbols returns the predicates and functions referenced by the axioms and
// conjecture of this theorem, in order of first occurrence.
func (p *Theorem) Symbols() ([]*Predicate, []*Function) {
	var (
		preds []*Predicate
		funcs []*Function
	)
	//
	visit := func(f Formula) {
		Walk(f, nil, func(t Term) {
			if app, ok := t.(*Application); ok && !slices.Contains(funcs, app.Fn) {
				funcs = append(funcs, app.Fn)
			}
		}, func(a *Atom) {
			if !slices.Contains(preds, a.Pred) {
				preds = append(preds, a.Pred)
			}
		})
	}
	//
	for _, axiom := range p.Axioms {
		visit(axiom)
	}
	//
	if p.Conjecture != nil {
		visit(p.Conjecture)
	}
	//
	return preds, funcs
}

// Undeclared returns the first symbol referenced by this theorem which is not
// part of its declared vocabulary, or nil if there is no such symbol.
func (p *Theorem) Undeclared() error {
	preds, funcs := p.Symbols()
	//
	for _, pred := range preds {
		if !slices.Contains(p.Predicates, pred) {
			return fmt.Errorf("predicate %s", pred.name)
		}
	}
	//
	for _, fn := range funcs {
		if !slices.Contains(p.Functions, fn) {
			return fmt.Errorf("function %s", fn.name)
		}
	}
	//
	return nil
}

// Lisp converts this theorem into a sequence of S-Expressions, one for each
// declaration, axiom and finally the conjecture.
func (p *Theorem) Lisp() []sexp.SExp {
	var decls []sexp.SExp
	//
	for _, s := range p.Sorts {
		decls = append(decls, sexp.NewListOf("sort", sexp.NewSymbol(s.name)))
	}
	//
	for _, pred := range p.Predicates {
		decls = append(decls, pred.Lisp())
	}
	//
	for _, fn := range p.Functions {
		decls = append(decls, fn.Lisp())
	}
	//
	for _, axiom := range p.Axioms {
		decls = append(decls, sexp.NewListOf("axiom", axiom.Lisp()))
	}
	//
	if p.Conjecture != nil {
		decls = append(decls, sexp.NewListOf("conjecture", p.Conjecture.Lisp()))
	}
	//
	return decls
}
