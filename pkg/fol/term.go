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
	"github.com/consensys/go-adsl/pkg/util/source/sexp"
)

// Term represents an individual of some sort: either a variable or the
// application of a function to argument terms.
type Term interface {
	// Sort returns the sort of this term.
	Sort() *Sort
	// Lisp converts this term into an S-Expression.
	Lisp() sexp.SExp
	// String returns a human-readable representation of this term.
	String() string
}

// Variable is a bound logical variable of a given sort.  Variables are compared
// by identity, so two distinct variables may share the same name (though the
// translator never allows this within one formula).
type Variable struct {
	name string
	sort *Sort
}

// NewVariable constructs a fresh variable.
func NewVariable(name string, sort *Sort) *Variable {
	return &Variable{name, sort}
}

// Name returns the name of this variable.
func (v *Variable) Name() string { return v.name }

// Sort returns the sort of this variable.
func (v *Variable) Sort() *Sort { return v.sort }

// Lisp converts this variable into an S-Expression.
func (v *Variable) Lisp() sexp.SExp { return sexp.NewSymbol(v.name) }

func (v *Variable) String() string { return v.name }

// Application represents a function applied to zero or more arguments.
type Application struct {
	Fn   *Function
	Args []Term
}

// Sort returns the result sort of the applied function.
func (a *Application) Sort() *Sort { return a.Fn.result }

// Lisp converts this application into an S-Expression.  Constants (i.e.
// nullary functions) are written as plain symbols.
func (a *Application) Lisp() sexp.SExp {
	if len(a.Args) == 0 {
		return sexp.NewSymbol(a.Fn.name)
	}
	//
	return sexp.NewListOf(a.Fn.name, lispTerms(a.Args)...)
}

func (a *Application) String() string { return a.Lisp().String(false) }

// Terms converts an array of variables into an array of terms.
func Terms(vars []*Variable) []Term {
	terms := make([]Term, len(vars))
	//
	for i, v := range vars {
		terms[i] = v
	}
	//
	return terms
}

// TermEquals checks whether two terms are syntactically identical.
func TermEquals(lhs Term, rhs Term) bool {
	switch l := lhs.(type) {
	case *Variable:
		return l == rhs
	case *Application:
		if r, ok := rhs.(*Application); ok && l.Fn == r.Fn {
			for i := range l.Args {
				if !TermEquals(l.Args[i], r.Args[i]) {
					return false
				}
			}
			//
			return true
		}
	}
	//
	return false
}

func lispTerms(terms []Term) []sexp.SExp {
	list := make([]sexp.SExp, len(terms))
	//
	for i, t := range terms {
		list[i] = t.Lisp()
	}
	//
	return list
}
