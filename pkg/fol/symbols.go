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

	"github.com/consensys/go-adsl/pkg/util/source/sexp"
)

// Sort is an opaque logical type partitioning the universe of discourse.  Sorts
// are compared by identity.
type Sort struct {
	name string
}

// NewSort constructs a new sort with a given name.
func NewSort(name string) *Sort {
	return &Sort{name}
}

// Name returns the name of this sort.
func (s *Sort) Name() string {
	return s.name
}

func (s *Sort) String() string {
	return s.name
}

// Predicate is a named symbol of fixed arity which, when applied to terms of
// the right sorts, yields an atomic formula.
type Predicate struct {
	name string
	args []*Sort
}

// NewPredicate constructs a new predicate with a given name and argument sorts.
func NewPredicate(name string, args ...*Sort) *Predicate {
	return &Predicate{name, args}
}

// Name returns the name of this predicate.
func (p *Predicate) Name() string {
	return p.name
}

// Arity returns the number of arguments this predicate accepts.
func (p *Predicate) Arity() int {
	return len(p.args)
}

// Args returns the argument sorts of this predicate.
func (p *Predicate) Args() []*Sort {
	return p.args
}

// Apply this predicate to a given set of argument terms.  This panics if the
// arguments do not match the predicate's signature.
func (p *Predicate) Apply(args ...Term) Formula {
	checkArguments(p.name, p.args, args)
	//
	return &Atom{p, args}
}

// Lisp returns a declaration of this predicate as an S-Expression.
func (p *Predicate) Lisp() sexp.SExp {
	return sexp.NewListOf("predicate", sexp.NewSymbol(p.name), sortList(p.args))
}

// Function is a named symbol of fixed arity which, when applied to terms of
// the right sorts, yields a term of its result sort.
type Function struct {
	name   string
	result *Sort
	args   []*Sort
}

// NewFunction constructs a new function with a given result sort, name and
// argument sorts.
func NewFunction(result *Sort, name string, args ...*Sort) *Function {
	return &Function{name, result, args}
}

// Name returns the name of this function.
func (f *Function) Name() string {
	return f.name
}

// Result returns the sort of terms produced by this function.
func (f *Function) Result() *Sort {
	return f.result
}

// Arity returns the number of arguments this function accepts.
func (f *Function) Arity() int {
	return len(f.args)
}

// Args returns the argument sorts of this function.
func (f *Function) Args() []*Sort {
	return f.args
}

// Apply this function to a given set of argument terms.  This panics if the
// arguments do not match the function's signature.
func (f *Function) Apply(args ...Term) Term {
	checkArguments(f.name, f.args, args)
	//
	return &Application{f, args}
}

// Lisp returns a declaration of this function as an S-Expression.
func (f *Function) Lisp() sexp.SExp {
	return sexp.NewListOf("function", sexp.NewSymbol(f.name), sortList(f.args), sexp.NewSymbol(f.result.name))
}

func checkArguments(name string, sorts []*Sort, args []Term) {
	if len(sorts) != len(args) {
		panic(fmt.Sprintf("%s expects %d arguments, given %d", name, len(sorts), len(args)))
	}
	//
	for i, arg := range args {
		if arg.Sort() != sorts[i] {
			panic(fmt.Sprintf("argument %d of %s has sort %s, expected %s", i, name, arg.Sort(), sorts[i]))
		}
	}
}

func sortList(sorts []*Sort) sexp.SExp {
	list := make([]sexp.SExp, len(sorts))
	//
	for i, s := range sorts {
		list[i] = sexp.NewSymbol(s.name)
	}
	//
	return sexp.NewList(list)
}
