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

// Formula represents an immutable first-order formula.  Formulas are built
// using the constructors in this package (e.g. And, ForAll, etc) and can be
// simplified using Optimize.
type Formula interface {
	// Lisp converts this formula into an S-Expression.
	Lisp() sexp.SExp
	// String returns a human-readable representation of this formula.
	String() string
	// Restricts this interface to the formulas of this package.
	isFormula()
}

// ============================================================================
// Constants
// ============================================================================

// Constant represents logical truth or falsehood.
type Constant bool

// True is the formula which always holds.
const True = Constant(true)

// False is the formula which never holds.
const False = Constant(false)

// Truth returns the constant formula corresponding to a given boolean.
func Truth(val bool) Formula {
	return Constant(val)
}

// Lisp converts this constant into an S-Expression.
func (c Constant) Lisp() sexp.SExp {
	if c {
		return sexp.NewSymbol("true")
	}
	//
	return sexp.NewSymbol("false")
}

func (c Constant) String() string { return c.Lisp().String(false) }
func (c Constant) isFormula()     {}

// IsTrue checks whether a given formula is (syntactically) logical truth.
func IsTrue(f Formula) bool {
	c, ok := f.(Constant)
	return ok && bool(c)
}

// IsFalse checks whether a given formula is (syntactically) logical falsehood.
func IsFalse(f Formula) bool {
	c, ok := f.(Constant)
	return ok && !bool(c)
}

// ============================================================================
// Atoms
// ============================================================================

// Atom represents a predicate applied to argument terms.
type Atom struct {
	Pred *Predicate
	Args []Term
}

// Lisp converts this atom into an S-Expression.
func (p *Atom) Lisp() sexp.SExp {
	return sexp.NewListOf(p.Pred.name, lispTerms(p.Args)...)
}

func (p *Atom) String() string { return p.Lisp().String(false) }
func (p *Atom) isFormula()     {}

// Equality represents the equality of two terms of the same sort.
type Equality struct {
	Lhs Term
	Rhs Term
}

// Equal constructs the equality of two terms.  Both terms must have the same
// sort.
func Equal(lhs Term, rhs Term) Formula {
	if lhs.Sort() != rhs.Sort() {
		panic(fmt.Sprintf("cannot equate %s (%s) with %s (%s)", lhs, lhs.Sort(), rhs, rhs.Sort()))
	}
	//
	return &Equality{lhs, rhs}
}

// EqualAll constructs the pointwise equality of two equally sized arrays of
// terms.
func EqualAll(lhs []Term, rhs []Term) Formula {
	args := make([]Formula, len(lhs))
	//
	for i := range lhs {
		args[i] = Equal(lhs[i], rhs[i])
	}
	//
	return And(args...)
}

// Lisp converts this equality into an S-Expression.
func (p *Equality) Lisp() sexp.SExp {
	return sexp.NewListOf("=", p.Lhs.Lisp(), p.Rhs.Lisp())
}

func (p *Equality) String() string { return p.Lisp().String(false) }
func (p *Equality) isFormula()     {}

// ============================================================================
// Connectives
// ============================================================================

// Negation represents the logical negation of a formula.
type Negation struct {
	Arg Formula
}

// Not constructs the negation of a formula.
func Not(arg Formula) Formula {
	return &Negation{arg}
}

// Lisp converts this negation into an S-Expression.
func (p *Negation) Lisp() sexp.SExp { return sexp.NewListOf("not", p.Arg.Lisp()) }
func (p *Negation) String() string  { return p.Lisp().String(false) }
func (p *Negation) isFormula()      {}

// Conjunction represents the logical conjunction of zero or more formulas.
type Conjunction struct {
	Args []Formula
}

// And constructs the conjunction of zero or more formulas.  The empty
// conjunction is truth.
func And(args ...Formula) Formula {
	switch len(args) {
	case 0:
		return True
	case 1:
		return args[0]
	default:
		return &Conjunction{args}
	}
}

// Lisp converts this conjunction into an S-Expression.
func (p *Conjunction) Lisp() sexp.SExp { return sexp.NewListOf("and", lispFormulas(p.Args)...) }
func (p *Conjunction) String() string  { return p.Lisp().String(false) }
func (p *Conjunction) isFormula()      {}

// Disjunction represents the logical disjunction of zero or more formulas.
type Disjunction struct {
	Args []Formula
}

// Or constructs the disjunction of zero or more formulas.  The empty
// disjunction is falsehood.
func Or(args ...Formula) Formula {
	switch len(args) {
	case 0:
		return False
	case 1:
		return args[0]
	default:
		return &Disjunction{args}
	}
}

// Lisp converts this disjunction into an S-Expression.
func (p *Disjunction) Lisp() sexp.SExp { return sexp.NewListOf("or", lispFormulas(p.Args)...) }
func (p *Disjunction) String() string  { return p.Lisp().String(false) }
func (p *Disjunction) isFormula()      {}

// Implication represents a logical implication.
type Implication struct {
	Lhs Formula
	Rhs Formula
}

// Implies constructs the implication lhs ⇒ rhs.
func Implies(lhs Formula, rhs Formula) Formula {
	return &Implication{lhs, rhs}
}

// Lisp converts this implication into an S-Expression.
func (p *Implication) Lisp() sexp.SExp { return sexp.NewListOf("=>", p.Lhs.Lisp(), p.Rhs.Lisp()) }
func (p *Implication) String() string  { return p.Lisp().String(false) }
func (p *Implication) isFormula()      {}

// Equivalence represents the logical equivalence of two formulas.
type Equivalence struct {
	Lhs Formula
	Rhs Formula
}

// Equiv constructs the equivalence lhs ⇔ rhs.
func Equiv(lhs Formula, rhs Formula) Formula {
	return &Equivalence{lhs, rhs}
}

// Lisp converts this equivalence into an S-Expression.
func (p *Equivalence) Lisp() sexp.SExp { return sexp.NewListOf("<=>", p.Lhs.Lisp(), p.Rhs.Lisp()) }
func (p *Equivalence) String() string  { return p.Lisp().String(false) }
func (p *Equivalence) isFormula()      {}

// ExclusiveOr represents the exclusive disjunction of two formulas.
type ExclusiveOr struct {
	Lhs Formula
	Rhs Formula
}

// Xor constructs the exclusive disjunction of two formulas.
func Xor(lhs Formula, rhs Formula) Formula {
	return &ExclusiveOr{lhs, rhs}
}

// Lisp converts this exclusive-or into an S-Expression.
func (p *ExclusiveOr) Lisp() sexp.SExp { return sexp.NewListOf("xor", p.Lhs.Lisp(), p.Rhs.Lisp()) }
func (p *ExclusiveOr) String() string  { return p.Lisp().String(false) }
func (p *ExclusiveOr) isFormula()      {}

// Conditional represents a formula-level if-then-else.
type Conditional struct {
	Cond Formula
	Then Formula
	Else Formula
}

// IfThenElse constructs the formula (cond ∧ then) ∨ (¬cond ∧ else).
func IfThenElse(cond Formula, then Formula, els Formula) Formula {
	return &Conditional{cond, then, els}
}

// Lisp converts this conditional into an S-Expression.
func (p *Conditional) Lisp() sexp.SExp {
	return sexp.NewListOf("ite", p.Cond.Lisp(), p.Then.Lisp(), p.Else.Lisp())
}

func (p *Conditional) String() string { return p.Lisp().String(false) }
func (p *Conditional) isFormula()     {}

// ============================================================================
// Quantifiers
// ============================================================================

// Quantifier represents a universally or existentially quantified formula.
type Quantifier struct {
	Universal bool
	Vars      []*Variable
	Body      Formula
}

// ForAll constructs a universally quantified formula.  Quantifying over no
// variables simply returns the body.
func ForAll(vars []*Variable, body Formula) Formula {
	if len(vars) == 0 {
		return body
	}
	//
	return &Quantifier{true, vars, body}
}

// Exists constructs an existentially quantified formula.  Quantifying over no
// variables simply returns the body.
func Exists(vars []*Variable, body Formula) Formula {
	if len(vars) == 0 {
		return body
	}
	//
	return &Quantifier{false, vars, body}
}

// Lisp converts this quantifier into an S-Expression.
func (p *Quantifier) Lisp() sexp.SExp {
	var (
		head  = "exists"
		decls = make([]sexp.SExp, len(p.Vars))
	)
	//
	if p.Universal {
		head = "forall"
	}
	//
	for i, v := range p.Vars {
		decls[i] = sexp.NewList([]sexp.SExp{sexp.NewSymbol(v.name), sexp.NewSymbol(v.sort.name)})
	}
	//
	return sexp.NewListOf(head, sexp.NewList(decls), p.Body.Lisp())
}

func (p *Quantifier) String() string { return p.Lisp().String(false) }
func (p *Quantifier) isFormula()     {}

func lispFormulas(formulas []Formula) []sexp.SExp {
	list := make([]sexp.SExp, len(formulas))
	//
	for i, f := range formulas {
		list[i] = f.Lisp()
	}
	//
	return list
}
