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

import "slices"

// Optimize simplifies a formula without changing its truth value.  This
// includes constant folding, flattening nested conjunctions and disjunctions,
// removing duplicate operands, eliminating double negation, merging nested
// quantifiers of the same kind and dropping quantified variables which do not
// occur in the body.  Sorts are assumed to be non-empty, as is standard for
// first-order logic.
func Optimize(f Formula) Formula {
	switch f := f.(type) {
	case Constant:
		return f
	case *Atom:
		return f
	case *Equality:
		if TermEquals(f.Lhs, f.Rhs) {
			return True
		}
		//
		return f
	case *Negation:
		return optimizeNot(Optimize(f.Arg))
	case *Conjunction:
		return optimizeJunction(true, f.Args)
	case *Disjunction:
		return optimizeJunction(false, f.Args)
	case *Implication:
		return optimizeImplies(Optimize(f.Lhs), Optimize(f.Rhs))
	case *Equivalence:
		return optimizeEquiv(Optimize(f.Lhs), Optimize(f.Rhs))
	case *ExclusiveOr:
		return optimizeNot(optimizeEquiv(Optimize(f.Lhs), Optimize(f.Rhs)))
	case *Conditional:
		return optimizeConditional(Optimize(f.Cond), Optimize(f.Then), Optimize(f.Else))
	case *Quantifier:
		return optimizeQuantifier(f.Universal, f.Vars, Optimize(f.Body))
	default:
		panic("unknown formula encountered")
	}
}

func optimizeNot(arg Formula) Formula {
	switch arg := arg.(type) {
	case Constant:
		return !arg
	case *Negation:
		return arg.Arg
	default:
		return Not(arg)
	}
}

// Optimise a conjunction (when conjunct holds) or disjunction (otherwise).  The
// unit element is dropped, whilst the zero element absorbs everything.
func optimizeJunction(conjunct bool, args []Formula) Formula {
	var (
		unit     = Constant(conjunct)
		operands []Formula
	)
	//
	for _, arg := range args {
		arg = Optimize(arg)
		//
		for _, ith := range flattenJunction(conjunct, arg) {
			if c, ok := ith.(Constant); ok && c == unit {
				continue
			} else if ok {
				// zero element
				return !unit
			} else if !containsFormula(operands, ith) {
				operands = append(operands, ith)
			}
		}
	}
	//
	if conjunct {
		return And(operands...)
	}
	//
	return Or(operands...)
}

func flattenJunction(conjunct bool, f Formula) []Formula {
	if c, ok := f.(*Conjunction); ok && conjunct {
		return c.Args
	} else if d, ok := f.(*Disjunction); ok && !conjunct {
		return d.Args
	}
	//
	return []Formula{f}
}

func optimizeImplies(lhs Formula, rhs Formula) Formula {
	switch {
	case IsFalse(lhs) || IsTrue(rhs):
		return True
	case IsTrue(lhs):
		return rhs
	case IsFalse(rhs):
		return optimizeNot(lhs)
	case Equals(lhs, rhs):
		return True
	}
	//
	return Implies(lhs, rhs)
}

func optimizeEquiv(lhs Formula, rhs Formula) Formula {
	switch {
	case IsTrue(lhs):
		return rhs
	case IsTrue(rhs):
		return lhs
	case IsFalse(lhs):
		return optimizeNot(rhs)
	case IsFalse(rhs):
		return optimizeNot(lhs)
	case Equals(lhs, rhs):
		return True
	}
	//
	return Equiv(lhs, rhs)
}

func optimizeConditional(cond Formula, then Formula, els Formula) Formula {
	switch {
	case IsTrue(cond):
		return then
	case IsFalse(cond):
		return els
	case Equals(then, els):
		return then
	case IsTrue(then) && IsFalse(els):
		return cond
	case IsFalse(then) && IsTrue(els):
		return optimizeNot(cond)
	}
	//
	return IfThenElse(cond, then, els)
}

func optimizeQuantifier(universal bool, vars []*Variable, body Formula) Formula {
	// Merge directly nested quantifiers of the same kind
	if q, ok := body.(*Quantifier); ok && q.Universal == universal {
		vars = append(slices.Clone(vars), q.Vars...)
		body = q.Body
	}
	// Drop variables which are not used
	var used []*Variable
	//
	for _, v := range vars {
		if OccursFree(v, body) {
			used = append(used, v)
		}
	}
	//
	if len(used) == 0 {
		return body
	} else if universal {
		return ForAll(used, body)
	}
	//
	return Exists(used, body)
}

func containsFormula(formulas []Formula, f Formula) bool {
	for _, g := range formulas {
		if Equals(f, g) {
			return true
		}
	}
	//
	return false
}

// Equals checks whether two formulas are syntactically identical.  Variables
// are compared by identity, hence this is a conservative approximation of
// alpha-equivalence.
func Equals(lhs Formula, rhs Formula) bool {
	switch l := lhs.(type) {
	case Constant:
		r, ok := rhs.(Constant)
		return ok && l == r
	case *Atom:
		r, ok := rhs.(*Atom)
		return ok && l.Pred == r.Pred && termsEqual(l.Args, r.Args)
	case *Equality:
		r, ok := rhs.(*Equality)
		return ok && TermEquals(l.Lhs, r.Lhs) && TermEquals(l.Rhs, r.Rhs)
	case *Negation:
		r, ok := rhs.(*Negation)
		return ok && Equals(l.Arg, r.Arg)
	case *Conjunction:
		r, ok := rhs.(*Conjunction)
		return ok && formulasEqual(l.Args, r.Args)
	case *Disjunction:
		r, ok := rhs.(*Disjunction)
		return ok && formulasEqual(l.Args, r.Args)
	case *Implication:
		r, ok := rhs.(*Implication)
		return ok && Equals(l.Lhs, r.Lhs) && Equals(l.Rhs, r.Rhs)
	case *Equivalence:
		r, ok := rhs.(*Equivalence)
		return ok && Equals(l.Lhs, r.Lhs) && Equals(l.Rhs, r.Rhs)
	case *ExclusiveOr:
		r, ok := rhs.(*ExclusiveOr)
		return ok && Equals(l.Lhs, r.Lhs) && Equals(l.Rhs, r.Rhs)
	case *Conditional:
		r, ok := rhs.(*Conditional)
		return ok && Equals(l.Cond, r.Cond) && Equals(l.Then, r.Then) && Equals(l.Else, r.Else)
	case *Quantifier:
		r, ok := rhs.(*Quantifier)
		return ok && l.Universal == r.Universal && slices.Equal(l.Vars, r.Vars) && Equals(l.Body, r.Body)
	}
	//
	return false
}

func termsEqual(lhs []Term, rhs []Term) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !TermEquals(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}

func formulasEqual(lhs []Formula, rhs []Formula) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !Equals(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}

// OccursFree checks whether a given variable occurs free in a formula.
func OccursFree(v *Variable, f Formula) bool {
	found := false
	//
	Walk(f, func(q *Quantifier) bool {
		// Stop descending into quantifiers which rebind v
		return !slices.Contains(q.Vars, v)
	}, func(t Term) {
		if t == Term(v) {
			found = true
		}
	}, nil)
	//
	return found
}

// Walk visits every subformula of a given formula.  The quantifier callback
// (when non-nil) decides whether to descend into a given quantifier.  The term
// callback (when non-nil) is applied to every term (including subterms) and the
// atom callback (when non-nil) to every atomic formula.
func Walk(f Formula, quantifier func(*Quantifier) bool, term func(Term), atom func(*Atom)) {
	switch f := f.(type) {
	case Constant:
		return
	case *Atom:
		if atom != nil {
			atom(f)
		}
		//
		walkTerms(f.Args, term)
	case *Equality:
		walkTerms([]Term{f.Lhs, f.Rhs}, term)
	case *Negation:
		Walk(f.Arg, quantifier, term, atom)
	case *Conjunction:
		for _, arg := range f.Args {
			Walk(arg, quantifier, term, atom)
		}
	case *Disjunction:
		for _, arg := range f.Args {
			Walk(arg, quantifier, term, atom)
		}
	case *Implication:
		Walk(f.Lhs, quantifier, term, atom)
		Walk(f.Rhs, quantifier, term, atom)
	case *Equivalence:
		Walk(f.Lhs, quantifier, term, atom)
		Walk(f.Rhs, quantifier, term, atom)
	case *ExclusiveOr:
		Walk(f.Lhs, quantifier, term, atom)
		Walk(f.Rhs, quantifier, term, atom)
	case *Conditional:
		Walk(f.Cond, quantifier, term, atom)
		Walk(f.Then, quantifier, term, atom)
		Walk(f.Else, quantifier, term, atom)
	case *Quantifier:
		if quantifier == nil || quantifier(f) {
			Walk(f.Body, quantifier, term, atom)
		}
	default:
		panic("unknown formula encountered")
	}
}

func walkTerms(terms []Term, fn func(Term)) {
	if fn == nil {
		return
	}
	//
	for _, t := range terms {
		fn(t)
		//
		if app, ok := t.(*Application); ok {
			walkTerms(app.Args, fn)
		}
	}
}
