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
	"github.com/consensys/go-adsl/pkg/fol"
)

// Vocabulary allocates the sorts, predicates and functions of a translation
// unit, recording them (in order of allocation) for inclusion in the final
// theorem.  Every symbol is given a unique name via the underlying registry.
type Vocabulary struct {
	names      *Registry
	sorts      []*fol.Sort
	predicates []*fol.Predicate
	functions  []*fol.Function
}

// NewVocabulary constructs an empty vocabulary drawing names from a given
// registry.
func NewVocabulary(names *Registry) *Vocabulary {
	return &Vocabulary{names: names}
}

// NewSort allocates a fresh sort.
func (p *Vocabulary) NewSort(name string) *fol.Sort {
	sort := fol.NewSort(p.names.Register(name))
	p.sorts = append(p.sorts, sort)
	//
	return sort
}

// NewPredicate allocates a fresh predicate over the given sorts.
func (p *Vocabulary) NewPredicate(name string, sorts ...*fol.Sort) *fol.Predicate {
	pred := fol.NewPredicate(p.names.Register(name), sorts...)
	p.predicates = append(p.predicates, pred)
	//
	return pred
}

// NewFunction allocates a fresh function from the given sorts to a result
// sort.
func (p *Vocabulary) NewFunction(result *fol.Sort, name string, sorts ...*fol.Sort) *fol.Function {
	fn := fol.NewFunction(result, p.names.Register(name), sorts...)
	p.functions = append(p.functions, fn)
	//
	return fn
}

// Sorts returns all sorts allocated so far.
func (p *Vocabulary) Sorts() []*fol.Sort {
	return p.sorts
}

// Predicates returns all predicates allocated so far.
func (p *Vocabulary) Predicates() []*fol.Predicate {
	return p.predicates
}

// Functions returns all functions allocated so far.
func (p *Vocabulary) Functions() []*fol.Function {
	return p.functions
}
