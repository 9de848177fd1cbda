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

	"github.com/consensys/go-adsl/pkg/fol"
)

// Theorem assembles the vocabulary and axioms generated so far, together with
// a given conjecture (which may be nil), into a theorem.  The conjecture is
// always optimised, whilst axioms are optimised only when configured to be.
// Axioms which optimise to truth are dropped.
func (t *Translator) Theorem(conjecture fol.Formula) (*fol.Theorem, error) {
	axioms := slices.Clone(t.axioms)
	//
	if t.config.Optimize {
		axioms = axioms[:0]
		//
		for _, axiom := range t.axioms {
			if f := fol.Optimize(axiom); !fol.IsTrue(f) {
				axioms = append(axioms, f)
			}
		}
	}
	//
	if conjecture != nil {
		conjecture = fol.Optimize(conjecture)
	}
	//
	theorem := &fol.Theorem{
		Sorts:      slices.Clone(t.vocab.Sorts()),
		Predicates: slices.Clone(t.vocab.Predicates()),
		Functions:  slices.Clone(t.vocab.Functions()),
		Axioms:     axioms,
		Conjecture: conjecture,
	}
	//
	if t.config.CheckSymbols {
		if err := theorem.Undeclared(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnregisteredSymbol, err)
		}
	}
	//
	return theorem, nil
}
