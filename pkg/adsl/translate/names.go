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

	"github.com/consensys/go-adsl/pkg/util/collection/stack"
)

// Registry ensures every symbol of a translation unit has a unique name.
// Symbols (sorts, predicates and functions) are registered permanently,
// whilst the names of bound variables are reserved only for the lexical
// extent of the quantifier introducing them.  Both share the same pool of
// names, so that a bound variable never shadows a symbol and vice versa.
type Registry struct {
	// Names currently in use (either registered or reserved).
	used map[string]bool
	// Reserved names, in order of reservation.
	temps *stack.Stack[string]
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{make(map[string]bool), stack.NewStack[string]()}
}

// Register returns a name derived from a given base name which has not been
// used before, and records it as used.  The base name itself is returned if
// it is available, otherwise a numeric suffix is appended.
func (p *Registry) Register(base string) string {
	name := p.fresh(base)
	p.used[name] = true
	//
	return name
}

// Reserve returns unique names derived from the given base names, keeping
// them in use until they are released.  Every call must be paired with a
// corresponding call to Release.
func (p *Registry) Reserve(bases ...string) []string {
	names := make([]string, len(bases))
	//
	for i, base := range bases {
		names[i] = p.fresh(base)
		p.used[names[i]] = true
		p.temps.Push(names[i])
	}
	//
	return names
}

// Release makes the n most recently reserved names available again.
func (p *Registry) Release(n uint) {
	if n > p.temps.Len() {
		panic(fmt.Sprintf("cannot release %d names (only %d reserved)", n, p.temps.Len()))
	}
	//
	for i := uint(0); i < n; i++ {
		delete(p.used, p.temps.Pop())
	}
}

// Reserved returns the number of names currently reserved.
func (p *Registry) Reserved() uint {
	return p.temps.Len()
}

// IsUsed checks whether a given name is currently in use.
func (p *Registry) IsUsed(name string) bool {
	return p.used[name]
}

func (p *Registry) fresh(base string) string {
	if !p.used[base] {
		return base
	}
	//
	for i := 1; ; i++ {
		if name := fmt.Sprintf("%s_%d", base, i); !p.used[name] {
			return name
		}
	}
}
