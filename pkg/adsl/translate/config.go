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

// Config determines the behaviour of a translator.
type Config struct {
	// Optimize the axioms of the generated theorem, not just its conjecture.
	Optimize bool
	// Check every symbol referenced by the generated theorem is declared.
	CheckSymbols bool
	// Translate every loop as though its iterations commute, regardless of how
	// it is marked.
	ForceCoex bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{Optimize: true, CheckSymbols: true}
}
