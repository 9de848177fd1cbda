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
	"errors"
	"fmt"
)

// ErrUnregisteredSymbol indicates an expression referred to a symbol (e.g. a
// variable, or the object created by some statement) for which nothing was
// allocated.
var ErrUnregisteredSymbol = errors.New("unregistered symbol")

// ErrChoiceInDeclaration indicates an invariant or permission rule makes a
// nondeterministic choice.  Only actions can make choices.
var ErrChoiceInDeclaration = errors.New("choice outside of action")

// ErrProblemConfiguration indicates a verification problem could not be
// generated for the given model or action.
var ErrProblemConfiguration = errors.New("invalid problem configuration")

// ErrAlreadyTranslated indicates an attempt to translate more than one action
// with the same translator.
var ErrAlreadyTranslated = errors.New("action already translated")

// ErrNotTranslated indicates an attempt to generate problems before any action
// was translated.
var ErrNotTranslated = errors.New("no action translated")

// ProblemError identifies the verification problem which could not be
// generated.
type ProblemError struct {
	Problem string
	Err     error
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("problem %s: %v", e.Problem, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProblemError) Unwrap() error {
	return e.Err
}

// failure carries a fatal translation error up to the nearest entry point,
// unwinding the translator as it goes.
type failure struct {
	err error
}

func (t *Translator) fail(cause error, format string, args ...any) {
	panic(failure{fmt.Errorf("%w: %s", cause, fmt.Sprintf(format, args...))})
}

// recoverFailure converts a failure raised within a translation step into an
// error.  Any other panic is propagated.
func recoverFailure(err *error) {
	if r := recover(); r != nil {
		f, ok := r.(failure)
		if !ok {
			panic(r)
		}
		//
		*err = f.err
	}
}
