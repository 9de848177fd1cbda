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
package util

// Option holds a value which may be absent, such as the inverse of a relation
// or the authenticable class of a model.
type Option[T any] struct {
	value *T
}

// Some constructs an option holding a given value.
func Some[T any](val T) Option[T] {
	return Option[T]{&val}
}

// None constructs an empty option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// HasValue checks whether a value is present.
func (o Option[T]) HasValue() bool {
	return o.value != nil
}

// IsEmpty checks whether no value is present.
func (o Option[T]) IsEmpty() bool {
	return o.value == nil
}

// Unwrap returns the value held, and panics if there is none.
func (o Option[T]) Unwrap() T {
	if o.value == nil {
		panic("unwrapped empty option")
	}
	//
	return *o.value
}
