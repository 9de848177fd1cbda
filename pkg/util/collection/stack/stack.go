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
package stack

import "fmt"

// Stack is a LIFO stack whose items can be inspected (bottom first) and which
// can be unwound to an earlier height in one step.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Len returns the height of this stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Push an item onto this stack.
func (p *Stack[T]) Push(item T) {
	p.items = append(p.items, item)
}

// Pop the topmost item off this stack.
func (p *Stack[T]) Pop() T {
	if len(p.items) == 0 {
		panic("pop from empty stack")
	}
	//
	top := p.items[len(p.items)-1]
	p.Truncate(p.Len() - 1)
	//
	return top
}

// Truncate pops items until the stack has a given height.
func (p *Stack[T]) Truncate(height uint) {
	if height > p.Len() {
		panic(fmt.Sprintf("cannot truncate stack of height %d to %d", p.Len(), height))
	}
	// Release references held by popped items
	clear(p.items[height:])
	p.items = p.items[:height]
}

// Items returns the items of this stack, bottom first.  The returned slice must
// not be modified.
func (p *Stack[T]) Items() []T {
	return p.items
}
