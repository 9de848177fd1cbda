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
package sexp

import (
	"strconv"
	"strings"
	"unicode"
)

// SExp is either a List or a Symbol.
type SExp interface {
	// AsList returns this S-Expression if it is a list, or nil otherwise.
	AsList() *List
	// AsSymbol returns this S-Expression if it is a symbol, or nil otherwise.
	AsSymbol() *Symbol
	// String renders this S-Expression on a single line.  When quoting,
	// symbols which could not be read back as a single symbol are quoted.
	String(quote bool) string
	//
	write(builder *strings.Builder, quote bool)
}

// List is a parenthesised sequence of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NewList constructs a list of the given elements.
func NewList(elements []SExp) *List {
	return &List{elements}
}

// NewListOf constructs a list headed by a symbol of a given name.
func NewListOf(head string, elements ...SExp) *List {
	return &List{append([]SExp{NewSymbol(head)}, elements...)}
}

// AsList returns this list.
func (l *List) AsList() *List { return l }

// AsSymbol returns nil.
func (l *List) AsSymbol() *Symbol { return nil }

// Len returns the number of elements of this list.
func (l *List) Len() int { return len(l.Elements) }

// Get returns the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Head returns the name of the symbol this list starts with, or "" when it
// does not start with a symbol.
func (l *List) Head() string {
	if len(l.Elements) == 0 {
		return ""
	} else if s := l.Elements[0].AsSymbol(); s != nil {
		return s.Value
	}
	//
	return ""
}

func (l *List) String(quote bool) string {
	var builder strings.Builder
	l.write(&builder, quote)
	//
	return builder.String()
}

func (l *List) write(builder *strings.Builder, quote bool) {
	builder.WriteByte('(')
	//
	for i, e := range l.Elements {
		if i != 0 {
			builder.WriteByte(' ')
		}
		//
		e.write(builder, quote)
	}
	//
	builder.WriteByte(')')
}

// Symbol is an atom of an S-Expression.
type Symbol struct {
	Value string
}

// NewSymbol constructs a symbol with a given value.
func NewSymbol(value string) *Symbol {
	return &Symbol{value}
}

// AsList returns nil.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol returns this symbol.
func (s *Symbol) AsSymbol() *Symbol { return s }

func (s *Symbol) String(quote bool) string {
	var builder strings.Builder
	s.write(&builder, quote)
	//
	return builder.String()
}

func (s *Symbol) write(builder *strings.Builder, quote bool) {
	if quote && (s.Value == "" || strings.IndexFunc(s.Value, isDelimiter) >= 0) {
		builder.WriteString(strconv.Quote(s.Value))
	} else {
		builder.WriteString(s.Value)
	}
}

// isDelimiter identifies those runes which end a symbol.
func isDelimiter(r rune) bool {
	return r == '(' || r == ')' || r == ';' || unicode.IsSpace(r)
}
