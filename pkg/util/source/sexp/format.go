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
	"strings"
)

// Formatter lays out S-Expressions across multiple lines, aiming to keep every
// line within a given width.  Lists which fit on the current line are written
// as they are.  Lists which do not are broken according to the rule registered
// for their head symbol (if any), with each broken element on its own line
// indented below the list.
type Formatter struct {
	width uint
	// Number of elements kept on the first line, by head symbol.
	breaks map[string]int
}

// NewFormatter constructs a formatter for a given width, initially without
// any rules.
func NewFormatter(width uint) *Formatter {
	return &Formatter{width, make(map[string]int)}
}

// Break registers a rule for lists with a given head, such that only the
// first n elements (including the head) are kept on the first line.  For
// example, n = 1 gives:
//
//	(and
//	  lhs
//	  rhs)
//
// whilst n = 2 suits binders, whose variables then stay beside the head:
//
//	(forall ((x X))
//	  body)
func (p *Formatter) Break(head string, n int) {
	p.breaks[head] = max(1, n)
}

// Format lays out a given S-Expression.  The result has no trailing newline.
func (p *Formatter) Format(sexp SExp) string {
	var out layout
	//
	p.format(sexp, 0, &out)
	//
	return out.builder.String()
}

func (p *Formatter) format(sexp SExp, indent uint, out *layout) {
	var (
		flat = sexp.String(false)
		list = sexp.AsList()
	)
	//
	if list == nil || out.column+uint(len(flat)) <= p.width {
		out.write(flat)
		return
	}
	//
	keep, ok := p.breaks[list.Head()]
	//
	if !ok {
		keep = list.Len()
	}
	//
	out.write("(")
	//
	for i, element := range list.Elements {
		if i >= keep {
			out.newline(indent + 2)
			p.format(element, indent+2, out)
			//
			continue
		} else if i != 0 {
			out.write(" ")
		}
		//
		p.format(element, indent, out)
	}
	//
	out.write(")")
}

// layout tracks the column reached whilst formatting.
type layout struct {
	builder strings.Builder
	column  uint
}

func (p *layout) write(text string) {
	p.builder.WriteString(text)
	p.column += uint(len(text))
}

func (p *layout) newline(indent uint) {
	p.builder.WriteByte('\n')
	p.builder.WriteString(strings.Repeat(" ", int(indent)))
	p.column = indent
}
