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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// Colours understood by Colour.
const (
	TERM_RED     = uint(1)
	TERM_GREEN   = uint(2)
	TERM_YELLOW  = uint(3)
	TERM_BLUE    = uint(4)
	TERM_MAGENTA = uint(5)
	TERM_CYAN    = uint(6)
)

// Colour returns the ANSI escape setting the foreground colour, optionally in
// bold.
func Colour(col uint, bold bool) string {
	if bold {
		return fmt.Sprintf("\033[1;%dm", 30+col)
	}
	//
	return fmt.Sprintf("\033[%dm", 30+col)
}

// Reset returns the ANSI escape which cancels any colour.
func Reset() string {
	return "\033[0m"
}

// Table accumulates rows of cells for printing in aligned columns.  The first
// row is the header.
type Table struct {
	widths  []uint
	rows    [][]string
	escapes []string
	// Upper bound on the width of any column (or zero for no bound).
	maxWidth uint
}

// NewTable constructs a table with a given header row.
func NewTable(header ...string) *Table {
	p := &Table{widths: make([]uint, len(header)), escapes: make([]string, len(header))}
	p.AddRow(header...)
	//
	return p
}

// AddRow appends a row to this table, which must have one cell per column.
func (p *Table) AddRow(vals ...string) {
	if len(vals) != len(p.widths) {
		panic(fmt.Sprintf("incorrect number of columns (expected %d, was %d)", len(p.widths), len(vals)))
	}
	//
	for i, val := range vals {
		p.widths[i] = max(p.widths[i], uint(len(val)))
	}
	//
	p.rows = append(p.rows, vals)
}

// Height returns the number of rows in this table, including its header.
func (p *Table) Height() uint {
	return uint(len(p.rows))
}

// SetEscape sets the escape used when printing every body cell of a column.
func (p *Table) SetEscape(col uint, escape string) {
	p.escapes[col] = escape
}

// SetMaxWidth puts an upper bound on the width of every column.  Longer cells
// are truncated.
func (p *Table) SetMaxWidth(width uint) {
	p.maxWidth = width
}

// Fprint writes this table to a given writer, using escapes only when
// enabled.
func (p *Table) Fprint(w io.Writer, escapes bool) error {
	var builder strings.Builder
	//
	for i, row := range p.rows {
		for j, cell := range row {
			width := p.width(uint(j))
			//
			if uint(len(cell)) > width {
				cell = cell[:width-2] + ".."
			}
			// Header is bold, body cells take their column's escape
			escape := p.escapes[j]
			if i == 0 {
				escape = "\033[1m"
			}
			//
			if escapes && escape != "" {
				builder.WriteString(escape)
			}
			//
			fmt.Fprintf(&builder, " %-*s", width, cell)
			//
			if escapes && escape != "" {
				builder.WriteString(Reset())
			}
			//
			builder.WriteString(" |")
		}
		//
		builder.WriteString("\n")
	}
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}

func (p *Table) width(col uint) uint {
	if p.maxWidth > 2 {
		return min(p.widths[col], p.maxWidth)
	}
	//
	return p.widths[col]
}
