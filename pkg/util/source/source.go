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
package source

import (
	"fmt"
	"slices"
)

// Span identifies a contiguous range of runes in a source file, from start
// (inclusive) to end (exclusive).
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span, which must not end before it starts.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span %d..%d", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the index of the first rune of this span.
func (p Span) Start() int {
	return p.start
}

// End returns the index one past the last rune of this span.
func (p Span) End() int {
	return p.end
}

// Length returns the number of runes covered by this span.
func (p Span) Length() int {
	return p.end - p.start
}

// ============================================================================
// Files
// ============================================================================

// File is a named source text, such as a model read from disk.
type File struct {
	filename string
	contents []rune
}

// NewSourceFile constructs a source file from its raw bytes.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the name of this file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the text of this file.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs an error reported over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// LineOf returns the line containing the start of a given span.  Spans starting
// beyond the end of the file belong to the last line.
func (s *File) LineOf(span Span) Line {
	var (
		at     = min(span.start, len(s.contents))
		start  = 0
		number = 1
	)
	//
	for i, r := range s.contents[:at] {
		if r == '\n' {
			start, number = i+1, number+1
		}
	}
	//
	end := slices.Index(s.contents[start:], '\n')
	if end < 0 {
		end = len(s.contents)
	} else {
		end += start
	}
	//
	return Line{s.contents[start:end], start, number}
}

// Line is a single line of a source file.
type Line struct {
	text   []rune
	start  int
	number int
}

// String returns the text of this line, without its terminator.
func (p Line) String() string {
	return string(p.text)
}

// Number returns the line number of this line (counting from 1).
func (p Line) Number() int {
	return p.number
}

// Start returns the index of the first rune of this line within its file.
func (p Line) Start() int {
	return p.start
}

// Length returns the number of runes in this line.
func (p Line) Length() int {
	return len(p.text)
}

// ============================================================================
// Errors
// ============================================================================

// SyntaxError is an error reported against a span of a source file.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the file this error was reported in.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span this error was reported over.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message of this error, without its location.
func (p *SyntaxError) Message() string {
	return p.msg
}

// FirstEnclosingLine returns the line on which this error starts.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.LineOf(p.span)
}

func (p *SyntaxError) Error() string {
	if p.srcfile == nil {
		return p.msg
	}
	//
	line := p.FirstEnclosingLine()
	//
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line.Number(), p.span.start-line.Start()+1, p.msg)
}

// ============================================================================
// Source Maps
// ============================================================================

// Map records the span from which each node of a tree was parsed, so that
// errors about a node can be reported against the text it came from.
type Map[T comparable] struct {
	spans   map[T]Span
	srcfile *File
}

// NewSourceMap constructs an empty source map over a given file.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{make(map[T]Span), srcfile}
}

// Put records the span of a node, which must not already have one.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.spans[item]; ok {
		panic(fmt.Sprintf("duplicate source map entry %v", any(item)))
	}
	//
	p.spans[item] = span
}

// Get returns the span of a node, which must have one.
func (p *Map[T]) Get(item T) Span {
	span, ok := p.spans[item]
	if !ok {
		panic(fmt.Sprintf("missing source map entry %v", any(item)))
	}
	//
	return span
}

// SyntaxError constructs an error reported over the span of a given node.
// Nodes without a span are reported at the start of the file.
func (p *Map[T]) SyntaxError(item T, msg string) *SyntaxError {
	return p.srcfile.SyntaxError(p.spans[item], msg)
}
