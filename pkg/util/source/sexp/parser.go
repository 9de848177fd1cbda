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
	"unicode"

	"github.com/consensys/go-adsl/pkg/util/source"
)

// Parse reads exactly one S-Expression from a source file (or nil if the file
// holds none), along with a map from every node read to its span.  Comments
// start with ';' and run to the end of the line.
func Parse(srcfile *source.File) (SExp, *source.Map[SExp], *source.SyntaxError) {
	p := newParser(srcfile)
	//
	term, err := p.term()
	if err != nil {
		return nil, nil, err
	}
	//
	if p.skip(); !p.eof() {
		return nil, nil, p.error("unexpected remainder")
	}
	//
	return term, p.srcmap, nil
}

// ParseAll reads every S-Expression from a source file, in order, along with a
// map from every node read to its span.  On error, the terms read so far are
// returned.
func ParseAll(srcfile *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	var (
		p     = newParser(srcfile)
		terms []SExp
	)
	//
	for {
		term, err := p.term()
		//
		if err != nil || term == nil {
			return terms, p.srcmap, err
		}
		//
		terms = append(terms, term)
	}
}

type parser struct {
	srcfile *source.File
	text    []rune
	pos     int
	srcmap  *source.Map[SExp]
}

func newParser(srcfile *source.File) *parser {
	return &parser{srcfile, srcfile.Contents(), 0, source.NewSourceMap[SExp](srcfile)}
}

// term reads the next S-Expression, returning nil at the end of the file.
func (p *parser) term() (SExp, *source.SyntaxError) {
	var term SExp
	//
	if p.skip(); p.eof() {
		return nil, nil
	}
	//
	start := p.pos
	//
	switch p.text[p.pos] {
	case ')':
		return nil, p.error("unexpected end-of-list")
	case '(':
		p.pos++
		//
		elements, err := p.elements()
		if err != nil {
			return nil, err
		}
		//
		term = &List{elements}
	default:
		term = &Symbol{p.symbol()}
	}
	//
	p.srcmap.Put(term, source.NewSpan(start, p.pos))
	//
	return term, nil
}

// elements reads the remainder of a list, including its closing bracket.
func (p *parser) elements() ([]SExp, *source.SyntaxError) {
	var elements []SExp
	//
	for {
		if p.skip(); p.eof() {
			return nil, p.error("unexpected end-of-file")
		} else if p.text[p.pos] == ')' {
			p.pos++
			return elements, nil
		}
		//
		element, err := p.term()
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, element)
	}
}

func (p *parser) symbol() string {
	start := p.pos
	//
	for !p.eof() && !isDelimiter(p.text[p.pos]) {
		p.pos++
	}
	//
	return string(p.text[start:p.pos])
}

// skip whitespace and comments.
func (p *parser) skip() {
	for !p.eof() {
		switch r := p.text[p.pos]; {
		case r == ';':
			for !p.eof() && p.text[p.pos] != '\n' {
				p.pos++
			}
		case unicode.IsSpace(r):
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) error(msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(source.NewSpan(p.pos, p.pos), msg)
}
