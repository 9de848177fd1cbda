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
	"reflect"
	"testing"

	"github.com/consensys/go-adsl/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Positive Tests
// ============================================================================

func TestSexp_0(t *testing.T) {
	CheckOk(t, nil, "")
}

func TestSexp_1(t *testing.T) {
	e1 := List{nil}
	CheckOk(t, &e1, "()")
}

func TestSexp_2(t *testing.T) {
	e1 := List{nil}
	e2 := List{[]SExp{&e1}}
	CheckOk(t, &e2, "(())")
}

func TestSexp_3(t *testing.T) {
	e1 := Symbol{"symbol"}
	CheckOk(t, &e1, "symbol")
}

func TestSexp_4(t *testing.T) {
	e1 := Symbol{"0..1"}
	CheckOk(t, &e1, "0..1")
}

func TestSexp_5(t *testing.T) {
	e1 := Symbol{"*"}
	e2 := List{[]SExp{&e1}}
	CheckOk(t, &e2, "(*)")
}

func TestSexp_6(t *testing.T) {
	e1 := Symbol{"symbol"}
	e2 := List{[]SExp{&e1, &e1}}
	CheckOk(t, &e2, "(symbol symbol)")
}

func TestSexp_7(t *testing.T) {
	e1 := Symbol{"hello"}
	e2 := Symbol{"world"}
	e3 := List{[]SExp{&e2}}
	e4 := List{[]SExp{&e1, &e3}}
	CheckOk(t, &e4, "(hello (world))")
}

func TestSexp_8(t *testing.T) {
	e1 := Symbol{"hello"}
	e2 := List{[]SExp{&e1}}
	CheckOk(t, &e2, "; comment\n(hello) ; trailing\n")
}

func TestSexp_9(t *testing.T) {
	terms, srcmap, err := ParseAll(source.NewSourceFile("test", []byte("(class A)\n(class B)")))
	require.Nil(t, err)
	require.Len(t, terms, 2)
	//
	span := srcmap.Get(terms[1])
	assert.Equal(t, 10, span.Start())
	assert.Equal(t, 19, span.End())
	assert.Equal(t, "(class A)", terms[0].String(false))
	assert.Equal(t, "class", terms[1].AsList().Head())
}

// ============================================================================
// Negative Tests
// ============================================================================

// unexpected end of list
func TestSexp_Err1(t *testing.T) {
	CheckErr(t, ")")
}

// unexpected end of list
func TestSexp_Err2(t *testing.T) {
	CheckErr(t, "())")
}

// unexpected end of list
func TestSexp_Err3(t *testing.T) {
	CheckErr(t, "(string))")
}

// unexpected end of file
func TestSexp_Err4(t *testing.T) {
	CheckErr(t, "(another string")
}

// ============================================================================
// Formatting
// ============================================================================

func TestFormat_1(t *testing.T) {
	formatter := NewFormatter(80)
	formatter.Break("and", 1)
	//
	assert.Equal(t, "(and aaaa bbbb)", formatter.Format(parse(t, "(and aaaa bbbb)")))
}

func TestFormat_2(t *testing.T) {
	formatter := NewFormatter(8)
	formatter.Break("and", 1)
	//
	assert.Equal(t, "(and\n  aaaa\n  bbbb)", formatter.Format(parse(t, "(and aaaa bbbb)")))
}

func TestFormat_3(t *testing.T) {
	formatter := NewFormatter(12)
	formatter.Break("forall", 2)
	//
	assert.Equal(t, "(forall (x)\n  body)", formatter.Format(parse(t, "(forall (x) body)")))
}

func TestFormat_4(t *testing.T) {
	formatter := NewFormatter(16)
	formatter.Break("and", 1)
	// Nested lists are broken relative to their own line
	assert.Equal(t, "(and\n  (and\n    aaaaaaaa\n    bbbbbbbb)\n  c)",
		formatter.Format(parse(t, "(and (and aaaaaaaa bbbbbbbb) c)")))
}

func TestFormat_5(t *testing.T) {
	// Symbols which are not readable back as symbols are quoted
	assert.Equal(t, `(p "a b")`, NewListOf("p", NewSymbol("a b")).String(true))
	assert.Equal(t, `(p a b)`, NewListOf("p", NewSymbol("a b")).String(false))
}

// ============================================================================
// Helpers
// ============================================================================

func CheckOk(t *testing.T, sexp1 SExp, input string) {
	sexp2, _, err := Parse(source.NewSourceFile("test", []byte(input)))
	//
	if err != nil {
		t.Error(err.Message())
	} else if !reflect.DeepEqual(sexp1, sexp2) {
		t.Errorf("%v != %v", sexp1, sexp2)
	}
}

func CheckErr(t *testing.T, input string) {
	_, _, err := Parse(source.NewSourceFile("test", []byte(input)))
	//
	if err == nil {
		t.Errorf("input should not have parsed!")
	}
}

func parse(t *testing.T, input string) SExp {
	sexp, _, err := Parse(source.NewSourceFile("test", []byte(input)))
	require.Nil(t, err)
	//
	return sexp
}
