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
package ast

import (
	"fmt"
	"math"
	"slices"
)

// Unbounded is used as the maximum of a cardinality which has no upper bound.
const Unbounded = math.MaxUint

// Cardinality describes the bounds on the number of objects an object set
// expression can denote.  For example, "0+" is the cardinality {0,Unbounded},
// whilst "1" is {1,1}.
type Cardinality struct {
	Min uint
	Max uint
}

// Any is the cardinality of an object set about which nothing is known.
var Any = Cardinality{0, Unbounded}

// Zero is the cardinality of an object set which is provably empty.
var Zero = Cardinality{0, 0}

// One is the cardinality of an object set which is a singleton.
var One = Cardinality{1, 1}

// AtMostOne is the cardinality of an object set which is either empty or a
// singleton.
var AtMostOne = Cardinality{0, 1}

// AtLeastOne is the cardinality of an object set which is non-empty.
var AtLeastOne = Cardinality{1, Unbounded}

// NewCardinality constructs a cardinality with given bounds.
func NewCardinality(min uint, max uint) Cardinality {
	if min > max {
		panic(fmt.Sprintf("invalid cardinality %d..%d", min, max))
	}
	//
	return Cardinality{min, max}
}

// IsEmpty determines whether this cardinality proves emptiness.
func (c Cardinality) IsEmpty() bool {
	return c.Max == 0
}

// IsUnbounded determines whether this cardinality has no upper bound.
func (c Cardinality) IsUnbounded() bool {
	return c.Max == Unbounded
}

// IsSingleton determines whether this cardinality denotes exactly one object.
func (c Cardinality) IsSingleton() bool {
	return c.Min == 1 && c.Max == 1
}

// Add returns the cardinality of the union of two (possibly overlapping) sets.
func (c Cardinality) Add(o Cardinality) Cardinality {
	return Cardinality{max(c.Min, o.Min), saturatingAdd(c.Max, o.Max)}
}

// Mul returns the cardinality obtained by following a relation of cardinality
// o from each object of a set of cardinality c.
func (c Cardinality) Mul(o Cardinality) Cardinality {
	var lower uint
	//
	if c.IsEmpty() || o.IsEmpty() {
		return Zero
	} else if c.Min > 0 && o.Min > 0 {
		lower = 1
	}
	//
	return Cardinality{lower, saturatingMul(c.Max, o.Max)}
}

func (c Cardinality) String() string {
	switch {
	case c.Max == Unbounded:
		return fmt.Sprintf("%d+", c.Min)
	case c.Min == c.Max:
		return fmt.Sprintf("%d", c.Min)
	default:
		return fmt.Sprintf("%d..%d", c.Min, c.Max)
	}
}

func saturatingAdd(a uint, b uint) uint {
	if a == Unbounded || b == Unbounded || a > Unbounded-b {
		return Unbounded
	}
	//
	return a + b
}

func saturatingMul(a uint, b uint) uint {
	if a == 0 || b == 0 {
		return 0
	} else if a == Unbounded || b == Unbounded || a > Unbounded/b {
		return Unbounded
	}
	//
	return a * b
}

// Type is the statically resolved type signature of an expression: either the
// basic boolean type, or an object set over one or more classes with a given
// cardinality.
type Type struct {
	// Indicates a boolean (rather than object set) type.
	Bool bool
	// Classes whose instances may be members of the object set.
	Classes []ClassId
	// Bounds on the size of the object set.
	Card Cardinality
}

// BoolType is the type of boolean expressions.
var BoolType = Type{Bool: true}

// ObjsetType constructs an object set type over the given classes.
func ObjsetType(card Cardinality, classes ...ClassId) Type {
	return Type{false, classes, card}
}

// IsEmpty determines whether this type proves the object set is empty.  An
// object set type without any classes is necessarily empty.
func (t Type) IsEmpty() bool {
	return !t.Bool && (t.Card.IsEmpty() || len(t.Classes) == 0)
}

// WithCard returns this type with a different cardinality.
func (t Type) WithCard(card Cardinality) Type {
	return Type{t.Bool, t.Classes, card}
}

// Join returns the smallest type which includes both this type and another.
// Booleans only join with booleans.
func (t Type) Join(o Type) Type {
	if t.Bool || o.Bool {
		return Type{Bool: t.Bool && o.Bool}
	}
	//
	classes := slices.Clone(t.Classes)
	//
	for _, c := range o.Classes {
		if !slices.Contains(classes, c) {
			classes = append(classes, c)
		}
	}
	//
	card := Cardinality{min(t.Card.Min, o.Card.Min), max(t.Card.Max, o.Card.Max)}
	//
	return Type{false, classes, card}
}
