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

// Stmt represents a statement of an action body.  Statements are the only
// constructs which change the state.
type Stmt interface {
	isStmt()
}

// Flatness determines how the iterations of a loop relate to each other.
type Flatness uint8

const (
	// Coex indicates loop iterations whose effects commute, and hence can be
	// thought of as executing simultaneously.
	Coex Flatness = iota
	// Seq indicates loop iterations whose effects may depend upon each other,
	// and hence which must execute in some (unspecified) order.
	Seq
)

func (f Flatness) String() string {
	if f == Seq {
		return "seq"
	}
	//
	return "coex"
}

// Block executes a sequence of statements in order.
type Block struct {
	Stmts []Stmt
}

// NewBlock constructs a block from a given sequence of statements.
func NewBlock(stmts ...Stmt) *Block {
	return &Block{stmts}
}

// Assign binds a variable to the value of an expression in the current state.
// Subsequent changes to the state do not affect the variable.
type Assign struct {
	Var  *Var
	Expr Expr
}

// CreateObj creates a fresh instance of a class.
type CreateObj struct {
	Class ClassId
}

// DeleteObj deletes every object in an object set, along with every tuple
// linking them.
type DeleteObj struct {
	Objset Expr
}

// CreateTup links every object on the left-hand side to every object on the
// right-hand side via a given relation.
type CreateTup struct {
	Lhs      Expr
	Relation RelationId
	Rhs      Expr
}

// DeleteTup unlinks every object on the left-hand side from every object on
// the right-hand side for a given relation.
type DeleteTup struct {
	Lhs      Expr
	Relation RelationId
	Rhs      Expr
}

// SetTup replaces every tuple of a relation leaving the left-hand side with
// tuples linking it to the right-hand side.
type SetTup struct {
	Lhs      Expr
	Relation RelationId
	Rhs      Expr
}

// If executes one of two blocks depending upon a condition.  The else block
// may be nil.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
}

// Either nondeterministically executes exactly one of its blocks.
type Either struct {
	Blocks []*Block
}

// ForEach executes its body once for every object of an object set, with the
// loop variable bound to that object.
type ForEach struct {
	Var      *Var
	Objset   Expr
	Body     *Block
	Flatness Flatness
}

// Assert assumes a boolean property holds at this point of the action.
type Assert struct {
	Formula Expr
}

// Raise aborts the action, meaning no execution reaching this point is
// considered further.
type Raise struct{}

func (s *Block) isStmt()     {}
func (s *Assign) isStmt()    {}
func (s *CreateObj) isStmt() {}
func (s *DeleteObj) isStmt() {}
func (s *CreateTup) isStmt() {}
func (s *DeleteTup) isStmt() {}
func (s *SetTup) isStmt()    {}
func (s *If) isStmt()        {}
func (s *Either) isStmt()    {}
func (s *ForEach) isStmt()   {}
func (s *Assert) isStmt()    {}
func (s *Raise) isStmt()     {}

// Arg is an argument of an action, identifying the objects of a given class
// the action is applied to.
type Arg struct {
	Var   *Var
	Class ClassId
	Card  Cardinality
}

// Action is a named, parameterised state transformation.
type Action struct {
	Name string
	Args []Arg
	Body *Block
}

// NewAction constructs an action with the given arguments and body.
func NewAction(name string, args []Arg, body *Block) *Action {
	return &Action{name, args, body}
}
