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
package reader

import (
	"fmt"
	"os"
	"testing"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Determines the (relative) location of the test directory.
const testDir = "../../../testdata"

// ===================================================================
// Declarations
// ===================================================================

func Test_Reader_01(t *testing.T) {
	model := checkValid(t, `(class Person) (class Student (extends Person))`)
	//
	person, ok := model.ClassByName("Person")
	require.True(t, ok)
	student, ok := model.ClassByName("Student")
	require.True(t, ok)
	assert.True(t, model.IsSubclassOf(student, person))
	assert.False(t, model.IsSubclassOf(person, student))
}

func Test_Reader_02(t *testing.T) {
	model := checkValid(t, `
		(class Person)
		(relation Person friends 0+ Person)
		(relation Person bestFriend 0..1 Person)
		(relation Person parents 2 Person)
		(relation Person children 1+ Person (inverse-of parents))`)
	//
	person, _ := model.ClassByName("Person")
	//
	friends, ok := model.RelationByName(person, "friends")
	require.True(t, ok)
	assert.Equal(t, ast.Any, model.Relation(friends).Card)
	//
	best, _ := model.RelationByName(person, "bestFriend")
	assert.Equal(t, ast.AtMostOne, model.Relation(best).Card)
	//
	parents, _ := model.RelationByName(person, "parents")
	assert.Equal(t, ast.NewCardinality(2, 2), model.Relation(parents).Card)
	//
	children, _ := model.RelationByName(person, "children")
	base, inverted := model.BaseRelation(children)
	assert.Equal(t, parents, base)
	assert.True(t, inverted)
	assert.Equal(t, ast.AtLeastOne, model.Relation(children).Card)
}

func Test_Reader_03(t *testing.T) {
	model := checkValid(t, `
		(class User)
		(class Post)
		(authenticable User)
		(usergroup admin)
		(permit (admin) (edit) (allof Post))
		(permit () (read) (allof Post))`)
	//
	user, _ := model.ClassByName("User")
	assert.Equal(t, user, model.Authenticable().Unwrap())
	//
	rules := model.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, []ast.Op{ast.Update, ast.Associate, ast.Deassociate}, rules[0].Ops)
	assert.Len(t, rules[0].Usergroups, 1)
	assert.Empty(t, rules[1].Usergroups)
}

func Test_Reader_04(t *testing.T) {
	model := checkValid(t, `
		(class Person)
		(invariant someone (not (isempty (allof Person))))`)
	//
	invs := model.Invariants()
	require.Len(t, invs, 1)
	assert.Equal(t, "someone", invs[0].Name)
	assert.IsType(t, &ast.Not{}, invs[0].Formula)
}

// ===================================================================
// Statements
// ===================================================================

func Test_Reader_05(t *testing.T) {
	action := checkAction(t, `(class Person) (action a () (create p Person))`, "a")
	//
	require.Len(t, action.Body.Stmts, 2)
	create, ok := action.Body.Stmts[0].(*ast.CreateObj)
	require.True(t, ok)
	assign, ok := action.Body.Stmts[1].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, create, assign.Expr.(*ast.CreatedObj).Stmt)
	assert.Equal(t, ast.One, assign.Var.Type().Card)
}

func Test_Reader_06(t *testing.T) {
	action := checkAction(t, `
		(class Person)
		(relation Person friends 0+ Person)
		(action a ((p Person) (q Person))
		  (add p friends q)
		  (remove p friends q)
		  (set p friends q))`, "a")
	//
	require.Len(t, action.Args, 2)
	require.Len(t, action.Body.Stmts, 3)
	assert.IsType(t, &ast.CreateTup{}, action.Body.Stmts[0])
	assert.IsType(t, &ast.DeleteTup{}, action.Body.Stmts[1])
	assert.IsType(t, &ast.SetTup{}, action.Body.Stmts[2])
}

func Test_Reader_07(t *testing.T) {
	action := checkAction(t, `
		(class Person)
		(action a ((ps Person 0+))
		  (foreach p ps (delete p))
		  (foreach-seq p ps (delete p)))`, "a")
	//
	coex := action.Body.Stmts[0].(*ast.ForEach)
	seq := action.Body.Stmts[1].(*ast.ForEach)
	assert.Equal(t, ast.Coex, coex.Flatness)
	assert.Equal(t, ast.Seq, seq.Flatness)
	// Loop variables are distinct
	assert.NotSame(t, coex.Var, seq.Var)
	assert.Equal(t, ast.One, coex.Var.Type().Card)
	assert.Equal(t, ast.Any, action.Args[0].Card)
}

func Test_Reader_08(t *testing.T) {
	action := checkAction(t, `
		(class Person)
		(class Student (extends Person))
		(action a ()
		  (let x (oneof (allof Student)))
		  (let x (allof Person))
		  (delete x))`, "a")
	// Reassignment reuses (and widens) the variable
	first := action.Body.Stmts[0].(*ast.Assign)
	second := action.Body.Stmts[1].(*ast.Assign)
	assert.Same(t, first.Var, second.Var)
	assert.Len(t, first.Var.Type().Classes, 2)
	assert.Equal(t, ast.Any, first.Var.Type().Card)
}

func Test_Reader_09(t *testing.T) {
	action := checkAction(t, `
		(class Person)
		(action a ((p Person))
		  (if * (delete p) (raise))
		  (either (delete p) (block) (assert true)))`, "a")
	//
	stmt := action.Body.Stmts[0].(*ast.If)
	assert.IsType(t, &ast.Star{}, stmt.Cond)
	assert.NotNil(t, stmt.Else)
	assert.Len(t, action.Body.Stmts[1].(*ast.Either).Blocks, 3)
}

func Test_Reader_10(t *testing.T) {
	action := checkAction(t, `
		(class User)
		(authenticable User)
		(usergroup admin)
		(action a ()
		  (assert (inusergroup admin))
		  (assert (forall ((u (allofusergroup admin))) (inusergroup admin u)))
		  (assert (permitted (read) currentuser)))`, "a")
	//
	first := action.Body.Stmts[0].(*ast.Assert)
	assert.IsType(t, &ast.CurrentUser{}, first.Formula.(*ast.InUsergroup).User)
	assert.IsType(t, &ast.ForAll{}, action.Body.Stmts[1].(*ast.Assert).Formula)
	assert.Equal(t, []ast.Op{ast.Read}, action.Body.Stmts[2].(*ast.Assert).Formula.(*ast.Permitted).Ops)
}

// ===================================================================
// Invalid
// ===================================================================

func Test_Reader_Invalid_01(t *testing.T) {
	checkInvalid(t, `(class Person) (class Person)`, "duplicate class declaration")
}

func Test_Reader_Invalid_02(t *testing.T) {
	checkInvalid(t, `(class Person) (relation Person friends 0+ Persons)`, "unknown class")
}

func Test_Reader_Invalid_03(t *testing.T) {
	checkInvalid(t, `(class Person) (relation Person friends 2..1 Person)`, "invalid cardinality 2..1")
}

func Test_Reader_Invalid_04(t *testing.T) {
	checkInvalid(t, `(class Person) (action a () (delete p))`, "unknown variable")
}

func Test_Reader_Invalid_05(t *testing.T) {
	checkInvalid(t, `(class Person) (action a () (assert (allof Person)))`, "expected boolean expression")
}

func Test_Reader_Invalid_06(t *testing.T) {
	checkInvalid(t, `(class Person) (action a () (delete true))`, "expected object set expression")
}

func Test_Reader_Invalid_07(t *testing.T) {
	checkInvalid(t, `(class A) (class B) (action a () (delete (union (allof A) (allof B))))`,
		"union of unrelated classes")
}

func Test_Reader_Invalid_08(t *testing.T) {
	checkInvalid(t, `(class Person) (action a () (assert (inusergroup admin)))`, "unknown usergroup")
}

func Test_Reader_Invalid_09(t *testing.T) {
	checkInvalid(t, `(class Person) (usergroup admin) (action a () (assert (inusergroup admin)))`,
		"no authenticable class")
}

func Test_Reader_Invalid_10(t *testing.T) {
	checkInvalid(t, `(class Person) (action a () (foreach p (allof Person)) (delete p))`, "unknown variable")
}

func Test_Reader_Invalid_11(t *testing.T) {
	checkInvalid(t, `(class Person) (relation Person friends 0+ Person) (action a () (delete (deref (allof Person) enemies)))`,
		"unknown relation")
}

func Test_Reader_Invalid_12(t *testing.T) {
	// Every malformed declaration is reported
	_, errs := ReadString(`(class) (relation) (frobnicate)`)
	assert.Len(t, errs, 3)
}

func Test_Reader_Invalid_13(t *testing.T) {
	checkInvalid(t, `(class Person) (invariant one (not (isempty (oneof (allof Person)))))`,
		"choice not permitted in invariant or permission rule")
}

func Test_Reader_Invalid_14(t *testing.T) {
	checkInvalid(t, `(class User) (authenticable User) (permit () (read) (subset (allof User)))`,
		"choice not permitted in invariant or permission rule")
}

// ===================================================================
// Test Files
// ===================================================================

func Test_Reader_File_01(t *testing.T) {
	model := checkValidFile(t, "valid/social")
	assert.Len(t, model.Actions(), 7)
}

func Test_Reader_File_02(t *testing.T) {
	model := checkValidFile(t, "valid/blog")
	assert.Len(t, model.Usergroups(), 2)
	assert.Len(t, model.Rules(), 4)
}

func Test_Reader_File_03(t *testing.T) {
	checkInvalidFile(t, "invalid/unknown_class", "unknown class")
}

func Test_Reader_File_04(t *testing.T) {
	checkInvalidFile(t, "invalid/choice_in_quantifier", "choice not permitted under quantifier")
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkValid(t *testing.T, text string) *ast.Model {
	model, errs := ReadString(text)
	//
	for _, err := range errs {
		t.Errorf("unexpected error: %s", err.Message())
	}
	//
	require.NotNil(t, model)
	//
	return model
}

func checkAction(t *testing.T, text string, name string) *ast.Action {
	model := checkValid(t, text)
	action, ok := model.ActionByName(name)
	require.True(t, ok)
	//
	return action
}

func checkInvalid(t *testing.T, text string, msg string) {
	model, errs := ReadString(text)
	//
	assert.Nil(t, model)
	require.NotEmpty(t, errs)
	assert.Equal(t, msg, errs[0].Message())
}

func checkValidFile(t *testing.T, test string) *ast.Model {
	model, errs := Read(readTestFile(t, test))
	//
	for _, err := range errs {
		t.Errorf("unexpected error: %s", err.Message())
	}
	//
	require.NotNil(t, model)
	//
	return model
}

func checkInvalidFile(t *testing.T, test string, msg string) {
	_, errs := Read(readTestFile(t, test))
	//
	require.NotEmpty(t, errs)
	assert.Equal(t, msg, errs[0].Message())
}

func readTestFile(t *testing.T, test string) *source.File {
	filename := fmt.Sprintf("%s/%s.adsl", testDir, test)
	// Read model file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	//
	return source.NewSourceFile(filename, bytes)
}
