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
package translate

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/adsl/reader"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/consensys/go-adsl/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// Determines the (relative) location of the test directory.
const testDir = "../../../testdata"

const socialModel = `
	(class Person)
	(relation Person friends 0+ Person)
	(invariant someone (not (isempty (allof Person))))`

// ===================================================================
// Statements
// ===================================================================

func Test_Translate_01(t *testing.T) {
	tr := translateText(t, "(class Person) (action a () (create Person))", "a", DefaultConfig())
	//
	assert.Equal(t, []string{"created_Person"}, functionNames(tr))
	assert.Equal(t, 0, tr.Vocabulary().Functions()[0].Arity())
	checkAxiom(t, tr, "(<=> (s_Person person) (or (init_Person person) (= person created_Person)))")
	checkAxiom(t, tr, "(not (init_Person created_Person))")
	assert.Equal(t, "s", tr.FinalState().Name())
}

func Test_Translate_02(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action befriend ((p Person) (q Person)) (add p friends q))`, "befriend", DefaultConfig())
	//
	preds := predicateNames(tr)
	assert.Contains(t, preds, "p")
	assert.Contains(t, preds, "q")
	assert.Contains(t, preds, "objset1_pred")
	assert.Contains(t, preds, "objset2_pred")
	assert.Contains(t, preds, "s_Person_friends")
	checkAxiom(t, tr, "(exists ((person_friends Person_friends)) (and (s_Person_friends person_friends) "+
		"(= (Person_friends_left person_friends) person) (= (Person_friends_right person_friends) person_1)))")
	// Only the relation changes
	sort, _, _ := tr.RelationSort(0)
	assert.Equal(t, []*fol.Sort{sort}, tr.FinalState().SortsDifferingFrom(tr.InitialState()))
}

func Test_Translate_03(t *testing.T) {
	tr := translateText(t, socialModel+`(action a () (delete (allof Person)))`, "a", DefaultConfig())
	//
	conjecture, err := tr.Conjecture(InvariantPreservation())
	require.NoError(t, err)
	assert.Equal(t, "(=> (exists ((person Person)) (and (is_Person person) (init_Person person))) "+
		"(exists ((person Person)) (and (is_Person person) (s_Person person))))", conjecture.String())
	// Deleting objects deletes their tuples as well
	assert.Len(t, tr.FinalState().SortsDifferingFrom(tr.InitialState()), 2)
}

func Test_Translate_04(t *testing.T) {
	tr := translateText(t, socialModel+`(action a () (foreach p empty (delete p)))`, "a", DefaultConfig())
	//
	assert.NotContains(t, predicateNames(tr), "iteration")
	assert.Equal(t, tr.InitialState(), tr.FinalState())
}

func Test_Translate_05(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action a ((p Person)) (if (isempty (deref p friends)) (delete p)))`, "a", DefaultConfig())
	//
	assert.Contains(t, predicateNames(tr), "cond")
	checkAxiom(t, tr, "(<=> (s_1_Person person) (ite (cond) (s_Person person) (init_Person person)))")
	assert.Equal(t, "s_1", tr.FinalState().Name())
}

func Test_Translate_06(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action a ((p Person)) (if * (delete p)))`, "a", DefaultConfig())
	// Nondeterministic conditions are unconstrained
	for _, axiom := range tr.Axioms() {
		assert.NotContains(t, axiom.String(), "(<=> (cond)")
	}
	//
	assert.Contains(t, predicateNames(tr), "cond")
}

func Test_Translate_07(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action a ((p Person))
			(either (delete p) (add p friends p) (remove p friends p)))`, "a", DefaultConfig())
	//
	preds := predicateNames(tr)
	assert.Contains(t, preds, "either")
	assert.Contains(t, preds, "either_1")
	assert.NotContains(t, preds, "either_2")
}

func Test_Translate_08(t *testing.T) {
	tr := translateText(t, `(class Person)
		(action a ((ps Person 0+)) (foreach p ps (create Person)))`, "a", DefaultConfig())
	//
	preds := predicateNames(tr)
	assert.Contains(t, preds, "iteration")
	assert.NotContains(t, preds, "iteration_before")
	// Each iteration creates a distinct object
	require.Equal(t, []string{"created_Person"}, functionNames(tr))
	assert.Equal(t, 1, tr.Vocabulary().Functions()[0].Arity())
	checkAxiom(t, tr, "(not (= (created_Person person) (created_Person person_1)))")
}

func Test_Translate_09(t *testing.T) {
	text := socialModel + `
		(action a ((ps Person 0+)) (foreach-seq p ps (delete p)))`
	// Sequential
	tr := translateText(t, text, "a", DefaultConfig())
	preds := predicateNames(tr)
	assert.Contains(t, preds, "iteration")
	assert.Contains(t, preds, "iteration_before")
	assert.Contains(t, preds, "iteration_just_before")
	// Forced to commute
	tr = translateText(t, text, "a", Config{Optimize: true, CheckSymbols: true, ForceCoex: true})
	preds = predicateNames(tr)
	assert.Contains(t, preds, "iteration")
	assert.NotContains(t, preds, "iteration_before")
}

func Test_Translate_10(t *testing.T) {
	tr := translateText(t, socialModel+`(action a () (raise))`, "a", DefaultConfig())
	theorem, err := tr.Theorem(nil)
	require.NoError(t, err)
	//
	found := false
	for _, axiom := range theorem.Axioms {
		found = found || fol.IsFalse(axiom)
	}
	//
	assert.True(t, found)
}

func Test_Translate_11(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action a ((p Person)) (let q (deref p friends)) (assert (not (isempty q))))`, "a", DefaultConfig())
	//
	assert.Contains(t, predicateNames(tr), "q")
	checkAxiom(t, tr, "(exists ((person Person)) (q person))")
	// Nothing changes
	assert.Equal(t, tr.InitialState(), tr.FinalState())
}

func Test_Translate_12(t *testing.T) {
	tr := translateText(t, `(class Person)
		(action a ((ps Person 0+)) (foreach-seq p ps (delete p)))`, "a", DefaultConfig())
	// The first iteration starts from the state before the loop
	checkExactAxiom(t, tr, "(forall ((person Person) (person_1 Person)) "+
		"(=> (and (iteration person) (not (exists ((person_2 Person)) (iteration_before person_2 person)))) "+
		"(<=> (s_Person person person_1) (init_Person person_1))))")
	// Every other iteration starts from the state after its predecessor
	checkExactAxiom(t, tr, "(forall ((person Person) (person_1 Person) (person_2 Person)) "+
		"(=> (iteration_just_before person person_1) (<=> (s_Person person_1 person_2) (s_1_Person person person_2))))")
	assert.Equal(t, "s_2", tr.FinalState().Name())
}

func Test_Translate_13(t *testing.T) {
	tr := translateText(t, socialModel+`
		(action chain ((ps Person 1+))
			(let last (oneof ps))
			(foreach-seq p ps
				(add p friends last)
				(let last p)))`, "chain", DefaultConfig())
	// Each iteration reads the value left by its predecessor
	checkRawAxiom(t, tr, "(<=> (objset2_pred person person_1) (last_1 person person_1))")
	checkExactAxiom(t, tr, "(forall ((person Person) (person_1 Person)) "+
		"(=> (and (iteration person) (not (exists ((person_2 Person)) (iteration_before person_2 person)))) "+
		"(<=> (last_1 person person_1) (last person_1))))")
	checkExactAxiom(t, tr, "(forall ((person Person) (person_1 Person) (person_2 Person)) "+
		"(=> (iteration_just_before person person_1) (<=> (last_1 person_1 person_2) (last_2 person person_2))))")
	// After the loop, the value is that left by the last iteration
	assert.Contains(t, predicateNames(tr), "last_3")
	// Unless iterations are forced to commute
	tr = translateText(t, socialModel+`
		(action chain ((ps Person 1+))
			(let last (oneof ps))
			(foreach-seq p ps
				(add p friends last)
				(let last p)))`, "chain", Config{ForceCoex: true})
	checkRawAxiom(t, tr, "(<=> (objset2_pred person person_1) (last person_1))")
	assert.NotContains(t, predicateNames(tr), "last_2")
}

// ===================================================================
// Failures
// ===================================================================

func Test_Translate_Invalid_01(t *testing.T) {
	model, errs := reader.ReadString(socialModel + "(action a () (delete (allof Person)))")
	require.Empty(t, errs)
	//
	action, _ := model.ActionByName("a")
	tr := New(model, DefaultConfig())
	// Problems require a translated action
	_, err := tr.Conjecture(InvariantPreservation())
	assert.ErrorIs(t, err, ErrNotTranslated)
	// Translators are single use
	require.NoError(t, tr.TranslateAction(action))
	assert.ErrorIs(t, tr.TranslateAction(action), ErrAlreadyTranslated)
}

func Test_Translate_Invalid_02(t *testing.T) {
	var (
		model  = ast.NewModel()
		person = model.NewClass("Person")
		v      = ast.NewVar("x", ast.ObjsetType(ast.One, person))
		action = ast.NewAction("a", nil, ast.NewBlock(&ast.DeleteObj{Objset: &ast.VarRead{Var: v}}))
	)
	//
	err := New(model, DefaultConfig()).TranslateAction(action)
	assert.ErrorIs(t, err, ErrUnregisteredSymbol)
}

func Test_Translate_Invalid_03(t *testing.T) {
	var (
		model  = ast.NewModel()
		person = model.NewClass("Person")
		action = ast.NewAction("a", nil, ast.NewBlock(&ast.DeleteObj{Objset: &ast.CurrentUser{Class: person}}))
	)
	//
	err := New(model, DefaultConfig()).TranslateAction(action)
	assert.ErrorIs(t, err, ErrUnregisteredSymbol)
}

func Test_Translate_Invalid_04(t *testing.T) {
	tr := translateText(t, socialModel+`(action a () (delete (allof Person)))`, "a", DefaultConfig())
	// Every failing problem is reported
	_, err := tr.Conjecture(AccessDelete(), InvariantPreservation("missing"), AccessRead())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.ErrorIs(t, err, ErrProblemConfiguration)
	//
	var perr *ProblemError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "delete", perr.Problem)
	// Selected invariants must exist
	_, err = tr.Conjecture(InvariantPreservation("someone"))
	assert.NoError(t, err)
}

func Test_Translate_Invalid_05(t *testing.T) {
	_, err := ParseProblem("everything")
	assert.ErrorIs(t, err, ErrProblemConfiguration)
	//
	for _, name := range []string{"invariants", "create", "delete", "read", "associate", "deassociate"} {
		problem, err := ParseProblem(name)
		require.NoError(t, err)
		assert.Equal(t, name, problem.Name())
	}
}

// ===================================================================
// Theorems
// ===================================================================

func Test_Theorem_01(t *testing.T) {
	ghost := fol.NewPredicate("ghost").Apply()
	// Undeclared symbols are reported when checked
	tr := translateText(t, socialModel+`(action a () (delete (allof Person)))`, "a", DefaultConfig())
	_, err := tr.Theorem(ghost)
	assert.ErrorIs(t, err, ErrUnregisteredSymbol)
	// Otherwise, they are not
	tr = translateText(t, socialModel+`(action a () (delete (allof Person)))`, "a", Config{})
	theorem, err := tr.Theorem(ghost)
	require.NoError(t, err)
	assert.Equal(t, ghost, theorem.Conjecture)
	assert.Len(t, theorem.Axioms, len(tr.Axioms()))
}

func Test_Theorem_02(t *testing.T) {
	tr := translateText(t, socialModel+`(action a () (delete (allof Person)))`, "a", DefaultConfig())
	conjecture, err := tr.Conjecture(InvariantPreservation())
	require.NoError(t, err)
	//
	theorem, err := tr.Theorem(conjecture)
	require.NoError(t, err)
	assert.Len(t, theorem.Sorts, 2)
	assert.Equal(t, len(tr.Vocabulary().Predicates()), len(theorem.Predicates))
	// Optimised axioms are never trivial
	for _, axiom := range theorem.Axioms {
		assert.False(t, fol.IsTrue(axiom))
	}
}

// ===================================================================
// Models
// ===================================================================

func Test_Translate_File_01(t *testing.T) {
	checkTranslateFile(t, "valid/social", InvariantPreservation())
}

func Test_Translate_File_02(t *testing.T) {
	checkTranslateFile(t, "valid/blog", InvariantPreservation(), AccessCreate(), AccessDelete(), AccessRead(),
		AccessAssociate(), AccessDeassociate())
}

func Test_Translate_File_03(t *testing.T) {
	model := readModelFile(t, "valid/social")
	action, ok := model.ActionByName("befriend")
	require.True(t, ok)
	//
	tr := New(model, DefaultConfig())
	require.NoError(t, tr.TranslateAction(action))
	// Social models have no authenticable class
	_, err := tr.Conjecture(AccessCreate())
	assert.ErrorIs(t, err, ErrProblemConfiguration)
}

// ===================================================================
// Test Helpers
// ===================================================================

// Translate every action of a model file, and generate the given problems for
// each.
func checkTranslateFile(t *testing.T, test string, problems ...Problem) {
	model := readModelFile(t, test)
	//
	for _, action := range model.Actions() {
		tr := New(model, DefaultConfig())
		//
		if err := tr.TranslateAction(action); err != nil {
			t.Fatalf("action %s: %v", action.Name, err)
		}
		//
		conjecture, err := tr.Conjecture(problems...)
		if err != nil {
			t.Fatalf("action %s: %v", action.Name, err)
		}
		//
		if _, err := tr.Theorem(conjecture); err != nil {
			t.Fatalf("action %s: %v", action.Name, err)
		}
	}
}

func translateText(t *testing.T, text string, name string, config Config) *Translator {
	model, errs := reader.ReadString(text)
	require.Empty(t, errs)
	//
	action, ok := model.ActionByName(name)
	require.True(t, ok)
	//
	tr := New(model, config)
	require.NoError(t, tr.TranslateAction(action))
	//
	return tr
}

func readModelFile(t *testing.T, test string) *ast.Model {
	filename := fmt.Sprintf("%s/%s.adsl", testDir, test)
	// Read model file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	//
	model, errs := reader.Read(source.NewSourceFile(filename, bytes))
	require.Empty(t, errs)
	//
	return model
}

// Check some (optimised) axiom contains a given fragment.
func checkAxiom(t *testing.T, tr *Translator, fragment string) {
	theorem, err := tr.Theorem(nil)
	require.NoError(t, err)
	//
	var axioms []string
	//
	for _, axiom := range theorem.Axioms {
		if strings.Contains(axiom.String(), fragment) {
			return
		}
		//
		axioms = append(axioms, axiom.String())
	}
	//
	t.Errorf("no axiom contains %s:\n%s", fragment, strings.Join(axioms, "\n"))
}

// Check some (unoptimised) axiom is exactly a given formula.
func checkExactAxiom(t *testing.T, tr *Translator, expected string) {
	var axioms []string
	//
	for _, axiom := range tr.Axioms() {
		if axiom.String() == expected {
			return
		}
		//
		axioms = append(axioms, axiom.String())
	}
	//
	t.Errorf("no axiom is %s:\n%s", expected, strings.Join(axioms, "\n"))
}

// Check some (unoptimised) axiom contains a given fragment.
func checkRawAxiom(t *testing.T, tr *Translator, fragment string) {
	for _, axiom := range tr.Axioms() {
		if strings.Contains(axiom.String(), fragment) {
			return
		}
	}
	//
	t.Errorf("no axiom contains %s", fragment)
}

func predicateNames(tr *Translator) []string {
	var names []string
	//
	for _, pred := range tr.Vocabulary().Predicates() {
		names = append(names, pred.Name())
	}
	//
	return names
}

func functionNames(tr *Translator) []string {
	var names []string
	//
	for _, fn := range tr.Vocabulary().Functions() {
		names = append(names, fn.Name())
	}
	//
	return names
}
