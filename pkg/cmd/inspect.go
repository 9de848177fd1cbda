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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/adsl/translate"
	"github.com/consensys/go-adsl/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] model_file",
	Short: "inspect a model.",
	Long: `Print a summary of the classes, relations, usergroups and actions of a model,
along with the vocabulary each action translates into (if requested).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		model := ReadModelFile(args[0])
		//
		printModel(model)
		//
		if GetFlag(cmd, "summary") {
			printSummary(model, GetUint(cmd, "max-width"))
		}
		//
		if GetFlag(cmd, "vocabulary") {
			for _, action := range model.Actions() {
				printVocabulary(model, action)
			}
		}
	},
}

func printModel(model *ast.Model) {
	for _, id := range model.Classes() {
		class := model.Class(id)
		fmt.Printf("class %s", class.Name)
		//
		if len(class.Parents) > 0 {
			fmt.Printf(" extends %s", classNames(model, class.Parents))
		}
		//
		fmt.Println()
	}
	//
	for _, id := range model.Relations() {
		rel := model.Relation(id)
		fmt.Printf("relation %s.%s %s %s", model.Class(rel.From).Name, rel.Name, rel.Card.String(),
			model.Class(rel.To).Name)
		//
		if rel.InverseOf.HasValue() {
			fmt.Printf(" inverse of %s", model.Relation(rel.InverseOf.Unwrap()).Name)
		}
		//
		fmt.Println()
	}
	//
	if auth := model.Authenticable(); auth.HasValue() {
		fmt.Printf("authenticable %s\n", model.Class(auth.Unwrap()).Name)
	}
	//
	for _, id := range model.Usergroups() {
		fmt.Printf("usergroup %s\n", model.Usergroup(id).Name)
	}
	//
	fmt.Printf("%d permission rule(s), %d invariant(s)\n", len(model.Rules()), len(model.Invariants()))
	//
	for _, action := range model.Actions() {
		var args []string
		//
		for _, arg := range action.Args {
			args = append(args, fmt.Sprintf("%s: %s %s", arg.Var.Name, model.Class(arg.Class).Name, arg.Card.String()))
		}
		//
		fmt.Printf("action %s(%s)\n", action.Name, strings.Join(args, ", "))
	}
}

// printSummary translates every action of a model, and tabulates the size of
// each translation.
func printSummary(model *ast.Model, maxWidth uint) {
	table := termio.NewTable("action", "axioms", "sorts", "predicates", "functions", "changes")
	table.SetEscape(0, termio.Colour(termio.TERM_CYAN, false))
	table.SetEscape(5, termio.Colour(termio.TERM_YELLOW, false))
	table.SetMaxWidth(maxWidth)
	//
	for _, action := range model.Actions() {
		translator := translate.New(model, translate.DefaultConfig())
		//
		if err := translator.TranslateAction(action); err != nil {
			log.Errorf("action %s: %s", action.Name, err)
			continue
		}
		//
		var (
			vocab   = translator.Vocabulary()
			changed []string
		)
		//
		for _, sort := range translator.FinalState().SortsDifferingFrom(translator.InitialState()) {
			changed = append(changed, sort.Name())
		}
		//
		table.AddRow(action.Name, fmt.Sprint(len(translator.Axioms())), fmt.Sprint(len(vocab.Sorts())),
			fmt.Sprint(len(vocab.Predicates())), fmt.Sprint(len(vocab.Functions())), strings.Join(changed, " "))
	}
	//
	fmt.Println()
	//
	if err := table.Fprint(os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		log.Error(err)
	}
}

func printVocabulary(model *ast.Model, action *ast.Action) {
	translator := translate.New(model, translate.DefaultConfig())
	//
	if err := translator.TranslateAction(action); err != nil {
		fmt.Printf("action %s: %s\n", action.Name, err)
		return
	}
	//
	vocab := translator.Vocabulary()
	//
	fmt.Printf("\naction %s: %d axiom(s)\n", action.Name, len(translator.Axioms()))
	//
	for _, sort := range vocab.Sorts() {
		fmt.Printf("  sort %s\n", sort.Name())
	}
	//
	for _, pred := range vocab.Predicates() {
		fmt.Printf("  %s\n", pred.Lisp().String(false))
	}
	//
	for _, fn := range vocab.Functions() {
		fmt.Printf("  %s\n", fn.Lisp().String(false))
	}
}

func classNames(model *ast.Model, ids []ast.ClassId) string {
	names := make([]string, len(ids))
	//
	for i, id := range ids {
		names[i] = model.Class(id).Name
	}
	//
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("vocabulary", false, "print the vocabulary of each action")
	inspectCmd.Flags().Bool("summary", false, "tabulate the translation of each action")
	inspectCmd.Flags().Uint("max-width", 40, "maximum width of any column in the summary")
}
