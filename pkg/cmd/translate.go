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
	"context"
	"fmt"
	"os"

	"github.com/consensys/go-adsl/pkg/adsl/ast"
	"github.com/consensys/go-adsl/pkg/adsl/translate"
	"github.com/consensys/go-adsl/pkg/fol"
	"github.com/consensys/go-adsl/pkg/util"
	"github.com/consensys/go-adsl/pkg/util/source/sexp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] model_file",
	Short: "translate actions into first-order theorems.",
	Long: `Translate one or more actions of a model into first-order theorems, each of
which holds exactly when the selected verification problems hold for that action.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		settings, err := ReadSettings(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		var (
			model   = ReadModelFile(args[0])
			actions = selectActions(cmd, model)
			width   = textWidth(cmd, "width")
			stats   = util.NewPerfStats()
		)
		//
		theorems, err := translateActions(model, actions, settings)
		//
		stats.Log("Translating actions")
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(5)
		}
		//
		for i, theorem := range theorems {
			if i != 0 {
				fmt.Println()
			}
			//
			fmt.Printf(";; action %s\n", actions[i].Name)
			printTheorem(theorem, width)
		}
	},
}

// Determine which actions of a model to translate.
func selectActions(cmd *cobra.Command, model *ast.Model) []*ast.Action {
	var (
		all     = GetFlag(cmd, "all")
		names   = GetStringArray(cmd, "action")
		actions []*ast.Action
	)
	//
	if all {
		return model.Actions()
	} else if len(names) == 0 {
		fmt.Println("no actions selected (use --action or --all)")
		os.Exit(2)
	}
	//
	for _, name := range names {
		action, ok := model.ActionByName(name)
		// Sanity check
		if !ok {
			fmt.Printf("unknown action \"%s\"\n", name)
			os.Exit(2)
		}
		//
		actions = append(actions, action)
	}
	//
	return actions
}

// translateActions translates each of the given actions into a theorem stating
// the selected problems.  Actions are translated concurrently, since each uses
// a translator of its own.
func translateActions(model *ast.Model, actions []*ast.Action, settings Settings) ([]*fol.Theorem, error) {
	var (
		theorems = make([]*fol.Theorem, len(actions))
		group, _ = errgroup.WithContext(context.Background())
	)
	//
	for i, action := range actions {
		i, action := i, action
		group.Go(func() error {
			theorem, err := translateAction(model, action, settings)
			if err != nil {
				return errors.Wrapf(err, "action %s", action.Name)
			}
			//
			theorems[i] = theorem
			//
			return nil
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	return theorems, nil
}

func translateAction(model *ast.Model, action *ast.Action, settings Settings) (*fol.Theorem, error) {
	problems, err := settings.ParseProblems()
	if err != nil {
		return nil, err
	}
	//
	translator := translate.New(model, settings.Config())
	//
	if err := translator.TranslateAction(action); err != nil {
		return nil, err
	}
	//
	conjecture, err := translator.Conjecture(problems...)
	if err != nil {
		return nil, err
	}
	//
	theorem, err := translator.Theorem(conjecture)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("action %s: %d sorts, %d predicates, %d functions, %d axioms", action.Name,
		len(theorem.Sorts), len(theorem.Predicates), len(theorem.Functions), len(theorem.Axioms))
	//
	return theorem, nil
}

// Print a theorem, one declaration per line, such that each fits within a
// given width where possible.
func printTheorem(theorem *fol.Theorem, width uint) {
	formatter := sexp.NewFormatter(width)
	//
	for _, head := range []string{"axiom", "conjecture", "and", "or", "=>", "<=>", "ite"} {
		formatter.Break(head, 1)
	}
	//
	for _, head := range []string{"forall", "exists"} {
		formatter.Break(head, 2)
	}
	//
	for _, decl := range theorem.Lisp() {
		fmt.Println(formatter.Format(decl))
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringArrayP("action", "a", nil, "translate a given action")
	translateCmd.Flags().Bool("all", false, "translate every action")
	translateCmd.Flags().StringArrayP("problem", "p", nil,
		"verification problem (invariants, create, delete, read, associate, deassociate)")
	translateCmd.Flags().StringArrayP("invariant", "i", nil, "check preservation of a given invariant")
	translateCmd.Flags().String("config", "", "read settings from a configuration file")
	translateCmd.Flags().Uint("width", 120, "maximum width of output")
	translateCmd.Flags().Bool("optimize", true, "optimize axioms")
	translateCmd.Flags().Bool("check-symbols", true, "check every symbol is declared")
	translateCmd.Flags().Bool("force-coex", false, "translate every loop as unordered")
}
