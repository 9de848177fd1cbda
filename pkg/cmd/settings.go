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
	"github.com/consensys/go-adsl/pkg/adsl/translate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings determines how the actions of a model are translated.  Settings are
// read from an (optional) configuration file, with any flags given on the
// command line taking precedence.
type Settings struct {
	// Names of the verification problems to generate.
	Problems []string `mapstructure:"problem"`
	// Names of the invariants whose preservation is checked.
	Invariants []string `mapstructure:"invariant"`
	// Optimize axioms, not just conjectures.
	Optimize bool `mapstructure:"optimize"`
	// Check every symbol of a theorem is declared.
	CheckSymbols bool `mapstructure:"check-symbols"`
	// Treat every loop as commutative.
	ForceCoex bool `mapstructure:"force-coex"`
}

// ReadSettings reads the settings for a given command.
func ReadSettings(cmd *cobra.Command) (Settings, error) {
	var (
		settings Settings
		v        = viper.New()
		defaults = translate.DefaultConfig()
	)
	//
	v.SetDefault("problem", []string{"invariants"})
	v.SetDefault("optimize", defaults.Optimize)
	v.SetDefault("check-symbols", defaults.CheckSymbols)
	v.SetDefault("force-coex", defaults.ForceCoex)
	// Only flags given explicitly override the configuration file.
	for _, name := range []string{"problem", "invariant", "optimize", "check-symbols", "force-coex"} {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			if err := v.BindPFlag(name, flag); err != nil {
				return settings, errors.Wrapf(err, "binding flag %s", name)
			}
		}
	}
	//
	if filename := GetString(cmd, "config"); filename != "" {
		v.SetConfigFile(filename)
		//
		if err := v.ReadInConfig(); err != nil {
			return settings, errors.Wrapf(err, "reading configuration %s", filename)
		}
	}
	//
	if err := v.Unmarshal(&settings); err != nil {
		return settings, errors.Wrap(err, "decoding settings")
	}
	//
	return settings, nil
}

// Config returns the translator configuration determined by these settings.
func (p Settings) Config() translate.Config {
	return translate.Config{Optimize: p.Optimize, CheckSymbols: p.CheckSymbols, ForceCoex: p.ForceCoex}
}

// ParseProblems parses the verification problems selected by these settings.
func (p Settings) ParseProblems() ([]translate.Problem, error) {
	var problems []translate.Problem
	//
	for _, name := range p.Problems {
		if name == "invariants" {
			problems = append(problems, translate.InvariantPreservation(p.Invariants...))
			continue
		}
		//
		problem, err := translate.ParseProblem(name)
		if err != nil {
			return nil, err
		}
		//
		problems = append(problems, problem)
	}
	//
	return problems, nil
}
