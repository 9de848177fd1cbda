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
	"github.com/consensys/go-adsl/pkg/adsl/reader"
	"github.com/consensys/go-adsl/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected boolean flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	return mustGet(flag, cmd.Flags().GetBool)
}

// GetUint gets an expected unsigned integer flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	return mustGet(flag, cmd.Flags().GetUint)
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	return mustGet(flag, cmd.Flags().GetString)
}

// GetStringArray gets an expected (repeatable) string flag, or exits if an
// error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	return mustGet(flag, cmd.Flags().GetStringArray)
}

func mustGet[T any](flag string, getter func(string) (T, error)) T {
	value, err := getter(flag)
	//
	if err != nil {
		log.Errorf("flag --%s: %v", flag, err)
		os.Exit(2)
	}
	//
	return value
}

// ReadModelFile reads a model from the given file, or prints the syntax errors
// arising and exits.
func ReadModelFile(filename string) *ast.Model {
	log.Debug(fmt.Sprintf("reading model file %s", filename))
	// Read source file
	bytes, err := os.ReadFile(filename)
	// Sanity check for errors
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	model, errors := reader.Read(source.NewSourceFile(filename, bytes))
	// Check for errors
	if len(errors) != 0 {
		// Report errors
		for _, err := range errors {
			printSyntaxError(&err)
		}
		// Fail
		os.Exit(4)
	}
	// Done
	return model
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := max(1, min(line.Length()-lineOffset, span.Length()))
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(strings.Repeat("^", length))
}

// Determine the width to format output with.  Where output is going to a
// terminal, this is the width of that terminal.  Otherwise, a given default is
// used.
func textWidth(cmd *cobra.Command, flag string) uint {
	if cmd.Flags().Changed(flag) {
		return GetUint(cmd, flag)
	} else if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			return uint(width)
		}
	}
	//
	return GetUint(cmd, flag)
}
