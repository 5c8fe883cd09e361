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

// Package cmd implements the tvcore CLI harness: a thin Cobra command
// tree exercising pkg/value for manual inspection (probe, print), never
// a full verifier CLI — that remains the surrounding tool's job.
// Structured the way go-corset/cmd/main.go + pkg/cmd/root.go wire
// Cobra.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at link time (-ldflags "-X"); unset for a plain
// `go build` or `go install`.
var Version string

var rootCmd = &cobra.Command{
	Use:   "tvcore",
	Short: "Inspect the symbolic value and memory encoding layer.",
	Long:  "tvcore exercises the value-algebra core (Tensor/MemRef/Layout) from the command line for manual inspection.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs rootCmd; each subcommand file adds its command to rootCmd
// in its own init(). Called once by cmd/tvcore's main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().UintP("bits", "b", 64, "Index bit-width")
}

func getFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func getUint(cmd *cobra.Command, name string) uint {
	v, _ := cmd.Flags().GetUint(name)
	return v
}

func getString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func getUint64(cmd *cobra.Command, name string) uint64 {
	v, _ := cmd.Flags().GetUint64(name)
	return v
}
