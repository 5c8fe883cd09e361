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

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/symtv/tvcore/pkg/smt"
	"github.com/symtv/tvcore/pkg/value"
)

// terminalWidth reports the current terminal's column count, falling
// back to 80 when stdout isn't a terminal (e.g. piped into a file).
func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 80
	}

	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}

	return w
}

var printCmd = &cobra.Command{
	Use:   "print [flags]",
	Short: "Build a splat constant tensor and render it.",
	Long: `print constructs a dense constant tensor (every element equal to
--splat) of the requested shape and element type, evaluates it under an
empty model and renders it with the same enumeration format the VC
generator uses for counterexample tensors.`,
	Run: func(cmd *cobra.Command, args []string) {
		dims, err := parseDims(getString(cmd, "dims"))
		if err != nil {
			fail(err)
		}

		elem, err := parseElemType(getString(cmd, "elem"))
		if err != nil {
			fail(err)
		}

		ctx := value.NewContext(value.WithBits(getUint(cmd, "bits")))

		attr := value.ConstAttr{
			Dims:  dims,
			Kind:  value.ConstSplat,
			Splat: getUint64(cmd, "splat"),
		}

		t, err := value.FromElemsAttr(ctx, elem, attr)
		if err != nil {
			fail(err)
		}

		m := smt.NewModel(ctx.B, nil)

		fmt.Println(t.Eval(m).PrintWidth(m, terminalWidth()))
	},
}

func init() {
	printCmd.Flags().String("dims", "2,2", "comma-separated dimension vector")
	printCmd.Flags().String("elem", "i32", "element type: iN, index, f32 or f64")
	printCmd.Flags().Uint64("splat", 0, "bit pattern every element is filled with")
	rootCmd.AddCommand(printCmd)
}
