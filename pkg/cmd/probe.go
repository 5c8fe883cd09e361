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

	"github.com/symtv/tvcore/pkg/memory"
	"github.com/symtv/tvcore/pkg/util"
	"github.com/symtv/tvcore/pkg/value"
)

var probeCmd = &cobra.Command{
	Use:   "probe [flags]",
	Short: "Build a fresh symbolic tensor or memref and report its shape invariants.",
	Long: `probe constructs a fresh symbolic value of the requested shape and
element type and reports its rank, well-definedness side condition and
(for a memref) its addressing layout — a smoke test for the value
algebra, not a verifier.`,
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
		idxDims := indexDimsFor(ctx, dims)

		if getFlag(cmd, "memref") {
			probeMemRef(ctx, elem, idxDims)
			return
		}

		t, err := value.NewFreshTensor(ctx, elem, "probe", idxDims, util.None[bool]())
		if err != nil {
			fail(err)
		}

		fmt.Printf("tensor: rank=%d elem=%s dims=%v\n", t.Rank(), elem, dims)
		fmt.Printf("wellDefined: %s\n", t.WellDefined())
		fmt.Printf("fullyInitialized: %s\n", t.IsFullyInitialized())
	},
}

func probeMemRef(ctx *value.Context, elem value.ElemType, dims []value.Index) {
	mem := memory.NewDemoMemory(ctx)
	bid := mem.Alloc(1<<20, true, mem.BIDBits())

	layout := value.NewIdentityLayout(ctx, dims)

	m, err := value.NewMemRef(ctx, mem, elem, bid, value.ConstIndex(ctx, 0), layout)
	if err != nil {
		fail(err)
	}

	fmt.Printf("memref: rank=%d elem=%s identity=%v\n", m.Rank(), elem, m.IsIdentityLayout())
	fmt.Printf("wellDefined: %s\n", m.WellDefined())
	fmt.Printf("inBounds: %s\n", m.IsInBounds())
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "tvcore:", err)
	os.Exit(1)
}

func init() {
	probeCmd.Flags().String("dims", "4,4", "comma-separated dimension vector")
	probeCmd.Flags().String("elem", "i32", "element type: iN, index, f32 or f64")
	probeCmd.Flags().Bool("memref", false, "probe a memref (backed by a DemoMemory block) instead of a tensor")
	rootCmd.AddCommand(probeCmd)
}
