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
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/symtv/tvcore/pkg/smt"
)

// defaultPrintWidth is the column budget Print wraps enumerated cells to
// when it has no better information (PrintWidth wasn't called from a
// terminal-aware caller).
const defaultPrintWidth = 80

// Print renders t under a concrete model m (spec.md §4.2's "Printing"):
// a wholly-uninitialized tensor prints as "(uninitialized)"; an at-most
// 16-element tensor is enumerated coordinate by coordinate; larger ones
// print by peeling the evaluated arr expression's Store chain down to its
// const-array base.
func (t *Tensor) Print(m *smt.Model) string {
	return t.PrintWidth(m, defaultPrintWidth)
}

// PrintWidth is Print but packs multiple enumerated cells onto one line
// up to width columns, for callers (tvcore print) that know the actual
// terminal width.
func (t *Tensor) PrintWidth(m *smt.Model, width int) string {
	ctx := t.ctx
	evalInit := m.Eval(t.initialized)

	if isUninitializedEverywhere(evalInit) {
		return "(uninitialized)"
	}

	dims, literal := t.literalDims()
	evalArr := m.Eval(t.arr)

	if literal {
		total := uint64(1)
		for _, d := range dims {
			total *= d
		}

		if total <= 16 {
			return t.printEnumerated(m, dims, total, width)
		}
	}

	return printStoreChain(ctx, evalArr)
}

// isUninitializedEverywhere reports whether an evaluated initialized
// array is structurally `const-array false`.
func isUninitializedEverywhere(t *smt.Term) bool {
	return t.Kind() == smt.KindConstArray && t.Args()[0].IsConst() && t.Args()[0].ConstValue() == 0
}

// printEnumerated renders one cell per coordinate in row-major order,
// marking cells the model leaves uninitialized, and packs cells onto a
// line greedily up to width columns rather than always one per line.
func (t *Tensor) printEnumerated(m *smt.Model, dims []uint64, total uint64, width int) string {
	ctx := t.ctx

	var lines []string

	var line strings.Builder

	coords := make([]uint64, len(dims))

	for n := uint64(0); n < total; n++ {
		idxs := make([]Index, len(dims))
		for i, c := range coords {
			idxs[i] = ConstIndex(ctx, c)
		}

		elem, _ := t.Get(idxs)
		val := m.Eval(elem)
		initialized := m.Eval(t.IsInitialized(idxs))

		cell := fmt.Sprintf("[%s] = %s", joinCoords(coords), renderElem(t.elemType, val))
		if initialized.IsConst() && initialized.ConstValue() == 0 {
			cell += " (uninitialized)"
		}

		if line.Len() > 0 && line.Len()+2+len(cell) > width {
			lines = append(lines, line.String())
			line.Reset()
		}

		if line.Len() > 0 {
			line.WriteString("  ")
		}

		line.WriteString(cell)

		advanceUint64(coords, dims)
	}

	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

func joinCoords(coords []uint64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.FormatUint(c, 10)
	}

	return strings.Join(parts, ",")
}

func advanceUint64(coords, dims []uint64) {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < dims[i] {
			return
		}

		coords[i] = 0
	}
}

// renderElem formats one model-evaluated element term per its declared
// element type: raw bits for Integer/Index, the FP encoding's bit
// pattern (prefixed so it reads as a float, not an opaque integer) for
// Float.
func renderElem(ty ElemType, val *smt.Term) string {
	if !val.IsConst() {
		return val.String()
	}

	if ty.IsFloat() {
		return "f" + strconv.Itoa(int(ty.Bits())) + "#" + strconv.FormatUint(val.ConstValue(), 16)
	}

	return strconv.FormatUint(val.ConstValue(), 10)
}

// printStoreChain peels Store(prev, idx, val) nodes from an evaluated
// array term, deduplicating repeated indices (outermost — i.e. most
// recent — write wins), down to the base const-array, printed as
// "else v".
func printStoreChain(ctx *Context, arr *smt.Term) string {
	seen := make(map[uint64]bool)

	var entries []string

	cur := arr
	for cur.Kind() == smt.KindStore {
		idx, val := cur.Args()[1], cur.Args()[2]

		if idx.IsConst() {
			k := idx.ConstValue()
			if !seen[k] {
				seen[k] = true
				entries = append(entries, fmt.Sprintf("[%d] = %s", k, val.String()))
			}
		} else {
			entries = append(entries, fmt.Sprintf("[%s] = %s", idx.String(), val.String()))
		}

		cur = cur.Args()[0]
	}

	var tail string
	if cur.Kind() == smt.KindConstArray {
		tail = "else " + cur.Args()[0].String()
	} else {
		tail = "else " + cur.String()
	}

	entries = append(entries, tail)

	return strings.Join(entries, "\n")
}
