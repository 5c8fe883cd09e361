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
package aop

import "github.com/symtv/tvcore/pkg/smt"

// litLen reports the concrete length of a reduction, when known. Tensor
// convolution/pooling/matmul/dot kernels almost always reduce over a
// literal cube size (∏F × IC, a kernel width, a row length), so the common
// case unrolls into real bit-vector arithmetic; a genuinely symbolic
// length falls back to an opaque backend application.
func litLen(length *smt.Term) (uint64, bool) {
	if length != nil && length.IsConst() {
		return length.ConstValue(), true
	}

	return 0, false
}

// foldReduction unrolls an additive reduction (Dot, Sum) when the length is
// a literal, seeding the accumulator with init (or the type's additive
// identity). When the length is symbolic, it defers to opaque, called with
// the reduction's free structure (so two equal symbolic reductions still
// compare equal after hash-consing).
func foldReduction(e Encoding, length *smt.Term, init *smt.Term, at func(uint64) *smt.Term,
	opaque func(args ...*smt.Term) *smt.Term, structure ...*smt.Term) *smt.Term {
	n, lit := litLen(length)
	if !lit {
		args := append(append([]*smt.Term{}, structure...), length)
		if init != nil {
			args = append(args, init)
		}

		return opaque(args...)
	}

	acc := init
	if acc == nil {
		acc = e.Zero(true)
	}

	for i := uint64(0); i < n; i++ {
		acc = e.Add(acc, at(i))
	}

	return acc
}

// foldReductionMax unrolls a max-reduction when l's length is a literal,
// using the encoding's own ordered comparison to build an ite chain.
func foldReductionMax(e Encoding, l Lambda1D, init *smt.Term, opaque func(args ...*smt.Term) *smt.Term) *smt.Term {
	n, lit := litLen(l.Len)
	if !lit {
		args := []*smt.Term{l.Body, l.BoundVar, l.Len}
		if init != nil {
			args = append(args, init)
		}

		return opaque(args...)
	}

	acc := init

	for i := uint64(0); i < n; i++ {
		v := l.At(i)
		if acc == nil {
			acc = v
			continue
		}

		cmp := e.Cmp(OGT, acc, v)
		acc = l.Builder.Ite(cmp, acc, v)
	}

	if acc == nil {
		acc = e.Zero(true)
	}

	return acc
}

func cmpName(prefix string, pred Predicate) string {
	names := map[Predicate]string{
		OEQ: "oeq", OLT: "olt", OLE: "ole", OGT: "ogt", OGE: "oge", ONE: "one",
		UEQ: "ueq", ULT: "ult", ULE: "ule", UGT: "ugt", UGE: "uge",
	}

	return prefix + ".cmp." + names[pred]
}
