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

// IntDot computes sum_i lhs[i]*rhs[i] over plain two's-complement
// bit-vectors at the given accumulator width, seeded by init (or zero).
// Unlike the float Encoding.Dot, integer reduction is uniform across width
// so it needs no per-type generation: the original threads an explicit
// bitwidth hint here so overflow behaviour matches the source dialect's
// accumulation type, rather than silently widening.
func IntDot(b *smt.Builder, lhs, rhs Lambda1D, accWidth uint, init *smt.Term) *smt.Term {
	return unrollAdditive(b, lhs.Len, accWidth, init, func(i uint64) *smt.Term {
		return b.BVMul(extendTo(b, lhs.At(i), accWidth), extendTo(b, rhs.At(i), accWidth))
	}, func(args ...*smt.Term) *smt.Term {
		return b.App("int.dot", smt.BVSort(accWidth), args...)
	}, lhs.Body, lhs.BoundVar, rhs.Body, rhs.BoundVar)
}

// IntSum computes sum_i l[i] at the given accumulator width.
func IntSum(b *smt.Builder, l Lambda1D, accWidth uint, init *smt.Term) *smt.Term {
	return unrollAdditive(b, l.Len, accWidth, init, func(i uint64) *smt.Term {
		return extendTo(b, l.At(i), accWidth)
	}, func(args ...*smt.Term) *smt.Term {
		return b.App("int.sum", smt.BVSort(accWidth), args...)
	}, l.Body, l.BoundVar)
}

// unrollAdditive is IntDot/IntSum's shared reduction core: unrolls when the
// length is a literal, falls back to an opaque application over the
// reduction's free structure otherwise.
func unrollAdditive(b *smt.Builder, length *smt.Term, accWidth uint, init *smt.Term,
	at func(uint64) *smt.Term, opaque func(args ...*smt.Term) *smt.Term, structure ...*smt.Term) *smt.Term {
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
		acc = b.BVConst(0, accWidth)
	}

	for i := uint64(0); i < n; i++ {
		acc = b.BVAdd(acc, at(i))
	}

	return acc
}

// IntMax computes max_i l[i] (unsigned) at the given accumulator width.
func IntMax(b *smt.Builder, l Lambda1D, accWidth uint, init *smt.Term) *smt.Term {
	n, lit := litLen(l.Len)
	if !lit {
		args := []*smt.Term{l.Body, l.BoundVar, l.Len}
		if init != nil {
			args = append(args, init)
		}

		return b.App("int.max", smt.BVSort(accWidth), args...)
	}

	acc := init

	for i := uint64(0); i < n; i++ {
		v := extendTo(b, l.At(i), accWidth)
		if acc == nil {
			acc = v
			continue
		}

		acc = b.Ite(b.BVUGT(acc, v), acc, v)
	}

	if acc == nil {
		acc = b.BVConst(0, accWidth)
	}

	return acc
}

// extendTo zero-extends or truncates a bit-vector to width, via an
// uninterpreted resize application when the widths differ (the term
// algebra has no native extend/truncate operator — §4.7 only lists the
// core arithmetic/array kinds — so a resize is itself modeled as an
// application, same as Encoding.Extend/Truncate do for floats).
func extendTo(b *smt.Builder, a *smt.Term, width uint) *smt.Term {
	if a.Sort().Width() == width {
		return a
	}

	return b.App("int.resize", smt.BVSort(width), a)
}
