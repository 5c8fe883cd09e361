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

// Package aop ("arithmetic op") is the FP/Integer encoding backend
// capability interface of §9's design note: "keep the FP backend as a
// capability interface — one value per element type". It is consumed by
// pkg/value's Float type exactly as the original's `aop::getFpEncoding`
// hook is consumed by value.cpp.
package aop

import "github.com/symtv/tvcore/pkg/smt"

// Predicate enumerates the floating-point comparison predicates Float.Cmp
// supports.
type Predicate uint8

// Floating-point comparison predicates. "O" prefixes are ordered
// (false whenever either operand is NaN); "U" prefixes are unordered (true
// whenever either operand is NaN).
const (
	OEQ Predicate = iota
	OLT
	OLE
	OGT
	OGE
	ONE
	UEQ
	ULT
	ULE
	UGT
	UGE
)

// Lambda1D is a symbolic 1-D sequence: an array-sorted SMT term addressed
// by a bound index variable, together with its declared length. Dot/Sum/Max
// reduce over it.
type Lambda1D struct {
	Builder  *smt.Builder
	BoundVar *smt.Term
	Body     *smt.Term
	Len      *smt.Term // Index-sorted; may be symbolic
}

// At returns the element at concrete offset i, by beta-reducing Body.
func (l Lambda1D) At(i uint64) *smt.Term {
	idx := l.Builder.BVConst(i, l.BoundVar.Sort().Width())

	return l.Builder.Substitute(l.Body, l.BoundVar, idx)
}

// Encoding is the capability interface implemented once per supported
// float element type (f32, f64). It owns both arithmetic and the
// reductions (Dot/Sum/Max) so that accumulation order/width policy stays
// with the type that knows its own rounding behaviour.
type Encoding interface {
	// Sort returns the SMT sort used to represent this type's values
	// (a bit-vector wide enough to hold its IEEE-754 bit pattern).
	Sort() smt.Sort
	// Zero returns the neutral element for addition. When identity is
	// true, returns the reduction-friendly identity variant (the backend
	// may return the same value as Zero(false); the distinction exists so
	// that a backend which distinguishes +0 from a reduction seed can do
	// so without changing this interface).
	Zero(identity bool) *smt.Term
	// Constant builds the value whose IEEE-754 bit pattern is bits.
	Constant(bits uint64) *smt.Term
	Add(a, b *smt.Term) *smt.Term
	Mul(a, b *smt.Term) *smt.Term
	Div(a, b *smt.Term) *smt.Term
	Abs(a *smt.Term) *smt.Term
	Neg(a *smt.Term) *smt.Term
	// Cmp returns a 1-bit bit-vector encoding of pred(a, b).
	Cmp(pred Predicate, a, b *smt.Term) *smt.Term
	// Extend widens a to a larger-width encoding (e.g. f32 -> f64).
	Extend(a *smt.Term, dst Encoding) *smt.Term
	// Truncate narrows a to a smaller-width encoding.
	Truncate(a *smt.Term, dst Encoding) *smt.Term
	// CastFromSignedInt converts a two's-complement signed bit-vector to
	// this type.
	CastFromSignedInt(a *smt.Term) *smt.Term
	Exp(a *smt.Term) *smt.Term
	// Dot computes sum_i lhs[i]*rhs[i], seeded by init (or Zero(true) if
	// init is nil).
	Dot(lhs, rhs Lambda1D, init *smt.Term) *smt.Term
	// Sum computes sum_i l[i], seeded by init.
	Sum(l Lambda1D, init *smt.Term) *smt.Term
	// Max computes max_i l[i], seeded by init.
	Max(l Lambda1D, init *smt.Term) *smt.Term
	// IsNaN returns a 1-bit predicate testing whether a is NaN.
	IsNaN(a *smt.Term) *smt.Term
}
