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
	"strconv"

	"github.com/symtv/tvcore/pkg/smt"
	"github.com/symtv/tvcore/pkg/util"
)

// ElemKind discriminates the three element-type kinds the IR type system
// may supply (spec.md §3: "exactly one kind in {IntegerBits(w<=64),
// FloatBits({32,64}), IndexType}").
type ElemKind uint8

const (
	// ElemInteger is a bit-vector integer of some width <= 64.
	ElemInteger ElemKind = iota
	// ElemFloat is an IEEE-754 binary32 or binary64 value.
	ElemFloat
	// ElemIndex is the Index type (a fixed-width bit-vector, width from
	// Context.Bits).
	ElemIndex
)

// ElemType is the opaque element type E of spec.md §3, as projected from
// the IR type system (an out-of-scope collaborator — §6) into a value this
// package can switch on.
type ElemType struct {
	kind ElemKind
	bits uint // integer width, or float width (32/64); unused for Index
}

// IntegerType builds the element type for a bit-vector integer of width
// bits (<= 64; wider is a Non-goal, rejected by PrimSort).
func IntegerType(bits uint) ElemType { return ElemType{kind: ElemInteger, bits: bits} }

// Float32Type is the binary32 element type.
func Float32Type() ElemType { return ElemType{kind: ElemFloat, bits: 32} }

// Float64Type is the binary64 element type.
func Float64Type() ElemType { return ElemType{kind: ElemFloat, bits: 64} }

// IndexElemType is the Index element type.
func IndexElemType() ElemType { return ElemType{kind: ElemIndex} }

// IsInteger reports whether e is an integer element type.
func (e ElemType) IsInteger() bool { return e.kind == ElemInteger }

// IsFloat reports whether e is a float element type.
func (e ElemType) IsFloat() bool { return e.kind == ElemFloat }

// IsIndex reports whether e is the Index element type.
func (e ElemType) IsIndex() bool { return e.kind == ElemIndex }

// Bits returns the bit-width of an integer or float element type. Panics
// for Index (whose width lives on Context, not on the type itself).
func (e ElemType) Bits() uint {
	assert(e.kind != ElemIndex, "Bits() of Index element type")
	return e.bits
}

func (e ElemType) String() string {
	switch e.kind {
	case ElemInteger:
		return "i" + strconv.Itoa(int(e.bits))
	case ElemFloat:
		return "f" + strconv.Itoa(int(e.bits))
	default:
		return "index"
	}
}

// PrimSort maps an element type to its SMT sort: a bit-vector of width w
// for integers, the FP backend's sort for floats, Index's fixed-width
// bit-vector sort for index. Returns (_, false) when e is not primitive —
// this is the "is one of those kinds" gate every other constructor in this
// package calls through PrimSort/mustPrimSort before allocating a term (spec.md
// §7: "validates its preconditions up front... before any SMT term is
// allocated").
func PrimSort(ctx *Context, e ElemType) (smt.Sort, bool) {
	switch e.kind {
	case ElemInteger:
		if e.bits == 0 || e.bits > 64 {
			return smt.Sort{}, false
		}

		return smt.BVSort(e.bits), true
	case ElemFloat:
		enc, ok := ctx.encodingFor(e)
		if !ok {
			return smt.Sort{}, false
		}

		return enc.Sort(), true
	case ElemIndex:
		return smt.BVSort(ctx.Bits), true
	default:
		return smt.Sort{}, false
	}
}

// mustPrimSort is PrimSort, raising *Unsupported instead of returning ok.
func mustPrimSort(ctx *Context, e ElemType) (smt.Sort, error) {
	s, ok := PrimSort(ctx, e)
	if !ok {
		return smt.Sort{}, unsupported("no SMT sort for element type %s", e)
	}

	return s, nil
}

// getZero returns the neutral element for addition of e: the all-zero
// bit-vector for integers and Index, the FP backend's signed-positive zero
// for floats. Absent when e is not primitive.
func getZero(ctx *Context, e ElemType) util.Option[*smt.Term] {
	switch e.kind {
	case ElemInteger:
		return util.Some(ctx.B.BVConst(0, e.bits))
	case ElemIndex:
		return util.Some(ctx.B.BVConst(0, ctx.Bits))
	case ElemFloat:
		enc, ok := ctx.encodingFor(e)
		if !ok {
			return util.None[*smt.Term]()
		}

		return util.Some(enc.Zero(false))
	default:
		return util.None[*smt.Term]()
	}
}

// getIdentity returns the reduction-friendly additive identity for e. For
// integers/Index this coincides with getZero; for floats the backend may
// distinguish a reduction seed from plain +0 (spec.md §4.1).
func getIdentity(ctx *Context, e ElemType) util.Option[*smt.Term] {
	if e.kind == ElemFloat {
		enc, ok := ctx.encodingFor(e)
		if !ok {
			return util.None[*smt.Term]()
		}

		return util.Some(enc.Zero(true))
	}

	return getZero(ctx, e)
}
