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

import "github.com/symtv/tvcore/pkg/smt"

// ShapedValue is the abstract supertype of every value with an N-D shape
// (spec.md §2: "Abstract supertype; dim vector; generic convolution
// kernel"). Tensor embeds it for its dims/addressing; the convolution
// kernel below is shared by every conv layout and by depthwise conv.
type ShapedValue struct {
	ctx      *Context
	elemType ElemType
	dims     []Index
}

// newShapedValue validates invariant 6 is checkable (rank >= 1) and builds
// the common header shared by every shaped constructor.
func newShapedValue(ctx *Context, elemType ElemType, dims []Index) ShapedValue {
	assert(len(dims) >= 1, "ShapedValue: rank must be >= 1")
	return ShapedValue{ctx: ctx, elemType: elemType, dims: dims}
}

// Dims returns the dimension vector.
func (s ShapedValue) Dims() []Index { return append([]Index(nil), s.dims...) }

// Rank returns the number of dimensions.
func (s ShapedValue) Rank() int { return len(s.dims) }

// ElemType returns the element type.
func (s ShapedValue) ElemType() ElemType { return s.elemType }

// Context returns the owning Context.
func (s ShapedValue) Context() *Context { return s.ctx }

// literalDims reports, for each dim, its literal value when known; a
// tensor/memref built from IR-known static sizes has every dim literal,
// which is what lets WellDefined() and the abstraction-cache permutation
// detectors (tensor_const.go) work structurally instead of symbolically.
func (s ShapedValue) literalDims() ([]uint64, bool) {
	out := make([]uint64, len(s.dims))

	for i, d := range s.dims {
		if !d.t.IsConst() {
			return nil, false
		}

		out[i] = d.t.ConstValue()
	}

	return out, true
}

// totalSize returns ∏ dims as an Index.
func (s ShapedValue) totalSize() Index {
	acc := s.dims[0]
	for _, d := range s.dims[1:] {
		acc = acc.Mul(d)
	}

	return acc
}

// WellDefined builds the Boolean side-condition of invariant 6: the 1-D
// size is bounded by MaxTensorSize, and each non-literal dim is bounded by
// MaxDimSize. Literal-only shapes are unconditionally well-defined.
func (s ShapedValue) WellDefined() *smt.Term {
	b := s.ctx.B

	if _, allLiteral := s.literalDims(); allLiteral {
		return b.BoolConst(true)
	}

	conds := make([]*smt.Term, 0, len(s.dims)+1)
	conds = append(conds, s.totalSize().ULT(ConstIndex(s.ctx, s.ctx.MaxTensorSize+1)))

	for _, d := range s.dims {
		if d.t.IsConst() {
			continue
		}

		conds = append(conds, d.ULT(ConstIndex(s.ctx, s.ctx.MaxDimSize+1)))
	}

	return b.And(conds...)
}

// to1D linearises N-D idxs into a row-major 1-D offset over dims: the last
// axis varies fastest (spec.md §4.2's tie-break for constant enumeration
// uses the same ordering).
func to1D(ctx *Context, idxs []Index, dims []Index) Index {
	assert(len(idxs) == len(dims), "to1D: rank mismatch %d vs %d", len(idxs), len(dims))

	off := idxs[0]
	for i := 1; i < len(idxs); i++ {
		off = off.Mul(dims[i]).Add(idxs[i])
	}

	return off
}

// from1D splits a 1-D offset back into N-D coordinates over dims.
func from1D(ctx *Context, idx Index, dims []Index) []Index {
	n := len(dims)
	out := make([]Index, n)
	rem := idx

	for i := n - 1; i >= 0; i-- {
		out[i] = rem.URem(dims[i])
		rem = rem.UDiv(dims[i])
	}

	return out
}

// isInBounds builds ⋀ idxs_i < dims_i, simplified (spec.md §4.2).
func isInBounds(ctx *Context, idxs, dims []Index) *smt.Term {
	assert(len(idxs) == len(dims), "isInBounds: rank mismatch %d vs %d", len(idxs), len(dims))

	conds := make([]*smt.Term, len(idxs))
	for i := range idxs {
		conds[i] = idxs[i].ULT(dims[i])
	}

	return ctx.B.Simplify(ctx.B.And(conds...))
}

// convAccessor reads one scalar element of a convolution operand (input or
// filter) at an N-D coordinate, already permuted into the operand's own
// axis order. Both Tensor.conv (three layouts) and the depthwise rewrite
// build one of these per operand and hand it to convKernel.
type convAccessor func(coords []Index) *smt.Term

// convKernel is ShapedValue's "generic convolution kernel": given output
// spatial coordinates, it builds the 1-D reduction lambda over the
// (∏ filterDims × inChannels) cube and reduces it with the element type's
// dot (FP backend or integer), seeded by init. It knows nothing about axis
// layout — conv/NHWC_HWCF/NCHW_FCHW/NHWC_FHWC (tensor_conv.go) differ only
// in how they build `input`/`filter` and the cube's coordinate mapping.
func convKernel(ctx *Context, elemType ElemType, cubeSize Index,
	toInputCoord, toFilterCoord func(cube Index) []Index,
	input, filter convAccessor, init *smt.Term) *smt.Term {
	cubeVar := BoundIndexVars(ctx, 1)[0]
	inputBody := input(toInputCoord(cubeVar))
	filterBody := filter(toFilterCoord(cubeVar))

	lhs := lambda1D(ctx, cubeVar, inputBody, cubeSize)
	rhs := lambda1D(ctx, cubeVar, filterBody, cubeSize)

	return dotReduce(ctx, elemType, lhs, rhs, init)
}
