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

// ConvLayout selects one of the three axis orderings spec.md §4.2
// supports for convolution operands.
type ConvLayout uint8

const (
	// NHWC_HWCF: input [N, D..., IC], filter [D..., IC, OC], output [N, D'..., OC].
	NHWC_HWCF ConvLayout = iota
	// NCHW_FCHW: input [N, IC, D...], filter [OC, IC, D...], output [N, OC, D'...].
	NCHW_FCHW
	// NHWC_FHWC: input [N, D..., IC], filter [OC, D..., IC], output [N, D'..., OC].
	NHWC_FHWC
)

// convLayoutDesc records, for one ConvLayout, the axis position of each
// logical role (batch, per-spatial-axis, input/output channel) in the
// input, filter and output tensors. Every layout shares the same
// cube-reduction kernel (convKernel); only this axis bookkeeping differs.
type convLayoutDesc struct {
	inputN, inputIC   int
	inputSpatial      func(s int) int
	filterIC, filterOC int
	filterSpatial     func(s int) int
	outputN, outputOC int
	outputSpatial     func(s int) int
}

func describeConvLayout(layout ConvLayout, spatialRank, rank int) convLayoutDesc {
	switch layout {
	case NHWC_HWCF:
		return convLayoutDesc{
			inputN: 0, inputIC: rank - 1,
			inputSpatial: func(s int) int { return 1 + s },
			filterIC:     spatialRank, filterOC: spatialRank + 1,
			filterSpatial: func(s int) int { return s },
			outputN:       0, outputOC: rank - 1,
			outputSpatial: func(s int) int { return 1 + s },
		}
	case NCHW_FCHW:
		return convLayoutDesc{
			inputN: 0, inputIC: 1,
			inputSpatial: func(s int) int { return 2 + s },
			filterIC:     1, filterOC: 0,
			filterSpatial: func(s int) int { return 2 + s },
			outputN:       0, outputOC: 1,
			outputSpatial: func(s int) int { return 2 + s },
		}
	case NHWC_FHWC:
		return convLayoutDesc{
			inputN: 0, inputIC: rank - 1,
			inputSpatial: func(s int) int { return 1 + s },
			filterIC:     spatialRank + 1, filterOC: 0,
			filterSpatial: func(s int) int { return 1 + s },
			outputN:       0, outputOC: rank - 1,
			outputSpatial: func(s int) int { return 1 + s },
		}
	default:
		assert(false, "describeConvLayout: unknown layout %d", layout)
		return convLayoutDesc{}
	}
}

// outSpatialDim computes D'_i = (D_i - dilation_i*F_i + stride_i) udiv
// stride_i (spec.md §4.2).
func outSpatialDim(ctx *Context, d, f Index, stride, dilation uint64) Index {
	str := ConstIndex(ctx, stride)
	dil := ConstIndex(ctx, dilation)

	return d.Sub(dil.Mul(f)).Add(str).UDiv(str)
}

// Conv computes convolution of t (the input) with filter, for rank >= 3
// operands laid out per layout, reducing over the ∏F × IC cube with the
// element type's dot, seeded by init (nil uses the type's additive
// identity).
func (t *Tensor) Conv(filter *Tensor, layout ConvLayout, strides, dilations []uint64, init *smt.Term) (*Tensor, error) {
	rank := t.Rank()
	if rank < 3 {
		return nil, unsupported("Conv: rank %d, need >= 3", rank)
	}

	spatialRank := rank - 2
	if len(strides) != spatialRank || len(dilations) != spatialRank {
		return nil, unsupported("Conv: expected %d strides/dilations, got %d/%d", spatialRank, len(strides), len(dilations))
	}

	if filter.Rank() != rank {
		return nil, unsupported("Conv: filter rank %d != input rank %d", filter.Rank(), rank)
	}

	if t.elemType != filter.elemType {
		return nil, unsupported("Conv: element type mismatch %s vs %s", t.elemType, filter.elemType)
	}

	ctx := t.ctx
	desc := describeConvLayout(layout, spatialRank, rank)

	icDim := t.dims[desc.inputIC]
	ocDim := filter.dims[desc.filterOC]

	filterSpatialDims := make([]Index, spatialRank)
	outSpatial := make([]Index, spatialRank)

	for s := 0; s < spatialRank; s++ {
		filterSpatialDims[s] = filter.dims[desc.filterSpatial(s)]
		outSpatial[s] = outSpatialDim(ctx, t.dims[desc.inputSpatial(s)], filterSpatialDims[s], strides[s], dilations[s])
	}

	outDims := make([]Index, rank)
	outDims[desc.outputN] = t.dims[desc.inputN]
	outDims[desc.outputOC] = ocDim

	for s := 0; s < spatialRank; s++ {
		outDims[desc.outputSpatial(s)] = outSpatial[s]
	}

	cubeDims := append(append([]Index(nil), filterSpatialDims...), icDim)
	cubeSize := cubeDims[0]
	for _, d := range cubeDims[1:] {
		cubeSize = cubeSize.Mul(d)
	}

	idx1D := BoundIndexVars(ctx, 1)[0]
	outCoords := from1D(ctx, idx1D, outDims)
	n := outCoords[desc.outputN]
	oc := outCoords[desc.outputOC]

	spatialOut := make([]Index, spatialRank)
	for s := 0; s < spatialRank; s++ {
		spatialOut[s] = outCoords[desc.outputSpatial(s)]
	}

	toInputCoord := func(cube Index) []Index {
		f := from1D(ctx, cube, cubeDims)
		coords := make([]Index, rank)
		coords[desc.inputN] = n
		coords[desc.inputIC] = f[spatialRank]

		for s := 0; s < spatialRank; s++ {
			inSpatial := spatialOut[s].Mul(ConstIndex(ctx, strides[s])).Add(f[s].Mul(ConstIndex(ctx, dilations[s])))
			coords[desc.inputSpatial(s)] = inSpatial
		}

		return coords
	}

	toFilterCoord := func(cube Index) []Index {
		f := from1D(ctx, cube, cubeDims)
		coords := make([]Index, rank)
		coords[desc.filterIC] = f[spatialRank]
		coords[desc.filterOC] = oc

		for s := 0; s < spatialRank; s++ {
			coords[desc.filterSpatial(s)] = f[s]
		}

		return coords
	}

	inputAccessor := func(coords []Index) *smt.Term { return ctx.B.Select(t.arr, to1D(ctx, coords, t.dims).Expr()) }
	filterAccessor := func(coords []Index) *smt.Term {
		return ctx.B.Select(filter.arr, to1D(ctx, coords, filter.dims).Expr())
	}

	body := convKernel(ctx, t.elemType, cubeSize, toInputCoord, toFilterCoord, inputAccessor, filterAccessor, init)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, outDims),
		arr:         ctx.B.Lambda(idx1D.Expr(), body),
		initialized: allTrueArray(ctx),
	}, nil
}

// addElem adds two locked element terms according to elemType, dispatching
// to the FP backend for floats and raw bit-vector addition otherwise.
func addElem(ctx *Context, elemType ElemType, a, b *smt.Term) *smt.Term {
	if elemType.IsFloat() {
		return WrapFloat(ctx, a, elemType).Add(WrapFloat(ctx, b, elemType)).Expr()
	}

	return ctx.B.BVAdd(a, b)
}

// DepthwiseConv2D rewrites a depthwise step over a 4-D NHWC input [N,H,W,C]
// and a [KH,KW,C,M] filter into one kernel per (c,m) output-channel pair,
// producing an [N,OH,OW,C*M] result. With bias present, it is added to the
// accumulator per output channel; without, the unbiased sum is returned —
// both cases share the same output shape (spec.md §4.2).
func (t *Tensor) DepthwiseConv2D(filter *Tensor, strides, dilations []uint64, bias *Tensor) (*Tensor, error) {
	if t.Rank() != 4 || filter.Rank() != 4 {
		return nil, unsupported("DepthwiseConv2D: input/filter must be rank 4, got %d/%d", t.Rank(), filter.Rank())
	}

	if len(strides) != 2 || len(dilations) != 2 {
		return nil, unsupported("DepthwiseConv2D: need 2 strides/dilations, got %d/%d", len(strides), len(dilations))
	}

	if t.elemType != filter.elemType {
		return nil, unsupported("DepthwiseConv2D: element type mismatch %s vs %s", t.elemType, filter.elemType)
	}

	ctx := t.ctx
	n0, h, w, c := t.dims[0], t.dims[1], t.dims[2], t.dims[3]
	kh, kw, fc, m := filter.dims[0], filter.dims[1], filter.dims[2], filter.dims[3]
	_ = fc

	oh := outSpatialDim(ctx, h, kh, strides[0], dilations[0])
	ow := outSpatialDim(ctx, w, kw, strides[1], dilations[1])
	cm := c.Mul(m)

	outDims := []Index{n0, oh, ow, cm}
	cubeDims := []Index{kh, kw}
	cubeSize := kh.Mul(kw)

	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, outDims)
	n, ohIdx, owIdx, cmIdx := coords[0], coords[1], coords[2], coords[3]
	cIdx := cmIdx.UDiv(m)
	mIdx := cmIdx.URem(m)

	toInputCoord := func(cube Index) []Index {
		f := from1D(ctx, cube, cubeDims)
		ih := ohIdx.Mul(ConstIndex(ctx, strides[0])).Add(f[0].Mul(ConstIndex(ctx, dilations[0])))
		iw := owIdx.Mul(ConstIndex(ctx, strides[1])).Add(f[1].Mul(ConstIndex(ctx, dilations[1])))

		return []Index{n, ih, iw, cIdx}
	}

	toFilterCoord := func(cube Index) []Index {
		f := from1D(ctx, cube, cubeDims)
		return []Index{f[0], f[1], cIdx, mIdx}
	}

	inputAccessor := func(coords []Index) *smt.Term { return ctx.B.Select(t.arr, to1D(ctx, coords, t.dims).Expr()) }
	filterAccessor := func(coords []Index) *smt.Term {
		return ctx.B.Select(filter.arr, to1D(ctx, coords, filter.dims).Expr())
	}

	body := convKernel(ctx, t.elemType, cubeSize, toInputCoord, toFilterCoord, inputAccessor, filterAccessor, nil)

	if bias != nil {
		biasVal := ctx.B.Select(bias.arr, cmIdx.Expr())
		body = addElem(ctx, t.elemType, body, biasVal)
	}

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, outDims),
		arr:         ctx.B.Lambda(idx1D.Expr(), body),
		initialized: allTrueArray(ctx),
	}, nil
}
