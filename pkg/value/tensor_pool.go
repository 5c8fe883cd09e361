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
	"math"

	"github.com/symtv/tvcore/pkg/smt"
)

// poolOutDims computes the [N, D'..., C] output shape for a 4-D NHWC
// pooling window, sharing outSpatialDim with Conv (no dilation support:
// dilation is fixed at 1 for every spatial axis).
func poolOutDims(ctx *Context, dims []Index, window, strides []uint64) []Index {
	rank := len(dims)
	out := make([]Index, rank)
	out[0] = dims[0]
	out[rank-1] = dims[rank-1]

	for s := 0; s < rank-2; s++ {
		out[1+s] = outSpatialDim(ctx, dims[1+s], ConstIndex(ctx, window[s]), strides[s], 1)
	}

	return out
}

// poolKernel builds one output element as a reduction of t's window
// starting at the strided base coordinate, sharing the row-major window
// addressing convKernel uses for conv.
func (t *Tensor) poolKernel(window, strides []uint64, reduce func(l lambda1DArgs) *smt.Term) (*Tensor, error) {
	rank := t.Rank()
	if rank != 4 {
		return nil, unsupported("pool: expected rank 4, got %d", rank)
	}

	spatialRank := rank - 2
	if len(window) != spatialRank || len(strides) != spatialRank {
		return nil, unsupported("pool: expected %d window/strides, got %d/%d", spatialRank, len(window), len(strides))
	}

	ctx := t.ctx
	outDims := poolOutDims(ctx, t.dims, window, strides)

	windowDims := make([]Index, spatialRank)
	for s := range window {
		windowDims[s] = ConstIndex(ctx, window[s])
	}

	windowSize := windowDims[0]
	for _, d := range windowDims[1:] {
		windowSize = windowSize.Mul(d)
	}

	idx1D := BoundIndexVars(ctx, 1)[0]
	outCoords := from1D(ctx, idx1D, outDims)
	n, c := outCoords[0], outCoords[rank-1]

	cubeVar := BoundIndexVars(ctx, 1)[0]
	f := from1D(ctx, cubeVar, windowDims)

	coords := make([]Index, rank)
	coords[0] = n
	coords[rank-1] = c

	for s := 0; s < spatialRank; s++ {
		coords[1+s] = outCoords[1+s].Mul(ConstIndex(ctx, strides[s])).Add(f[s])
	}

	body := ctx.B.Select(t.arr, to1D(ctx, coords, t.dims).Expr())
	l := lambda1DArgs{ctx: ctx, boundVar: cubeVar, body: body, length: windowSize}
	result := reduce(l)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, outDims),
		arr:         ctx.B.Lambda(idx1D.Expr(), result),
		initialized: allTrueArray(ctx),
	}, nil
}

// lambda1DArgs carries the pieces poolKernel's reduce callback needs to
// build an aop.Lambda1D without re-deriving the bound variable.
type lambda1DArgs struct {
	ctx      *Context
	boundVar Index
	body     *smt.Term
	length   Index
}

// SumPool sums a 4-D NHWC window (integer or float element types).
func (t *Tensor) SumPool(window, strides []uint64) (*Tensor, error) {
	return t.poolKernel(window, strides, func(l lambda1DArgs) *smt.Term {
		return sumReduce(l.ctx, t.elemType, lambda1D(l.ctx, l.boundVar, l.body, l.length), nil)
	})
}

// AvgPool averages a 4-D NHWC window. Restricted to float element types:
// the present spec's integer reduction machinery has no division
// operator wired in (Open Question (i)).
func (t *Tensor) AvgPool(window, strides []uint64) (*Tensor, error) {
	if !t.elemType.IsFloat() {
		return nil, unsupported("AvgPool: element type %s is not float", t.elemType)
	}

	ctx := t.ctx

	return t.poolKernel(window, strides, func(l lambda1DArgs) *smt.Term {
		sum := sumReduce(l.ctx, t.elemType, lambda1D(l.ctx, l.boundVar, l.body, l.length), nil)
		n := float64(1)
		for _, w := range window {
			n *= float64(w)
		}

		divisor := floatLiteral(ctx, t.elemType, n)

		return WrapFloat(ctx, sum, t.elemType).Div(WrapFloat(ctx, divisor, t.elemType)).Expr()
	})
}

// MaxPool takes the max over a 4-D NHWC window.
func (t *Tensor) MaxPool(window, strides []uint64) (*Tensor, error) {
	return t.poolKernel(window, strides, func(l lambda1DArgs) *smt.Term {
		return maxReduce(l.ctx, t.elemType, lambda1D(l.ctx, l.boundVar, l.body, l.length), nil)
	})
}

// floatLiteral builds a Float constant from a host float64, rounding to
// ty's bit width. Only exact small integers (pool window sizes) are
// passed in practice, so a direct IEEE-754 bit encode is exact.
func floatLiteral(ctx *Context, ty ElemType, v float64) *smt.Term {
	var bits uint64

	if ty.Bits() == 32 {
		bits = uint64(math.Float32bits(float32(v)))
	} else {
		bits = math.Float64bits(v)
	}

	return ConstFloat(ctx, bits, ty).Expr()
}
