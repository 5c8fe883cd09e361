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

// MatMul computes 2-D matrix multiplication t·other (or t·otherᵀ when
// bTransposed), reducing over the shared inner dimension with the
// element type's dot (spec.md §4.2's "dot/sum/max" reduction family).
func (t *Tensor) MatMul(other *Tensor, bTransposed bool, init *smt.Term) (*Tensor, error) {
	if t.Rank() != 2 || other.Rank() != 2 {
		return nil, unsupported("MatMul: operands must be rank 2, got %d/%d", t.Rank(), other.Rank())
	}

	if t.elemType != other.elemType {
		return nil, unsupported("MatMul: element type mismatch %s vs %s", t.elemType, other.elemType)
	}

	ctx := t.ctx
	m, k := t.dims[0], t.dims[1]

	var n, kOther Index
	if bTransposed {
		n, kOther = other.dims[0], other.dims[1]
	} else {
		kOther, n = other.dims[0], other.dims[1]
	}

	outDims := []Index{m, n}

	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, outDims)
	i, j := coords[0], coords[1]

	kVar := BoundIndexVars(ctx, 1)[0]

	lhsBody := ctx.B.Select(t.arr, to1D(ctx, []Index{i, kVar}, t.dims).Expr())

	var rhsCoords []Index
	if bTransposed {
		rhsCoords = []Index{j, kVar}
	} else {
		rhsCoords = []Index{kVar, j}
	}

	rhsBody := ctx.B.Select(other.arr, to1D(ctx, rhsCoords, other.dims).Expr())

	lhs := lambda1D(ctx, kVar, lhsBody, k)
	rhs := lambda1D(ctx, kVar, rhsBody, kOther)

	body := dotReduce(ctx, t.elemType, lhs, rhs, init)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, outDims),
		arr:         ctx.B.Lambda(idx1D.Expr(), body),
		initialized: allTrueArray(ctx),
	}, nil
}

// Dot reduces a rank-1 tensor against another of equal (possibly
// symbolic) length.
func (t *Tensor) Dot(other *Tensor, init *smt.Term) (*smt.Term, error) {
	if t.Rank() != 1 || other.Rank() != 1 {
		return nil, unsupported("Dot: operands must be rank 1, got %d/%d", t.Rank(), other.Rank())
	}

	if t.elemType != other.elemType {
		return nil, unsupported("Dot: element type mismatch %s vs %s", t.elemType, other.elemType)
	}

	ctx := t.ctx
	v := BoundIndexVars(ctx, 1)[0]
	lhsBody := ctx.B.Select(t.arr, to1D(ctx, []Index{v}, t.dims).Expr())
	rhsBody := ctx.B.Select(other.arr, to1D(ctx, []Index{v}, other.dims).Expr())

	lhs := lambda1D(ctx, v, lhsBody, t.dims[0])
	rhs := lambda1D(ctx, v, rhsBody, other.dims[0])

	return dotReduce(ctx, t.elemType, lhs, rhs, init), nil
}

// Sum reduces every element of t to a scalar.
func (t *Tensor) Sum(init *smt.Term) *smt.Term {
	ctx := t.ctx
	v := BoundIndexVars(ctx, 1)[0]
	body := ctx.B.Select(t.arr, v.Expr())

	return sumReduce(ctx, t.elemType, lambda1D(ctx, v, body, t.totalSize()), init)
}

// SumAxis reduces t along one axis, producing a tensor with that axis
// removed (spec.md §4.2's axis-wise reduction family).
func (t *Tensor) SumAxis(axis int, init *smt.Term) (*Tensor, error) {
	rank := t.Rank()
	if axis < 0 || axis >= rank {
		return nil, unsupported("SumAxis: axis %d out of range for rank %d", axis, rank)
	}

	if rank == 1 {
		return nil, unsupported("SumAxis: rank-1 tensor has no remaining axes; use Sum")
	}

	ctx := t.ctx
	outDims := make([]Index, 0, rank-1)

	for a, d := range t.dims {
		if a != axis {
			outDims = append(outDims, d)
		}
	}

	idx1D := BoundIndexVars(ctx, len(outDims))
	reduceVar := BoundIndexVars(ctx, 1)[0]

	fullCoords := make([]Index, rank)
	pos := 0

	for a := range t.dims {
		if a == axis {
			fullCoords[a] = reduceVar
		} else {
			fullCoords[a] = idx1D[pos]
			pos++
		}
	}

	body := ctx.B.Select(t.arr, to1D(ctx, fullCoords, t.dims).Expr())
	l := lambda1D(ctx, reduceVar, body, t.dims[axis])
	elem := sumReduce(ctx, t.elemType, l, init)

	out1D := BoundIndexVars(ctx, 1)[0]
	outCoords := from1D(ctx, out1D, outDims)
	substituted := substituteVars(ctx, elem, idx1D, outCoords)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, outDims),
		arr:         ctx.B.Lambda(out1D.Expr(), substituted),
		initialized: allTrueArray(ctx),
	}, nil
}
