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
	"testing"

	"github.com/symtv/tvcore/pkg/smt"
)

func denseInt(ctx *Context, vals ...uint64) []*smt.Term {
	elems := make([]*smt.Term, len(vals))
	for i, v := range vals {
		elems[i] = ctx.B.BVConst(v, 32)
	}

	return elems
}

func TestTensorDot(t *testing.T) {
	ctx := NewContext()

	a, err := NewDenseTensor1D(ctx, IntegerType(32), denseInt(ctx, 1, 2, 3))
	if err != nil {
		t.Fatalf("NewDenseTensor1D: %v", err)
	}

	b, err := NewDenseTensor1D(ctx, IntegerType(32), denseInt(ctx, 4, 5, 6))
	if err != nil {
		t.Fatalf("NewDenseTensor1D: %v", err)
	}

	dot, err := a.Dot(b, nil)
	if err != nil {
		t.Fatalf("Dot: %v", err)
	}

	// 1*4 + 2*5 + 3*6 = 32
	if got := deepSimplify(ctx.B, dot); !got.IsConst() || got.ConstValue() != 32 {
		t.Errorf("Dot([1,2,3],[4,5,6]) = %s, want 32", got)
	}
}

func TestTensorSum(t *testing.T) {
	ctx := NewContext()

	a, err := NewDenseTensor1D(ctx, IntegerType(32), denseInt(ctx, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("NewDenseTensor1D: %v", err)
	}

	if got := deepSimplify(ctx.B, a.Sum(nil)); !got.IsConst() || got.ConstValue() != 10 {
		t.Errorf("Sum([1,2,3,4]) = %s, want 10", got)
	}
}

func TestTensorSumAxis(t *testing.T) {
	ctx := NewContext()

	// 2x3 matrix: [[1,2,3],[4,5,6]]
	a, err := NewDenseTensor(ctx, IntegerType(32), denseInt(ctx, 1, 2, 3, 4, 5, 6), constIdx(ctx, 2, 3))
	if err != nil {
		t.Fatalf("NewDenseTensor: %v", err)
	}

	summed, err := a.SumAxis(1, nil)
	if err != nil {
		t.Fatalf("SumAxis: %v", err)
	}

	for i, want := range []uint64{6, 15} {
		v, _ := summed.Get(constIdx(ctx, uint64(i)))
		if got := deepSimplify(ctx.B, v); !got.IsConst() || got.ConstValue() != want {
			t.Errorf("summed[%d] = %s, want %d", i, got, want)
		}
	}
}

func TestTensorMatMul(t *testing.T) {
	ctx := NewContext()

	// A = [[1,2],[3,4]] (2x2), B = [[5,6],[7,8]] (2x2)
	a, err := NewDenseTensor(ctx, IntegerType(32), denseInt(ctx, 1, 2, 3, 4), constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewDenseTensor: %v", err)
	}

	b, err := NewDenseTensor(ctx, IntegerType(32), denseInt(ctx, 5, 6, 7, 8), constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewDenseTensor: %v", err)
	}

	c, err := a.MatMul(b, false, nil)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}

	// [[1*5+2*7, 1*6+2*8], [3*5+4*7, 3*6+4*8]] = [[19,22],[43,50]]
	want := [][]uint64{{19, 22}, {43, 50}}
	for i := uint64(0); i < 2; i++ {
		for j := uint64(0); j < 2; j++ {
			v, _ := c.Get(constIdx(ctx, i, j))
			if got := deepSimplify(ctx.B, v); !got.IsConst() || got.ConstValue() != want[i][j] {
				t.Errorf("C[%d][%d] = %s, want %d", i, j, got, want[i][j])
			}
		}
	}
}

func TestTensorMatMulRankMismatch(t *testing.T) {
	ctx := NewContext()

	a, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	b, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	if _, err := a.MatMul(b, false, nil); err == nil {
		t.Errorf("MatMul of a rank-1 operand should be unsupported")
	}
}
