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
	"errors"
	"strings"
	"testing"

	"github.com/symtv/tvcore/pkg/smt"
)

func TestNewDenseTensorGet(t *testing.T) {
	ctx := NewContext()

	elems := []*smt.Term{
		ctx.B.BVConst(10, 32),
		ctx.B.BVConst(20, 32),
		ctx.B.BVConst(30, 32),
		ctx.B.BVConst(40, 32),
	}

	tensor, err := NewDenseTensor(ctx, IntegerType(32), elems, constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewDenseTensor: %v", err)
	}

	val, inbounds := tensor.Get(constIdx(ctx, 1, 0))
	got := deepSimplify(ctx.B, val)

	if !got.IsConst() || got.ConstValue() != 30 {
		t.Errorf("dense[1,0] = %s, want 30", got)
	}

	if got := deepSimplify(ctx.B, inbounds); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("dense[1,0] should be inbounds, got %s", got)
	}
}

func TestNewSplatTensorWrapsUnsupportedElemType(t *testing.T) {
	ctx := NewContext()

	_, err := NewSplatTensor(ctx, IntegerType(65), ctx.B.BVConst(0, 32), constIdx(ctx, 2))
	if err == nil {
		t.Fatal("NewSplatTensor with a 65-bit integer element type should fail")
	}

	var u *Unsupported
	if !errors.As(err, &u) {
		t.Errorf("error should unwrap to *Unsupported via errors.Wrapf, got %T: %v", err, err)
	}

	if !strings.Contains(err.Error(), "NewSplatTensor") {
		t.Errorf("error %q should be wrapped with the constructor's name for context", err.Error())
	}
}

func TestTensorInsertOutOfBounds(t *testing.T) {
	ctx := NewContext()

	tensor, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	_, inbounds := tensor.Insert(ctx.B.BVConst(7, 32), constIdx(ctx, 5, 5))
	if got := deepSimplify(ctx.B, inbounds); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("insert at (5,5) into a 2x2 tensor should be out of bounds, got %s", got)
	}
}

func TestTensorReverse(t *testing.T) {
	ctx := NewContext()

	elems := []*smt.Term{ctx.B.BVConst(1, 32), ctx.B.BVConst(2, 32), ctx.B.BVConst(3, 32)}

	tensor, err := NewDenseTensor1D(ctx, IntegerType(32), elems)
	if err != nil {
		t.Fatalf("NewDenseTensor1D: %v", err)
	}

	rev := tensor.Reverse(0)

	for i, want := range []uint64{3, 2, 1} {
		v, _ := rev.Get(constIdx(ctx, uint64(i)))
		got := deepSimplify(ctx.B, v)
		if !got.IsConst() || got.ConstValue() != want {
			t.Errorf("reversed[%d] = %s, want %d", i, got, want)
		}
	}
}

func TestTensorTileWraps(t *testing.T) {
	ctx := NewContext()

	elems := []*smt.Term{ctx.B.BVConst(1, 32), ctx.B.BVConst(2, 32)}

	tensor, err := NewDenseTensor1D(ctx, IntegerType(32), elems)
	if err != nil {
		t.Fatalf("NewDenseTensor1D: %v", err)
	}

	tiled := tensor.Tile([]uint64{3})

	if got := evalIdx(ctx, tiled.dims[0]); got != 6 {
		t.Fatalf("tiled dim = %d, want 6", got)
	}

	for i, want := range []uint64{1, 2, 1, 2, 1, 2} {
		v, _ := tiled.Get(constIdx(ctx, uint64(i)))
		got := deepSimplify(ctx.B, v)
		if !got.IsConst() || got.ConstValue() != want {
			t.Errorf("tiled[%d] = %s, want %d", i, got, want)
		}
	}
}

func TestTensorTransposeRankMismatch(t *testing.T) {
	ctx := NewContext()

	tensor, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2, 2, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	if _, err := tensor.Transpose(); err == nil {
		t.Errorf("Transpose of a rank-3 tensor should be unsupported")
	}
}

func TestTensorRefinesIdentity(t *testing.T) {
	ctx := NewContext()

	elems := []*smt.Term{ctx.B.BVConst(1, 32), ctx.B.BVConst(2, 32), ctx.B.BVConst(3, 32), ctx.B.BVConst(4, 32)}

	a, err := NewDenseTensor(ctx, IntegerType(32), elems, constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewDenseTensor: %v", err)
	}

	formula, params := a.Refines(a)
	if len(params) != 1 {
		t.Fatalf("expected 1 free index var, got %d", len(params))
	}

	// ∀ bound over params must hold: instantiate at every literal offset
	// 0..3 and confirm deepSimplify folds each instance to true.
	for i := uint64(0); i < 4; i++ {
		inst := ctx.B.Substitute(formula, params[0].Expr(), ConstIndex(ctx, i).Expr())
		if got := deepSimplify(ctx.B, inst); !got.IsConst() || got.ConstValue() != 1 {
			t.Errorf("self-refinement at offset %d = %s, want true", i, got)
		}
	}
}

func TestTensorRefinesRankMismatchIsFalse(t *testing.T) {
	ctx := NewContext()

	a, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	b, err := NewSplatTensor(ctx, IntegerType(32), ctx.B.BVConst(0, 32), constIdx(ctx, 2, 2, 2))
	if err != nil {
		t.Fatalf("NewSplatTensor: %v", err)
	}

	formula, params := a.Refines(b)
	if params != nil {
		t.Errorf("rank-mismatched Refines should introduce no free vars, got %v", params)
	}

	if !formula.IsConst() || formula.ConstValue() != 0 {
		t.Errorf("rank-mismatched Refines should be false, got %s", formula)
	}
}
