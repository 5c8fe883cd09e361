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

func TestConstIndexArith(t *testing.T) {
	ctx := NewContext()

	a := ConstIndex(ctx, 3)
	b := ConstIndex(ctx, 4)

	sum := ctx.B.Simplify(a.Add(b).Expr())
	if !sum.IsConst() || sum.ConstValue() != 7 {
		t.Fatalf("3+4 simplified to %s, want 7", sum)
	}
}

func TestIndexRefinesIsEquality(t *testing.T) {
	ctx := NewContext()

	a := ConstIndex(ctx, 5)
	b := ConstIndex(ctx, 5)
	c := ConstIndex(ctx, 6)

	if got := deepSimplify(ctx.B, a.Refines(b)); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("equal indices should refine, got %s", got)
	}

	if got := deepSimplify(ctx.B, a.Refines(c)); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("unequal indices should not refine, got %s", got)
	}
}

func TestIndexEval(t *testing.T) {
	ctx := NewContext()

	x := VarIndex(ctx, "x")
	m := smt.NewModel(ctx.B, map[*smt.Term]*smt.Term{x.Expr(): ctx.B.BVConst(9, ctx.Bits)})

	got := x.Eval(m)
	if !got.Expr().IsConst() || got.Expr().ConstValue() != 9 {
		t.Fatalf("eval(x) = %s, want 9", got.Expr())
	}
}
