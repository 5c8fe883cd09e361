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

import "testing"

const f32QuietNaN = 0x7fc00000

func TestFloatIsNaN(t *testing.T) {
	ctx := NewContext()

	nan := ConstFloat(ctx, f32QuietNaN, Float32Type())
	if got := deepSimplify(ctx.B, nan.IsNaN().Expr()); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("IsNaN(0x%x) = %s, want true", f32QuietNaN, got)
	}

	zero := ConstFloat(ctx, 0, Float32Type())
	if got := deepSimplify(ctx.B, zero.IsNaN().Expr()); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("IsNaN(0) = %s, want false", got)
	}
}

func TestFloatRefinesBothNaNIgnoresBits(t *testing.T) {
	ctx := NewContext()

	a := ConstFloat(ctx, f32QuietNaN, Float32Type())
	b := ConstFloat(ctx, f32QuietNaN|1, Float32Type())

	if got := deepSimplify(ctx.B, a.Refines(b)); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("two differently-bit-patterned NaNs should refine, got %s", got)
	}
}

func TestFloatRefinesOneNaNIsFalse(t *testing.T) {
	ctx := NewContext()

	a := ConstFloat(ctx, f32QuietNaN, Float32Type())
	b := ConstFloat(ctx, 0, Float32Type())

	if got := deepSimplify(ctx.B, a.Refines(b)); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("NaN vs non-NaN should not refine, got %s", got)
	}
}

func TestFloatRefinesNonNaNRequiresBitEquality(t *testing.T) {
	ctx := NewContext()

	a := ConstFloat(ctx, 0x3f800000, Float32Type()) // 1.0f
	b := ConstFloat(ctx, 0x3f800000, Float32Type())
	c := ConstFloat(ctx, 0xbf800000, Float32Type()) // -1.0f

	if got := deepSimplify(ctx.B, a.Refines(b)); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("identical non-NaN bit patterns should refine, got %s", got)
	}

	if got := deepSimplify(ctx.B, a.Refines(c)); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("differing non-NaN bit patterns should not refine, got %s", got)
	}
}
