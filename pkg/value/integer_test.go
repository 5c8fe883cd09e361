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

func TestIntegerArithAndCompare(t *testing.T) {
	ctx := NewContext()

	a := ConstInteger(ctx, 3, 8)
	b := ConstInteger(ctx, 4, 8)

	sum := a.Add(b)
	if got := deepSimplify(ctx.B, sum.Expr()); !got.IsConst() || got.ConstValue() != 7 {
		t.Errorf("3+4 = %s, want 7", got)
	}

	lt := a.ULT(b)
	if got := deepSimplify(ctx.B, lt.Expr()); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("3<4 = %s, want true", got)
	}
}

func TestIntegerRefinesRequiresEqualWidth(t *testing.T) {
	ctx := NewContext()

	a := ConstInteger(ctx, 3, 8)

	defer func() {
		if recover() == nil {
			t.Errorf("Refines across mismatched widths should panic (an Assertion, per spec.md)")
		}
	}()

	b := ConstInteger(ctx, 3, 16)
	a.Refines(b)
}

func TestIntegerRefinesEqualBits(t *testing.T) {
	ctx := NewContext()

	a := ConstInteger(ctx, 9, 16)
	b := ConstInteger(ctx, 9, 16)
	c := ConstInteger(ctx, 10, 16)

	if got := deepSimplify(ctx.B, a.Refines(b)); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("equal-bits Integer should refine, got %s", got)
	}

	if got := deepSimplify(ctx.B, a.Refines(c)); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("unequal-bits Integer should not refine, got %s", got)
	}
}
