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
package smt

import "testing"

func TestModelEvalSubstitutesAndSimplifies(t *testing.T) {
	b := newBuilder()

	x := b.Var(BVSort(8), "x", VarUnbound)
	expr := b.BVAdd(x, b.BVConst(1, 8))

	m := NewModel(b, map[*Term]*Term{x: b.BVConst(9, 8)})

	if got := m.Eval(expr); !got.IsConst() || got.ConstValue() != 10 {
		t.Errorf("Eval(x+1) with x:=9 = %s, want 10", got)
	}
}

func TestModelEvalLeavesUnassignedVarsAlone(t *testing.T) {
	b := newBuilder()

	x := b.Var(BVSort(8), "x", VarUnbound)
	y := b.Var(BVSort(8), "y", VarUnbound)
	expr := b.BVAdd(x, y)

	m := NewModel(b, map[*Term]*Term{x: b.BVConst(9, 8)})

	got := m.Eval(expr)
	if got.IsConst() {
		t.Errorf("Eval(x+y) with only x assigned should not fully fold, got const %s", got)
	}
}

func TestModelEvalNilAssignmentsIsIdentitySimplify(t *testing.T) {
	b := newBuilder()

	sum := b.BVAdd(b.BVConst(2, 8), b.BVConst(3, 8))

	m := NewModel(b, nil)
	if got := m.Eval(sum); !got.IsConst() || got.ConstValue() != 5 {
		t.Errorf("Eval with nil assignments should still constant-fold, got %s", got)
	}
}
