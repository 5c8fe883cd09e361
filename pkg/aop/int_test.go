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
package aop

import (
	"testing"

	"github.com/symtv/tvcore/pkg/smt"
)

// deepSimplify is a local, minimal bottom-up simplifier for the
// Select/Store/ConstArray/BVAdd/BVMul/UGT/Ite shapes IntDot/IntSum/IntMax
// build and the Eq/BVAnd shape of Encoding.IsNaN —
// no Lambda/beta-reduction appears in these trees, so a single bottom-up
// pass (no re-entrant fixpoint, unlike pkg/value's test helper) suffices.
func deepSimplify(b *smt.Builder, t *smt.Term) *smt.Term {
	args := t.Args()
	if len(args) == 0 {
		return b.Simplify(t)
	}

	newArgs := make([]*smt.Term, len(args))
	for i, a := range args {
		newArgs[i] = deepSimplify(b, a)
	}

	rebuilt := rebuildTerm(b, t, newArgs)

	return b.Simplify(rebuilt)
}

func rebuildTerm(b *smt.Builder, t *smt.Term, a []*smt.Term) *smt.Term {
	switch t.Kind() {
	case smt.KindBVAdd:
		return b.BVAdd(a[0], a[1])
	case smt.KindBVMul:
		return b.BVMul(a[0], a[1])
	case smt.KindBVAnd:
		return b.BVAnd(a[0], a[1])
	case smt.KindEq:
		return b.Eq(a[0], a[1])
	case smt.KindSelect:
		return b.Select(a[0], a[1])
	case smt.KindStore:
		return b.Store(a[0], a[1], a[2])
	case smt.KindConstArray:
		return b.ConstArray(t.Sort().Domain(), a[0])
	case smt.KindUGT:
		return b.BVUGT(a[0], a[1])
	case smt.KindIte:
		return b.Ite(a[0], a[1], a[2])
	default:
		return t
	}
}

// arraySequence builds a Lambda1D over literal values 0..len(vals)-1,
// addressed through a Store-chain array rather than embedding the values
// directly in an arithmetic expression of the bound variable.
func arraySequence(b *smt.Builder, vals []uint64, elemWidth uint) Lambda1D {
	arr := b.ConstArray(smt.BVSort(8), b.BVConst(0, elemWidth))
	for i, v := range vals {
		arr = b.Store(arr, b.BVConst(uint64(i), 8), b.BVConst(v, elemWidth))
	}

	bound := b.Var(smt.BVSort(8), "i", smt.VarBound)
	body := b.Select(arr, bound)

	return Lambda1D{Builder: b, BoundVar: bound, Body: body, Len: b.BVConst(uint64(len(vals)), 64)}
}

func TestIntSum(t *testing.T) {
	b := smt.NewBuilder()
	l := arraySequence(b, []uint64{1, 2, 3, 4}, 16)

	got := deepSimplify(b, IntSum(b, l, 16, nil))
	if !got.IsConst() || got.ConstValue() != 10 {
		t.Errorf("IntSum([1,2,3,4]) = %s, want 10", got)
	}
}

func TestIntSumWithInit(t *testing.T) {
	b := smt.NewBuilder()
	l := arraySequence(b, []uint64{1, 2, 3}, 16)

	got := deepSimplify(b, IntSum(b, l, 16, b.BVConst(100, 16)))
	if !got.IsConst() || got.ConstValue() != 106 {
		t.Errorf("IntSum([1,2,3], init=100) = %s, want 106", got)
	}
}

func TestIntDot(t *testing.T) {
	b := smt.NewBuilder()
	lhs := arraySequence(b, []uint64{1, 2, 3}, 16)
	rhs := arraySequence(b, []uint64{4, 5, 6}, 16)

	got := deepSimplify(b, IntDot(b, lhs, rhs, 16, nil))
	if !got.IsConst() || got.ConstValue() != 32 {
		t.Errorf("IntDot([1,2,3],[4,5,6]) = %s, want 32", got)
	}
}

func TestIntMax(t *testing.T) {
	b := smt.NewBuilder()
	l := arraySequence(b, []uint64{3, 9, 1, 7}, 16)

	got := deepSimplify(b, IntMax(b, l, 16, nil))
	if !got.IsConst() || got.ConstValue() != 9 {
		t.Errorf("IntMax([3,9,1,7]) = %s, want 9", got)
	}
}

func TestIntSumSymbolicLengthIsOpaque(t *testing.T) {
	b := smt.NewBuilder()
	n := b.Var(smt.BVSort(64), "n", smt.VarUnbound)
	l := arraySequence(b, []uint64{1, 2, 3}, 16)
	l.Len = n

	got := IntSum(b, l, 16, nil)
	if got.Kind() != smt.KindApp || got.Name() != "int.sum" {
		t.Errorf("IntSum with symbolic length should be an opaque int.sum application, got %v/%s", got.Kind(), got.Name())
	}
}

func TestExtendToIsIdentityAtSameWidth(t *testing.T) {
	b := smt.NewBuilder()
	v := b.BVConst(5, 16)

	if got := extendTo(b, v, 16); got != v {
		t.Errorf("extendTo at the same width should return the original term unchanged")
	}
}

func TestExtendToResizesAtDifferentWidth(t *testing.T) {
	b := smt.NewBuilder()
	v := b.BVConst(5, 8)

	got := extendTo(b, v, 32)
	if got.Kind() != smt.KindApp || got.Name() != "int.resize" {
		t.Errorf("extendTo at a different width should be an int.resize application, got %v/%s", got.Kind(), got.Name())
	}
}
