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

// dimsAsUint64 reads literal dimension values back out for assertions;
// every dims vector built by FromElemsAttr here is fully literal.
func dimsAsUint64(t *testing.T, idxs []Index) []uint64 {
	t.Helper()

	out := make([]uint64, len(idxs))
	for i, idx := range idxs {
		if !idx.t.IsConst() {
			t.Fatalf("dims[%d] is not a literal constant", i)
		}

		out[i] = idx.t.ConstValue()
	}

	return out
}

// TestAbstractDenseConstScenarioE exercises the three cache outcomes
// fromElemsAttr's abstraction path distinguishes once a constant crosses
// MaxConstSize: an identical re-ingestion hits the cache directly, an
// axis-permuted re-ingestion hits via findPermutation/affinePermute without
// growing the cache, and a genuinely new constant mints a fresh
// unknown_const#k symbol and grows it.
func TestAbstractDenseConstScenarioE(t *testing.T) {
	ctx := NewContext(WithMaxConstSize(0))
	ty := IntegerType(32)

	original := ConstAttr{Dims: []uint64{2, 3}, Kind: ConstDense, Dense: []uint64{1, 2, 3, 4, 5, 6}}

	first, err := FromElemsAttr(ctx, ty, original)
	if err != nil {
		t.Fatalf("FromElemsAttr(original): %v", err)
	}

	if len(ctx.cache) != 1 {
		t.Fatalf("expected one cache entry after the first ingestion, got %d", len(ctx.cache))
	}

	if !first.arr.IsVar() {
		t.Fatalf("a fresh mint should back the tensor with a variable array")
	}

	if first.arr.Name() != "unknown_const#0" {
		t.Errorf("first mint name = %q, want unknown_const#0", first.arr.Name())
	}

	// Case 1: identical re-ingestion returns the cached tensor directly,
	// without growing the cache.
	again, err := FromElemsAttr(ctx, ty, original)
	if err != nil {
		t.Fatalf("FromElemsAttr(original again): %v", err)
	}

	if again != first {
		t.Errorf("identical re-ingestion should return the cached tensor, got a distinct one")
	}

	if len(ctx.cache) != 1 {
		t.Errorf("identical re-ingestion should not grow the cache, got %d entries", len(ctx.cache))
	}

	// Case 2: the transpose of original's 2x3 layout, as a fresh 3x2
	// ConstAttr with the same row-major values permuted — findPermutation
	// should detect perm=[1,0] and rewrite via affinePermute rather than
	// minting a second unknown_const.
	transposed := ConstAttr{Dims: []uint64{3, 2}, Kind: ConstDense, Dense: []uint64{1, 4, 2, 5, 3, 6}}

	permuted, err := FromElemsAttr(ctx, ty, transposed)
	if err != nil {
		t.Fatalf("FromElemsAttr(transposed): %v", err)
	}

	if len(ctx.cache) != 1 {
		t.Errorf("a permutation hit should not grow the cache, got %d entries", len(ctx.cache))
	}

	if permuted.arr.IsVar() {
		t.Errorf("a permutation hit should rewrite via Affine (a lambda), not reuse the raw variable array")
	}

	if got := dimsAsUint64(t, permuted.Dims()); got[0] != 3 || got[1] != 2 {
		t.Errorf("permuted dims = %v, want [3 2]", got)
	}

	// Case 3: a constant unrelated to original by value, permutation, or
	// simple reduction mints its own fresh symbol and grows the cache.
	novel := ConstAttr{Dims: []uint64{2, 2}, Kind: ConstDense, Dense: []uint64{9, 9, 9, 9}}

	fresh, err := FromElemsAttr(ctx, ty, novel)
	if err != nil {
		t.Fatalf("FromElemsAttr(novel): %v", err)
	}

	if len(ctx.cache) != 2 {
		t.Fatalf("a novel constant should grow the cache to 2 entries, got %d", len(ctx.cache))
	}

	if !fresh.arr.IsVar() {
		t.Fatalf("a novel constant should mint a fresh variable array")
	}

	if fresh.arr.Name() != "unknown_const#1" {
		t.Errorf("second mint name = %q, want unknown_const#1", fresh.arr.Name())
	}
}

// TestFindPermutationRejectsMismatchedRankOrKind covers findPermutation's
// fast-reject guards directly, since abstractDenseConst's loop only ever
// calls it with entries already filtered by nothing — a rank outside 2..4,
// a kind other than dense, or a differing rank between a and other must all
// report no permutation rather than panicking.
func TestFindPermutationRejectsMismatchedRankOrKind(t *testing.T) {
	rank1 := ConstAttr{Dims: []uint64{4}, Kind: ConstDense, Dense: []uint64{1, 2, 3, 4}}
	rank2 := ConstAttr{Dims: []uint64{2, 2}, Kind: ConstDense, Dense: []uint64{1, 2, 3, 4}}

	if _, ok := findPermutation(rank1, rank1); ok {
		t.Errorf("rank-1 attrs should never report a permutation")
	}

	if _, ok := findPermutation(rank2, rank1); ok {
		t.Errorf("mismatched ranks should never report a permutation")
	}

	splat := ConstAttr{Dims: []uint64{2, 2}, Kind: ConstSplat, Splat: 1}
	if _, ok := findPermutation(rank2, splat); ok {
		t.Errorf("a non-dense operand should never report a permutation")
	}
}

// TestIsSimpleReduction checks the trailing-dims-all-1 shape detector
// abstractDenseConst consults before falling back to affineReshape.
func TestIsSimpleReduction(t *testing.T) {
	reduced := ConstAttr{Dims: []uint64{6, 1, 1}}
	if !reduced.isSimpleReduction() {
		t.Errorf("dims [6 1 1] should be a simple reduction shape")
	}

	notReduced := ConstAttr{Dims: []uint64{2, 3}}
	if notReduced.isSimpleReduction() {
		t.Errorf("dims [2 3] should not be a simple reduction shape")
	}
}
