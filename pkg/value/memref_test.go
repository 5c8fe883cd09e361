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

	"github.com/bits-and-blooms/bitset"

	"github.com/symtv/tvcore/pkg/smt"
)

// fakeBlockMemory is a minimal single-block Memory fake for memref tests,
// kept local to this package to avoid pkg/memory importing back into
// pkg/value for the Memory interface it implements.
type fakeBlockMemory struct {
	b        *smt.Builder
	size     uint64
	arr      *smt.Term
	init     *smt.Term
	writable bool
}

func newFakeBlockMemory(ctx *Context, size uint64) *fakeBlockMemory {
	b := ctx.B
	return &fakeBlockMemory{
		b:        b,
		size:     size,
		arr:      b.ConstArray(smt.BVSort(ctx.Bits), b.BVConst(0, 32)),
		init:     b.ConstArray(smt.BVSort(ctx.Bits), b.BoolConst(false)),
		writable: true,
	}
}

func (f *fakeBlockMemory) Load(elem smt.Sort, bid, offset *smt.Term) (*smt.Term, AccessInfo) {
	return f.b.Select(f.arr, offset), AccessInfo{
		Inbounds:    f.b.BVULT(offset, f.b.BVConst(f.size, uint(64))),
		Initialized: f.b.Select(f.init, offset),
		Writable:    f.b.BoolConst(f.writable),
	}
}

func (f *fakeBlockMemory) Store(elem smt.Sort, bid, offset, val *smt.Term) AccessInfo {
	f.arr = f.b.Store(f.arr, offset, val)
	f.init = f.b.Store(f.init, offset, f.b.BoolConst(true))

	return AccessInfo{
		Inbounds:    f.b.BVULT(offset, f.b.BVConst(f.size, uint(64))),
		Initialized: f.b.BoolConst(true),
		Writable:    f.b.BoolConst(f.writable),
	}
}

func (f *fakeBlockMemory) NumElementsOfBlock(bid *smt.Term) *smt.Term { return f.b.BVConst(f.size, 64) }
func (f *fakeBlockMemory) IsGlobalBlock(bid *smt.Term) *smt.Term      { return f.b.BoolConst(true) }
func (f *fakeBlockMemory) IsLocalBlock(bid *smt.Term) *smt.Term       { return f.b.BoolConst(false) }
func (f *fakeBlockMemory) GetLiveness(bid *smt.Term) *smt.Term        { return f.b.BoolConst(true) }
func (f *fakeBlockMemory) IsCreatedByAlloc(bid *smt.Term) *smt.Term   { return f.b.BoolConst(false) }
func (f *fakeBlockMemory) SetWritable(bid *smt.Term, writable bool)   { f.writable = writable }
func (f *fakeBlockMemory) BIDBits() uint                              { return 8 }

func TestMemRefInBoundsChecksCapacity(t *testing.T) {
	ctx := NewContext()
	mem := newFakeBlockMemory(ctx, 16)

	layout := NewIdentityLayout(ctx, constIdx(ctx, 4, 4))

	bid := ctx.B.BVConst(0, 8)
	m, err := NewMemRef(ctx, mem, IntegerType(32), bid, ConstIndex(ctx, 0), layout)
	if err != nil {
		t.Fatalf("NewMemRef: %v", err)
	}

	if got := deepSimplify(ctx.B, m.IsInBounds()); !got.IsConst() || got.ConstValue() != 1 {
		t.Errorf("4x4 memref at offset 0 into a 16-element block should be in bounds, got %s", got)
	}

	tooSmall := newFakeBlockMemory(ctx, 10)

	m2, err := NewMemRef(ctx, tooSmall, IntegerType(32), bid, ConstIndex(ctx, 0), layout)
	if err != nil {
		t.Fatalf("NewMemRef: %v", err)
	}

	if got := deepSimplify(ctx.B, m2.IsInBounds()); !got.IsConst() || got.ConstValue() != 0 {
		t.Errorf("4x4 memref into a 10-element block should be out of bounds, got %s", got)
	}
}

func TestMemRefSubviewAddressesParentRegion(t *testing.T) {
	ctx := NewContext()
	mem := newFakeBlockMemory(ctx, 16)

	layout := NewIdentityLayout(ctx, constIdx(ctx, 4, 4))
	bid := ctx.B.BVConst(0, 8)

	parent, err := NewMemRef(ctx, mem, IntegerType(32), bid, ConstIndex(ctx, 0), layout)
	if err != nil {
		t.Fatalf("NewMemRef: %v", err)
	}

	unused := bitset.New(2)

	sub, err := parent.Subview(
		constIdx(ctx, 1, 1),
		constIdx(ctx, 1, 1),
		constIdx(ctx, 2, 2),
		unused,
	)
	if err != nil {
		t.Fatalf("Subview: %v", err)
	}

	val := ctx.B.BVConst(42, 32)
	parent.Store(constIdx(ctx, 1, 1), val)

	got := deepSimplify(ctx.B, sub.Get(constIdx(ctx, 0, 0)))
	want := deepSimplify(ctx.B, parent.Get(constIdx(ctx, 1, 1)))

	if got.String() != want.String() {
		t.Errorf("subview(0,0) = %s, want parent(1,1) = %s", got, want)
	}
}

func TestMemRefReshapeRejectsNonIdentity(t *testing.T) {
	ctx := NewContext()
	mem := newFakeBlockMemory(ctx, 16)
	bid := ctx.B.BVConst(0, 8)

	strided := NewStridedLayout(ctx, constIdx(ctx, 4), constIdx(ctx, 2), ConstIndex(ctx, 0))

	m, err := NewMemRef(ctx, mem, IntegerType(32), bid, ConstIndex(ctx, 0), strided)
	if err != nil {
		t.Fatalf("NewMemRef: %v", err)
	}

	if _, err := m.Reshape(constIdx(ctx, 2, 2)); err == nil {
		t.Errorf("Reshape of a strided memref should be unsupported")
	}
}
