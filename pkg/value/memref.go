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
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/symtv/tvcore/pkg/smt"
)

// MemRef is a handle into an external Memory block: which block (bid),
// where inside it (offset), the shape seen through this handle (dims),
// and how that shape addresses into the block (layout). isViewRef marks
// a MemRef produced by Subview rather than by the IR's own memref type
// (spec.md §3's MemRef fields).
type MemRef struct {
	ShapedValue

	memory    Memory
	bid       *smt.Term
	offset    Index
	layout    *Layout
	isViewRef bool
	sort      smt.Sort
}

// NewMemRef builds a MemRef over an existing block, validating that
// elemType has an SMT sort before any term referencing it is allocated
// (spec.md §7: preconditions checked up front).
func NewMemRef(ctx *Context, memory Memory, elemType ElemType, bid *smt.Term, offset Index, layout *Layout) (*MemRef, error) {
	sort, err := mustPrimSort(ctx, elemType)
	if err != nil {
		return nil, errors.Wrapf(err, "NewMemRef")
	}

	return &MemRef{
		ShapedValue: newShapedValue(ctx, elemType, layout.Dims()),
		memory:      memory,
		bid:         bid,
		offset:      offset,
		layout:      layout,
		sort:        sort,
	}, nil
}

// WellDefined overrides ShapedValue.WellDefined to bound against
// MemRef's own MaxMemrefSize rather than Tensor's MaxTensorSize (spec.md
// §6: "MemRef::{MAX_MEMREF_SIZE, MAX_DIM_SIZE}").
func (m *MemRef) WellDefined() *smt.Term {
	b := m.ctx.B

	if _, allLiteral := m.literalDims(); allLiteral {
		return b.BoolConst(true)
	}

	conds := make([]*smt.Term, 0, len(m.dims)+1)
	conds = append(conds, m.totalSize().ULT(ConstIndex(m.ctx, m.ctx.MaxMemrefSize+1)))

	for _, d := range m.dims {
		if d.t.IsConst() {
			continue
		}

		conds = append(conds, d.ULT(ConstIndex(m.ctx, m.ctx.MaxDimSize+1)))
	}

	return b.And(conds...)
}

// IsIdentityLayout reports whether m addresses its block row-major with
// no strides.
func (m *MemRef) IsIdentityLayout() bool { return m.layout.IsIdentityLayout() }

// Precondition is the side condition m.layout recorded the last time
// GetInverseIndices was called (true otherwise).
func (m *MemRef) Precondition() *smt.Term { return m.layout.Precondition() }

// GetInverseIndices splits a 1-D offset back into m's N-D coordinates.
func (m *MemRef) GetInverseIndices(idx Index) []Index { return m.layout.InverseMappings(idx) }

// to1DIdxWithLayout is MemRef's addressing primitive (spec.md §4.4):
// the layout's forward mapping paired with the layout's own inbounds
// predicate (not yet conjoined with the backing block's AccessInfo).
func (m *MemRef) to1DIdxWithLayout(idxs []Index) (Index, *smt.Term) {
	return m.layout.Mapping(idxs), m.layout.Inbounds(idxs)
}

// GetWithAccessInfo reads the element at idxs, returning the value and
// the backing Memory's AccessInfo with Inbounds conjoined with the
// layout's own inbounds predicate.
func (m *MemRef) GetWithAccessInfo(idxs []Index) (*smt.Term, AccessInfo) {
	layoutIdx, layoutInbounds := m.to1DIdxWithLayout(idxs)
	addr := m.offset.Add(layoutIdx)
	val, info := m.memory.Load(m.sort, m.bid, addr.Expr())
	info.Inbounds = m.ctx.B.And(info.Inbounds, layoutInbounds)

	return val, info
}

// Get reads the element at idxs, discarding its AccessInfo.
func (m *MemRef) Get(idxs []Index) *smt.Term {
	v, _ := m.GetWithAccessInfo(idxs)
	return v
}

// Store writes value at idxs, returning the backing Memory's AccessInfo
// with Inbounds conjoined with the layout's own inbounds predicate.
func (m *MemRef) Store(idxs []Index, value *smt.Term) AccessInfo {
	layoutIdx, layoutInbounds := m.to1DIdxWithLayout(idxs)
	addr := m.offset.Add(layoutIdx)
	info := m.memory.Store(m.sort, m.bid, addr.Expr(), value)
	info.Inbounds = m.ctx.B.And(info.Inbounds, layoutInbounds)

	return info
}

// StoreArray bulk-stores values into m's region starting at a 1-D
// offset base (spec.md §4.6 supplement: used by constant materialization
// and by writes of whole tensors into a memref). When ubIfReadonly is
// true a non-writable block is treated as undefined behaviour — the
// returned condition omits the writable check entirely; otherwise the
// write is modelled as a no-op refinement failure by conjoining
// AccessInfo.Writable into the returned side condition.
func (m *MemRef) StoreArray(base Index, values []*smt.Term, ubIfReadonly bool) *smt.Term {
	ctx := m.ctx
	conds := make([]*smt.Term, len(values))

	for i, v := range values {
		addr := base.Add(ConstIndex(ctx, uint64(i)))
		info := m.memory.Store(m.sort, m.bid, addr.Expr(), v)

		if ubIfReadonly {
			conds[i] = info.Inbounds
		} else {
			conds[i] = ctx.B.And(info.Inbounds, info.Writable)
		}
	}

	return ctx.B.And(conds...)
}

// IsInBounds asserts the block-capacity invariant of spec.md §3: the
// backing block must contain at least offset + ∏dims elements.
func (m *MemRef) IsInBounds() *smt.Term {
	ctx := m.ctx
	need := m.offset.Add(m.totalSize())
	capacity := WrapIndex(ctx.B, m.memory.NumElementsOfBlock(m.bid))

	return ctx.B.Not(capacity.ULT(need))
}

// IsGlobalBlock, IsLocalBlock, GetLiveness and IsCreatedByAlloc forward
// to the backing Memory for m's block.
func (m *MemRef) IsGlobalBlock() *smt.Term    { return m.memory.IsGlobalBlock(m.bid) }
func (m *MemRef) IsLocalBlock() *smt.Term     { return m.memory.IsLocalBlock(m.bid) }
func (m *MemRef) GetLiveness() *smt.Term      { return m.memory.GetLiveness(m.bid) }
func (m *MemRef) IsCreatedByAlloc() *smt.Term { return m.memory.IsCreatedByAlloc(m.bid) }

// SetWritable forwards to the backing Memory for m's block.
func (m *MemRef) SetWritable(writable bool) { m.memory.SetWritable(m.bid, writable) }

// IsFullyInitialized builds `∀ idxs. layout.inbounds(idxs) →
// Memory.load(...).initialized`.
func (m *MemRef) IsFullyInitialized() *smt.Term {
	ctx := m.ctx
	idxVars := BoundIndexVars(ctx, m.Rank())
	layoutIdx, layoutInbounds := m.to1DIdxWithLayout(idxVars)
	addr := m.offset.Add(layoutIdx)
	_, info := m.memory.Load(m.sort, m.bid, addr.Expr())

	body := ctx.B.Or(ctx.B.Not(layoutInbounds), info.Initialized)
	boundExprs := make([]*smt.Term, len(idxVars))

	for i, iv := range idxVars {
		boundExprs[i] = iv.Expr()
	}

	return ctx.B.Forall(boundExprs, body)
}

// Subview builds a sub-region of m (spec.md §4.4/§4.5): offsets and
// strides are full memref-rank vectors, sizes has one entry per kept
// (non-reduced) dim, and unusedDims names which source axes are fixed
// at Index::zero() rather than carried into the subview's own index
// vector.
func (m *MemRef) Subview(offsets, strides, sizes []Index, unusedDims *bitset.BitSet) (*MemRef, error) {
	rank := m.Rank()
	if len(offsets) != rank || len(strides) != rank {
		return nil, unsupported("Subview: offsets/strides must have memref rank %d, got %d/%d", rank, len(offsets), len(strides))
	}

	keptDims := make([]int, 0, rank)

	for a := 0; a < rank; a++ {
		if !unusedDims.Test(uint(a)) {
			keptDims = append(keptDims, a)
		}
	}

	if len(sizes) != len(keptDims) {
		return nil, unsupported("Subview: sizes must have one entry per kept dim (%d), got %d", len(keptDims), len(sizes))
	}

	newLayout := m.layout.ComposeSubview(keptDims, offsets, strides, sizes)

	return &MemRef{
		ShapedValue: newShapedValue(m.ctx, m.elemType, sizes),
		memory:      m.memory,
		bid:         m.bid,
		offset:      m.offset,
		layout:      newLayout,
		isViewRef:   true,
		sort:        m.sort,
	}, nil
}

// Reshape produces a fresh identity layout with newDims on the same
// bid/offset. Permitted only when m's current layout is identity
// (spec.md §4.4); otherwise Unsupported.
func (m *MemRef) Reshape(newDims []Index) (*MemRef, error) {
	if !m.layout.IsIdentityLayout() {
		return nil, unsupported("Reshape: memref layout is not identity")
	}

	return &MemRef{
		ShapedValue: newShapedValue(m.ctx, m.elemType, newDims),
		memory:      m.memory,
		bid:         m.bid,
		offset:      m.offset,
		layout:      NewIdentityLayout(m.ctx, newDims),
		sort:        m.sort,
	}, nil
}

// MkIte merges two memrefs by address rather than by element (a memref
// carries no elements of its own): bid, offset and dims are ite'd
// pointwise. Only identity-layout operands are modelled — merging
// non-identity layouts would require ite'ing their uninterpreted
// inverse functions, which is not expressible. t and f are assumed to
// share the same backing Memory; a MemRef never crosses allocators
// mid-query.
func (t *MemRef) MkIte(cond *smt.Term, f *MemRef) (*MemRef, error) {
	if t.elemType != f.elemType {
		return nil, unsupported("MemRef.MkIte: element type mismatch %s vs %s", t.elemType, f.elemType)
	}

	if t.Rank() != f.Rank() {
		return nil, unsupported("MemRef.MkIte: rank mismatch %d vs %d", t.Rank(), f.Rank())
	}

	if !t.layout.IsIdentityLayout() || !f.layout.IsIdentityLayout() {
		return nil, unsupported("MemRef.MkIte: merging non-identity layouts is not modelled")
	}

	ctx := t.ctx
	bid := ctx.B.Ite(cond, t.bid, f.bid)
	offset := WrapIndex(ctx.B, ctx.B.Ite(cond, t.offset.Expr(), f.offset.Expr()))

	dims := make([]Index, t.Rank())
	for i := range dims {
		dims[i] = WrapIndex(ctx.B, ctx.B.Ite(cond, t.dims[i].Expr(), f.dims[i].Expr()))
	}

	return &MemRef{
		ShapedValue: newShapedValue(ctx, t.elemType, dims),
		memory:      t.memory,
		bid:         bid,
		offset:      offset,
		layout:      NewIdentityLayout(ctx, dims),
		sort:        t.sort,
	}, nil
}

// Noalias expresses block disjointness or disjoint-offset intervals
// within a shared block, supported only between identity-layout
// memrefs (spec.md §4.4).
func (m *MemRef) Noalias(other *MemRef) (*smt.Term, error) {
	if !m.layout.IsIdentityLayout() || !other.layout.IsIdentityLayout() {
		return nil, unsupported("Noalias: only identity-layout memrefs are supported")
	}

	ctx := m.ctx
	differentBlocks := ctx.B.Not(ctx.B.Eq(m.bid, other.bid))

	mEnd := m.offset.Add(m.totalSize())
	oEnd := other.offset.Add(other.totalSize())
	disjointIntervals := ctx.B.Or(mEnd.ULT(other.offset), oEnd.ULT(m.offset))

	sameBlockDisjoint := ctx.B.And(ctx.B.Eq(m.bid, other.bid), disjointIntervals)

	return ctx.B.Or(differentBlocks, sameBlockDisjoint), nil
}

// layoutEq compares two layouts structurally: identical kind required;
// identity layouts are equal unconditionally (their dims are compared
// separately by the caller), strided layouts compare offset and every
// stride by SMT equality.
func layoutEq(ctx *Context, a, b *Layout) (*smt.Term, bool) {
	if a.kind != b.kind {
		return nil, false
	}

	if a.kind == LayoutIdentity {
		return ctx.B.BoolConst(true), true
	}

	if len(a.strides) != len(b.strides) {
		return nil, false
	}

	conds := make([]*smt.Term, 0, len(a.strides)+1)
	conds = append(conds, a.offset.Eq(b.offset))

	for i := range a.strides {
		conds = append(conds, a.strides[i].Eq(b.strides[i]))
	}

	return ctx.B.And(conds...), true
}

// Refines is MemRef's refinement relation: `bid_eq ∧ offset_eq ∧
// dims_eq ∧ layout_eq` expressed as SMT equality of the packed handle
// (spec.md §4.4) — unlike Tensor.Refines, no free index variable is
// introduced.
func (m *MemRef) Refines(other *MemRef) *smt.Term {
	if m.elemType != other.elemType {
		return m.ctx.B.BoolConst(false)
	}

	dimsEq, ok := dimsMatch(m.ctx, m.dims, other.dims)
	if !ok {
		return m.ctx.B.BoolConst(false)
	}

	layEq, ok := layoutEq(m.ctx, m.layout, other.layout)
	if !ok {
		return m.ctx.B.BoolConst(false)
	}

	bidEq := m.ctx.B.Eq(m.bid, other.bid)
	offEq := m.offset.Eq(other.offset)

	return m.ctx.B.And(bidEq, offEq, dimsEq, layEq)
}

// Eval evaluates m's symbolic handle fields (bid, offset, dims) under a
// model, mirroring Tensor.Eval; layout is structural and carries over
// unchanged.
func (m *MemRef) Eval(model *smt.Model) *MemRef {
	newDims := make([]Index, len(m.dims))
	for i, d := range m.dims {
		newDims[i] = d.Eval(model)
	}

	return &MemRef{
		ShapedValue: newShapedValue(m.ctx, m.elemType, newDims),
		memory:      m.memory,
		bid:         model.Eval(m.bid),
		offset:      m.offset.Eval(model),
		layout:      m.layout,
		isViewRef:   m.isViewRef,
		sort:        m.sort,
	}
}
