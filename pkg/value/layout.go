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
	"strconv"

	"github.com/symtv/tvcore/pkg/smt"
)

// LayoutKind distinguishes an identity layout (row-major, no strides) from
// an affine/strided one built from an IR memref type's strides/offset or
// synthesised by Subview (spec.md §4.5).
type LayoutKind uint8

const (
	LayoutIdentity LayoutKind = iota
	LayoutStrided
)

// Layout is MemRef's addressing scheme: a forward mapping from N-D
// indices to a 1-D offset, its inbounds predicate, and — when the
// inverse cannot be given in closed form — a set of uninterpreted inverse
// functions plus the precondition tying them back to the forward mapping
// (spec.md §4.5).
type Layout struct {
	ctx     *Context
	kind    LayoutKind
	dims    []Index
	strides []Index
	offset  Index

	inverseFnNames []string
	invPrecond     *smt.Term
	invRequested   bool
}

// NewIdentityLayout builds the row-major layout over dims: mapping =
// to1D(dims), inverseMappings = from1D(dims), precondition = true.
func NewIdentityLayout(ctx *Context, dims []Index) *Layout {
	return &Layout{ctx: ctx, kind: LayoutIdentity, dims: append([]Index(nil), dims...)}
}

// NewStridedLayout builds an affine layout from an IR memref type's
// strides and offset (or a Subview's synthesised ones). The inverse is
// not generally recoverable in closed form, so it is represented lazily
// by uninterpreted inverse_fn_i functions (built on first use by
// InverseMappings) gated behind a precondition.
func NewStridedLayout(ctx *Context, dims, strides []Index, offset Index) *Layout {
	assert(len(dims) == len(strides), "NewStridedLayout: dims/strides rank mismatch %d vs %d", len(dims), len(strides))
	return &Layout{ctx: ctx, kind: LayoutStrided, dims: append([]Index(nil), dims...), strides: append([]Index(nil), strides...), offset: offset}
}

// IsIdentityLayout reports whether l is the row-major identity layout.
func (l *Layout) IsIdentityLayout() bool { return l.kind == LayoutIdentity }

// Dims returns l's dimension vector.
func (l *Layout) Dims() []Index { return append([]Index(nil), l.dims...) }

// IndVars mints l's per-dim bound induction variables, one per dim
// (spec.md §4.5's `indVars` field) — fresh on every call since each use
// site (inbounds/mapping construction) needs its own binder.
func (l *Layout) IndVars() []Index { return BoundIndexVars(l.ctx, len(l.dims)) }

// Inbounds reports membership of idxs in l's hyper-rectangle.
func (l *Layout) Inbounds(idxs []Index) *smt.Term { return isInBounds(l.ctx, idxs, l.dims) }

// Mapping is l's forward linearisation: row-major to1D for identity,
// offset + Σ idx_i·stride_i for strided.
func (l *Layout) Mapping(idxs []Index) Index {
	if l.kind == LayoutIdentity {
		return to1D(l.ctx, idxs, l.dims)
	}

	acc := l.offset
	for i, idx := range idxs {
		acc = acc.Add(idx.Mul(l.strides[i]))
	}

	return acc
}

// InverseMappings splits a 1-D offset back into N-D coordinates: exact
// from1D for identity; for strided layouts it mints (once) one
// uninterpreted inverse_fn_i per axis and records the precondition tying
// them to Mapping, returned by Precondition once InverseMappings has been
// called (spec.md §4.5: "added to the surrounding query only when
// getInverseIndices is actually used").
func (l *Layout) InverseMappings(idx Index) []Index {
	if l.kind == LayoutIdentity {
		return from1D(l.ctx, idx, l.dims)
	}

	l.ensureInverseFns()

	out := make([]Index, len(l.inverseFnNames))
	for i, name := range l.inverseFnNames {
		out[i] = WrapIndex(l.ctx.B, l.ctx.B.App(name, indexSort(l.ctx), idx.Expr()))
	}

	return out
}

func (l *Layout) ensureInverseFns() {
	if l.invRequested {
		return
	}

	l.invRequested = true
	b := l.ctx.B

	names := make([]string, len(l.dims))
	for i := range l.dims {
		names[i] = "inverse_fn_" + itoaAxis(i)
	}

	l.inverseFnNames = names

	indVars := l.IndVars()
	mapped := l.Mapping(indVars)

	conjuncts := make([]*smt.Term, len(indVars))
	for i, iv := range indVars {
		applied := b.App(names[i], indexSort(l.ctx), mapped.Expr())
		conjuncts[i] = b.Eq(applied, iv.Expr())
	}

	premise := l.Inbounds(indVars)
	body := b.Or(b.Not(premise), b.And(conjuncts...))
	boundExprs := make([]*smt.Term, len(indVars))

	for i, iv := range indVars {
		boundExprs[i] = iv.Expr()
	}

	l.invPrecond = b.Forall(boundExprs, body)
}

func itoaAxis(i int) string { return strconv.Itoa(i) }

// Precondition returns the side condition recorded by the last
// InverseMappings call (true if inverse mappings have never been
// requested, or if the layout is identity — whose inverse is exact).
func (l *Layout) Precondition() *smt.Term {
	if l.kind == LayoutIdentity || l.invPrecond == nil {
		return l.ctx.B.BoolConst(true)
	}

	return l.invPrecond
}

// ComposeSubview builds the layout of a subview (spec.md §4.5):
// `transformedMapping(new) = L.mapping(strides·new + offsets, with zeros
// re-inserted at reduced-dim positions)`. offsets and strides are
// full-rank (one entry per parent dim); keptDims names, in order, which
// parent axes survive into the subview's (shorter) index vector `new` —
// the rest are implicitly pinned to Index::zero() before the stride
// multiply, per spec.md §4.4.
//
// l.Mapping is affine in its argument for both identity and strided
// parents, so it decomposes as `l.Mapping(x) = l.Mapping(zero) + Σ_a
// x[a]·D(a)` where `D(a) = l.Mapping(e_a) - l.Mapping(zero)` is the
// per-axis coefficient, independent of the base point. Substituting
// `x[a] = offsets[a] + strides[a]·new[k]` (k = new's position of kept
// axis a, 0 for reduced axes) and collecting terms in `new` gives the
// subview's offset and per-kept-axis stride directly, without carrying
// any bound variable into the new Layout's fields.
func (l *Layout) ComposeSubview(keptDims []int, offsets, strides, newSizes []Index) *Layout {
	zero := make([]Index, len(l.dims))
	for i := range zero {
		zero[i] = ConstIndex(l.ctx, 0)
	}

	mapZero := l.Mapping(zero)
	newOffset := l.Mapping(offsets)

	newStrides := make([]Index, len(keptDims))

	for k, a := range keptDims {
		unit := append([]Index(nil), zero...)
		unit[a] = ConstIndex(l.ctx, 1)
		coeff := l.Mapping(unit).Sub(mapZero)
		newStrides[k] = strides[a].Mul(coeff)
	}

	return &Layout{ctx: l.ctx, kind: LayoutStrided, dims: newSizes, strides: newStrides, offset: newOffset}
}
