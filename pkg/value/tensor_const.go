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

	"github.com/pkg/errors"

	"github.com/symtv/tvcore/pkg/smt"
	"github.com/symtv/tvcore/pkg/util"
)

// ConstAttrKind distinguishes the three shapes a constant-element
// attribute can take, standing in for the IR attribute system's own
// splat/dense/sparse distinction (spec.md §6 names the interface
// fromElemsAttr consumes without constraining its representation).
type ConstAttrKind uint8

const (
	ConstSplat ConstAttrKind = iota
	ConstDense
	ConstSparse
)

// SparseConstValue is one explicit (index, bits) pair of a sparse
// ConstAttr; unspecified locations read as the type's zero.
type SparseConstValue struct {
	Indices []uint64
	Bits    uint64
}

// ConstAttr is a fully concrete element-attribute value: the dimension
// vector plus, depending on Kind, a splat bit pattern, a row-major dense
// bit-pattern list, or a sparse entry list.
type ConstAttr struct {
	Dims   []uint64
	Kind   ConstAttrKind
	Splat  uint64
	Dense  []uint64
	Sparse []SparseConstValue
}

func (a ConstAttr) totalSize() uint64 {
	n := uint64(1)
	for _, d := range a.Dims {
		n *= d
	}

	return n
}

func (a ConstAttr) equal(other ConstAttr) bool {
	if a.Kind != other.Kind || len(a.Dims) != len(other.Dims) {
		return false
	}

	for i := range a.Dims {
		if a.Dims[i] != other.Dims[i] {
			return false
		}
	}

	switch a.Kind {
	case ConstSplat:
		return a.Splat == other.Splat
	case ConstDense:
		if len(a.Dense) != len(other.Dense) {
			return false
		}

		for i := range a.Dense {
			if a.Dense[i] != other.Dense[i] {
				return false
			}
		}

		return true
	default:
		if len(a.Sparse) != len(other.Sparse) {
			return false
		}

		for i := range a.Sparse {
			if a.Sparse[i].Bits != other.Sparse[i].Bits || !equalUint64s(a.Sparse[i].Indices, other.Sparse[i].Indices) {
				return false
			}
		}

		return true
	}
}

func equalUint64s(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// isSimpleReduction reports whether every trailing dim past the first is
// 1 — the "simple reduction" shape spec.md §4.2 rewrites via affine
// reshape rather than re-enumerating.
func (a ConstAttr) isSimpleReduction() bool {
	for _, d := range a.Dims[1:] {
		if d != 1 {
			return false
		}
	}

	return true
}

// findPermutation detects a rank 2/3/4 axis permutation of other that
// equals a, by row↔trailing-axis rotation: it tries every permutation of
// axes and returns the one whose permuted dims and element order match a.
// Ranks outside 2..4 are not attempted (spec.md §4.2 names ranks 2,3,4
// explicitly).
func findPermutation(a, other ConstAttr) ([]int, bool) {
	rank := len(a.Dims)
	if rank < 2 || rank > 4 || rank != len(other.Dims) || a.Kind != ConstDense || other.Kind != ConstDense {
		return nil, false
	}

	for _, perm := range permutations(rank) {
		permDims := make([]uint64, rank)
		for i, p := range perm {
			permDims[i] = other.Dims[p]
		}

		if !equalUint64sSlice(permDims, a.Dims) {
			continue
		}

		if densePermutedEqual(a, other, perm) {
			return perm, true
		}
	}

	return nil, false
}

func equalUint64sSlice(a, b []uint64) bool { return equalUint64s(a, b) }

// permutations enumerates every permutation of {0,...,n-1}, smallest
// first (identity excluded is not special-cased — callers only need a
// true hit on some permutation).
func permutations(n int) [][]int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var out [][]int

	var rec func(prefix []int, rest []int)
	rec = func(prefix []int, rest []int) {
		if len(rest) == 0 {
			out = append(out, append([]int(nil), prefix...))
			return
		}

		for i, v := range rest {
			next := append([]int(nil), rest[:i]...)
			next = append(next, rest[i+1:]...)
			rec(append(prefix, v), next)
		}
	}

	rec(nil, idx)

	return out
}

// densePermutedEqual checks a.Dense[i] == other.Dense[j] for every
// multi-index, where j's coordinates are a's coordinates permuted by
// perm (perm[k] names which axis of `other` supplies a's axis k).
func densePermutedEqual(a, other ConstAttr, perm []int) bool {
	rank := len(a.Dims)
	coords := make([]uint64, rank)

	for {
		aOff := rowMajorOffset(coords, a.Dims)

		otherCoords := make([]uint64, rank)
		for k, p := range perm {
			otherCoords[p] = coords[k]
		}

		bOff := rowMajorOffset(otherCoords, other.Dims)

		if a.Dense[aOff] != other.Dense[bOff] {
			return false
		}

		if !advance(coords, a.Dims) {
			return true
		}
	}
}

func rowMajorOffset(coords, dims []uint64) uint64 {
	off := uint64(0)
	for i, c := range coords {
		off = off*dims[i] + c
	}

	return off
}

// advance increments coords in row-major order (last axis fastest);
// reports whether it wrapped around (false) or produced the next
// multi-index (true).
func advance(coords, dims []uint64) bool {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < dims[i] {
			return true
		}

		coords[i] = 0
	}

	return false
}

// constTermFromBits builds the element term for one bit pattern of ty.
func constTermFromBits(ctx *Context, ty ElemType, bits uint64) *smt.Term {
	if ty.IsFloat() {
		return ConstFloat(ctx, bits, ty).Expr()
	}

	if ty.IsIndex() {
		return ConstIndex(ctx, bits).Expr()
	}

	return ConstInteger(ctx, bits, ty.Bits()).Expr()
}

func indexDims(ctx *Context, dims []uint64) []Index {
	out := make([]Index, len(dims))
	for i, d := range dims {
		out[i] = ConstIndex(ctx, d)
	}

	return out
}

// FromElemsAttr implements constant ingestion (spec.md §4.2): splat fast
// path, small dense/sparse enumeration, and — once ∏dims exceeds
// Context.MaxConstSize — the abstraction cache with permutation and
// simple-reduction rewrite detectors, falling back to a fresh
// "unknown_const#k" symbol recorded for future hits.
func FromElemsAttr(ctx *Context, ty ElemType, attr ConstAttr) (*Tensor, error) {
	if attr.Kind == ConstSplat {
		return NewSplatTensor(ctx, ty, constTermFromBits(ctx, ty, attr.Splat), indexDims(ctx, attr.Dims))
	}

	total := attr.totalSize()

	if attr.Kind == ConstDense && ctx.MaxConstSize >= 0 && int64(total) > ctx.MaxConstSize {
		return ctx.abstractDenseConst(ty, attr)
	}

	if attr.Kind == ConstSparse {
		return fromSparseAttr(ctx, ty, attr)
	}

	elems := make([]*smt.Term, len(attr.Dense))
	for i, bits := range attr.Dense {
		elems[i] = constTermFromBits(ctx, ty, bits)
	}

	return NewDenseTensor(ctx, ty, elems, indexDims(ctx, attr.Dims))
}

func fromSparseAttr(ctx *Context, ty ElemType, attr ConstAttr) (*Tensor, error) {
	zero := getZero(ctx, ty)
	assert(zero.HasValue(), "FromElemsAttr: sparse constant of %s has no zero element", ty)

	entries := make([]SparseEntry, len(attr.Sparse))
	for i, e := range attr.Sparse {
		entries[i] = SparseEntry{Indices: e.Indices, Value: constTermFromBits(ctx, ty, e.Bits)}
	}

	return NewSparseTensor(ctx, ty, entries, indexDims(ctx, attr.Dims), zero.Unwrap())
}

// abstractDenseConst is the cache-consulting path of FromElemsAttr: an
// equal-by-attribute hit returns the cached tensor verbatim; a
// permutation or simple-reduction hit rewrites it via Affine; otherwise a
// fresh symbolic tensor is minted and cached.
func (c *Context) abstractDenseConst(ty ElemType, attr ConstAttr) (*Tensor, error) {
	for _, entry := range c.cache {
		if entry.attr.equal(attr) {
			return entry.t, nil
		}
	}

	for _, entry := range c.cache {
		if perm, ok := findPermutation(attr, entry.attr); ok {
			return c.affinePermute(entry.t, attr, perm), nil
		}
	}

	for _, entry := range c.cache {
		if attr.isSimpleReduction() && entry.attr.Kind == ConstDense && len(entry.attr.Dims) == len(attr.Dims) &&
			entry.attr.totalSize() == attr.totalSize() {
			return c.affineReshape(entry.t, attr), nil
		}
	}

	name := c.nextUnknownConstName()
	t, err := NewFreshTensor(c, ty, name, indexDims(c, attr.Dims), util.Some(true))
	if err != nil {
		return nil, errors.Wrapf(err, "abstractDenseConst %q", name)
	}

	c.cache = append(c.cache, abstractionEntry{attr: attr, t: t})

	return t, nil
}

// nextUnknownConstName numbers unknown_const symbols by the cache's
// current length — stable within a session, reset along with the cache
// by Reset (spec.md §5's "across a reset they need not be" refinement-
// equal across sessions).
func (c *Context) nextUnknownConstName() string {
	return "unknown_const#" + strconv.Itoa(len(c.cache))
}

// affinePermute rewrites cached into attr's axis order via Tensor.Affine:
// newIdxVars[k] selects cached's axis perm[k] for attr's axis k.
func (c *Context) affinePermute(cached *Tensor, attr ConstAttr, perm []int) *Tensor {
	newIdxVars := BoundIndexVars(c, len(attr.Dims))
	srcIdxs := make([]*smt.Term, len(perm))

	for k, p := range perm {
		srcIdxs[p] = newIdxVars[k].Expr()
	}

	return cached.Affine(newIdxVars, srcIdxs, indexDims(c, attr.Dims))
}

// affineReshape rewrites cached to attr's simple-reduction shape: same
// total size, axes beyond the first collapsed to 1, leaving the
// linearisation and hence the element order unchanged.
func (c *Context) affineReshape(cached *Tensor, attr ConstAttr) *Tensor {
	newDims := indexDims(c, attr.Dims)
	newIdxVars := BoundIndexVars(c, len(newDims))
	flat := to1D(c, newIdxVars, newDims)
	srcIdxs := from1D(c, flat, cached.dims)

	srcIdxExprs := make([]*smt.Term, len(srcIdxs))
	for i, idx := range srcIdxs {
		srcIdxExprs[i] = idx.Expr()
	}

	return cached.Affine(newIdxVars, srcIdxExprs, newDims)
}
