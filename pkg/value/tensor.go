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
	"github.com/pkg/errors"

	"github.com/symtv/tvcore/pkg/smt"
	"github.com/symtv/tvcore/pkg/util"
)

// Tensor is the symbolic shaped value of spec.md §3: a shape, an SMT array
// from Index to the element sort, and a companion "initialized" array of
// the same shape. Immutable — every operation returns a new Tensor sharing
// structure with its inputs via SMT term sharing (the Builder's
// hash-consing).
type Tensor struct {
	ShapedValue
	arr         *smt.Term // Index -> sort(elemType)
	initialized *smt.Term // Index -> Bool
}

func (t *Tensor) elemSort() (smt.Sort, error) { return mustPrimSort(t.ctx, t.elemType) }

// splatArray builds the totally-defined array where every index maps to v.
func splatArray(ctx *Context, v *smt.Term) *smt.Term {
	return ctx.B.ConstArray(indexSort(ctx), v)
}

func allTrueArray(ctx *Context) *smt.Term {
	return splatArray(ctx, ctx.B.BoolConst(true))
}

// NewSplatTensor builds `arr = splat(e), initialized = splat(true)` over
// dims (spec.md §4.2 constructor (a)).
func NewSplatTensor(ctx *Context, elemType ElemType, e *smt.Term, dims []Index) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewSplatTensor")
	}

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         splatArray(ctx, e),
		initialized: allTrueArray(ctx),
	}, nil
}

// storeElems folds Store over base at offsets 0..len(elems)-1, in row-major
// order (constructor (b)/(c)'s "fold(store, freshArr, enumerate(elems))").
func storeElems(ctx *Context, base *smt.Term, elems []*smt.Term) *smt.Term {
	arr := base
	for i, e := range elems {
		arr = ctx.B.Store(arr, ConstIndex(ctx, uint64(i)).Expr(), e)
	}

	return arr
}

// denseBase picks a deterministic base array for dense/sparse ingestion: a
// zero splat, so that two dense constants with the same values hash-cons to
// the same tensor regardless of call order — there is no load-bearing
// "freshArr" identity here, only a value-sharing-friendly placeholder.
func denseBase(ctx *Context, elemType ElemType) *smt.Term {
	zero := getZero(ctx, elemType)
	assert(zero.HasValue(), "denseBase: %s has no zero element", elemType)

	return splatArray(ctx, zero.Unwrap())
}

// NewDenseTensor1D builds a rank-1 dense tensor from elems in row-major
// order (constructor (b)).
func NewDenseTensor1D(ctx *Context, elemType ElemType, elems []*smt.Term) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewDenseTensor1D")
	}

	dims := []Index{ConstIndex(ctx, uint64(len(elems)))}

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         storeElems(ctx, denseBase(ctx, elemType), elems),
		initialized: allTrueArray(ctx),
	}, nil
}

// NewDenseTensor builds a tensor from a row-major element list reshaped to
// dims (constructor (c)). The caller is responsible for len(elems) ==
// ∏dims when dims is fully literal; a symbolic dims vector is taken on
// faith, as spec.md §4.2's reshape also does.
func NewDenseTensor(ctx *Context, elemType ElemType, elems []*smt.Term, dims []Index) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewDenseTensor")
	}

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         storeElems(ctx, denseBase(ctx, elemType), elems),
		initialized: allTrueArray(ctx),
	}, nil
}

// SparseEntry is one explicit (index, value) pair of a sparse constant.
type SparseEntry struct {
	Indices []uint64
	Value   *smt.Term
}

// NewSparseTensor builds `arr = splat(zero)` then stores each entry at its
// row-major offset (constructor (d)); unspecified locations read as zero,
// matching IR semantics — they are not "uninitialized".
func NewSparseTensor(ctx *Context, elemType ElemType, entries []SparseEntry, dims []Index, zero *smt.Term) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewSparseTensor")
	}

	arr := splatArray(ctx, zero)

	for _, e := range entries {
		idxs := make([]Index, len(e.Indices))
		for i, v := range e.Indices {
			idxs[i] = ConstIndex(ctx, v)
		}

		off := to1D(ctx, idxs, dims)
		arr = ctx.B.Store(arr, off.Expr(), e.Value)
	}

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         arr,
		initialized: allTrueArray(ctx),
	}, nil
}

// NewFreshTensor mints a fully symbolic tensor (constructor (e)). When
// initialized is present, the companion array is the given constant splat;
// otherwise it is itself a fresh symbolic array.
func NewFreshTensor(ctx *Context, elemType ElemType, name string, dims []Index, initialized util.Option[bool]) (*Tensor, error) {
	elemSort, err := mustPrimSort(ctx, elemType)
	if err != nil {
		return nil, errors.Wrapf(err, "NewFreshTensor %q", name)
	}

	arr := ctx.B.Var(smt.ArraySort(indexSort(ctx), elemSort), name, smt.VarUnbound)

	var initArr *smt.Term
	if initialized.HasValue() {
		initArr = splatArray(ctx, ctx.B.BoolConst(initialized.Unwrap()))
	} else {
		initArr = ctx.B.Var(smt.ArraySort(indexSort(ctx), smt.BoolSort()), name+".init", smt.VarUnbound)
	}

	return &Tensor{ShapedValue: newShapedValue(ctx, elemType, dims), arr: arr, initialized: initArr}, nil
}

// substituteVars replaces each of vars[i] with replacements[i] throughout
// body, in sequence (the substitutions are to distinct variables, so order
// never matters).
func substituteVars(ctx *Context, body *smt.Term, vars []Index, replacements []Index) *smt.Term {
	for i, v := range vars {
		body = ctx.B.Substitute(body, v.Expr(), replacements[i].Expr())
	}

	return body
}

// NewLambdaTensor builds `λ idx. body[indexVars ↦ from1D(idx, dims)]`
// (constructor (f)), and the same substitution applied to initializedBody
// for the companion array.
func NewLambdaTensor(ctx *Context, elemType ElemType, dims []Index, indexVars []Index,
	body, initializedBody *smt.Term) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewLambdaTensor")
	}

	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, dims)

	arrBody := substituteVars(ctx, body, indexVars, coords)
	initBody := substituteVars(ctx, initializedBody, indexVars, coords)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), arrBody),
		initialized: ctx.B.Lambda(idx1D.Expr(), initBody),
	}, nil
}

// NewInitializedLambdaTensor is NewLambdaTensor with initialized fixed to
// true (`mkInitializedLambda`).
func NewInitializedLambdaTensor(ctx *Context, elemType ElemType, dims []Index, indexVars []Index, body *smt.Term) (*Tensor, error) {
	if _, err := mustPrimSort(ctx, elemType); err != nil {
		return nil, errors.Wrapf(err, "NewInitializedLambdaTensor")
	}

	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, dims)
	arrBody := substituteVars(ctx, body, indexVars, coords)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, elemType, dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), arrBody),
		initialized: allTrueArray(ctx),
	}, nil
}

// Get reads the element at idxs. The returned term is locked (spec.md
// §4.2: "carries a locked flag preventing algebraic simplification by
// callers that do not know the element's type"); wrap it back into
// Integer/Float/Index before further use. The second return is the inbounds
// condition.
func (t *Tensor) Get(idxs []Index) (*smt.Term, *smt.Term) {
	off := to1D(t.ctx, idxs, t.dims)
	return t.GetRaw(off), isInBounds(t.ctx, idxs, t.dims)
}

// GetRaw reads the element at a 1-D offset, bypassing linearisation.
func (t *Tensor) GetRaw(i1d Index) *smt.Term {
	return t.ctx.B.Select(t.arr, i1d.Expr()).Lock()
}

// IsInitialized looks up the companion array at idxs.
func (t *Tensor) IsInitialized(idxs []Index) *smt.Term {
	off := to1D(t.ctx, idxs, t.dims)
	return t.ctx.B.Select(t.initialized, off.Expr())
}

// IsFullyInitialized builds `∀ i < totalSize. initialized[i]`.
func (t *Tensor) IsFullyInitialized() *smt.Term {
	b := t.ctx.B
	iv := BoundIndexVars(t.ctx, 1)[0]
	guard := b.Not(iv.ULT(t.totalSize()))
	body := b.Or(guard, b.Select(t.initialized, iv.Expr()))

	return b.Forall([]*smt.Term{iv.Expr()}, body)
}

// Insert returns a new tensor with v written at idxs (`arr[off] := v`,
// `initialized[off] := true`), and the inbounds condition of the write.
func (t *Tensor) Insert(v *smt.Term, idxs []Index) (*Tensor, *smt.Term) {
	off := to1D(t.ctx, idxs, t.dims)
	newTensor := &Tensor{
		ShapedValue: t.ShapedValue,
		arr:         t.ctx.B.Store(t.arr, off.Expr(), v),
		initialized: t.ctx.B.Store(t.initialized, off.Expr(), t.ctx.B.BoolConst(true)),
	}

	return newTensor, isInBounds(t.ctx, idxs, t.dims)
}

// Affine returns `λ idx. this[srcIdxs[newIdxVars ↦ from1D(idx, newSizes)]]`
// with initialized fixed true — the caller certifies the new shape's
// indices are covered by this tensor (spec.md §4.2).
func (t *Tensor) Affine(newIdxVars []Index, srcIdxs []*smt.Term, newSizes []Index) *Tensor {
	assert(len(srcIdxs) == t.Rank(), "Tensor.Affine: srcIdxs rank %d != source rank %d", len(srcIdxs), t.Rank())

	idx1D := BoundIndexVars(t.ctx, 1)[0]
	newCoords := from1D(t.ctx, idx1D, newSizes)

	srcCoordExprs := make([]*smt.Term, len(srcIdxs))
	for i, expr := range srcIdxs {
		srcCoordExprs[i] = substituteVars(t.ctx, expr, newIdxVars, newCoords)
	}

	srcIdxVals := make([]Index, len(srcCoordExprs))
	for i, e := range srcCoordExprs {
		srcIdxVals[i] = WrapIndex(t.ctx.B, e)
	}

	srcOff := to1D(t.ctx, srcIdxVals, t.dims)
	body := t.ctx.B.Select(t.arr, srcOff.Expr())

	return &Tensor{
		ShapedValue: newShapedValue(t.ctx, t.elemType, newSizes),
		arr:         t.ctx.B.Lambda(idx1D.Expr(), body),
		initialized: allTrueArray(t.ctx),
	}
}

// Concat concatenates t and other along axis: dim[axis] becomes the sum of
// both, and each output element selects from whichever operand it falls in
// (spec.md §4.2).
func (t *Tensor) Concat(other *Tensor, axis int) (*Tensor, error) {
	if t.elemType != other.elemType {
		return nil, unsupported("Concat: element type mismatch %s vs %s", t.elemType, other.elemType)
	}

	if t.Rank() != other.Rank() {
		return nil, unsupported("Concat: rank mismatch %d vs %d", t.Rank(), other.Rank())
	}

	if axis < 0 || axis >= t.Rank() {
		return nil, unsupported("Concat: axis %d out of range for rank %d", axis, t.Rank())
	}

	ctx := t.ctx
	dims := append([]Index(nil), t.dims...)
	dims[axis] = t.dims[axis].Add(other.dims[axis])

	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, dims)

	bCoords := append([]Index(nil), coords...)
	bCoords[axis] = coords[axis].Sub(t.dims[axis])

	aVal := ctx.B.Select(t.arr, to1D(ctx, coords, t.dims).Expr())
	bVal := ctx.B.Select(other.arr, to1D(ctx, bCoords, other.dims).Expr())
	cond := coords[axis].ULT(t.dims[axis])

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), ctx.B.Ite(cond, aVal, bVal)),
		initialized: allTrueArray(ctx),
	}, nil
}

// reindex builds a new tensor of the same dims whose element/initialized at
// idx1D come from this tensor read at a transformed coordinate vector, for
// the shape-preserving or dims-recomputing operations (Reverse/Tile/
// Transpose) that share this pattern.
func (t *Tensor) reindex(newDims []Index, remap func(coords []Index) []Index) *Tensor {
	ctx := t.ctx
	idx1D := BoundIndexVars(ctx, 1)[0]
	newCoords := from1D(ctx, idx1D, newDims)
	srcCoords := remap(newCoords)
	srcOff := to1D(ctx, srcCoords, t.dims)

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, newDims),
		arr:         ctx.B.Lambda(idx1D.Expr(), ctx.B.Select(t.arr, srcOff.Expr())),
		initialized: ctx.B.Lambda(idx1D.Expr(), ctx.B.Select(t.initialized, srcOff.Expr())),
	}
}

// Reverse reflects axis a.
func (t *Tensor) Reverse(axis int) *Tensor {
	assert(axis >= 0 && axis < t.Rank(), "Tensor.Reverse: axis %d out of range for rank %d", axis, t.Rank())

	one := ConstIndex(t.ctx, 1)

	return t.reindex(t.dims, func(coords []Index) []Index {
		out := append([]Index(nil), coords...)
		out[axis] = t.dims[axis].Sub(one).Sub(coords[axis])

		return out
	})
}

// Tile repeats the tensor reps[i] times along axis i, accessing via
// `idx[i] mod dim[i]`.
func (t *Tensor) Tile(reps []uint64) *Tensor {
	assert(len(reps) == t.Rank(), "Tensor.Tile: reps rank %d != tensor rank %d", len(reps), t.Rank())

	newDims := make([]Index, t.Rank())
	for i, d := range t.dims {
		newDims[i] = d.Mul(ConstIndex(t.ctx, reps[i]))
	}

	return t.reindex(newDims, func(coords []Index) []Index {
		out := make([]Index, len(coords))
		for i, c := range coords {
			out[i] = c.URem(t.dims[i])
		}

		return out
	})
}

// Transpose swaps the two axes of a rank-2 tensor.
func (t *Tensor) Transpose() (*Tensor, error) {
	if t.Rank() != 2 {
		return nil, unsupported("Transpose: rank %d, only 2-D supported", t.Rank())
	}

	newDims := []Index{t.dims[1], t.dims[0]}

	return t.reindex(newDims, func(coords []Index) []Index {
		return []Index{coords[1], coords[0]}
	}), nil
}

// Reshape reuses arr/initialized untouched and only replaces dims; the
// caller is responsible for preserving total element count — undefined
// (not rejected) if the sizes disagree, per spec.md §4.2.
func (t *Tensor) Reshape(newDims []Index) *Tensor {
	return &Tensor{ShapedValue: newShapedValue(t.ctx, t.elemType, newDims), arr: t.arr, initialized: t.initialized}
}

// ElementwiseBinary applies fn pointwise to t and other, paired initialized
// by conjunction — the general combinator underlying every specific binary
// op the VC generator composes (SPEC_FULL §4.6).
func (t *Tensor) ElementwiseBinary(other *Tensor, resultType ElemType, fn func(a, b *smt.Term) *smt.Term) *Tensor {
	assert(t.Rank() == other.Rank(), "ElementwiseBinary: rank mismatch %d vs %d", t.Rank(), other.Rank())

	ctx := t.ctx
	idx1D := BoundIndexVars(ctx, 1)[0]
	aVal := ctx.B.Select(t.arr, idx1D.Expr())
	bVal := ctx.B.Select(other.arr, idx1D.Expr())
	aInit := ctx.B.Select(t.initialized, idx1D.Expr())
	bInit := ctx.B.Select(other.initialized, idx1D.Expr())

	return &Tensor{
		ShapedValue: newShapedValue(ctx, resultType, t.dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), fn(aVal, bVal)),
		initialized: ctx.B.Lambda(idx1D.Expr(), ctx.B.And(aInit, bInit)),
	}
}

// ElementwiseUnary applies fn pointwise to t.
func (t *Tensor) ElementwiseUnary(resultType ElemType, fn func(a *smt.Term) *smt.Term) *Tensor {
	ctx := t.ctx
	idx1D := BoundIndexVars(ctx, 1)[0]
	aVal := ctx.B.Select(t.arr, idx1D.Expr())
	aInit := ctx.B.Select(t.initialized, idx1D.Expr())

	return &Tensor{
		ShapedValue: newShapedValue(ctx, resultType, t.dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), fn(aVal)),
		initialized: ctx.B.Lambda(idx1D.Expr(), aInit),
	}
}

// MkIte builds the elementwise ternary select: element is
// `ite(cond(idxs), t.get(idxs), f.get(idxs))`, initialized is the ite of
// both initialized maps. Requires t and f to share element type and rank.
func (t *Tensor) MkIte(f *Tensor, cond func(coords []Index) *smt.Term) (*Tensor, error) {
	if t.elemType != f.elemType {
		return nil, unsupported("MkIte: element type mismatch %s vs %s", t.elemType, f.elemType)
	}

	if t.Rank() != f.Rank() {
		return nil, unsupported("MkIte: rank mismatch %d vs %d", t.Rank(), f.Rank())
	}

	ctx := t.ctx
	idx1D := BoundIndexVars(ctx, 1)[0]
	coords := from1D(ctx, idx1D, t.dims)
	condTerm := cond(coords)

	tVal := ctx.B.Select(t.arr, idx1D.Expr())
	fVal := ctx.B.Select(f.arr, to1D(ctx, coords, f.dims).Expr())
	tInit := ctx.B.Select(t.initialized, idx1D.Expr())
	fInit := ctx.B.Select(f.initialized, to1D(ctx, coords, f.dims).Expr())

	return &Tensor{
		ShapedValue: newShapedValue(ctx, t.elemType, t.dims),
		arr:         ctx.B.Lambda(idx1D.Expr(), ctx.B.Ite(condTerm, tVal, fVal)),
		initialized: ctx.B.Lambda(idx1D.Expr(), ctx.B.Ite(condTerm, tInit, fInit)),
	}, nil
}

// elementRefines dispatches element-level refinement by the tensor's
// element type: NaN-aware for floats, bit equality otherwise.
func elementRefines(ctx *Context, elemType ElemType, a, b *smt.Term) *smt.Term {
	if elemType.IsFloat() {
		return WrapFloat(ctx, a, elemType).Refines(WrapFloat(ctx, b, elemType))
	}

	return ctx.B.Eq(a, b)
}

// dimsMatch compares two dim vectors pairwise. If rank differs or any pair
// of literal dims disagree, it is immediately false (no variables
// introduced); otherwise it is the conjunction of pairwise equalities.
func dimsMatch(ctx *Context, a, b []Index) (*smt.Term, bool) {
	if len(a) != len(b) {
		return nil, false
	}

	conds := make([]*smt.Term, len(a))

	for i := range a {
		if a[i].t.IsConst() && b[i].t.IsConst() && a[i].t.ConstValue() != b[i].t.ConstValue() {
			return nil, false
		}

		conds[i] = a[i].Eq(b[i])
	}

	return ctx.B.And(conds...), true
}

// Refines returns (formula, params) where params = [i] is a free index
// variable, per spec.md §4.2:
//
//	dims_match ∧ (i < ∏dims → (this.init[i] → (other.init[i] ∧ element-refines(this.arr[i], other.arr[i]))))
//
// If rank differs or dims are unreconcilable, returns (false, nil) without
// introducing variables.
func (t *Tensor) Refines(other *Tensor) (*smt.Term, []Index) {
	if t.elemType != other.elemType {
		return t.ctx.B.BoolConst(false), nil
	}

	dimsEq, ok := dimsMatch(t.ctx, t.dims, other.dims)
	if !ok {
		return t.ctx.B.BoolConst(false), nil
	}

	b := t.ctx.B
	i := BoundIndexVars(t.ctx, 1)[0]

	thisInit := b.Select(t.initialized, i.Expr())
	otherInit := b.Select(other.initialized, i.Expr())
	thisElem := b.Select(t.arr, i.Expr())
	otherElem := b.Select(other.arr, i.Expr())

	inner := b.Or(b.Not(thisInit), b.And(otherInit, elementRefines(t.ctx, t.elemType, thisElem, otherElem)))
	guarded := b.Or(b.Not(i.ULT(t.totalSize())), inner)

	return b.And(dimsEq, guarded), []Index{i}
}

// Eval evaluates every term of t under a model.
func (t *Tensor) Eval(m *smt.Model) *Tensor {
	newDims := make([]Index, len(t.dims))
	for i, d := range t.dims {
		newDims[i] = d.Eval(m)
	}

	return &Tensor{
		ShapedValue: newShapedValue(t.ctx, t.elemType, newDims),
		arr:         m.Eval(t.arr),
		initialized: m.Eval(t.initialized),
	}
}
