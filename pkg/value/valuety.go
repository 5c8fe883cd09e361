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
)

// ValueKind discriminates ValueTy's five cases (spec.md §3: "tagged
// union Index | Integer | Float | Tensor | MemRef").
type ValueKind uint8

const (
	VKIndex ValueKind = iota
	VKInteger
	VKFloat
	VKTensor
	VKMemRef
)

// ValueTy is the VC generator's uniform handle for any value this
// package can model: exactly one of the payload fields is meaningful,
// selected by kind.
type ValueTy struct {
	ctx  *Context
	kind ValueKind

	idx    Index
	i      Integer
	f      Float
	tensor *Tensor
	mem    *MemRef
}

// FromIndex, FromInteger, FromFloat, FromTensor and FromMemRef lift a
// typed value into the ValueTy union.
func FromIndex(ctx *Context, v Index) ValueTy     { return ValueTy{ctx: ctx, kind: VKIndex, idx: v} }
func FromInteger(ctx *Context, v Integer) ValueTy { return ValueTy{ctx: ctx, kind: VKInteger, i: v} }
func FromFloat(ctx *Context, v Float) ValueTy     { return ValueTy{ctx: ctx, kind: VKFloat, f: v} }
func FromTensor(ctx *Context, v *Tensor) ValueTy  { return ValueTy{ctx: ctx, kind: VKTensor, tensor: v} }
func FromMemRef(ctx *Context, v *MemRef) ValueTy  { return ValueTy{ctx: ctx, kind: VKMemRef, mem: v} }

// Kind reports which case of the union v holds.
func (v ValueTy) Kind() ValueKind { return v.kind }

// ValueVisitor is a set of per-case callbacks for Visit. A nil callback
// for v's actual case is simply skipped.
type ValueVisitor struct {
	Index   func(Index)
	Integer func(Integer)
	Float   func(Float)
	Tensor  func(*Tensor)
	MemRef  func(*MemRef)
}

// Visit dispatches v to the matching callback of vis, per spec.md §3's
// "visit operator dispatches on tag".
func (v ValueTy) Visit(vis ValueVisitor) {
	switch v.kind {
	case VKIndex:
		if vis.Index != nil {
			vis.Index(v.idx)
		}
	case VKInteger:
		if vis.Integer != nil {
			vis.Integer(v.i)
		}
	case VKFloat:
		if vis.Float != nil {
			vis.Float(v.f)
		}
	case VKTensor:
		if vis.Tensor != nil {
			vis.Tensor(v.tensor)
		}
	case VKMemRef:
		if vis.MemRef != nil {
			vis.MemRef(v.mem)
		}
	}
}

// TypeDescriptor stands in for the IR type system's own type value (out
// of scope — spec.md §6): just enough to say which ValueTy case a term
// or attribute should be read as, and with what shape.
type TypeDescriptor struct {
	Kind ValueKind
	Elem ElemType

	// Dims/Layout/Memory are meaningful only for Tensor (Dims) and
	// MemRef (all three).
	Dims   []Index
	Layout *Layout
	Memory Memory
	BID    *smt.Term
	Offset Index
}

// AttrToValueTy converts a fully concrete element-attribute value into
// a ValueTy (spec.md §3/§6's `attrToValueTy`). Tensor attributes go
// through the full constant-ingestion pipeline (FromElemsAttr); scalar
// attributes must be a splat of one value. MemRef has no literal
// constant-attribute form.
func AttrToValueTy(ctx *Context, desc TypeDescriptor, attr ConstAttr) (ValueTy, error) {
	switch desc.Kind {
	case VKTensor:
		t, err := FromElemsAttr(ctx, desc.Elem, attr)
		if err != nil {
			return ValueTy{}, errors.Wrapf(err, "AttrToValueTy")
		}

		return FromTensor(ctx, t), nil

	case VKIndex, VKInteger, VKFloat:
		if attr.Kind != ConstSplat {
			return ValueTy{}, unsupported("attrToValueTy: scalar attribute must be a splat")
		}

		bits := constTermFromBits(ctx, desc.Elem, attr.Splat)

		switch desc.Kind {
		case VKIndex:
			return FromIndex(ctx, WrapIndex(ctx.B, bits)), nil
		case VKInteger:
			return FromInteger(ctx, WrapInteger(ctx.B, bits)), nil
		default:
			return FromFloat(ctx, WrapFloat(ctx, bits, desc.Elem)), nil
		}

	default:
		return ValueTy{}, unsupported("attrToValueTy: MemRef has no constant-attribute form")
	}
}

// FromExpr rebuilds a typed ValueTy from a bare SMT term plus the
// descriptor saying what it should be read as (spec.md §6's
// `fromExpr(term, type)`). A Tensor rebuilt this way is assumed fully
// initialized — the VC generator only hands fromExpr a single array
// term when it has no separate initialization tracking of its own.
// MemRef cannot be rebuilt from one term: its bid and offset are
// independent SMT values, not packable into a single expression.
func FromExpr(ctx *Context, desc TypeDescriptor, term *smt.Term) (ValueTy, error) {
	switch desc.Kind {
	case VKIndex:
		return FromIndex(ctx, WrapIndex(ctx.B, term)), nil
	case VKInteger:
		return FromInteger(ctx, WrapInteger(ctx.B, term)), nil
	case VKFloat:
		return FromFloat(ctx, WrapFloat(ctx, term, desc.Elem)), nil
	case VKTensor:
		t := &Tensor{
			ShapedValue: newShapedValue(ctx, desc.Elem, desc.Dims),
			arr:         term,
			initialized: allTrueArray(ctx),
		}

		return FromTensor(ctx, t), nil
	default:
		return ValueTy{}, unsupported("fromExpr: MemRef cannot be rebuilt from a single SMT term")
	}
}

// GetExpr projects v's underlying SMT term (spec.md §6's `getExpr(v)`).
// A Tensor projects its backing array term; MemRef has no single term
// to project (its bid and offset are independent SMT values).
func GetExpr(v ValueTy) (*smt.Term, error) {
	switch v.kind {
	case VKIndex:
		return v.idx.Expr(), nil
	case VKInteger:
		return v.i.Expr(), nil
	case VKFloat:
		return v.f.Expr(), nil
	case VKTensor:
		return v.tensor.arr, nil
	default:
		return nil, unsupported("getExpr: MemRef has no single underlying SMT term")
	}
}

// Eval evaluates v under a model, dispatching to the matching typed
// Eval and rewrapping the result.
func Eval(v ValueTy, m *smt.Model) ValueTy {
	switch v.kind {
	case VKIndex:
		return FromIndex(v.ctx, v.idx.Eval(m))
	case VKInteger:
		return FromInteger(v.ctx, v.i.Eval(m))
	case VKFloat:
		return FromFloat(v.ctx, v.f.Eval(m))
	case VKTensor:
		return FromTensor(v.ctx, v.tensor.Eval(m))
	default:
		return FromMemRef(v.ctx, v.mem.Eval(m))
	}
}

// Refines is the tagged union's refinement relation: false (no free
// variables) when the two values carry different kinds, otherwise
// delegated to the matching typed Refines. Mirrors Tensor.Refines's
// (formula, params) shape so a caller handling Tensor explicitly and
// everything else uniformly does not need two code paths.
func Refines(a, b ValueTy) (*smt.Term, []Index) {
	if a.kind != b.kind {
		return a.ctx.B.BoolConst(false), nil
	}

	switch a.kind {
	case VKIndex:
		return a.idx.Refines(b.idx), nil
	case VKInteger:
		return a.i.Refines(b.i), nil
	case VKFloat:
		return a.f.Refines(b.f), nil
	case VKTensor:
		return a.tensor.Refines(b.tensor)
	default:
		return a.mem.Refines(b.mem), nil
	}
}
