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
	"github.com/symtv/tvcore/pkg/aop"
	"github.com/symtv/tvcore/pkg/smt"
)

// Float is a typed FP value: a pair of an SMT term and the element type
// that names which encoding interprets it (spec.md §4.3). All arithmetic
// delegates to the FP-encoding backend indexed by ty, preserving the type
// across operations.
type Float struct {
	b   *smt.Builder
	enc aop.Encoding
	ty  ElemType
	t   *smt.Term
}

// VarFloat builds a free symbolic Float of type ty.
func VarFloat(ctx *Context, name string, ty ElemType, kind smt.VarKind) Float {
	enc, ok := ctx.encodingFor(ty)
	assert(ok, "VarFloat: %s has no registered FP encoding", ty)

	return Float{b: ctx.B, enc: enc, ty: ty, t: ctx.B.Var(enc.Sort(), name, kind)}
}

// ConstFloat builds a Float constant from an IEEE-754 bit pattern (the
// "apf" of spec.md §4.3, projected down to its raw bits by the caller —
// attribute decoding is the IR type system's job, out of scope here).
func ConstFloat(ctx *Context, bits uint64, ty ElemType) Float {
	enc, ok := ctx.encodingFor(ty)
	assert(ok, "ConstFloat: %s has no registered FP encoding", ty)

	return Float{b: ctx.B, enc: enc, ty: ty, t: enc.Constant(bits)}
}

// WrapFloat wraps a raw term of ty's encoding sort as a Float.
func WrapFloat(ctx *Context, t *smt.Term, ty ElemType) Float {
	enc, ok := ctx.encodingFor(ty)
	assert(ok, "WrapFloat: %s has no registered FP encoding", ty)

	return Float{b: ctx.B, enc: enc, ty: ty, t: t}
}

// Expr returns the underlying SMT term.
func (f Float) Expr() *smt.Term { return f.t }

// Type returns f's element type.
func (f Float) Type() ElemType { return f.ty }

func (f Float) sameType(other Float) {
	assert(f.ty == other.ty, "Float op: element type mismatch %s vs %s", f.ty, other.ty)
}

// Add builds f+g.
func (f Float) Add(g Float) Float {
	f.sameType(g)
	return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Add(f.t, g.t)}
}

// Mul builds f*g.
func (f Float) Mul(g Float) Float {
	f.sameType(g)
	return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Mul(f.t, g.t)}
}

// Div builds f/g.
func (f Float) Div(g Float) Float {
	f.sameType(g)
	return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Div(f.t, g.t)}
}

// Abs builds |f|.
func (f Float) Abs() Float { return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Abs(f.t)} }

// Neg builds -f.
func (f Float) Neg() Float { return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Neg(f.t)} }

// Cmp builds a 1-bit Integer encoding pred(f, g).
func (f Float) Cmp(pred aop.Predicate, g Float) Integer {
	f.sameType(g)
	return Integer{b: f.b, t: f.enc.Cmp(pred, f.t, g.t)}
}

// Extend widens f to dst (e.g. f32 -> f64); also consults dst's encoding,
// per spec.md §4.3.
func (f Float) Extend(ctx *Context, dst ElemType) Float {
	dstEnc, ok := ctx.encodingFor(dst)
	assert(ok, "Float.Extend: %s has no registered FP encoding", dst)

	return Float{b: f.b, enc: dstEnc, ty: dst, t: f.enc.Extend(f.t, dstEnc)}
}

// Truncate narrows f to dst.
func (f Float) Truncate(ctx *Context, dst ElemType) Float {
	dstEnc, ok := ctx.encodingFor(dst)
	assert(ok, "Float.Truncate: %s has no registered FP encoding", dst)

	return Float{b: f.b, enc: dstEnc, ty: dst, t: f.enc.Truncate(f.t, dstEnc)}
}

// Exp builds e^f.
func (f Float) Exp() Float { return Float{b: f.b, enc: f.enc, ty: f.ty, t: f.enc.Exp(f.t)} }

// FloatFromSignedInt converts a two's-complement signed Integer to ty.
func FloatFromSignedInt(ctx *Context, i Integer, ty ElemType) Float {
	enc, ok := ctx.encodingFor(ty)
	assert(ok, "FloatFromSignedInt: %s has no registered FP encoding", ty)

	return Float{b: ctx.B, enc: enc, ty: ty, t: enc.CastFromSignedInt(i.t)}
}

// IsNaN builds a 1-bit predicate testing whether f is NaN.
func (f Float) IsNaN() Integer { return Integer{b: f.b, t: f.enc.IsNaN(f.t)} }

// Refines is NaN-aware: "target may refine source iff both are NaN or both
// equal bit-for-bit" (spec.md §4.3) — the single invariant distinguishing
// FP refinement from integer equality.
func (f Float) Refines(other Float) *smt.Term {
	f.sameType(other)

	n1, n2 := f.IsNaN().t, other.IsNaN().t
	eitherNaN := f.b.Or(n1, n2)
	bothNaN := f.b.Eq(n1, n2)
	bitsEq := f.b.Eq(f.t, other.t)

	return f.b.Ite(eitherNaN, bothNaN, bitsEq)
}

// Eval evaluates f under a model.
func (f Float) Eval(m *smt.Model) Float { return Float{b: f.b, enc: f.enc, ty: f.ty, t: m.Eval(f.t)} }
