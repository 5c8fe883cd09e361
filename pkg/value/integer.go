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

import "github.com/symtv/tvcore/pkg/smt"

// Integer is a symbolic bit-vector of some width w (spec.md §4.3). Sign
// interpretation is operation-dependent: comparisons come in unsigned
// (ult/ule) and signed (slt/sle) flavours rather than Integer itself
// carrying a signedness tag.
type Integer struct {
	b *smt.Builder
	t *smt.Term
}

// ConstInteger builds a literal Integer of the given width.
func ConstInteger(ctx *Context, v uint64, width uint) Integer {
	return Integer{b: ctx.B, t: ctx.B.BVConst(v, width)}
}

// VarInteger builds a free symbolic Integer of the given width and flavour.
func VarInteger(ctx *Context, name string, width uint, kind smt.VarKind) Integer {
	return Integer{b: ctx.B, t: ctx.B.Var(smt.BVSort(width), name, kind)}
}

// BoolTrue is the 1-bit constant true.
func BoolTrue(ctx *Context) Integer { return Integer{b: ctx.B, t: ctx.B.BoolConst(true)} }

// BoolFalse is the 1-bit constant false.
func BoolFalse(ctx *Context) Integer { return Integer{b: ctx.B, t: ctx.B.BoolConst(false)} }

// WrapInteger wraps a raw bit-vector term as an Integer.
func WrapInteger(b *smt.Builder, t *smt.Term) Integer { return Integer{b: b, t: t} }

// Expr returns the underlying SMT term.
func (i Integer) Expr() *smt.Term { return i.t }

// Width returns i's bit-width.
func (i Integer) Width() uint { return i.t.Sort().Width() }

func (i Integer) binOp(op func(x, y *smt.Term) *smt.Term, other Integer) Integer {
	assert(i.Width() == other.Width(), "Integer binary op: bit-width mismatch %d vs %d", i.Width(), other.Width())
	return Integer{b: i.b, t: op(i.t, other.t)}
}

// Add builds i+j.
func (i Integer) Add(j Integer) Integer { return i.binOp(i.b.BVAdd, j) }

// Sub builds i-j.
func (i Integer) Sub(j Integer) Integer { return i.binOp(i.b.BVSub, j) }

// Mul builds i*j.
func (i Integer) Mul(j Integer) Integer { return i.binOp(i.b.BVMul, j) }

// UDiv builds unsigned i/j.
func (i Integer) UDiv(j Integer) Integer { return i.binOp(i.b.BVUDiv, j) }

// SDiv builds signed i/j.
func (i Integer) SDiv(j Integer) Integer { return i.binOp(i.b.BVSDiv, j) }

// And builds bitwise i&j.
func (i Integer) And(j Integer) Integer { return i.binOp(i.b.BVAnd, j) }

// Or builds bitwise i|j.
func (i Integer) Or(j Integer) Integer { return i.binOp(i.b.BVOr, j) }

// Xor builds bitwise i^j.
func (i Integer) Xor(j Integer) Integer { return i.binOp(i.b.BVXor, j) }

// ULT builds unsigned i<j.
func (i Integer) ULT(j Integer) Integer { return i.binOp(i.b.BVULT, j) }

// ULE builds unsigned i<=j.
func (i Integer) ULE(j Integer) Integer { return i.binOp(i.b.BVULE, j) }

// SLT builds signed i<j.
func (i Integer) SLT(j Integer) Integer { return i.binOp(i.b.BVSLT, j) }

// SLE builds signed i<=j.
func (i Integer) SLE(j Integer) Integer { return i.binOp(i.b.BVSLE, j) }

// Eq builds i==j.
func (i Integer) Eq(j Integer) Integer {
	assert(i.Width() == j.Width(), "Integer.Eq: bit-width mismatch %d vs %d", i.Width(), j.Width())
	return Integer{b: i.b, t: i.b.Eq(i.t, j.t)}
}

// Refines asserts equal bit-width then equality, per spec.md §4.3
// ("implementation must assert bit-width equality, else emit a clear
// error").
func (i Integer) Refines(other Integer) *smt.Term {
	assert(i.Width() == other.Width(), "Integer.Refines: bit-width mismatch %d vs %d", i.Width(), other.Width())
	return i.b.Eq(i.t, other.t)
}

// Eval evaluates i under a model.
func (i Integer) Eval(m *smt.Model) Integer { return Integer{b: i.b, t: m.Eval(i.t)} }
