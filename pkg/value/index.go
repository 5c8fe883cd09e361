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

// Index is a symbolic index: one SMT bit-vector of fixed width Context.Bits
// (spec.md §4.3). Used for tensor/memref addressing and induction
// variables. Carries the Builder that minted it so arithmetic methods need
// not thread a Context through every call; this is not process-wide mutable
// state (the anti-pattern Design Note §9 replaces with Context) — it is
// just a reference to the same immutable-construction façade every other
// value in the session already shares.
type Index struct {
	b *smt.Builder
	t *smt.Term
}

// indexSort is the Index sort for ctx.
func indexSort(ctx *Context) smt.Sort { return smt.BVSort(ctx.Bits) }

// ConstIndex builds a literal Index.
func ConstIndex(ctx *Context, v uint64) Index {
	return Index{b: ctx.B, t: ctx.B.BVConst(v, ctx.Bits)}
}

// VarIndex builds a free symbolic Index named name. Every Index produced by
// a var constructor must be exactly a variable symbol — the invariant
// spec.md §3 requires the implementation to assert.
func VarIndex(ctx *Context, name string) Index {
	t := ctx.B.Var(indexSort(ctx), name, smt.VarUnbound)
	assert(t.IsVar(), "VarIndex: builder did not return a variable symbol")

	return Index{b: ctx.B, t: t}
}

// FreshIndex mints a uniquely-named free Index.
func FreshIndex(ctx *Context, prefix string) Index {
	t := ctx.B.Var(indexSort(ctx), prefix, smt.VarFresh)
	assert(t.IsVar(), "FreshIndex: builder did not return a variable symbol")

	return Index{b: ctx.B, t: t}
}

// BoundIndexVars mints n bound induction variables named "i#k", used by
// Tensor/MemRef constructors that build a λ over N dimensions.
func BoundIndexVars(ctx *Context, n int) []Index {
	vars := make([]Index, n)
	for i := range vars {
		t := ctx.B.Var(indexSort(ctx), "i", smt.VarBound)
		assert(t.IsVar(), "BoundIndexVars: builder did not return a variable symbol")
		vars[i] = Index{b: ctx.B, t: t}
	}

	return vars
}

// Expr returns the underlying SMT term.
func (i Index) Expr() *smt.Term { return i.t }

// Add builds i+j.
func (i Index) Add(j Index) Index { return Index{b: i.b, t: i.b.BVAdd(i.t, j.t)} }

// Sub builds i-j.
func (i Index) Sub(j Index) Index { return Index{b: i.b, t: i.b.BVSub(i.t, j.t)} }

// Mul builds i*j.
func (i Index) Mul(j Index) Index { return Index{b: i.b, t: i.b.BVMul(i.t, j.t)} }

// UDiv builds i udiv j (the D' convolution output-size formula of §4.2 is
// expressed with this).
func (i Index) UDiv(j Index) Index { return Index{b: i.b, t: i.b.BVUDiv(i.t, j.t)} }

// URem builds i umod j (used by Tile's "idx mod dim").
func (i Index) URem(j Index) Index { return Index{b: i.b, t: i.b.BVURem(i.t, j.t)} }

// ULT builds i<j as a 1-bit Boolean-sorted term.
func (i Index) ULT(j Index) *smt.Term { return i.b.BVULT(i.t, j.t) }

// Eq builds i==j.
func (i Index) Eq(j Index) *smt.Term { return i.b.Eq(i.t, j.t) }

// Refines is Index's refinement relation: value equality (spec.md §4.3).
func (i Index) Refines(other Index) *smt.Term { return i.Eq(other) }

// Eval evaluates i under a model.
func (i Index) Eval(m *smt.Model) Index { return Index{b: i.b, t: m.Eval(i.t)} }

// WrapIndex wraps a raw Index-sorted term (e.g. one produced by
// to1D/from1D arithmetic inline, or read back via fromExpr) as an Index.
func WrapIndex(b *smt.Builder, t *smt.Term) Index { return Index{b: b, t: t} }
