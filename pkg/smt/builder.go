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
package smt

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Builder is the term-construction façade: every Term in a validation
// session is minted through exactly one Builder, which hash-conses nodes so
// that structurally identical terms share one allocation (mirrors how a
// real SMT library's AST is hash-consed internally — see §9's "shared
// immutable value graphs" design note).
type Builder struct {
	mu      sync.Mutex
	table   map[uint64][]*Term
	skolem  atomic.Uint64
	boundID atomic.Uint64
}

// NewBuilder constructs an empty term builder.
func NewBuilder() *Builder {
	return &Builder{table: make(map[uint64][]*Term)}
}

func (b *Builder) intern(kind Kind, sort Sort, args []*Term, bits uint64, name string, vk VarKind, locked bool) *Term {
	h := structuralHash(kind, sort, args, bits, name, vk)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cand := range b.table[h] {
		if cand.kind == kind && cand.sort.Equals(sort) && cand.bits == bits &&
			cand.name == name && cand.varKind == vk && cand.locked == locked &&
			sameArgs(cand.args, args) {
			return cand
		}
	}

	t := &Term{kind: kind, sort: sort, args: args, bits: bits, name: name, varKind: vk, locked: locked, id: h}
	b.table[h] = append(b.table[h], t)

	return t
}

func sameArgs(a, b []*Term) bool {
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

// ----------------------------------------------------------------------------
// Constants & variables
// ----------------------------------------------------------------------------

// BVConst builds a bit-vector literal of the given width, masking value to
// fit.
func (b *Builder) BVConst(value uint64, width uint) *Term {
	if width < 64 {
		value &= (uint64(1) << width) - 1
	}

	return b.intern(KindBVConst, BVSort(width), nil, value, "", 0, false)
}

// BoolConst builds a one-bit Boolean constant (true=1, false=0), matching
// Integer::boolTrue/boolFalse in §4.3.
func (b *Builder) BoolConst(v bool) *Term {
	var bit uint64
	if v {
		bit = 1
	}

	return b.intern(KindBVConst, BVSort(1), nil, bit, "", 0, false)
}

// Var builds a variable of the given sort and flavour. Fresh variables get
// an auto-incrementing suffix so repeated calls with the same prefix never
// collide; bound variables are similarly disambiguated so that two
// quantifiers introduced from the same prefix do not alias.
func (b *Builder) Var(sort Sort, name string, vk VarKind) *Term {
	switch vk {
	case VarFresh:
		name = fmt.Sprintf("%s#%d", name, b.skolem.Inc()-1)
	case VarBound:
		name = fmt.Sprintf("%s#%d", name, b.boundID.Inc()-1)
	}

	return b.intern(KindVar, sort, nil, 0, name, vk, false)
}

// App builds an application of an uninterpreted function symbol, used by
// Layout.inverseMappings when no closed-form inverse exists (§4.5).
func (b *Builder) App(name string, resultSort Sort, args ...*Term) *Term {
	return b.intern(KindApp, resultSort, args, 0, name, 0, false)
}

// ----------------------------------------------------------------------------
// Bit-vector arithmetic
// ----------------------------------------------------------------------------

func (b *Builder) bvBinOp(kind Kind, x, y *Term) *Term {
	if !x.sort.Equals(y.sort) {
		panic(fmt.Sprintf("smt: bit-width mismatch: %s vs %s", x.sort, y.sort))
	}

	return b.intern(kind, x.sort, []*Term{x, y}, 0, "", 0, false)
}

// BVAdd builds x+y.
func (b *Builder) BVAdd(x, y *Term) *Term { return b.bvBinOp(KindBVAdd, x, y) }

// BVSub builds x-y.
func (b *Builder) BVSub(x, y *Term) *Term { return b.bvBinOp(KindBVSub, x, y) }

// BVMul builds x*y.
func (b *Builder) BVMul(x, y *Term) *Term { return b.bvBinOp(KindBVMul, x, y) }

// BVUDiv builds unsigned x/y.
func (b *Builder) BVUDiv(x, y *Term) *Term { return b.bvBinOp(KindBVUDiv, x, y) }

// BVSDiv builds signed x/y.
func (b *Builder) BVSDiv(x, y *Term) *Term { return b.bvBinOp(KindBVSDiv, x, y) }

// BVURem builds unsigned x%y.
func (b *Builder) BVURem(x, y *Term) *Term { return b.bvBinOp(KindBVURem, x, y) }

// BVSRem builds signed x%y.
func (b *Builder) BVSRem(x, y *Term) *Term { return b.bvBinOp(KindBVSRem, x, y) }

// BVAnd builds bitwise x&y.
func (b *Builder) BVAnd(x, y *Term) *Term { return b.bvBinOp(KindBVAnd, x, y) }

// BVOr builds bitwise x|y.
func (b *Builder) BVOr(x, y *Term) *Term { return b.bvBinOp(KindBVOr, x, y) }

// BVXor builds bitwise x^y.
func (b *Builder) BVXor(x, y *Term) *Term { return b.bvBinOp(KindBVXor, x, y) }

// BVShl builds x<<y.
func (b *Builder) BVShl(x, y *Term) *Term { return b.bvBinOp(KindBVShl, x, y) }

// BVLShr builds logical x>>y.
func (b *Builder) BVLShr(x, y *Term) *Term { return b.bvBinOp(KindBVLShr, x, y) }

// BVAShr builds arithmetic x>>y.
func (b *Builder) BVAShr(x, y *Term) *Term { return b.bvBinOp(KindBVAShr, x, y) }

// BVNeg builds two's-complement negation.
func (b *Builder) BVNeg(x *Term) *Term {
	return b.intern(KindBVNeg, x.sort, []*Term{x}, 0, "", 0, false)
}

func (b *Builder) bvCmp(kind Kind, x, y *Term) *Term {
	if !x.sort.Equals(y.sort) {
		panic(fmt.Sprintf("smt: bit-width mismatch: %s vs %s", x.sort, y.sort))
	}

	return b.intern(kind, BVSort(1), []*Term{x, y}, 0, "", 0, false)
}

// BVULT builds unsigned x<y as a 1-bit result.
func (b *Builder) BVULT(x, y *Term) *Term { return b.bvCmp(KindULT, x, y) }

// BVULE builds unsigned x<=y as a 1-bit result.
func (b *Builder) BVULE(x, y *Term) *Term { return b.bvCmp(KindULE, x, y) }

// BVUGT builds unsigned x>y as a 1-bit result.
func (b *Builder) BVUGT(x, y *Term) *Term { return b.bvCmp(KindUGT, x, y) }

// BVUGE builds unsigned x>=y as a 1-bit result.
func (b *Builder) BVUGE(x, y *Term) *Term { return b.bvCmp(KindUGE, x, y) }

// BVSLT builds signed x<y as a 1-bit result.
func (b *Builder) BVSLT(x, y *Term) *Term { return b.bvCmp(KindSLT, x, y) }

// BVSLE builds signed x<=y as a 1-bit result.
func (b *Builder) BVSLE(x, y *Term) *Term { return b.bvCmp(KindSLE, x, y) }

// BVSGT builds signed x>y as a 1-bit result.
func (b *Builder) BVSGT(x, y *Term) *Term { return b.bvCmp(KindSGT, x, y) }

// BVSGE builds signed x>=y as a 1-bit result.
func (b *Builder) BVSGE(x, y *Term) *Term { return b.bvCmp(KindSGE, x, y) }

// ----------------------------------------------------------------------------
// Equality & booleans
// ----------------------------------------------------------------------------

// Eq builds x==y as a 1-bit Boolean-sorted result. x and y must share a
// sort (this is the "assert bit-width equality" requirement of §4.3).
func (b *Builder) Eq(x, y *Term) *Term {
	if !x.sort.Equals(y.sort) {
		panic(fmt.Sprintf("smt: Eq sort mismatch: %s vs %s", x.sort, y.sort))
	}

	return b.intern(KindEq, BoolSort(), []*Term{x, y}, 0, "", 0, false)
}

// Not builds logical negation.
func (b *Builder) Not(x *Term) *Term {
	return b.intern(KindNot, BoolSort(), []*Term{x}, 0, "", 0, false)
}

// And builds a conjunction of zero or more terms (empty => true).
func (b *Builder) And(args ...*Term) *Term {
	if len(args) == 0 {
		return b.BoolConst(true)
	}

	return b.intern(KindAnd, BoolSort(), args, 0, "", 0, false)
}

// Or builds a disjunction of zero or more terms (empty => false).
func (b *Builder) Or(args ...*Term) *Term {
	if len(args) == 0 {
		return b.BoolConst(false)
	}

	return b.intern(KindOr, BoolSort(), args, 0, "", 0, false)
}

// Ite builds (if cond then t else f). cond must be 1-bit/Bool-sorted; t
// and f must share a sort.
func (b *Builder) Ite(cond, t, f *Term) *Term {
	if !t.sort.Equals(f.sort) {
		panic(fmt.Sprintf("smt: Ite branch sort mismatch: %s vs %s", t.sort, f.sort))
	}

	return b.intern(KindIte, t.sort, []*Term{cond, t, f}, 0, "", 0, false)
}

// ----------------------------------------------------------------------------
// Arrays
// ----------------------------------------------------------------------------

// ConstArray builds a totally-defined array every index of which maps to v
// (a "splat"), over the given domain sort.
func (b *Builder) ConstArray(domain Sort, v *Term) *Term {
	return b.intern(KindConstArray, ArraySort(domain, v.sort), []*Term{v}, 0, "splat", 0, false)
}

// Select builds arr[idx].
func (b *Builder) Select(arr, idx *Term) *Term {
	if !arr.sort.IsArray() {
		panic("smt: Select on non-array term")
	}

	if !arr.sort.Domain().Equals(idx.sort) {
		panic(fmt.Sprintf("smt: Select index sort mismatch: %s vs %s", arr.sort.Domain(), idx.sort))
	}

	return b.intern(KindSelect, arr.sort.Elem(), []*Term{arr, idx}, 0, "", 0, false)
}

// Store builds arr[idx := v], a new array identical to arr except at idx.
func (b *Builder) Store(arr, idx, v *Term) *Term {
	if !arr.sort.IsArray() {
		panic("smt: Store on non-array term")
	}

	if !arr.sort.Elem().Equals(v.sort) {
		panic(fmt.Sprintf("smt: Store value sort mismatch: %s vs %s", arr.sort.Elem(), v.sort))
	}

	return b.intern(KindStore, arr.sort, []*Term{arr, idx, v}, 0, "", 0, false)
}

// Lambda builds a first-class array value λ boundVar. body — used to
// construct tensors whose element depends on indices via an arbitrary
// expression (mkLambda, affine, concat, reverse, tile, transpose, conv, …).
// boundVar must be a single KindVar of VarBound flavour.
func (b *Builder) Lambda(boundVar, body *Term) *Term {
	if !boundVar.IsVar() || boundVar.VarKind() != VarBound {
		panic("smt: Lambda requires a bound variable")
	}

	return b.intern(KindLambda, ArraySort(boundVar.sort, body.sort), []*Term{boundVar, body}, 0, "", 0, false)
}

// ----------------------------------------------------------------------------
// Quantifiers
// ----------------------------------------------------------------------------

// Forall builds a universally quantified formula over the given bound
// variables.
func (b *Builder) Forall(vars []*Term, body *Term) *Term {
	return b.intern(KindForall, BoolSort(), append(append([]*Term{}, vars...), body), 0, "", 0, false)
}

// Exists builds an existentially quantified formula over the given bound
// variables.
func (b *Builder) Exists(vars []*Term, body *Term) *Term {
	return b.intern(KindExists, BoolSort(), append(append([]*Term{}, vars...), body), 0, "", 0, false)
}
