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
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind discriminates the node shapes this algebra supports.
type Kind uint8

// The term kinds. Grouped roughly as: leaves, bit-vector arithmetic,
// bit-vector comparisons, boolean connectives, arrays, binders.
const (
	KindBVConst Kind = iota
	KindVar
	KindBVAdd
	KindBVSub
	KindBVMul
	KindBVUDiv
	KindBVSDiv
	KindBVURem
	KindBVSRem
	KindBVNeg
	KindBVAnd
	KindBVOr
	KindBVXor
	KindBVShl
	KindBVLShr
	KindBVAShr
	KindULT
	KindULE
	KindUGT
	KindUGE
	KindSLT
	KindSLE
	KindSGT
	KindSGE
	KindEq
	KindNot
	KindAnd
	KindOr
	KindIte
	KindSelect
	KindStore
	KindConstArray
	KindLambda
	KindForall
	KindExists
	KindApp
)

// VarKind distinguishes the three flavours of symbolic variable described in
// §3 of the value algebra spec: bound (quantifier-introduced), unbound (free
// symbolic input) and fresh (uniquely-named free variable).
type VarKind uint8

const (
	// VarBound marks a quantifier-bound induction variable.
	VarBound VarKind = iota
	// VarUnbound marks a free symbolic variable with a caller-chosen name.
	VarUnbound
	// VarFresh marks a free variable minted with a guaranteed-unique name.
	VarFresh
)

// Term is a hash-consed node in the term DAG. Two Terms built from the same
// Builder are pointer-equal iff they are structurally equal; this is what
// lets algebraic operations such as Tensor.refines compare sub-expressions
// by identity rather than by deep structural walk.
type Term struct {
	kind    Kind
	sort    Sort
	args    []*Term
	bits    uint64 // payload for KindBVConst
	name    string // payload for KindVar / KindApp / KindConstArray debug name
	varKind VarKind
	// locked marks a term returned by a Tensor/MemRef element read before the
	// caller has re-wrapped it as Integer/Float/Index. It is a phantom tag,
	// not a semantic property: it exists purely to stop callers from feeding
	// an untyped element straight into algebraic simplification.
	locked bool
	// id is the structural hash used as the hash-consing key.
	id uint64
}

// Sort returns this term's sort.
func (t *Term) Sort() Sort { return t.sort }

// Kind returns this term's kind.
func (t *Term) Kind() Kind { return t.kind }

// Args returns the operand sub-terms.
func (t *Term) Args() []*Term { return t.args }

// Locked reports whether this term carries the "read from shaped value"
// phantom tag (see field doc above).
func (t *Term) Locked() bool { return t.locked }

// Lock returns a copy of t tagged as locked. Locking never changes identity
// for hash-consing purposes (the tag is metadata, not structure) but is
// tracked on the returned handle so callers can assert on it.
func (t *Term) Lock() *Term {
	if t.locked {
		return t
	}

	cp := *t
	cp.locked = true

	return &cp
}

// IsVar reports whether t is exactly a variable (not merely of variable
// sort) — the invariant Index.var() must assert per §3.
func (t *Term) IsVar() bool { return t.kind == KindVar }

// VarKind returns the variable flavour. Panics if t is not a variable.
func (t *Term) VarKind() VarKind {
	if t.kind != KindVar {
		panic("smt: VarKind() of non-variable term")
	}

	return t.varKind
}

// Name returns the symbol name of a variable, uninterpreted function
// application or constant array base. Panics on other kinds.
func (t *Term) Name() string {
	switch t.kind {
	case KindVar, KindApp, KindConstArray:
		return t.name
	default:
		panic("smt: Name() of term without a name")
	}
}

// ConstValue returns the literal value of a KindBVConst term.
func (t *Term) ConstValue() uint64 {
	if t.kind != KindBVConst {
		panic("smt: ConstValue() of non-constant term")
	}

	return t.bits
}

// IsConst reports whether t is a literal bit-vector constant.
func (t *Term) IsConst() bool { return t.kind == KindBVConst }

// String renders a term as an s-expression-flavoured string, for debugging
// and for the pretty-printer's "else v" fallback rendering.
func (t *Term) String() string {
	switch t.kind {
	case KindBVConst:
		return strconv.FormatUint(t.bits, 10)
	case KindVar:
		return t.name
	case KindConstArray:
		return fmt.Sprintf("(const-array %s)", t.args[0].String())
	case KindApp:
		return fmt.Sprintf("(%s %s)", t.name, joinTerms(t.args))
	default:
		return fmt.Sprintf("(%s %s)", kindNames[t.kind], joinTerms(t.args))
	}
}

func joinTerms(args []*Term) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}

	return strings.Join(parts, " ")
}

var kindNames = map[Kind]string{
	KindBVAdd: "bvadd", KindBVSub: "bvsub", KindBVMul: "bvmul",
	KindBVUDiv: "bvudiv", KindBVSDiv: "bvsdiv", KindBVURem: "bvurem",
	KindBVSRem: "bvsrem", KindBVNeg: "bvneg", KindBVAnd: "bvand",
	KindBVOr: "bvor", KindBVXor: "bvxor", KindBVShl: "bvshl",
	KindBVLShr: "bvlshr", KindBVAShr: "bvashr", KindULT: "bvult",
	KindULE: "bvule", KindUGT: "bvugt", KindUGE: "bvuge", KindSLT: "bvslt",
	KindSLE: "bvsle", KindSGT: "bvsgt", KindSGE: "bvsge", KindEq: "=",
	KindNot: "not", KindAnd: "and", KindOr: "or", KindIte: "ite",
	KindSelect: "select", KindStore: "store", KindLambda: "lambda",
	KindForall: "forall", KindExists: "exists",
}

// structuralHash computes the hash-consing key for a candidate node. It must
// be a pure function of the fields that determine structural identity.
func structuralHash(kind Kind, sort Sort, args []*Term, bits uint64, name string, varKind VarKind) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.Write([]byte(sort.String()))

	for _, a := range args {
		var idBuf [8]byte
		for i := range idBuf {
			idBuf[i] = byte(a.id >> (8 * i))
		}

		_, _ = h.Write(idBuf[:])
	}

	var bitsBuf [8]byte
	for i := range bitsBuf {
		bitsBuf[i] = byte(bits >> (8 * i))
	}

	_, _ = h.Write(bitsBuf[:])
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{byte(varKind)})

	return h.Sum64()
}
