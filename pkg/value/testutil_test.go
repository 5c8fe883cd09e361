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

// deepSimplify recursively folds t bottom-up, since Builder.Simplify is a
// single-level peephole (spec.md §2's "not a decision procedure") and
// leaves nested arithmetic/comparisons unfolded until their operands are
// already constant. Test-only: production code never needs more than one
// Simplify pass because its consumers (Model.Eval, Tensor.Print) only ever
// ask about array Select/Store chains, not deeply nested arithmetic.
//
// Folding a child first, then simplifying the rebuilt parent, can itself
// expose brand-new structure (select-of-lambda beta-reduces to a body that
// was never visited by the bottom-up pass, since it didn't exist until
// substitution ran) — so whenever Simplify actually changes the rebuilt
// node, deepSimplify runs again on the result instead of stopping after one
// pass.
func deepSimplify(b *smt.Builder, t *smt.Term) *smt.Term {
	args := t.Args()
	if len(args) == 0 {
		return t
	}

	newArgs := make([]*smt.Term, len(args))
	for i, a := range args {
		newArgs[i] = deepSimplify(b, a)
	}

	rebuilt := rebuildTerm(b, t, newArgs)

	result := b.Simplify(rebuilt)
	if result == rebuilt {
		return result
	}

	return deepSimplify(b, result)
}

func rebuildTerm(b *smt.Builder, t *smt.Term, a []*smt.Term) *smt.Term {
	switch t.Kind() {
	case smt.KindBVAdd:
		return b.BVAdd(a[0], a[1])
	case smt.KindBVSub:
		return b.BVSub(a[0], a[1])
	case smt.KindBVMul:
		return b.BVMul(a[0], a[1])
	case smt.KindBVUDiv:
		return b.BVUDiv(a[0], a[1])
	case smt.KindBVSDiv:
		return b.BVSDiv(a[0], a[1])
	case smt.KindBVURem:
		return b.BVURem(a[0], a[1])
	case smt.KindBVSRem:
		return b.BVSRem(a[0], a[1])
	case smt.KindBVNeg:
		return b.BVNeg(a[0])
	case smt.KindBVAnd:
		return b.BVAnd(a[0], a[1])
	case smt.KindBVOr:
		return b.BVOr(a[0], a[1])
	case smt.KindBVXor:
		return b.BVXor(a[0], a[1])
	case smt.KindBVShl:
		return b.BVShl(a[0], a[1])
	case smt.KindBVLShr:
		return b.BVLShr(a[0], a[1])
	case smt.KindBVAShr:
		return b.BVAShr(a[0], a[1])
	case smt.KindULT:
		return b.BVULT(a[0], a[1])
	case smt.KindULE:
		return b.BVULE(a[0], a[1])
	case smt.KindUGT:
		return b.BVUGT(a[0], a[1])
	case smt.KindUGE:
		return b.BVUGE(a[0], a[1])
	case smt.KindSLT:
		return b.BVSLT(a[0], a[1])
	case smt.KindSLE:
		return b.BVSLE(a[0], a[1])
	case smt.KindSGT:
		return b.BVSGT(a[0], a[1])
	case smt.KindSGE:
		return b.BVSGE(a[0], a[1])
	case smt.KindEq:
		return b.Eq(a[0], a[1])
	case smt.KindNot:
		return b.Not(a[0])
	case smt.KindAnd:
		return b.And(a...)
	case smt.KindOr:
		return b.Or(a...)
	case smt.KindIte:
		return b.Ite(a[0], a[1], a[2])
	case smt.KindSelect:
		return b.Select(a[0], a[1])
	case smt.KindStore:
		return b.Store(a[0], a[1], a[2])
	case smt.KindConstArray:
		return b.ConstArray(t.Sort().Domain(), a[0])
	case smt.KindLambda:
		return b.Lambda(a[0], a[1])
	case smt.KindForall:
		return b.Forall(a[:len(a)-1], a[len(a)-1])
	case smt.KindExists:
		return b.Exists(a[:len(a)-1], a[len(a)-1])
	case smt.KindApp:
		return b.App(t.Name(), t.Sort(), a...)
	default:
		return t
	}
}
