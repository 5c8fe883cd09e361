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

// Simplify performs peephole structural simplification. It is not a
// decision procedure — evaluating SMT formulas is explicitly out of scope
// (spec.md Non-goals) — it only collapses patterns that are true by
// construction: constant folding (including And/Or/Not over literals),
// ite(true/false, ...), select-of-store with syntactically identical or
// distinct literal indices, select-of-const-array and select-of-lambda.
func (b *Builder) Simplify(t *Term) *Term {
	switch t.kind {
	case KindIte:
		cond, then, els := t.args[0], t.args[1], t.args[2]
		if cond.IsConst() {
			if cond.ConstValue() != 0 {
				return b.Simplify(then)
			}

			return b.Simplify(els)
		}

		return t
	case KindSelect:
		arr, idx := t.args[0], t.args[1]
		switch arr.kind {
		case KindConstArray:
			return arr.args[0]
		case KindStore:
			storeArr, storeIdx, storeVal := arr.args[0], arr.args[1], arr.args[2]
			if storeIdx == idx {
				return storeVal
			}
			// Two distinct literals never denote the same offset, so the
			// read falls through to the underlying array. Any other pair
			// of non-identical indices might still be equal, which only
			// solving could tell, so the select is left as is.
			if storeIdx.IsConst() && idx.IsConst() {
				return b.Simplify(b.Select(storeArr, idx))
			}

			return t
		case KindLambda:
			return b.betaReduce(arr, idx)
		}

		return t
	case KindNot:
		if t.args[0].IsConst() {
			return b.BoolConst(t.args[0].ConstValue() == 0)
		}

		return t
	case KindAnd, KindOr:
		// A literal false decides an And and a literal true an Or; operands
		// that are all literal otherwise fold to the connective's identity.
		decider := t.kind == KindOr
		allConst := true
		for _, a := range t.args {
			if !a.IsConst() {
				allConst = false
			} else if (a.ConstValue() != 0) == decider {
				return b.BoolConst(decider)
			}
		}
		if allConst {
			return b.BoolConst(!decider)
		}
		return t
	case KindBVAdd, KindBVSub, KindBVMul, KindBVAnd, KindBVOr, KindBVXor, KindBVUDiv, KindBVURem:
		return b.foldBinary(t)
	case KindULT, KindULE, KindUGT, KindUGE, KindSLT, KindSLE, KindSGT, KindSGE, KindEq:
		return b.foldCompare(t)
	default:
		return t
	}
}

// foldCompare constant-folds a comparison between two literal operands
// into a BoolConst, the same "true by construction" guarantee foldBinary
// gives arithmetic ops. Signed comparisons reinterpret the operand's raw
// bit pattern as two's-complement at its declared width.
func (b *Builder) foldCompare(t *Term) *Term {
	x, y := t.args[0], t.args[1]
	if !x.IsConst() || !y.IsConst() {
		return t
	}

	switch t.kind {
	case KindULT:
		return b.BoolConst(x.ConstValue() < y.ConstValue())
	case KindULE:
		return b.BoolConst(x.ConstValue() <= y.ConstValue())
	case KindUGT:
		return b.BoolConst(x.ConstValue() > y.ConstValue())
	case KindUGE:
		return b.BoolConst(x.ConstValue() >= y.ConstValue())
	case KindEq:
		return b.BoolConst(x.ConstValue() == y.ConstValue())
	case KindSLT:
		return b.BoolConst(signExtend(x) < signExtend(y))
	case KindSLE:
		return b.BoolConst(signExtend(x) <= signExtend(y))
	case KindSGT:
		return b.BoolConst(signExtend(x) > signExtend(y))
	case KindSGE:
		return b.BoolConst(signExtend(x) >= signExtend(y))
	default:
		return t
	}
}

// signExtend reinterprets a const bit-vector's raw value as a signed
// int64 at its declared width.
func signExtend(t *Term) int64 {
	width := t.sort.Width()
	v := t.ConstValue()

	if width < 64 && v&(1<<(width-1)) != 0 {
		v |= ^uint64(0) << width
	}

	return int64(v)
}

// foldBinary constant-folds a binary bit-vector op between two literal
// operands. Division/remainder by a literal zero is left unfolded (SMT-LIB
// gives bvudiv/bvurem by zero a defined-but-solver-specific result; this
// module has no opinion on it, so it leaves the term for the surrounding
// solver rather than guessing).
func (b *Builder) foldBinary(t *Term) *Term {
	x, y := t.args[0], t.args[1]
	if !x.IsConst() || !y.IsConst() {
		return t
	}

	width := x.sort.Width()
	var v uint64

	switch t.kind {
	case KindBVAdd:
		v = x.ConstValue() + y.ConstValue()
	case KindBVSub:
		v = x.ConstValue() - y.ConstValue()
	case KindBVMul:
		v = x.ConstValue() * y.ConstValue()
	case KindBVAnd:
		v = x.ConstValue() & y.ConstValue()
	case KindBVOr:
		v = x.ConstValue() | y.ConstValue()
	case KindBVXor:
		v = x.ConstValue() ^ y.ConstValue()
	case KindBVUDiv:
		if y.ConstValue() == 0 {
			return t
		}

		v = x.ConstValue() / y.ConstValue()
	case KindBVURem:
		if y.ConstValue() == 0 {
			return t
		}

		v = x.ConstValue() % y.ConstValue()
	default:
		return t
	}

	return b.BVConst(v, width)
}

// betaReduce substitutes idx for the Lambda's bound variable throughout its
// body. Used to collapse select(lambda(i, body), idx) => body[i := idx].
func (b *Builder) betaReduce(lambda, idx *Term) *Term {
	boundVar, body := lambda.args[0], lambda.args[1]

	return b.Simplify(b.substitute(body, map[*Term]*Term{boundVar: idx}))
}

// Substitute replaces a single bound variable with a value throughout t.
// Exported for use by capability backends (e.g. beta-reducing a Lambda1D at
// a concrete index without exposing the full substitution map machinery).
func (b *Builder) Substitute(t, from, to *Term) *Term {
	return b.substitute(t, map[*Term]*Term{from: to})
}

// substitute replaces every occurrence of a key term with its mapped value
// throughout t, rebuilding hash-consed nodes bottom-up.
func (b *Builder) substitute(t *Term, env map[*Term]*Term) *Term {
	if repl, ok := env[t]; ok {
		return repl
	}

	if len(t.args) == 0 {
		return t
	}

	newArgs := make([]*Term, len(t.args))
	changed := false

	for i, a := range t.args {
		newArgs[i] = b.substitute(a, env)
		if newArgs[i] != a {
			changed = true
		}
	}

	if !changed {
		return t
	}

	return b.intern(t.kind, t.sort, newArgs, t.bits, t.name, t.varKind, t.locked)
}
