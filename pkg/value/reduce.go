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

// lambda1D packages a bound variable and a body expression written in
// terms of it into the aop package's reduction input shape. length may be
// symbolic — aop's reduction helpers unroll it when it happens to be a
// literal constant and fall back to an opaque application otherwise.
func lambda1D(ctx *Context, boundVar Index, body *smt.Term, length Index) aop.Lambda1D {
	return aop.Lambda1D{
		Builder:  ctx.B,
		BoundVar: boundVar.Expr(),
		Body:     body,
		Len:      length.Expr(),
	}
}

// accWidth is the reduction accumulator width for a non-float element type:
// its own bit-width for Integer, Context.Bits for Index (conv/pooling never
// actually reduce Index elements, but dot/sum are defined for any
// primitive element per spec.md §4.2).
func accWidth(ctx *Context, e ElemType) uint {
	if e.IsIndex() {
		return ctx.Bits
	}

	return e.Bits()
}

// dotReduce reduces lhs·rhs over an element type, dispatching to the FP
// backend's Dot for floats and to aop.IntDot (with an explicit accumulator
// width, per the "dot/sum accumulator width" supplement of SPEC_FULL §4.6)
// otherwise.
func dotReduce(ctx *Context, e ElemType, lhs, rhs aop.Lambda1D, init *smt.Term) *smt.Term {
	if e.IsFloat() {
		enc, ok := ctx.encodingFor(e)
		assert(ok, "dotReduce: %s has no registered FP encoding", e)

		return enc.Dot(lhs, rhs, init)
	}

	return aop.IntDot(ctx.B, lhs, rhs, accWidth(ctx, e), init)
}

// sumReduce reduces l over an element type.
func sumReduce(ctx *Context, e ElemType, l aop.Lambda1D, init *smt.Term) *smt.Term {
	if e.IsFloat() {
		enc, ok := ctx.encodingFor(e)
		assert(ok, "sumReduce: %s has no registered FP encoding", e)

		return enc.Sum(l, init)
	}

	return aop.IntSum(ctx.B, l, accWidth(ctx, e), init)
}

// maxReduce reduces max(l) over an element type.
func maxReduce(ctx *Context, e ElemType, l aop.Lambda1D, init *smt.Term) *smt.Term {
	if e.IsFloat() {
		enc, ok := ctx.encodingFor(e)
		assert(ok, "maxReduce: %s has no registered FP encoding", e)

		return enc.Max(l, init)
	}

	return aop.IntMax(ctx.B, l, accWidth(ctx, e), init)
}
