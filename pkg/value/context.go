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

// Package value implements the symbolic value and memory encoding layer
// consumed by a translation validator's verification-condition generator:
// primitive scalars (Index, Integer, Float), the symbolic Tensor and MemRef
// abstractions built over them, and the refinement relation between two
// such values.
package value

import (
	log "github.com/sirupsen/logrus"

	"github.com/symtv/tvcore/pkg/aop"
	"github.com/symtv/tvcore/pkg/smt"
)

// Context replaces the original implementation's process-wide globals (the
// fresh-name counter and the constant-abstraction cache) with an explicit
// object threaded through every constructor that needs freshness or
// caching. One Context serves exactly one validation session; concurrent
// sessions each get their own.
type Context struct {
	B *smt.Builder

	Bits          uint
	MaxTensorSize uint64
	MaxDimSize    uint64
	MaxMemrefSize uint64
	MaxConstSize  int64 // negative disables abstraction

	f32 aop.Encoding
	f64 aop.Encoding

	cache []abstractionEntry
}

// abstractionEntry is one row of the constant-abstraction cache: the
// ingested attribute paired with the tensor it was abstracted to.
type abstractionEntry struct {
	attr ConstAttr
	t    *Tensor
}

// Option configures a Context at construction time, following the
// functional-options shape of pkg/util.Option's callers in the teacher.
type Option func(*Context)

// WithBits sets Index's bit-width (default 64).
func WithBits(bits uint) Option {
	return func(c *Context) { c.Bits = bits }
}

// WithMaxTensorSize bounds a tensor's total element count (invariant 6).
func WithMaxTensorSize(n uint64) Option {
	return func(c *Context) { c.MaxTensorSize = n }
}

// WithMaxDimSize bounds any single non-literal tensor/memref dimension.
func WithMaxDimSize(n uint64) Option {
	return func(c *Context) { c.MaxDimSize = n }
}

// WithMaxMemrefSize bounds a memref's total element count.
func WithMaxMemrefSize(n uint64) Option {
	return func(c *Context) { c.MaxMemrefSize = n }
}

// WithMaxConstSize sets the threshold above which fromElemsAttr abstracts
// rather than enumerates a constant. Negative disables abstraction
// entirely (every constant is enumerated, however large).
func WithMaxConstSize(n int64) Option {
	return func(c *Context) { c.MaxConstSize = n }
}

// WithFloatEncodings overrides the default f32/f64 capability
// implementations — the hook that lets the surrounding tool substitute a
// different FP-encoding policy (§1 PURPOSE & SCOPE: "the core owns the
// capability interface... the surrounding tool may substitute a different
// encoding").
func WithFloatEncodings(f32, f64 aop.Encoding) Option {
	return func(c *Context) { c.f32, c.f64 = f32, f64 }
}

// NewContext constructs a Context with go-corset-style defaults (BITS=64,
// matching the "typically 64" note in spec.md §3) and applies opts in
// order.
func NewContext(opts ...Option) *Context {
	b := smt.NewBuilder()
	c := &Context{
		B:             b,
		Bits:          64,
		MaxTensorSize: 10000,
		MaxDimSize:    25,
		MaxMemrefSize: 10000,
		MaxConstSize:  100,
	}
	c.f32 = aop.NewF32Encoding(b)
	c.f64 = aop.NewF64Encoding(b)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reset implements resetAbstractlyEncodedAttrs(): the cache is cleared at
// the start of each new query; the name counter is left untouched, since
// uniqueness (not monotonic restart) is the invariant (spec.md §5).
func (c *Context) Reset() {
	log.Debug("value: resetting constant-abstraction cache")
	c.cache = nil
}

// encodingFor resolves the FP-encoding capability for a float element
// type; false for anything else (including Integer/Index, which never
// route through aop).
func (c *Context) encodingFor(e ElemType) (aop.Encoding, bool) {
	switch {
	case e.kind == ElemFloat && e.bits == 32:
		return c.f32, true
	case e.kind == ElemFloat && e.bits == 64:
		return c.f64, true
	default:
		return nil, false
	}
}
