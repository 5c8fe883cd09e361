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

// Package memory provides DemoMemory, a small in-process fake of the
// external block allocator value.MemRef addresses into. It is not the
// authoritative allocator (that lives in the surrounding tool, out of
// scope per spec.md §1) — it exists only to back the tvcore probe CLI
// command (value.MemRef's unit tests use their own local fake), mirroring the role
// go-corset's zkc/vm/memory.Memory plays for its own VM package: a flat,
// name-addressed collection of fixed-size blocks, read/written without
// restriction beyond bounds.
package memory

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/symtv/tvcore/pkg/smt"
	"github.com/symtv/tvcore/pkg/value"
)

var logger = log.WithField("pkg", "memory")

// block is one allocated region of DemoMemory: a fixed element count,
// a Store-chain array over the sort of the first Load/Store to see it
// (nil until then), a companion initialized array, mutable
// liveness/writable bits, and whether it was produced by an explicit
// alloc (as opposed to e.g. a global).
type block struct {
	size           *smt.Term
	arr            *smt.Term
	initialized    *smt.Term
	writable       bool
	alive          bool
	global         bool
	createdByAlloc bool
}

// DemoMemory is a flat list of blocks that grows with each Alloc, addressed
// by a literal bid (its index into blocks). It implements value.Memory.
type DemoMemory struct {
	ctx    *value.Context
	blocks []*block
}

// NewDemoMemory builds an empty DemoMemory over ctx's builder.
func NewDemoMemory(ctx *value.Context) *DemoMemory {
	return &DemoMemory{ctx: ctx}
}

// Alloc adds a new block of size elements, returning its bid as a
// literal bit-vector of width bidBits.
func (d *DemoMemory) Alloc(size uint64, global bool, bidBits uint) *smt.Term {
	b := d.ctx.B
	bid := len(d.blocks)

	d.blocks = append(d.blocks, &block{
		size:           b.BVConst(size, d.ctx.Bits),
		writable:       true,
		alive:          true,
		global:         global,
		createdByAlloc: !global,
	})

	logger.Debugf("allocated block %d (%d elements, global=%v)", bid, size, global)

	return b.BVConst(uint64(bid), bidBits)
}

// blockAt resolves a literal bid to its block, panicking on an
// out-of-range or symbolic bid — DemoMemory is a test fake, not a
// solver-backed model, so every bid it is asked to serve must be
// concrete.
func (d *DemoMemory) blockAt(bid *smt.Term) *block {
	if !bid.IsConst() {
		panic(fmt.Sprintf("memory: DemoMemory requires a literal bid, got %s", bid))
	}

	i := bid.ConstValue()
	if i >= uint64(len(d.blocks)) {
		panic(fmt.Sprintf("memory: bid %d out of range (%d blocks)", i, len(d.blocks)))
	}

	return d.blocks[i]
}

// ensureArrays lazily materializes a block's backing arrays once its
// element sort is known (the block itself is untyped at Alloc time,
// like a raw allocator's memory region).
func (b *block) ensureArrays(ctx *value.Context, elem smt.Sort) {
	if b.arr != nil {
		return
	}

	B := ctx.B
	b.arr = B.ConstArray(smt.BVSort(ctx.Bits), B.BVConst(0, elem.Width()))
	b.initialized = B.ConstArray(smt.BVSort(ctx.Bits), B.BoolConst(false))
}

// Load implements value.Memory.
func (d *DemoMemory) Load(elem smt.Sort, bid, offset *smt.Term) (*smt.Term, value.AccessInfo) {
	b := d.blockAt(bid)
	b.ensureArrays(d.ctx, elem)

	B := d.ctx.B
	val := B.Select(b.arr, offset)
	init := B.Select(b.initialized, offset)

	return val, value.AccessInfo{
		Inbounds:    B.BVULT(offset, b.size),
		Initialized: init,
		Writable:    B.BoolConst(b.writable),
	}
}

// Store implements value.Memory.
func (d *DemoMemory) Store(elem smt.Sort, bid, offset, val *smt.Term) value.AccessInfo {
	b := d.blockAt(bid)
	b.ensureArrays(d.ctx, elem)

	B := d.ctx.B
	b.arr = B.Store(b.arr, offset, val)
	b.initialized = B.Store(b.initialized, offset, B.BoolConst(true))

	return value.AccessInfo{
		Inbounds:    B.BVULT(offset, b.size),
		Initialized: B.BoolConst(true),
		Writable:    B.BoolConst(b.writable),
	}
}

// NumElementsOfBlock implements value.Memory.
func (d *DemoMemory) NumElementsOfBlock(bid *smt.Term) *smt.Term { return d.blockAt(bid).size }

// IsGlobalBlock implements value.Memory.
func (d *DemoMemory) IsGlobalBlock(bid *smt.Term) *smt.Term {
	return d.ctx.B.BoolConst(d.blockAt(bid).global)
}

// IsLocalBlock implements value.Memory.
func (d *DemoMemory) IsLocalBlock(bid *smt.Term) *smt.Term {
	return d.ctx.B.BoolConst(!d.blockAt(bid).global)
}

// GetLiveness implements value.Memory.
func (d *DemoMemory) GetLiveness(bid *smt.Term) *smt.Term {
	return d.ctx.B.BoolConst(d.blockAt(bid).alive)
}

// IsCreatedByAlloc implements value.Memory.
func (d *DemoMemory) IsCreatedByAlloc(bid *smt.Term) *smt.Term {
	return d.ctx.B.BoolConst(d.blockAt(bid).createdByAlloc)
}

// SetWritable implements value.Memory.
func (d *DemoMemory) SetWritable(bid *smt.Term, writable bool) {
	d.blockAt(bid).writable = writable
}

// BIDBits implements value.Memory.
func (d *DemoMemory) BIDBits() uint { return 8 }
