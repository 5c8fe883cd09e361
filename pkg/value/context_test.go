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

import "testing"

func TestNewContextDefaults(t *testing.T) {
	ctx := NewContext()

	if ctx.Bits != 64 {
		t.Errorf("default Bits = %d, want 64", ctx.Bits)
	}

	if ctx.MaxTensorSize != 10000 {
		t.Errorf("default MaxTensorSize = %d, want 10000", ctx.MaxTensorSize)
	}
}

func TestContextOptionsApplyInOrder(t *testing.T) {
	ctx := NewContext(WithBits(32), WithMaxTensorSize(64), WithMaxConstSize(-1))

	if ctx.Bits != 32 {
		t.Errorf("Bits = %d, want 32", ctx.Bits)
	}

	if ctx.MaxTensorSize != 64 {
		t.Errorf("MaxTensorSize = %d, want 64", ctx.MaxTensorSize)
	}

	if ctx.MaxConstSize != -1 {
		t.Errorf("MaxConstSize = %d, want -1", ctx.MaxConstSize)
	}
}

func TestEncodingForDispatchesByFloatWidth(t *testing.T) {
	ctx := NewContext()

	if _, ok := ctx.encodingFor(Float32Type()); !ok {
		t.Errorf("encodingFor(f32) should resolve")
	}

	if _, ok := ctx.encodingFor(Float64Type()); !ok {
		t.Errorf("encodingFor(f64) should resolve")
	}

	if _, ok := ctx.encodingFor(IntegerType(32)); ok {
		t.Errorf("encodingFor(i32) should not resolve an FP encoding")
	}
}

func TestResetClearsAbstractionCache(t *testing.T) {
	ctx := NewContext(WithMaxConstSize(0))

	dense := make([]uint64, 4)
	attr := ConstAttr{Dims: []uint64{4}, Kind: ConstDense, Dense: dense}

	if _, err := FromElemsAttr(ctx, IntegerType(32), attr); err != nil {
		t.Fatalf("FromElemsAttr: %v", err)
	}

	if len(ctx.cache) == 0 {
		t.Fatalf("expected the abstraction cache to gain an entry above MaxConstSize")
	}

	ctx.Reset()

	if len(ctx.cache) != 0 {
		t.Errorf("Reset should clear the abstraction cache, got %d entries", len(ctx.cache))
	}
}
