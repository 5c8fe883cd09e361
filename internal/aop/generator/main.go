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

// Command generator produces pkg/aop/f32.go and pkg/aop/f64.go from
// encoding.go.tmpl, one per supported float element type. Mirrors
// go-corset/field/internal/generator: a capability that varies only in a
// handful of per-type constants is generated rather than hand-duplicated.
package main

import (
	"fmt"
	"os"

	"github.com/consensys/bavard"
)

type encodingSpec struct {
	TypeName   string
	Width      uint
	ExpBits    uint
	MantBits   uint
	NaNPattern uint64
}

//go:generate go run main.go
func main() {
	bgen := bavard.NewBatchGenerator("", 2025, "tvcore")

	specs := []encodingSpec{
		{TypeName: "f32", Width: 32, ExpBits: 8, MantBits: 23, NaNPattern: 0x7fc00000},
		{TypeName: "f64", Width: 64, ExpBits: 11, MantBits: 52, NaNPattern: 0x7ff8000000000000},
	}

	for _, spec := range specs {
		assertNoError(bgen.Generate(spec, spec.TypeName, "templates",
			bavard.Entry{
				File:      fmt.Sprintf("../../../pkg/aop/%s.go", spec.TypeName),
				Templates: []string{"encoding.go.tmpl"},
			},
		), "for encoding %q", spec.TypeName)
	}
}

func assertNoError(err error, msgAndArgs ...any) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, append([]any{err}, msgAndArgs...)...)
	os.Exit(1)
}
