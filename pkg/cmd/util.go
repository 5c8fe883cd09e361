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
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/symtv/tvcore/pkg/value"
)

// parseDims splits a comma-separated "2,3,4" flag into a dimension
// vector, rejecting empty and malformed entries up front (spec.md §7:
// preconditions validated before any SMT term is allocated).
func parseDims(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	dims := make([]uint64, len(parts))

	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid dim %q", p)
		}

		dims[i] = v
	}

	return dims, nil
}

// parseElemType maps the --elem flag's short name to an element type.
// "iN" is an N-bit integer, "index" is the Index type, "f32"/"f64" are
// the two supported float widths.
func parseElemType(s string) (value.ElemType, error) {
	switch {
	case s == "index":
		return value.IndexElemType(), nil
	case s == "f32":
		return value.Float32Type(), nil
	case s == "f64":
		return value.Float64Type(), nil
	case strings.HasPrefix(s, "i"):
		w, err := strconv.ParseUint(s[1:], 10, 64)
		if err != nil {
			return value.ElemType{}, errors.Wrapf(err, "invalid integer element type %q", s)
		}

		return value.IntegerType(uint(w)), nil
	default:
		return value.ElemType{}, fmt.Errorf("unrecognised element type %q (want iN, index, f32 or f64)", s)
	}
}

func indexDimsFor(ctx *value.Context, dims []uint64) []value.Index {
	out := make([]value.Index, len(dims))
	for i, d := range dims {
		out[i] = value.ConstIndex(ctx, d)
	}

	return out
}
