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
	"fmt"

	"go.uber.org/multierr"
)

// Unsupported reports an IR element type or layout the core cannot model:
// a wide integer, a non-strided memref, an unknown attribute kind, a
// non-primitive tensor element, or a reshape of a non-identity memref.
// Recoverable: the surrounding tool aborts the current query and surfaces
// it to the user.
type Unsupported struct {
	Reason string
}

func (e *Unsupported) Error() string { return "unsupported: " + e.Reason }

// unsupported constructs an *Unsupported with a formatted reason.
func unsupported(format string, args ...any) *Unsupported {
	return &Unsupported{Reason: fmt.Sprintf(format, args...)}
}

// Assertion reports a broken internal invariant — a rank mismatch, an
// element-type mismatch, a non-variable where a variable was required.
// Indicates a bug, not a modelling limitation; halts rather than
// propagating as a regular error.
type Assertion struct {
	Invariant string
}

func (e *Assertion) Error() string { return "assertion failed: " + e.Invariant }

// assert panics with an *Assertion if cond is false. The core never
// retries or partially succeeds (spec.md §7): every constructor validates
// preconditions up front, before any SMT term is allocated.
func assert(cond bool, format string, args ...any) {
	if !cond {
		panic(&Assertion{Invariant: fmt.Sprintf(format, args...)})
	}
}

// aggregateErrors collects multiple independent precondition failures (for
// instance, validating every dimension of a constructor) into one error via
// multierr, matching "never partially succeeds": either every check passes
// or the caller sees all failures at once rather than the first.
func aggregateErrors(errs ...error) error {
	return multierr.Combine(errs...)
}
