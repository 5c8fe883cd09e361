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

// Model is a concrete assignment for variables, as would be returned by an
// SMT solver's `(get-model)`. This module never produces one itself
// (Non-goal: evaluating SMT formulas) — the surrounding tool constructs a
// Model from a solver's response and passes it to ValueTy.Eval /
// Tensor.Eval for counterexample pretty-printing.
type Model struct {
	builder     *Builder
	assignments map[*Term]*Term
}

// NewModel wraps a set of variable assignments produced by an external
// solver.
func NewModel(b *Builder, assignments map[*Term]*Term) *Model {
	return &Model{builder: b, assignments: assignments}
}

// Eval substitutes every variable in t with its assignment (vars absent
// from the model are left as-is) and simplifies the result, mirroring
// `Model.eval(...).simplify()` in the original implementation.
func (m *Model) Eval(t *Term) *Term {
	substituted := m.builder.substitute(t, m.assignments)

	return m.builder.Simplify(substituted)
}
