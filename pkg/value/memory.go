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

// AccessInfo is the side-condition bundle a Memory returns from one
// Load/Store: whether the access is in bounds, whether the location was
// initialized beforehand, and whether the block permits writing.
type AccessInfo struct {
	Inbounds    *smt.Term
	Initialized *smt.Term
	Writable    *smt.Term
}

// Memory is the block allocator MemRef addresses into. It lives in this
// package rather than pkg/memory so MemRef's field type does not force an
// import cycle; pkg/memory supplies only a concrete (non-authoritative)
// implementation against this interface.
type Memory interface {
	Load(elem smt.Sort, bid, offset *smt.Term) (*smt.Term, AccessInfo)
	Store(elem smt.Sort, bid, offset, value *smt.Term) AccessInfo
	NumElementsOfBlock(bid *smt.Term) *smt.Term
	IsGlobalBlock(bid *smt.Term) *smt.Term
	IsLocalBlock(bid *smt.Term) *smt.Term
	GetLiveness(bid *smt.Term) *smt.Term
	IsCreatedByAlloc(bid *smt.Term) *smt.Term
	SetWritable(bid *smt.Term, writable bool)
	BIDBits() uint
}
