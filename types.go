// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ledgerroot holds the types shared by the balance accumulator, its
// hashers and the rootcalc tool.
package ledgerroot

import (
	"fmt"
	"math/big"
)

// Root is a Merkle root value. It is kept as an integer so that field-based
// hashes (Poseidon) and byte-based hashes (SHA-256, Keccak) share one type.
type Root struct {
	v *big.Int
}

// NewRoot wraps a copy of v.
func NewRoot(v *big.Int) Root {
	if v == nil {
		return Root{}
	}
	return Root{v: new(big.Int).Set(v)}
}

// Int returns a copy of the root value, or nil for the zero Root.
func (r Root) Int() *big.Int {
	if r.v == nil {
		return nil
	}
	return new(big.Int).Set(r.v)
}

// Equal reports whether both roots hold the same value.
func (r Root) Equal(o Root) bool {
	if r.v == nil || o.v == nil {
		return r.v == nil && o.v == nil
	}
	return r.v.Cmp(o.v) == 0
}

// String returns the decimal representation, which is what proving tools
// expect in Prover.toml.
func (r Root) String() string {
	if r.v == nil {
		return "<nil>"
	}
	return r.v.Text(10)
}

// Hex returns the 0x-prefixed, zero-padded 32-byte hex form.
func (r Root) Hex() string {
	if r.v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("0x%064x", r.v)
}
