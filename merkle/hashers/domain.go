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

package hashers

import (
	"fmt"
	"math/big"
)

// CheckDomain returns an error unless 0 <= v < limit.
func CheckDomain(v, limit *big.Int) error {
	switch {
	case v == nil:
		return fmt.Errorf("nil input")
	case v.Sign() < 0:
		return fmt.Errorf("input %v is negative", v)
	case v.Cmp(limit) >= 0:
		return fmt.Errorf("input %v is not below %v", v, limit)
	}
	return nil
}

// CheckChildren applies CheckDomain to both children of a node.
func CheckChildren(l, r, limit *big.Int) error {
	if err := CheckDomain(l, limit); err != nil {
		return fmt.Errorf("left child: %v", err)
	}
	if err := CheckDomain(r, limit); err != nil {
		return fmt.Errorf("right child: %v", err)
	}
	return nil
}

// Uint256Limit is 2^256, the exclusive bound of byte-oriented hashers.
var Uint256Limit = new(big.Int).Lsh(big.NewInt(1), 256)

// Uint256Bytes encodes v as 32 big-endian bytes. v must be within
// [0, Uint256Limit); callers check with CheckDomain first.
func Uint256Bytes(v *big.Int) []byte {
	return v.FillBytes(make([]byte, 32))
}
