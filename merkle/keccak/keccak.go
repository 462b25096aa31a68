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

// Package keccak combines balance nodes with legacy Keccak-256 over the
// concatenated 32-byte big-endian children, matching Solidity's
// keccak256(abi.encodePacked(uint256 left, uint256 right)).
package keccak

import (
	"math/big"

	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"golang.org/x/crypto/sha3"
)

func init() {
	hashers.RegisterProvider(ledgerroot.Keccak256, hashers.ProviderFunc(func() (hashers.Hasher, error) {
		return Hasher{}, nil
	}))
}

// Hasher implements hashers.Hasher.
type Hasher struct{}

// HashChildren implements hashers.Hasher.
func (Hasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if err := hashers.CheckChildren(l, r, hashers.Uint256Limit); err != nil {
		return nil, err
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(hashers.Uint256Bytes(l))
	d.Write(hashers.Uint256Bytes(r))
	return new(big.Int).SetBytes(d.Sum(nil)), nil
}
