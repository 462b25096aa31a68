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

// Package rfc6962 combines balance nodes with the RFC 6962 interior node
// hash, SHA-256(0x01 || left || right), over 32-byte big-endian encodings.
package rfc6962

import (
	"math/big"

	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"github.com/transparency-dev/merkle/rfc6962"
)

func init() {
	hashers.RegisterProvider(ledgerroot.RFC6962SHA256, hashers.ProviderFunc(func() (hashers.Hasher, error) {
		return Hasher{}, nil
	}))
}

// Hasher implements hashers.Hasher on top of rfc6962.DefaultHasher.
type Hasher struct{}

// HashChildren implements hashers.Hasher.
func (Hasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if err := hashers.CheckChildren(l, r, hashers.Uint256Limit); err != nil {
		return nil, err
	}
	h := rfc6962.DefaultHasher.HashChildren(hashers.Uint256Bytes(l), hashers.Uint256Bytes(r))
	return new(big.Int).SetBytes(h), nil
}
