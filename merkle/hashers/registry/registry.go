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

// Package registry links every built-in hash provider into the binary.
package registry

import (
	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"

	// Register the built-in providers.
	_ "github.com/ledgerroot/ledgerroot/merkle/keccak"
	_ "github.com/ledgerroot/ledgerroot/merkle/poseidon"
	_ "github.com/ledgerroot/ledgerroot/merkle/poseidon2"
	_ "github.com/ledgerroot/ledgerroot/merkle/rfc6962"
)

// DefaultStrategy reproduces circom/circomlibjs roots.
const DefaultStrategy = ledgerroot.PoseidonBN254

// NewHasher returns an initialized Hasher for s.
func NewHasher(s ledgerroot.HashStrategy) (hashers.Hasher, error) {
	return hashers.NewHasher(s)
}

// NewHasherByName parses name and returns an initialized Hasher for it.
func NewHasherByName(name string) (hashers.Hasher, error) {
	s, err := ledgerroot.ParseHashStrategy(name)
	if err != nil {
		return nil, err
	}
	return hashers.NewHasher(s)
}
