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

package ledgerroot

import (
	"fmt"
	"sort"
)

// HashStrategy identifies the two-to-one hash used to combine sibling nodes.
type HashStrategy int32

const (
	UnknownHashStrategy HashStrategy = iota
	// PoseidonBN254 is circomlib's Poseidon over the BN254 scalar field.
	PoseidonBN254
	// Poseidon2BN254 is the Poseidon2 width-2 compression over BN254.
	Poseidon2BN254
	// RFC6962SHA256 is the RFC 6962 interior node hash using SHA-256.
	RFC6962SHA256
	// Keccak256 is legacy Keccak-256 over the concatenated 32-byte children.
	Keccak256
)

var (
	hashStrategyName = map[HashStrategy]string{
		UnknownHashStrategy: "UNKNOWN_HASH_STRATEGY",
		PoseidonBN254:       "POSEIDON_BN254",
		Poseidon2BN254:      "POSEIDON2_BN254",
		RFC6962SHA256:       "RFC6962_SHA256",
		Keccak256:           "KECCAK256",
	}
	hashStrategyValue = func() map[string]HashStrategy {
		m := make(map[string]HashStrategy, len(hashStrategyName))
		for k, v := range hashStrategyName {
			m[v] = k
		}
		return m
	}()
)

// String returns the canonical flag/config name of the strategy.
func (s HashStrategy) String() string {
	if n, ok := hashStrategyName[s]; ok {
		return n
	}
	return fmt.Sprintf("HashStrategy(%d)", int32(s))
}

// ParseHashStrategy is the inverse of HashStrategy.String. The unknown
// strategy is never returned without an error.
func ParseHashStrategy(name string) (HashStrategy, error) {
	s, ok := hashStrategyValue[name]
	if !ok || s == UnknownHashStrategy {
		return UnknownHashStrategy, fmt.Errorf("unknown HashStrategy: %q, want one of %v", name, HashStrategyNames())
	}
	return s, nil
}

// HashStrategyNames lists the names of all known strategies, sorted.
func HashStrategyNames() []string {
	names := make([]string, 0, len(hashStrategyName)-1)
	for s, n := range hashStrategyName {
		if s != UnknownHashStrategy {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
