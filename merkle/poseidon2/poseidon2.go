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

// Package poseidon2 provides a Poseidon2 two-to-one compression over the
// BN254 scalar field, as used by gnark Merkle circuits.
package poseidon2

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"k8s.io/klog/v2"
)

// Width-2 permutation parameters: full rounds, partial rounds.
const (
	width         = 2
	fullRounds    = 6
	partialRounds = 50
)

func init() {
	hashers.RegisterProvider(ledgerroot.Poseidon2BN254, &Provider{})
}

// Hasher compresses (l, r) as perm(l, r)[1] + r.
type Hasher struct {
	perm    *poseidon2.Permutation
	modulus *big.Int
}

// HashChildren implements hashers.Hasher.
func (h *Hasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if err := hashers.CheckChildren(l, r, h.modulus); err != nil {
		return nil, err
	}
	var left, right fr.Element
	left.SetBigInt(l)
	right.SetBigInt(r)

	state := []fr.Element{left, right}
	if err := h.perm.Permutation(state); err != nil {
		return nil, fmt.Errorf("poseidon2 permutation: %v", err)
	}
	var out fr.Element
	out.Add(&state[1], &right)
	return out.BigInt(new(big.Int)), nil
}

// Provider derives the round constants once.
type Provider struct {
	once sync.Once
	h    *Hasher
}

// Initialize implements hashers.Provider.
func (p *Provider) Initialize() (hashers.Hasher, error) {
	p.once.Do(func() {
		p.h = &Hasher{
			perm:    poseidon2.NewPermutation(width, fullRounds, partialRounds),
			modulus: fr.Modulus(),
		}
		klog.V(1).Infof("Poseidon2 BN254 ready (t=%d, rf=%d, rp=%d)", width, fullRounds, partialRounds)
	})
	return p.h, nil
}
