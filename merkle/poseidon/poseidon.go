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

// Package poseidon provides the circomlib-compatible Poseidon hash over the
// BN254 scalar field, so roots match those computed by circomlibjs and
// circom circuits.
package poseidon

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"k8s.io/klog/v2"
)

func init() {
	hashers.RegisterProvider(ledgerroot.PoseidonBN254, &Provider{})
}

// knownAnswer is circomlib's poseidon([1, 2]).
var knownAnswer, _ = new(big.Int).SetString("7853200120776062878684798364095072458815029376092732009249414926327459813530", 10)

// Hasher computes poseidon([l, r]).
type Hasher struct {
	modulus *big.Int
}

// HashChildren implements hashers.Hasher.
func (h Hasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if err := hashers.CheckChildren(l, r, h.modulus); err != nil {
		return nil, err
	}
	return poseidon.Hash([]*big.Int{l, r})
}

// Provider runs the known-answer test once and then hands out Hashers.
type Provider struct {
	once sync.Once
	h    Hasher
	err  error
}

// Initialize implements hashers.Provider.
func (p *Provider) Initialize() (hashers.Hasher, error) {
	p.once.Do(func() {
		h := Hasher{modulus: fr.Modulus()}
		got, err := h.HashChildren(big.NewInt(1), big.NewInt(2))
		if err != nil {
			p.err = fmt.Errorf("poseidon self test: %v", err)
			return
		}
		if got.Cmp(knownAnswer) != 0 {
			p.err = fmt.Errorf("poseidon self test: got %v, want %v", got, knownAnswer)
			return
		}
		klog.V(1).Infof("Poseidon BN254 ready")
		p.h = h
	})
	if p.err != nil {
		return nil, p.err
	}
	return p.h, nil
}
