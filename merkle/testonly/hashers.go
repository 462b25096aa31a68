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

package testonly

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ledgerroot/ledgerroot/merkle/hashers"
)

// PairingHasher combines children with the Cantor pairing function
// (l+r)(l+r+1)/2 + r. It is injective and order-sensitive on non-negative
// integers, so two trees have equal roots iff their leaves are equal.
type PairingHasher struct{}

// HashChildren implements hashers.Hasher.
func (PairingHasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if l == nil || r == nil || l.Sign() < 0 || r.Sign() < 0 {
		return nil, fmt.Errorf("pairing of %v and %v is undefined", l, r)
	}
	s := new(big.Int).Add(l, r)
	p := new(big.Int).Add(s, big.NewInt(1))
	p.Mul(p, s)
	p.Rsh(p, 1)
	return p.Add(p, r), nil
}

// CountingHasher wraps a Hasher and counts invocations.
type CountingHasher struct {
	hashers.Hasher

	mu    sync.Mutex
	calls int
}

// NewCountingHasher wraps h.
func NewCountingHasher(h hashers.Hasher) *CountingHasher {
	return &CountingHasher{Hasher: h}
}

// HashChildren implements hashers.Hasher.
func (c *CountingHasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Hasher.HashChildren(l, r)
}

// Calls returns the number of invocations so far.
func (c *CountingHasher) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset zeroes the counter.
func (c *CountingHasher) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}

// FailingHasher fails on any input containing Poison.
type FailingHasher struct {
	hashers.Hasher
	Poison *big.Int
}

// HashChildren implements hashers.Hasher.
func (f FailingHasher) HashChildren(l, r *big.Int) (*big.Int, error) {
	if l.Cmp(f.Poison) == 0 || r.Cmp(f.Poison) == 0 {
		return nil, fmt.Errorf("poisoned input %v", f.Poison)
	}
	return f.Hasher.HashChildren(l, r)
}
