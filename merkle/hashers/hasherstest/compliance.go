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

// Package hasherstest contains checks every hashers.Hasher must pass.
package hasherstest

import (
	"math/big"
	"testing"

	"github.com/ledgerroot/ledgerroot/merkle/hashers"
)

// Domain describes the inputs a hasher accepts.
type Domain struct {
	// Max is the largest accepted input, inclusive.
	Max *big.Int
}

// TestHasher checks determinism, operand order, input immutability and
// domain enforcement for h.
func TestHasher(t *testing.T, h hashers.Hasher, d Domain) {
	t.Helper()
	pairs := [][2]*big.Int{
		{big.NewInt(0), big.NewInt(0)},
		{big.NewInt(100), big.NewInt(50)},
		{big.NewInt(200), big.NewInt(75)},
		{big.NewInt(1), new(big.Int).Set(d.Max)},
	}

	t.Run("deterministic", func(t *testing.T) {
		for _, p := range pairs {
			a := mustHash(t, h, p[0], p[1])
			b := mustHash(t, h, p[0], p[1])
			if a.Cmp(b) != 0 {
				t.Errorf("HashChildren(%v, %v) not deterministic: %v != %v", p[0], p[1], a, b)
			}
		}
	})

	t.Run("order-sensitive", func(t *testing.T) {
		for _, p := range pairs[1:] {
			lr := mustHash(t, h, p[0], p[1])
			rl := mustHash(t, h, p[1], p[0])
			if lr.Cmp(rl) == 0 {
				t.Errorf("HashChildren(%v, %v) == HashChildren(%v, %v)", p[0], p[1], p[1], p[0])
			}
		}
	})

	t.Run("distinct", func(t *testing.T) {
		seen := make(map[string][2]*big.Int)
		for _, p := range pairs {
			k := mustHash(t, h, p[0], p[1]).String()
			if prev, ok := seen[k]; ok {
				t.Errorf("HashChildren(%v, %v) collides with HashChildren(%v, %v)", p[0], p[1], prev[0], prev[1])
			}
			seen[k] = p
		}
	})

	t.Run("inputs-untouched", func(t *testing.T) {
		l, r := big.NewInt(100), big.NewInt(50)
		out := mustHash(t, h, l, r)
		if l.Int64() != 100 || r.Int64() != 50 {
			t.Errorf("HashChildren modified its inputs: l=%v r=%v", l, r)
		}
		out.SetInt64(0)
		again := mustHash(t, h, big.NewInt(100), big.NewInt(50))
		if again.Sign() == 0 {
			t.Error("HashChildren result aliases internal state")
		}
	})

	t.Run("domain", func(t *testing.T) {
		over := new(big.Int).Add(d.Max, big.NewInt(1))
		for _, p := range [][2]*big.Int{
			{big.NewInt(-1), big.NewInt(0)},
			{big.NewInt(0), big.NewInt(-1)},
			{over, big.NewInt(0)},
			{big.NewInt(0), over},
		} {
			if got, err := h.HashChildren(p[0], p[1]); err == nil {
				t.Errorf("HashChildren(%v, %v)=%v, want error", p[0], p[1], got)
			}
		}
		if _, err := h.HashChildren(nil, big.NewInt(0)); err == nil {
			t.Error("HashChildren(nil, 0): want error")
		}
	})
}

func mustHash(t *testing.T, h hashers.Hasher, l, r *big.Int) *big.Int {
	t.Helper()
	v, err := h.HashChildren(l, r)
	if err != nil {
		t.Fatalf("HashChildren(%v, %v): %v", l, r, err)
	}
	if v == nil {
		t.Fatalf("HashChildren(%v, %v) returned nil", l, r)
	}
	return v
}
