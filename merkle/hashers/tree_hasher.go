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

// Package hashers defines the two-to-one hash capability consumed by the
// balance accumulator, and a registry of providers keyed by HashStrategy.
package hashers

//go:generate mockgen -self_package github.com/ledgerroot/ledgerroot/merkle/hashers -package hashers -destination mock_hasher.go github.com/ledgerroot/ledgerroot/merkle/hashers Hasher

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ledgerroot/ledgerroot"
)

// Hasher combines two sibling node values into their parent.
//
// Implementations must be deterministic and must not modify or retain their
// arguments. l is always the child with the lower leaf index; swapping the
// arguments is expected to change the result. Values outside the hasher's
// domain produce an error rather than being silently reduced.
type Hasher interface {
	HashChildren(l, r *big.Int) (*big.Int, error)
}

// HashFunc adapts an ordinary function to the Hasher interface.
type HashFunc func(l, r *big.Int) (*big.Int, error)

// HashChildren calls f(l, r).
func (f HashFunc) HashChildren(l, r *big.Int) (*big.Int, error) {
	return f(l, r)
}

// IsNil reports whether h is absent, including a nil HashFunc stored in a
// non-nil interface.
func IsNil(h Hasher) bool {
	if h == nil {
		return true
	}
	if f, ok := h.(HashFunc); ok && f == nil {
		return true
	}
	return false
}

// Provider hands out a ready Hasher. Initialize performs whatever one-time
// setup the hash needs (round constants, self tests) and may be called more
// than once; implementations do the work only the first time.
type Provider interface {
	Initialize() (Hasher, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func() (Hasher, error)

// Initialize calls f().
func (f ProviderFunc) Initialize() (Hasher, error) {
	return f()
}

var (
	providersMu sync.RWMutex
	providers   = make(map[ledgerroot.HashStrategy]Provider)
)

// RegisterProvider registers a provider for use. It is meant to be called
// from init functions and panics on misuse.
func RegisterProvider(s ledgerroot.HashStrategy, p Provider) {
	if s == ledgerroot.UnknownHashStrategy {
		panic(fmt.Sprintf("RegisterProvider(%s) of unknown hasher", s))
	}
	if p == nil {
		panic(fmt.Sprintf("RegisterProvider(%s) with nil provider", s))
	}
	providersMu.Lock()
	defer providersMu.Unlock()
	if providers[s] != nil {
		panic(fmt.Sprintf("%v already registered as a Provider", s))
	}
	providers[s] = p
}

// NewHasher initializes the provider registered for s and returns its Hasher.
func NewHasher(s ledgerroot.HashStrategy) (Hasher, error) {
	providersMu.RLock()
	p := providers[s]
	providersMu.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("Hasher(%s) is an unknown hasher", s)
	}
	h, err := p.Initialize()
	if err != nil {
		return nil, fmt.Errorf("initializing %s: %v", s, err)
	}
	if IsNil(h) {
		return nil, fmt.Errorf("provider for %s returned a nil Hasher", s)
	}
	return h, nil
}

// Strategies returns the registered strategies in ascending order.
func Strategies() []ledgerroot.HashStrategy {
	providersMu.RLock()
	defer providersMu.RUnlock()
	ss := make([]ledgerroot.HashStrategy, 0, len(providers))
	for s := range providers {
		ss = append(ss, s)
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i] < ss[j] })
	return ss
}

// unregister is used by tests to undo RegisterProvider.
func unregister(s ledgerroot.HashStrategy) {
	providersMu.Lock()
	defer providersMu.Unlock()
	delete(providers, s)
}
