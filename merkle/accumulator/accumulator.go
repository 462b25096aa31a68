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

// Package accumulator provides a fixed-depth binary Merkle tree over account
// balances, with cached interior nodes so that a single leaf update costs one
// hash per level.
package accumulator

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"github.com/ledgerroot/ledgerroot/errors"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"github.com/ledgerroot/ledgerroot/monitoring"
	"k8s.io/klog/v2"
)

var (
	// ErrInvalidLeafCount is returned when the leaf count is zero or not a
	// power of two.
	ErrInvalidLeafCount = errors.New(errors.InvalidArgument, "leaf count must be a non-zero power of two")
	// ErrInvalidHashFunction is returned when no hasher is supplied.
	ErrInvalidHashFunction = errors.New(errors.InvalidArgument, "hash function must not be nil")
	// ErrIndexOutOfRange is returned for leaf indices at or past Size().
	ErrIndexOutOfRange = errors.New(errors.OutOfRange, "leaf index out of range")
	// ErrInsufficientBalance is returned when a transfer exceeds the source
	// balance.
	ErrInsufficientBalance = errors.New(errors.FailedPrecondition, "insufficient balance")
	// ErrInvalidValue is returned for nil leaves and nil or negative amounts.
	ErrInvalidValue = errors.New(errors.InvalidArgument, "invalid value")
)

const reasonLabel = "reason"

var (
	once              sync.Once
	hashInvocations   monitoring.Counter
	rootComputations  monitoring.Counter
	leafUpdates       monitoring.Counter
	rejectedTransfers monitoring.Counter
	nodesRecomputed   monitoring.Histogram
)

func createMetrics(mf monitoring.MetricFactory) {
	if mf == nil {
		mf = monitoring.InertMetricFactory{}
	}
	hashInvocations = mf.NewCounter("accumulator_hash_invocations", "Number of two-to-one hash invocations")
	rootComputations = mf.NewCounter("accumulator_root_computations", "Number of root queries")
	leafUpdates = mf.NewCounter("accumulator_leaf_updates", "Number of leaf values changed")
	rejectedTransfers = mf.NewCounter("accumulator_rejected_transfers", "Number of transfers that left the tree unchanged", reasonLabel)
	nodesRecomputed = mf.NewHistogramWithBuckets("accumulator_nodes_recomputed", "Interior nodes rehashed per root query", monitoring.PowerOfTwoBuckets(32))
}

// LeafUpdate is one entry of a batch update.
type LeafUpdate struct {
	Index uint64
	Value *big.Int
}

// Accumulator is a binary Merkle tree with a fixed number of leaves.
//
// It is not safe for concurrent use; each tree has a single owner.
type Accumulator struct {
	hasher hashers.Hasher
	depth  uint
	// nodes[level][index] is the value of the node at that position: level 0
	// holds the leaves, nodes[depth][0] is the root. A nil interior node is
	// stale and gets recomputed by the next ComputeRoot.
	nodes [][]*big.Int
	// dirty lists the leaves written since the last successful ComputeRoot.
	// It is unused while sweep is set.
	dirty []uint64
	// sweep is set until the first successful ComputeRoot, when every
	// interior node is stale.
	sweep bool
}

// New creates an Accumulator over a copy of leaves. The hasher must already
// be initialized, see hashers.Provider. A nil mf disables metric export.
func New(hasher hashers.Hasher, leaves []*big.Int, mf monitoring.MetricFactory) (*Accumulator, error) {
	once.Do(func() { createMetrics(mf) })

	if hashers.IsNil(hasher) {
		return nil, ErrInvalidHashFunction
	}
	depth, err := depthOf(len(leaves))
	if err != nil {
		return nil, err
	}
	nodes := make([][]*big.Int, depth+1)
	for level := range nodes {
		nodes[level] = make([]*big.Int, len(leaves)>>uint(level))
	}
	for i, v := range leaves {
		if v == nil {
			return nil, errors.Errorf(errors.InvalidArgument, "%w: leaf %d is nil", ErrInvalidValue, i)
		}
		nodes[0][i] = new(big.Int).Set(v)
	}
	klog.V(1).Infof("New accumulator with %d leaves, depth %d", len(leaves), depth)
	return &Accumulator{
		hasher: hasher,
		depth:  depth,
		nodes:  nodes,
		sweep:  true,
	}, nil
}

func depthOf(n int) (uint, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, errors.Errorf(errors.InvalidArgument, "%w: got %d", ErrInvalidLeafCount, n)
	}
	return uint(bits.TrailingZeros64(uint64(n))), nil
}

// Size returns the number of leaves, 2^Depth().
func (a *Accumulator) Size() uint64 {
	return uint64(len(a.nodes[0]))
}

// Depth returns the number of hashing levels.
func (a *Accumulator) Depth() uint {
	return a.depth
}

func (a *Accumulator) checkIndex(index uint64) error {
	if index >= a.Size() {
		return errors.Errorf(errors.OutOfRange, "%w: index %d, size %d", ErrIndexOutOfRange, index, a.Size())
	}
	return nil
}

// Leaf returns a copy of the leaf at index.
func (a *Accumulator) Leaf(index uint64) (*big.Int, error) {
	if err := a.checkIndex(index); err != nil {
		return nil, err
	}
	return new(big.Int).Set(a.nodes[0][index]), nil
}

// Leaves returns a copy of all leaves in index order.
func (a *Accumulator) Leaves() []*big.Int {
	out := make([]*big.Int, len(a.nodes[0]))
	for i, v := range a.nodes[0] {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// SetLeaf replaces the leaf at index with a copy of value.
func (a *Accumulator) SetLeaf(index uint64, value *big.Int) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	if value == nil {
		return errors.Errorf(errors.InvalidArgument, "%w: nil value for leaf %d", ErrInvalidValue, index)
	}
	a.setLeaf(index, new(big.Int).Set(value))
	return nil
}

// SetLeaves applies updates in order. Nothing is written unless every update
// is valid; a later update to the same index wins.
func (a *Accumulator) SetLeaves(updates []LeafUpdate) error {
	for _, u := range updates {
		if err := a.checkIndex(u.Index); err != nil {
			return err
		}
		if u.Value == nil {
			return errors.Errorf(errors.InvalidArgument, "%w: nil value for leaf %d", ErrInvalidValue, u.Index)
		}
	}
	for _, u := range updates {
		a.setLeaf(u.Index, new(big.Int).Set(u.Value))
	}
	return nil
}

// setLeaf stores v, which the caller must own, and invalidates the path from
// the leaf to the root.
func (a *Accumulator) setLeaf(index uint64, v *big.Int) {
	if a.nodes[0][index].Cmp(v) == 0 {
		return
	}
	a.nodes[0][index] = v
	leafUpdates.Inc()
	for level := uint(1); level <= a.depth; level++ {
		a.nodes[level][index>>level] = nil
	}
	switch {
	case a.sweep:
	case len(a.dirty) >= len(a.nodes[0]):
		// A sweep rehashes the same nodes and keeps dirty bounded.
		a.sweep = true
		a.dirty = a.dirty[:0]
	default:
		a.dirty = append(a.dirty, index)
	}
}

// ComputeRoot returns the current root. Only stale interior nodes are
// rehashed: all 2^d - 1 of them on the first call, d per changed leaf
// afterwards, none if nothing changed.
func (a *Accumulator) ComputeRoot() (*big.Int, error) {
	rootComputations.Inc()
	var n int
	var err error
	if a.sweep {
		n, err = a.rehashAll()
	} else {
		n, err = a.rehashDirty()
	}
	hashInvocations.Add(float64(n))
	if err != nil {
		return nil, err
	}
	nodesRecomputed.Observe(float64(n))
	klog.V(2).Infof("ComputeRoot rehashed %d nodes", n)

	a.sweep = false
	a.dirty = a.dirty[:0]
	return new(big.Int).Set(a.nodes[a.depth][0]), nil
}

func (a *Accumulator) rehashAll() (int, error) {
	n := 0
	for level := uint(1); level <= a.depth; level++ {
		for i := range a.nodes[level] {
			if a.nodes[level][i] != nil {
				continue
			}
			if err := a.rehash(level, uint64(i)); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (a *Accumulator) rehashDirty() (int, error) {
	n := 0
	for level := uint(1); level <= a.depth; level++ {
		for _, leaf := range a.dirty {
			i := leaf >> level
			if a.nodes[level][i] != nil {
				continue
			}
			if err := a.rehash(level, i); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// rehash computes node (level, index) from its children; the left operand is
// always the lower-indexed child.
func (a *Accumulator) rehash(level uint, index uint64) error {
	below := a.nodes[level-1]
	h, err := a.hasher.HashChildren(below[2*index], below[2*index+1])
	if err != nil {
		return errors.Errorf(errors.InvalidArgument, "hashing node (%d, %d): %w", level, index, err)
	}
	if h == nil {
		return errors.Errorf(errors.Internal, "hashing node (%d, %d): hasher returned nil", level, index)
	}
	a.nodes[level][index] = h
	return nil
}

// ApplyTransfer moves amount from leaf from to leaf to and returns the new
// root. On any error the leaves are left as they were.
func (a *Accumulator) ApplyTransfer(from, to uint64, amount *big.Int) (*big.Int, error) {
	if err := a.checkIndex(from); err != nil {
		rejectedTransfers.Inc("index_out_of_range")
		return nil, err
	}
	if err := a.checkIndex(to); err != nil {
		rejectedTransfers.Inc("index_out_of_range")
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		rejectedTransfers.Inc("invalid_amount")
		return nil, errors.Errorf(errors.InvalidArgument, "%w: transfer amount %v", ErrInvalidValue, amount)
	}
	oldFrom, oldTo := a.nodes[0][from], a.nodes[0][to]
	if oldFrom.Cmp(amount) < 0 {
		rejectedTransfers.Inc("insufficient_balance")
		return nil, errors.Errorf(errors.FailedPrecondition, "%w: account %d holds %v, transfer of %v", ErrInsufficientBalance, from, oldFrom, amount)
	}

	a.setLeaf(from, new(big.Int).Sub(oldFrom, amount))
	a.setLeaf(to, new(big.Int).Add(a.nodes[0][to], amount))
	root, err := a.ComputeRoot()
	if err != nil {
		a.setLeaf(from, oldFrom)
		a.setLeaf(to, oldTo)
		rejectedTransfers.Inc("hash_error")
		return nil, fmt.Errorf("transfer %d -> %d: %w", from, to, err)
	}
	return root, nil
}

// RootOf computes the root of leaves from scratch, with exactly
// len(leaves) - 1 hash invocations.
func RootOf(hasher hashers.Hasher, leaves []*big.Int) (*big.Int, error) {
	if hashers.IsNil(hasher) {
		return nil, ErrInvalidHashFunction
	}
	if _, err := depthOf(len(leaves)); err != nil {
		return nil, err
	}
	level := make([]*big.Int, len(leaves))
	for i, v := range leaves {
		if v == nil {
			return nil, errors.Errorf(errors.InvalidArgument, "%w: leaf %d is nil", ErrInvalidValue, i)
		}
		level[i] = v
	}
	for len(level) > 1 {
		next := make([]*big.Int, len(level)/2)
		for i := range next {
			h, err := hasher.HashChildren(level[2*i], level[2*i+1])
			if err != nil {
				return nil, errors.Errorf(errors.InvalidArgument, "hashing pair %d of %d: %w", i, len(next), err)
			}
			if h == nil {
				return nil, errors.Errorf(errors.Internal, "hashing pair %d of %d: hasher returned nil", i, len(next))
			}
			next[i] = h
		}
		level = next
	}
	return new(big.Int).Set(level[0]), nil
}
