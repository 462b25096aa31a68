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

package accumulator

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/ledgerroot/ledgerroot/errors"
	"github.com/ledgerroot/ledgerroot/merkle/hashers"
	"github.com/ledgerroot/ledgerroot/merkle/testonly"
	montest "github.com/ledgerroot/ledgerroot/monitoring/testonly"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
})

func mustNew(t *testing.T, h hashers.Hasher, leaves []*big.Int) *Accumulator {
	t.Helper()
	a, err := New(h, leaves, nil)
	if err != nil {
		t.Fatalf("New(%v): %v", leaves, err)
	}
	return a
}

func mustRoot(t *testing.T, a *Accumulator) *big.Int {
	t.Helper()
	root, err := a.ComputeRoot()
	if err != nil {
		t.Fatalf("ComputeRoot: %v", err)
	}
	return root
}

func hash(t *testing.T, l, r *big.Int) *big.Int {
	t.Helper()
	v, err := testonly.PairingHasher{}.HashChildren(l, r)
	if err != nil {
		t.Fatalf("HashChildren(%v, %v): %v", l, r, err)
	}
	return v
}

func checkLeaves(t *testing.T, a *Accumulator, want []*big.Int) {
	t.Helper()
	if diff := cmp.Diff(want, a.Leaves(), bigIntComparer); diff != "" {
		t.Errorf("Leaves() diff (-want +got):\n%s", diff)
	}
}

func TestNewErrors(t *testing.T) {
	var nilFunc hashers.HashFunc
	for _, tc := range []struct {
		desc   string
		hasher hashers.Hasher
		leaves []*big.Int
		want   error
	}{
		{desc: "no-leaves", hasher: testonly.PairingHasher{}, leaves: nil, want: ErrInvalidLeafCount},
		{desc: "three-leaves", hasher: testonly.PairingHasher{}, leaves: testonly.Sequence(3), want: ErrInvalidLeafCount},
		{desc: "six-leaves", hasher: testonly.PairingHasher{}, leaves: testonly.Sequence(6), want: ErrInvalidLeafCount},
		{desc: "nil-hasher", hasher: nil, leaves: testonly.Balances(), want: ErrInvalidHashFunction},
		{desc: "nil-hash-func", hasher: nilFunc, leaves: testonly.Balances(), want: ErrInvalidHashFunction},
		{desc: "nil-leaf", hasher: testonly.PairingHasher{}, leaves: []*big.Int{big.NewInt(1), nil}, want: ErrInvalidValue},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			a, err := New(tc.hasher, tc.leaves, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("New()=%v, %v; want error %v", a, err, tc.want)
			}
			if got, want := status.Code(err), codes.InvalidArgument; got != want {
				t.Errorf("status.Code(%v)=%v, want %v", err, got, want)
			}
		})
	}
}

func TestSizeAndDepth(t *testing.T) {
	for d := uint(0); d <= 10; d++ {
		a := mustNew(t, testonly.PairingHasher{}, testonly.Sequence(1<<d))
		if got, want := a.Depth(), d; got != want {
			t.Errorf("Depth()=%d, want %d", got, want)
		}
		if got, want := a.Size(), uint64(1)<<d; got != want {
			t.Errorf("Size()=%d, want %d", got, want)
		}
	}
}

func TestSingleLeafTree(t *testing.T) {
	h := testonly.NewCountingHasher(testonly.PairingHasher{})
	a := mustNew(t, h, testonly.Ints(42))
	if got := mustRoot(t, a); got.Int64() != 42 {
		t.Errorf("ComputeRoot()=%v, want 42", got)
	}
	if h.Calls() != 0 {
		t.Errorf("single-leaf root used %d hashes, want 0", h.Calls())
	}
}

func TestBalanceTransferScenario(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())

	oldRoot := mustRoot(t, a)
	wantOld := hash(t, hash(t, big.NewInt(100), big.NewInt(50)), hash(t, big.NewInt(200), big.NewInt(75)))
	if oldRoot.Cmp(wantOld) != 0 {
		t.Errorf("old root=%v, want %v", oldRoot, wantOld)
	}

	newRoot, err := a.ApplyTransfer(0, 1, big.NewInt(30))
	if err != nil {
		t.Fatalf("ApplyTransfer(0, 1, 30): %v", err)
	}
	checkLeaves(t, a, testonly.TransferredBalances())
	wantNew := hash(t, hash(t, big.NewInt(70), big.NewInt(80)), hash(t, big.NewInt(200), big.NewInt(75)))
	if newRoot.Cmp(wantNew) != 0 {
		t.Errorf("new root=%v, want %v", newRoot, wantNew)
	}
	if newRoot.Cmp(oldRoot) == 0 {
		t.Errorf("root unchanged by transfer: %v", newRoot)
	}
	if got := mustRoot(t, a); got.Cmp(newRoot) != 0 {
		t.Errorf("ComputeRoot() after transfer=%v, want %v", got, newRoot)
	}

	// Reproducible from scratch.
	fresh := mustNew(t, testonly.PairingHasher{}, testonly.TransferredBalances())
	if got := mustRoot(t, fresh); got.Cmp(newRoot) != 0 {
		t.Errorf("fresh tree root=%v, want %v", got, newRoot)
	}
}

func TestInsufficientBalance(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
	before := mustRoot(t, a)

	root, err := a.ApplyTransfer(0, 1, big.NewInt(150))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("ApplyTransfer(0, 1, 150)=%v, %v; want %v", root, err, ErrInsufficientBalance)
	}
	if got, want := status.Code(err), codes.FailedPrecondition; got != want {
		t.Errorf("status.Code()=%v, want %v", got, want)
	}
	checkLeaves(t, a, testonly.Balances())
	if got := mustRoot(t, a); got.Cmp(before) != 0 {
		t.Errorf("root changed by rejected transfer: %v -> %v", before, got)
	}
}

func TestApplyTransferValidation(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		from, to uint64
		amount   *big.Int
		want     error
	}{
		{desc: "bad-from", from: 4, to: 1, amount: big.NewInt(1), want: ErrIndexOutOfRange},
		{desc: "bad-to", from: 0, to: 99, amount: big.NewInt(1), want: ErrIndexOutOfRange},
		{desc: "nil-amount", from: 0, to: 1, amount: nil, want: ErrInvalidValue},
		{desc: "negative-amount", from: 0, to: 1, amount: big.NewInt(-5), want: ErrInvalidValue},
		{desc: "drain-plus-one", from: 3, to: 0, amount: big.NewInt(76), want: ErrInsufficientBalance},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
			if _, err := a.ApplyTransfer(tc.from, tc.to, tc.amount); !errors.Is(err, tc.want) {
				t.Errorf("ApplyTransfer(%d, %d, %v)=%v, want %v", tc.from, tc.to, tc.amount, err, tc.want)
			}
			checkLeaves(t, a, testonly.Balances())
		})
	}
}

func TestApplyTransferEdgeAmounts(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		from, to uint64
		amount   int64
		want     []*big.Int
	}{
		{desc: "zero", from: 0, to: 1, amount: 0, want: testonly.Balances()},
		{desc: "self", from: 2, to: 2, amount: 200, want: testonly.Balances()},
		{desc: "drain", from: 3, to: 0, amount: 75, want: testonly.Ints(175, 50, 200, 0)},
		{desc: "backwards", from: 2, to: 0, amount: 1, want: testonly.Ints(101, 50, 199, 75)},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
			root, err := a.ApplyTransfer(tc.from, tc.to, big.NewInt(tc.amount))
			if err != nil {
				t.Fatalf("ApplyTransfer: %v", err)
			}
			checkLeaves(t, a, tc.want)
			want, err := RootOf(testonly.PairingHasher{}, tc.want)
			if err != nil {
				t.Fatalf("RootOf: %v", err)
			}
			if root.Cmp(want) != 0 {
				t.Errorf("root=%v, want %v", root, want)
			}
		})
	}
}

func TestTransferPreservesTotal(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Sequence(16))
	total := func() *big.Int {
		s := new(big.Int)
		for _, v := range a.Leaves() {
			s.Add(s, v)
		}
		return s
	}
	want := total()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		from, to := uint64(rng.Intn(16)), uint64(rng.Intn(16))
		_, _ = a.ApplyTransfer(from, to, big.NewInt(int64(rng.Intn(10))))
		if got := total(); got.Cmp(want) != 0 {
			t.Fatalf("after transfer %d: total=%v, want %v", i, got, want)
		}
	}
}

func TestApplyTransferRollsBackOnHashError(t *testing.T) {
	// Leaf 1 becomes 80 after the transfer, which the hasher refuses.
	h := testonly.FailingHasher{Hasher: testonly.PairingHasher{}, Poison: big.NewInt(80)}
	a := mustNew(t, h, testonly.Balances())
	before := mustRoot(t, a)

	if _, err := a.ApplyTransfer(0, 1, big.NewInt(30)); err == nil {
		t.Fatal("ApplyTransfer: want hash error")
	} else if got, want := errors.ErrorCode(err), errors.InvalidArgument; got != want {
		t.Errorf("ErrorCode(%v)=%v, want %v", err, got, want)
	}
	checkLeaves(t, a, testonly.Balances())
	if got := mustRoot(t, a); got.Cmp(before) != 0 {
		t.Errorf("root after rollback=%v, want %v", got, before)
	}

	if _, err := a.ApplyTransfer(0, 1, big.NewInt(10)); err != nil {
		t.Fatalf("ApplyTransfer(0, 1, 10): %v", err)
	}
	checkLeaves(t, a, testonly.Ints(90, 60, 200, 75))
}

func TestHashInvocations(t *testing.T) {
	for d := uint(1); d <= 8; d++ {
		t.Run(fmt.Sprintf("depth-%d", d), func(t *testing.T) {
			n := 1 << d
			h := testonly.NewCountingHasher(testonly.PairingHasher{})

			if _, err := RootOf(h, testonly.Sequence(n)); err != nil {
				t.Fatalf("RootOf: %v", err)
			}
			if got, want := h.Calls(), n-1; got != want {
				t.Errorf("RootOf used %d hashes, want %d", got, want)
			}

			h.Reset()
			a := mustNew(t, h, testonly.Sequence(n))
			mustRoot(t, a)
			if got, want := h.Calls(), n-1; got != want {
				t.Errorf("first ComputeRoot used %d hashes, want %d", got, want)
			}

			h.Reset()
			mustRoot(t, a)
			if got := h.Calls(); got != 0 {
				t.Errorf("unchanged ComputeRoot used %d hashes, want 0", got)
			}

			h.Reset()
			if err := a.SetLeaf(uint64(n-1), big.NewInt(1000)); err != nil {
				t.Fatalf("SetLeaf: %v", err)
			}
			mustRoot(t, a)
			if got, want := h.Calls(), int(d); got != want {
				t.Errorf("ComputeRoot after one SetLeaf used %d hashes, want %d", got, want)
			}

			h.Reset()
			if err := a.SetLeaf(0, big.NewInt(1)); err != nil {
				t.Fatalf("SetLeaf: %v", err)
			}
			mustRoot(t, a)
			if got := h.Calls(); got != 0 {
				t.Errorf("no-op SetLeaf caused %d hashes, want 0", got)
			}

			// Siblings share every ancestor.
			h.Reset()
			if err := a.SetLeaves([]LeafUpdate{{Index: 0, Value: big.NewInt(5)}, {Index: 1, Value: big.NewInt(6)}}); err != nil {
				t.Fatalf("SetLeaves: %v", err)
			}
			mustRoot(t, a)
			if got, want := h.Calls(), int(d); got != want {
				t.Errorf("ComputeRoot after sibling updates used %d hashes, want %d", got, want)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Sequence(32))
	first := mustRoot(t, a)
	second := mustRoot(t, a)
	if first.Cmp(second) != 0 {
		t.Errorf("ComputeRoot not idempotent: %v != %v", first, second)
	}
	other := mustNew(t, testonly.PairingHasher{}, testonly.Sequence(32))
	if got := mustRoot(t, other); got.Cmp(first) != 0 {
		t.Errorf("equal trees have different roots: %v != %v", got, first)
	}
}

func TestSwapChangesRoot(t *testing.T) {
	leaves := testonly.Sequence(8)
	a := mustNew(t, testonly.PairingHasher{}, leaves)
	before := mustRoot(t, a)
	for i := 0; i < len(leaves); i++ {
		for j := i + 1; j < len(leaves); j++ {
			swapped := testonly.Sequence(8)
			swapped[i], swapped[j] = swapped[j], swapped[i]
			root, err := RootOf(testonly.PairingHasher{}, swapped)
			if err != nil {
				t.Fatalf("RootOf: %v", err)
			}
			if root.Cmp(before) == 0 {
				t.Errorf("swapping leaves %d and %d kept root %v", i, j, root)
			}
		}
	}
}

func TestSetLeafRoundTrip(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
	orig := mustRoot(t, a)
	if err := a.SetLeaf(2, big.NewInt(12345)); err != nil {
		t.Fatalf("SetLeaf: %v", err)
	}
	changed := mustRoot(t, a)
	if changed.Cmp(orig) == 0 {
		t.Fatalf("SetLeaf did not change root")
	}
	if err := a.SetLeaf(2, big.NewInt(200)); err != nil {
		t.Fatalf("SetLeaf: %v", err)
	}
	if got := mustRoot(t, a); got.Cmp(orig) != 0 {
		t.Errorf("root after round trip=%v, want %v", got, orig)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
	check := func(desc string, err error) {
		t.Helper()
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("%s: got %v, want %v", desc, err, ErrIndexOutOfRange)
		}
		if got, want := status.Code(err), codes.OutOfRange; got != want {
			t.Errorf("%s: status.Code()=%v, want %v", desc, got, want)
		}
	}
	_, err := a.Leaf(4)
	check("Leaf(4)", err)
	check("SetLeaf(4)", a.SetLeaf(4, big.NewInt(1)))
	check("SetLeaves", a.SetLeaves([]LeafUpdate{{Index: 0, Value: big.NewInt(9)}, {Index: 1 << 40, Value: big.NewInt(1)}}))
	checkLeaves(t, a, testonly.Balances())

	if got, err := a.Leaf(3); err != nil || got.Int64() != 75 {
		t.Errorf("Leaf(3)=%v, %v; want 75, nil", got, err)
	}
}

func TestSetLeavesAtomic(t *testing.T) {
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())
	err := a.SetLeaves([]LeafUpdate{{Index: 0, Value: big.NewInt(1)}, {Index: 1, Value: nil}})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("SetLeaves(nil value)=%v, want %v", err, ErrInvalidValue)
	}
	checkLeaves(t, a, testonly.Balances())

	if err := a.SetLeaves([]LeafUpdate{
		{Index: 3, Value: big.NewInt(1)},
		{Index: 0, Value: big.NewInt(2)},
		{Index: 3, Value: big.NewInt(3)},
	}); err != nil {
		t.Fatalf("SetLeaves: %v", err)
	}
	checkLeaves(t, a, testonly.Ints(2, 50, 200, 3))
}

func TestNoAliasing(t *testing.T) {
	leaves := testonly.Balances()
	a := mustNew(t, testonly.PairingHasher{}, leaves)
	leaves[0].SetInt64(1)

	v := big.NewInt(9)
	if err := a.SetLeaf(1, v); err != nil {
		t.Fatalf("SetLeaf: %v", err)
	}
	v.SetInt64(10)

	got, err := a.Leaf(2)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}
	got.SetInt64(11)
	a.Leaves()[3].SetInt64(12)

	root := mustRoot(t, a)
	root.SetInt64(0)

	checkLeaves(t, a, testonly.Ints(100, 9, 200, 75))
	if mustRoot(t, a).Sign() == 0 {
		t.Error("root modified through returned value")
	}
}

func TestCachedMatchesReference(t *testing.T) {
	const n = 64
	rng := rand.New(rand.NewSource(42))
	a := mustNew(t, testonly.PairingHasher{}, testonly.Sequence(n))
	for round := 0; round < 50; round++ {
		// Sometimes write more leaves than the tree has, to exercise the
		// switch back to a full sweep.
		writes := 1 + rng.Intn(2*n)
		for i := 0; i < writes; i++ {
			if err := a.SetLeaf(uint64(rng.Intn(n)), big.NewInt(rng.Int63n(1000))); err != nil {
				t.Fatalf("SetLeaf: %v", err)
			}
		}
		want, err := RootOf(testonly.PairingHasher{}, a.Leaves())
		if err != nil {
			t.Fatalf("RootOf: %v", err)
		}
		if got := mustRoot(t, a); got.Cmp(want) != 0 {
			t.Fatalf("round %d: ComputeRoot()=%v, RootOf()=%v", round, got, want)
		}
	}
}

func TestComputeRootErrorKeepsLeaves(t *testing.T) {
	h := testonly.FailingHasher{Hasher: testonly.PairingHasher{}, Poison: big.NewInt(50)}
	a := mustNew(t, h, testonly.Balances())
	if _, err := a.ComputeRoot(); err == nil {
		t.Fatal("ComputeRoot: want error")
	}
	checkLeaves(t, a, testonly.Balances())
	if err := a.SetLeaf(1, big.NewInt(51)); err != nil {
		t.Fatalf("SetLeaf: %v", err)
	}
	want, err := RootOf(testonly.PairingHasher{}, testonly.Ints(100, 51, 200, 75))
	if err != nil {
		t.Fatalf("RootOf: %v", err)
	}
	if got := mustRoot(t, a); got.Cmp(want) != 0 {
		t.Errorf("ComputeRoot()=%v, want %v", got, want)
	}
}

type bigIntMatcher struct {
	want *big.Int
}

func (m bigIntMatcher) Matches(x interface{}) bool {
	v, ok := x.(*big.Int)
	return ok && v != nil && v.Cmp(m.want) == 0
}

func (m bigIntMatcher) String() string {
	return "is " + m.want.String()
}

func eqInt(v int64) gomock.Matcher {
	return bigIntMatcher{want: big.NewInt(v)}
}

func TestOperandOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := hashers.NewMockHasher(ctrl)
	gomock.InOrder(
		h.EXPECT().HashChildren(eqInt(100), eqInt(50)).Return(big.NewInt(1), nil),
		h.EXPECT().HashChildren(eqInt(200), eqInt(75)).Return(big.NewInt(2), nil),
		h.EXPECT().HashChildren(eqInt(1), eqInt(2)).Return(big.NewInt(3), nil),
		// After the transfer only the left subtree and the root are stale.
		h.EXPECT().HashChildren(eqInt(70), eqInt(80)).Return(big.NewInt(4), nil),
		h.EXPECT().HashChildren(eqInt(4), eqInt(2)).Return(big.NewInt(5), nil),
	)

	a, err := New(h, testonly.Balances(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := mustRoot(t, a); got.Int64() != 3 {
		t.Errorf("old root=%v, want 3", got)
	}
	root, err := a.ApplyTransfer(0, 1, big.NewInt(30))
	if err != nil {
		t.Fatalf("ApplyTransfer: %v", err)
	}
	if root.Int64() != 5 {
		t.Errorf("new root=%v, want 5", root)
	}
}

func TestNilHashResult(t *testing.T) {
	a := mustNew(t, hashers.HashFunc(func(l, r *big.Int) (*big.Int, error) { return nil, nil }), testonly.Balances())
	if _, err := a.ComputeRoot(); errors.ErrorCode(err) != errors.Internal {
		t.Errorf("ComputeRoot()=%v, want Internal error", err)
	}
}

func TestMetrics(t *testing.T) {
	// Metrics are created by the first New in the process.
	a := mustNew(t, testonly.PairingHasher{}, testonly.Balances())

	hashes := montest.NewCounterSnapshot(hashInvocations)
	rejected := montest.NewCounterSnapshot(rejectedTransfers)
	hashes.Record()
	rejected.Record("insufficient_balance")

	mustRoot(t, a)
	if got, want := hashes.Delta(), 3.0; got != want {
		t.Errorf("hash invocations delta=%v, want %v", got, want)
	}
	if _, err := a.ApplyTransfer(0, 1, big.NewInt(1000)); err == nil {
		t.Fatal("ApplyTransfer: want error")
	}
	if got, want := rejected.Delta("insufficient_balance"), 1.0; got != want {
		t.Errorf("rejected transfers delta=%v, want %v", got, want)
	}
}

func TestRootOfErrors(t *testing.T) {
	if _, err := RootOf(nil, testonly.Balances()); !errors.Is(err, ErrInvalidHashFunction) {
		t.Errorf("RootOf(nil hasher)=%v, want %v", err, ErrInvalidHashFunction)
	}
	if _, err := RootOf(testonly.PairingHasher{}, testonly.Sequence(12)); !errors.Is(err, ErrInvalidLeafCount) {
		t.Errorf("RootOf(12 leaves)=%v, want %v", err, ErrInvalidLeafCount)
	}
	if _, err := RootOf(testonly.PairingHasher{}, []*big.Int{nil, big.NewInt(1)}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("RootOf(nil leaf)=%v, want %v", err, ErrInvalidValue)
	}
	nilHasher := hashers.HashFunc(func(l, r *big.Int) (*big.Int, error) { return nil, nil })
	if _, err := RootOf(nilHasher, testonly.Balances()); errors.ErrorCode(err) != errors.Internal {
		t.Errorf("RootOf(nil result)=%v, want code %v", err, errors.Internal)
	}
}
