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

// Package testonly contains code and data for testing balance Merkle trees.
package testonly

import "math/big"

// Ints converts vs to big integers.
func Ints(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

// Balances returns the four account balances of the reference scenario.
func Balances() []*big.Int {
	return Ints(100, 50, 200, 75)
}

// TransferredBalances returns Balances() after account 0 sends 30 to
// account 1.
func TransferredBalances() []*big.Int {
	return Ints(70, 80, 200, 75)
}

// Sequence returns n leaves with values 1..n.
func Sequence(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(int64(i + 1))
	}
	return out
}
