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

package main

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/merkle/accumulator"
	"github.com/ledgerroot/ledgerroot/merkle/hashers/registry"
	"github.com/ledgerroot/ledgerroot/monitoring"
	"gopkg.in/yaml.v2"
	"k8s.io/klog/v2"
)

// Value is a balance or amount as it appears in a scenario file. Small
// values may be written as YAML integers; anything that does not fit in 64
// bits must be quoted.
type Value struct {
	*big.Int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case int:
		v.Int = big.NewInt(int64(x))
	case int64:
		v.Int = big.NewInt(x)
	case uint64:
		v.Int = new(big.Int).SetUint64(x)
	case string:
		i, err := parseValue(x)
		if err != nil {
			return err
		}
		v.Int = i
	default:
		return fmt.Errorf("unsupported value %v (%T), quote large integers", raw, raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.Int == nil {
		return nil, nil
	}
	return v.Int.String(), nil
}

func parseValue(s string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return i, nil
}

// Transfer moves Amount from leaf From to leaf To.
type Transfer struct {
	From   uint64 `yaml:"from"`
	To     uint64 `yaml:"to"`
	Amount Value  `yaml:"amount"`
}

// Scenario is an initial set of balances and the transfers applied to it.
type Scenario struct {
	Name         string     `yaml:"name,omitempty"`
	HashStrategy string     `yaml:"hash_strategy,omitempty"`
	Leaves       []Value    `yaml:"leaves"`
	Transfers    []Transfer `yaml:"transfers,omitempty"`
}

// Result holds the roots before and after a scenario's transfers.
type Result struct {
	Name         string
	HashStrategy ledgerroot.HashStrategy
	OldRoot      ledgerroot.Root
	NewRoot      ledgerroot.Root
	Leaves       []*big.Int
}

// loadScenario reads a scenario file. The scenario is named after the file
// unless it names itself, and uses defaultStrategy unless it picks one.
func loadScenario(path, defaultStrategy string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	var s Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("%s: %v", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.HashStrategy == "" {
		s.HashStrategy = defaultStrategy
	}
	return s, nil
}

// flagScenario builds the single scenario described by the command line.
// An empty amount means no transfer is applied.
func flagScenario(opts *options) (Scenario, error) {
	s := Scenario{Name: "flags", HashStrategy: opts.hashStrategy}
	for _, f := range strings.Split(opts.leaves, ",") {
		i, err := parseValue(f)
		if err != nil {
			return Scenario{}, fmt.Errorf("--leaves: %v", err)
		}
		s.Leaves = append(s.Leaves, Value{i})
	}
	if opts.amount == "" {
		return s, nil
	}
	amount, err := parseValue(opts.amount)
	if err != nil {
		return Scenario{}, fmt.Errorf("--amount: %v", err)
	}
	s.Transfers = []Transfer{{From: opts.from, To: opts.to, Amount: Value{amount}}}
	return s, nil
}

func runScenario(s Scenario, mf monitoring.MetricFactory) (Result, error) {
	strategy, err := ledgerroot.ParseHashStrategy(s.HashStrategy)
	if err != nil {
		return Result{}, err
	}
	hasher, err := registry.NewHasher(strategy)
	if err != nil {
		return Result{}, err
	}
	balances := make([]*big.Int, len(s.Leaves))
	for i, l := range s.Leaves {
		if l.Int == nil {
			return Result{}, fmt.Errorf("leaf %d: missing value", i)
		}
		balances[i] = l.Int
	}
	acc, err := accumulator.New(hasher, balances, mf)
	if err != nil {
		return Result{}, err
	}
	oldRoot, err := acc.ComputeRoot()
	if err != nil {
		return Result{}, err
	}
	newRoot := oldRoot
	for i, t := range s.Transfers {
		if newRoot, err = acc.ApplyTransfer(t.From, t.To, t.Amount.Int); err != nil {
			return Result{}, fmt.Errorf("transfer %d (%d -> %d): %w", i, t.From, t.To, err)
		}
	}
	klog.V(1).Infof("%s: %d leaves, %d transfers, root %v -> %v", s.Name, acc.Size(), len(s.Transfers), oldRoot, newRoot)

	return Result{
		Name:         s.Name,
		HashStrategy: strategy,
		OldRoot:      ledgerroot.NewRoot(oldRoot),
		NewRoot:      ledgerroot.NewRoot(newRoot),
		Leaves:       acc.Leaves(),
	}, nil
}
