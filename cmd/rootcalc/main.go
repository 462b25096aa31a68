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

// The rootcalc binary computes ledger Merkle roots before and after a set of
// balance transfers, and prints them in a form suitable for a prover.
//
// Without arguments a single scenario is built from flags:
//
//	rootcalc --leaves=100,50,200,75 --from=0 --to=1 --amount=30
//
// Otherwise each argument names a YAML scenario file:
//
//	hash_strategy: POSEIDON_BN254
//	leaves: [100, 50, 200, 75]
//	transfers:
//	- {from: 0, to: 1, amount: 30}
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/ledgerroot/ledgerroot"
	"github.com/ledgerroot/ledgerroot/cmd"
	"github.com/ledgerroot/ledgerroot/merkle/hashers/registry"
	"github.com/ledgerroot/ledgerroot/monitoring"
	"github.com/ledgerroot/ledgerroot/monitoring/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	configFile   = flag.String("config", "", "Config file containing flags, file contents can be overridden by command line flags")
	hashStrategy = flag.String("hash_strategy", registry.DefaultStrategy.String(), fmt.Sprintf("Hash strategy, one of %s", strings.Join(ledgerroot.HashStrategyNames(), ", ")))
	leaves       = flag.String("leaves", "100,50,200,75", "Comma-separated initial balances, used when no scenario files are given")
	from         = flag.Uint64("from", 0, "Index of the leaf to debit")
	to           = flag.Uint64("to", 1, "Index of the leaf to credit")
	amount       = flag.String("amount", "30", "Amount to transfer, empty for none")
	outputFormat = flag.String("output_format", formatTOML, "Output format, toml or yaml")
	outputFile   = flag.String("output_file", "", "File to write results to, stdout if empty")
	metricsFile  = flag.String("metrics_file", "", "If set, Prometheus metrics are written to this file in text format")
	parallelism  = flag.Int("parallelism", runtime.NumCPU(), "Maximum number of scenarios processed concurrently")
)

var metricFactory monitoring.MetricFactory = prometheus.MetricFactory{Prefix: "rootcalc_"}

type options struct {
	hashStrategy, leaves, amount string
	from, to                     uint64
	outputFormat, outputFile     string
	metricsFile                  string
	parallelism                  int
	scenarioFiles                []string
}

func newOptsFromFlags() *options {
	return &options{
		hashStrategy:  *hashStrategy,
		leaves:        *leaves,
		from:          *from,
		to:            *to,
		amount:        *amount,
		outputFormat:  *outputFormat,
		outputFile:    *outputFile,
		metricsFile:   *metricsFile,
		parallelism:   *parallelism,
		scenarioFiles: flag.Args(),
	}
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.outputFormat != formatTOML && opts.outputFormat != formatYAML {
		return fmt.Errorf("unknown output format %q", opts.outputFormat)
	}

	scenarios, err := loadScenarios(opts)
	if err != nil {
		return err
	}
	results, err := runScenarios(ctx, scenarios, opts.parallelism)
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := prom.WriteToTextfile(opts.metricsFile, prom.DefaultGatherer); err != nil {
			return fmt.Errorf("failed to write metrics: %v", err)
		}
	}

	if opts.outputFile == "" {
		return writeResults(stdout, opts.outputFormat, results)
	}
	f, err := os.Create(opts.outputFile)
	if err != nil {
		return err
	}
	if err := writeResults(f, opts.outputFormat, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadScenarios(opts *options) ([]Scenario, error) {
	if len(opts.scenarioFiles) == 0 {
		s, err := flagScenario(opts)
		if err != nil {
			return nil, err
		}
		return []Scenario{s}, nil
	}
	scenarios := make([]Scenario, 0, len(opts.scenarioFiles))
	for _, path := range opts.scenarioFiles {
		s, err := loadScenario(path, opts.hashStrategy)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// runScenarios runs each scenario on its own accumulator, at most
// parallelism at a time. Results are in the same order as scenarios.
func runScenarios(ctx context.Context, scenarios []Scenario, parallelism int) ([]Result, error) {
	results := make([]Result, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, s := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runScenario(s, metricFactory)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if *configFile != "" {
		if err := cmd.ParseFlagFile(*configFile); err != nil {
			klog.Exitf("Failed to load flags from config file %q: %s", *configFile, err)
		}
	}

	if err := run(context.Background(), newOptsFromFlags(), os.Stdout); err != nil {
		klog.Exitf("rootcalc: %v", err)
	}
}
