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

// Package testonly contains test-only code shared by MetricFactory
// implementations.
package testonly

import (
	"testing"

	"github.com/ledgerroot/ledgerroot/monitoring"
)

var labelCases = []struct {
	suffix     string
	labelNames []string
	labelVals  []string
}{
	{suffix: "0", labelNames: nil, labelVals: nil},
	{suffix: "1", labelNames: []string{"key1"}, labelVals: []string{"val1"}},
	{suffix: "2", labelNames: []string{"key1", "key2"}, labelVals: []string{"val1", "val2"}},
}

// bogus returns labelVals with one extra value appended, without touching
// labelVals' backing array.
func bogus(labelVals []string) []string {
	return append(append([]string(nil), labelVals...), "bogus")
}

// TestCounter runs a test on a Counter produced from the provided MetricFactory.
func TestCounter(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, test := range labelCases {
		name := "test_counter" + test.suffix
		t.Run(name, func(t *testing.T) {
			counter := factory.NewCounter(name, "Test only", test.labelNames...)
			if got, want := counter.Value(test.labelVals...), 0.0; got != want {
				t.Errorf("Counter(%s)[%v].Value()=%v; want %v", name, test.labelVals, got, want)
			}
			counter.Inc(test.labelVals...)
			if got, want := counter.Value(test.labelVals...), 1.0; got != want {
				t.Errorf("Counter(%s)[%v].Value()=%v; want %v", name, test.labelVals, got, want)
			}
			counter.Add(2.5, test.labelVals...)
			if got, want := counter.Value(test.labelVals...), 3.5; got != want {
				t.Errorf("Counter(%s)[%v].Value()=%v; want %v", name, test.labelVals, got, want)
			}
			// Use an invalid number of labels.
			libels := bogus(test.labelVals)
			counter.Add(10.0, libels...)
			counter.Inc(libels...)
			if got, want := counter.Value(libels...), 0.0; got != want {
				t.Errorf("Counter(%s)[%v].Value()=%v; want %v", name, libels, got, want)
			}
			if got, want := counter.Value(test.labelVals...), 3.5; got != want {
				t.Errorf("Counter(%s)[%v].Value() after bad labels=%v; want %v", name, test.labelVals, got, want)
			}
		})
	}
}

// TestGauge runs a test on a Gauge produced from the provided MetricFactory.
func TestGauge(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, test := range labelCases {
		name := "test_gauge" + test.suffix
		t.Run(name, func(t *testing.T) {
			gauge := factory.NewGauge(name, "Test only", test.labelNames...)
			steps := []struct {
				op   func()
				want float64
			}{
				{op: func() {}, want: 0.0},
				{op: func() { gauge.Inc(test.labelVals...) }, want: 1.0},
				{op: func() { gauge.Dec(test.labelVals...) }, want: 0.0},
				{op: func() { gauge.Add(2.5, test.labelVals...) }, want: 2.5},
				{op: func() { gauge.Set(42.0, test.labelVals...) }, want: 42.0},
			}
			for i, step := range steps {
				step.op()
				if got := gauge.Value(test.labelVals...); got != step.want {
					t.Errorf("Gauge(%s)[%v] step %d: Value()=%v; want %v", name, test.labelVals, i, got, step.want)
				}
			}
			// Use an invalid number of labels.
			libels := bogus(test.labelVals)
			gauge.Add(10.0, libels...)
			gauge.Inc(libels...)
			gauge.Dec(libels...)
			gauge.Set(120.0, libels...)
			if got, want := gauge.Value(libels...), 0.0; got != want {
				t.Errorf("Gauge(%s)[%v].Value()=%v; want %v", name, libels, got, want)
			}
		})
	}
}

// TestHistogram runs a test on a Histogram produced from the provided MetricFactory.
func TestHistogram(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, test := range labelCases {
		name := "test_histogram" + test.suffix
		t.Run(name, func(t *testing.T) {
			histogram := factory.NewHistogram(name, "Test only", test.labelNames...)
			gotCount, gotSum := histogram.Info(test.labelVals...)
			if wantCount, wantSum := uint64(0), 0.0; gotCount != wantCount || gotSum != wantSum {
				t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want %v,%v", name, test.labelVals, gotCount, gotSum, wantCount, wantSum)
			}
			histogram.Observe(1.0, test.labelVals...)
			histogram.Observe(2.0, test.labelVals...)
			histogram.Observe(3.0, test.labelVals...)
			gotCount, gotSum = histogram.Info(test.labelVals...)
			if wantCount, wantSum := uint64(3), 6.0; gotCount != wantCount || gotSum != wantSum {
				t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want %v,%v", name, test.labelVals, gotCount, gotSum, wantCount, wantSum)
			}

			// Use an invalid number of labels.
			libels := bogus(test.labelVals)
			histogram.Observe(100.0, libels...)
			histogram.Observe(200.0, libels...)
			gotCount, gotSum = histogram.Info(libels...)
			if wantCount, wantSum := uint64(0), 0.0; gotCount != wantCount || gotSum != wantSum {
				t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want %v,%v", name, libels, gotCount, gotSum, wantCount, wantSum)
			}
		})
	}
}
