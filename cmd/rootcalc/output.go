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
	"io"

	"gopkg.in/yaml.v2"
)

const (
	formatTOML = "toml"
	formatYAML = "yaml"
)

// writeResults writes results to w in the named format.
func writeResults(w io.Writer, format string, results []Result) error {
	switch format {
	case formatTOML:
		return writeTOML(w, results)
	case formatYAML:
		return writeYAML(w, results)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// writeTOML writes the roots as Prover.toml inputs.
func writeTOML(w io.Writer, results []Result) error {
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "# %s\n", r.Name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "old_root = %q\nnew_root = %q\n", r.OldRoot.String(), r.NewRoot.String()); err != nil {
			return err
		}
	}
	return nil
}

type yamlResult struct {
	Name         string   `yaml:"name"`
	HashStrategy string   `yaml:"hash_strategy"`
	OldRoot      string   `yaml:"old_root"`
	NewRoot      string   `yaml:"new_root"`
	Leaves       []string `yaml:"leaves"`
}

func writeYAML(w io.Writer, results []Result) error {
	out := make([]yamlResult, 0, len(results))
	for _, r := range results {
		leaves := make([]string, len(r.Leaves))
		for i, l := range r.Leaves {
			leaves[i] = l.String()
		}
		out = append(out, yamlResult{
			Name:         r.Name,
			HashStrategy: r.HashStrategy.String(),
			OldRoot:      r.OldRoot.String(),
			NewRoot:      r.NewRoot.String(),
			Leaves:       leaves,
		})
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
