// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package snapshot defines the record of one Chef client run that the
// reporter turns into metrics, and reads it from the YAML or JSON document
// written by the report handler.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.yaml.in/yaml/v2"
)

// ErrInvalid is returned (wrapped) for snapshots that are missing required
// fields or carry out-of-range values.
var ErrInvalid = errors.New("invalid run snapshot")

// RunListEntry is a cookbook resolved for the run.
type RunListEntry struct {
	Cookbook string `yaml:"cookbook"`
	Version  string `yaml:"version"`
}

// String renders the entry as cookbook::version.
func (e RunListEntry) String() string {
	return e.Cookbook + "::" + e.Version
}

// RunSnapshot is the point-in-time record of one client run.
type RunSnapshot struct {
	Node        string  `yaml:"node,omitempty"`
	Environment string  `yaml:"chef_environment,omitempty"`
	// Timing is required. A missing value is nil, not zero.
	ElapsedTime *Seconds `yaml:"elapsed_time,omitempty"`
	EndTime     *Epoch   `yaml:"end_time,omitempty"`
	// Exception holds the run failure, empty for successful runs.
	Exception string `yaml:"exception,omitempty"`

	// Resource counts are only present for successful runs.
	AllResources     *int `yaml:"all_resources_count,omitempty"`
	UpdatedResources *int `yaml:"updated_resources_count,omitempty"`

	Roles   []string       `yaml:"roles,omitempty"`
	Tags    []string       `yaml:"tags,omitempty"`
	RunList []RunListEntry `yaml:"run_list,omitempty"`
}

// Succeeded reports whether the run finished without an exception.
func (s *RunSnapshot) Succeeded() bool {
	return s.Exception == ""
}

// EnvironmentOr returns the snapshot's environment, or def if it has none.
func (s *RunSnapshot) EnvironmentOr(def string) string {
	if s.Environment == "" {
		return def
	}
	return s.Environment
}

// ElapsedSeconds returns the run duration in seconds.
func (s *RunSnapshot) ElapsedSeconds() (float64, error) {
	if s.ElapsedTime == nil {
		return 0, fmt.Errorf("%w: elapsed_time is required", ErrInvalid)
	}
	v := float64(*s.ElapsedTime)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: elapsed_time must be a finite number >= 0, got %v", ErrInvalid, v)
	}
	return v, nil
}

// EndTimestamp returns the Unix time the run finished at.
func (s *RunSnapshot) EndTimestamp() (Epoch, error) {
	if s.EndTime == nil {
		return 0, fmt.Errorf("%w: end_time is required", ErrInvalid)
	}
	return *s.EndTime, nil
}

// ResourceCounts returns the number of resources in the run and how many of
// them were updated. Both are required for successful runs.
func (s *RunSnapshot) ResourceCounts() (all, updated int, err error) {
	if s.AllResources == nil || s.UpdatedResources == nil {
		return 0, 0, fmt.Errorf("%w: all_resources_count and updated_resources_count are required for successful runs", ErrInvalid)
	}
	all, updated = *s.AllResources, *s.UpdatedResources
	if all < 0 || updated < 0 {
		return 0, 0, fmt.Errorf("%w: resource counts must not be negative, got %d/%d", ErrInvalid, all, updated)
	}
	return all, updated, nil
}

// Validate checks the fields needed to report on the run. All problems are
// returned joined.
func (s *RunSnapshot) Validate() error {
	var errs []error
	if _, err := s.ElapsedSeconds(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.EndTimestamp(); err != nil {
		errs = append(errs, err)
	}
	if s.Succeeded() {
		if _, _, err := s.ResourceCounts(); err != nil {
			errs = append(errs, err)
		}
	}
	for i, e := range s.RunList {
		if e.Cookbook == "" {
			errs = append(errs, fmt.Errorf("%w: run_list entry %d has no cookbook", ErrInvalid, i))
		}
	}
	return errors.Join(errs...)
}

// Parse decodes a snapshot from YAML. JSON documents are accepted as well.
// Unknown fields are rejected.
func Parse(b []byte) (*RunSnapshot, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}
	s := &RunSnapshot{}
	if err := yaml.UnmarshalStrict(b, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return s, nil
}

// Load reads a snapshot from filename, or from standard input if filename
// is "-".
func Load(filename string) (*RunSnapshot, error) {
	var (
		b   []byte
		err error
	)
	if filename == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", filename, err)
	}
	return s, nil
}
