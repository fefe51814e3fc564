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

// Package report turns the snapshot of a Chef client run into gauges and
// writes them to a node_exporter textfile.
//
// Report never fails the caller. A reporting problem must not abort the run
// it reports on, so every error, and any panic, is logged and handed back as
// Result.Warning. Nothing is written for a cycle that had an error: the file
// either gets the complete set of gauges or keeps its previous content.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/common/helpers/templates"
	"github.com/prometheus/common/promslog"

	"github.com/prometheus-community/chef_textfile_reporter/registry"
	"github.com/prometheus-community/chef_textfile_reporter/snapshot"
	"github.com/prometheus-community/chef_textfile_reporter/textfile"
)

// DefaultEnvironment labels runs without an environment.
const DefaultEnvironment = "unknown"

// Options configures a Collector. Zero values select the defaults.
type Options struct {
	DefaultEnvironment string
	LockTimeout        time.Duration
	FileMode           os.FileMode
}

// Result describes the outcome of one Report call.
type Result struct {
	// CycleID identifies the report cycle in log lines.
	CycleID string
	// Path is the file written, empty if nothing was written.
	Path string
	// Written is true once the file has been replaced.
	Written bool
	// Series is the number of series collected.
	Series int
	// Warning is the swallowed failure of the cycle, if any. It is always
	// an *Error.
	Warning error
}

// Collector reports run snapshots. It keeps no state between cycles and is
// safe for concurrent use.
type Collector struct {
	logger *slog.Logger
	opts   Options
	steps  []step
}

// NewCollector returns a Collector. A nil logger discards all output.
func NewCollector(logger *slog.Logger, opts Options) *Collector {
	if logger == nil {
		logger = promslog.NewNopLogger()
	}
	if opts.DefaultEnvironment == "" {
		opts.DefaultEnvironment = DefaultEnvironment
	}
	return &Collector{
		logger: logger,
		opts:   opts,
		steps:  defaultSteps,
	}
}

// Report collects the gauges for snap into a fresh registry and, if
// outputPath is not empty, atomically replaces outputPath with them.
// ctx bounds the wait for the output file lock.
func (c *Collector) Report(ctx context.Context, snap *snapshot.RunSnapshot, outputPath string) (res Result) {
	res.CycleID = uuid.NewString()
	logger := c.logger.With("cycle", res.CycleID)

	defer func() {
		if r := recover(); r != nil {
			res.Path, res.Written = "", false
			res.Warning = c.fail(logger, &Error{Kind: KindPanic, Err: fmt.Errorf("recovered: %v", r)})
		}
	}()

	logger.Info("Starting metrics gathering")

	reg, err := c.collect(logger, snap)
	if err != nil {
		res.Warning = c.fail(logger, err)
		return res
	}
	res.Series = reg.SeriesCount()

	if outputPath == "" {
		logger.Debug("No textfile configured, metrics not written", "series", res.Series)
		return res
	}

	data, err := reg.Serialize()
	if err != nil {
		res.Warning = c.fail(logger, err)
		return res
	}
	err = textfile.Write(ctx, outputPath, data,
		textfile.WithMode(c.opts.FileMode),
		textfile.WithLockTimeout(c.opts.LockTimeout),
	)
	if err != nil {
		res.Warning = c.fail(logger, err)
		return res
	}

	res.Path, res.Written = outputPath, true
	logger.Info("Wrote metrics", "path", outputPath, "series", res.Series, "bytes", len(data))
	return res
}

func (c *Collector) collect(logger *slog.Logger, snap *snapshot.RunSnapshot) (*registry.Registry, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot", snapshot.ErrInvalid)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	cy := &cycle{
		reg:  registry.New(),
		snap: snap,
		env:  snap.EnvironmentOr(c.opts.DefaultEnvironment),
	}
	elapsed, _ := snap.ElapsedSeconds()
	logger.Debug("Collecting run metrics",
		"node", snap.Node,
		"chef_environment", cy.env,
		"succeeded", snap.Succeeded(),
		"elapsed", humanizeSeconds(elapsed),
	)

	// Every step runs so that one report logs all problems of the snapshot.
	var errs []error
	for _, s := range c.steps {
		logger.Debug(s.desc)
		if err := s.run(cy); err != nil {
			errs = append(errs, fmt.Errorf("collecting %s metrics: %w", s.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cy.reg, nil
}

// fail logs every error contained in err with its kind and returns err as an
// *Error.
func (c *Collector) fail(logger *slog.Logger, err error) error {
	for _, e := range flatten(err) {
		logger.Error("Failed to report metrics", "kind", KindOf(e), "err", e)
	}
	return classify(err)
}

func humanizeSeconds(s float64) string {
	h, err := templates.HumanizeDuration(s)
	if err != nil {
		return fmt.Sprintf("%gs", s)
	}
	return h
}
