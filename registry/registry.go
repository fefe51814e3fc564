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

// Package registry holds named, labeled gauge series for a single report
// cycle and renders them in the text exposition format.
//
// A Registry keeps gauges in registration order and the series of a gauge in
// the order they were first set, so identical inputs always produce
// byte-identical output.
//
// Registering a name that already exists replaces the gauge if the label
// names are identical (same names, same order). The replacement starts
// without series but keeps the output position of the gauge it replaced.
// Registering an existing name with different label names fails with
// ErrInvalidLabelSet.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus-community/chef_textfile_reporter/expfmt"
)

var (
	// ErrInvalidLabelSet is returned when label names or values do not match
	// the declaration of a gauge, or when a gauge is re-registered with
	// different label names.
	ErrInvalidLabelSet = errors.New("invalid label set")
	// ErrInvalidName is returned for metric names that are not valid
	// Prometheus metric names.
	ErrInvalidName = errors.New("invalid metric name")
	// ErrUnknownGauge is returned by SetValue for names never registered.
	ErrUnknownGauge = errors.New("unknown gauge")
)

var _ prometheus.Gatherer = (*Registry)(nil)

// Registry is a collection of gauges. The zero value is not usable, create
// instances with New.
type Registry struct {
	mtx    sync.RWMutex
	gauges []*Gauge
	byName map[string]int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

// Register adds a gauge described by opts, or replaces the gauge already
// registered under the same name. Handles returned by earlier Register calls
// for a replaced gauge are detached: values set on them are not rendered.
func (r *Registry) Register(opts GaugeOpts) (*Gauge, error) {
	g, err := newGauge(opts)
	if err != nil {
		return nil, err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if i, ok := r.byName[g.name]; ok {
		if prev := r.gauges[i]; !slices.Equal(prev.labelNames, g.labelNames) {
			return nil, fmt.Errorf(
				"%w: gauge %q already registered with label names %v, got %v",
				ErrInvalidLabelSet, g.name, prev.labelNames, g.labelNames,
			)
		}
		r.gauges[i] = g
		return g, nil
	}
	r.byName[g.name] = len(r.gauges)
	r.gauges = append(r.gauges, g)
	return g, nil
}

// MustRegister works like Register but panics on error.
func (r *Registry) MustRegister(opts GaugeOpts) *Gauge {
	g, err := r.Register(opts)
	if err != nil {
		panic(err)
	}
	return g
}

// Get returns the gauge registered under name.
func (r *Registry) Get(name string) (*Gauge, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.gauges[i], true
}

// SetValue upserts the value of the series identified by labelValues in the
// gauge registered under name. The label values are matched positionally
// against the gauge's label names.
func (r *Registry) SetValue(name string, labelValues []string, value float64) error {
	g, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGauge, name)
	}
	return g.Set(value, labelValues...)
}

// SeriesCount returns the number of series across all gauges.
func (r *Registry) SeriesCount() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	n := 0
	for _, g := range r.gauges {
		n += g.Len()
	}
	return n
}

// Gather implements prometheus.Gatherer. Families are returned in
// registration order; label pairs keep the declared label order.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	mfs := make([]*dto.MetricFamily, 0, len(r.gauges))
	for _, g := range r.gauges {
		mfs = append(mfs, g.metricFamily())
	}
	return mfs, nil
}

// WriteTo renders all gauges in the text exposition format and writes them
// to w with a single Write call. Nothing is written if rendering fails.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	b, err := r.Serialize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Serialize renders all gauges in the text exposition format.
func (r *Registry) Serialize() ([]byte, error) {
	mfs, err := r.Gather()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}
