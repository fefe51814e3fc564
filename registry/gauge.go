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

package registry

import (
	"fmt"
	"strings"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/model"
	"google.golang.org/protobuf/proto"
)

// GaugeOpts describes a gauge.
type GaugeOpts struct {
	Name       string
	Help       string
	LabelNames []string
}

// Labels maps label names to label values.
type Labels map[string]string

// Gauge is a named set of series that share the same label names.
type Gauge struct {
	name       string
	help       string
	labelNames []string

	mtx    sync.Mutex
	series []*series
	index  map[string]int
}

type series struct {
	labelValues []string
	value       float64
}

func newGauge(opts GaugeOpts) (*Gauge, error) {
	//nolint:staticcheck // The textfile collector expects legacy names.
	if !model.IsValidLegacyMetricName(opts.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, opts.Name)
	}
	seen := make(map[string]struct{}, len(opts.LabelNames))
	for _, ln := range opts.LabelNames {
		//nolint:staticcheck
		if !model.LabelName(ln).IsValidLegacy() {
			return nil, fmt.Errorf("%w: gauge %q: invalid label name %q", ErrInvalidLabelSet, opts.Name, ln)
		}
		if _, dup := seen[ln]; dup {
			return nil, fmt.Errorf("%w: gauge %q: duplicate label name %q", ErrInvalidLabelSet, opts.Name, ln)
		}
		seen[ln] = struct{}{}
	}
	return &Gauge{
		name:       opts.Name,
		help:       opts.Help,
		labelNames: append([]string(nil), opts.LabelNames...),
		index:      make(map[string]int),
	}, nil
}

// Name returns the metric name of the gauge.
func (g *Gauge) Name() string { return g.name }

// LabelNames returns a copy of the declared label names.
func (g *Gauge) LabelNames() []string {
	return append([]string(nil), g.labelNames...)
}

// Len returns the number of series set on the gauge.
func (g *Gauge) Len() int {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return len(g.series)
}

// Set upserts the value of the series identified by labelValues, matched
// positionally against the gauge's label names.
func (g *Gauge) Set(value float64, labelValues ...string) error {
	if len(labelValues) != len(g.labelNames) {
		return fmt.Errorf(
			"%w: gauge %q expects %d label values for %v, got %d",
			ErrInvalidLabelSet, g.name, len(g.labelNames), g.labelNames, len(labelValues),
		)
	}
	for i, lv := range labelValues {
		if !model.LabelValue(lv).IsValid() {
			return fmt.Errorf("%w: gauge %q: label %q has invalid value %q", ErrInvalidLabelSet, g.name, g.labelNames[i], lv)
		}
	}

	key := seriesKey(labelValues)

	g.mtx.Lock()
	defer g.mtx.Unlock()

	if i, ok := g.index[key]; ok {
		g.series[i].value = value
		return nil
	}
	g.index[key] = len(g.series)
	g.series = append(g.series, &series{
		labelValues: append([]string(nil), labelValues...),
		value:       value,
	})
	return nil
}

// SetLabels works like Set but takes the label values by name. The names in
// labels must be exactly the gauge's label names.
func (g *Gauge) SetLabels(labels Labels, value float64) error {
	if len(labels) != len(g.labelNames) {
		return fmt.Errorf(
			"%w: gauge %q expects labels %v, got %d labels",
			ErrInvalidLabelSet, g.name, g.labelNames, len(labels),
		)
	}
	values := make([]string, len(g.labelNames))
	for i, ln := range g.labelNames {
		lv, ok := labels[ln]
		if !ok {
			return fmt.Errorf("%w: gauge %q: missing label %q", ErrInvalidLabelSet, g.name, ln)
		}
		values[i] = lv
	}
	return g.Set(value, values...)
}

func (g *Gauge) metricFamily() *dto.MetricFamily {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	mf := &dto.MetricFamily{
		Name:   proto.String(g.name),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: make([]*dto.Metric, 0, len(g.series)),
	}
	if g.help != "" {
		mf.Help = proto.String(g.help)
	}
	for _, s := range g.series {
		m := &dto.Metric{
			Gauge: &dto.Gauge{Value: proto.Float64(s.value)},
		}
		for i, ln := range g.labelNames {
			m.Label = append(m.Label, &dto.LabelPair{
				Name:  proto.String(ln),
				Value: proto.String(s.labelValues[i]),
			})
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

// seriesKey joins label values with model.SeparatorByte, which cannot occur
// in valid UTF-8.
func seriesKey(labelValues []string) string {
	return strings.Join(labelValues, string([]byte{model.SeparatorByte}))
}
