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

package expfmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// ErrSerialization is returned (wrapped) when a metric family cannot be
// rendered because its state is malformed.
var ErrSerialization = errors.New("malformed metric family")

// enhancedWriter has all the enhanced write functions needed here. bufio.Writer
// and bytes.Buffer implement it.
type enhancedWriter interface {
	io.Writer
	WriteRune(r rune) (n int, err error)
	WriteString(s string) (n int, err error)
	WriteByte(c byte) error
}

var (
	escapeHelp       = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	escapeLabelValue = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// MetricFamilyToText converts a gauge MetricFamily proto message into text
// format and writes the resulting lines to 'out'. It returns the number of
// bytes written and any error encountered. The family is checked completely
// before the first byte is written, so a malformed family produces no output.
//
// A family without any metric is rendered as its HELP and TYPE lines only.
// The HELP line is omitted when the family has no help text.
func MetricFamilyToText(out io.Writer, in *dto.MetricFamily) (written int, err error) {
	if err := checkFamily(in); err != nil {
		return 0, err
	}

	w, ok := out.(enhancedWriter)
	if !ok {
		b := bufio.NewWriter(out)
		w = b
		defer func() {
			bErr := b.Flush()
			if err == nil {
				err = bErr
			}
		}()
	}

	var n int
	name := in.GetName()

	if help := in.GetHelp(); help != "" {
		n, err = w.WriteString("# HELP ")
		written += n
		if err != nil {
			return written, err
		}
		n, err = w.WriteString(name)
		written += n
		if err != nil {
			return written, err
		}
		err = w.WriteByte(' ')
		written++
		if err != nil {
			return written, err
		}
		n, err = escapeHelp.WriteString(w, help)
		written += n
		if err != nil {
			return written, err
		}
		err = w.WriteByte('\n')
		written++
		if err != nil {
			return written, err
		}
	}
	n, err = w.WriteString("# TYPE ")
	written += n
	if err != nil {
		return written, err
	}
	n, err = w.WriteString(name)
	written += n
	if err != nil {
		return written, err
	}
	n, err = w.WriteString(" gauge\n")
	written += n
	if err != nil {
		return written, err
	}

	for _, metric := range in.Metric {
		n, err = writeSample(w, name, metric)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func checkFamily(in *dto.MetricFamily) error {
	if in == nil {
		return fmt.Errorf("%w: nil metric family", ErrSerialization)
	}
	name := in.GetName()
	if name == "" {
		return fmt.Errorf("%w: metric family has no name", ErrSerialization)
	}
	if in.GetType() != dto.MetricType_GAUGE {
		return fmt.Errorf("%w: metric family %q has type %s, only gauges are supported", ErrSerialization, name, in.GetType())
	}
	for i, m := range in.Metric {
		if m == nil || m.Gauge == nil {
			return fmt.Errorf("%w: metric %d of family %q has no gauge value", ErrSerialization, i, name)
		}
		for _, lp := range m.Label {
			if lp.GetName() == "" {
				return fmt.Errorf("%w: metric %d of family %q has a label without name", ErrSerialization, i, name)
			}
		}
	}
	return nil
}

// writeSample writes a single sample line in text format to w.
func writeSample(w enhancedWriter, name string, metric *dto.Metric) (int, error) {
	written := 0
	n, err := w.WriteString(name)
	written += n
	if err != nil {
		return written, err
	}
	n, err = writeLabelPairs(w, metric.Label)
	written += n
	if err != nil {
		return written, err
	}
	err = w.WriteByte(' ')
	written++
	if err != nil {
		return written, err
	}
	n, err = w.WriteString(FormatFloat(metric.Gauge.GetValue()))
	written += n
	if err != nil {
		return written, err
	}
	if metric.TimestampMs != nil {
		err = w.WriteByte(' ')
		written++
		if err != nil {
			return written, err
		}
		n, err = w.WriteString(strconv.FormatInt(metric.GetTimestampMs(), 10))
		written += n
		if err != nil {
			return written, err
		}
	}
	err = w.WriteByte('\n')
	written++
	return written, err
}

// writeLabelPairs writes the label pairs in the order given, enclosed in '{'
// and '}'. Nothing is written for an empty slice.
func writeLabelPairs(w enhancedWriter, in []*dto.LabelPair) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	var (
		written   int
		separator byte = '{'
	)
	for _, lp := range in {
		err := w.WriteByte(separator)
		written++
		if err != nil {
			return written, err
		}
		n, err := w.WriteString(lp.GetName())
		written += n
		if err != nil {
			return written, err
		}
		n, err = w.WriteString(`="`)
		written += n
		if err != nil {
			return written, err
		}
		n, err = escapeLabelValue.WriteString(w, lp.GetValue())
		written += n
		if err != nil {
			return written, err
		}
		err = w.WriteByte('"')
		written++
		if err != nil {
			return written, err
		}
		separator = ','
	}
	err := w.WriteByte('}')
	written++
	return written, err
}

// FormatFloat renders a sample value. Integral values are written without a
// decimal point or exponent, so a Unix timestamp stays 1700000000 instead of
// 1.7e+09. Everything else uses the shortest representation that parses back
// to the same float64.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, +1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
