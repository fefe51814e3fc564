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

// Package expfmt contains the text exposition encoder used to write gauge
// metric families into files read by node_exporter's textfile collector.
package expfmt

import (
	"io"

	dto "github.com/prometheus/client_model/go"
)

// Encoder types encode metric families into an underlying wire protocol.
type Encoder interface {
	Encode(*dto.MetricFamily) error
}

type encoderFunc func(*dto.MetricFamily) error

func (e encoderFunc) Encode(v *dto.MetricFamily) error {
	return e(v)
}

// NewEncoder returns an Encoder writing the text exposition format to w.
// Each Encode call writes one complete HELP/TYPE/sample block, or nothing if
// the family is malformed.
func NewEncoder(w io.Writer) Encoder {
	return encoderFunc(func(v *dto.MetricFamily) error {
		_, err := MetricFamilyToText(w, v)
		return err
	})
}
