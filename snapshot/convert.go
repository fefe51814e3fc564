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

package snapshot

import (
	"fmt"
	"strconv"
	"time"
)

// Seconds is a duration in seconds. In YAML it may be given as a number, a
// numeric string, or a Go duration string such as "2.5s".
type Seconds float64

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (s *Seconds) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	f, err := convertToFloat(v)
	if err != nil {
		return fmt.Errorf("elapsed_time: %w", err)
	}
	*s = Seconds(f)
	return nil
}

// Epoch is a Unix timestamp in seconds. In YAML it may be given as a number,
// a numeric string, or an RFC 3339 timestamp.
type Epoch int64

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (e *Epoch) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	if str, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			*e = Epoch(t.Unix())
			return nil
		}
	}
	f, err := convertToFloat(v)
	if err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	*e = Epoch(int64(f))
	return nil
}

// Time returns the timestamp as a time.Time.
func (e Epoch) Time() time.Time {
	return time.Unix(int64(e), 0)
}

func convertToFloat(i interface{}) (float64, error) {
	switch v := i.(type) {
	case float64:
		return v, nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("can't convert %q to float", v)
		}
		return d.Seconds(), nil
	case int:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case time.Duration:
		return v.Seconds(), nil
	default:
		return 0, fmt.Errorf("can't convert %T to float", v)
	}
}
