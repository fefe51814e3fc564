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

package report

import (
	"errors"

	"github.com/prometheus-community/chef_textfile_reporter/expfmt"
	"github.com/prometheus-community/chef_textfile_reporter/registry"
	"github.com/prometheus-community/chef_textfile_reporter/snapshot"
	"github.com/prometheus-community/chef_textfile_reporter/textfile"
)

// Kind classifies a reporting failure.
type Kind string

const (
	KindInvalidLabelSet Kind = "InvalidLabelSet"
	KindSerialization   Kind = "SerializationError"
	KindWrite           Kind = "WriteError"
	KindInvalidSnapshot Kind = "InvalidSnapshot"
	KindPanic           Kind = "Panic"
	KindUnknown         Kind = "Unknown"
)

// Error is a reporting failure together with its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Joined errors get the first matching kind in the
// order InvalidLabelSet, SerializationError, WriteError, InvalidSnapshot.
func KindOf(err error) Kind {
	var (
		rerr *Error
		werr *textfile.WriteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rerr):
		return rerr.Kind
	case errors.Is(err, registry.ErrInvalidLabelSet):
		return KindInvalidLabelSet
	case errors.Is(err, registry.ErrInvalidName),
		errors.Is(err, registry.ErrUnknownGauge),
		errors.Is(err, expfmt.ErrSerialization):
		return KindSerialization
	case errors.As(err, &werr):
		return KindWrite
	case errors.Is(err, snapshot.ErrInvalid):
		return KindInvalidSnapshot
	default:
		return KindUnknown
	}
}

// classify wraps err into an *Error unless it already is one.
func classify(err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{Kind: KindOf(err), Err: err}
}

// flatten returns the leaves of a tree of joined errors. A join wrapped by
// single-error wrappers is found as well; its leaves are then returned
// without the outer context.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range j.Unwrap() {
			errs = append(errs, flatten(e)...)
		}
		return errs
	}
	if inner := errors.Unwrap(err); inner != nil {
		if leaves := flatten(inner); len(leaves) > 1 {
			return leaves
		}
	}
	return []error{err}
}
