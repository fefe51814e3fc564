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

// Package textfile writes files for node_exporter's textfile collector.
//
// The collector reads *.prom files at scrape time, so a file must never be
// visible half-written. Write puts the content into a temporary file in the
// target directory and renames it into place. Concurrent writers of the same
// file are serialized through an advisory lock on "<path>.lock".
package textfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// DefaultMode is the permission of written files. The collector usually
	// runs as a different user than the writer.
	DefaultMode os.FileMode = 0o644
	// DefaultLockTimeout bounds how long Write waits for the lock.
	DefaultLockTimeout = 5 * time.Second

	lockSuffix     = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

var errNotLocked = errors.New("lock held by another writer")

// WriteError records a failed write and the step that failed.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return "textfile " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

type options struct {
	mode        os.FileMode
	lockTimeout time.Duration
}

// Option configures Write.
type Option func(*options)

// WithMode sets the permission of the written file. Zero selects DefaultMode.
func WithMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.mode = mode
		}
	}
}

// WithLockTimeout sets how long Write waits for the lock. Zero selects
// DefaultLockTimeout, a negative value waits until ctx is done.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		if d != 0 {
			o.lockTimeout = d
		}
	}
}

// Write atomically replaces the content of path with data.
func Write(ctx context.Context, path string, data []byte, opts ...Option) error {
	o := options{
		mode:        DefaultMode,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.lockTimeout)
		defer cancel()
	}

	lock := flock.New(path + lockSuffix)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return &WriteError{Op: "lock", Path: path, Err: err}
	}
	if !locked {
		return &WriteError{Op: "lock", Path: path, Err: errNotLocked}
	}
	defer lock.Unlock()

	return writeAtomic(path, data, o.mode)
}

func writeAtomic(path string, data []byte, mode os.FileMode) (err error) {
	// The temporary name must not end in .prom, or the collector could pick
	// it up.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return &WriteError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Chmod(mode); err != nil {
		return &WriteError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
