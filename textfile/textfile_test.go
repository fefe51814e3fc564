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

package textfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chef-client.prom")

	t.Run("CreatesFile", func(t *testing.T) {
		require.NoError(t, Write(context.Background(), path, []byte("a 1\n")))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "a 1\n", string(got))

		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, DefaultMode, fi.Mode().Perm())
	})

	t.Run("ReplacesContent", func(t *testing.T) {
		require.NoError(t, Write(context.Background(), path, []byte("b 2\n"), WithMode(0o600)))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "b 2\n", string(got))

		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	})

	t.Run("NoTemporaryFilesLeft", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"chef-client.prom", "chef-client.prom.lock"}, names)
	})
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("ParentIsAFile", func(t *testing.T) {
		parent := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(parent, nil, 0o644))

		err := Write(context.Background(), filepath.Join(parent, "chef-client.prom"), []byte("a 1\n"))
		var werr *WriteError
		require.ErrorAs(t, err, &werr)
		require.Equal(t, filepath.Join(parent, "chef-client.prom"), werr.Path)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		err := Write(context.Background(), filepath.Join(dir, "missing", "chef-client.prom"), []byte("a 1\n"))
		var werr *WriteError
		require.ErrorAs(t, err, &werr)
	})

	t.Run("LockTimeout", func(t *testing.T) {
		path := filepath.Join(dir, "locked.prom")
		held := flock.New(path + lockSuffix)
		locked, err := held.TryLock()
		require.NoError(t, err)
		require.True(t, locked)
		defer held.Unlock()

		err = Write(context.Background(), path, []byte("a 1\n"), WithLockTimeout(100*time.Millisecond))
		var werr *WriteError
		require.ErrorAs(t, err, &werr)
		require.Equal(t, "lock", werr.Op)
		require.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errNotLocked))

		_, err = os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
