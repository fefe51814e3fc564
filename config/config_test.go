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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v2"
)

func TestLoadDefaults(t *testing.T) {
	for _, in := range []string{"", "{}", "textfile: ''\n"} {
		cfg, err := Load(in)
		require.NoError(t, err)
		require.Equal(t, DefaultConfig, *cfg)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(`
textfile: /usr/lib/node_exporter/collector/chef-client.prom
default_environment: _default
lock_timeout: 250ms
file_mode: "0640"
`)
	require.NoError(t, err)
	require.Equal(t, Config{
		Textfile:           "/usr/lib/node_exporter/collector/chef-client.prom",
		DefaultEnvironment: "_default",
		LockTimeout:        model.Duration(250 * time.Millisecond),
		FileMode:           0o640,
	}, *cfg)
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		desc string
		in   string
	}{
		{desc: "unknown field", in: "textfiles: /tmp/x.prom\n"},
		{desc: "empty environment", in: "default_environment: ''\n"},
		{desc: "bad duration", in: "lock_timeout: soon\n"},
		{desc: "zero mode", in: "file_mode: '0'\n"},
		{desc: "mode not octal", in: "file_mode: rw-r--r--\n"},
		{desc: "mode out of range", in: "file_mode: '17777'\n"},
		{desc: "directory", in: "textfile: /var/lib/node_exporter/\n"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Load(tc.in)
			require.Error(t, err)
		})
	}
}

func TestFileModeYAML(t *testing.T) {
	// YAML 1.1 reads an unquoted 0644 as octal.
	cfg, err := Load("file_mode: 0644\n")
	require.NoError(t, err)
	require.Equal(t, FileMode(0o644), cfg.FileMode)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.Contains(t, string(out), `file_mode: "0644"`)
}

func TestLoadFileRelativeTextfile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "reporter.yml")
	require.NoError(t, os.WriteFile(fn, []byte("textfile: collector/chef-client.prom\n"), 0o644))

	cfg, err := LoadFile(fn)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "collector", "chef-client.prom"), cfg.Textfile)

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestJoinDir(t *testing.T) {
	require.Equal(t, "", JoinDir("/etc", ""))
	require.Equal(t, "/abs/file", JoinDir("/etc", "/abs/file"))
	require.Equal(t, "/etc/rel/file", JoinDir("/etc", "rel/file"))
}
