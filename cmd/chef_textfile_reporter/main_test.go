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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const runSnapshot = `
node: web-1
elapsed_time: 2.5
end_time: 1700000000
all_resources_count: 42
updated_resources_count: 7
roles: [web]
run_list:
  - cookbook: nginx
    version: 1.2.3
`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
	return fn
}

func TestRunWritesTextfile(t *testing.T) {
	dir := t.TempDir()
	snap := writeTemp(t, dir, "run.yml", runSnapshot)
	cfg := writeTemp(t, dir, "reporter.yml", "textfile: chef-client.prom\nfile_mode: '0600'\n")

	var stderr bytes.Buffer
	code := run([]string{"--config.file", cfg, "--snapshot.file", snap, "--environment", "prod"}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := filepath.Join(dir, "chef-client.prom")
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(b), `chef_client_duration_ms{chef_environment="prod"} 2500`)

	fi, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestRunTextfileFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	snap := writeTemp(t, dir, "run.yml", runSnapshot)
	cfg := writeTemp(t, dir, "reporter.yml", "textfile: from-config.prom\n")

	var stderr bytes.Buffer
	code := run([]string{"--config.file", cfg, "--snapshot.file", snap, "--textfile.path="}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	_, err := os.Stat(filepath.Join(dir, "from-config.prom"))
	require.ErrorIs(t, err, os.ErrNotExist)

	flagged := filepath.Join(dir, "from-flag.prom")
	code = run([]string{"--config.file", cfg, "--snapshot.file", snap, "--textfile.path", flagged}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.FileExists(t, flagged)
}

func TestRunReportingProblemsExitZero(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chef-client.prom")

	var stderr bytes.Buffer
	code := run([]string{"--snapshot.file", filepath.Join(dir, "missing.yml"), "--textfile.path", out}, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "Error loading run snapshot")
	require.Contains(t, stderr.String(), "kind=Unknown")
	require.NotContains(t, stderr.String(), "kind=InvalidSnapshot")

	garbled := writeTemp(t, dir, "garbled.yml", "elapsed_time: [\n")
	stderr.Reset()
	code = run([]string{"--snapshot.file", garbled, "--textfile.path", out}, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "kind=InvalidSnapshot")

	bad := writeTemp(t, dir, "bad.yml", "elapsed_time: 1\n")
	stderr.Reset()
	code = run([]string{"--snapshot.file", bad, "--textfile.path", out}, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "InvalidSnapshot")
	require.NoFileExists(t, out)
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	require.Equal(t, 1, run([]string{"--no-such-flag"}, &stderr))

	cfg := writeTemp(t, dir, "reporter.yml", "unknown_key: 1\n")
	require.Equal(t, 1, run([]string{"--config.file", cfg}, &stderr))
	require.Equal(t, 1, run([]string{"--config.file", filepath.Join(dir, "missing.yml")}, &stderr))
}
