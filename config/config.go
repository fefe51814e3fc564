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

// Package config loads the reporter configuration file. Parsing is strict:
// unknown fields are an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"go.yaml.in/yaml/v2"
)

// DefaultConfig is the configuration used for fields absent from the file.
var DefaultConfig = Config{
	DefaultEnvironment: "unknown",
	LockTimeout:        model.Duration(5 * time.Second),
	FileMode:           0o644,
}

var _ DirectorySetter = (*Config)(nil)

// Config is the reporter configuration.
type Config struct {
	// Textfile is the file read by the textfile collector. Empty disables
	// writing.
	Textfile string `yaml:"textfile,omitempty"`
	// DefaultEnvironment labels runs whose snapshot carries no environment.
	DefaultEnvironment string         `yaml:"default_environment,omitempty"`
	LockTimeout        model.Duration `yaml:"lock_timeout,omitempty"`
	FileMode           FileMode       `yaml:"file_mode,omitempty"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*c = DefaultConfig
	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}
	return c.Validate()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Textfile != "" && strings.HasSuffix(c.Textfile, string(filepath.Separator)) {
		return fmt.Errorf("textfile %q must name a file, not a directory", c.Textfile)
	}
	if c.DefaultEnvironment == "" {
		return errors.New("default_environment must not be empty")
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative, got %s", c.LockTimeout)
	}
	if c.FileMode == 0 {
		return errors.New("file_mode must not be zero")
	}
	return nil
}

// SetDirectory joins any relative file paths with dir.
func (c *Config) SetDirectory(dir string) {
	c.Textfile = JoinDir(dir, c.Textfile)
}

// Load parses the YAML input s into a Config.
func Load(s string) (*Config, error) {
	cfg := &Config{}
	*cfg = DefaultConfig
	if err := yaml.UnmarshalStrict([]byte(s), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses the given YAML file into a Config. Relative paths in the
// file are resolved against the directory of the file.
func LoadFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing YAML file %s: %w", filename, err)
	}
	cfg.SetDirectory(filepath.Dir(filename))
	return cfg, nil
}

// FileMode is a permission mode written in octal, such as "0644".
type FileMode os.FileMode

// UnmarshalYAML implements the yaml.Unmarshaler interface. Unquoted YAML 1.1
// octal literals (0644) arrive as integers and are accepted as well.
func (m *FileMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case int:
		if v < 0 || v > 0o7777 {
			return fmt.Errorf("file_mode %#o out of range", v)
		}
		*m = FileMode(v)
	case string:
		u, err := strconv.ParseUint(v, 8, 32)
		if err != nil {
			return fmt.Errorf("file_mode %q is not an octal number", v)
		}
		if u > 0o7777 {
			return fmt.Errorf("file_mode %q out of range", v)
		}
		*m = FileMode(u)
	default:
		return fmt.Errorf("file_mode: can't convert %T", v)
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (m FileMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m FileMode) String() string {
	return fmt.Sprintf("%#04o", uint32(m))
}

// DirectorySetter is a config type that contains file paths that may
// be relative to the file containing the config.
type DirectorySetter interface {
	// SetDirectory joins any relative file paths with dir.
	// Any paths that are empty or absolute remain unchanged.
	SetDirectory(dir string)
}

// JoinDir joins dir and path if path is relative.
// If path is empty or absolute, it is returned unchanged.
func JoinDir(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
