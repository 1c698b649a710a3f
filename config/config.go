// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the application settings read at start-up.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

type Size struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

type Excel struct {
	// Sheet names the worksheet to open; empty opens the first one.
	Sheet string `yaml:"sheet"`
}

type CSV struct {
	// Separator is a single character; empty detects it from the header line.
	Separator string `yaml:"separator"`
}

type Task struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Config is the full application configuration.
type Config struct {
	Window   Size   `yaml:"window"`
	Chart    Size   `yaml:"chart"`
	LogLevel string `yaml:"log_level"`
	Excel    Excel  `yaml:"excel"`
	CSV      CSV    `yaml:"csv"`
	Task     Task   `yaml:"task"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Window:   Size{Width: 1000, Height: 700},
		Chart:    Size{Width: 800, Height: 500},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %vx%v", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("%w: chart size %vx%v", ErrInvalid, c.Chart.Width, c.Chart.Height)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Separator(); err != nil {
		return err
	}
	if c.Task.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: task.timeout_seconds %d", ErrInvalid, c.Task.TimeoutSeconds)
	}
	return nil
}

// Separator returns the configured CSV separator, or zero for auto-detection.
// The names "tab", "comma", "semicolon" and "pipe" are accepted as well.
func (c Config) Separator() (rune, error) {
	s := c.CSV.Separator
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: csv.separator %q must be a single character", ErrInvalid, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: csv.separator %q", ErrInvalid, s)
	}
	return r, nil
}

// TaskTimeout is the limit for one background action; zero means none.
func (c Config) TaskTimeout() time.Duration {
	return time.Duration(c.Task.TimeoutSeconds) * time.Second
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return level, nil
}
