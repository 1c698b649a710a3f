package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabproc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 1280
log_level: debug
excel:
  sheet: Data
csv:
  separator: tab
task:
  timeout_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float32(1280), cfg.Window.Width)
	assert.Equal(t, Default().Window.Height, cfg.Window.Height)
	assert.Equal(t, Default().Chart, cfg.Chart)
	assert.Equal(t, "Data", cfg.Excel.Sheet)
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout())

	sep, err := cfg.Separator()
	require.NoError(t, err)
	assert.Equal(t, '\t', sep)

	level, err := ParseLevel(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "window: [1, 2"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"window":    func(c *Config) { c.Window.Width = 0 },
		"chart":     func(c *Config) { c.Chart.Height = -1 },
		"log level": func(c *Config) { c.LogLevel = "loud" },
		"separator": func(c *Config) { c.CSV.Separator = ";;" },
		"quote":     func(c *Config) { c.CSV.Separator = `"` },
		"timeout":   func(c *Config) { c.Task.TimeoutSeconds = -5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSeparator(t *testing.T) {
	tests := map[string]rune{
		"":          0,
		";":         ';',
		"comma":     ',',
		"Semicolon": ';',
		"pipe":      '|',
		`\t`:        '\t',
	}
	for in, want := range tests {
		cfg := Default()
		cfg.CSV.Separator = in
		got, err := cfg.Separator()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
