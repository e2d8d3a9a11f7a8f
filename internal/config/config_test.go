package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/runcat-io/runcat/internal/errors"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "jsonl", cfg.Catalog.Encoding)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Empty(t, cfg.Catalog.Paths)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
catalog:
  name: beamline-5
  paths:
    - /data/runs/**/*.msgpack
  encoding: msgpack
logging:
  level: debug
watch:
  debounce: 2s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".runcat.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "beamline-5", cfg.Catalog.Name)
	assert.Equal(t, []string{"/data/runs/**/*.msgpack"}, cfg.Catalog.Paths)
	assert.Equal(t, "msgpack", cfg.Catalog.Encoding)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Watch.DebounceDuration())
	// Untouched fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Watch.PollIntervalDuration())
}

func TestLoadYmlFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".runcat.yml"),
		[]byte("catalog:\n  name: fallback\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Catalog.Name)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".runcat.yaml"),
		[]byte("catalog: [unclosed"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, rcerrors.New(rcerrors.ErrCodeConfigInvalid, "", nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"msgpack encoding", func(c *Config) { c.Catalog.Encoding = "msgpack" }, false},
		{"bad encoding", func(c *Config) { c.Catalog.Encoding = "xml" }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }, true},
		{"garbage debounce", func(c *Config) { c.Watch.Debounce = "fast" }, true},
		{"zero poll disables polling", func(c *Config) { c.Watch.PollInterval = "0" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
