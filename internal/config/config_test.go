package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "out", cfg.Paths.OutputDir)
	assert.Equal(t, "USD", cfg.Defaults.Currency)
	assert.Equal(t, "en", cfg.Defaults.Locale)
	assert.Equal(t, 10, cfg.Detect.MaxHeaderScanRows)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finstmt.yml")
	content := []byte(`
paths:
  data_dir: /var/lib/finstmt
defaults:
  currency: ARS
  locale: es
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/finstmt", cfg.Paths.DataDir)
	assert.Equal(t, "ARS", cfg.Defaults.Currency)
	assert.Equal(t, "es", cfg.Defaults.Locale)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "out", cfg.Paths.OutputDir, "unset keys keep defaults")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("FINSTMT_DEFAULTS_CURRENCY", "EUR")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Defaults.Currency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"bad currency", "defaults:\n  currency: DOLLAR\n"},
		{"bad scan rows", "detect:\n  max_header_scan_rows: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "finstmt.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finstmt.yml")
	require.NoError(t, os.WriteFile(path, []byte("paths: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
