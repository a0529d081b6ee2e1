package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yoyboard/internal/parser"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.False(t, info.FileFound)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1.8, cfg.Thresholds().SpikeThreshold)
}

func TestLoadConfigFromToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9000

[business]
baseline_year = 2023
comparison_year = 2024
spike_threshold = 2.2

[schema]
mode = "pattern"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Data.DataDir)

	schema := cfg.ParserSchema()
	assert.Equal(t, parser.ModePattern, schema.Mode)
	assert.Equal(t, 2023, schema.BaselineYear)
	assert.Equal(t, "Net Sale Amount - 2024", schema.ColumnName(parser.RoleSalesComparison))
	assert.Equal(t, 2.2, cfg.Thresholds().SpikeThreshold)
}

func TestEnvOverridesToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[business]\nspike_threshold = 2.2\n"), 0644))
	t.Setenv("YOYBOARD_BUSINESS_SPIKE_THRESHOLD", "3.5")
	t.Setenv("YOYBOARD_SERVER_PORT", "8088")
	t.Setenv("YOYBOARD_LOG_LEVEL", "DEBUG")

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Business.SpikeThreshold)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[schema]\nmode = \"fuzzy\"\n"), 0644))

	_, _, err := LoadConfigWithInfo(path)
	assert.ErrorContains(t, err, "invalid schema.mode")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Business.SpikeThreshold = 2.0
	cfg.Business.Period = "Full December"

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = t.TempDir()

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	for _, sub := range []string{"uploads", "exports"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
