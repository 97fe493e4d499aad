package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.scb.se/OV0104/v2beta/api/v2", cfg.SCB.BaseURL)
	assert.Equal(t, "sv", cfg.SCB.Language)
	assert.InDelta(t, 10.0, cfg.SCB.RatePerSec, 0.001)
	assert.Equal(t, 30, cfg.SCB.TimeoutSecs)
	assert.Equal(t, 3, cfg.SCB.MaxRetries)
	assert.Equal(t, "deso_statistics", cfg.Analysis.Method)
	assert.Equal(t, "sv", cfg.Analysis.Language)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "deso.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
scb:
  language: en
analysis:
  years: [2022, 2023]
store:
  driver: postgres
  database_url: postgres://localhost/deso
log:
  level: debug
  format: console
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.SCB.Language)
	assert.Equal(t, []int{2022, 2023}, cfg.Analysis.Years)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "https://api.scb.se/OV0104/v2beta/api/v2", cfg.SCB.BaseURL)
	assert.Equal(t, "deso_statistics", cfg.Analysis.Method)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DESO_STORE_DRIVER", "postgres")
	t.Setenv("DESO_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SCB:   SCBConfig{BaseURL: "https://api.scb.se", RatePerSec: 10},
			Store: StoreConfig{Driver: "sqlite", DatabaseURL: "deso.db"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := valid()
		cfg.SCB.BaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scb.base_url is required")
	})

	t.Run("bad rate", func(t *testing.T) {
		cfg := valid()
		cfg.SCB.RatePerSec = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_per_sec")
	})

	t.Run("bad driver", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Driver = "mysql"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.driver")
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := valid()
		cfg.Store.DatabaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database_url")
	})
}

func TestInitLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
		assert.NotNil(t, zap.L())
	})

	t.Run("console format", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("bad level", func(t *testing.T) {
		err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
		require.Error(t, err)
	})
}
