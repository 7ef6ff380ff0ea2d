package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/dataconverter/internal/config"
	"github.com/zeusync/dataconverter/internal/datafix"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	v, err := cfg.TargetVersion()
	require.NoError(t, err)
	assert.Equal(t, datafix.Current, v)
	assert.False(t, cfg.Options().DisableCommandConverter)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataconverter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
converter:
  target: "1.20.5"
migrator:
  workers: 3
server:
  addr: "127.0.0.1:9000"
  write_timeout: 2s
`), 0o600))

	t.Setenv("DATACONVERTER_CONVERTER_DISABLE_COMMAND_CONVERTER", "true")
	t.Setenv("DATACONVERTER_MIGRATOR_WORKERS", "5")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Converter.DisableCommandConverter)
	assert.True(t, cfg.Options().DisableCommandConverter)
	assert.Equal(t, 5, cfg.Migrator.Workers)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.EqualValues(t, 8<<20, cfg.Server.MaxMessageBytes)

	v, err := cfg.TargetVersion()
	require.NoError(t, err)
	assert.Equal(t, datafix.V1_20_5, v)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, config.ErrConfigFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"target", func(c *config.Config) { c.Converter.Target = "tomorrow" }},
		{"workers", func(c *config.Config) { c.Migrator.Workers = -1 }},
		{"addr", func(c *config.Config) { c.Server.Addr = "" }},
		{"message size", func(c *config.Config) { c.Server.MaxMessageBytes = 0 }},
		{"write timeout", func(c *config.Config) { c.Server.WriteTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
	assert.NoError(t, config.Default().Validate())
}

func TestYAMLDump(t *testing.T) {
	out, err := config.Default().YAML()
	require.NoError(t, err)

	var back map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "info", back["log"]["level"])
	assert.Equal(t, ":8088", back["server"]["addr"])
	assert.Equal(t, "10s", back["server"]["write_timeout"])
}
