package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemoConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	content := `
broker = "edge"
messages = 5
timing = true

[fail_on]
close = [" Producer ", "session"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadDemoConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "edge", cfg.Broker)
	assert.Equal(t, "orders", cfg.Queue)
	assert.Equal(t, 5, cfg.Messages)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Timing)
	assert.Equal(t, []string{"producer", "session"}, cfg.FailOn.Close)
	assert.Empty(t, cfg.FailOn.Create)
}

func TestLoadDemoConfigEmptyPath(t *testing.T) {
	cfg, err := LoadDemoConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDemoConfigMissingFile(t *testing.T) {
	_, err := LoadDemoConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config load failed")
}

func TestParseDemoConfig(t *testing.T) {
	t.Run("blank names fall back to defaults", func(t *testing.T) {
		cfg, err := ParseDemoConfig(`broker = "  "` + "\n" + `queue = ""`)
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Broker)
		assert.Equal(t, "orders", cfg.Queue)
	})

	t.Run("invalid toml", func(t *testing.T) {
		_, err := ParseDemoConfig(`broker = `)
		assert.ErrorContains(t, err, "config parse failed")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseDemoConfig("[fail_on]\ncreate = [\"topic\"]")
		assert.ErrorContains(t, err, `unknown handle kind "topic"`)
	})

	t.Run("negative messages", func(t *testing.T) {
		_, err := ParseDemoConfig("messages = -1")
		assert.ErrorContains(t, err, "messages must not be negative")
	})
}
