package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"deedles.dev/paber/internal/config"
	"deedles.dev/paber/internal/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
color: "#336699"
monitors: [DP-1, "1"]
interval: 15m
scale: fill
redraw_on_reconfigure: false
generator: local
local:
  command: /opt/sd/bin/stable-diffusion
`)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "#336699", cfg.Color)
	assert.Equal(t, []string{"DP-1", "1"}, cfg.Monitors)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, "fill", cfg.Scale)
	assert.False(t, cfg.RedrawOnReconfigure)
	assert.Equal(t, config.GeneratorLocal, cfg.Generator)
	assert.Equal(t, "/opt/sd/bin/stable-diffusion", cfg.Local.Command)
	assert.Equal(t, 19, cfg.Local.Nice, "unset fields keep their defaults")
	assert.Equal(t, "paber", cfg.Namespace)
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Syntax", "color: [unterminated"},
		{"Interval", "interval: -5s"},
		{"Scale", "scale: tile"},
		{"Generator", "generator: dalle"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := config.LoadFile(writeConfig(t, test.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PABER_CONFIG", writeConfig(t, "interval: 2h\n"))
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("PABER_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Interval)
	assert.Equal(t, "secret", cfg.Env.GeminiAPIKey)
	assert.Equal(t, "debug", cfg.Env.LogLevel)
}

func TestNewGenerator(t *testing.T) {
	cfg := config.Default()
	cfg.Env.GeminiAPIKey = "secret"
	cfg.Env.GeminiModel = "model"

	remote, ok := cfg.NewGenerator(false).(generate.Remote)
	require.True(t, ok)
	assert.Equal(t, "secret", remote.APIKey)
	assert.Equal(t, "model", remote.Model)

	local, ok := cfg.NewGenerator(true).(generate.Local)
	require.True(t, ok)
	assert.Equal(t, generate.DefaultCommand, local.Command)
	assert.Equal(t, 19, local.Nice)
}
