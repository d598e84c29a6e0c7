package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	for _, key := range []string{"WEATHER_API_KEY", "AUTH_TOKEN", "WEATHER_BASE_URL", "MAX_WORKERS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Parse([]byte(`
environment:
  base_url: https://api.openweathermap.org/data/2.5/
  auth:
    token: secret
`))
	require.NoError(t, err)

	assert.Equal(t, "appid", cfg.Environment.Auth.Param)
	assert.Equal(t, 5, cfg.Test.MaxWorkers)
	assert.Equal(t, 30, cfg.Test.Timeout)
	assert.Equal(t, "testdata", cfg.Test.SuiteDir)
	assert.Equal(t, []string{"json"}, cfg.Reporting.Format)
	assert.Equal(t, "reports", cfg.Reporting.OutputDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "all", cfg.Logging.RequestDetail)

	d, err := cfg.Test.MaxLatencyDuration()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "from-env")
	t.Setenv("WEATHER_BASE_URL", "http://localhost:8089")
	t.Setenv("MAX_WORKERS", "2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse([]byte(`
environment:
  base_url: https://api.openweathermap.org/data/2.5/
  auth:
    token: from-file
test:
  max_latency: 500ms
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Environment.Auth.Token)
	assert.Equal(t, "http://localhost:8089", cfg.Environment.BaseURL)
	assert.Equal(t, 2, cfg.Test.MaxWorkers)
	assert.Equal(t, "debug", cfg.Logging.Level)

	d, err := cfg.Test.MaxLatencyDuration()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)
}

func TestParse_Errors(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("WEATHER_BASE_URL", "")

	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "environment: ["},
		{name: "missing base url", yaml: "environment:\n  auth:\n    token: x\n"},
		{name: "missing token", yaml: "environment:\n  base_url: http://x\n"},
		{name: "bad latency", yaml: "environment:\n  base_url: http://x\n  auth:\n    token: x\ntest:\n  max_latency: soon\n"},
		{name: "negative latency", yaml: "environment:\n  base_url: http://x\n  auth:\n    token: x\ntest:\n  max_latency: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("WEATHER_BASE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment:\n  base_url: http://x\n  auth:\n    token: x\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://x", cfg.Environment.BaseURL)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
