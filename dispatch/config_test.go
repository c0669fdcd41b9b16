package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opkernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, *cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, *cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
allow_override: true
warmup_concurrency: 16
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.AllowOverride)
	assert.False(t, cfg.WarmupOnRegister)
	assert.Equal(t, 16, cfg.WarmupConcurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "warmup_concurrency: 16\nlog_format: json\n")

	t.Setenv("OPKERNEL_WARMUP_CONCURRENCY", "2")
	t.Setenv("OPKERNEL_WARMUP_ON_REGISTER", "true")
	t.Setenv("OPKERNEL_LOG_FORMAT", "zap")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.WarmupConcurrency)
	assert.True(t, cfg.WarmupOnRegister)
	assert.Equal(t, "zap", cfg.LogFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{name: "malformed yaml", content: "allow_override: [", want: "failed to parse config"},
		{name: "negative concurrency", content: "warmup_concurrency: -1", want: "warmup_concurrency"},
		{name: "unknown level", content: "log_level: loud", want: "invalid log_level"},
		{name: "unknown format", content: "log_format: xml", want: "invalid log_format"},
		{name: "bad env value", content: "", env: map[string]string{"OPKERNEL_ALLOW_OVERRIDE": "maybe"}, want: "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
