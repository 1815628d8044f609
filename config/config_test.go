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

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 400*time.Millisecond, cfg.Fade())
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://game:5000","history_cap":5,"fade_ms":100}`), 0o600))
	t.Setenv("STICKS_FADE_MS", "250")
	t.Setenv("STICKS_VIEW_ADDR", ":9090")
	t.Setenv("STICKS_HISTORY_CAP", "not-a-number")

	cfg := Load(path)
	assert.Equal(t, "http://game:5000", cfg.ServerURL)
	assert.Equal(t, 5, cfg.HistoryCap)
	assert.Equal(t, 250, cfg.FadeMS)
	assert.Equal(t, ":9090", cfg.ViewAddr)
	assert.Equal(t, "You", cfg.HumanName)
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.Level())
		})
	}
}
