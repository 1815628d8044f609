package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the client settings.
type Config struct {
	// ServerURL is the base url of the game server.
	ServerURL string `json:"server_url"`
	// HumanName is the loser name the server uses for the human player.
	HumanName        string `json:"human_name"`
	HistoryCap       int    `json:"history_cap"`
	FadeMS           int    `json:"fade_ms"`
	RequestTimeoutMS int    `json:"request_timeout_ms"` // 0 disables the timeout

	// ViewAddr is the listen address of the live view; empty disables it.
	ViewAddr      string `json:"view_addr"`
	AllowedOrigin string `json:"allowed_origin"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

func Defaults() *Config {
	return &Config{
		ServerURL:        "http://localhost:5000",
		HumanName:        "You",
		HistoryCap:       10,
		FadeMS:           400,
		RequestTimeoutMS: 0,
		ViewAddr:         "",
		AllowedOrigin:    "http://localhost:8081",
		LogLevel:         "info",
		LogFile:          "sticks.log",
	}
}

// Load reads the optional config file at path, then applies environment
// variable overrides. Fields set in neither keep their defaults.
func Load(path string) *Config {
	cfg := Defaults()

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config file", slog.String("path", path), slog.Any("error", err))
		}
	}

	overrideString(&cfg.ServerURL, "STICKS_SERVER_URL")
	overrideString(&cfg.HumanName, "STICKS_HUMAN_NAME")
	overrideInt(&cfg.HistoryCap, "STICKS_HISTORY_CAP")
	overrideInt(&cfg.FadeMS, "STICKS_FADE_MS")
	overrideInt(&cfg.RequestTimeoutMS, "STICKS_REQUEST_TIMEOUT_MS")
	overrideString(&cfg.ViewAddr, "STICKS_VIEW_ADDR")
	overrideString(&cfg.AllowedOrigin, "STICKS_ALLOWED_ORIGIN")
	overrideString(&cfg.LogLevel, "STICKS_LOG_LEVEL")
	overrideString(&cfg.LogFile, "STICKS_LOG_FILE")

	return cfg
}

func (c *Config) Fade() time.Duration {
	return time.Duration(c.FadeMS) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid config value", slog.String("key", envKey), slog.String("value", val))
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
