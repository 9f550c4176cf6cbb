package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	PublicBaseURL   string
	BackendBaseURL  string
	BackendTimeout  time.Duration
	PreloadTimeout  time.Duration
	DebounceWindow  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		PublicBaseURL:   envOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		BackendBaseURL:  envOrDefault("BACKEND_BASE_URL", "http://localhost:9000"),
		BackendTimeout:  envDuration("BACKEND_TIMEOUT_SECONDS", 15*time.Second),
		PreloadTimeout:  envDuration("PRELOAD_TIMEOUT_SECONDS", 10*time.Second),
		DebounceWindow:  envMillis("SEARCH_DEBOUNCE_MS", 350*time.Millisecond),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		AllowedOrigins:  []string{envOrDefault("CORS_ORIGIN", "*")},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		ms, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}
