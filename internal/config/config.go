package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds the defaults for command line flags. Each field can be set
// through its environment variable, typically from a .env file.
type Config struct {
	DefaultImage string // LINEAR_FILTER_IMAGE
	Border       string // LINEAR_FILTER_BORDER
	LogLevel     string // LINEAR_FILTER_LOG_LEVEL
	Port         int    // LINEAR_FILTER_PORT
	Workers      int    // LINEAR_FILTER_WORKERS
}

func Default() Config {
	return Config{
		DefaultImage: "input.png",
		Border:       "reflect101",
		LogLevel:     "info",
		Port:         8080,
		Workers:      runtime.NumCPU(),
	}
}

// FromEnv overlays environment variables on the defaults.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("LINEAR_FILTER_IMAGE"); v != "" {
		cfg.DefaultImage = v
	}
	if v := os.Getenv("LINEAR_FILTER_BORDER"); v != "" {
		cfg.Border = v
	}
	if v := os.Getenv("LINEAR_FILTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.Port, err = intFromEnv("LINEAR_FILTER_PORT", cfg.Port); err != nil {
		return cfg, err
	}
	if cfg.Workers, err = intFromEnv("LINEAR_FILTER_WORKERS", cfg.Workers); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("failed to convert %s=%q to integer: %w", key, v, err)
	}
	return n, nil
}
