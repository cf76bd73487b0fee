package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SourceDir      string // CSV sources, e.g. content-src
	OutputDir      string // emitted JSON the game loads, e.g. src/content
	LocationsFile  string
	Environment    string
	LogLevel       slog.Level
	RedisURL       string
	Port           string
	WatchDebounce  time.Duration
	LanguageScreen bool
}

// Load reads configuration from the environment, falling back to defaults
// that let every command run with no arguments from the repository root.
func Load() (*Config, error) {
	debounce, err := time.ParseDuration(getEnv("WATCH_DEBOUNCE", "250ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid WATCH_DEBOUNCE: %w", err)
	}
	screen, err := strconv.ParseBool(getEnv("LANGUAGE_SCREEN", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LANGUAGE_SCREEN: %w", err)
	}

	cfg := &Config{
		SourceDir:      getEnv("CONTENT_SRC_DIR", "content-src"),
		OutputDir:      getEnv("CONTENT_OUT_DIR", "src/content"),
		LocationsFile:  getEnv("LOCATIONS_FILE", "content-src/locations.yaml"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		WatchDebounce:  debounce,
		LanguageScreen: screen,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make every command fail later on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SourceDir) == "" {
		errs = append(errs, errors.New("source directory is required"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if strings.TrimSpace(c.LocationsFile) == "" {
		errs = append(errs, errors.New("locations file is required"))
	}
	if c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("watch debounce must be positive, got %s", c.WatchDebounce))
	}
	return errors.Join(errs...)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
