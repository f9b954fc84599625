// Package config reads process settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/copclicker/internal/engine"
)

// Config holds the game server settings.
type Config struct {
	DBPath        string
	Port          int
	AdminKey      string // Empty disables reset/import.
	AutosaveTicks int
	LogLevel      string
	LogFormat     string  // text or json
	RateLimit     float64 // gameplay requests per second per client
	RateBurst     int
}

// AutoplayConfig holds the auto-player settings.
type AutoplayConfig struct {
	APIURL          string
	Interval        time.Duration
	MinPrestigeGain int64
	ClicksPerCycle  int
	LogLevel        string
	LogFormat       string
}

// Load reads the server configuration.
func Load() (*Config, error) {
	// A missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:    envOrDefault("COPCLICKER_DB_PATH", "data/copclicker.db"),
		AdminKey:  os.Getenv("COPCLICKER_ADMIN_KEY"),
		LogLevel:  envOrDefault("COPCLICKER_LOG_LEVEL", "info"),
		LogFormat: envOrDefault("COPCLICKER_LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Port, err = envInt("COPCLICKER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("COPCLICKER_PORT out of range: %d", cfg.Port)
	}
	if cfg.AutosaveTicks, err = envInt("COPCLICKER_AUTOSAVE_TICKS", engine.DefaultAutosaveEvery); err != nil {
		return nil, err
	}
	if cfg.AutosaveTicks < 1 {
		return nil, fmt.Errorf("COPCLICKER_AUTOSAVE_TICKS must be positive, got %d", cfg.AutosaveTicks)
	}
	if cfg.RateLimit, err = envFloat("COPCLICKER_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("COPCLICKER_RATE_LIMIT must be positive, got %g", cfg.RateLimit)
	}
	if cfg.RateBurst, err = envInt("COPCLICKER_RATE_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.RateBurst < 1 {
		return nil, fmt.Errorf("COPCLICKER_RATE_BURST must be positive, got %d", cfg.RateBurst)
	}

	return cfg, nil
}

// LoadAutoplay reads the auto-player configuration. Malformed numbers fall
// back to defaults.
func LoadAutoplay() *AutoplayConfig {
	_ = godotenv.Load()

	interval := envIntOrDefault("AUTOPLAY_INTERVAL_SECONDS", 5)
	if interval < 1 {
		interval = 1
	}
	return &AutoplayConfig{
		APIURL:          envOrDefault("COPCLICKER_API_URL", "http://localhost:8080"),
		Interval:        time.Duration(interval) * time.Second,
		MinPrestigeGain: int64(envIntOrDefault("AUTOPLAY_MIN_PRESTIGE_GAIN", 1)),
		ClicksPerCycle:  envIntOrDefault("AUTOPLAY_CLICKS_PER_CYCLE", 10),
		LogLevel:        envOrDefault("COPCLICKER_LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("COPCLICKER_LOG_FORMAT", "text"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// envInt is envIntOrDefault that reports malformed values.
func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}
