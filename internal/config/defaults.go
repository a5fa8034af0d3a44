package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath = "~/.config/subtrans/config.toml"
	projectConfigName = "subtrans.toml"

	defaultProvider         = "gemini"
	defaultTokenBudget      = 700
	defaultConcurrency      = 1
	defaultMaxAttempts      = 3
	defaultRetryBaseDelayMs = 1000
	defaultRetryMaxDelayMs  = 10000
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Translation: Translation{
			Provider:         defaultProvider,
			TokenBudget:      defaultTokenBudget,
			Concurrency:      defaultConcurrency,
			MaxAttempts:      defaultMaxAttempts,
			RetryBaseDelayMs: defaultRetryBaseDelayMs,
			RetryMaxDelayMs:  defaultRetryMaxDelayMs,
		},
		Cache: Cache{
			Enabled: false,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func defaultCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "subtrans", "translations.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/subtrans/translations.db"
	}
	return filepath.Join(home, ".cache", "subtrans", "translations.db")
}
