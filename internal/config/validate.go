package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mgpai22/subtrans/internal/translate"
)

func (c *Config) normalize() error {
	c.normalizeTranslation()
	c.Credentials.GeminiAPIKey = strings.TrimSpace(c.Credentials.GeminiAPIKey)
	c.Credentials.OpenAIAPIKey = strings.TrimSpace(c.Credentials.OpenAIAPIKey)
	c.Credentials.AnthropicAPIKey = strings.TrimSpace(c.Credentials.AnthropicAPIKey)
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTranslation() {
	t := &c.Translation
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultProvider
	}
	t.Model = strings.TrimSpace(t.Model)
	t.InputLanguage = strings.TrimSpace(t.InputLanguage)
	t.TargetLanguage = strings.TrimSpace(t.TargetLanguage)
	t.Prompt = strings.TrimSpace(t.Prompt)
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath()
	}
	path, err := ExpandPath(c.Cache.Path)
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = path
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

// Validate ensures the configuration values are usable. It does not require
// credentials or a target language; see ValidateForTranslation.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if !slices.Contains(translate.Providers(), translate.Provider(t.Provider)) {
		return configError(
			"translation.provider",
			"unsupported provider %q (use gemini, openai or anthropic)",
			t.Provider,
		)
	}
	if t.TokenBudget <= 0 {
		return configError("translation.token_budget", "must be positive, got %d", t.TokenBudget)
	}
	if t.Concurrency <= 0 {
		return configError("translation.concurrency", "must be at least 1, got %d", t.Concurrency)
	}
	if t.MaxAttempts <= 0 {
		return configError("translation.max_attempts", "must be at least 1, got %d", t.MaxAttempts)
	}
	if t.RetryBaseDelayMs < 0 {
		return configError("translation.retry_base_delay_ms", "must not be negative")
	}
	if t.RetryMaxDelayMs < t.RetryBaseDelayMs {
		return configError(
			"translation.retry_max_delay_ms",
			"must be at least retry_base_delay_ms (%d)",
			t.RetryBaseDelayMs,
		)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return configError("logging.level", "unsupported level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return configError("logging.format", "unsupported format %q (use console or json)", c.Logging.Format)
	}
	return nil
}

// ValidateForTranslation checks what a translation run needs on top of
// Validate: a target language and an API key for the provider.
func (c *Config) ValidateForTranslation() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Translation.TargetLanguage == "" {
		return configError("translation.target_language", "target language is required (use --target or set it in the config file)")
	}
	if c.APIKey() == "" {
		return configError(
			"credentials."+c.Translation.Provider+"_api_key",
			"API key for %s is required. Set %s, pass --api-key or edit the config file (create with 'subtrans config init')",
			c.Translation.Provider,
			APIKeyEnv(c.Translation.Provider),
		)
	}
	return nil
}
