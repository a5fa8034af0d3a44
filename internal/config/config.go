package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

type Translation struct {
	Provider         string `toml:"provider"`
	Model            string `toml:"model"`
	InputLanguage    string `toml:"input_language"`
	TargetLanguage   string `toml:"target_language"`
	Prompt           string `toml:"prompt"`
	TokenBudget      int    `toml:"token_budget"`
	Concurrency      int    `toml:"concurrency"`
	MaxAttempts      int    `toml:"max_attempts"`
	RetryBaseDelayMs int    `toml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int    `toml:"retry_max_delay_ms"`
}

// API keys per provider. Empty values fall back to the provider's env var.
type Credentials struct {
	GeminiAPIKey    string `toml:"gemini_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"` // Default: false
	Path    string `toml:"path"`    // Default: ~/.cache/subtrans/translations.db
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Translation Translation `toml:"translation"`
	Credentials Credentials `toml:"credentials"`
	Cache       Cache       `toml:"cache"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the user-level configuration location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads the configuration from path, or from the default locations when
// path is empty, applies defaults and validates the result. It returns the
// resolved path and whether a file was found there. A missing file is not an
// error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, &ConfigurationError{
				Key:    resolvedPath,
				Reason: fmt.Sprintf("parse config: %v", err),
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := ExpandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ExpandPath turns a config or cache path into an absolute path. A leading
// "~" or "~/" refers to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}

// CreateSample writes the sample configuration file to path. An existing file
// is never overwritten.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(sampleConfig); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// APIKey returns the credential for the configured provider, falling back to
// the provider's environment variable.
func (c *Config) APIKey() string {
	var key string
	switch c.Translation.Provider {
	case "gemini":
		key = c.Credentials.GeminiAPIKey
	case "openai":
		key = c.Credentials.OpenAIAPIKey
	case "anthropic":
		key = c.Credentials.AnthropicAPIKey
	}
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	envName := APIKeyEnv(c.Translation.Provider)
	if envName == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envName))
}

// APIKeyEnv names the environment variable consulted for the provider's key.
func APIKeyEnv(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func (t Translation) RetryBaseDelay() time.Duration {
	return time.Duration(t.RetryBaseDelayMs) * time.Millisecond
}

func (t Translation) RetryMaxDelay() time.Duration {
	return time.Duration(t.RetryMaxDelayMs) * time.Millisecond
}
