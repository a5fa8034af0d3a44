package config

import "fmt"

// invalid or incomplete configuration: bad file, bad value or missing
// credentials
type ConfigurationError struct {
	Key    string // config key, flag or file the problem relates to
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func configError(key, format string, args ...any) error {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
