package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// reloadableKeys defines the whitelist of configuration keys that can be hot-reloaded.
var reloadableKeys = map[string]bool{
	"logging.level":          true,
	"logging.format":         true,
	"render.max_text_length": true,
}

// staticKeys defines configuration keys that require application restart.
var staticKeys = map[string]string{
	"server":              "HTTP listener restart required",
	"storage.type":        "Storage backend initialization required",
	"storage.sqlite.path": "Database connection recreation required",
	"storage.mysql":       "Database connection pool recreation required",
	"slack":               "Slack client and signature verifier recreation required",
	"app":                 "Project information is captured at startup",
	"delivery":            "Delivery retry policy is captured at startup",
}

// IsReloadable returns true if the given config key can be hot-reloaded.
func IsReloadable(key string) bool {
	return reloadableKeys[key]
}

// getRestartReason returns the reason why a static config key requires restart.
func getRestartReason(key string) string {
	if reason, ok := staticKeys[key]; ok {
		return reason
	}
	return "unknown configuration requires restart"
}

// ValidateLogLevel checks if the log level is valid.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
	return nil
}

// ValidateLogFormat checks if the log format is valid.
func ValidateLogFormat(format string) error {
	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[strings.ToLower(format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
	return nil
}

// ValidateNonEmpty checks if a string is non-empty.
func ValidateNonEmpty(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateDuration checks if a duration is greater than zero.
func ValidateDuration(duration time.Duration, fieldName string) error {
	if duration <= 0 {
		return fmt.Errorf("%s must be greater than 0", fieldName)
	}
	return nil
}

// ValidatePort checks if a port number is valid.
func ValidatePort(port int, fieldName string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", fieldName, port)
	}
	return nil
}

// ValidateStorageType checks if the storage type is valid.
func ValidateStorageType(storageType string) error {
	validTypes := map[string]bool{
		"memory": true,
		"sqlite": true,
		"mysql":  true,
	}
	if !validTypes[storageType] {
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or mysql)", storageType)
	}
	return nil
}

// ValidateBaseURL checks that the public base URL is absolute.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("app.base_url must be an absolute URL, got %q", raw)
	}
	return nil
}

// Validate performs comprehensive validation on the configuration.
// Returns an error listing every failed check.
func (c *Config) Validate() error {
	var errors []string

	// Server validation
	if err := ValidatePort(c.Server.Port, "server.port"); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateDuration(c.Server.ReadTimeout, "server.read_timeout"); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateDuration(c.Server.WriteTimeout, "server.write_timeout"); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateDuration(c.Server.RequestTimeout, "server.request_timeout"); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateDuration(c.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		errors = append(errors, err.Error())
	}

	// Logical constraint: RequestTimeout should be less than WriteTimeout
	if c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errors = append(errors, "server.request_timeout must be less than server.write_timeout")
	}

	// Storage validation
	if err := ValidateStorageType(c.Storage.Type); err != nil {
		errors = append(errors, err.Error())
	}

	// SQLite-specific validation
	if c.Storage.Type == "sqlite" {
		if err := ValidateNonEmpty(c.Storage.SQLite.Path, "storage.sqlite.path"); err != nil {
			errors = append(errors, err.Error())
		}
	}

	// MySQL-specific validation; a DSN stands in for the primary instance fields
	if c.Storage.Type == "mysql" {
		if c.Storage.MySQL.DSN == "" {
			if err := ValidateNonEmpty(c.Storage.MySQL.Primary.Host, "storage.mysql.primary.host"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidatePort(c.Storage.MySQL.Primary.Port, "storage.mysql.primary.port"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidateNonEmpty(c.Storage.MySQL.Primary.Database, "storage.mysql.primary.database"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidateNonEmpty(c.Storage.MySQL.Primary.Username, "storage.mysql.primary.username"); err != nil {
				errors = append(errors, err.Error())
			}
		}

		// Replica validation (if enabled)
		if c.Storage.MySQL.Replica.Enabled {
			if err := ValidateNonEmpty(c.Storage.MySQL.Replica.Host, "storage.mysql.replica.host"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidatePort(c.Storage.MySQL.Replica.Port, "storage.mysql.replica.port"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidateNonEmpty(c.Storage.MySQL.Replica.Database, "storage.mysql.replica.database"); err != nil {
				errors = append(errors, err.Error())
			}
			if err := ValidateNonEmpty(c.Storage.MySQL.Replica.Username, "storage.mysql.replica.username"); err != nil {
				errors = append(errors, err.Error())
			}
		}

		// Connection pool validation
		if c.Storage.MySQL.Pool.MaxOpenConns < 1 {
			errors = append(errors, "storage.mysql.pool.max_open_conns must be at least 1")
		}
		if c.Storage.MySQL.Pool.MaxIdleConns < 0 {
			errors = append(errors, "storage.mysql.pool.max_idle_conns cannot be negative")
		}
		if c.Storage.MySQL.Pool.MaxIdleConns > c.Storage.MySQL.Pool.MaxOpenConns {
			errors = append(errors, "storage.mysql.pool.max_idle_conns cannot exceed max_open_conns")
		}
	}

	// Slack validation
	if c.Slack.SocketMode.Enabled {
		if err := ValidateNonEmpty(c.Slack.SocketMode.AppToken, "slack.socket_mode.app_token"); err != nil {
			errors = append(errors, err.Error())
		} else if !strings.HasPrefix(c.Slack.SocketMode.AppToken, "xapp-") {
			errors = append(errors, "slack.socket_mode.app_token must be an app-level token (xapp-...)")
		}
	} else {
		// HTTP Mode requires signing secret
		if err := ValidateNonEmpty(c.Slack.SigningSecret, "slack.signing_secret"); err != nil {
			errors = append(errors, err.Error())
		}
	}

	// App validation
	if err := ValidateBaseURL(c.App.BaseURL); err != nil {
		errors = append(errors, err.Error())
	}

	// Render validation
	if c.Render.MaxTextLength < 1 {
		errors = append(errors, "render.max_text_length must be at least 1")
	}

	// Delivery validation
	if err := ValidateDuration(c.Delivery.Timeout, "delivery.timeout"); err != nil {
		errors = append(errors, err.Error())
	}
	// The fallback reply has to fit in the same request
	if c.Delivery.Timeout >= c.Server.RequestTimeout {
		errors = append(errors, "delivery.timeout must be less than server.request_timeout")
	}
	if c.Delivery.MaxAttempts < 1 {
		errors = append(errors, "delivery.max_attempts must be at least 1")
	}
	if err := ValidateDuration(c.Delivery.InitialBackoff, "delivery.initial_backoff"); err != nil {
		errors = append(errors, err.Error())
	}
	if c.Delivery.MaxBackoff < c.Delivery.InitialBackoff {
		errors = append(errors, "delivery.max_backoff cannot be less than delivery.initial_backoff")
	}
	if c.Delivery.BreakerThreshold < 1 {
		errors = append(errors, "delivery.breaker_threshold must be at least 1")
	}
	if err := ValidateDuration(c.Delivery.BreakerTimeout, "delivery.breaker_timeout"); err != nil {
		errors = append(errors, err.Error())
	}

	// Logging validation
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateLogFormat(c.Logging.Format); err != nil {
		errors = append(errors, err.Error())
	}

	// Return all validation errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
