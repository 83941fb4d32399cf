package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation failure for a
// single field.
type ValidationError struct {
	Field   string // Dotted path of the offending field
	Message string // Why the value is invalid
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values. The first
// failure encountered is returned.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateEngine(&cfg.Engine); err != nil {
		return err
	}
	if err := validatePolicy(&cfg.Policy); err != nil {
		return err
	}
	if err := validateClassifier(&cfg.Classifier); err != nil {
		return err
	}
	if err := validateAudit(&cfg.Audit); err != nil {
		return err
	}
	if err := validateRecords(&cfg.Records); err != nil {
		return err
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return &ValidationError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be host:port, got %q", cfg.ListenAddress),
		}
	}
	if cfg.ReadTimeout < 0 {
		return &ValidationError{Field: "server.read_timeout", Message: "must not be negative"}
	}
	if cfg.WriteTimeout < 0 {
		return &ValidationError{Field: "server.write_timeout", Message: "must not be negative"}
	}
	if cfg.ShutdownTimeout <= 0 {
		return &ValidationError{Field: "server.shutdown_timeout", Message: "must be positive"}
	}
	return nil
}

func validateEngine(cfg *EngineConfig) error {
	if cfg.DetectorTimeout <= 0 {
		return &ValidationError{Field: "engine.detector_timeout", Message: "must be positive"}
	}
	if cfg.ComplianceThreshold < 0 || cfg.ComplianceThreshold > 100 {
		return &ValidationError{
			Field:   "engine.compliance_threshold",
			Message: fmt.Sprintf("must be 0-100, got %d", cfg.ComplianceThreshold),
		}
	}
	return nil
}

func validatePolicy(cfg *PolicyConfig) error {
	if cfg.Watch && cfg.PacksDir == "" {
		return &ValidationError{
			Field:   "policy.watch",
			Message: "requires policy.packs_dir to be set",
		}
	}
	if cfg.DebounceInterval < 0 {
		return &ValidationError{Field: "policy.debounce_interval", Message: "must not be negative"}
	}
	return nil
}

func validateClassifier(cfg *ClassifierConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Endpoint == "" {
		return &ValidationError{
			Field:   "classifier.endpoint",
			Message: "required when classifier is enabled",
		}
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{
			Field:   "classifier.endpoint",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.Endpoint),
		}
	}
	if cfg.MaxAttempts < 1 {
		return &ValidationError{Field: "classifier.max_attempts", Message: "must be at least 1"}
	}
	if cfg.Timeout <= 0 {
		return &ValidationError{Field: "classifier.timeout", Message: "must be positive"}
	}
	if cfg.InitialBackoff <= 0 || cfg.MaxBackoff < cfg.InitialBackoff {
		return &ValidationError{
			Field:   "classifier.max_backoff",
			Message: "backoff bounds must be positive and ordered",
		}
	}
	return nil
}

func validateAudit(cfg *AuditConfig) error {
	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		return &ValidationError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("must be \"sqlite\" or \"memory\", got %q", cfg.Backend),
		}
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		return &ValidationError{Field: "audit.sqlite_path", Message: "required for sqlite backend"}
	}
	if cfg.AsyncBuffer < 1 {
		return &ValidationError{Field: "audit.async_buffer", Message: "must be at least 1"}
	}
	if cfg.WriteTimeout <= 0 || cfg.WriteTimeout > time.Minute {
		return &ValidationError{Field: "audit.write_timeout", Message: "must be positive and at most 1m"}
	}
	if cfg.Retention.Days < 0 {
		return &ValidationError{Field: "audit.retention.days", Message: "must not be negative"}
	}
	if cfg.Retention.Days > 0 && cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return &ValidationError{
				Field:   "audit.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression %q", cfg.Retention.Schedule),
			}
		}
	}
	return nil
}

func validateRecords(cfg *RecordsConfig) error {
	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		return &ValidationError{
			Field:   "records.backend",
			Message: fmt.Sprintf("must be \"sqlite\" or \"memory\", got %q", cfg.Backend),
		}
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		return &ValidationError{Field: "records.sqlite_path", Message: "required for sqlite backend"}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be debug, info, warn, or error, got %q", cfg.Logging.Level),
		}
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return &ValidationError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.Logging.Format),
		}
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return &ValidationError{
			Field:   "telemetry.metrics.path",
			Message: fmt.Sprintf("must start with \"/\", got %q", cfg.Metrics.Path),
		}
	}
	return nil
}
