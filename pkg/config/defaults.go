package config

import "time"

// ApplyDefaults fills in default values for any configuration fields
// that were not set. Zero values for booleans cannot be distinguished
// from "unset", so boolean defaults are applied in DefaultConfig only.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Engine defaults
	if cfg.Engine.DetectorTimeout == 0 {
		cfg.Engine.DetectorTimeout = 10 * time.Second
	}
	if cfg.Engine.ComplianceThreshold == 0 {
		cfg.Engine.ComplianceThreshold = 70
	}

	// Policy defaults
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = 250 * time.Millisecond
	}

	// Classifier defaults
	if cfg.Classifier.Timeout == 0 {
		cfg.Classifier.Timeout = 5 * time.Second
	}
	if cfg.Classifier.MaxAttempts == 0 {
		cfg.Classifier.MaxAttempts = 3
	}
	if cfg.Classifier.InitialBackoff == 0 {
		cfg.Classifier.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.Classifier.MaxBackoff == 0 {
		cfg.Classifier.MaxBackoff = 2 * time.Second
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = "data/audit.db"
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = 1000
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = 5 * time.Second
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = "0 3 * * *"
	}
	if cfg.Audit.Retention.ArchivePath == "" {
		cfg.Audit.Retention.ArchivePath = "data/archives/"
	}

	// Records defaults
	if cfg.Records.Backend == "" {
		cfg.Records.Backend = "sqlite"
	}
	if cfg.Records.SQLitePath == "" {
		cfg.Records.SQLitePath = "data/records.db"
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}

// DefaultConfig returns a complete configuration with all defaults
// applied, including boolean defaults that ApplyDefaults cannot infer.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = true
	cfg.Audit.Retention.Days = 365
	cfg.Audit.Retention.ArchiveBeforeDelete = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
