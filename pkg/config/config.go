package config

import "time"

// Config is the root configuration structure for Minerva. It contains
// all configuration sections for the HTTP API, the evaluation engine,
// policy pack loading, the ML classifier sidecar, audit storage,
// record storage, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and graceful shutdown.
	Server ServerConfig `yaml:"server"`

	// Engine contains configuration for the policy evaluation engine.
	Engine EngineConfig `yaml:"engine"`

	// Policy contains configuration for policy pack loading and hot
	// reload.
	Policy PolicyConfig `yaml:"policy"`

	// Classifier contains configuration for the ML classifier sidecar
	// integration.
	Classifier ClassifierConfig `yaml:"classifier"`

	// Audit contains configuration for audit recording, storage, and
	// retention.
	Audit AuditConfig `yaml:"audit"`

	// Records contains configuration for evaluation and conversation
	// record storage.
	Records RecordsConfig `yaml:"records"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// EngineConfig contains configuration for the evaluation engine.
type EngineConfig struct {
	// DetectorTimeout bounds the concurrent detector fan-out for one
	// evaluation.
	// Default: 10s
	DetectorTimeout time.Duration `yaml:"detector_timeout"`

	// ComplianceThreshold is the minimum score for a compliant verdict.
	// Default: 70
	ComplianceThreshold int `yaml:"compliance_threshold"`
}

// PolicyConfig contains configuration for policy pack loading.
type PolicyConfig struct {
	// PacksDir is a directory of YAML pack files loaded in addition to
	// the built-in packs. Empty disables directory loading.
	PacksDir string `yaml:"packs_dir"`

	// Watch enables hot reload of PacksDir on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file change bursts into one
	// reload.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ClassifierConfig contains configuration for the ML classifier
// sidecar.
type ClassifierConfig struct {
	// Enabled wires the classifier detector into the built-in packs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the sidecar base URL, e.g. "http://127.0.0.1:8081".
	Endpoint string `yaml:"endpoint"`

	// Timeout is the per-request timeout for classify calls.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts is the number of classify attempts before the
	// fail-safe signal is emitted.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the first retry delay.
	// Default: 200ms
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff caps the exponential retry delay.
	// Default: 2s
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// AuditConfig contains configuration for audit recording and storage.
type AuditConfig struct {
	// Enabled enables audit recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains retention policy configuration for audit
// records.
type RetentionConfig struct {
	// Days is the number of days to retain audit records.
	// 0 disables pruning.
	// Default: 365
	Days int `yaml:"days"`

	// Schedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`

	// ArchiveBeforeDelete exports pruned records to JSON first.
	// Default: true
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory for archived records.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// RecordsConfig contains configuration for evaluation and conversation
// record storage.
type RecordsConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/records.db"
	SQLitePath string `yaml:"sqlite_path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
