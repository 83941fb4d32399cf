package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"veritas-hq/minerva/pkg/audit"
	"veritas-hq/minerva/pkg/audit/retention"
	auditstorage "veritas-hq/minerva/pkg/audit/storage"
	"veritas-hq/minerva/pkg/cli"
	"veritas-hq/minerva/pkg/config"
	"veritas-hq/minerva/pkg/detector"
	"veritas-hq/minerva/pkg/detector/classifier"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/records"
	"veritas-hq/minerva/pkg/server"
	"veritas-hq/minerva/pkg/telemetry/logging"
	"veritas-hq/minerva/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Minerva API server",
	Long: `Start the Minerva API server with the specified configuration.

The server evaluates POSTed transcripts against the registered policy
packs, records tamper-evident audit records, and exposes pack and
metrics endpoints.

Examples:
  # Start with default config
  minerva run

  # Start with custom config
  minerva run --config /etc/minerva/config.yaml

  # Override listen address
  minerva run --listen 0.0.0.0:8080

  # Validate config without starting the server
  minerva run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Minerva v%s\n", Version)
	fmt.Println("✓ Configuration loaded")

	// Pack registry: built-in packs first, classifier detector wired in
	// when the sidecar is configured.
	registry := policy.NewRegistry()
	probes := map[string]server.HealthProbe{}

	var extra []detector.Detector
	if cfg.Classifier.Enabled {
		client, err := classifier.New(&classifier.Config{
			Endpoint:       cfg.Classifier.Endpoint,
			Timeout:        cfg.Classifier.Timeout,
			MaxAttempts:    cfg.Classifier.MaxAttempts,
			InitialBackoff: cfg.Classifier.InitialBackoff,
			MaxBackoff:     cfg.Classifier.MaxBackoff,
		}, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		extra = append(extra, client)
		probes["classifier"] = client
		slog.Info("classifier detector enabled", "endpoint", cfg.Classifier.Endpoint)
	}

	builtin := policy.BuiltinPacks(extra...)
	for _, pack := range builtin {
		if err := registry.Register(pack); err != nil {
			return cli.NewCommandError("run", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Directory packs, with optional hot reload.
	if cfg.Policy.PacksDir != "" {
		loaded, err := policy.LoadDir(cfg.Policy.PacksDir)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		for _, pack := range loaded {
			if err := registry.Register(pack); err != nil {
				return cli.NewCommandError("run", err)
			}
		}
		slog.Info("directory packs loaded", "dir", cfg.Policy.PacksDir, "count", len(loaded))

		if cfg.Policy.Watch {
			watcher, err := policy.NewWatcher(registry, &policy.WatcherConfig{
				Dir:              cfg.Policy.PacksDir,
				DebounceInterval: cfg.Policy.DebounceInterval,
				Base:             builtin,
			}, logger)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return cli.NewCommandError("run", err)
			}
			defer watcher.Close()
			slog.Info("pack hot reload enabled", "dir", cfg.Policy.PacksDir)
		}
	}

	fmt.Printf("✓ Policy packs registered (%d packs, version %s)\n", registry.Count(), registry.Version())

	// Metrics.
	var engineMetrics *metrics.EngineMetrics
	if cfg.Telemetry.Metrics.Enabled {
		engineMetrics = metrics.New(metrics.DefaultConfig())
	}

	// Audit recording.
	var recorder *audit.Recorder
	var auditStore audit.Storage
	var pruner *retention.Pruner
	if cfg.Audit.Enabled {
		auditStore, err = newAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer auditStore.Close()

		recorder = audit.NewRecorder(auditStore, &audit.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.AsyncBuffer,
			WriteTimeout: cfg.Audit.WriteTimeout,
		})
		defer recorder.Close()

		if cfg.Audit.Retention.Days > 0 && cfg.Audit.Retention.Schedule != "" {
			pruner = retention.NewPruner(auditStore, &retention.Config{
				RetentionDays:       cfg.Audit.Retention.Days,
				PruneSchedule:       cfg.Audit.Retention.Schedule,
				ArchiveBeforeDelete: cfg.Audit.Retention.ArchiveBeforeDelete,
				ArchivePath:         cfg.Audit.Retention.ArchivePath,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("audit retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	// Record storage.
	var recordStore records.Store
	switch cfg.Records.Backend {
	case "sqlite":
		recordStore, err = records.NewSQLiteStore(cfg.Records.SQLitePath)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
	case "memory":
		recordStore = records.NewMemoryStore()
	}
	if recordStore != nil {
		defer recordStore.Close()
	}

	// Engine.
	eng, err := engine.New(registry, &engine.Config{
		DetectorTimeout:     cfg.Engine.DetectorTimeout,
		ComplianceThreshold: cfg.Engine.ComplianceThreshold,
	}, logger, engineMetrics)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	srv, err := server.NewServer(server.Options{
		Config:      &cfg.Server,
		Engine:      eng,
		Registry:    registry,
		Recorder:    recorder,
		AuditStore:  auditStore,
		RecordStore: recordStore,
		Metrics:     engineMetrics,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Probes:      probes,
		Logger:      logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// loadConfig loads the config file when present, falling back to
// defaults when the default path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cfgFile != "config.yaml" {
			return nil, cli.NewConfigError(cfgFile, "file not found")
		}
		slog.Info("no config file found, using defaults")
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// newAuditStorage builds the configured audit storage backend.
func newAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		sqliteConfig := auditstorage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Audit.SQLitePath
		return auditstorage.NewSQLiteStorage(sqliteConfig)
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}
