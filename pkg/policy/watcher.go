package policy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the pack directory watcher.
type WatcherConfig struct {
	// Dir is the pack directory to watch.
	Dir string

	// DebounceInterval is how long to wait after the last file event
	// before reloading, to prevent reload storms. Default: 250ms
	DebounceInterval time.Duration

	// Base lists packs that survive every reload (the built-in catalog).
	// Directory packs with the same id shadow base packs.
	Base []*Pack
}

// Watcher watches a pack directory and atomically replaces the registry's
// pack set when files change. A reload that fails validation keeps the
// previous pack set in place.
type Watcher struct {
	registry *Registry
	config   *WatcherConfig
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	pending *time.Timer
	wg      sync.WaitGroup
}

// NewWatcher creates a pack directory watcher.
func NewWatcher(registry *Registry, config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil || config.Dir == "" {
		return nil, fmt.Errorf("watcher requires a pack directory")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		registry: registry,
		config:   config,
		watcher:  fsw,
		logger:   logger.With("component", "policy.watcher"),
	}, nil
}

// Start begins watching. It returns after the watch is established; events
// are handled on a background goroutine until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.config.Dir, err)
	}

	w.logger.Info("pack directory watcher started",
		"dir", w.config.Dir,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if isPackFile(event.Name) {
					w.scheduleReload()
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("pack watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Close stops the watcher and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// scheduleReload debounces file events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.config.DebounceInterval, w.reload)
}

// reload loads the directory and replaces the registry pack set.
func (w *Watcher) reload() {
	loaded, err := LoadDir(w.config.Dir)
	if err != nil {
		w.logger.Error("pack reload failed, keeping previous pack set", "error", err)
		return
	}

	packs := append(append([]*Pack{}, w.config.Base...), loaded...)
	if err := w.registry.Replace(packs); err != nil {
		w.logger.Error("pack replace failed, keeping previous pack set", "error", err)
		return
	}

	w.logger.Info("packs reloaded",
		"pack_count", len(packs),
		"registry_version", w.registry.Version(),
	)
}

// isPackFile reports whether a file event concerns a pack file.
func isPackFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".yaml" || ext == ".yml"
}
