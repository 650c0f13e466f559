package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is invoked with the freshly loaded seed patterns file
// each time the watched file changes. An error is logged but does not
// stop the watcher from continuing to watch with the previous config.
type ReloadCallback func(file *SeedPatternsFile) error

// WatcherConfig configures a SeedPatternsWatcher.
type WatcherConfig struct {
	FilePath       string
	DebounceMillis int
}

// SeedPatternsWatcher watches the seed patterns file for edits and
// debounces rapid successive writes (editor save sequences) into a
// single reload.
type SeedPatternsWatcher struct {
	config   WatcherConfig
	callback ReloadCallback
	logger   *slog.Logger

	cancel  context.CancelFunc
	stopped chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewSeedPatternsWatcher validates config and returns a watcher ready
// to Start.
func NewSeedPatternsWatcher(cfg WatcherConfig, callback ReloadCallback, logger *slog.Logger) (*SeedPatternsWatcher, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("config: FilePath cannot be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("config: callback cannot be nil")
	}
	if cfg.DebounceMillis == 0 {
		cfg.DebounceMillis = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedPatternsWatcher{
		config:   cfg,
		callback: callback,
		logger:   logger,
		stopped:  make(chan struct{}),
	}, nil
}

// Start loads the current file, invokes the callback once, then
// begins watching for changes in the background. It returns as soon
// as the initial load succeeds; Stop tears the background watch down.
func (w *SeedPatternsWatcher) Start(ctx context.Context) error {
	initial, err := LoadSeedPatterns(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("loading initial seed patterns: %w", err)
	}
	if err := w.callback(initial); err != nil {
		return fmt.Errorf("initial seed pattern callback: %w", err)
	}
	w.logger.Info("seed patterns loaded", "path", w.config.FilePath, "count", len(initial.Patterns))

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.watchLoop(watchCtx)
	return nil
}

func (w *SeedPatternsWatcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("failed to create file watcher", "err", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.logger.Error("failed to watch seed patterns file", "path", w.config.FilePath, "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("seed patterns watcher error", "err", err)
		}
	}
}

func (w *SeedPatternsWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.config.DebounceMillis)*time.Millisecond, func() {
		w.reload()
	})
}

func (w *SeedPatternsWatcher) reload() {
	file, err := LoadSeedPatterns(w.config.FilePath)
	if err != nil {
		w.logger.Warn("seed patterns reload failed, keeping previous config", "err", err)
		return
	}
	if err := w.callback(file); err != nil {
		w.logger.Warn("seed patterns callback failed", "err", err)
		return
	}
	w.logger.Info("seed patterns reloaded", "count", len(file.Patterns))
}

// Stop cancels the background watch and waits (up to 5s) for it to
// exit.
func (w *SeedPatternsWatcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("config: timeout waiting for seed patterns watcher to stop")
	}
}
