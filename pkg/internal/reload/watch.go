package reload

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/file"
)

// DebounceDuration is the quiet period after the last change of a watched
// file before the reload callback runs.
const DebounceDuration = 100 * time.Millisecond

// Watch calls cb whenever the file at path changes until ctx is canceled.
// Bursts of changes within DebounceDuration result in a single call.
// Watch returns after the watcher is started.
func Watch(ctx context.Context, path string, cb func() error) error {
	if ctx.Err() != nil {
		return nil
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	w := &watcher{log: log, cb: cb}

	provider := file.Provider(path)
	context.AfterFunc(ctx, func() { _ = provider.Unwatch() })
	return provider.Watch(func(_ any, err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Info("failed watching config", "error", err)
			return
		}
		w.changed()
	})
}

type watcher struct {
	log logr.Logger
	cb  func() error

	mu       sync.Mutex // serializes reloads
	timerMu  sync.Mutex
	debounce *time.Timer
}

func (w *watcher) changed() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(DebounceDuration, w.reload)
}

func (w *watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.log.Info("auto-reloading config")
	start := time.Now()
	if err := w.cb(); err != nil {
		w.log.Info("failed to reload config", "error", err)
		return
	}
	w.log.Info("reloaded config successfully", "duration", time.Since(start).Round(time.Millisecond).String())
}
