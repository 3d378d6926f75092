// Package watch monitors the metadata store of environment prefixes and
// invalidates cached prefix state when it changes on disk.
//
// Filesystem events are debounced so that a burst of writes (a transaction
// touching many metadata files) collapses into a single invalidation, and a
// rate limiter bounds the invalidation frequency under pathological event
// storms.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/loaders/condameta"
	"github.com/cxpkg/cx/internal/logger"
)

// defaultDebounce is the quiet period after the last filesystem event
// before the pending prefixes are invalidated.
const defaultDebounce = 200 * time.Millisecond

// defaultLimit bounds invalidations to roughly two per second with a small
// burst allowance.
const defaultLimit = rate.Limit(2)

// defaultBurst is the default limiter burst.
const defaultBurst = 4

// Invalidator drops cached state for a prefix. The prefix state service
// implements it.
type Invalidator interface {
	Invalidate(handle domain.PrefixHandle)
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Invalidator receives the invalidation calls. Required.
	Invalidator Invalidator

	// Debounce is the quiet period after the last event before pending
	// prefixes are invalidated. Zero or negative values fall back to the
	// default.
	Debounce time.Duration

	// Limit caps the invalidation frequency. Zero falls back to the
	// default.
	Limit rate.Limit

	// Burst is the limiter burst size. Zero falls back to the default.
	Burst int
}

// Watcher monitors the metadata directories of registered prefixes and
// fires debounced invalidations when they change. Run must be called
// exactly once.
type Watcher struct {
	inv      Invalidator
	fsw      *fsnotify.Watcher
	limiter  *rate.Limiter
	debounce time.Duration
	started  atomic.Bool

	mu      sync.Mutex
	handles map[string]domain.PrefixHandle // keyed by watched metadata dir
}

// New creates a Watcher from the given Config.
func New(cfg Config) (*Watcher, error) {
	if cfg.Invalidator == nil {
		return nil, fmt.Errorf("watch: invalidator is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	limit := cfg.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Watcher{
		inv:      cfg.Invalidator,
		fsw:      fsw,
		limiter:  rate.NewLimiter(limit, burst),
		debounce: debounce,
		handles:  make(map[string]domain.PrefixHandle),
	}, nil
}

// Add registers a prefix for watching. The metadata directory must exist;
// a prefix without one is not an environment.
func (w *Watcher) Add(handle domain.PrefixHandle) error {
	metaDir := filepath.Join(handle.Path, condameta.MetadataDir)
	info, err := os.Stat(metaDir)
	if err != nil {
		return fmt.Errorf("watch: prefix %s: %w", handle.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: prefix %s: %s is not a directory", handle.Path, metaDir)
	}

	if err := w.fsw.Add(metaDir); err != nil {
		return fmt.Errorf("watch: add %s: %w", metaDir, err)
	}

	w.mu.Lock()
	w.handles[metaDir] = handle
	w.mu.Unlock()
	logger.Debug("watching %s", metaDir)
	return nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced invalidations. It returns nil on clean context
// cancellation. Run must be called exactly once; a second call returns an
// error immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]domain.PrefixHandle)
		timer   *time.Timer
	)

	// fire drains the pending set and invalidates each prefix. It may be
	// scheduled by time.AfterFunc after the context is cancelled, so the
	// ctx check is a best-effort guard. When the limiter is exhausted the
	// pending set is kept and the timer rescheduled so events are never
	// silently discarded.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !w.limiter.Allow() {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		drained := make([]domain.PrefixHandle, 0, len(pending))
		for _, h := range pending {
			drained = append(drained, h)
		}
		clear(pending)
		mu.Unlock()

		for _, h := range drained {
			logger.Debug("metadata changed, invalidating %s", h.Path)
			w.inv.Invalidate(h)
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil {
			localTimer.Stop()
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			logger.Warn("closing watcher: %v", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: event channel closed unexpectedly")
			}
			handle, ok := w.lookup(evt.Name)
			if !ok {
				continue
			}

			mu.Lock()
			pending[handle.Key()] = handle
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: error channel closed unexpectedly")
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// lookup resolves an event path to the registered prefix it belongs to.
// Events arrive for entries inside a watched metadata directory, or for
// the directory itself.
func (w *Watcher) lookup(eventPath string) (domain.PrefixHandle, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if h, ok := w.handles[eventPath]; ok {
		return h, true
	}
	if h, ok := w.handles[filepath.Dir(eventPath)]; ok {
		return h, true
	}
	return domain.PrefixHandle{}, false
}
