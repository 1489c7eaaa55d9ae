// Package watch detects content changes and pushes them to live reload
// clients and other listeners.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
)

// Change describes a new content fingerprint.
type Change struct {
	Fingerprint string    `json:"fingerprint"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Listener is notified after the content fingerprint changed.
type Listener func(ctx context.Context, change Change)

// Watcher watches the content root recursively and reports debounced,
// fingerprint-confirmed changes.
type Watcher struct {
	scanner   *content.Scanner
	debounce  time.Duration
	logger    *slog.Logger
	recorder  metrics.Recorder
	now       func() time.Time
	listeners []Listener

	mu      sync.Mutex
	current string
	watched map[string]struct{}
	fsw     *fsnotify.Watcher
}

// NewWatcher creates the underlying fsnotify watcher. recorder may be nil.
func NewWatcher(scanner *content.Scanner, debounce time.Duration, recorder metrics.Recorder, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		scanner:  scanner,
		debounce: debounce,
		logger:   logger,
		recorder: metrics.OrNoop(recorder),
		now:      time.Now,
		watched:  map[string]struct{}{},
		fsw:      fsw,
	}, nil
}

// OnChange registers l. Listeners must be registered before Run.
func (w *Watcher) OnChange(l Listener) {
	w.listeners = append(w.listeners, l)
}

// Fingerprint returns the last computed content fingerprint.
func (w *Watcher) Fingerprint() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run watches until ctx is done, then closes the fsnotify watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	w.mu.Lock()
	w.current = Fingerprint(w.scanner)
	w.mu.Unlock()
	if err := w.addTree(w.scanner.Root()); err != nil {
		return err
	}
	w.logger.Info("Watching content", logfields.Path(w.scanner.Root()), slog.Int("directories", len(w.watched)))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("Cannot watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Content event", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.Check(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// Check recomputes the fingerprint and notifies listeners if it changed.
// It reports whether a change was found.
func (w *Watcher) Check(ctx context.Context) bool {
	fp := Fingerprint(w.scanner)
	w.mu.Lock()
	if fp == w.current {
		w.mu.Unlock()
		return false
	}
	w.current = fp
	w.mu.Unlock()

	change := Change{Fingerprint: fp, ChangedAt: w.now().UTC()}
	w.recorder.IncContentChange()
	w.logger.Info("Content changed", slog.String("fingerprint", fp))
	for _, l := range w.listeners {
		l(ctx, change)
	}
	return true
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, ok := w.watched[path]; ok {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.watched[path] = struct{}{}
		return nil
	})
}

func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
