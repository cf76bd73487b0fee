package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/baytides/climate-quest/pkg/validate"
)

// ReportFunc receives the outcome of every watch-triggered run. err is set when
// conversion or loading failed; rep is nil in that case.
type ReportFunc func(rep *validate.Report, err error)

// Watcher re-runs the pipeline whenever a CSV source or the location registry
// changes. Bursts of changes are collapsed into one run per debounce interval,
// and every run recomputes the whole report from scratch.
type Watcher struct {
	pipeline  *Pipeline
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	debounce  time.Duration
	onReport  ReportFunc
	locations string // absolute path of the locations file

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// NewWatcher creates a watcher for the pipeline's source directory and
// location registry.
func NewWatcher(p *Pipeline, onReport ReportFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	locations, err := filepath.Abs(p.cfg.LocationsFile)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve locations file: %w", err)
	}

	return &Watcher{
		pipeline:  p,
		watcher:   fsw,
		logger:    p.logger,
		debounce:  p.cfg.WatchDebounce,
		onReport:  onReport,
		locations: locations,
		pending:   make(map[string]fsnotify.Op),
	}, nil
}

// Run does an initial pipeline run, then watches for changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dirs := map[string]bool{}
	for _, dir := range []string{w.pipeline.cfg.SourceDir, filepath.Dir(w.locations)} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		dirs[abs] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
	}

	w.logger.Info("Content watcher started",
		"source_dir", w.pipeline.cfg.SourceDir,
		"locations_file", w.pipeline.cfg.LocationsFile,
		"debounce", w.debounce)

	w.runOnce(ctx, "startup")

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Content watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// relevant reports whether a change to path can affect the report.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if abs == w.locations {
		return true
	}
	base := filepath.Base(abs)
	return strings.EqualFold(filepath.Ext(base), ".csv") && !strings.HasPrefix(base, ".")
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Content change detected", "path", event.Name, "op", event.Op.String())
}

// flushPending runs the pipeline once if anything changed since the last tick.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, filepath.Base(path))
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	w.runOnce(ctx, strings.Join(changed, ","))
}

func (w *Watcher) runOnce(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	w.logger.Debug("Running content pipeline", "trigger", trigger)
	rep, err := w.pipeline.Run(ctx)
	if err != nil {
		w.logger.Warn("Content pipeline run failed", "trigger", trigger, "error", err)
	}
	if w.onReport != nil {
		w.onReport(rep, err)
	}
}
