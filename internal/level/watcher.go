package level

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events into one reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the registry when descriptor files change on disk.
type Watcher struct {
	loader   *Loader
	registry *Registry
	logger   *log.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReload func([]Info, error)
}

// NewWatcher watches every existing directory on the loader's search path.
func NewWatcher(loader *Loader, registry *Registry, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("level: cannot create watcher: %w", err)
	}

	watched := 0
	for _, dir := range loader.Dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("level: cannot watch %s: %w", dir, err)
		}
		logger.Debug("watching level directory", "dir", dir)
		watched++
	}
	if watched == 0 {
		logger.Warn("no level directories to watch", "dirs", loader.Dirs)
	}

	return &Watcher{
		loader:   loader,
		registry: registry,
		logger:   logger,
		fsw:      fsw,
		debounce: DefaultDebounce,
	}, nil
}

// OnReload sets a callback invoked after every reload attempt.
func (w *Watcher) OnReload(fn func([]Info, error)) {
	w.onReload = fn
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsDescriptor(event.Name) {
				continue
			}
			w.logger.Debug("level file changed", "path", event.Name, "op", event.Op.String())
			pending = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("level watcher error", "error", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// reload rebuilds the level set and swaps it into the registry.
// A failed reload keeps the previous levels.
func (w *Watcher) reload() {
	levels, err := w.loader.LoadAll()
	if err == nil {
		err = w.registry.Replace(levels)
	}
	if err != nil {
		w.logger.Error("could not reload levels", "error", err)
	} else {
		w.logger.Info("levels reloaded", "count", len(levels))
	}
	if w.onReload != nil {
		w.onReload(w.registry.List(), err)
	}
}
