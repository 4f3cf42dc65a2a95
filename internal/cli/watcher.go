package cli

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/utils"
)

// DefaultDebounce is how long the watcher waits for edits to settle
const DefaultDebounce = 300 * time.Millisecond

// RunCallback receives the outcome of every run made by the watcher
type RunCallback func(*Report, error)

// Watcher regenerates whenever a Go source file in a watched package changes
type Watcher struct {
	generator *Generator
	logger    utils.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	watched       map[string]bool
	trigger       chan struct{}
}

// NewWatcher creates a watcher driving generator
func NewWatcher(generator *Generator, logger utils.Logger, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to create fsnotify watcher", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		generator: generator,
		logger:    logger,
		watcher:   watcher,
		debounce:  debounce,
		watched:   make(map[string]bool),
		trigger:   make(chan struct{}, 1),
	}, nil
}

// Watch runs the generator once and again after every settled change until
// ctx is cancelled. Runs never overlap.
func (w *Watcher) Watch(ctx context.Context, patterns []string, onRun RunCallback) error {
	defer w.watcher.Close()

	w.run(patterns, onRun)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Detected %s on %s", event.Op, event.Name)
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error: %v", err)

		case <-w.trigger:
			w.run(patterns, onRun)
		}
	}
}

func (w *Watcher) run(patterns []string, onRun RunCallback) {
	report, err := w.generator.Run(patterns)
	w.addDirs(w.generator.Dirs())
	if onRun != nil {
		onRun(report, err)
	}
}

// addDirs starts watching package directories that appeared since the last run
func (w *Watcher) addDirs(dirs []string) {
	for _, dir := range dirs {
		if w.watched[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("Cannot watch %s: %v", dir, err)
			continue
		}
		w.watched[dir] = true
		w.logger.Debug("Watching %s", dir)
	}
}

// relevant filters events down to edits of hand-written Go sources
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasPrefix(name, ".") {
		return false
	}
	if w.generator.IsOutput(event.Name) {
		return false
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		if generated, err := IsGeneratedFile(event.Name); err == nil && generated {
			return false
		}
	}
	return true
}

// schedule debounces rapid edits into a single run
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}
