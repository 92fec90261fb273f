// Package watcher reports changes to a single file, such as the app's config
// file, after they settle.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Event represents a settled change to the watched file.
type Event struct {
	Path      string
	Op        Operation
	Timestamp time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	OpCreate Operation = iota
	OpWrite
	OpRemove
	OpRename
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Watcher watches one file through its parent directory so that editors
// replacing the file atomically are still seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan Event
	errors  chan error
	logger  zerolog.Logger

	debounceTime time.Duration
	pending      *time.Timer
	last         Event
	pendingMu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds watcher configuration.
type Config struct {
	Path         string
	DebounceTime time.Duration
	BufferSize   int
}

// DefaultConfig returns a default configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		DebounceTime: 250 * time.Millisecond,
		BufferSize:   8,
	}
}

// New creates a new file watcher.
func New(cfg Config, logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		watcher:      fsWatcher,
		path:         filepath.Clean(path),
		events:       make(chan Event, cfg.BufferSize),
		errors:       make(chan error, 4),
		logger:       logger.With().Str("component", "watcher").Logger(),
		debounceTime: cfg.DebounceTime,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start starts watching. The file's directory must exist; the file itself
// need not.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info().Str("path", w.path).Msg("File watcher started")
	return nil
}

// Stop stops the watcher and closes the event and error channels.
func (w *Watcher) Stop() error {
	w.cancel()
	w.wg.Wait()

	// Timer callbacks check the context under pendingMu before sending.
	w.pendingMu.Lock()
	close(w.events)
	close(w.errors)
	w.pendingMu.Unlock()

	return w.watcher.Close()
}

// Events returns the events channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the errors channel.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// processEvents processes raw fsnotify events.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.pendingMu.Lock()
			if w.pending != nil {
				w.pending.Stop()
				w.pending = nil
			}
			w.pendingMu.Unlock()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Error().Err(err).Msg("Error channel full, dropping error")
			}
		}
	}
}

// handleEvent handles a single fsnotify event.
func (w *Watcher) handleEvent(fsEvent fsnotify.Event) {
	if filepath.Clean(fsEvent.Name) != w.path {
		return
	}

	var op Operation
	switch {
	case fsEvent.Has(fsnotify.Create):
		op = OpCreate
	case fsEvent.Has(fsnotify.Write):
		op = OpWrite
	case fsEvent.Has(fsnotify.Remove):
		op = OpRemove
	case fsEvent.Has(fsnotify.Rename):
		op = OpRename
	default:
		// chmod only
		return
	}

	w.debounce(Event{
		Path:      w.path,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// debounce delays delivery until no further event arrived for debounceTime.
func (w *Watcher) debounce(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
		// A create followed by writes is still a create.
		if event.Op == OpWrite && w.last.Op == OpCreate {
			event.Op = OpCreate
		}
	}
	w.last = event

	w.pending = time.AfterFunc(w.debounceTime, func() {
		w.pendingMu.Lock()
		defer w.pendingMu.Unlock()
		w.pending = nil

		if w.ctx.Err() != nil {
			return
		}
		select {
		case w.events <- event:
		default:
			w.logger.Warn().Str("path", event.Path).Msg("Event channel full, dropping event")
		}
	})
}
