// Package watcher monitors configured folders for newly arrived media
// files using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

// EventType classifies a filesystem event.
type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

// FileEvent is delivered to the handler for each media file change.
type FileEvent struct {
	Type     EventType
	Path     string
	FileType scanner.FileType
}

// Handler receives media file events.
type Handler interface {
	HandleFileEvent(event FileEvent) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event FileEvent) error

func (f HandlerFunc) HandleFileEvent(event FileEvent) error {
	return f(event)
}

// Watcher watches folder trees and reports media file events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *logging.Logger
}

// New creates a Watcher delivering events to handler.
func New(handler Handler, logger *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logger,
	}, nil
}

// Watch registers each root and its subdirectories. Unreadable subtrees are
// skipped; a missing root is an error.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Debug("watcher", "watching", logging.F("path", path))
		return nil
	})
}

// Run delivers events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// New directories join the watch set
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !strings.HasPrefix(filepath.Base(event.Name), ".") {
						w.fsWatcher.Add(event.Name)
						w.logger.Debug("watcher", "watching new directory", logging.F("path", event.Name))
					}
					continue
				}
			}

			if err := w.handleEvent(event); err != nil {
				w.logger.Warn("watcher", "event handler failed", logging.F("path", event.Name), logging.F("error", err))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "watch error", logging.F("error", err))
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) error {
	fileType := scanner.Classify(event.Name)
	if !fileType.IsMedia() {
		return nil
	}

	eventType := EventCreate
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventMove
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDelete
	}

	return w.handler.HandleFileEvent(FileEvent{
		Type:     eventType,
		Path:     event.Name,
		FileType: fileType,
	})
}
