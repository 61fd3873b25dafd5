// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package loader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-reads seeded DSL files when they change on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool
	onChange func(path string)
	debounce time.Duration

	mu         sync.Mutex
	lastChange map[string]time.Time
}

// NewWatcher watches the given absolute file paths and invokes onChange
// with the changed path. Editors replace files on save, so the parent
// directories are watched rather than the files themselves.
func NewWatcher(paths []string, onChange func(path string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    fsWatcher,
		paths:      make(map[string]bool, len(paths)),
		onChange:   onChange,
		debounce:   500 * time.Millisecond,
		lastChange: make(map[string]time.Time),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins delivering change events.
func (w *Watcher) Start() {
	go w.watch()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.paths[abs] {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.handleChange(abs)
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleChange debounces rapid successive events on the same file.
func (w *Watcher) handleChange(path string) {
	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastChange[path]) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastChange[path] = now
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(path)
	}
}
