// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 500 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path and invokes onReload with each successfully
// reloaded config. Reload failures are logged and skipped; the previous
// config stays in effect.
//
// The parent directory is watched rather than the file itself so atomic
// replace-by-rename (how editors and Save write) keeps being seen.
func Watch(path string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		done:    make(chan struct{}),
	}
	go w.loop(path, onReload)
	return w, nil
}

func (w *Watcher) loop(path string, onReload func(*Config)) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := LoadFromPath(path)
			if err != nil {
				if _, partial := err.(ValidateErrors); !partial {
					log.Printf("warning: reloading config: %v", err)
					continue
				}
				log.Printf("warning: config reloaded with invalid fields reset: %v", err)
			}
			onReload(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("warning: config watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
