package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// watch calls regen when a Go source file in dirs changes, until ctx is done.
// Bursts of events are coalesced. regen returns the directories to watch next.
func watch(ctx context.Context, log *slog.Logger, dirs []string, generated string, regen func(context.Context) ([]string, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, generated) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				mu.Lock()
				defer mu.Unlock()
				log.Info("change detected", "file", filepath.Base(ev.Name))
				next, err := regen(ctx)
				if err != nil {
					log.Error("regenerate failed", "err", err)
					return
				}
				for _, d := range next {
					// Closed once ctx is done; the error is expected then.
					_ = w.Add(d)
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}

// relevant reports whether ev changes a hand-written Go file.
func relevant(ev fsnotify.Event, generated string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return filepath.Ext(name) == ".go" &&
		name != generated &&
		!strings.HasSuffix(name, "_test.go")
}
