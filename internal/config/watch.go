package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce is the quiet period before a burst of edits is reported.
const DefaultDebounce = 250 * time.Millisecond

var moodsExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// IsMoodsFile reports whether path names a moods file.
func IsMoodsFile(path string) bool {
	base := filepath.Base(path)
	for _, ext := range moodsExtensions {
		if strings.EqualFold(base, moodsFileName+ext) {
			return true
		}
	}
	return false
}

// Watch calls fn after the moods file in dir changes. Bursts of events within
// debounce collapse into one call. It blocks until ctx is cancelled.
func Watch(ctx context.Context, dir string, debounce time.Duration, logger hclog.Logger, fn func()) error {
	return watch(ctx, dir, IsMoodsFile, debounce, logger, fn)
}

// WatchFile is Watch for an explicitly named moods file.
func WatchFile(ctx context.Context, path string, debounce time.Duration, logger hclog.Logger, fn func()) error {
	base := filepath.Base(path)
	return watch(ctx, filepath.Dir(path), func(name string) bool {
		return filepath.Base(name) == base
	}, debounce, logger, fn)
}

func watch(ctx context.Context, dir string, match func(string) bool, debounce time.Duration, logger hclog.Logger, fn func()) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory rather than the file so editors that replace the
	// file on save keep triggering events.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("watching moods", "dir", dir)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !match(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			logger.Trace("moods event", "op", ev.Op.String(), "file", ev.Name)
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-timer.C:
			fn()
		}
	}
}
