package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long Watch waits for writes to settle before a re-run.
const debounce = 100 * time.Millisecond

// Watch runs the driver once, then again whenever a target file under dir
// is written or created, until ctx is cancelled. Each report is passed to
// onReport. Watch returns nil when ctx is cancelled.
func (d *Driver) Watch(ctx context.Context, dir string, entries []string, onReport func(*Report)) error {
	logger := d.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return err
	}

	runs := make(chan struct{}, 1)
	trigger := func() {
		select {
		case runs <- struct{}{}:
		default:
		}
	}
	trigger()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-runs:
			report, err := d.Run(ctx, dir, entries)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("conversion run failed", "error", err)
				continue
			}
			if onReport != nil {
				onReport(report)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !d.isTarget(dir, entries, event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(debounce, func() {
				logger.Debug("file changed, converting", "file", name)
				trigger()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// isTarget reports whether path is one of the files the entries select.
func (d *Driver) isTarget(dir string, entries []string, path string) bool {
	targets, _, err := ResolveTargets(dir, entries)
	if err != nil {
		return false
	}
	for _, t := range targets {
		if filepath.Clean(t.Path) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
