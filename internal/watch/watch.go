// Package watch re-runs a callback whenever a repository's refs, HEAD, or
// working tree change, debounced so a burst of events (an editor's
// write-then-rename, a checkout touching many files) fires once.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 100 * time.Millisecond

// Run watches gitDir's refs/HEAD plus workDir's tree and calls onChange
// (debounced) whenever either changes. It blocks until ctx is canceled.
func Run(ctx context.Context, logger *slog.Logger, gitDir, workDir string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(gitDir); err != nil {
		return err
	}
	for _, sub := range []string{"refs/heads", "refs/tags"} {
		walkAndWatch(watcher, filepath.Join(gitDir, sub), logger)
	}
	walkAndWatch(watcher, workDir, logger)

	logger.Info("watching repository for changes", "gitDir", gitDir, "workDir", workDir)

	var debounce *time.Timer
	fire := func() {
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(debounceWindow, onChange)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnore(event) {
				continue
			}
			logger.Debug("change detected", "file", filepath.Base(event.Name), "op", event.Op.String())
			fire()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

// walkAndWatch adds watches to dir and every subdirectory, since fsnotify
// does not recurse. Missing directories are silently skipped.
func walkAndWatch(watcher *fsnotify.Watcher, dir string, logger *slog.Logger) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if fi.IsDir() {
			if addErr := watcher.Add(path); addErr != nil {
				logger.Warn("failed to watch directory", "dir", path, "err", addErr)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("failed to walk directory", "dir", dir, "err", err)
	}
}

// shouldIgnore filters out noise events (chmod-only) that never reflect a
// content or ref change worth reprinting status for.
func shouldIgnore(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0
}
