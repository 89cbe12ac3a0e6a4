package history

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/gameplanhq/gameplan/internal/storage"
)

// Watch starts an fsnotify watcher on the tracking tree and keeps the item
// index in step with hand edits until ctx is cancelled. New item directories
// created at runtime are added to the watch list automatically.
func Watch(ctx context.Context, db *DB, store storage.Provider, workspaceRoot string, logger *slog.Logger) error {
	trackingRoot := filepath.Join(workspaceRoot, "tracking")
	if _, err := os.Stat(trackingRoot); err != nil {
		logger.Warn("watcher: no tracking directory, not watching", slog.String("root", trackingRoot))
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, trackingRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", trackingRoot))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					indexNewDir(db, store, workspaceRoot, ev.Name, logger)
					continue
				}
			}

			rel, relErr := filepath.Rel(workspaceRoot, ev.Name)
			if relErr != nil || !isTrackedReadme(filepath.ToSlash(rel)) {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				observePath(db, store, rel, logger)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := db.DeleteByPath(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: removed", slog.String("path", rel))
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func observePath(db *DB, store storage.Provider, rel string, logger *slog.Logger) {
	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	id, title, status := DeriveItem(data)
	if id == "" {
		return
	}
	if err := db.Observe(adapterFromPath(rel), id, title, status, rel); err != nil {
		logger.Warn("watcher: observe failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: indexed", slog.String("path", rel))
}

// indexNewDir folds any READMEs inside a newly created directory into the
// index (an item directory and its README often arrive in one burst).
func indexNewDir(db *DB, store storage.Provider, workspaceRoot, dirPath string, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, "README.md") {
			return nil
		}
		rel, relErr := filepath.Rel(workspaceRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isTrackedReadme(rel) {
			observePath(db, store, rel, logger)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
