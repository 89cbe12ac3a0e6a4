package history

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/gameplanhq/gameplan/internal/storage"
)

// Reindex walks tracking/areas and folds every item README into the index.
// Unparseable documents are skipped with a warning; stored cursors and sync
// timestamps are preserved.
func Reindex(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("tracking/areas")
	if errors.Is(err, fs.ErrNotExist) {
		// Nothing tracked yet.
		return nil
	}
	if err != nil {
		return err
	}
	for _, m := range metas {
		if !isTrackedReadme(m.Path) {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("reindex: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		id, title, status := DeriveItem(data)
		if id == "" {
			logger.Debug("reindex: skipped unrecognized document", slog.String("path", m.Path))
			continue
		}
		if err := db.Observe(adapterFromPath(m.Path), id, title, status, m.Path); err != nil {
			logger.Warn("reindex: observe failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}
	return nil
}
