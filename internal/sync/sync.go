// Package sync drives configured tracked items to their on-disk documents.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/models"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// ItemResult is the outcome for one tracked item.
type ItemResult struct {
	ID      string
	Path    string
	Status  string
	Changed bool
	Err     error
}

// Report aggregates one adapter's sync run. Results mirror configuration
// order; the run counts as failed if any item failed, but every item is
// attempted regardless. Err is set when the whole area could not run
// (unparseable configuration), in which case Results is empty.
type Report struct {
	Adapter   string
	Results   []ItemResult
	Succeeded int
	Failed    int
	Err       error
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Orchestrator fans configured items out to their adapters sequentially.
// Items are independent; a per-item failure is recorded and the remaining
// items still run.
type Orchestrator struct {
	registry *adapter.Registry
	store    storage.Provider
	db       *history.DB
	logger   *slog.Logger
}

// New creates an orchestrator.
func New(registry *adapter.Registry, store storage.Provider, db *history.DB, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, store: store, db: db, logger: logger}
}

// SyncAll syncs every configured area that has a registered adapter, in
// registry order. A failure in one area, config-level or item-level, never
// stops the remaining areas; area-level failures come back as reports with
// Err set.
func (o *Orchestrator) SyncAll(ctx context.Context, areas map[string]adapter.Area) []*Report {
	var reports []*Report
	for _, name := range o.registry.Names() {
		area, configured := areas[name]
		if !configured {
			continue
		}
		report, err := o.SyncArea(ctx, name, area)
		if err != nil {
			o.logger.Warn("sync: area failed",
				slog.String("adapter", name),
				slog.String("error", err.Error()))
			reports = append(reports, &Report{Adapter: name, Err: err})
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// SyncArea syncs one adapter's configured items. The returned error covers
// configuration problems only (unknown adapter, unparseable item specs);
// everything item-level lands in the report.
func (o *Orchestrator) SyncArea(ctx context.Context, name string, area adapter.Area) (*Report, error) {
	ad, ok := o.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: no adapter registered for area %q", apperr.ErrConfig, name)
	}

	items, err := ad.ParseConfig(area)
	if err != nil {
		return nil, err
	}

	since := ""
	if t, found, dbErr := o.db.LastRun(name); dbErr == nil && found {
		since = t.UTC().Format(time.RFC3339)
	}

	started := time.Now()
	report := &Report{Adapter: name}
	for _, item := range items {
		res := o.syncItem(ctx, ad, item, since)
		report.Results = append(report.Results, res)
		if res.Err != nil {
			report.Failed++
			o.logger.Warn("sync: item failed",
				slog.String("adapter", name),
				slog.String("item", item.ID),
				slog.String("error", res.Err.Error()))
		} else {
			report.Succeeded++
			o.logger.Info("sync: item updated",
				slog.String("adapter", name),
				slog.String("item", item.ID),
				slog.String("status", res.Status),
				slog.Bool("changed", res.Changed))
		}
	}

	if err := o.db.RecordRun(name, started, report.Succeeded, report.Failed); err != nil {
		o.logger.Warn("sync: record run failed", slog.String("adapter", name), slog.String("error", err.Error()))
	}
	return report, nil
}

// syncItem runs one item's fetch → path → merge → write pipeline.
func (o *Orchestrator) syncItem(ctx context.Context, ad adapter.Adapter, item models.TrackedItem, since string) ItemResult {
	res := ItemResult{ID: item.ID}

	data, err := ad.FetchItem(ctx, item, since)
	if err != nil {
		res.Err = err
		return res
	}
	res.Status = data.Status

	res.Path = ad.StoragePath(item, data.Title)

	var existing []byte
	if o.store.Exists(res.Path) {
		existing, err = o.store.Read(res.Path)
		if err != nil {
			res.Err = fmt.Errorf("%w: %v", apperr.ErrStorage, err)
			return res
		}
	}

	merged, err := ad.MergeUpdate(existing, data, item)
	if err != nil {
		res.Err = err
		return res
	}

	if err := o.store.Write(res.Path, merged); err != nil {
		res.Err = fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		return res
	}

	cursor := ""
	if cr, ok := ad.(adapter.CursorReporter); ok {
		cursor = cr.RemoteCursor(data)
		if prev, dbErr := o.db.Cursor(item.Adapter, item.ID); dbErr == nil {
			res.Changed = prev != "" && cursor != "" && prev != cursor
		}
	}

	if err := o.db.RecordSync(history.ItemRow{
		Adapter:  item.Adapter,
		ID:       item.ID,
		Title:    data.Title,
		Status:   data.Status,
		Path:     res.Path,
		Cursor:   cursor,
		SyncedAt: time.Now(),
	}); err != nil {
		// Index trouble does not fail the item; the file on disk is the
		// source of truth.
		o.logger.Warn("sync: index update failed",
			slog.String("item", item.ID),
			slog.String("error", err.Error()))
	}

	return res
}
