// Package misc tracks local items that have no external system behind them.
// Item state lives in YAML frontmatter at the top of each README; the
// markdown body below it is entirely human-owned.
package misc

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/models"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// matter is the machine-owned frontmatter block. Field order here is the
// order written to disk.
type matter struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Status      string `yaml:"status"`
	LastUpdated string `yaml:"last_updated"`
}

// Misc is the adapter for local-only tracked items.
type Misc struct {
	store storage.Provider
	now   func() time.Time
}

// New creates a misc adapter reading existing documents through store.
func New(store storage.Provider) *Misc {
	return &Misc{store: store, now: time.Now}
}

// Name implements adapter.Adapter.
func (m *Misc) Name() string { return "misc" }

// ParseConfig turns the area's item specs into tracked items. Each item
// spec must carry an "id" key.
func (m *Misc) ParseConfig(area adapter.Area) ([]models.TrackedItem, error) {
	items := make([]models.TrackedItem, 0, len(area.Items))
	for i, spec := range area.Items {
		id, _ := spec["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("%w: misc: item %d: missing id", apperr.ErrConfig, i)
		}
		items = append(items, models.TrackedItem{
			ID:       id,
			Adapter:  "misc",
			Metadata: spec,
		})
	}
	return items, nil
}

// FetchItem reads item state from the existing README's frontmatter, falling
// back to the configured values for items synced for the first time.
func (m *Misc) FetchItem(_ context.Context, item models.TrackedItem, since string) (models.ItemData, error) {
	title := stringValue(item.Metadata, "title")
	if title == "" {
		title = item.ID
	}
	status := stringValue(item.Metadata, "status")
	if status == "" {
		status = "Active"
	}

	readmePath := m.StoragePath(item, title)
	if !m.store.Exists(readmePath) {
		return models.ItemData{Title: title, Status: status, Raw: item.Metadata}, nil
	}

	content, err := m.store.Read(readmePath)
	if err != nil {
		return models.ItemData{}, fmt.Errorf("%w: misc: read %s: %v", apperr.ErrFetch, readmePath, err)
	}

	var fm matter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &fm); err == nil {
		if fm.Title != "" {
			title = fm.Title
		}
		if fm.Status != "" {
			status = fm.Status
		}
	}
	return models.ItemData{Title: title, Status: status, Raw: item.Metadata}, nil
}

// StoragePath implements adapter.Adapter.
func (m *Misc) StoragePath(item models.TrackedItem, title string) string {
	return path.Join("tracking", "areas", "misc", adapter.ItemDir(item.ID, title), "README.md")
}

// MergeUpdate rewrites the frontmatter block and carries the body through
// byte-for-byte. Content without parseable frontmatter is treated as all
// body and gains a fresh block above it.
func (m *Misc) MergeUpdate(existing []byte, data models.ItemData, item models.TrackedItem) ([]byte, error) {
	fm := matter{
		ID:          item.ID,
		Title:       data.Title,
		Status:      data.Status,
		LastUpdated: m.now().UTC().Format(time.RFC3339),
	}

	if existing == nil {
		return buildDocument(fm, newBody(data.Title))
	}

	var prev matter
	body, err := frontmatter.Parse(bytes.NewReader(existing), &prev)
	if err != nil {
		body = existing
	}
	return buildDocument(fm, body)
}

func buildDocument(fm matter, body []byte) ([]byte, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("misc: marshal frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n")
	b.Write(body)
	return b.Bytes(), nil
}

func newBody(title string) []byte {
	return []byte(fmt.Sprintf(`
# %s

## Overview

[Add context about this item here]

## Actions

- [ ] [Add actions here]

## Notes

[Add notes, decisions, and important information here]
`, title))
}

func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
