// Package models defines the domain types for Gameplan.
package models

import "time"

// TrackedItem identifies one external work item under gameplan's watch.
// Created when configuration is parsed; immutable during a sync run.
// Two items are the same item when (Adapter, ID) match.
type TrackedItem struct {
	ID       string         `json:"id"`
	Adapter  string         `json:"adapter"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ItemData is the state fetched from a tracking system for one item.
// Produced fresh on every fetch and projected into markdown; never
// persisted directly.
type ItemData struct {
	Title  string         `json:"title"`
	Status string         `json:"status"`
	// Raw holds the adapter-specific fetch payload (for jira, the issue JSON
	// plus a comments wrapper); consumed by that adapter's MergeUpdate only.
	Raw map[string]any `json:"-"`
}

// FileMetadata is a lightweight representation returned by storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
