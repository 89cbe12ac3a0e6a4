// Package jira syncs Jira issues through the jirahhh CLI
// (https://github.com/shanemcd/jirahhh) rather than direct API calls.
// The jirahhh binary reads JIRA_URL, JIRA_EMAIL, and JIRA_API_TOKEN from
// the environment; its path can be overridden via the area's binary_path.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/execrunner"
	"github.com/gameplanhq/gameplan/internal/mdedit"
	"github.com/gameplanhq/gameplan/internal/models"
)

const (
	defaultBinary = "jirahhh"
	fetchTimeout  = 30 * time.Second

	activityHeading = "## Activity Log"
)

// Jira is the adapter for Jira issues.
type Jira struct {
	area   adapter.Area
	runner execrunner.Runner
}

// New creates a Jira adapter for the given area config.
func New(area adapter.Area, runner execrunner.Runner) *Jira {
	return &Jira{area: area, runner: runner}
}

// Name implements adapter.Adapter.
func (j *Jira) Name() string { return "jira" }

// ParseConfig turns the area's item specs into tracked items. Each item
// spec must carry an "issue" key.
func (j *Jira) ParseConfig(area adapter.Area) ([]models.TrackedItem, error) {
	items := make([]models.TrackedItem, 0, len(area.Items))
	for i, spec := range area.Items {
		issue := stringValue(spec, "issue")
		if issue == "" {
			return nil, fmt.Errorf("%w: jira: item %d: missing issue key", apperr.ErrConfig, i)
		}
		items = append(items, models.TrackedItem{
			ID:       issue,
			Adapter:  "jira",
			Metadata: spec,
		})
	}
	return items, nil
}

// FetchItem fetches current issue state and comments via jirahhh. The since
// hint is currently unused; Jira fetches are always full.
func (j *Jira) FetchItem(ctx context.Context, item models.TrackedItem, since string) (models.ItemData, error) {
	key := stringValue(item.Metadata, "issue")
	if key == "" {
		key = item.ID
	}
	env := stringValue(item.Metadata, "env")
	if env == "" {
		env = "prod"
	}
	bin := j.area.BinaryPath
	if bin == "" {
		bin = defaultBinary
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	out, err := j.runner.Output(ctx, bin, "api", "GET", "/rest/api/2/issue/"+key, "--env", env)
	if err != nil {
		return models.ItemData{}, fmt.Errorf("%w: jira: fetch %s: %v", apperr.ErrFetch, key, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		return models.ItemData{}, fmt.Errorf("%w: jira: fetch %s: invalid JSON response", apperr.ErrFetch, key)
	}

	title, status := extractSummary(raw)

	// Comments are best-effort: a failed comment fetch degrades the
	// activity log, not the whole item.
	if commentsOut, cErr := j.runner.Output(ctx, bin, "api", "GET", "/rest/api/2/issue/"+key+"/comment", "--env", env); cErr == nil {
		var comments map[string]any
		if json.Unmarshal(commentsOut, &comments) == nil {
			raw["comments"] = comments
		}
	}

	return models.ItemData{
		Title:  title,
		Status: status,
		Raw:    raw,
	}, nil
}

// StoragePath implements adapter.Adapter.
func (j *Jira) StoragePath(item models.TrackedItem, title string) string {
	return path.Join("tracking", "areas", "jira", adapter.ItemDir(item.ID, title), "README.md")
}

// MergeUpdate updates the Status and Assignee fields and the Activity Log
// section while leaving every other byte of the document untouched.
func (j *Jira) MergeUpdate(existing []byte, data models.ItemData, item models.TrackedItem) ([]byte, error) {
	assignee := extractAssignee(data.Raw)

	if existing == nil {
		return []byte(newReadme(item.ID, data, assignee)), nil
	}

	doc := string(existing)
	doc = mdedit.SetField(doc, "Status", data.Status)
	doc = mdedit.SetField(doc, "Assignee", assignee)
	doc = updateActivityLog(doc, data)
	return []byte(doc), nil
}

// RemoteCursor implements adapter.CursorReporter using the issue's
// "updated" timestamp.
func (j *Jira) RemoteCursor(data models.ItemData) string {
	if fields, ok := data.Raw["fields"].(map[string]any); ok {
		return stringValue(fields, "updated")
	}
	return ""
}

func newReadme(key string, data models.ItemData, assignee string) string {
	return fmt.Sprintf(`# %s: %s

**Status**: %s
**Assignee**: %s

## Overview
[Add context about this issue here]

## Notes
[Add notes, decisions, and important information here]
`, key, data.Title, data.Status, assignee)
}

// updateActivityLog rewrites the Activity Log section from fetched comments,
// most recent first. Documents without the section are left alone.
func updateActivityLog(doc string, data models.ItemData) string {
	comments := extractComments(data.Raw)

	var b strings.Builder
	b.WriteString("*(Auto-synced from Jira)*")
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		author := "Unknown"
		if a, ok := c["author"].(map[string]any); ok {
			if name := stringValue(a, "displayName"); name != "" {
				author = name
			}
		}
		created := formatTimestamp(stringValue(c, "created"))
		body := strings.TrimSpace(stringValue(c, "body"))

		b.WriteString("\n\n### " + author + " - " + created + "\n\n")
		b.WriteString(body)
		b.WriteString("\n\n---")
	}

	out, _ := mdedit.ReplaceSection(doc, activityHeading, b.String())
	return out
}

func extractSummary(raw map[string]any) (title, status string) {
	if fields, ok := raw["fields"].(map[string]any); ok {
		title = stringValue(fields, "summary")
		switch s := fields["status"].(type) {
		case map[string]any:
			status = stringValue(s, "name")
		case string:
			status = s
		}
		return title, status
	}
	return stringValue(raw, "summary"), stringValue(raw, "status")
}

func extractAssignee(raw map[string]any) string {
	if fields, ok := raw["fields"].(map[string]any); ok {
		if a, ok := fields["assignee"].(map[string]any); ok {
			if name := stringValue(a, "displayName"); name != "" {
				return name
			}
		}
		return "Unassigned"
	}
	if a := stringValue(raw, "assignee"); a != "" {
		return a
	}
	return "Unassigned"
}

func extractComments(raw map[string]any) []map[string]any {
	wrapper, ok := raw["comments"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := wrapper["comments"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// formatTimestamp renders a Jira timestamp as "2006-01-02 15:04 UTC",
// passing unparseable values through unchanged.
func formatTimestamp(created string) string {
	if created == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
		if t, err := time.Parse(layout, created); err == nil {
			return t.UTC().Format("2006-01-02 15:04 UTC")
		}
	}
	return created
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
