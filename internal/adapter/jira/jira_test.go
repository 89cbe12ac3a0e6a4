package jira

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/models"
	"github.com/gameplanhq/gameplan/internal/testutil"
)

const issueJSON = `{
	"key": "PROJ-1",
	"fields": {
		"summary": "Fix login",
		"status": {"name": "Open"},
		"assignee": {"displayName": "Ada Lovelace"},
		"updated": "2026-01-15T10:30:00.000+0000"
	}
}`

const commentsJSON = `{
	"comments": [
		{
			"author": {"displayName": "Grace Hopper"},
			"created": "2026-01-14T09:00:00.000+0000",
			"body": "Looking into this."
		},
		{
			"author": {"displayName": "Ada Lovelace"},
			"created": "2026-01-15T10:30:00.000+0000",
			"body": "Root cause found."
		}
	]
}`

func mustUnmarshalJSON(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfig(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})

	items, err := j.ParseConfig(adapter.Area{Items: []map[string]any{
		{"issue": "PROJ-1"},
		{"issue": "PROJ-2", "env": "staging"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "PROJ-1" || items[0].Adapter != "jira" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Metadata["env"] != "staging" {
		t.Errorf("metadata not carried: %+v", items[1])
	}
}

func TestParseConfigMissingIssue(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	_, err := j.ParseConfig(adapter.Area{Items: []map[string]any{{"env": "prod"}}})
	if !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestFetchItem(t *testing.T) {
	runner := &testutil.FakeRunner{Outputs: map[string][]byte{
		"/rest/api/2/issue/PROJ-1":         []byte(issueJSON),
		"/rest/api/2/issue/PROJ-1/comment": []byte(commentsJSON),
	}}
	j := New(adapter.Area{}, runner)

	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira", Metadata: map[string]any{"issue": "PROJ-1"}}
	data, err := j.FetchItem(context.Background(), item, "")
	if err != nil {
		t.Fatal(err)
	}
	if data.Title != "Fix login" {
		t.Errorf("Title = %q", data.Title)
	}
	if data.Status != "Open" {
		t.Errorf("Status = %q", data.Status)
	}
	if _, ok := data.Raw["comments"]; !ok {
		t.Error("comments not attached to raw data")
	}

	// Both calls go to the default binary.
	if len(runner.Calls) != 2 || runner.Calls[0][0] != "jirahhh" {
		t.Errorf("calls = %v", runner.Calls)
	}
}

func TestFetchItemCommandFailure(t *testing.T) {
	runner := &testutil.FakeRunner{OutputErr: errors.New("exit status 1")}
	j := New(adapter.Area{}, runner)

	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira", Metadata: map[string]any{"issue": "PROJ-1"}}
	_, err := j.FetchItem(context.Background(), item, "")
	if !errors.Is(err, apperr.ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}

func TestFetchItemInvalidJSON(t *testing.T) {
	runner := &testutil.FakeRunner{Outputs: map[string][]byte{
		"/rest/api/2/issue/PROJ-1": []byte("jirahhh: unexpected banner output"),
	}}
	j := New(adapter.Area{}, runner)

	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira", Metadata: map[string]any{"issue": "PROJ-1"}}
	_, err := j.FetchItem(context.Background(), item, "")
	if !errors.Is(err, apperr.ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}

func TestFetchItemBinaryOverride(t *testing.T) {
	runner := &testutil.FakeRunner{Outputs: map[string][]byte{
		"/rest/api/2/issue/PROJ-1": []byte(issueJSON),
	}}
	j := New(adapter.Area{BinaryPath: "/opt/bin/jirahhh"}, runner)

	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira", Metadata: map[string]any{"issue": "PROJ-1"}}
	if _, err := j.FetchItem(context.Background(), item, ""); err != nil {
		t.Fatal(err)
	}
	if runner.Calls[0][0] != "/opt/bin/jirahhh" {
		t.Errorf("binary = %q", runner.Calls[0][0])
	}
}

func TestStoragePath(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}

	if got := j.StoragePath(item, "Fix login bug"); got != "tracking/areas/jira/PROJ-1-fix-login-bug/README.md" {
		t.Errorf("StoragePath = %q", got)
	}
	if got := j.StoragePath(item, ""); got != "tracking/areas/jira/PROJ-1/README.md" {
		t.Errorf("StoragePath without title = %q", got)
	}
}

func TestMergeUpdateNewDocument(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}
	data := models.ItemData{
		Title:  "Fix login",
		Status: "Open",
		Raw: map[string]any{
			"fields": map[string]any{
				"assignee": map[string]any{"displayName": "Ada Lovelace"},
			},
		},
	}

	out, err := j.MergeUpdate(nil, data, item)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(out)
	for _, want := range []string{
		"# PROJ-1: Fix login",
		"**Status**: Open",
		"**Assignee**: Ada Lovelace",
		"## Overview",
		"## Notes",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("new document missing %q:\n%s", want, doc)
		}
	}
}

func TestMergeUpdatePreservesHumanContent(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}

	existing := []byte(`# PROJ-1: Fix login

**Status**: Open
**Assignee**: Ada Lovelace

## Overview
The login form drops sessions. My own investigation notes.

## Notes
- decided to patch the cookie path
`)
	data := models.ItemData{
		Title:  "Fix login",
		Status: "In Progress",
		Raw: map[string]any{
			"fields": map[string]any{
				"assignee": map[string]any{"displayName": "Grace Hopper"},
			},
		},
	}

	out, err := j.MergeUpdate(existing, data, item)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(out)
	if !strings.Contains(doc, "**Status**: In Progress") {
		t.Errorf("status not updated:\n%s", doc)
	}
	if !strings.Contains(doc, "**Assignee**: Grace Hopper") {
		t.Errorf("assignee not updated:\n%s", doc)
	}
	if !strings.Contains(doc, "My own investigation notes.") {
		t.Errorf("human overview lost:\n%s", doc)
	}
	if !strings.Contains(doc, "- decided to patch the cookie path") {
		t.Errorf("human notes lost:\n%s", doc)
	}
}

func TestMergeUpdateIdempotent(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}
	data := models.ItemData{Title: "Fix login", Status: "Open", Raw: map[string]any{}}

	first, err := j.MergeUpdate(nil, data, item)
	if err != nil {
		t.Fatal(err)
	}
	second, err := j.MergeUpdate(first, data, item)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("second merge changed the document:\n%q\nvs\n%q", first, second)
	}
}

func TestMergeUpdateActivityLog(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}

	existing := []byte(`# PROJ-1: Fix login

**Status**: Open

## Activity Log
*(Auto-synced from Jira)*

## Notes
keep this
`)
	var comments map[string]any
	mustUnmarshalJSON(t, commentsJSON, &comments)
	data := models.ItemData{
		Title:  "Fix login",
		Status: "Open",
		Raw:    map[string]any{"comments": comments},
	}

	out, err := j.MergeUpdate(existing, data, item)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(out)

	// Most recent comment first.
	ada := strings.Index(doc, "### Ada Lovelace - 2026-01-15 10:30 UTC")
	grace := strings.Index(doc, "### Grace Hopper - 2026-01-14 09:00 UTC")
	if ada < 0 || grace < 0 {
		t.Fatalf("comments missing:\n%s", doc)
	}
	if ada > grace {
		t.Errorf("comments not newest-first:\n%s", doc)
	}
	if !strings.Contains(doc, "keep this") {
		t.Errorf("following section lost:\n%s", doc)
	}
}

func TestMergeUpdateNoActivitySection(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})
	item := models.TrackedItem{ID: "PROJ-1", Adapter: "jira"}

	existing := []byte("# PROJ-1: Fix login\n\n**Status**: Open\n\n## Notes\nmine\n")
	var comments map[string]any
	mustUnmarshalJSON(t, commentsJSON, &comments)
	data := models.ItemData{Title: "Fix login", Status: "Open", Raw: map[string]any{"comments": comments}}

	out, err := j.MergeUpdate(existing, data, item)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "Auto-synced") {
		t.Errorf("activity log injected into a document without the section:\n%s", out)
	}
}

func TestRemoteCursor(t *testing.T) {
	j := New(adapter.Area{}, &testutil.FakeRunner{})

	data := models.ItemData{Raw: map[string]any{
		"fields": map[string]any{"updated": "2026-01-15T10:30:00.000+0000"},
	}}
	if got := j.RemoteCursor(data); got != "2026-01-15T10:30:00.000+0000" {
		t.Errorf("RemoteCursor = %q", got)
	}
	if got := j.RemoteCursor(models.ItemData{Raw: map[string]any{}}); got != "" {
		t.Errorf("RemoteCursor without fields = %q", got)
	}
}
