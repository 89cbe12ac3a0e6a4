package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/gameplanhq/gameplan/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigOverDefaults(t *testing.T) {
	path := writeConfig(t, `
areas:
  jira:
    items:
      - issue: PROJ-1
agenda:
  sections:
    - name: Focus
      emoji: "🎯"
    - name: Tracked Items
      command: gameplan items
`)

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}

	// Defaults survive where the file is silent.
	if cfg.App.HTTP.Port != 7390 {
		t.Errorf("Port = %d, want default 7390", cfg.App.HTTP.Port)
	}
	if cfg.SQLite.Path != ".gameplan/index.db" {
		t.Errorf("SQLite path = %q", cfg.SQLite.Path)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("auth enabled by default")
	}

	jira, ok := cfg.Areas["jira"]
	if !ok || len(jira.Items) != 1 || jira.Items[0]["issue"] != "PROJ-1" {
		t.Errorf("jira area = %+v", jira)
	}
	if len(cfg.Agenda.Sections) != 2 || !cfg.Agenda.Sections[1].IsCommand() {
		t.Errorf("agenda sections = %+v", cfg.Agenda.Sections)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("GAMEPLAN_TEST_TOKEN", "sekrit")
	path := writeConfig(t, `
auth:
  mode: token
  token: $GAMEPLAN_TEST_TOKEN
`)

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.Token != "sekrit" {
		t.Errorf("Token = %q", cfg.Auth.Token)
	}
	if !cfg.Auth.AuthEnabled() {
		t.Error("token mode not enabled")
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	path := writeConfig(t, `
app:
  http:
    port: 99999
`)
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err == nil {
		t.Error("out-of-range port accepted")
	}
}

func TestAuthValidation(t *testing.T) {
	c := AuthConfig{Mode: AuthModeToken}
	if err := c.Validate(); err == nil {
		t.Error("token mode without token accepted")
	}

	c = AuthConfig{Mode: "basic"}
	if err := c.Validate(); err == nil {
		t.Error("unknown auth mode accepted")
	}

	c = AuthConfig{}
	if err := c.Validate(); err != nil {
		t.Errorf("empty auth config rejected: %v", err)
	}
	if c.Mode != AuthModeDisabled {
		t.Errorf("Mode = %q, want disabled default", c.Mode)
	}
}

func TestAgendaValidation(t *testing.T) {
	path := writeConfig(t, `
agenda:
  sections:
    - name: Focus
    - name: Focus
`)
	cfg := NewDefaultConfig()
	err := pkgconfig.Load(path, cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate section") {
		t.Errorf("duplicate sections accepted: %v", err)
	}

	path = writeConfig(t, `
agenda:
  sections:
    - emoji: "🎯"
`)
	cfg = NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err == nil {
		t.Error("unnamed section accepted")
	}
}
