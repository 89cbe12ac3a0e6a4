package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/gameplanhq/gameplan/internal/apperr"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	got, err := Init(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("Init = %q, want %q", got, dir)
	}

	for _, d := range []string{
		"tracking/areas/jira",
		"tracking/areas/jira/archive",
	} {
		info, err := os.Stat(filepath.Join(dir, d))
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", d, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "gameplan.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var cfg struct {
		Areas struct {
			Jira struct {
				Items []map[string]any `yaml:"items"`
			} `yaml:"jira"`
		} `yaml:"areas"`
		Agenda struct {
			Sections []struct {
				Name    string `yaml:"name"`
				Command string `yaml:"command"`
			} `yaml:"sections"`
		} `yaml:"agenda"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if cfg.Areas.Jira.Items == nil || len(cfg.Areas.Jira.Items) != 0 {
		t.Errorf("jira items = %v, want empty list", cfg.Areas.Jira.Items)
	}
	if len(cfg.Agenda.Sections) != 2 {
		t.Fatalf("got %d agenda sections, want 2", len(cfg.Agenda.Sections))
	}
	if cfg.Agenda.Sections[0].Name != "Focus & Priorities" {
		t.Errorf("first section = %+v", cfg.Agenda.Sections[0])
	}
	for _, s := range cfg.Agenda.Sections {
		if s.Command != "" {
			t.Errorf("default section %q is command-driven", s.Name)
		}
	}
}

func TestInitAlreadyInitialized(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := Init(dir); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}
