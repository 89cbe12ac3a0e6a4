// Package scaffold sets up the directory structure and configuration file
// for a new gameplan workspace.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gameplanhq/gameplan/internal/agenda"
	"github.com/gameplanhq/gameplan/internal/apperr"
)

const configFileName = "gameplan.yaml"

// defaultConfig mirrors the gameplan.yaml layout; struct order is the order
// written to disk.
type defaultConfig struct {
	Areas struct {
		Jira struct {
			Items []map[string]any `yaml:"items"`
		} `yaml:"jira"`
	} `yaml:"areas"`
	Agenda struct {
		Sections []agenda.Section `yaml:"sections"`
	} `yaml:"agenda"`
}

// Init initializes a gameplan workspace at targetDir, creating the tracking
// tree and a starter gameplan.yaml. Fails with apperr.ErrAlreadyExists when
// the directory already holds a gameplan.yaml.
func Init(targetDir string) (string, error) {
	abs, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("scaffold: resolve target: %w", err)
	}

	configPath := filepath.Join(abs, configFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("%w: %s (this directory is already initialized)", apperr.ErrAlreadyExists, configPath)
	}

	for _, dir := range []string{
		filepath.Join(abs, "tracking", "areas", "jira"),
		filepath.Join(abs, "tracking", "areas", "jira", "archive"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: create %s: %v", apperr.ErrStorage, dir, err)
		}
	}

	cfg := defaultConfig{}
	cfg.Areas.Jira.Items = []map[string]any{}
	cfg.Agenda.Sections = []agenda.Section{
		{Name: "Focus & Priorities", Emoji: "🎯", Description: "What's urgent/important today"},
		{Name: "Notes", Emoji: "📔", Description: "Thoughts and observations"},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("scaffold: marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", apperr.ErrStorage, configPath, err)
	}

	return abs, nil
}
