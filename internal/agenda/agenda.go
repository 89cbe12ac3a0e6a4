// Package agenda builds and refreshes the daily AGENDA.md document. Manual
// sections belong to the user and are never machine-overwritten;
// command-driven sections hold the captured output of configured shell
// commands.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/execrunner"
	"github.com/gameplanhq/gameplan/internal/mdedit"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// FileName is the agenda document, relative to the workspace root.
const FileName = "AGENDA.md"

const commandTimeout = 30 * time.Second

var dateHeaderRe = regexp.MustCompile(`(?m)^# Agenda - .*$`)

// Section describes one agenda section. A Command makes the section
// command-driven; without one the section is manual.
type Section struct {
	Name        string `yaml:"name"`
	Emoji       string `yaml:"emoji,omitempty"`
	Description string `yaml:"description,omitempty"`
	Command     string `yaml:"command,omitempty"`
}

// IsCommand reports whether the section is command-driven.
func (s *Section) IsCommand() bool {
	return s.Command != ""
}

// Heading returns the section's markdown heading line.
func (s *Section) Heading() string {
	if s.Emoji != "" {
		return "## " + s.Emoji + " " + s.Name
	}
	return "## " + s.Name
}

// Renderer renders and refreshes the agenda document.
type Renderer struct {
	store   storage.Provider
	runner  execrunner.Runner
	baseDir string
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Renderer. baseDir is the absolute workspace path; section
// commands run there with GAMEPLAN_BASE_DIR set.
func New(store storage.Provider, runner execrunner.Runner, baseDir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		store:   store,
		runner:  runner,
		baseDir: baseDir,
		logger:  logger,
		now:     time.Now,
	}
}

// Init creates AGENDA.md with a date header and one placeholder section per
// spec, in configured order. Fails with apperr.ErrAlreadyExists when the
// document is already there.
func (r *Renderer) Init(sections []Section) error {
	if r.store.Exists(FileName) {
		return fmt.Errorf("%w: %s (use refresh to update it)", apperr.ErrAlreadyExists, FileName)
	}

	lines := []string{r.dateHeader(), ""}
	for i := range sections {
		s := &sections[i]
		lines = append(lines, s.Heading())
		if s.IsCommand() {
			lines = append(lines, "[Run: "+s.Command+"]")
		} else {
			lines = append(lines, "["+s.Description+"]")
		}
		lines = append(lines, "")
	}

	if err := r.store.Write(FileName, []byte(strings.Join(lines, "\n"))); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// View returns the current agenda content without mutating anything.
func (r *Renderer) View() (string, error) {
	if !r.store.Exists(FileName) {
		return "", fmt.Errorf("%w: %s (run agenda init first)", apperr.ErrNotFound, FileName)
	}
	data, err := r.store.Read(FileName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return string(data), nil
}

// Refresh updates the date header and re-runs every command-driven section,
// splicing only that section's body. Manual sections and sections missing
// from the document are left untouched; a missing section logs a warning
// and is skipped, never fatal.
func (r *Renderer) Refresh(ctx context.Context, sections []Section) error {
	if !r.store.Exists(FileName) {
		return fmt.Errorf("%w: %s (run agenda init first)", apperr.ErrNotFound, FileName)
	}
	data, err := r.store.Read(FileName)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	content := mdedit.ReplaceFirst(string(data), dateHeaderRe, r.dateHeader())

	for i := range sections {
		s := &sections[i]
		if !s.IsCommand() {
			continue
		}
		body := r.runSection(ctx, s)
		updated, found := mdedit.ReplaceSection(content, s.Heading(), body)
		if !found {
			r.logger.Warn("agenda: section not found, skipping", slog.String("section", s.Name))
			continue
		}
		content = updated
	}

	if err := r.store.Write(FileName, []byte(content)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// runSection executes a section command and renders its output, degrading
// failures and timeouts to inline placeholders.
func (r *Renderer) runSection(ctx context.Context, s *Section) string {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	stdout, stderr, err := r.runner.Shell(ctx, s.Command, r.baseDir, []string{"GAMEPLAN_BASE_DIR=" + r.baseDir})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		r.logger.Warn("agenda: command timed out",
			slog.String("section", s.Name),
			slog.String("error", fmt.Errorf("%w: %s", apperr.ErrCommand, s.Command).Error()))
		return "[Error running command: Timeout]"
	case err != nil:
		r.logger.Warn("agenda: command failed",
			slog.String("section", s.Name),
			slog.String("error", fmt.Errorf("%w: %v", apperr.ErrCommand, err).Error()))
		if trimmed := strings.TrimSpace(stderr); trimmed != "" {
			return "[Error running command: Command failed]\n" + trimmed
		}
		return "[Error running command: Command failed]"
	}
	return strings.TrimSpace(stdout)
}

func (r *Renderer) dateHeader() string {
	return "# Agenda - " + r.now().Format("Monday, January 02, 2006")
}
