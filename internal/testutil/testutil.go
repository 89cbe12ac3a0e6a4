// Package testutil provides shared test helpers for setting up workspaces
// and databases.
package testutil

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gameplan-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// FakeRunner is a scripted execrunner.Runner for tests. Output calls are
// answered from Outputs keyed by the subcommand (first argument); Shell calls
// are answered by the ShellFunc hook.
type FakeRunner struct {
	Outputs   map[string][]byte
	OutputErr error
	ShellFunc func(ctx context.Context, command string) (string, string, error)

	Calls [][]string
}

func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if f.OutputErr != nil {
		return nil, f.OutputErr
	}
	if len(args) > 0 {
		if out, ok := f.Outputs[args[0]]; ok {
			return out, nil
		}
		for _, a := range args {
			if out, ok := f.Outputs[a]; ok {
				return out, nil
			}
		}
	}
	return nil, errors.New("no scripted output")
}

func (f *FakeRunner) Shell(ctx context.Context, command, dir string, env []string) (string, string, error) {
	f.Calls = append(f.Calls, []string{"shell", command})
	if f.ShellFunc != nil {
		return f.ShellFunc(ctx, command)
	}
	return "", "", errors.New("no scripted shell")
}
