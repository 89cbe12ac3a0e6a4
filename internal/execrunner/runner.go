// Package execrunner isolates subprocess execution behind an injected
// capability so tests can substitute a deterministic fake.
package execrunner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Runner executes external commands. Both methods block until the command
// exits or ctx is done; callers bound every invocation with a timeout.
type Runner interface {
	// Output runs an argv-style command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Shell runs a shell command line via "sh -c" in dir with extra
	// environment entries, returning captured stdout and stderr.
	Shell(ctx context.Context, command, dir string, env []string) (stdout, stderr string, err error)
}

// Exec is the production Runner backed by os/exec.
type Exec struct{}

func (Exec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return out.Bytes(), nil
}

func (Exec) Shell(ctx context.Context, command, dir string, env []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return out.String(), errBuf.String(), err
}
