// Package apperr defines the error taxonomy shared across the CLI.
package apperr

import "errors"

var (
	// ErrConfig marks malformed or missing configuration fields. Fatal to
	// the affected item's setup, not to the whole run.
	ErrConfig = errors.New("config error")
	// ErrFetch marks an external system that was unreachable or returned
	// unusable data. Recorded per item; sibling items continue.
	ErrFetch = errors.New("fetch error")
	// ErrStorage marks a filesystem read or write failure.
	ErrStorage = errors.New("storage error")
	// ErrCommand marks an agenda section command that failed or timed out.
	// Degrades to an inline placeholder, never fatal.
	ErrCommand = errors.New("command error")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
