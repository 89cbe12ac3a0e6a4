// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/gameplanhq/gameplan/internal/models"

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
