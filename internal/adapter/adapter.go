// Package adapter defines the contract every tracking-system integration
// implements, and the registry the CLI wires them into.
package adapter

import (
	"context"
	"fmt"

	"github.com/gameplanhq/gameplan/internal/models"
)

// Area is one adapter's section of gameplan.yaml.
type Area struct {
	Items []map[string]any `yaml:"items"`
	// BinaryPath overrides the adapter's external binary lookup.
	BinaryPath string `yaml:"binary_path"`
}

// Adapter is the capability set a tracking-system integration provides.
type Adapter interface {
	// Name returns the stable identifier used as the configuration key and
	// storage subdirectory name.
	Name() string
	// ParseConfig deterministically turns an area config into tracked items,
	// preserving input order. Missing required fields yield apperr.ErrConfig.
	ParseConfig(area Area) ([]models.TrackedItem, error)
	// FetchItem retrieves current state from the external system. since is an
	// optional RFC 3339 hint for incremental fetches; adapters may ignore it.
	// Failures wrap apperr.ErrFetch and never return partial data.
	FetchItem(ctx context.Context, item models.TrackedItem, since string) (models.ItemData, error)
	// StoragePath returns the workspace-relative README path for an item.
	// Pure; when title is non-empty the directory name carries its slug.
	StoragePath(item models.TrackedItem, title string) string
	// MergeUpdate produces the next document content. existing == nil means
	// no prior document; a fresh one is synthesized from the template.
	MergeUpdate(existing []byte, data models.ItemData, item models.TrackedItem) ([]byte, error)
}

// CursorReporter is an optional capability: adapters that can read a remote
// revision marker out of fetched data let the orchestrator flag items that
// changed upstream since the previous run.
type CursorReporter interface {
	RemoteCursor(data models.ItemData) string
}

// Registry maps adapter names to instances. It is built once at process start
// and passed by reference; there is no package-level adapter table.
type Registry struct {
	byName map[string]Adapter
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register adds an adapter; registering the same name twice is an error.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.byName[name] = a
	r.order = append(r.order, name)
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Names returns adapter names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
