// Package store defines the backend-agnostic persistence contract for
// memory items and the sentinel errors its implementations report.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mementodev/mementod/internal/types"
)

// Sentinel errors returned by every Store implementation. Backends wrap
// these with fmt.Errorf("%w", ...) so callers can match with errors.Is
// regardless of which backend produced the failure.
var (
	// ErrNotFound is returned when an operation addresses an item id that
	// does not exist in the backend.
	ErrNotFound = errors.New("store: item not found")
	// ErrConflict is returned when an Add call collides with an existing
	// item id.
	ErrConflict = errors.New("store: item already exists")
	// ErrParse is returned when a backend cannot decode a record it is
	// responsible for reading back.
	ErrParse = errors.New("store: malformed record")
	// ErrUnsupported is returned for operations a backend does not
	// implement.
	ErrUnsupported = errors.New("store: operation not supported")
)

// NotFound wraps ErrNotFound with the offending id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Conflict wraps ErrConflict with the offending id.
func Conflict(id string) error {
	return fmt.Errorf("%w: %s", ErrConflict, id)
}

// ListFilter narrows List to a subset of items. Zero-valued fields are
// treated as wildcards.
type ListFilter struct {
	Scope  types.Scope
	Status types.Status
	Kind   types.Kind
}

// Stats summarizes a backend's contents for the `stats` command.
type Stats struct {
	TotalCount    int            `json:"total_count"`
	ActiveCount   int            `json:"active_count"`
	ArchivedCount int            `json:"archived_count"`
	ByKind        map[string]int `json:"by_kind"`
	ByScope       map[string]int `json:"by_scope"`
}

// NewStats returns a zero Stats with every scope key present, so the
// by_scope shape is the same no matter which scopes currently hold items.
func NewStats() Stats {
	return Stats{
		ByKind: map[string]int{},
		ByScope: map[string]int{
			string(types.ScopeGlobal): 0,
			string(types.ScopeRepo):   0,
			string(types.ScopeDir):    0,
		},
	}
}

// Store is the persistence contract both backends implement. Every
// blocking method takes a context so callers can bound slow disk or
// database operations.
type Store interface {
	// Add persists a new item. It returns ErrConflict if id already exists.
	Add(ctx context.Context, item *types.Item) error
	// Get returns the item with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*types.Item, error)
	// Update replaces the stored item with the same id. Nothing is bumped
	// automatically; the caller sets updated_at. It returns ErrNotFound if
	// id does not exist.
	Update(ctx context.Context, item *types.Item) error
	// Delete removes the item permanently. Deleting an id that does not
	// exist is a no-op, not an error.
	Delete(ctx context.Context, id string) error
	// List returns items matching filter, most recently updated first.
	List(ctx context.Context, filter ListFilter) ([]*types.Item, error)
	// Archive sets status to archived. It returns ErrNotFound if id does
	// not exist.
	Archive(ctx context.Context, id string) error
	// Unarchive sets status back to active. It returns ErrNotFound if id
	// does not exist.
	Unarchive(ctx context.Context, id string) error
	// Export returns every item in the backend regardless of status, in
	// updated_at-descending order.
	Export(ctx context.Context) ([]*types.Item, error)
	// Import reads one JSON-encoded item per line from r and upserts each
	// by id, overwriting existing records whose id matches. It returns the
	// count of items written. Backends diverge on a malformed line: the
	// file backend skips it and keeps going, while the relational backend
	// aborts and rolls back the whole import.
	Import(ctx context.Context, r io.Reader) (int, error)
	// Stats summarizes the backend's contents.
	Stats(ctx context.Context) (Stats, error)
	// Close releases any resources held by the backend.
	Close() error
}
