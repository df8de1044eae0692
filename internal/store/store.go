// Package store persists journal entries. Two backends implement the same
// Backend contract: an embedded sqlite database with one row per entry and a
// diskv key-value store holding the whole collection as a single JSON blob.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/oniria/internal/domain"
)

// Backend is the storage contract the journal is written against.
type Backend interface {
	// ListAll returns every stored entry. Order is backend-defined.
	ListAll(ctx context.Context) ([]domain.Entry, error)
	// Get returns domain.ErrNotFound when id is absent.
	Get(ctx context.Context, id string) (domain.Entry, error)
	// Put inserts e or replaces the entry with the same id.
	Put(ctx context.Context, e domain.Entry) error
	// Delete removes id; an absent id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindBlob   Kind = "blob"
)

// Open creates the backend of the given kind under dataDir.
func Open(kind Kind, dataDir string) (Backend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch kind {
	case KindSQLite, "":
		return NewSQLite(filepath.Join(dataDir, "oniria.db"))
	case KindBlob:
		return NewBlob(filepath.Join(dataDir, "blob"))
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
