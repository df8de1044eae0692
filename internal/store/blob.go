package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"github.com/pbaille/oniria/internal/domain"
)

// blobKey is the single key the whole collection is serialized under.
const blobKey = "dreams"

// Blob keeps the collection as one JSON array in a diskv store. Every write
// rewrites the whole array through diskv's temp dir.
type Blob struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

var _ Backend = (*Blob)(nil)

// NewBlob opens the blob store rooted at basePath.
func NewBlob(basePath string) (*Blob, error) {
	tmp := filepath.Join(basePath, ".tmp")
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Blob{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		TempDir:      tmp,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func (b *Blob) read() ([]domain.Entry, error) {
	if !b.d.Has(blobKey) {
		return nil, nil
	}
	data, err := b.d.Read(blobKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read blob: %v", domain.ErrStorageUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode blob: %v", domain.ErrStorageUnavailable, err)
	}
	return entries, nil
}

func (b *Blob) write(entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode blob: %w", err)
	}
	if err := b.d.Write(blobKey, data); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// ListAll returns the entries in stored order.
func (b *Blob) ListAll(_ context.Context) ([]domain.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read()
}

func (b *Blob) Get(_ context.Context, id string) (domain.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := b.read()
	if err != nil {
		return domain.Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Entry{}, fmt.Errorf("get dream %s: %w", id, domain.ErrNotFound)
}

// Put replaces an entry in place or prepends a new one.
func (b *Blob) Put(_ context.Context, e domain.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := b.read()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return b.write(entries)
		}
	}
	return b.write(append([]domain.Entry{e}, entries...))
}

func (b *Blob) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := b.read()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return b.write(kept)
}

func (b *Blob) Close() error {
	return nil
}
