// Package journal holds the canonical in-memory collection of dreams and
// keeps it in step with a storage backend. Writes go to the backend first
// and reach memory only once the backend accepted them.
package journal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/store"
)

// Journal is safe for concurrent use.
type Journal struct {
	mu      sync.RWMutex
	backend store.Backend
	entries []domain.Entry

	log   zerolog.Logger
	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Journal.
type Option func(*Journal)

func WithLogger(l zerolog.Logger) Option {
	return func(j *Journal) { j.log = l }
}

// WithClock replaces time.Now for createdAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithIDs replaces the UUIDv7 generator.
func WithIDs(newID func() (string, error)) Option {
	return func(j *Journal) { j.newID = newID }
}

// New returns an empty journal over b. Call Load to read stored entries.
func New(b store.Backend, opts ...Option) *Journal {
	j := &Journal{
		backend: b,
		log:     zerolog.Nop(),
		now:     time.Now,
		newID:   newUUID,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// Load replaces the collection with the backend contents. On failure the
// collection is left empty and the error wraps domain.ErrStorageUnavailable.
func (j *Journal) Load(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.loadLocked(ctx)
}

func (j *Journal) loadLocked(ctx context.Context) error {
	entries, err := j.backend.ListAll(ctx)
	if err != nil {
		j.entries = nil
		j.log.Warn().Err(err).Msg("journal load failed, starting empty")
		return fmt.Errorf("load journal: %w", unavailable(err))
	}
	sortNewestFirst(entries)
	j.entries = entries
	j.log.Debug().Int("count", len(entries)).Msg("journal loaded")
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// sortNewestFirst orders by createdAt descending, ties by id descending.
func sortNewestFirst(entries []domain.Entry) {
	slices.SortStableFunc(entries, func(a, b domain.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}

// Add validates the draft, stores the resulting entry and prepends it.
func (j *Journal) Add(ctx context.Context, d domain.Draft) (domain.Entry, error) {
	if err := d.Validate(); err != nil {
		return domain.Entry{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	e := d.Entry(j.now())
	id, err := j.newID()
	if err != nil {
		return domain.Entry{}, err
	}
	e.ID = id

	if err := j.backend.Put(ctx, e); err != nil {
		j.log.Error().Err(err).Str("id", e.ID).Msg("persist new dream")
		return domain.Entry{}, fmt.Errorf("add dream: %w", err)
	}
	j.entries = append([]domain.Entry{e}, j.entries...)
	j.log.Info().Str("id", e.ID).Str("emotion", string(e.Emotion)).Msg("dream added")
	return e, nil
}

// Update merges p into the entry with the given id. id and createdAt never
// change. A symbol that only mirrored the old emotion follows a new one.
func (j *Journal) Update(ctx context.Context, id string, p domain.Patch) (domain.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexLocked(id)
	if i < 0 {
		return domain.Entry{}, fmt.Errorf("update dream %s: %w", id, domain.ErrNotFound)
	}
	old := j.entries[i]
	updated := p.Apply(old)
	if p.Symbol == nil && p.Emotion != nil {
		updated.Symbol = domain.SymbolFor(updated.Emotion, old.Symbol)
	}
	if updated.Symbol == "" {
		updated.Symbol = updated.Emotion.Icon()
	}
	if err := updated.Validate(); err != nil {
		return domain.Entry{}, err
	}

	if err := j.backend.Put(ctx, updated); err != nil {
		j.log.Error().Err(err).Str("id", id).Msg("persist dream update")
		return domain.Entry{}, fmt.Errorf("update dream %s: %w", id, err)
	}
	j.entries[i] = updated
	j.log.Info().Str("id", id).Msg("dream updated")
	return updated, nil
}

// Remove deletes the entry. An unknown id is a no-op.
func (j *Journal) Remove(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexLocked(id)
	if i < 0 {
		return nil
	}
	if err := j.backend.Delete(ctx, id); err != nil {
		j.log.Error().Err(err).Str("id", id).Msg("persist dream removal")
		return fmt.Errorf("remove dream %s: %w", id, err)
	}
	j.entries = slices.Delete(j.entries, i, i+1)
	j.log.Info().Str("id", id).Msg("dream removed")
	return nil
}

func (j *Journal) Get(id string) (domain.Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if i := j.indexLocked(id); i >= 0 {
		return j.entries[i], nil
	}
	return domain.Entry{}, fmt.Errorf("get dream %s: %w", id, domain.ErrNotFound)
}

// List returns a copy of the collection, newest first.
func (j *Journal) List() []domain.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.entries)
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Import upserts foreign entries, keeping their ids and createdAt when
// present, then reloads. Nothing is written if any entry is invalid. An id
// repeated in the input is written once, with its last occurrence, and
// counted once.
func (j *Journal) Import(ctx context.Context, entries []domain.Entry) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	prepared := make([]domain.Entry, 0, len(entries))
	at := make(map[string]int, len(entries))
	for n, e := range entries {
		e, err := j.prepareImport(e, now)
		if err != nil {
			return 0, fmt.Errorf("import dream %d: %w", n+1, err)
		}
		if i, ok := at[e.ID]; ok {
			prepared[i] = e
			continue
		}
		at[e.ID] = len(prepared)
		prepared = append(prepared, e)
	}

	for _, e := range prepared {
		if err := j.backend.Put(ctx, e); err != nil {
			j.log.Error().Err(err).Str("id", e.ID).Msg("persist imported dream")
			err = fmt.Errorf("import dream %s: %w", e.ID, err)
			if rerr := j.loadLocked(ctx); rerr != nil {
				return 0, errors.Join(err, rerr)
			}
			return 0, err
		}
	}
	if err := j.loadLocked(ctx); err != nil {
		return len(prepared), err
	}
	j.log.Info().Int("count", len(prepared)).Msg("dreams imported")
	return len(prepared), nil
}

func (j *Journal) prepareImport(e domain.Entry, now time.Time) (domain.Entry, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	if e.ID == "" {
		id, err := j.newID()
		if err != nil {
			return e, err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.Date.IsZero() {
		e.Date = domain.DateOf(e.CreatedAt)
	}
	if e.Emotion == "" {
		e.Emotion = domain.DefaultEmotion
	}
	if e.Symbol == "" {
		e.Symbol = e.Emotion.Icon()
	}
	e.Tags = domain.NormalizeTags(e.Tags)
	return e, e.Validate()
}

func (j *Journal) indexLocked(id string) int {
	return slices.IndexFunc(j.entries, func(e domain.Entry) bool { return e.ID == id })
}
