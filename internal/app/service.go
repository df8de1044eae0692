// Package app is the application layer shared by the CLI and the HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/export"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/interpret"
	"github.com/pbaille/oniria/internal/journal"
	"github.com/pbaille/oniria/internal/similarity"
)

// Narrator writes a local interpretive text for an entry.
type Narrator interface {
	Narrate(e domain.Entry) string
}

// Source names what produced a Reading.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "gemini"
)

// Reading is interpretive text about one entry.
type Reading struct {
	DreamID string `json:"dreamId"`
	Text    string `json:"text"`
	Source  Source `json:"source"`
}

// Service composes the journal with the derived views and text generators.
type Service struct {
	journal  *journal.Journal
	narrator Narrator
	interp   interpret.Interpreter
	rnd      filter.Intn
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Service)

// WithInterpreter enables remote interpretation.
func WithInterpreter(i interpret.Interpreter) Option {
	return func(s *Service) { s.interp = i }
}

func WithRand(r filter.Intn) Option {
	return func(s *Service) { s.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(j *journal.Journal, n Narrator, opts ...Option) *Service {
	s := &Service{
		journal:  j,
		narrator: n,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the journal. A returned error is advisory: the service keeps
// working on an empty collection.
func (s *Service) Load(ctx context.Context) error {
	return s.journal.Load(ctx)
}

// HasInterpreter reports whether remote interpretation is configured.
func (s *Service) HasInterpreter() bool {
	return s.interp != nil
}

func (s *Service) Create(ctx context.Context, d domain.Draft) (domain.Entry, error) {
	return s.journal.Add(ctx, d)
}

// Edit patches the entry with exactly this id. Prefixes are not resolved
// here; callers that accept them go through Get first.
func (s *Service) Edit(ctx context.Context, id string, p domain.Patch) (domain.Entry, error) {
	return s.journal.Update(ctx, strings.TrimSpace(id), p)
}

// Delete removes the entry with exactly this id. An unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.journal.Remove(ctx, strings.TrimSpace(id))
}

// Get looks up an entry by id or by an unambiguous id prefix. It is meant
// for reads; writes take exact ids.
func (s *Service) Get(id string) (domain.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Entry{}, fmt.Errorf("get dream: %w", domain.ErrNotFound)
	}
	if e, err := s.journal.Get(id); err == nil {
		return e, nil
	}

	var found []domain.Entry
	for _, e := range s.journal.List() {
		if strings.HasPrefix(e.ID, id) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return domain.Entry{}, fmt.Errorf("get dream %s: %w", id, domain.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return domain.Entry{}, fmt.Errorf("%w: id prefix %q matches %d dreams", domain.ErrValidation, id, len(found))
	}
}

// List returns the entries matching c, newest first or by dream date.
func (s *Service) List(c filter.Criteria, byDate bool) []domain.Entry {
	out := filter.Filtered(s.journal.List(), c)
	if byDate {
		out = filter.SortByDate(out)
	}
	return out
}

func (s *Service) Random() (domain.Entry, error) {
	return filter.Random(s.journal.List(), s.rnd)
}

func (s *Service) Stats() filter.Summary {
	return filter.Summarize(s.journal.List())
}

// Narrate produces a local reading. Every call may differ.
func (s *Service) Narrate(id string) (Reading, error) {
	e, err := s.Get(id)
	if err != nil {
		return Reading{}, err
	}
	return Reading{DreamID: e.ID, Text: s.narrator.Narrate(e), Source: SourceLocal}, nil
}

// Interpret asks the remote model about the entry, or the local narrator
// when none is configured. Remote failures wrap interpret.ErrUnavailable.
func (s *Service) Interpret(ctx context.Context, id string) (Reading, error) {
	if s.interp == nil {
		return s.Narrate(id)
	}
	e, err := s.Get(id)
	if err != nil {
		return Reading{}, err
	}

	text, err := s.interp.Interpret(ctx, e.Description)
	if err != nil {
		s.log.Warn().Err(err).Str("id", e.ID).Msg("interpretation failed")
		return Reading{DreamID: e.ID}, fmt.Errorf("interpret dream %s: %w", e.ID, err)
	}
	return Reading{DreamID: e.ID, Text: text, Source: SourceRemote}, nil
}

// CancelInterpretation abandons an in-flight remote request, if the
// interpreter supports it.
func (s *Service) CancelInterpretation() {
	if c, ok := s.interp.(interface{ Cancel() }); ok {
		c.Cancel()
	}
}

// Related lists up to n entries that share the most text with id.
func (s *Service) Related(id string, n int) ([]similarity.Match, error) {
	e, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return similarity.Related(e, s.journal.List(), n), nil
}

// Export renders every entry in format f and names the file.
func (s *Service) Export(f export.Format) (data []byte, filename string, err error) {
	now := s.now()
	data, err = export.Render(f, s.journal.List(), now)
	if err != nil {
		return nil, "", err
	}
	return data, f.Filename(now), nil
}

// Import reads a backup document and merges it into the journal.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := export.Parse(data)
	if err != nil {
		return 0, err
	}
	return s.journal.Import(ctx, entries)
}
