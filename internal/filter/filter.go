// Package filter derives filtered views and statistics from a snapshot of
// the journal. Nothing here mutates its input.
package filter

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pbaille/oniria/internal/domain"
)

// Criteria are ANDed. Empty fields match everything.
type Criteria struct {
	Keyword string         `json:"keyword,omitempty"`
	Tag     string         `json:"tag,omitempty"`
	Emotion domain.Emotion `json:"emotion,omitempty"`
}

func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Keyword) == "" && strings.TrimSpace(c.Tag) == "" && c.Emotion == ""
}

// Match reports whether e passes every non-empty criterion. Keyword looks at
// title, description and each tag; tag looks at the joined tag list.
func (c Criteria) Match(e domain.Entry) bool {
	if kw := strings.ToLower(strings.TrimSpace(c.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(e.Title), kw) &&
			!strings.Contains(strings.ToLower(e.Description), kw) &&
			!slices.ContainsFunc(e.Tags, func(t string) bool { return strings.Contains(strings.ToLower(t), kw) }) {
			return false
		}
	}
	if tag := strings.ToLower(strings.TrimSpace(c.Tag)); tag != "" {
		if !strings.Contains(strings.ToLower(e.Tags.Joined()), tag) {
			return false
		}
	}
	if c.Emotion != "" && e.Emotion != c.Emotion {
		return false
	}
	return true
}

// Filtered returns the matching entries in input order.
func Filtered(entries []domain.Entry, c Criteria) []domain.Entry {
	if c.Empty() {
		return slices.Clone(entries)
	}
	var out []domain.Entry
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Intn is the slice of *rand.Rand that Random needs.
type Intn interface {
	IntN(n int) int
}

// Random picks one entry uniformly. A nil r uses the global source.
func Random(entries []domain.Entry, r Intn) (domain.Entry, error) {
	if len(entries) == 0 {
		return domain.Entry{}, fmt.Errorf("random dream: %w", domain.ErrNotFound)
	}
	var i int
	if r == nil {
		i = rand.IntN(len(entries))
	} else {
		i = r.IntN(len(entries))
	}
	return entries[i], nil
}

// SortByDate returns a copy ordered by dream date, most recent first.
// Entries on the same day keep their relative order.
func SortByDate(entries []domain.Entry) []domain.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b domain.Entry) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}
