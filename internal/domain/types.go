package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one dream in the journal
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description" yaml:"description" validate:"required"`
	Date        Date      `json:"date" yaml:"date"`
	Emotion     Emotion   `json:"emotion" yaml:"emotion"`
	Symbol      string    `json:"symbol" yaml:"symbol"`
	Tags        Tags      `json:"tags" yaml:"tags"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// UnmarshalJSON accepts numeric ids as written by older IndexedDB backups.
func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		e.ID = ""
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &e.ID); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
	default:
		e.ID = string(raw)
	}
	return nil
}

// Validate checks the fields every stored entry must carry.
func (e Entry) Validate() error {
	if err := validateStruct(e); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrValidation)
	}
	return nil
}

// Draft is the user input for a new entry. Zero fields take defaults.
type Draft struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Date        Date    `json:"date,omitempty"`
	Emotion     Emotion `json:"emotion,omitempty"`
	Symbol      string  `json:"symbol,omitempty"`
	Tags        Tags    `json:"tags,omitempty"`
}

// Normalize trims free text so blank input counts as missing.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Emotion = Emotion(strings.TrimSpace(string(d.Emotion)))
	d.Symbol = strings.TrimSpace(d.Symbol)
	d.Tags = NormalizeTags(d.Tags)
	return d
}

// Validate reports ErrValidation when title or description is missing.
func (d Draft) Validate() error {
	return validateStruct(d.Normalize())
}

// Entry builds an entry from the draft, filling defaults relative to now.
// The id is left for the journal to assign.
func (d Draft) Entry(now time.Time) Entry {
	d = d.Normalize()
	e := Entry{
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		Emotion:     d.Emotion,
		Symbol:      d.Symbol,
		Tags:        d.Tags,
		CreatedAt:   now.UTC(),
	}
	if e.Date.IsZero() {
		e.Date = DateOf(now)
	}
	if e.Emotion == "" {
		e.Emotion = DefaultEmotion
	}
	if e.Symbol == "" {
		e.Symbol = e.Emotion.Icon()
	}
	return e
}

// Patch holds a partial update. Nil fields keep the stored value.
type Patch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *Date    `json:"date,omitempty"`
	Emotion     *Emotion `json:"emotion,omitempty"`
	Symbol      *string  `json:"symbol,omitempty"`
	Tags        *Tags    `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil &&
		p.Emotion == nil && p.Symbol == nil && p.Tags == nil
}

// Apply merges the patch over e. id and createdAt are never touched.
func (p Patch) Apply(e Entry) Entry {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Emotion != nil {
		e.Emotion = Emotion(strings.TrimSpace(string(*p.Emotion)))
		if e.Emotion == "" {
			e.Emotion = DefaultEmotion
		}
	}
	if p.Symbol != nil {
		e.Symbol = strings.TrimSpace(*p.Symbol)
	}
	if p.Tags != nil {
		e.Tags = NormalizeTags(*p.Tags)
	}
	return e
}

// Patch turns a full form submission into a patch that replaces every
// field. A zero date keeps the stored one.
func (d Draft) Patch() Patch {
	d = d.Normalize()
	p := Patch{
		Title:       &d.Title,
		Description: &d.Description,
		Emotion:     &d.Emotion,
		Symbol:      &d.Symbol,
		Tags:        &d.Tags,
	}
	if !d.Date.IsZero() {
		p.Date = &d.Date
	}
	return p
}
