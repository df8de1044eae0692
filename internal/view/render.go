package view

import (
	"slices"
	"strings"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
)

const excerptRunes = 140

const (
	msgEmptyList    = "Nenhum sonho registrado ainda. Que tal anotar o primeiro?"
	msgEmptyJournal = "Registre alguns sonhos para ver seu diário emocional."
	msgEmptyResults = "Nenhum sonho encontrado com esses filtros."
	msgMissing      = "Sonho não encontrado."
)

// Card is an entry as shown in lists.
type Card struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Excerpt      string         `json:"excerpt"`
	Date         string         `json:"date"`
	Emotion      domain.Emotion `json:"emotion"`
	EmotionLabel string         `json:"emotionLabel"`
	Icon         string         `json:"icon"`
	Color        string         `json:"color"`
	Symbol       string         `json:"symbol"`
	Tags         []string       `json:"tags,omitempty"`
}

// Detail is the full view of one entry.
type Detail struct {
	Card
	FullDate    string `json:"fullDate"`
	Description string `json:"description"`
}

// EmotionOption is one choice of the form's emotion picker.
type EmotionOption struct {
	Value domain.Emotion `json:"value"`
	domain.Style
}

// Form holds the values the entry form starts with.
type Form struct {
	Editing  bool            `json:"editing"`
	ID       string          `json:"id,omitempty"`
	Values   domain.Draft    `json:"values"`
	Emotions []EmotionOption `json:"emotions"`
}

// Page is everything a presentation layer needs to draw the current state.
type Page struct {
	Screen   Screen          `json:"screen"`
	Cards    []Card          `json:"cards,omitempty"`
	Detail   *Detail         `json:"detail,omitempty"`
	Form     *Form           `json:"form,omitempty"`
	Charts   *filter.Summary `json:"charts,omitempty"`
	Criteria filter.Criteria `json:"criteria"`
	Results  []Card          `json:"results,omitempty"`
	Count    int             `json:"count"`
	Empty    string          `json:"empty,omitempty"`
	Modal    Modal           `json:"modal,omitempty"`
	Analysis string          `json:"analysis,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Render is a pure function of its arguments.
func Render(s State, entries []domain.Entry) Page {
	p := Page{
		Screen:   s.Screen,
		Criteria: s.Criteria,
		Modal:    s.Modal,
		Analysis: s.Analysis,
		Message:  s.Message,
	}

	switch s.Screen {
	case ScreenDetail:
		e, ok := find(entries, s.SelectedID)
		if !ok {
			p.Empty = msgMissing
			break
		}
		p.Detail = &Detail{Card: CardOf(e), FullDate: e.Date.Full(), Description: e.Description}

	case ScreenForm:
		p.Form = &Form{Emotions: emotionOptions(), Values: domain.Draft{Emotion: domain.DefaultEmotion}}
		if e, ok := find(entries, s.SelectedID); ok {
			p.Form.Editing = true
			p.Form.ID = e.ID
			p.Form.Values = domain.Draft{
				Title:       e.Title,
				Description: e.Description,
				Date:        e.Date,
				Emotion:     e.Emotion,
				Symbol:      e.Symbol,
				Tags:        e.Tags,
			}
		}

	case ScreenJournal:
		p.Count = len(entries)
		if len(entries) == 0 {
			p.Empty = msgEmptyJournal
			break
		}
		sum := filter.Summarize(entries)
		p.Charts = &sum

	case ScreenExplore:
		results := filter.Filtered(entries, s.Criteria)
		p.Results = cards(results)
		p.Count = len(results)
		if len(results) == 0 {
			p.Empty = msgEmptyResults
		}

	default:
		p.Screen = ScreenList
		p.Cards = cards(entries)
		p.Count = len(entries)
		if len(entries) == 0 {
			p.Empty = msgEmptyList
		}
	}
	return p
}

// CardOf builds the list card of e.
func CardOf(e domain.Entry) Card {
	st := e.Emotion.Style()
	sym := e.Symbol
	if sym == "" {
		sym = st.Icon
	}
	return Card{
		ID:           e.ID,
		Title:        e.Title,
		Excerpt:      excerpt(e.Description, excerptRunes),
		Date:         e.Date.Long(),
		Emotion:      e.Emotion,
		EmotionLabel: st.Label,
		Icon:         st.Icon,
		Color:        st.Color,
		Symbol:       sym,
		Tags:         slices.Clone([]string(e.Tags)),
	}
}

func cards(entries []domain.Entry) []Card {
	out := make([]Card, len(entries))
	for i, e := range entries {
		out[i] = CardOf(e)
	}
	return out
}

func find(entries []domain.Entry, id string) (domain.Entry, bool) {
	if id == "" {
		return domain.Entry{}, false
	}
	i := slices.IndexFunc(entries, func(e domain.Entry) bool { return e.ID == id })
	if i < 0 {
		return domain.Entry{}, false
	}
	return entries[i], true
}

func emotionOptions() []EmotionOption {
	var out []EmotionOption
	for _, e := range domain.Emotions() {
		out = append(out, EmotionOption{Value: e, Style: e.Style()})
	}
	return out
}

// excerpt shortens s to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
