// Package printers renders dreams and statistics for the terminal.
package printers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/similarity"
)

// idWidth is how much of an id the list shows; prefixes resolve on lookup.
const idWidth = 8

type PrettyPrint struct {
	Out io.Writer
	// FullIDs prints whole ids instead of prefixes.
	FullIDs bool
}

// New prints to color.Output, which handles colour on every platform.
func New() *PrettyPrint {
	return &PrettyPrint{Out: color.Output}
}

var (
	bold  = color.New(color.Bold)
	title = color.New(color.Bold, color.Underline)
	faint = color.New(color.Faint)
	idCol = color.New(color.FgHiYellow, color.Faint)
	quote = color.New(color.Italic, color.FgHiMagenta)
)

func (pp *PrettyPrint) shortID(id string) string {
	if pp.FullIDs || len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}

func (pp *PrettyPrint) TitleWithCount(t string, count int) {
	_, _ = title.Fprint(pp.Out, t)
	_, _ = faint.Fprintf(pp.Out, " - %d", count)
	switch count {
	case 1:
		_, _ = faint.Fprintln(pp.Out, " sonho")
	default:
		_, _ = faint.Fprintln(pp.Out, " sonhos")
	}
}

// List prints one row per entry.
func (pp *PrettyPrint) List(entries []domain.Entry) {
	if len(entries) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(pp.Out, " nenhum sonho")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Data"), "", bold.Sprint("Título"), bold.Sprint("Emoção"), bold.Sprint("Tags"))
	for _, e := range entries {
		tbl.AddRow(idCol.Sprint(pp.shortID(e.ID)), e.Date.Short(), e.Symbol, e.Title, emotion(e.Emotion), e.Tags.Joined())
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
}

// Entry prints the full view of one dream.
func (pp *PrettyPrint) Entry(e domain.Entry) {
	_, _ = title.Fprintf(pp.Out, "%s %s\n", e.Symbol, e.Title)
	_, _ = faint.Fprintf(pp.Out, "%s · %s\n", e.Date.Full(), e.ID)
	_, _ = fmt.Fprintf(pp.Out, "%s", emotion(e.Emotion))
	for _, t := range e.Tags {
		_, _ = faint.Fprintf(pp.Out, "  #%s", t)
	}
	_, _ = fmt.Fprintf(pp.Out, "\n\n%s\n", e.Description)
}

// Narrative prints interpretive text and where it came from.
func (pp *PrettyPrint) Narrative(text, source string) {
	_, _ = quote.Fprintf(pp.Out, "\"%s\"\n", text)
	if source != "" {
		_, _ = faint.Fprintf(pp.Out, "(%s)\n", source)
	}
}

func (pp *PrettyPrint) Related(matches []similarity.Match) {
	if len(matches) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(pp.Out, " nenhum sonho parecido")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Semelhança"), "", bold.Sprint("Título"))
	for _, m := range matches {
		tbl.AddRow(idCol.Sprint(pp.shortID(m.Entry.ID)), fmt.Sprintf("%.0f%%", m.Score*100), m.Entry.Symbol, m.Entry.Title)
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
}

// Stats prints the journal summary with bar charts.
func (pp *PrettyPrint) Stats(s filter.Summary) {
	pp.TitleWithCount("Diário", s.Total)
	if s.Total == 0 {
		return
	}

	common := "—"
	if s.CommonEmotion != "" {
		common = emotion(s.CommonEmotion)
	}
	tbl := uitable.New()
	tbl.AddRow("Emoção mais comum:", common)
	tbl.AddRow("Símbolo mais comum:", s.CommonSymbol)
	_, _ = fmt.Fprintln(pp.Out, tbl)

	_, _ = fmt.Fprintln(pp.Out)
	_, _ = title.Fprintln(pp.Out, "Emoções")
	bars := uitable.New()
	for _, sl := range s.Emotions {
		bars.AddRow(sl.Icon+" "+sl.Label, bar(sl.Count, s.Total), sl.Count)
	}
	_, _ = fmt.Fprintln(pp.Out, bars)

	_, _ = fmt.Fprintln(pp.Out)
	_, _ = title.Fprintln(pp.Out, "Sonhos por mês")
	months := uitable.New()
	for _, p := range s.Months {
		months.AddRow(p.Label, bar(p.Value, s.Total), p.Value)
	}
	_, _ = fmt.Fprintln(pp.Out, months)

	if len(s.Symbols) > 0 {
		_, _ = fmt.Fprintln(pp.Out)
		_, _ = title.Fprintln(pp.Out, "Símbolos")
		syms := make([]string, 0, len(s.Symbols))
		for sym := range s.Symbols {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			if s.Symbols[syms[i]] != s.Symbols[syms[j]] {
				return s.Symbols[syms[i]] > s.Symbols[syms[j]]
			}
			return syms[i] < syms[j]
		})
		line := make([]string, len(syms))
		for i, sym := range syms {
			line[i] = fmt.Sprintf("%s %d", sym, s.Symbols[sym])
		}
		_, _ = fmt.Fprintln(pp.Out, strings.Join(line, "   "))
	}
}

const barWidth = 24

func bar(n, total int) string {
	if total == 0 {
		return ""
	}
	w := n * barWidth / total
	if w == 0 && n > 0 {
		w = 1
	}
	return strings.Repeat("█", w)
}

// emotion renders the emotion label; unknown values print as typed.
func emotion(e domain.Emotion) string {
	st := e.Style()
	return st.Icon + " " + st.Label
}
