package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pbaille/oniria/internal/domain"
)

// CountByCategory counts entries per emotion. Unknown emotions are counted
// under their literal value.
func CountByCategory(entries []domain.Entry) map[domain.Emotion]int {
	counts := make(map[domain.Emotion]int)
	for _, e := range entries {
		counts[e.Emotion]++
	}
	return counts
}

func CountByGlyph(entries []domain.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Symbol]++
	}
	return counts
}

// CountByMonth groups by the dream date under "M/YYYY" keys.
func CountByMonth(entries []domain.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[MonthKey(e.Date)]++
	}
	return counts
}

func MonthKey(d domain.Date) string {
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Year())
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// MonthSeries returns the month counts in calendar order, keeping only the
// last n months that have entries. n <= 0 keeps them all.
func MonthSeries(entries []domain.Entry, n int) []Point {
	counts := CountByMonth(entries)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Compare(monthOrdinal(a), monthOrdinal(b))
	})
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	series := make([]Point, len(keys))
	for i, k := range keys {
		series[i] = Point{Label: k, Value: counts[k]}
	}
	return series
}

func monthOrdinal(key string) int {
	m, y, _ := strings.Cut(key, "/")
	month, _ := strconv.Atoi(m)
	year, _ := strconv.Atoi(y)
	return year*12 + month
}

// MostCommon returns the key with the highest count. Ties go to the
// smallest key. ok is false for an empty map.
func MostCommon[K cmp.Ordered](counts map[K]int) (key K, count int, ok bool) {
	for k, c := range counts {
		if !ok || c > count || (c == count && k < key) {
			key, count, ok = k, c, true
		}
	}
	return key, count, ok
}

// Slice is one emotion's share of the collection, styled for a chart.
type Slice struct {
	Emotion domain.Emotion `json:"emotion" yaml:"emotion"`
	Label   string         `json:"label" yaml:"label"`
	Color   string         `json:"color" yaml:"color"`
	Icon    string         `json:"icon" yaml:"icon"`
	Count   int            `json:"count" yaml:"count"`
}

// Summary is everything the journal statistics screen shows.
type Summary struct {
	Total         int            `json:"total" yaml:"total"`
	CommonEmotion domain.Emotion `json:"mostCommonEmotion,omitempty" yaml:"mostCommonEmotion,omitempty"`
	CommonSymbol  string         `json:"mostCommonSymbol,omitempty" yaml:"mostCommonSymbol,omitempty"`
	Emotions      []Slice        `json:"emotions" yaml:"emotions"`
	Symbols       map[string]int `json:"symbols" yaml:"symbols"`
	Months        []Point        `json:"months" yaml:"months"`
}

// ChartMonths is how many months the frequency chart shows.
const ChartMonths = 6

// Summarize builds the statistics for entries. Emotion slices follow the
// catalogue order, with unknown emotions appended alphabetically.
func Summarize(entries []domain.Entry) Summary {
	byEmotion := CountByCategory(entries)
	bySymbol := CountByGlyph(entries)

	s := Summary{
		Total:   len(entries),
		Symbols: bySymbol,
		Months:  MonthSeries(entries, ChartMonths),
	}
	if e, _, ok := MostCommon(byEmotion); ok {
		s.CommonEmotion = e
	}
	if sym, _, ok := MostCommon(bySymbol); ok {
		s.CommonSymbol = sym
	}

	order := domain.Emotions()
	var unknown []domain.Emotion
	for e := range byEmotion {
		if !e.Known() {
			unknown = append(unknown, e)
		}
	}
	slices.Sort(unknown)
	for _, e := range append(order, unknown...) {
		n := byEmotion[e]
		if n == 0 {
			continue
		}
		st := e.Style()
		s.Emotions = append(s.Emotions, Slice{Emotion: e, Label: st.Label, Color: st.Color, Icon: st.Icon, Count: n})
	}
	return s
}
