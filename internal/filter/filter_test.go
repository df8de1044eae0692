package filter

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/oniria/internal/domain"
)

func entry(id string, em domain.Emotion, date domain.Date, tags ...string) domain.Entry {
	return domain.Entry{
		ID:          id,
		Title:       "Sonho " + id,
		Description: "descrição de " + id,
		Date:        date,
		Emotion:     em,
		Symbol:      em.Icon(),
		Tags:        domain.NormalizeTags(tags),
	}
}

func ids(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

var (
	jan = domain.NewDate(2025, time.January, 15)
	feb = domain.NewDate(2025, time.February, 3)
	dec = domain.NewDate(2024, time.December, 31)
)

func TestFiltered(t *testing.T) {
	entries := []domain.Entry{
		entry("1", domain.Paz, jan, "Mar", "praia"),
		entry("2", domain.Medo, feb, "casa"),
		entry("3", domain.Paz, dec),
	}
	entries[1].Title = "Corredor escuro"

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"empty matches all", Criteria{}, []string{"1", "2", "3"}},
		{"keyword in title, case-insensitive", Criteria{Keyword: "ESCURO"}, []string{"2"}},
		{"keyword in description", Criteria{Keyword: "de 3"}, []string{"3"}},
		{"keyword in tags", Criteria{Keyword: "mar"}, []string{"1"}},
		{"tag substring of joined list", Criteria{Tag: "ar, pr"}, []string{"1"}},
		{"emotion exact", Criteria{Emotion: domain.Paz}, []string{"1", "3"}},
		{"criteria are ANDed", Criteria{Emotion: domain.Paz, Tag: "casa"}, nil},
		{"no match", Criteria{Keyword: "dragão"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filtered(entries, tt.c)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilteredDoesNotMutate(t *testing.T) {
	entries := []domain.Entry{entry("1", domain.Paz, jan), entry("2", domain.Medo, feb)}
	got := Filtered(entries, Criteria{})
	got[0].Title = "changed"
	assert.Equal(t, "Sonho 1", entries[0].Title)
}

func TestRandom(t *testing.T) {
	_, err := Random(nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries := []domain.Entry{entry("1", domain.Paz, jan), entry("2", domain.Medo, feb), entry("3", domain.Amor, dec)}
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		got, err := Random(entries, r)
		require.NoError(t, err)
		assert.Contains(t, entries, got)
	}

	got, err := Random(entries, nil)
	require.NoError(t, err)
	assert.Contains(t, entries, got)
}

func TestSortByDate(t *testing.T) {
	entries := []domain.Entry{entry("a", domain.Paz, dec), entry("b", domain.Paz, feb), entry("c", domain.Paz, jan), entry("d", domain.Paz, feb)}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(SortByDate(entries)))
	assert.Equal(t, "a", entries[0].ID)
}

func TestCounts(t *testing.T) {
	entries := []domain.Entry{
		entry("1", domain.Paz, jan),
		entry("2", domain.Paz, jan),
		entry("3", domain.Medo, feb),
		entry("4", "euforia", dec),
	}

	assert.Equal(t, map[domain.Emotion]int{domain.Paz: 2, domain.Medo: 1, "euforia": 1}, CountByCategory(entries))
	assert.Equal(t, map[string]int{domain.Paz.Icon(): 2, domain.Medo.Icon(): 1, "😶": 1}, CountByGlyph(entries))
	assert.Equal(t, map[string]int{"1/2025": 2, "2/2025": 1, "12/2024": 1}, CountByMonth(entries))
}

func TestCountByCategoryExample(t *testing.T) {
	entries := []domain.Entry{{Emotion: "paz"}, {Emotion: "paz"}, {Emotion: "medo"}}
	assert.Equal(t, map[domain.Emotion]int{"paz": 2, "medo": 1}, CountByCategory(entries))
}

func TestMonthSeries(t *testing.T) {
	var entries []domain.Entry
	for m := time.January; m <= time.October; m++ {
		entries = append(entries, entry(m.String(), domain.Paz, domain.NewDate(2024, m, 1)))
	}
	entries = append(entries, entry("x", domain.Paz, domain.NewDate(2025, time.February, 1)))
	entries = append(entries, entry("y", domain.Paz, domain.NewDate(2025, time.February, 9)))

	series := MonthSeries(entries, 3)
	assert.Equal(t, []Point{{"9/2024", 1}, {"10/2024", 1}, {"2/2025", 2}}, series)
	assert.Len(t, MonthSeries(entries, 0), 11)
	assert.Empty(t, MonthSeries(nil, 6))
}

func TestMostCommon(t *testing.T) {
	_, _, ok := MostCommon(map[string]int{})
	assert.False(t, ok)

	key, n, ok := MostCommon(map[string]int{"b": 2, "a": 2, "c": 1})
	assert.True(t, ok)
	assert.Equal(t, "a", key)
	assert.Equal(t, 2, n)
}

func TestSummarize(t *testing.T) {
	entries := []domain.Entry{
		entry("1", "euforia", jan),
		entry("2", domain.Medo, jan),
		entry("3", domain.Medo, feb),
		entry("4", domain.Paz, feb),
	}
	s := Summarize(entries)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, domain.Medo, s.CommonEmotion)
	assert.Equal(t, domain.Medo.Icon(), s.CommonSymbol)
	require.Len(t, s.Emotions, 3)
	assert.Equal(t, domain.Paz, s.Emotions[0].Emotion)
	assert.Equal(t, domain.Medo, s.Emotions[1].Emotion)
	assert.Equal(t, Slice{Emotion: "euforia", Label: "euforia", Color: "#8b7ba8", Icon: "😶", Count: 1}, s.Emotions[2])
	assert.Equal(t, []Point{{"1/2025", 2}, {"2/2025", 2}}, s.Months)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.CommonEmotion)
	assert.Empty(t, empty.Emotions)
}
