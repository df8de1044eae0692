package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pbaille/oniria/internal/domain"
)

var now = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

func sample() []domain.Entry {
	return []domain.Entry{
		{
			ID:          "0194",
			Title:       "Voo sobre o mar",
			Description: "Eu voava baixo.\nAs ondas tocavam meus pés.",
			Date:        domain.NewDate(2025, time.January, 1),
			Emotion:     domain.Alegria,
			Symbol:      "🌊",
			Tags:        domain.Tags{"mar", "voo"},
			CreatedAt:   time.Date(2025, time.January, 1, 7, 0, 0, 0, time.UTC),
		},
		{
			ID:          "0193",
			Title:       "<script>alert(1)</script>",
			Description: "porta & chave",
			Date:        domain.NewDate(2024, time.December, 31),
			Emotion:     "euforia",
			Symbol:      "🚪",
			CreatedAt:   time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := JSON(sample(), now)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2025-01-02T15:04:05Z", doc["exported"])
	assert.EqualValues(t, 2, doc["totalDreams"])
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"exported\"")))

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, sample(), back)
}

func TestJSONEmpty(t *testing.T) {
	data, err := JSON(nil, now)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dreams": []`)
	assert.Contains(t, string(data), `"totalDreams": 0`)
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := YAML(sample(), now)
	require.NoError(t, err)
	assert.Contains(t, string(data), "totalDreams: 2")
	assert.Contains(t, string(data), "2025-01-01")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, sample(), back)
}

func TestParseLegacyArray(t *testing.T) {
	legacy := `[{"id": 1700000000000, "title": "Antigo", "description": "d",
		"date": "2023-11-14T22:13:20.000Z", "emotion": "medo", "symbol": "🦉", "tags": "noite, coruja"}]`

	got, err := Parse([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1700000000000", got[0].ID)
	assert.Equal(t, domain.NewDate(2023, time.November, 14), got[0].Date)
	assert.Equal(t, domain.Tags{"noite", "coruja"}, got[0].Tags)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "{not json", "[1, 2", "just words"} {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", in)
	}
}

func TestText(t *testing.T) {
	got := Text(sample(), now)

	want := "🌙 ONIRIA - DIÁRIO DE SONHOS\n" +
		strings.Repeat("═", 50) + "\n\n" +
		"Exportado em: 02/01/2025\n" +
		"Total de sonhos: 2\n\n" +
		strings.Repeat("═", 50) + "\n\n" +
		"\n1. Voo sobre o mar\n" +
		strings.Repeat("─", 50) + "\n" +
		"🌊 | Data: 01/01/2025\n" +
		"Emoção: alegria\n" +
		"Tags: mar, voo\n" +
		"\nEu voava baixo.\nAs ondas tocavam meus pés.\n\n" +
		"\n2. <script>alert(1)</script>\n" +
		strings.Repeat("─", 50) + "\n" +
		"🚪 | Data: 31/12/2024\n" +
		"Emoção: euforia\n" +
		"\nporta & chave\n\n"
	assert.Equal(t, want, got)
}

func TestHTML(t *testing.T) {
	data, err := HTML(sample(), now)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "porta &amp; chave")
	assert.Contains(t, out, "2 de janeiro de 2025")

	doc, err := html.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	var articles []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "article" {
			for _, a := range n.Attr {
				if a.Key == "id" {
					articles = append(articles, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	assert.Equal(t, []string{"dream-0194", "dream-0193"}, articles)
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("TEXT")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	assert.Equal(t, "oniria_sonhos_20250102.txt", f.Filename(now))
	assert.Equal(t, "oniria_backup_20250102.json", FormatJSON.Filename(now))

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)

	for _, f := range formats {
		data, err := Render(f, sample(), now)
		require.NoError(t, err)
		assert.NotEmpty(t, data, f)
	}
}
