// Package similarity ranks dreams by how much text they share, using
// term-frequency vectors and cosine similarity.
package similarity

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/pbaille/oniria/internal/domain"
)

// Vector is a sparse term-frequency vector.
type Vector map[string]float64

var stopwords = map[string]bool{
	"que": true, "com": true, "uma": true, "para": true, "por": true, "mas": true,
	"dos": true, "das": true, "nos": true, "nas": true, "não": true, "meu": true,
	"minha": true, "era": true, "foi": true, "estava": true, "sobre": true,
	"como": true, "ele": true, "ela": true, "eles": true, "elas": true, "num": true,
	"numa": true, "the": true, "and": true, "was": true, "sonho": true, "sonhei": true,
}

// Terms splits text into lower-cased words of three or more letters,
// skipping common filler words.
func Terms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 3 && !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// Of builds the vector of an entry from its title, description, tags and
// emotion. Tags and emotion count as whole terms.
func Of(e domain.Entry) Vector {
	v := make(Vector)
	for _, t := range Terms(e.Title + " " + e.Description) {
		v[t]++
	}
	for _, tag := range e.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			v["#"+tag]++
		}
	}
	if e.Emotion != "" {
		v["~"+string(e.Emotion)]++
	}
	return v
}

// CosineSimilarity computes similarity between two sparse vectors
func CosineSimilarity(a, b Vector) float64 {
	var dot, normA, normB float64
	for k, x := range a {
		dot += x * b[k]
		normA += x * x
	}
	for _, y := range b {
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is a related entry and its score in (0, 1].
type Match struct {
	Entry domain.Entry `json:"dream"`
	Score float64      `json:"score"`
}

// Related returns up to n entries most similar to target, best first.
// The target itself and entries sharing nothing with it are left out.
func Related(target domain.Entry, entries []domain.Entry, n int) []Match {
	if n <= 0 {
		return nil
	}
	tv := Of(target)
	var matches []Match
	for _, e := range entries {
		if e.ID == target.ID {
			continue
		}
		if s := CosineSimilarity(tv, Of(e)); s > 0 {
			matches = append(matches, Match{Entry: e, Score: s})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
