// Package narrative writes a short poetic reading of a dream from its
// symbol and emotion, using fixed theme tables and sentence templates.
package narrative

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/pbaille/oniria/internal/domain"
)

var symbolThemes = map[string][]string{
	"🌙":  {"mistério", "feminino", "intuição", "ciclos"},
	"⭐":  {"esperança", "desejo", "destino", "luz"},
	"🌊":  {"emoções", "inconsciência", "fluxo", "mudança"},
	"🌲":  {"crescimento", "estabilidade", "natureza", "raízes"},
	"🏠":  {"segurança", "família", "interior", "proteção"},
	"🚪":  {"oportunidade", "transição", "escolha", "passagem"},
	"🪟":  {"perspectiva", "clareza", "visão", "possibilidades"},
	"🦋":  {"transformação", "leveza", "liberdade", "renascimento"},
	"🕊️": {"paz", "pureza", "mensagem", "transcendência"},
	"🌺":  {"beleza", "florescimento", "abertura", "sensibilidade"},
	"🔑":  {"solução", "acesso", "descoberta", "poder"},
	"📖":  {"conhecimento", "história", "aprendizado", "memória"},
	"🎭":  {"dualidade", "persona", "representação", "emoção"},
	"🌈":  {"esperança", "diversidade", "renovação", "promessa"},
	"☁️": {"imaginação", "leveza", "transitório", "sonho"},
	"⚡":  {"energia", "súbito", "iluminação", "poder"},
	"🌹":  {"amor", "paixão", "beleza", "dualidade"},
	"🦉":  {"sabedoria", "noite", "visão", "mistério"},
}

var emotionThemes = map[domain.Emotion][]string{
	domain.Paz:       {"serenidade", "harmonia", "equilíbrio", "aceitação"},
	domain.Alegria:   {"leveza", "celebração", "plenitude", "gratidão"},
	domain.Medo:      {"sombra", "desconhecido", "proteção", "alerta"},
	domain.Tristeza:  {"profundidade", "introspecção", "perda", "transformação"},
	domain.Saudade:   {"memória", "conexão", "tempo", "amor"},
	domain.Amor:      {"união", "entrega", "abertura", "vulnerabilidade"},
	domain.Ansiedade: {"movimento", "futuro", "controle", "inquietude"},
	domain.Confusao:  {"caos", "nebulosa", "busca", "transição"},
}

var desires = map[domain.Emotion]string{
	domain.Paz:       "encontrar seu centro",
	domain.Alegria:   "celebrar a vida",
	domain.Medo:      "enfrentar suas sombras",
	domain.Tristeza:  "permitir-se sentir",
	domain.Saudade:   "honrar o que passou",
	domain.Amor:      "abrir seu coração",
	domain.Ansiedade: "confiar no processo",
	domain.Confusao:  "aceitar a incerteza",
}

var (
	fallbackSymbolThemes  = []string{"mistério", "significado"}
	fallbackEmotionThemes = []string{"sentimento", "experiência"}
)

const fallbackDesire = "descobrir seu caminho"

// Templates are filled with "{themes}" then "{desire}".
var Templates = []string{
	"Este sonho sussurra sobre {themes}. Há algo em você que anseia por {desire}.",
	"Entre {themes}, seu inconsciente tece uma história de {desire}.",
	"Um sonho que fala de {themes} — talvez seja hora de contemplar {desire}.",
	"Nas entrelinhas de {themes}, reside um convite para {desire}.",
	"Este sonho é um espelho refletindo {themes}, guiando você em direção a {desire}.",
}

// Themes returns the candidate theme words for a symbol and emotion: the
// symbol list followed by the emotion list, with fallbacks for unknown keys.
func Themes(symbol string, emotion domain.Emotion) []string {
	s, ok := symbolThemes[symbol]
	if !ok {
		s = fallbackSymbolThemes
	}
	e, ok := emotionThemes[emotion]
	if !ok {
		e = fallbackEmotionThemes
	}
	out := make([]string, 0, len(s)+len(e))
	return append(append(out, s...), e...)
}

// Desire returns the phrase completing a template for emotion.
func Desire(emotion domain.Emotion) string {
	if d, ok := desires[emotion]; ok {
		return d
	}
	return fallbackDesire
}

// Generator produces narratives. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a generator drawing from r. A nil r is seeded from the clock.
func New(r *rand.Rand) *Generator {
	if r == nil {
		seed := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{rnd: r}
}

// Narrate writes one narrative for e. Repeated calls vary.
func (g *Generator) Narrate(e domain.Entry) string {
	return g.Compose(e.Symbol, e.Emotion)
}

func (g *Generator) Compose(symbol string, emotion domain.Emotion) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	themes := pickDistinct(g.rnd, Themes(symbol, emotion), 2)
	tmpl := Templates[g.rnd.IntN(len(Templates))]

	out := strings.Replace(tmpl, "{themes}", strings.Join(themes, " e "), 1)
	return strings.Replace(out, "{desire}", Desire(emotion), 1)
}

// pickDistinct draws n different words. Duplicates in words (a theme shared
// by the symbol and emotion lists) are never both picked.
func pickDistinct(r *rand.Rand, words []string, n int) []string {
	seen := make(map[string]bool, len(words))
	uniq := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			uniq = append(uniq, w)
		}
	}
	r.Shuffle(len(uniq), func(i, j int) { uniq[i], uniq[j] = uniq[j], uniq[i] })
	if len(uniq) > n {
		uniq = uniq[:n]
	}
	return uniq
}
