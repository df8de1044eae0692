package domain

// Emotion is the category of a dream.
type Emotion string

const (
	Paz       Emotion = "paz"
	Alegria   Emotion = "alegria"
	Medo      Emotion = "medo"
	Tristeza  Emotion = "tristeza"
	Saudade   Emotion = "saudade"
	Amor      Emotion = "amor"
	Ansiedade Emotion = "ansiedade"
	Confusao  Emotion = "confusao"

	DefaultEmotion = Paz
)

// Style is how an emotion is displayed.
type Style struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var emotionOrder = []Emotion{Paz, Alegria, Medo, Tristeza, Saudade, Amor, Ansiedade, Confusao}

var styles = map[Emotion]Style{
	Paz:       {Label: "Paz", Icon: "😌", Color: "#9ed8db"},
	Alegria:   {Label: "Alegria", Icon: "😄", Color: "#ffd93d"},
	Medo:      {Label: "Medo", Icon: "😨", Color: "#8e44ad"},
	Tristeza:  {Label: "Tristeza", Icon: "😢", Color: "#5d9cec"},
	Saudade:   {Label: "Saudade", Icon: "🥺", Color: "#b8a6d9"},
	Amor:      {Label: "Amor", Icon: "❤️", Color: "#ff7979"},
	Ansiedade: {Label: "Ansiedade", Icon: "😰", Color: "#ff9f43"},
	Confusao:  {Label: "Confusão", Icon: "😵‍💫", Color: "#a8dadc"},
}

var fallbackStyle = Style{Icon: "😶", Color: "#8b7ba8"}

// Emotions lists the known categories in display order.
func Emotions() []Emotion {
	out := make([]Emotion, len(emotionOrder))
	copy(out, emotionOrder)
	return out
}

// Known reports whether e is one of the enumerated categories.
func (e Emotion) Known() bool {
	_, ok := styles[e]
	return ok
}

// Style returns the display style; unknown emotions get the fallback style
// labelled with their literal value.
func (e Emotion) Style() Style {
	if s, ok := styles[e]; ok {
		return s
	}
	s := fallbackStyle
	s.Label = string(e)
	return s
}

func (e Emotion) Icon() string {
	return e.Style().Icon
}

// SymbolFor picks the symbol to keep when an entry's emotion changes: a
// blank symbol or one that is just the previous emotion icon follows the
// new emotion, anything the user typed is kept.
func SymbolFor(e Emotion, current string) string {
	if current == "" || isEmotionIcon(current) {
		return e.Icon()
	}
	return current
}

func isEmotionIcon(symbol string) bool {
	if symbol == fallbackStyle.Icon {
		return true
	}
	for _, s := range styles {
		if s.Icon == symbol {
			return true
		}
	}
	return false
}
