package export

import (
	"bytes"
	"fmt"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pbaille/oniria/internal/domain"
)

const pageStyle = `body{background:#1a1625;color:#f8f5f0;font-family:Georgia,serif;max-width:48rem;margin:2rem auto;padding:0 1rem}
.dream{border-left:4px solid;padding:.5rem 1rem;margin:1.5rem 0;background:rgba(139,123,168,.08)}
.meta{color:#8b7ba8;font-size:.9rem}
.tag{display:inline-block;margin-right:.4rem;padding:0 .4rem;border:1px solid #8b7ba8;border-radius:.6rem;font-size:.8rem}
.description{white-space:pre-wrap}`

// HTML renders a standalone page with one card per entry. All entry text
// goes through text nodes so the renderer escapes it.
func HTML(entries []domain.Entry, now time.Time) ([]byte, error) {
	body := element(atom.Body, nil,
		element(atom.H1, nil, text("🌙 Oniria - Diário de Sonhos")),
		element(atom.P, attrs("class", "meta"),
			text(fmt.Sprintf("Exportado em %s · %d sonhos", domain.DateOf(now).Long(), len(entries)))),
	)
	for _, e := range entries {
		body.AppendChild(card(e))
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, attrs("lang", "pt-BR"),
		element(atom.Head, nil,
			element(atom.Meta, attrs("charset", "utf-8")),
			element(atom.Title, nil, text("Oniria - Diário de Sonhos")),
			element(atom.Style, nil, text(pageStyle)),
		),
		body,
	))

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func card(e domain.Entry) *html.Node {
	style := e.Emotion.Style()
	n := element(atom.Article, attrs("class", "dream", "id", "dream-"+e.ID, "style", "border-color:"+style.Color),
		element(atom.H2, nil, text(e.Symbol+" "+e.Title)),
		element(atom.P, attrs("class", "meta"),
			text(fmt.Sprintf("%s · %s %s", e.Date.Full(), style.Icon, style.Label))),
	)
	if len(e.Tags) > 0 {
		tags := element(atom.P, attrs("class", "tags"))
		for _, t := range e.Tags {
			tags.AppendChild(element(atom.Span, attrs("class", "tag"), text(t)))
		}
		n.AppendChild(tags)
	}
	n.AppendChild(element(atom.P, attrs("class", "description"), text(e.Description)))
	return n
}

func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attrs builds attributes from key, value pairs.
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
