// Package export renders the journal as backup documents and reads them
// back. Every function is pure over the entries it is given.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/oniria/internal/domain"
)

// Format is an export file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "txt"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

var formats = []Format{FormatJSON, FormatText, FormatYAML, FormatHTML}

// ParseFormat accepts a format name or a common alias ("text", "yml", "htm").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (want one of %v)", domain.ErrValidation, s, formats)
}

func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Filename names an export made at now, e.g. oniria_backup_20250102.json.
func (f Format) Filename(now time.Time) string {
	prefix := "oniria_backup"
	if f == FormatText {
		prefix = "oniria_sonhos"
	}
	return Filename(prefix, string(f), now)
}

func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102"), ext)
}

// Render produces the document for f.
func Render(f Format, entries []domain.Entry, now time.Time) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(entries, now)
	case FormatText:
		return []byte(Text(entries, now)), nil
	case FormatYAML:
		return YAML(entries, now)
	case FormatHTML:
		return HTML(entries, now)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, f)
}

// Document is the backup shape shared by the JSON and YAML exports.
type Document struct {
	Exported    time.Time      `json:"exported" yaml:"exported"`
	TotalDreams int            `json:"totalDreams" yaml:"totalDreams"`
	Dreams      []domain.Entry `json:"dreams" yaml:"dreams"`
}

func NewDocument(entries []domain.Entry, now time.Time) Document {
	dreams := entries
	if dreams == nil {
		dreams = []domain.Entry{}
	}
	return Document{Exported: now.UTC(), TotalDreams: len(entries), Dreams: dreams}
}

// JSON renders the backup document indented by two spaces.
func JSON(entries []domain.Entry, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(entries, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

func YAML(entries []domain.Entry, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(entries, now)); err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	heavyRule = strings.Repeat("═", 50)
	lightRule = strings.Repeat("─", 50)
)

// Text renders the plain-text diary.
func Text(entries []domain.Entry, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("🌙 ONIRIA - DIÁRIO DE SONHOS\n")
	sb.WriteString(heavyRule + "\n\n")
	fmt.Fprintf(&sb, "Exportado em: %s\n", domain.DateOf(now).Short())
	fmt.Fprintf(&sb, "Total de sonhos: %d\n\n", len(entries))
	sb.WriteString(heavyRule + "\n\n")

	for i, e := range entries {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, e.Title)
		sb.WriteString(lightRule + "\n")
		fmt.Fprintf(&sb, "%s | Data: %s\n", e.Symbol, e.Date.Short())
		fmt.Fprintf(&sb, "Emoção: %s\n", e.Emotion)
		if len(e.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", e.Tags.Joined())
		}
		fmt.Fprintf(&sb, "\n%s\n\n", e.Description)
	}

	return sb.String()
}

// Parse reads a JSON or YAML backup document, or a bare JSON array of
// entries as written by older versions.
func Parse(data []byte) ([]domain.Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty import", domain.ErrValidation)
	}

	switch trimmed[0] {
	case '[':
		var entries []domain.Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: parse import: %v", domain.ErrValidation, err)
		}
		return entries, nil
	case '{':
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: parse import: %v", domain.ErrValidation, err)
		}
		return doc.Dreams, nil
	}

	var doc Document
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse import: %v", domain.ErrValidation, err)
	}
	if doc.Dreams == nil && doc.TotalDreams == 0 && doc.Exported.IsZero() {
		return nil, fmt.Errorf("%w: parse import: not a backup document", domain.ErrValidation)
	}
	return doc.Dreams, nil
}
