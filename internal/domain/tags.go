package domain

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tags is the ordered list of free-text labels on an entry.
type Tags []string

// ParseTags splits comma-joined input.
func ParseTags(s string) Tags {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims every label and drops blanks. Empty input yields nil.
func NormalizeTags(in []string) Tags {
	var out Tags
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Joined renders the labels the way the filter matches them.
func (t Tags) Joined() string {
	return strings.Join(t, ", ")
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts an array or a comma-joined string.
func (t *Tags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = NormalizeTags(list)
		return nil
	}
	var joined *string
	if err := json.Unmarshal(b, &joined); err != nil {
		return err
	}
	if joined == nil {
		*t = nil
		return nil
	}
	*t = ParseTags(*joined)
	return nil
}

// UnmarshalYAML accepts a sequence or a comma-joined string.
func (t *Tags) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.ShortTag() == "!!null" {
			*t = nil
			return nil
		}
		*t = ParseTags(value.Value)
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*t = NormalizeTags(list)
	return nil
}
