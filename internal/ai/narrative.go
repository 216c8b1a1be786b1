package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// NarrativeKind tags how a provider's output was interpreted.
type NarrativeKind string

const (
	NarrativeStructured NarrativeKind = "structured"
	NarrativeRawText    NarrativeKind = "raw"
)

// Narrative is a provider reply: either a JSON object extracted from the text
// (Structured) or the text itself when no object could be found (RawText).
// Raw always holds the original reply.
type Narrative struct {
	Kind NarrativeKind
	Data map[string]any
	Raw  string
}

// IsStructured reports whether a JSON object was extracted.
func (n Narrative) IsStructured() bool {
	return n.Kind == NarrativeStructured
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ParseNarrative extracts the first fenced ```json block as an object; failing
// that it tries the whole reply as a JSON object, and otherwise keeps the raw text.
func ParseNarrative(text string) Narrative {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if data, ok := decodeObject(m[1]); ok {
			return Narrative{Kind: NarrativeStructured, Data: data, Raw: text}
		}
	}
	if data, ok := decodeObject(strings.TrimSpace(text)); ok {
		return Narrative{Kind: NarrativeStructured, Data: data, Raw: text}
	}
	return Narrative{Kind: NarrativeRawText, Raw: text}
}

func decodeObject(s string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}
