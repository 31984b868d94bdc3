package intake

import (
	"fmt"
	"strings"
)

// Symptom is an entry in the fixed vocabulary of adverse reactions.
type Symptom struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var symptoms = []Symptom{
	{ID: "jitters", Label: "Jitters", Icon: "🫨"},
	{ID: "palpitations", Label: "Palpitations", Icon: "💓"},
	{ID: "anxiety", Label: "Anxiety", Icon: "😰"},
	{ID: "insomnia", Label: "Insomnia", Icon: "🌙"},
	{ID: "headache", Label: "Headache", Icon: "🤕"},
	{ID: "stomach", Label: "Upset stomach", Icon: "🤢"},
	{ID: "crash", Label: "Energy crash", Icon: "🪫"},
}

// Symptoms returns the vocabulary in display order.
func Symptoms() []Symptom {
	return append([]Symptom(nil), symptoms...)
}

// LookupSymptom finds a vocabulary entry by id.
func LookupSymptom(id string) (Symptom, bool) {
	for _, s := range symptoms {
		if s.ID == id {
			return s, true
		}
	}
	return Symptom{}, false
}

// NormalizeSymptoms trims, lowercases and de-duplicates tags, keeping first
// occurrence order. Unknown ids are rejected. An empty result is nil.
func NormalizeSymptoms(ids []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" || seen[id] {
			continue
		}
		if _, ok := LookupSymptom(id); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSymptom, raw)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
