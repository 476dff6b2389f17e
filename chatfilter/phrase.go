package chatfilter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// PhraseFilter is one block rule: either a single substring, or a conjunction
// of two or more substrings that must all occur in a message for the rule to
// fire. The zero value is invalid; build one with ParsePhrase.
type PhraseFilter struct {
	phrases []string
}

// ParsePhrase builds a PhraseFilter from raw user input. The input is split on
// commas, each part is trimmed and lowercased, and empty parts are dropped.
// One survivor yields a single-phrase rule; two or more yield a conjunction in
// post-trim order. ErrEmptyInput is returned when nothing usable remains.
func ParsePhrase(raw string) (PhraseFilter, error) {
	parts := strings.Split(raw, ",")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		p = Normalize(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		phrases = append(phrases, p)
	}
	if len(phrases) == 0 {
		return PhraseFilter{}, ErrEmptyInput
	}
	return PhraseFilter{phrases: phrases}, nil
}

// IsConjunction reports whether the rule requires more than one sub-phrase.
func (f PhraseFilter) IsConjunction() bool { return len(f.phrases) > 1 }

// Phrases returns a copy of the rule's sub-phrases.
func (f PhraseFilter) Phrases() []string { return slices.Clone(f.phrases) }

// Equal is structural: same variant, same sub-phrases, same order.
// "wts, gold" and "gold, wts" are two distinct conjunctions.
func (f PhraseFilter) Equal(other PhraseFilter) bool {
	return slices.Equal(f.phrases, other.phrases)
}

// Display returns the human-readable form: the phrase itself for a single
// rule, the sub-phrases joined with ", " for a conjunction. Removal by text
// compares against exactly this form.
func (f PhraseFilter) Display() string { return strings.Join(f.phrases, ", ") }

// Matches reports whether the rule fires against already-normalized message
// text. A single rule fires on one containment; a conjunction only when every
// sub-phrase is contained.
func (f PhraseFilter) Matches(normalizedText string) bool {
	if len(f.phrases) == 0 {
		return false
	}
	for _, p := range f.phrases {
		if !Contains(normalizedText, p) {
			return false
		}
	}
	return true
}

func (f PhraseFilter) clone() PhraseFilter {
	return PhraseFilter{phrases: slices.Clone(f.phrases)}
}

// MarshalJSON encodes a single rule as a bare string and a conjunction as an
// array of strings. This is the persisted record shape.
func (f PhraseFilter) MarshalJSON() ([]byte, error) {
	if len(f.phrases) == 1 {
		return json.Marshal(f.phrases[0])
	}
	return json.Marshal(f.phrases)
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON. A stored list
// that reduces to a single non-empty phrase loads as a single rule; a list
// with no usable phrases is rejected.
func (f *PhraseFilter) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		single = Normalize(strings.TrimSpace(single))
		if single == "" {
			return fmt.Errorf("phrase filter: empty phrase")
		}
		f.phrases = []string{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("phrase filter: expected string or array of strings: %w", err)
	}
	phrases := make([]string, 0, len(list))
	for _, p := range list {
		p = Normalize(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		phrases = append(phrases, p)
	}
	if len(phrases) == 0 {
		return fmt.Errorf("phrase filter: no usable phrases")
	}
	f.phrases = phrases
	return nil
}
