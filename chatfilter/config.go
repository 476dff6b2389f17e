package chatfilter

import (
	"slices"
	"strings"
)

// FilterConfig is one user's filtering state. All stored strings are
// lowercase; normalization happens when entries are written, never when they
// are read. The JSON shape below is the persisted record; any legacy field
// beyond these four is dropped on decode.
type FilterConfig struct {
	BlockedPhrases []PhraseFilter `json:"blocked_phrases"`
	MutedSenders   []string       `json:"muted_senders"`
	Channels       []string       `json:"channels"`
	Debug          bool           `json:"debug"`
}

// NewFilterConfig returns a fresh config seeded with the given default phrase
// rules and otherwise empty lists.
func NewFilterConfig(defaults []PhraseFilter) *FilterConfig {
	cfg := &FilterConfig{
		BlockedPhrases: make([]PhraseFilter, 0, len(defaults)),
		MutedSenders:   []string{},
		Channels:       []string{},
	}
	for _, f := range defaults {
		cfg.BlockedPhrases = append(cfg.BlockedPhrases, f.clone())
	}
	return cfg
}

// Clone returns a deep copy sharing no state with the original.
func (c *FilterConfig) Clone() *FilterConfig {
	out := &FilterConfig{
		BlockedPhrases: make([]PhraseFilter, 0, len(c.BlockedPhrases)),
		MutedSenders:   slices.Clone(c.MutedSenders),
		Channels:       slices.Clone(c.Channels),
		Debug:          c.Debug,
	}
	for _, f := range c.BlockedPhrases {
		out.BlockedPhrases = append(out.BlockedPhrases, f.clone())
	}
	return out
}

// AddPhrase appends a rule unless a structurally equal one is already stored.
func (c *FilterConfig) AddPhrase(f PhraseFilter) Outcome {
	for _, existing := range c.BlockedPhrases {
		if existing.Equal(f) {
			return OutcomeAlreadyExists
		}
	}
	c.BlockedPhrases = append(c.BlockedPhrases, f)
	return OutcomeAdded
}

// RemovePhrase removes the first rule whose display form equals the
// lowercased, trimmed input; the relative order of the remainder is
// preserved. A conjunction is therefore removed by typing its comma-joined
// display text exactly, never by one of its sub-phrases alone.
func (c *FilterConfig) RemovePhrase(raw string) (Outcome, error) {
	target := Normalize(strings.TrimSpace(raw))
	if target == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	for i, f := range c.BlockedPhrases {
		if f.Display() == target {
			c.BlockedPhrases = append(c.BlockedPhrases[:i], c.BlockedPhrases[i+1:]...)
			return OutcomeRemoved, nil
		}
	}
	return OutcomeNotFound, nil
}

// MuteSender adds a sender to the muted set.
func (c *FilterConfig) MuteSender(raw string) (Outcome, error) {
	name := Normalize(strings.TrimSpace(raw))
	if name == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	if slices.Contains(c.MutedSenders, name) {
		return OutcomeAlreadyMuted, nil
	}
	c.MutedSenders = append(c.MutedSenders, name)
	return OutcomeMuted, nil
}

// UnmuteSender removes a sender from the muted set.
func (c *FilterConfig) UnmuteSender(raw string) (Outcome, error) {
	name := Normalize(strings.TrimSpace(raw))
	if name == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	i := slices.Index(c.MutedSenders, name)
	if i < 0 {
		return OutcomeNotFound, nil
	}
	c.MutedSenders = append(c.MutedSenders[:i], c.MutedSenders[i+1:]...)
	return OutcomeUnmuted, nil
}

// AddChannel adds a channel token to the scope list. A non-empty scope list
// restricts filtering to events resolving to a matching token.
func (c *FilterConfig) AddChannel(raw string) (Outcome, error) {
	token := Normalize(strings.TrimSpace(raw))
	if token == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	if slices.Contains(c.Channels, token) {
		return OutcomeAlreadyExists, nil
	}
	c.Channels = append(c.Channels, token)
	return OutcomeAdded, nil
}

// RemoveChannel removes a channel token from the scope list.
func (c *FilterConfig) RemoveChannel(raw string) (Outcome, error) {
	token := Normalize(strings.TrimSpace(raw))
	if token == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	i := slices.Index(c.Channels, token)
	if i < 0 {
		return OutcomeNotFound, nil
	}
	c.Channels = append(c.Channels[:i], c.Channels[i+1:]...)
	return OutcomeRemoved, nil
}

// ResetChannels clears the scope list, re-enabling filtering everywhere.
// Idempotent.
func (c *FilterConfig) ResetChannels() {
	c.Channels = c.Channels[:0]
}

// ToggleDebug flips the diagnostic flag and returns the new state.
func (c *FilterConfig) ToggleDebug() bool {
	c.Debug = !c.Debug
	return c.Debug
}

// InScope reports whether an event resolved to token is subject to filtering
// under c's channel scope. An empty scope disables scoping entirely. Scope
// entries match by containment, so an entry "trade" covers a resolved token
// "2.trade - city". With scoping enabled, an event that resolved to no
// channel at all is always out of scope.
func (c *FilterConfig) InScope(token string, resolved bool) bool {
	if len(c.Channels) == 0 {
		return true
	}
	if !resolved {
		return false
	}
	for _, entry := range c.Channels {
		if Contains(token, entry) {
			return true
		}
	}
	return false
}
