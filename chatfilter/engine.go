package chatfilter

import (
	"fmt"
	"log/slog"
	"slices"
)

// Engine evaluates events against a user's FilterConfig. It performs no I/O
// and holds no state of its own; the config it receives is an in-memory
// snapshot.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Verdict carries the engine's decision. Reason is set only on suppression
// and names either the muted sender or the matched rule's display form, with
// the sender's original-case name.
type Verdict struct {
	Blocked bool
	Reason  string
}

// Evaluate decides whether the event should be suppressed. Checks run in a
// fixed order: the channel scope gate first, then muted senders, then the
// phrase rules in insertion order, short-circuiting on the first hit. An
// out-of-scope event is never blocked, whatever its sender or content.
func (e *Engine) Evaluate(cfg *FilterConfig, ev Event) Verdict {
	token, resolved := ResolveChannel(ev.Kind, ev.Channel)
	if !cfg.InScope(token, resolved) {
		return Verdict{}
	}

	if slices.Contains(cfg.MutedSenders, Normalize(ev.Sender)) {
		v := Verdict{Blocked: true, Reason: fmt.Sprintf("(Player Muted) %s", ev.Sender)}
		e.diagnose(cfg, ev, v.Reason)
		return v
	}

	text := Normalize(ev.Text)
	for _, f := range cfg.BlockedPhrases {
		if f.Matches(text) {
			v := Verdict{Blocked: true, Reason: fmt.Sprintf("(Phrase Blocked: '%s') %s", f.Display(), ev.Sender)}
			e.diagnose(cfg, ev, v.Reason)
			return v
		}
	}
	return Verdict{}
}

// diagnose emits the human-readable suppression line, gated on the per-user
// debug flag.
func (e *Engine) diagnose(cfg *FilterConfig, ev Event, reason string) {
	if !cfg.Debug {
		return
	}
	e.logger.Info("chatward: "+reason, "kind", string(ev.Kind), "sender", ev.Sender)
}
