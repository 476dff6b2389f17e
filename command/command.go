package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatward-plugin/chatfilter"
)

// Dispatcher parses slash commands typed by a user and applies them to the
// filter mutation API, turning each outcome into reply text. It owns all
// user-facing wording; the mutation API itself only returns outcome values.
type Dispatcher struct {
	manager *chatfilter.Manager
	prefix  string
}

func NewDispatcher(m *chatfilter.Manager, prefix string) *Dispatcher {
	if prefix == "" {
		prefix = "/cw"
	}
	return &Dispatcher{manager: m, prefix: prefix}
}

// Handles reports whether line is addressed to this dispatcher.
func (d *Dispatcher) Handles(line string) bool {
	line = strings.TrimSpace(line)
	return line == d.prefix || strings.HasPrefix(line, d.prefix+" ")
}

// Dispatch executes one command line on behalf of userID and returns the
// reply to show them. Unknown verbs and empty arguments come back as usage
// text, never as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), d.prefix))
	verb, arg, _ := strings.Cut(rest, " ")
	verb = strings.ToLower(verb)
	arg = strings.TrimSpace(arg)

	switch verb {
	case "", "help":
		return d.usage()
	case "block":
		return d.block(ctx, userID, arg)
	case "unblock":
		return d.unblock(ctx, userID, arg)
	case "mute":
		return d.mute(ctx, userID, arg)
	case "unmute":
		return d.unmute(ctx, userID, arg)
	case "channel":
		return d.channel(ctx, userID, arg)
	case "debug":
		return d.debug(ctx, userID)
	case "reset":
		return d.reset(ctx, userID)
	case "copy":
		return d.copy(ctx, userID, arg)
	case "list":
		return d.list(ctx, userID)
	default:
		return fmt.Sprintf("Unknown command '%s'. %s", verb, d.usage())
	}
}

func (d *Dispatcher) usage() string {
	return fmt.Sprintf("Usage: %s block|unblock <phrase[, phrase...]> | mute|unmute <player> | "+
		"channel add|remove <name> | channel reset | debug | reset | copy <player> | list", d.prefix)
}

func (d *Dispatcher) block(ctx context.Context, userID, arg string) string {
	f, err := chatfilter.ParsePhrase(arg)
	if err != nil {
		return "Nothing to block. Give a phrase, or several separated by commas."
	}
	out, err := d.manager.AddPhrase(ctx, userID, arg)
	if msg, ok := failure(err); ok {
		return msg
	}
	switch out {
	case chatfilter.OutcomeAdded:
		return fmt.Sprintf("Now blocking '%s'.", f.Display())
	default:
		return fmt.Sprintf("'%s' is already blocked.", f.Display())
	}
}

func (d *Dispatcher) unblock(ctx context.Context, userID, arg string) string {
	out, err := d.manager.RemovePhrase(ctx, userID, arg)
	if errors.Is(err, chatfilter.ErrEmptyInput) {
		return "Nothing to unblock. Give the blocked phrase exactly as listed."
	}
	if msg, ok := failure(err); ok {
		return msg
	}
	display := chatfilter.Normalize(strings.TrimSpace(arg))
	switch out {
	case chatfilter.OutcomeRemoved:
		return fmt.Sprintf("No longer blocking '%s'.", display)
	default:
		return fmt.Sprintf("'%s' is not in the blocked list.", display)
	}
}

func (d *Dispatcher) mute(ctx context.Context, userID, arg string) string {
	out, err := d.manager.MutePlayer(ctx, userID, arg)
	if errors.Is(err, chatfilter.ErrEmptyInput) {
		return "Mute whom? Give a player name."
	}
	if msg, ok := failure(err); ok {
		return msg
	}
	switch out {
	case chatfilter.OutcomeMuted:
		return fmt.Sprintf("Muted %s.", strings.TrimSpace(arg))
	default:
		return fmt.Sprintf("%s is already muted.", strings.TrimSpace(arg))
	}
}

func (d *Dispatcher) unmute(ctx context.Context, userID, arg string) string {
	out, err := d.manager.UnmutePlayer(ctx, userID, arg)
	if errors.Is(err, chatfilter.ErrEmptyInput) {
		return "Unmute whom? Give a player name."
	}
	if msg, ok := failure(err); ok {
		return msg
	}
	switch out {
	case chatfilter.OutcomeUnmuted:
		return fmt.Sprintf("Unmuted %s.", strings.TrimSpace(arg))
	default:
		return fmt.Sprintf("%s is not muted.", strings.TrimSpace(arg))
	}
}

func (d *Dispatcher) channel(ctx context.Context, userID, arg string) string {
	sub, token, _ := strings.Cut(arg, " ")
	sub = strings.ToLower(strings.TrimSpace(sub))
	token = strings.TrimSpace(token)

	switch sub {
	case "add":
		out, err := d.manager.AddChannel(ctx, userID, token)
		if errors.Is(err, chatfilter.ErrEmptyInput) {
			return "Add which channel? Give a channel name or number."
		}
		if msg, ok := failure(err); ok {
			return msg
		}
		if out == chatfilter.OutcomeAdded {
			return fmt.Sprintf("Filtering now limited to channels matching '%s'.", chatfilter.Normalize(token))
		}
		return fmt.Sprintf("Channel '%s' is already in the list.", chatfilter.Normalize(token))
	case "remove":
		out, err := d.manager.RemoveChannel(ctx, userID, token)
		if errors.Is(err, chatfilter.ErrEmptyInput) {
			return "Remove which channel? Give a channel name or number."
		}
		if msg, ok := failure(err); ok {
			return msg
		}
		if out == chatfilter.OutcomeRemoved {
			return fmt.Sprintf("Channel '%s' removed from the list.", chatfilter.Normalize(token))
		}
		return fmt.Sprintf("Channel '%s' is not in the list.", chatfilter.Normalize(token))
	case "reset":
		if err := d.manager.ResetChannels(ctx, userID); err != nil {
			msg, _ := failure(err)
			return msg
		}
		return "Channel list cleared; filtering applies everywhere again."
	default:
		return fmt.Sprintf("Usage: %s channel add|remove <name> | channel reset", d.prefix)
	}
}

func (d *Dispatcher) debug(ctx context.Context, userID string) string {
	state, err := d.manager.ToggleDebug(ctx, userID)
	if msg, ok := failure(err); ok {
		return msg
	}
	if state {
		return "Debug output enabled."
	}
	return "Debug output disabled."
}

func (d *Dispatcher) reset(ctx context.Context, userID string) string {
	if err := d.manager.ResetAll(ctx, userID); err != nil {
		msg, _ := failure(err)
		return msg
	}
	return "All filters reset to defaults."
}

func (d *Dispatcher) copy(ctx context.Context, userID, arg string) string {
	out, err := d.manager.CopyFrom(ctx, userID, arg)
	if errors.Is(err, chatfilter.ErrEmptyInput) {
		return "Copy from whom? Give a player name."
	}
	if msg, ok := failure(err); ok {
		return msg
	}
	switch out {
	case chatfilter.OutcomeCopied:
		return fmt.Sprintf("Copied filters from %s.", strings.TrimSpace(arg))
	case chatfilter.OutcomeSelfCopy:
		return "You cannot copy filters from yourself."
	default:
		return fmt.Sprintf("No saved filters found for %s.", strings.TrimSpace(arg))
	}
}

func (d *Dispatcher) list(ctx context.Context, userID string) string {
	cfg, err := d.manager.GetOrCreate(ctx, userID)
	if msg, ok := failure(err); ok {
		return msg
	}

	var b strings.Builder
	b.WriteString("Blocked phrases:")
	if len(cfg.BlockedPhrases) == 0 {
		b.WriteString(" (none)")
	}
	for _, f := range cfg.BlockedPhrases {
		b.WriteString(fmt.Sprintf("\n  '%s'", f.Display()))
	}
	b.WriteString("\nMuted players: ")
	if len(cfg.MutedSenders) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(cfg.MutedSenders, ", "))
	}
	b.WriteString("\nChannels: ")
	if len(cfg.Channels) == 0 {
		b.WriteString("(all)")
	} else {
		b.WriteString(strings.Join(cfg.Channels, ", "))
	}
	if cfg.Debug {
		b.WriteString("\nDebug output is on.")
	}
	return b.String()
}

// failure maps operational errors to reply text. Expected outcomes never
// arrive here; only identity and storage problems do.
func failure(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, chatfilter.ErrIdentityUnavailable):
		return "Filters are not available yet: player identity is unknown.", true
	default:
		return "Filter storage is unavailable right now; nothing was changed.", true
	}
}
