package chatfilter

import "errors"

// Outcome is the result of a mutation call. Expected conditions such as
// duplicates and misses are outcomes, not errors; callers derive their
// user-facing text from these values.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeAlreadyExists
	OutcomeRemoved
	OutcomeNotFound
	OutcomeMuted
	OutcomeAlreadyMuted
	OutcomeUnmuted
	OutcomeCopied
	OutcomeSourceNotFound
	OutcomeSelfCopy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeRemoved:
		return "removed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeMuted:
		return "muted"
	case OutcomeAlreadyMuted:
		return "already_muted"
	case OutcomeUnmuted:
		return "unmuted"
	case OutcomeCopied:
		return "copied"
	case OutcomeSourceNotFound:
		return "source_not_found"
	case OutcomeSelfCopy:
		return "self_copy"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyInput reports a mutation that had no usable content left after
	// trimming and splitting. No state was changed.
	ErrEmptyInput = errors.New("empty input")

	// ErrIdentityUnavailable reports that no user identifier could be
	// resolved. The operation did not read or create any record; callers must
	// treat this as "do not filter, do not mutate".
	ErrIdentityUnavailable = errors.New("user identity unavailable")
)
