package chatfilter

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize = 4096
	defaultCacheTTL  = 30 * time.Minute
)

// Loader is the slice of the persistence collaborator the manager needs:
// fetch a user's stored record, or report that none exists.
type Loader interface {
	LoadConfig(ctx context.Context, userID string) (*FilterConfig, bool, error)
}

// NotifyFunc receives fire-and-forget "configuration changed" notifications
// after every successful mutation. The config is a snapshot the receiver may
// keep. Implementations must not block; durability is the subscriber's
// problem, not the manager's.
type NotifyFunc func(userID string, cfg *FilterConfig)

// Manager owns the per-user FilterConfig records and exposes the mutation
// API the command dispatcher binds to. Records are created lazily on first
// access, cached in an expirable LRU in front of the loader, and guarded by
// a single writer lock; evaluation reads may run concurrently.
type Manager struct {
	mu     sync.RWMutex
	loader Loader
	cache  *lru.LRU[string, *FilterConfig]
	sf     singleflight.Group
	notify NotifyFunc

	defaultsMu sync.RWMutex
	defaults   []PhraseFilter
}

func NewManager(loader Loader, defaults []PhraseFilter, notify NotifyFunc) *Manager {
	return &Manager{
		loader:   loader,
		cache:    lru.NewLRU[string, *FilterConfig](defaultCacheSize, nil, defaultCacheTTL),
		notify:   notify,
		defaults: defaults,
	}
}

// SetDefaults replaces the seed phrase set used for configs created after
// this call. Existing records are untouched.
func (m *Manager) SetDefaults(defaults []PhraseFilter) {
	m.defaultsMu.Lock()
	m.defaults = defaults
	m.defaultsMu.Unlock()
}

func (m *Manager) defaultPhrases() []PhraseFilter {
	m.defaultsMu.RLock()
	defer m.defaultsMu.RUnlock()
	out := make([]PhraseFilter, 0, len(m.defaults))
	for _, f := range m.defaults {
		out = append(out, f.clone())
	}
	return out
}

// GetOrCreate returns the user's record, creating one seeded with defaults
// when neither the cache nor the loader has it. ErrIdentityUnavailable is
// returned for an empty user identifier; no record is created in that case.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*FilterConfig, error) {
	if userID == "" {
		return nil, ErrIdentityUnavailable
	}
	if cfg, ok := m.cache.Get(userID); ok {
		return cfg, nil
	}

	v, err, _ := m.sf.Do(userID, func() (any, error) {
		if cfg, ok := m.cache.Get(userID); ok {
			return cfg, nil
		}
		cfg, found, err := m.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !found {
			cfg = NewFilterConfig(m.defaultPhrases())
		}
		m.cache.Add(userID, cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*FilterConfig), nil
}

// load fetches a record from the loader and back-fills any absent field with
// defaults, per the persisted-record contract.
func (m *Manager) load(ctx context.Context, userID string) (*FilterConfig, bool, error) {
	if m.loader == nil {
		return nil, false, nil
	}
	cfg, found, err := m.loader.LoadConfig(ctx, userID)
	if err != nil || !found {
		return nil, false, err
	}
	if cfg.BlockedPhrases == nil {
		cfg.BlockedPhrases = m.defaultPhrases()
	}
	if cfg.MutedSenders == nil {
		cfg.MutedSenders = []string{}
	}
	if cfg.Channels == nil {
		cfg.Channels = []string{}
	}
	return cfg, true, nil
}

// mutate runs fn against the user's record under the writer lock and emits
// the change notification when fn reports a state change.
func (m *Manager) mutate(ctx context.Context, userID string, fn func(*FilterConfig) (Outcome, error)) (Outcome, error) {
	if userID == "" {
		return OutcomeNotFound, ErrIdentityUnavailable
	}
	m.mu.Lock()
	cfg, err := m.GetOrCreate(ctx, userID)
	if err != nil {
		m.mu.Unlock()
		return OutcomeNotFound, err
	}
	out, err := fn(cfg)
	var snapshot *FilterConfig
	if err == nil && mutated(out) && m.notify != nil {
		snapshot = cfg.Clone()
	}
	m.mu.Unlock()

	if snapshot != nil {
		m.notify(userID, snapshot)
	}
	return out, err
}

func mutated(out Outcome) bool {
	switch out {
	case OutcomeAdded, OutcomeRemoved, OutcomeMuted, OutcomeUnmuted, OutcomeCopied:
		return true
	}
	return false
}

func (m *Manager) changed(userID string, cfg *FilterConfig) {
	if m.notify != nil {
		m.notify(userID, cfg.Clone())
	}
}

// AddPhrase parses raw per ParsePhrase and appends the resulting rule unless
// a structurally equal one already exists.
func (m *Manager) AddPhrase(ctx context.Context, userID, raw string) (Outcome, error) {
	f, err := ParsePhrase(raw)
	if err != nil {
		return OutcomeNotFound, err
	}
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.AddPhrase(f), nil
	})
}

// RemovePhrase removes the first rule whose display form matches raw.
func (m *Manager) RemovePhrase(ctx context.Context, userID, raw string) (Outcome, error) {
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.RemovePhrase(raw)
	})
}

// MutePlayer adds a sender to the user's muted set.
func (m *Manager) MutePlayer(ctx context.Context, userID, name string) (Outcome, error) {
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.MuteSender(name)
	})
}

// UnmutePlayer removes a sender from the user's muted set.
func (m *Manager) UnmutePlayer(ctx context.Context, userID, name string) (Outcome, error) {
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.UnmuteSender(name)
	})
}

// AddChannel adds a token to the user's channel scope.
func (m *Manager) AddChannel(ctx context.Context, userID, token string) (Outcome, error) {
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.AddChannel(token)
	})
}

// RemoveChannel removes a token from the user's channel scope.
func (m *Manager) RemoveChannel(ctx context.Context, userID, token string) (Outcome, error) {
	return m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		return cfg.RemoveChannel(token)
	})
}

// ResetChannels clears the user's channel scope. Idempotent.
func (m *Manager) ResetChannels(ctx context.Context, userID string) error {
	_, err := m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		cfg.ResetChannels()
		return OutcomeRemoved, nil
	})
	return err
}

// ToggleDebug flips the user's diagnostic flag and returns the new state.
func (m *Manager) ToggleDebug(ctx context.Context, userID string) (bool, error) {
	var state bool
	_, err := m.mutate(ctx, userID, func(cfg *FilterConfig) (Outcome, error) {
		state = cfg.ToggleDebug()
		return OutcomeAdded, nil
	})
	return state, err
}

// ResetAll overwrites the user's record with fresh defaults.
func (m *Manager) ResetAll(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrIdentityUnavailable
	}
	m.mu.Lock()
	cfg := NewFilterConfig(m.defaultPhrases())
	m.cache.Add(userID, cfg)
	m.mu.Unlock()
	m.changed(userID, cfg)
	return nil
}

// CopyFrom overwrites the user's record with a deep copy of another user's.
// The self-reference check is case-insensitive; the source lookup itself is
// case-sensitive against the store's keys.
func (m *Manager) CopyFrom(ctx context.Context, userID, sourceID string) (Outcome, error) {
	if userID == "" {
		return OutcomeNotFound, ErrIdentityUnavailable
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return OutcomeNotFound, ErrEmptyInput
	}
	if strings.EqualFold(sourceID, userID) {
		return OutcomeSelfCopy, nil
	}

	m.mu.Lock()
	src, ok := m.cache.Get(sourceID)
	if !ok {
		loaded, found, err := m.load(ctx, sourceID)
		if err != nil {
			m.mu.Unlock()
			return OutcomeNotFound, err
		}
		if found {
			m.cache.Add(sourceID, loaded)
			src = loaded
		}
		ok = found
	}
	if !ok {
		m.mu.Unlock()
		return OutcomeSourceNotFound, nil
	}
	cfg := src.Clone()
	m.cache.Add(userID, cfg)
	m.mu.Unlock()

	m.changed(userID, cfg)
	return OutcomeCopied, nil
}
