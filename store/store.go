package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chatward-plugin/chatfilter"
)

const configPrefix = "cfg:"

// Store is the persistence collaborator holding one filter record per user
// identifier. It allows for easy swapping of the real database with a mock
// in tests, and satisfies chatfilter.Loader.
type Store interface {
	LoadConfig(ctx context.Context, userID string) (*chatfilter.FilterConfig, bool, error)
	SaveConfig(ctx context.Context, userID string, cfg *chatfilter.FilterConfig) error
	Close() error
}

// BadgerStore is the production implementation of the Store interface.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to be used as a logger for BadgerDB.
type badgerLogger struct {
	*slog.Logger
}

func (l *badgerLogger) Warningf(f string, v ...any) { l.Warn(fmt.Sprintf(f, v...)) }
func (l *badgerLogger) Errorf(f string, v ...any)   { l.Error(fmt.Sprintf(f, v...)) }
func (l *badgerLogger) Infof(f string, v ...any)    {}
func (l *badgerLogger) Debugf(f string, v ...any)   {}

// NewBadgerStore initializes and returns a new BadgerStore.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)

	// Per-user records are small JSON blobs; keep them in the LSM-tree
	// instead of the value log.
	opts.ValueThreshold = 1024
	opts.Logger = &badgerLogger{slog.Default()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close gracefully closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// LoadConfig fetches a user's record. The second result is false when no
// record exists under the exact key. Decoding ignores unknown JSON fields,
// which is how legacy fields on old records get dropped.
func (s *BadgerStore) LoadConfig(ctx context.Context, userID string) (*chatfilter.FilterConfig, bool, error) {
	key := []byte(configPrefix + userID)
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cfg chatfilter.FilterConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false, fmt.Errorf("failed to decode filter record for %q: %w", userID, err)
	}
	return &cfg, true, nil
}

// SaveConfig writes a user's record, overwriting any previous one.
func (s *BadgerStore) SaveConfig(ctx context.Context, userID string, cfg *chatfilter.FilterConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode filter record for %q: %w", userID, err)
	}
	key := []byte(configPrefix + userID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
}
