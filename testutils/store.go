// testutils/store.go
package testutils

import (
	"context"
	"encoding/json"
	"sync"

	"chatward-plugin/chatfilter"
)

// InMemoryStore keeps records as marshaled JSON, so tests exercise the same
// encode/decode path as the real store, legacy-field dropping included.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]byte)}
}

// PutRaw stores a raw JSON record, letting tests plant legacy fields.
func (s *InMemoryStore) PutRaw(userID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = raw
}

func (s *InMemoryStore) LoadConfig(ctx context.Context, userID string) (*chatfilter.FilterConfig, bool, error) {
	s.mu.RLock()
	raw, found := s.records[userID]
	s.mu.RUnlock()
	if !found {
		return nil, false, nil
	}
	var cfg chatfilter.FilterConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

func (s *InMemoryStore) SaveConfig(ctx context.Context, userID string, cfg *chatfilter.FilterConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = raw
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// MockStore counts loads and supports error injection.
type MockStore struct {
	mu          sync.RWMutex
	records     map[string]*chatfilter.FilterConfig
	loadCalls   int
	errToReturn error
}

func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]*chatfilter.FilterConfig)}
}

func (s *MockStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errToReturn = err
}

func (s *MockStore) LoadCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadCalls
}

func (s *MockStore) Put(userID string, cfg *chatfilter.FilterConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = cfg.Clone()
}

func (s *MockStore) LoadConfig(ctx context.Context, userID string) (*chatfilter.FilterConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if s.errToReturn != nil {
		return nil, false, s.errToReturn
	}
	cfg, found := s.records[userID]
	if !found {
		return nil, false, nil
	}
	return cfg.Clone(), true, nil
}

func (s *MockStore) SaveConfig(ctx context.Context, userID string, cfg *chatfilter.FilterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errToReturn != nil {
		return s.errToReturn
	}
	s.records[userID] = cfg.Clone()
	return nil
}

func (s *MockStore) Close() error { return nil }

// MockStoreWithSignal signals via channel when a save lands. Useful for
// testing the asynchronous saver without time.Sleep.
type MockStoreWithSignal struct {
	MockStore
	SaveSignal chan string
}

func NewMockStoreWithSignal(bufferSize int) *MockStoreWithSignal {
	return &MockStoreWithSignal{
		MockStore:  MockStore{records: make(map[string]*chatfilter.FilterConfig)},
		SaveSignal: make(chan string, bufferSize),
	}
}

func (s *MockStoreWithSignal) SaveConfig(ctx context.Context, userID string, cfg *chatfilter.FilterConfig) error {
	if err := s.MockStore.SaveConfig(ctx, userID, cfg); err != nil {
		return err
	}
	s.SaveSignal <- userID
	return nil
}
