package session

import (
	"context"
	"errors"
	"sync"
)

// HighScoreStore defines the key-value collaborator used for the high score.
// Only engine.HighScoreKey is ever used.
type HighScoreStore interface {
	// Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
}

// ErrStoreUnavailable is returned by a MemoryStore configured to fail
var ErrStoreUnavailable = errors.New("score store unavailable")

// MemoryStore implements HighScoreStore in memory. It is used for ephemeral
// runs and tests, and can be told to fail.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	failGet  bool
	failSet  bool
	setCalls int
}

// NewMemoryStore creates an in-memory store seeded with the given values
func NewMemoryStore(seed map[string]string) *MemoryStore {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

// Get returns the stored value for key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGet {
		return "", false, ErrStoreUnavailable
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++
	if s.failSet {
		return ErrStoreUnavailable
	}
	s.values[key] = value
	return nil
}

// SetFailures makes subsequent reads and/or writes fail
func (s *MemoryStore) SetFailures(get, set bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = get
	s.failSet = set
}

// Value returns the stored value without a context, for inspection
func (s *MemoryStore) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// SetCalls returns how many writes were attempted
func (s *MemoryStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}
