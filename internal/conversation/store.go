package conversation

import (
	"context"
	"sync"
)

// StateStore holds one State per in-progress call, keyed by call ID.
// Implementations must isolate keys: turns from different calls run
// concurrently and must never observe each other's state.
type StateStore interface {
	// Get returns the state for a call, or (nil, nil) when absent.
	Get(ctx context.Context, callID string) (*State, error)
	// Save creates or replaces the state for state.CallID.
	Save(ctx context.Context, state *State) error
	// Delete removes the state entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, callID string) error
}

// MemoryStateStore is a mutex-guarded in-process StateStore. It is the
// default when no Redis address is configured, and the workhorse in tests.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStateStore creates an empty in-memory store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*State)}
}

// Get returns a copy of the stored state so callers can mutate freely.
func (s *MemoryStateStore) Get(_ context.Context, callID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[callID].Clone(), nil
}

// Save stores a copy of the state.
func (s *MemoryStateStore) Save(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.CallID] = state.Clone()
	return nil
}

// Delete removes the state entry.
func (s *MemoryStateStore) Delete(_ context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, callID)
	return nil
}

// Len reports the number of active calls. Used by tests and the health check.
func (s *MemoryStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
