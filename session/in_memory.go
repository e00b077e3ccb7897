package session

import (
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// InMemoryStore is a volatile Store implementation keeping states in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Every returned state is a clone, so
// callers can never mutate the stored history in place.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]core.AgentState
}

// compile-time interface check
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]core.AgentState)}
}

// Get returns a clone of the stored state. An unknown session reads as a
// fresh empty state without creating an entry; only Apply and ApplyHandoff
// materialize sessions.
func (s *InMemoryStore) Get(sessionID string) (core.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if state, ok := s.states[sessionID]; ok {
		return state.Clone(), nil
	}
	return core.NewAgentState(sessionID), nil
}

// Apply merges the turn result through core.Merge and stores the outcome.
func (s *InMemoryStore) Apply(sessionID string, result core.AgentResult) (core.AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := core.Merge(s.getLocked(sessionID), result)
	s.states[sessionID] = merged

	return merged.Clone(), nil
}

// ApplyHandoff threads the command payload into the session's state.
func (s *InMemoryStore) ApplyHandoff(sessionID string, cmd *core.Command) (core.AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := core.ApplyHandoff(s.getLocked(sessionID), cmd)
	s.states[sessionID] = merged

	return merged.Clone(), nil
}

// Delete removes all stored state for a session.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// getLocked fetches or lazily creates the state; caller holds the write lock.
func (s *InMemoryStore) getLocked(sessionID string) core.AgentState {
	if state, ok := s.states[sessionID]; ok {
		return state
	}
	state := core.NewAgentState(sessionID)
	s.states[sessionID] = state
	return state
}
