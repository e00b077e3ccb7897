package session

import "github.com/hupe1980/agentrelay/core"

// Store persists the canonical AgentState per session. Implementations must
// be safe for concurrent use across sessions; within one session callers are
// expected to apply results sequentially (one agent active at a time).
type Store interface {
	// Get returns a snapshot of the session's state, lazily creating an
	// empty state for unknown sessions.
	Get(sessionID string) (core.AgentState, error)

	// Apply merges a turn result into the session's state using the shared
	// merge rules and returns the updated snapshot. Cancelled (empty)
	// results leave the state unchanged.
	Apply(sessionID string, result core.AgentResult) (core.AgentState, error)

	// ApplyHandoff threads a routing command's payload (carried messages,
	// merged context) into the session's state and returns the updated
	// snapshot.
	ApplyHandoff(sessionID string, cmd *core.Command) (core.AgentState, error)

	// Delete removes all stored state for a session.
	Delete(sessionID string) error
}
