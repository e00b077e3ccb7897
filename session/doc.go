// Package session houses storage for the canonical per-session AgentState.
// The store is the single writer of state transitions: every turn result is
// applied through core.Merge, so the append-only and monotonicity rules hold
// regardless of which agent produced the result.
//
// Add additional backends (Redis, Postgres, etc.) in sub-packages without
// changing any calling code; only the wiring layer needs to decide which
// implementation to instantiate.
package session
