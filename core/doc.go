// Package core provides the foundational domain types and contracts used by
// agentrelay. It defines the core abstractions for:
//
//   - Agents (capability-declaring units of conversational work)
//   - Messages (ordered, append-only conversation records)
//   - AgentState / AgentResult (shared state threading between turns)
//   - Commands (explicit handoff routing instructions)
//   - The pure Merge function (the single place state transitions are applied)
//
// The package intentionally keeps implementation concerns (cancellation
// registry, concrete agents, model backends, tool plumbing) out of scope,
// exposing small types to enable custom executors and extensions.
package core
