// Package agent provides the agent contract and its concrete implementations.
//
// An agent is a capability-declaring unit of work: it is constructed from an
// immutable Config, decides via CanHandle whether a free-text request falls
// into its declared capabilities, and produces one turn result per Execute
// call. Shared lifecycle concerns (handoff tool construction, tool
// aggregation, cancellation checks, provenance stamping) live in Base, a
// composable helper embedded by concrete agents such as ModelAgent.
//
// Agents never mutate the AgentState they receive; they return an AgentResult
// delta that the caller merges with core.Merge.
package agent
