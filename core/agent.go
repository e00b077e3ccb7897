package core

import "context"

// Agent defines the contract every agent implementation must satisfy.
//
// Agents are the primary processing units in agentrelay. An external graph
// executor repeatedly selects an agent for a session, feeds it the current
// AgentState and applies the returned delta via Merge. The core does not
// implement that loop; it only guarantees the contract the loop depends on:
//
//   - Execute must not mutate the input state in place; it returns a delta
//   - Execute must observe the session's cancellation before any externally
//     visible side effect (model call, tool call) and return an empty,
//     Cancelled-marked result promptly when the session is cancelled
//   - A returned Command is a terminal instruction for the turn, not a nested
//     call into the target agent
//   - CanHandle is pure and must not consult external services
type Agent interface {
	Name() string
	Description() string
	CanHandle(request string) bool
	Execute(ctx context.Context, state AgentState) (AgentResult, error)
}
