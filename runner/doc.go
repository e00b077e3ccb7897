// Package runner provides the single-turn driver that wires agents, the
// session store and the cancellation registry together. It deliberately does
// not walk the agent graph: one Turn call executes exactly one agent and
// returns the routing command's target (if any) to the caller, which owns the
// scheduling policy.
package runner
