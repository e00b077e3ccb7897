package core

// Merge applies an AgentResult to an AgentState and returns the next state.
// It is the single place state transitions happen; no component mutates an
// AgentState in place. The input state is not modified.
//
// Rules, per field:
//
//   - Messages: result messages are appended (never replaced)
//   - Progress: max(previous, incoming) when the delta specifies progress,
//     clamped to [0,100]; absent or regressing values leave it unchanged
//   - CurrentStep: overwritten unconditionally when specified (it denotes
//     "what is happening now")
//   - Errors: concatenated
//   - Metadata: merged key-by-key, incoming values win on conflict
func Merge(state AgentState, result AgentResult) AgentState {
	next := state.Clone()
	next.Messages = append(next.Messages, result.Messages...)

	d := result.Delta
	if d == nil {
		return next
	}

	if d.Progress != nil {
		p := *d.Progress
		if p > 100 {
			p = 100
		}
		if p > next.Progress {
			next.Progress = p
		}
	}
	if d.CurrentStep != nil {
		next.CurrentStep = *d.CurrentStep
	}
	next.Errors = append(next.Errors, d.Errors...)
	for k, v := range d.Metadata {
		next.Metadata[k] = v
	}

	return next
}

// ApplyHandoff prepares the state the receiving agent of a handoff sees:
// carried-over messages are appended and the command's context metadata
// (including the reserved provenance keys) is merged, incoming values winning.
// Like Merge it is pure; executors call it when they follow a Command.
func ApplyHandoff(state AgentState, cmd *Command) AgentState {
	next := state.Clone()
	if cmd == nil {
		return next
	}
	next.Messages = append(next.Messages, cmd.Messages...)
	for k, v := range cmd.Metadata {
		next.Metadata[k] = v
	}
	return next
}
