package core

// StateDelta is a partial state update carried by an AgentResult. Absent
// fields (nil pointers, empty slices/maps) leave the corresponding state field
// untouched; Merge applies the append-only / monotonic rules per field.
type StateDelta struct {
	Progress    *int           `json:"progress,omitempty"`
	CurrentStep *string        `json:"current_step,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToolResult records a single tool invocation performed during a turn.
type ToolResult struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AgentResult is the output of one agent invocation (a turn). It is a delta
// against the input AgentState, never a replacement:
//
//   - Messages holds only the messages produced this turn
//   - Delta is an optional partial state update
//   - Command is an optional routing instruction for the executor
//   - ToolResults records tool invocations made during the turn
//   - Metadata carries turn-level annotations for the executor; it is NOT
//     merged into session state (use Delta.Metadata for that)
//
// A cancelled turn is not a failure: it returns an empty result (no messages,
// no command, no error strings) with Cancelled set so executors can tell the
// two apart.
type AgentResult struct {
	Messages    []Message      `json:"messages,omitempty"`
	Delta       *StateDelta    `json:"delta,omitempty"`
	Command     *Command       `json:"command,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Cancelled   bool           `json:"cancelled,omitempty"`
}

// CancelledResult returns the empty result an agent must yield when it
// observes its session's cancellation.
func CancelledResult() AgentResult {
	return AgentResult{Cancelled: true}
}

// IsEmpty reports whether the result carries no messages, no state update and
// no command.
func (r AgentResult) IsEmpty() bool {
	return len(r.Messages) == 0 && r.Delta == nil && r.Command == nil
}
