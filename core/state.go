package core

// AgentState is the shared conversational state threaded between agent
// invocations within one session. It is passed by value: agents receive a
// snapshot and return an AgentResult delta; only Merge produces the next
// state. Invariants:
//
//   - SessionID is immutable once set
//   - Messages is append-only (no deletion or reordering of prior entries)
//   - Progress is monotonically non-decreasing, clamped to [0,100]
//   - Errors is append-only
//   - Metadata keys may be overwritten (last writer wins)
type AgentState struct {
	SessionID   string         `json:"session_id"`
	Messages    []Message      `json:"messages"`
	Progress    int            `json:"progress"`
	CurrentStep string         `json:"current_step"`
	Errors      []string       `json:"errors,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewAgentState creates an empty state bound to a session.
func NewAgentState(sessionID string) AgentState {
	return AgentState{
		SessionID: sessionID,
		Messages:  []Message{},
		Metadata:  map[string]any{},
	}
}

// Clone returns a copy with independently owned slices and metadata map so the
// original cannot be mutated through the copy. Message values are shared; they
// are treated as immutable after emission.
func (s AgentState) Clone() AgentState {
	c := s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	c.Errors = make([]string, len(s.Errors))
	copy(c.Errors, s.Errors)
	c.Metadata = make(map[string]any, len(s.Metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return c
}

// LastUserText returns the text of the most recent user message, or "" when
// the log contains none. Used by routing helpers.
func (s AgentState) LastUserText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == "user" {
			return s.Messages[i].Text()
		}
	}
	return ""
}
