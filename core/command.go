package core

import "fmt"

// Reserved metadata keys stamped onto every handoff Command. They are always
// set by the issuing side and can never be overridden by caller-supplied
// context.
const (
	// MetaHandoffFrom carries the issuing agent's name (provenance).
	MetaHandoffFrom = "handoffFrom"
	// MetaHandoffReason carries the human-readable transfer reason, when supplied.
	MetaHandoffReason = "handoffReason"
)

// HandoffInfo is a caller-facing request to transfer control to another agent.
// TargetAgent should be one of the issuing agent's declared handoff targets;
// the issuing side does not validate reachability (that is the executor's
// responsibility), but targeting an undeclared agent is a precondition
// violation.
type HandoffInfo struct {
	TargetAgent string         `json:"target_agent"`
	Reason      string         `json:"reason,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
}

// Command is a routing instruction consumed by the external graph executor.
// It is a terminal instruction for the issuing turn: control returns to the
// executor, which selects the target agent for the next turn. It never causes
// a nested call into the target from within the issuing invocation.
//
// Metadata always contains MetaHandoffFrom equal to the issuing agent's name;
// MetaHandoffReason is present when a reason was supplied.
type Command struct {
	TargetAgent string         `json:"target_agent"`
	Reason      string         `json:"reason,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
}

// From returns the issuing agent's name recorded in the command metadata.
func (c *Command) From() string {
	if v, ok := c.Metadata[MetaHandoffFrom].(string); ok {
		return v
	}
	return ""
}

// NewHandoffCommand builds a routing command from a handoff request, stamping
// provenance. The command metadata is the union of the caller-supplied context
// and the reserved keys; the reserved keys always hold the factory's values,
// so context entries named handoffFrom/handoffReason are discarded. When no
// reason was supplied, MetaHandoffReason stays absent. The message payload is
// one synthetic transfer record attributed to the issuing agent, followed by
// any carried-over messages.
func NewHandoffCommand(issuer string, info HandoffInfo) *Command {
	md := make(map[string]any, len(info.Context)+2)
	for k, v := range info.Context {
		md[k] = v
	}
	md[MetaHandoffFrom] = issuer
	delete(md, MetaHandoffReason)
	if info.Reason != "" {
		md[MetaHandoffReason] = info.Reason
	}

	reason := info.Reason
	if reason == "" {
		reason = "no reason given"
	}
	transfer := NewTextMessage("system", issuer, fmt.Sprintf("Transferring control to agent %q: %s", info.TargetAgent, reason))

	messages := make([]Message, 0, len(info.Messages)+1)
	messages = append(messages, transfer)
	messages = append(messages, info.Messages...)

	return &Command{
		TargetAgent: info.TargetAgent,
		Reason:      info.Reason,
		Metadata:    md,
		Messages:    messages,
	}
}
