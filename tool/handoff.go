package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// HandoffToolPrefix is the naming prefix shared by all generated handoff tools.
const HandoffToolPrefix = "transfer_to_"

// HandoffToolName returns the tool name generated for a handoff target.
func HandoffToolName(target string) string { return HandoffToolPrefix + target }

// IsHandoffToolName reports whether name follows the handoff tool naming
// convention and, if so, the target agent it addresses.
func IsHandoffToolName(name string) (string, bool) {
	target, ok := strings.CutPrefix(name, HandoffToolPrefix)
	if !ok || target == "" {
		return "", false
	}
	return target, true
}

// handoffTool requests transfer of control to a fixed target agent. One
// instance is generated per declared handoff target; the model selects a
// target by calling the matching tool rather than by naming agents in free
// text.
type handoffTool struct {
	issuer string
	target string
}

// NewHandoffTool builds the transfer tool for a single handoff target. The
// issuer is the agent the tool is attached to; its name is stamped into the
// resulting command as provenance and cannot be overridden by tool arguments.
func NewHandoffTool(issuer, target string) Tool {
	return &handoffTool{issuer: issuer, target: target}
}

// NewHandoffTools builds one transfer tool per declared target.
func NewHandoffTools(issuer string, targets []string) []Tool {
	tools := make([]Tool, 0, len(targets))
	for _, target := range targets {
		tools = append(tools, NewHandoffTool(issuer, target))
	}
	return tools
}

func (t *handoffTool) Name() string { return HandoffToolName(t.target) }

func (t *handoffTool) Description() string {
	return fmt.Sprintf("Transfer the conversation to the %q agent. Use when that agent is better suited to handle the request.", t.target)
}

func (t *handoffTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "Why control is being transferred",
			},
			"context": map[string]any{
				"type":        "object",
				"description": "Additional context to pass to the target agent",
			},
		},
		"required": []string{},
	}
}

// Call records a routing command targeting the tool's fixed agent. On a
// cancelled session the call is a no-op: it reports the cancellation in its
// result payload and records no command, so an in-flight model turn cannot
// route past a cancel.
func (t *handoffTool) Call(tc *Context, args map[string]any) (any, error) {
	if tc.IsCancelled() {
		tc.Logger().Info("tool.handoff.skipped",
			"from_agent", t.issuer,
			"to_agent", t.target,
			"session_id", tc.SessionID(),
		)
		return map[string]any{"transferred": false, "reason": "session cancelled"}, nil
	}

	reason, _ := args["reason"].(string)
	ctxMap, _ := args["context"].(map[string]any)

	cmd := core.NewHandoffCommand(t.issuer, core.HandoffInfo{
		TargetAgent: t.target,
		Reason:      reason,
		Context:     ctxMap,
	})
	tc.SetCommand(cmd)

	tc.Logger().Info("tool.handoff.request",
		"from_agent", t.issuer,
		"to_agent", t.target,
		"function_call_id", tc.FunctionCallID(),
	)

	return map[string]any{"transferred": true, "agent": t.target}, nil
}
