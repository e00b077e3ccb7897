package tool

import (
	"context"

	"github.com/hupe1980/agentrelay/cancel"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Context provides a constrained, auditable surface for tool implementations
// invoked during a single agent turn. It accumulates side channel output (a
// pending routing Command, result metadata) without directly mutating the
// session state; the executor collects the accumulated values into the turn's
// AgentResult after all tool calls complete.
//
// A Context is scoped to one function call and must not be retained beyond it.
type Context struct {
	ctx            context.Context
	sessionID      string
	agentName      string
	functionCallID string
	registry       *cancel.Registry
	logger         logging.Logger

	command  *core.Command
	metadata map[string]any
}

// ContextConfig carries the identifying fields of a tool invocation.
type ContextConfig struct {
	SessionID      string
	AgentName      string
	FunctionCallID string
	Registry       *cancel.Registry
	Logger         logging.Logger
}

// NewContext constructs a tool context bound to one function call.
func NewContext(ctx context.Context, cfg ContextConfig) *Context {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{
		ctx:            ctx,
		sessionID:      cfg.SessionID,
		agentName:      cfg.AgentName,
		functionCallID: cfg.FunctionCallID,
		registry:       cfg.Registry,
		logger:         logger,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *Context) Context() context.Context { return tc.ctx }

// SessionID returns the session ID associated with the tool invocation.
func (tc *Context) SessionID() string { return tc.sessionID }

// AgentName returns the name of the agent executing the tool.
func (tc *Context) AgentName() string { return tc.agentName }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *Context) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger associated with the tool invocation.
func (tc *Context) Logger() logging.Logger { return tc.logger }

// IsCancelled reports whether the session this invocation belongs to has been
// cancelled. Invocations without a registry are never considered cancelled.
func (tc *Context) IsCancelled() bool {
	if tc.registry == nil {
		return false
	}
	return tc.registry.IsCancelled(tc.sessionID)
}

// SetCommand records a routing command for the executor to emit with the
// turn's result. A turn carries at most one command; the first one recorded
// wins and later attempts are dropped with a warning.
func (tc *Context) SetCommand(cmd *core.Command) {
	if cmd == nil {
		return
	}
	if tc.command != nil {
		tc.logger.Warn("tool.command.dropped",
			"agent", tc.agentName,
			"kept_target", tc.command.TargetAgent,
			"dropped_target", cmd.TargetAgent,
			"function_call_id", tc.functionCallID,
		)
		return
	}
	tc.command = cmd
}

// Command returns the routing command recorded during this invocation, or nil.
func (tc *Context) Command() *core.Command { return tc.command }

// SetMetadata records an executor-facing annotation for the turn's result.
// Keys collide last-writer-wins within a single invocation.
func (tc *Context) SetMetadata(key string, value any) {
	if tc.metadata == nil {
		tc.metadata = map[string]any{}
	}
	tc.metadata[key] = value
}

// Metadata returns the annotations recorded during this invocation, or nil.
func (tc *Context) Metadata() map[string]any { return tc.metadata }
