package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	BaseOptions

	// Instruction overrides the config's SystemPrompt as the instruction
	// source, e.g. to compute instructions from session state.
	Instruction *Instruction

	// MaxHistoryMessages caps the conversation history sent to the backend.
	// Zero or negative means unlimited.
	MaxHistoryMessages int

	// MaxToolIterations bounds the model/tool round trips within one turn.
	MaxToolIterations int
}

// ModelAgent is the standard language-model-backed agent. One Execute call is
// one turn: the agent sends the conversation to its model backend, dispatches
// any requested tool calls (including generated handoff tools) and returns
// the produced messages plus an optional routing command as a delta.
//
// The input state is never mutated; cancellation is polled before every model
// invocation and before a command is emitted, so an asynchronous cancel makes
// the turn return promptly with an empty, non-error result.
type ModelAgent struct {
	Base
	llm                model.Model
	instruction        Instruction
	maxHistoryMessages int
	maxToolIterations  int
}

// compile-time interface check
var _ core.Agent = (*ModelAgent)(nil)

// NewModelAgent constructs a model-backed agent from an immutable config and
// a backend. Construction fails on an invalid config or a missing backend;
// backend credential errors surface earlier, from the backend constructor,
// and are equally fatal.
func NewModelAgent(cfg Config, llm model.Model, optFns ...func(o *ModelAgentOptions)) (*ModelAgent, error) {
	if llm == nil {
		return nil, fmt.Errorf("agent %q: model backend is required", cfg.Name)
	}

	opts := ModelAgentOptions{
		MaxHistoryMessages: 20,
		MaxToolIterations:  5,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	base, err := NewBase(cfg, func(o *BaseOptions) { *o = opts.BaseOptions })
	if err != nil {
		return nil, err
	}

	instruction := NewInstructionFromText(cfg.SystemPrompt)
	if opts.Instruction != nil {
		instruction = *opts.Instruction
	}

	return &ModelAgent{
		Base:               base,
		llm:                llm,
		instruction:        instruction,
		maxHistoryMessages: opts.MaxHistoryMessages,
		maxToolIterations:  opts.MaxToolIterations,
	}, nil
}

// Execute runs one turn against the current shared state and returns the
// delta to merge. A failed backend call is turn-local: it is reported through
// the delta's error list with no command, never as a Go error, so the caller
// can decide whether to retry, hand off or terminate. A cancelled session
// yields an empty result with Cancelled set and no error entry.
func (a *ModelAgent) Execute(ctx context.Context, state core.AgentState) (core.AgentResult, error) {
	logger := a.Logger()

	if a.IsCancelled(state.SessionID) {
		logger.Info("agent.turn.cancelled", "agent", a.Name(), "session_id", state.SessionID)
		return core.CancelledResult(), nil
	}

	instructions, err := a.resolveInstructions(state)
	if err != nil {
		return core.AgentResult{}, fmt.Errorf("agent %q: resolve instructions: %w", a.Name(), err)
	}

	tools := a.AllTools()
	toolsByName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		toolsByName[t.Name()] = t
	}

	conversation := a.trimHistory(state.Messages)
	cfg := a.Config()

	var (
		produced    []core.Message
		toolResults []core.ToolResult
		command     *core.Command
		metadata    map[string]any
	)

	for iteration := 0; iteration < a.maxToolIterations; iteration++ {
		// The backend call is opaque and not preemptible, so the
		// cancellation predicate is polled right before it.
		if a.IsCancelled(state.SessionID) {
			logger.Info("agent.turn.cancelled", "agent", a.Name(), "session_id", state.SessionID)
			return core.CancelledResult(), nil
		}

		resp, err := a.llm.Generate(ctx, model.Request{
			Instructions: instructions,
			Messages:     conversation,
			Tools:        toolDefinitions(tools),
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
		})
		if err != nil {
			logger.Error("agent.model.error", "agent", a.Name(), "session_id", state.SessionID, "error", err.Error())

			return core.AgentResult{
				Messages:    produced,
				ToolResults: toolResults,
				Delta: &core.StateDelta{
					Errors: []string{fmt.Sprintf("model %v", err)},
				},
			}, nil
		}

		assistant := core.NewMessage("assistant", a.Name())
		assistant.Parts = resp.Parts
		produced = append(produced, assistant)
		conversation = append(conversation, assistant)

		calls := assistant.GetFunctionCalls()
		if len(calls) == 0 {
			break
		}

		callMessages, callResults, cmd, callMeta := a.dispatchToolCalls(ctx, state, toolsByName, calls)
		produced = append(produced, callMessages...)
		conversation = append(conversation, callMessages...)
		toolResults = append(toolResults, callResults...)

		for k, v := range callMeta {
			if metadata == nil {
				metadata = map[string]any{}
			}
			metadata[k] = v
		}

		if cmd != nil {
			// A handoff ends the turn; control returns to the caller,
			// never recurses into the target agent from here.
			command = cmd
			break
		}
	}

	if command != nil && a.IsCancelled(state.SessionID) {
		logger.Info("agent.turn.cancelled", "agent", a.Name(), "session_id", state.SessionID)
		return core.CancelledResult(), nil
	}

	return core.AgentResult{
		Messages:    produced,
		ToolResults: toolResults,
		Command:     command,
		Metadata:    metadata,
	}, nil
}

// resolveInstructions produces the final system prompt by resolving the
// instruction source and rendering template placeholders against the session
// metadata.
func (a *ModelAgent) resolveInstructions(state core.AgentState) (string, error) {
	text, err := a.instruction.Resolve(state)
	if err != nil {
		return "", err
	}
	return util.RenderTemplate(text, state.Metadata)
}

// trimHistory limits the conversation sent to the backend to the most recent
// messages. The shared state itself keeps the full log.
func (a *ModelAgent) trimHistory(messages []core.Message) []core.Message {
	if a.maxHistoryMessages <= 0 || len(messages) <= a.maxHistoryMessages {
		return append([]core.Message(nil), messages...)
	}
	return append([]core.Message(nil), messages[len(messages)-a.maxHistoryMessages:]...)
}

// dispatchToolCalls executes the model's function call requests in order and
// collects the response messages, structured results, an optional routing
// command (first recorded wins) and executor-facing metadata.
func (a *ModelAgent) dispatchToolCalls(
	ctx context.Context,
	state core.AgentState,
	toolsByName map[string]tool.Tool,
	calls []core.FunctionCall,
) ([]core.Message, []core.ToolResult, *core.Command, map[string]any) {
	var (
		messages []core.Message
		results  []core.ToolResult
		command  *core.Command
		metadata map[string]any
	)

	for _, call := range calls {
		toolCtx := tool.NewContext(ctx, tool.ContextConfig{
			SessionID:      state.SessionID,
			AgentName:      a.Name(),
			FunctionCallID: call.ID,
			Registry:       a.Registry(),
			Logger:         a.Logger(),
		})

		result, err := a.executeCall(toolCtx, toolsByName, call)

		tr := core.ToolResult{CallID: call.ID, Name: call.Name, Result: result}
		if err != nil {
			tr.Error = err.Error()
		}
		results = append(results, tr)
		messages = append(messages, core.NewFunctionResponseMessage(a.Name(), call.ID, call.Name, result, err))

		if command == nil {
			command = toolCtx.Command()
		}

		for k, v := range toolCtx.Metadata() {
			if metadata == nil {
				metadata = map[string]any{}
			}
			metadata[k] = v
		}
	}

	return messages, results, command, metadata
}

// executeCall decodes the serialized arguments and invokes the named tool.
func (a *ModelAgent) executeCall(toolCtx *tool.Context, toolsByName map[string]tool.Tool, call core.FunctionCall) (any, error) {
	t, exists := toolsByName[call.Name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, fmt.Errorf("decode arguments for %q: %w", call.Name, err)
		}
	}

	return t.Call(toolCtx, args)
}

// toolDefinitions converts tools into the backend-facing schema descriptors.
func toolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
