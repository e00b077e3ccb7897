package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by an agent turn.
// Model and Temperature carry the per-agent invocation parameters; a backend
// falls back to its own defaults when they are unset.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Messages     []core.Message   `json:"messages"`     // Conversation history, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Model        string           `json:"model,omitempty"`
	Temperature  *float64         `json:"temperature,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the backend's answer to a single Request: assistant content
// parts holding free text and/or function call intents.
type Response struct {
	Parts        []core.Part `json:"parts"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface agents use to drive generation. The call is
// opaque and not preemptible; callers poll their cancellation token before
// invoking it, and pass ctx so transport-level cancellation still applies.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Canned responses are keyed on the text of the last message in the request;
// unmatched prompts produce a deterministic echo. Safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]*Response
	failWith  error
	calls     int
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]*Response),
	}
}

// AddResponse registers a deterministic canned text completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = &Response{
		Parts:        []core.Part{core.TextPart{Text: response}},
		FinishReason: "stop",
	}
}

// AddToolCall registers a canned tool-invocation intent for an input prompt.
func (m *MockModel) AddToolCall(prompt, toolName, argsJSON string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = &Response{
		Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        core.NewID(),
			Name:      toolName,
			Arguments: argsJSON,
		}}},
		FinishReason: "tool_calls",
	}
}

// FailWith makes every subsequent Generate call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Calls returns how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	failWith := m.failWith
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failWith != nil {
		return nil, failWith
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	inputText := req.Messages[len(req.Messages)-1].Text()

	m.mu.Lock()
	resp := m.responses[inputText]
	m.mu.Unlock()

	if resp != nil {
		return resp, nil
	}
	return &Response{
		Parts:        []core.Part{core.TextPart{Text: fmt.Sprintf("Mock response to: %s", inputText)}},
		FinishReason: "stop",
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
