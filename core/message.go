package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool/function invocation request surfaced by a model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Optional stable id (can be supplied later)
	Name      string `json:"name"`                // Tool / function name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
	Metadata     map[string]any
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches originating FunctionCall ID
	Name     string `json:"name"`               // Function name
	Response any    `json:"response,omitempty"` // Successful result (any shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
	Metadata         map[string]any
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// Message is one entry in a session's append-only conversation log. After
// emission it should be treated as immutable: agents only ever append new
// messages, never delete or reorder prior entries.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`   // user, assistant, tool, system
	Author    string    `json:"author"` // agent name, "user" or system identifier
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a bare message with a fresh id and UTC timestamp.
// Prefer helper constructors for common semantic categories.
func NewMessage(role, author string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewTextMessage creates a message containing a single text part.
func NewTextMessage(role, author, text string) Message {
	m := NewMessage(role, author)
	m.Parts = []Part{TextPart{Text: text}}
	return m
}

// NewUserMessage is a convenience wrapper for a user-authored text message.
func NewUserMessage(text string) Message {
	return NewTextMessage("user", "user", text)
}

// NewAssistantMessage is a convenience wrapper for an agent-authored text message.
func NewAssistantMessage(author, text string) Message {
	return NewTextMessage("assistant", author, text)
}

// NewFunctionCallMessage represents an agent requesting execution of a named
// function/tool.
func NewFunctionCallMessage(author, functionName, args string) Message {
	m := NewMessage("assistant", author)
	m.Parts = []Part{FunctionCallPart{FunctionCall: FunctionCall{Name: functionName, Arguments: args}}}
	return m
}

// NewFunctionResponseMessage records the completion result (or error) of a
// tool/function invocation. If err is non-nil its message is copied into the
// response Error field.
func NewFunctionResponseMessage(author, id, functionName string, result any, err error) Message {
	m := NewMessage("tool", author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	m.Parts = []Part{FunctionResponsePart{FunctionResponse: fr}}
	return m
}

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }

// Text concatenates all text parts preserving their original order.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// GetFunctionCalls returns any FunctionCall parts contained within the message
// preserving their original order.
func (m Message) GetFunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// message preserving their original order.
func (m Message) GetFunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}
