// Package model defines the provider-agnostic boundary for the language model
// backend. The core treats the backend as an opaque function: it consumes a
// system prompt, conversation messages and an optional tool schema, and
// returns either free text or a structured tool-invocation intent.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function call representation (ToolDefinition)
//   - Surface missing credentials at construction time (configuration fatal)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so agents remain decoupled from vendor SDKs.
package model
