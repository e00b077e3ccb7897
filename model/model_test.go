package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestMockModel_Generate(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("hello", "hi there")

	t.Run("canned response", func(t *testing.T) {
		resp, err := m.Generate(context.Background(), Request{
			Messages: []core.Message{core.NewUserMessage("hello")},
		})
		require.NoError(t, err)
		require.Len(t, resp.Parts, 1)
		assert.Equal(t, "hi there", core.Message{Parts: resp.Parts}.Text())
		assert.Equal(t, "stop", resp.FinishReason)
	})

	t.Run("unmatched prompt echoes", func(t *testing.T) {
		resp, err := m.Generate(context.Background(), Request{
			Messages: []core.Message{core.NewUserMessage("something else")},
		})
		require.NoError(t, err)
		assert.Contains(t, core.Message{Parts: resp.Parts}.Text(), "something else")
	})

	t.Run("tool call intent", func(t *testing.T) {
		m.AddToolCall("add", "calculate_sum", `{"a":1,"b":2}`)

		resp, err := m.Generate(context.Background(), Request{
			Messages: []core.Message{core.NewUserMessage("add")},
		})
		require.NoError(t, err)
		assert.Equal(t, "tool_calls", resp.FinishReason)

		calls := core.Message{Parts: resp.Parts}.GetFunctionCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "calculate_sum", calls[0].Name)
	})

	t.Run("no messages errors", func(t *testing.T) {
		_, err := m.Generate(context.Background(), Request{})
		assert.Error(t, err)
	})

	t.Run("injected failure", func(t *testing.T) {
		failing := NewMockModel("mock", "test")
		failing.FailWith(errors.New("timeout"))

		_, err := failing.Generate(context.Background(), Request{
			Messages: []core.Message{core.NewUserMessage("hello")},
		})
		require.EqualError(t, err, "timeout")
		assert.Equal(t, 1, failing.Calls())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.Generate(ctx, Request{
			Messages: []core.Message{core.NewUserMessage("hello")},
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
