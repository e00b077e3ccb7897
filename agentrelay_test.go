package agentrelay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

const relayYAML = `
agents:
  - name: triage
    capabilities:
      handoff: true
    system_prompt: "You are the triage agent."
    model: mock-large
    handoff_targets: [billing]
  - name: billing
    capabilities:
      conversation_history: true
    system_prompt: "You are the billing agent."
    model: mock-small
`

func TestRelay_RegisterFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(relayYAML), 0o600))

	triageLLM := model.NewMockModel("mock-large", "test")
	triageLLM.AddToolCall("invoice question", "transfer_to_billing", `{"reason": "billing"}`)
	billingLLM := model.NewMockModel("mock-small", "test")

	backends := map[string]model.Model{"mock-large": triageLLM, "mock-small": billingLLM}

	relay := New()
	err := relay.RegisterFromFile(path, nil, func(provider, modelID string) (model.Model, error) {
		return backends[modelID], nil
	})
	require.NoError(t, err)

	turn, err := relay.Turn(context.Background(), "s1", "triage", "invoice question")
	require.NoError(t, err)
	assert.Equal(t, "billing", turn.NextAgent)
	assert.Equal(t, "triage", turn.State.Metadata[core.MetaHandoffFrom])

	turn, err = relay.Turn(context.Background(), "s1", turn.NextAgent, "")
	require.NoError(t, err)
	assert.Empty(t, turn.NextAgent)
}

func TestRelay_CancelFlow(t *testing.T) {
	relay := New()

	var fired []string
	unregister := relay.OnCancel("s1", func(reason string) {
		fired = append(fired, reason)
	})
	defer unregister()

	relay.Registry().CreateToken("s1")
	assert.False(t, relay.IsCancelled("s1"))
	assert.True(t, relay.Cancel("s1", "user abort"))
	assert.False(t, relay.Cancel("s1", "again"))
	assert.True(t, relay.IsCancelled("s1"))
	assert.Equal(t, []string{"user abort"}, fired)

	require.NoError(t, relay.EndSession("s1"))
	assert.False(t, relay.IsCancelled("s1"))
}

func TestRelay_StateAccess(t *testing.T) {
	relay := New()
	llm := model.NewMockModel("mock", "test")

	echo := tool.NewFunctionTool("echo", "Echo the input", map[string]any{"type": "object"},
		func(tc *tool.Context, args map[string]any) (any, error) { return args, nil },
	)

	a, err := agent.NewModelAgent(agent.Config{
		Name:         "assistant",
		Capabilities: core.Capabilities{ToolUse: true},
		Tools:        []tool.Tool{echo},
	}, llm)
	require.NoError(t, err)
	require.NoError(t, relay.Register(a))

	_, err = relay.Turn(context.Background(), "s1", "assistant", "hello")
	require.NoError(t, err)

	state, err := relay.State("s1")
	require.NoError(t, err)
	assert.Len(t, state.Messages, 2)
}
