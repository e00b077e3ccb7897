package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

func newHandoffAgent(t *testing.T, r *Runner, name, target string, llm model.Model) *agent.ModelAgent {
	t.Helper()

	cfg := agent.Config{
		Name:         name,
		Capabilities: core.Capabilities{Handoff: target != "", ToolUse: true},
	}
	if target != "" {
		cfg.HandoffTargets = []string{target}
	}

	a, err := agent.NewModelAgent(cfg, llm, func(o *agent.ModelAgentOptions) {
		o.Registry = r.Registry()
	})
	require.NoError(t, err)
	return a
}

func TestRunner_Register(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")

	a := newHandoffAgent(t, r, "a", "", llm)
	require.NoError(t, r.Register(a))

	dup := newHandoffAgent(t, r, "a", "", llm)
	assert.Error(t, r.Register(dup))

	got, ok := r.Agent("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = r.Agent("missing")
	assert.False(t, ok)
}

func TestRunner_Route(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")

	searcher, err := agent.NewModelAgent(agent.Config{
		Name:         "searcher",
		Capabilities: core.Capabilities{WebSearch: true},
	}, llm)
	require.NoError(t, err)

	analyst, err := agent.NewModelAgent(agent.Config{
		Name:         "analyst",
		Capabilities: core.Capabilities{DataAnalysis: true},
	}, llm)
	require.NoError(t, err)

	require.NoError(t, r.Register(searcher, analyst))

	got, ok := r.Route("please search the web for X")
	require.True(t, ok)
	assert.Equal(t, "searcher", got.Name())

	got, ok = r.Route("analyze this dataset")
	require.True(t, ok)
	assert.Equal(t, "analyst", got.Name())

	_, ok = r.Route("remember my name")
	assert.False(t, ok)
}

func TestRunner_Turn(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")
	llm.AddResponse("hello", "hi there")

	a := newHandoffAgent(t, r, "assistant", "", llm)
	require.NoError(t, r.Register(a))

	turn, err := r.Turn(context.Background(), "s1", "assistant", "hello")
	require.NoError(t, err)

	assert.Empty(t, turn.NextAgent)
	require.Len(t, turn.State.Messages, 2) // user input + assistant reply
	assert.Equal(t, "hello", turn.State.Messages[0].Text())
	assert.Equal(t, "hi there", turn.State.Messages[1].Text())

	// Token was lazily created and is observable.
	assert.NotNil(t, r.Registry().GetToken("s1"))
	assert.False(t, r.Registry().IsCancelled("s1"))

	_, err = r.Turn(context.Background(), "s1", "missing", "hello")
	assert.Error(t, err)
}

func TestRunner_Turn_ModelFailureStaysOnAgent(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")
	llm.FailWith(errors.New("timeout"))

	a := newHandoffAgent(t, r, "A", "B", llm)
	require.NoError(t, r.Register(a))

	turn, err := r.Turn(context.Background(), "s1", "A", "hello")
	require.NoError(t, err)

	// The failure is turn-local: recorded in the error log, no command, so
	// the caller stays on A for the next turn.
	assert.Empty(t, turn.NextAgent)
	assert.Equal(t, []string{"model timeout"}, turn.State.Errors)
	assert.False(t, turn.Result.Cancelled)
}

func TestRunner_Turn_Handoff(t *testing.T) {
	r := New()

	triageLLM := model.NewMockModel("mock", "test")
	triageLLM.AddToolCall("I have an invoice question", "transfer_to_billing", `{"reason": "invoice question"}`)
	billingLLM := model.NewMockModel("mock", "test")

	triage := newHandoffAgent(t, r, "triage", "billing", triageLLM)
	billing := newHandoffAgent(t, r, "billing", "", billingLLM)
	require.NoError(t, r.Register(triage, billing))

	// Caller-side scheduling loop: follow commands until none is returned.
	next := "triage"
	input := "I have an invoice question"
	var last *TurnResult
	for hops := 0; next != "" && hops < 3; hops++ {
		turn, err := r.Turn(context.Background(), "s1", next, input)
		require.NoError(t, err)
		last, next, input = turn, turn.NextAgent, ""
	}

	require.NotNil(t, last)
	assert.Empty(t, last.NextAgent)
	assert.Equal(t, "triage", last.State.Metadata[core.MetaHandoffFrom])
	assert.Equal(t, "invoice question", last.State.Metadata[core.MetaHandoffReason])

	// The synthetic transfer message made it into the shared log.
	var transferSeen bool
	for _, msg := range last.State.Messages {
		if msg.Author == "triage" && msg.Role == "system" {
			transferSeen = true
		}
	}
	assert.True(t, transferSeen)
}

func TestRunner_Turn_CancelledSession(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")

	a := newHandoffAgent(t, r, "assistant", "", llm)
	require.NoError(t, r.Register(a))

	first, err := r.Turn(context.Background(), "s1", "assistant", "hello")
	require.NoError(t, err)
	priorMessages := len(first.State.Messages)

	require.True(t, r.Cancel("s1", "user abort"))
	assert.False(t, r.Cancel("s1", "again")) // idempotent

	turn, err := r.Turn(context.Background(), "s1", "assistant", "")
	require.NoError(t, err)

	assert.True(t, turn.Result.Cancelled)
	assert.Empty(t, turn.NextAgent)
	assert.Len(t, turn.State.Messages, priorMessages) // nothing appended
	assert.Empty(t, turn.State.Errors)                // cancellation is not an error
	assert.True(t, r.Registry().IsCancelled("s1"))
}

func TestRunner_EndSession(t *testing.T) {
	r := New()
	llm := model.NewMockModel("mock", "test")

	a := newHandoffAgent(t, r, "assistant", "", llm)
	require.NoError(t, r.Register(a))

	_, err := r.Turn(context.Background(), "s1", "assistant", "hello")
	require.NoError(t, err)

	require.NoError(t, r.EndSession("s1"))
	assert.Nil(t, r.Registry().GetToken("s1"))

	state, err := r.Store().Get("s1")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
}
