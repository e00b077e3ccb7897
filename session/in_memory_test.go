package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func intPtr(i int) *int { return &i }

func TestInMemoryStore_Get(t *testing.T) {
	store := NewInMemoryStore()

	state, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", state.SessionID)
	assert.Empty(t, state.Messages)

	// Mutating the returned clone must not leak into the store.
	state.Messages = append(state.Messages, core.NewUserMessage("hi"))
	state.Metadata["k"] = "v"

	fresh, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Messages)
	assert.Empty(t, fresh.Metadata)

	// Reads never materialize sessions; a mistyped id leaves no entry behind.
	assert.Equal(t, 0, store.Len())

	_, err = store.Apply("s1", core.AgentResult{Messages: []core.Message{core.NewUserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStore_Apply(t *testing.T) {
	store := NewInMemoryStore()

	first, err := store.Apply("s1", core.AgentResult{
		Messages: []core.Message{core.NewUserMessage("hello")},
		Delta:    &core.StateDelta{Progress: intPtr(40)},
	})
	require.NoError(t, err)
	assert.Len(t, first.Messages, 1)
	assert.Equal(t, 40, first.Progress)

	second, err := store.Apply("s1", core.AgentResult{
		Messages: []core.Message{core.NewAssistantMessage("a", "hi")},
		Delta:    &core.StateDelta{Progress: intPtr(20)}, // must not regress
	})
	require.NoError(t, err)
	assert.Len(t, second.Messages, 2)
	assert.Equal(t, 40, second.Progress)

	// Cancelled (empty) results leave the state unchanged.
	third, err := store.Apply("s1", core.CancelledResult())
	require.NoError(t, err)
	assert.Len(t, third.Messages, 2)
	assert.Equal(t, 40, third.Progress)
}

func TestInMemoryStore_ApplyHandoff(t *testing.T) {
	store := NewInMemoryStore()

	cmd := core.NewHandoffCommand("triage", core.HandoffInfo{
		TargetAgent: "billing",
		Reason:      "invoice question",
		Context:     map[string]any{"ticket": "T-7"},
	})

	state, err := store.ApplyHandoff("s1", cmd)
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "triage", state.Metadata[core.MetaHandoffFrom])
	assert.Equal(t, "T-7", state.Metadata["ticket"])
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Apply("s1", core.AgentResult{Messages: []core.Message{core.NewUserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete("s1"))
	assert.Equal(t, 0, store.Len())

	state, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
}
