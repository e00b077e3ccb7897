package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/cancel"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/session"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Store persists the per-session state. Defaults to an in-memory store.
	Store session.Store
	// Registry tracks per-session cancellation. Defaults to a fresh registry.
	Registry *cancel.Registry
	// Logger receives structured turn lifecycle events.
	Logger logging.Logger
}

// TurnResult is the outcome of one agent turn after the state transition has
// been applied.
type TurnResult struct {
	// State is the merged session state snapshot after this turn.
	State core.AgentState
	// Result is the raw delta the agent returned.
	Result core.AgentResult
	// NextAgent names the handoff target when the turn emitted a routing
	// command, empty otherwise. The caller decides whether and when to run
	// that agent next.
	NextAgent string
}

// Runner coordinates single agent turns: it resolves the named agent, ensures
// a cancellation token exists for the session, threads the user input and the
// turn result through the session store and surfaces the routing command to
// the caller. Public methods are safe for concurrent use.
type Runner struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
	order  []string

	store    session.Store
	registry *cancel.Registry
	logger   logging.Logger
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:    session.NewInMemoryStore(),
		Registry: cancel.NewRegistry(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agents:   make(map[string]core.Agent),
		store:    opts.Store,
		registry: opts.Registry,
		logger:   opts.Logger,
	}
}

// Register adds agents to the runner's agent set. Names must be unique.
func (r *Runner) Register(agents ...core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range agents {
		name := a.Name()
		if _, exists := r.agents[name]; exists {
			return fmt.Errorf("runner: agent %q already registered", name)
		}
		r.agents[name] = a
		r.order = append(r.order, name)
	}

	return nil
}

// Agent returns a registered agent by name.
func (r *Runner) Agent(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Route returns the first registered agent (in registration order) whose
// declared capabilities match the request text, or false when none does.
func (r *Runner) Route(request string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if a := r.agents[name]; a.CanHandle(request) {
			return a, true
		}
	}

	return nil, false
}

// Registry exposes the cancellation registry so callers can cancel sessions
// or register on-cancel hooks.
func (r *Runner) Registry() *cancel.Registry { return r.registry }

// Store exposes the session store.
func (r *Runner) Store() session.Store { return r.store }

// Turn executes exactly one turn of the named agent for the session. A
// non-empty input is appended to the session state as a user message before
// the agent runs. The agent's result is merged into the stored state; when
// the turn produced a handoff command, the command payload is threaded into
// the state as well and the target is reported through TurnResult.NextAgent.
//
// A first Turn for an unknown session lazily creates both its state and its
// cancellation token; an existing token is never replaced here, so a cancel
// issued between turns stays observable.
func (r *Runner) Turn(ctx context.Context, sessionID, agentName, input string) (*TurnResult, error) {
	r.mu.RLock()
	a, ok := r.agents[agentName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("runner: unknown agent %q", agentName)
	}

	if r.registry.GetToken(sessionID) == nil {
		r.registry.CreateToken(sessionID)
	}

	if input != "" {
		if _, err := r.store.Apply(sessionID, core.AgentResult{
			Messages: []core.Message{core.NewUserMessage(input)},
		}); err != nil {
			return nil, fmt.Errorf("runner: append user input: %w", err)
		}
	}

	state, err := r.store.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("runner: load session %q: %w", sessionID, err)
	}

	r.logger.Debug("runner.turn.start", "session_id", sessionID, "agent", agentName)

	result, err := a.Execute(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("runner: agent %q: %w", agentName, err)
	}

	merged, err := r.store.Apply(sessionID, result)
	if err != nil {
		return nil, fmt.Errorf("runner: apply result: %w", err)
	}

	turn := &TurnResult{State: merged, Result: result}

	if result.Command != nil {
		merged, err = r.store.ApplyHandoff(sessionID, result.Command)
		if err != nil {
			return nil, fmt.Errorf("runner: apply handoff: %w", err)
		}
		turn.State = merged
		turn.NextAgent = result.Command.TargetAgent

		r.logger.Info("runner.turn.handoff",
			"session_id", sessionID,
			"from_agent", agentName,
			"to_agent", result.Command.TargetAgent,
		)
	}

	r.logger.Debug("runner.turn.done",
		"session_id", sessionID,
		"agent", agentName,
		"messages", len(result.Messages),
		"cancelled", result.Cancelled,
	)

	return turn, nil
}

// Cancel cancels the session's current token. It reports whether this call
// performed the transition (false for unknown or already-cancelled sessions).
func (r *Runner) Cancel(sessionID, reason string) bool {
	return r.registry.Cancel(sessionID, reason)
}

// EndSession releases all runner-held resources for a completed session:
// registry bookkeeping and stored state.
func (r *Runner) EndSession(sessionID string) error {
	r.registry.Cleanup(sessionID)
	return r.store.Delete(sessionID)
}
