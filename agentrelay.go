// Package agentrelay provides a high-level façade over the agent contract,
// the cancellation registry and the session store, enabling rapid
// construction of multi-agent systems with explicit handoffs. Most
// applications interact with this package by:
//  1. Creating a Relay via New() (optionally overriding the default
//     in-memory store, registry or logger)
//  2. Registering one or more agents (model-backed or custom core.Agent
//     implementations), by hand or from a declarative definition file
//  3. Driving turns with Turn(), following returned handoff targets, and
//     cancelling sessions via Cancel() when the caller loses interest
//
// The façade delegates turn execution to runner.Runner while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable store
// implementation and a structured logger.
package agentrelay

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/cancel"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/runner"
	"github.com/hupe1980/agentrelay/session"
	"github.com/hupe1980/agentrelay/tool"
)

// Options configures the Relay instance.
type Options struct {
	// Store persists per-session state (defaults to in-memory).
	Store session.Store

	// Registry tracks per-session cancellation (defaults to a fresh
	// instance; inject a shared one when session lifecycles are owned
	// elsewhere).
	Registry *cancel.Registry

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Relay is the high-level façade aggregating the runner and its services.
type Relay struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new Relay instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Relay {
	opts := Options{
		Store:    session.NewInMemoryStore(),
		Registry: cancel.NewRegistry(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(func(o *runner.Options) {
		o.Store = opts.Store
		o.Registry = opts.Registry
		o.Logger = opts.Logger
	})

	return &Relay{opts: opts, runner: r}
}

// Register adds agents to the relay. Names must be unique.
func (r *Relay) Register(agents ...core.Agent) error {
	return r.runner.Register(agents...)
}

// RegisterFromFile loads a declarative agent definition file, materializes
// one model-backed agent per definition and registers them. Tool references
// are resolved against tools; the backend for each agent is produced by
// backendFor, keyed on the definition's provider and model fields, so the
// caller controls credentials and transport. A backend construction failure
// (e.g. a missing credential) aborts the whole load.
func (r *Relay) RegisterFromFile(
	path string,
	tools map[string]tool.Tool,
	backendFor func(provider, modelID string) (model.Model, error),
) error {
	f, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	agents := make([]core.Agent, 0, len(f.Agents))
	for _, def := range f.Agents {
		cfg, err := def.AgentConfig(tools)
		if err != nil {
			return err
		}

		llm, err := backendFor(def.Provider, def.Model)
		if err != nil {
			return fmt.Errorf("agent %q: construct backend: %w", def.Name, err)
		}

		a, err := agent.NewModelAgent(cfg, llm, func(o *agent.ModelAgentOptions) {
			o.Registry = r.opts.Registry
			o.Logger = r.opts.Logger
		})
		if err != nil {
			return err
		}

		agents = append(agents, a)
	}

	return r.runner.Register(agents...)
}

// Route returns the first registered agent whose capabilities match the
// request text.
func (r *Relay) Route(request string) (core.Agent, bool) {
	return r.runner.Route(request)
}

// Turn executes one turn of the named agent for the session; see
// runner.Runner.Turn for the full semantics.
func (r *Relay) Turn(ctx context.Context, sessionID, agentName, input string) (*runner.TurnResult, error) {
	return r.runner.Turn(ctx, sessionID, agentName, input)
}

// Cancel cancels the session, reporting whether this call performed the
// transition.
func (r *Relay) Cancel(sessionID, reason string) bool {
	return r.runner.Cancel(sessionID, reason)
}

// Registry exposes the cancellation registry, e.g. to create a session's
// token ahead of its first turn.
func (r *Relay) Registry() *cancel.Registry { return r.opts.Registry }

// OnCancel registers a hook fired when the session is cancelled and returns
// its unregistration function.
func (r *Relay) OnCancel(sessionID string, callback cancel.Callback) func() {
	return r.opts.Registry.OnCancel(sessionID, callback)
}

// IsCancelled reports whether the session has been cancelled. Unknown
// sessions read as not cancelled.
func (r *Relay) IsCancelled(sessionID string) bool {
	return r.opts.Registry.IsCancelled(sessionID)
}

// State returns a snapshot of the session's current shared state.
func (r *Relay) State(sessionID string) (core.AgentState, error) {
	return r.opts.Store.Get(sessionID)
}

// EndSession releases all relay-held resources for a completed session.
func (r *Relay) EndSession(sessionID string) error {
	return r.runner.EndSession(sessionID)
}
