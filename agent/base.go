package agent

import (
	"github.com/hupe1980/agentrelay/cancel"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// BaseOptions configures the shared agent lifecycle helper.
type BaseOptions struct {
	// Registry is the cancellation registry consulted before side effects.
	// A nil registry means cancellation is never observed.
	Registry *cancel.Registry

	// Logger receives structured lifecycle events.
	Logger logging.Logger
}

// Base bundles the lifecycle shared by every concrete agent: config
// ownership, capability routing, handoff tool construction, tool aggregation
// and cancellation checks. Embed it and supply an Execute method to satisfy
// core.Agent. Base has no mutable state after construction and is safe for
// concurrent use.
type Base struct {
	cfg      Config
	registry *cancel.Registry
	logger   logging.Logger
}

// NewBase validates the config and constructs the shared helper.
func NewBase(cfg Config, optFns ...func(o *BaseOptions)) (Base, error) {
	opts := BaseOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if err := cfg.Validate(); err != nil {
		return Base{}, err
	}

	return Base{
		cfg:      cfg.clone(),
		registry: opts.Registry,
		logger:   opts.Logger,
	}, nil
}

// WithRegistry wires the cancellation registry into the agent.
func WithRegistry(registry *cancel.Registry) func(o *BaseOptions) {
	return func(o *BaseOptions) { o.Registry = registry }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger logging.Logger) func(o *BaseOptions) {
	return func(o *BaseOptions) { o.Logger = logger }
}

// Name returns the agent's unique name.
func (b *Base) Name() string { return b.cfg.Name }

// Description returns the agent's human-readable description.
func (b *Base) Description() string { return b.cfg.Description }

// Capabilities returns the declared capability set.
func (b *Base) Capabilities() core.Capabilities { return b.cfg.Capabilities }

// Config returns a copy of the agent's construction-time config.
func (b *Base) Config() Config { return b.cfg.clone() }

// Logger returns the agent's logger.
func (b *Base) Logger() logging.Logger { return b.logger }

// Registry returns the wired cancellation registry, or nil.
func (b *Base) Registry() *cancel.Registry { return b.registry }

// IsCancelled reports whether the given session has been cancelled. Agents
// must consult this before any externally visible side effect.
func (b *Base) IsCancelled(sessionID string) bool {
	if b.registry == nil {
		return false
	}
	return b.registry.IsCancelled(sessionID)
}

// CanHandle reports whether this agent's declared capabilities match the
// request text. Pure; see CanHandle for the matching rules.
func (b *Base) CanHandle(request string) bool {
	return CanHandle(b.cfg.Capabilities, request)
}

// AllTools returns the union of the externally supplied tools and the
// generated handoff tools (one per declared target, when the handoff
// capability is enabled). The union is recomputed on every call so it can
// never serve a stale view.
func (b *Base) AllTools() []tool.Tool {
	tools := make([]tool.Tool, 0, len(b.cfg.Tools)+len(b.cfg.HandoffTargets))
	tools = append(tools, b.cfg.Tools...)

	if b.cfg.Capabilities.Handoff {
		tools = append(tools, tool.NewHandoffTools(b.cfg.Name, b.cfg.HandoffTargets)...)
	}

	return tools
}

// CreateHandoff builds a routing command for the given transfer request with
// this agent stamped as provenance. Reachability of the target is not
// validated here; callers should only target declared handoff targets and
// the executor resolves (or rejects) the name.
func (b *Base) CreateHandoff(info core.HandoffInfo) *core.Command {
	cmd := core.NewHandoffCommand(b.cfg.Name, info)

	b.logger.Info("agent.handoff.create",
		"from_agent", b.cfg.Name,
		"to_agent", info.TargetAgent,
		"reason", info.Reason,
	)

	return cmd
}
