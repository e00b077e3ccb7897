package agent

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// Config is the immutable construction-time description of an agent. It is
// bound once at construction and exclusively owned by the agent instance; the
// accessor on Base returns a defensive copy.
type Config struct {
	// Name uniquely identifies the agent; it doubles as the handoff target
	// key other agents use to address it.
	Name string `json:"name" yaml:"name"`

	// Description is a human-readable summary of the agent's purpose.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Capabilities declares what kinds of requests this agent accepts.
	Capabilities core.Capabilities `json:"capabilities" yaml:"capabilities"`

	// SystemPrompt is the instruction text sent to the model backend. It may
	// contain template placeholders resolved against the session metadata.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`

	// Tools are externally supplied capabilities passed through unchanged.
	Tools []tool.Tool `json:"-" yaml:"-"`

	// HandoffTargets lists the agent names this agent may transfer control
	// to. Requires Capabilities.Handoff.
	HandoffTargets []string `json:"handoff_targets,omitempty" yaml:"handoff_targets,omitempty"`

	// Model is the backend model identifier, forwarded per request.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Temperature overrides the backend sampling temperature when set.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// Validate checks the internal consistency of the config. It does not verify
// that handoff targets reference existing agents; reachability is validated
// by whoever assembles the agent set.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent config: name is required")
	}

	if len(c.HandoffTargets) > 0 && !c.Capabilities.Handoff {
		return fmt.Errorf("agent config %q: handoff targets declared but handoff capability is disabled", c.Name)
	}

	seen := make(map[string]struct{}, len(c.HandoffTargets))
	for _, target := range c.HandoffTargets {
		if target == "" {
			return fmt.Errorf("agent config %q: empty handoff target", c.Name)
		}
		if target == c.Name {
			return fmt.Errorf("agent config %q: agent cannot be its own handoff target", c.Name)
		}
		if _, dup := seen[target]; dup {
			return fmt.Errorf("agent config %q: duplicate handoff target %q", c.Name, target)
		}
		seen[target] = struct{}{}
	}

	return nil
}

// clone returns a deep enough copy of the config that callers cannot mutate
// the agent's owned slices through it. Tool implementations themselves are
// shared (they are opaque callables).
func (c Config) clone() Config {
	out := c
	if c.Tools != nil {
		out.Tools = make([]tool.Tool, len(c.Tools))
		copy(out.Tools, c.Tools)
	}
	if c.HandoffTargets != nil {
		out.HandoffTargets = make([]string, len(c.HandoffTargets))
		copy(out.HandoffTargets, c.HandoffTargets)
	}
	if c.Temperature != nil {
		v := *c.Temperature
		out.Temperature = &v
	}
	return out
}
