// Package config loads declarative multi-agent definitions from YAML or JSON
// files. A definition file describes a set of agents (capabilities, prompts,
// model parameters, handoff targets) without any code; the caller resolves
// tool names against its own tool set and constructs agents from the
// resulting configs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// AgentDefinition is a declarative agent specification designed to be
// deserialized from YAML or JSON.
type AgentDefinition struct {
	// Identity
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Capabilities declared for request routing.
	Capabilities core.Capabilities `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`

	// Prompt
	SystemPrompt string `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`

	// LLM configuration
	Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
	Provider    string   `yaml:"provider,omitempty" json:"provider,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`

	// Tools are string references resolved by the caller at assembly time.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// HandoffTargets lists the names of agents this agent may transfer to.
	// Targets must reference agents defined in the same file.
	HandoffTargets []string `yaml:"handoff_targets,omitempty" json:"handoff_targets,omitempty"`
}

// File is the root of an agent definition file.
type File struct {
	Agents []AgentDefinition `yaml:"agents" json:"agents"`
}

// LoadFile reads a definition file and parses it based on its extension
// (.yaml, .yml, .json). The parsed file is validated before it is returned.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent definition file: %w", err)
	}

	format := detectFormat(path)
	if format == "" {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}

	return LoadBytes(data, format)
}

// LoadBytes parses raw definition bytes in the given format ("yaml" or "json")
// and validates the result.
func LoadBytes(data []byte, format string) (*File, error) {
	var f File

	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q, use \"yaml\" or \"json\"", format)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks that names are unique and that every handoff target
// references an agent defined in the same file. Per-agent consistency is
// checked through agent.Config validation at construction.
func (f *File) Validate() error {
	if len(f.Agents) == 0 {
		return fmt.Errorf("agent definition file: no agents defined")
	}

	names := make(map[string]struct{}, len(f.Agents))
	for _, def := range f.Agents {
		if def.Name == "" {
			return fmt.Errorf("agent definition file: agent with empty name")
		}
		if _, dup := names[def.Name]; dup {
			return fmt.Errorf("agent definition file: duplicate agent name %q", def.Name)
		}
		names[def.Name] = struct{}{}
	}

	for _, def := range f.Agents {
		for _, target := range def.HandoffTargets {
			if _, known := names[target]; !known {
				return fmt.Errorf("agent %q: handoff target %q is not defined", def.Name, target)
			}
		}
	}

	return nil
}

// Agent returns the definition with the given name, or nil.
func (f *File) Agent(name string) *AgentDefinition {
	for i := range f.Agents {
		if f.Agents[i].Name == name {
			return &f.Agents[i]
		}
	}
	return nil
}

// AgentConfig materializes the definition into an agent.Config, resolving
// the declared tool names against the supplied tool set. Unknown tool
// references are an error since a silently dropped tool changes agent
// behavior in a hard-to-diagnose way.
func (d AgentDefinition) AgentConfig(available map[string]tool.Tool) (agent.Config, error) {
	var tools []tool.Tool
	for _, name := range d.Tools {
		t, known := available[name]
		if !known {
			return agent.Config{}, fmt.Errorf("agent %q: unknown tool %q", d.Name, name)
		}
		tools = append(tools, t)
	}

	cfg := agent.Config{
		Name:           d.Name,
		Description:    d.Description,
		Capabilities:   d.Capabilities,
		SystemPrompt:   d.SystemPrompt,
		Tools:          tools,
		HandoffTargets: append([]string(nil), d.HandoffTargets...),
		Model:          d.Model,
		Temperature:    d.Temperature,
	}

	if err := cfg.Validate(); err != nil {
		return agent.Config{}, err
	}

	return cfg, nil
}

// detectFormat returns "yaml" or "json" based on file extension, or "" if unknown.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
