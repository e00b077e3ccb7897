package agent

import (
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// capabilityTrigger binds one capability flag to its trigger substrings.
type capabilityTrigger struct {
	name     string
	enabled  func(core.Capabilities) bool
	triggers []string
}

// capabilityTriggers is the fixed routing table. The capability set is closed,
// so the table is declared once and iterated in this order; the router
// short-circuits on the first match, making the order observable only through
// which capability "wins", never through the boolean outcome.
var capabilityTriggers = []capabilityTrigger{
	{
		name:     "web_search",
		enabled:  func(c core.Capabilities) bool { return c.WebSearch },
		triggers: []string{"search", "web", "internet", "look up", "lookup", "google", "find online"},
	},
	{
		name:     "web_scrape",
		enabled:  func(c core.Capabilities) bool { return c.WebScrape },
		triggers: []string{"scrape", "crawl", "extract from", "fetch page", "website content"},
	},
	{
		name:     "screen_capture",
		enabled:  func(c core.Capabilities) bool { return c.ScreenCapture },
		triggers: []string{"screenshot", "screen capture", "capture screen", "my screen"},
	},
	{
		name:     "data_analysis",
		enabled:  func(c core.Capabilities) bool { return c.DataAnalysis },
		triggers: []string{"analyze", "analysis", "chart", "plot", "statistics", "dataset", "csv"},
	},
	{
		name:     "tool_use",
		enabled:  func(c core.Capabilities) bool { return c.ToolUse },
		triggers: []string{"run", "execute", "calculate", "compute", "convert", "tool"},
	},
	{
		name:     "handoff",
		enabled:  func(c core.Capabilities) bool { return c.Handoff },
		triggers: []string{"transfer", "hand off", "handoff", "escalate", "another agent", "specialist"},
	},
	{
		name:     "memory",
		enabled:  func(c core.Capabilities) bool { return c.Memory },
		triggers: []string{"remember", "recall", "memorize", "forget", "you said earlier"},
	},
	{
		name:     "user_preferences",
		enabled:  func(c core.Capabilities) bool { return c.UserPreferences },
		triggers: []string{"prefer", "preference", "my settings", "default to", "always use"},
	},
	{
		name:     "conversation_history",
		enabled:  func(c core.Capabilities) bool { return c.ConversationHistory },
		triggers: []string{"history", "previous conversation", "last time", "earlier we", "what did i"},
	},
}

// CanHandle reports whether an agent declaring the given capability set
// should accept the free-text request. The test is a pure, case-insensitive
// substring match: for each enabled capability, in table order, any trigger
// occurring anywhere in the request is a match. A capability flag with no
// matching trigger contributes nothing, so CanHandle returns false for an
// agent whose enabled capabilities are all unrelated to the request text.
func CanHandle(caps core.Capabilities, request string) bool {
	lowered := strings.ToLower(request)

	for _, ct := range capabilityTriggers {
		if !ct.enabled(caps) {
			continue
		}
		for _, trigger := range ct.triggers {
			if strings.Contains(lowered, trigger) {
				return true
			}
		}
	}

	return false
}
