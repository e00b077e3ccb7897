package core

// Capabilities is the fixed set of named boolean traits an agent declares at
// construction. The set is closed and known at compile time; it is immutable
// for the agent's lifetime. Request routing (agent.CanHandle) tests declared
// capabilities against a fixed trigger table in a stable order.
type Capabilities struct {
	WebSearch           bool `json:"web_search" yaml:"web_search"`
	WebScrape           bool `json:"web_scrape" yaml:"web_scrape"`
	ScreenCapture       bool `json:"screen_capture" yaml:"screen_capture"`
	DataAnalysis        bool `json:"data_analysis" yaml:"data_analysis"`
	ToolUse             bool `json:"tool_use" yaml:"tool_use"`
	Handoff             bool `json:"handoff" yaml:"handoff"`
	Memory              bool `json:"memory" yaml:"memory"`
	UserPreferences     bool `json:"user_preferences" yaml:"user_preferences"`
	ConversationHistory bool `json:"conversation_history" yaml:"conversation_history"`
}
