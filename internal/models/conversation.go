package models

// Conversation represents one chat widget lifetime. It provides basic identification and
// labeling capabilities for organizing message threads.
type Conversation struct {
	ID    string
	Title string
}

// Model identifies one of the backend language models the guru can answer with. The
// identifier is selected by the visitor and passed through verbatim on every request in a
// conversation.
type Model string

const (
	ModelDeepSeek Model = "deepseek"
	ModelOpenAI   Model = "openai"
	ModelGemini   Model = "gemini"

	// DefaultModel is used when the visitor has not picked one.
	DefaultModel = ModelDeepSeek
)

// SupportedModels lists every model identifier the backend accepts, in display order.
var SupportedModels = []Model{ModelDeepSeek, ModelOpenAI, ModelGemini}

// Valid reports whether m is one of the supported model identifiers.
func (m Model) Valid() bool {
	for _, s := range SupportedModels {
		if m == s {
			return true
		}
	}
	return false
}
