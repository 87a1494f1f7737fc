package llm

import (
	"fmt"
	"strings"

	"github.com/vietfact/mintgraph/internal/model"
)

// NewExtractor creates an entity extractor based on configuration. An empty
// provider disables extraction and returns (nil, nil).
func NewExtractor(config model.LLMConfig) (Extractor, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIExtractor(config)

	case "ollama":
		return NewOllamaExtractor(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
