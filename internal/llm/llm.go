// Package llm abstracts chat completion generation.
package llm

import (
	"context"
	"fmt"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

// Provider generates a free-text completion from an ordered prompt.
type Provider interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// NewProvider returns a Provider for the given provider name. Both embedding
// provider names map onto the OpenAI chat endpoint today; ollama users still
// need an OpenAI credential for generation.
func NewProvider(provider, apiKey, chatModel string) (Provider, error) {
	switch provider {
	case "openai", "ollama":
		if apiKey == "" {
			return nil, fmt.Errorf("chat completion requires an OpenAI API key")
		}
		return NewOpenAI(apiKey, chatModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
