package factory

import (
	"github.com/brightside-ai/assistant-backend/internal/config"
	"github.com/brightside-ai/assistant-backend/internal/llm"
)

// NewLLMProvider creates the chat completion provider from config.
func NewLLMProvider(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(cfg.EmbedProvider, cfg.OpenAIAPIKey, cfg.ChatModel)
}
