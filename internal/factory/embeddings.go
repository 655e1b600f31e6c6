package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/config"
	emb "github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/embeddings/ollama"
	"github.com/brightside-ai/assistant-backend/internal/embeddings/openai"
	"github.com/brightside-ai/assistant-backend/internal/retry"
)

// NewEmbeddingProvider creates an embedding provider based on config.
func NewEmbeddingProvider(cfg *config.Config, log zerolog.Logger) (emb.Provider, error) {
	switch cfg.EmbedProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
		return openai.New(cfg.OpenAIAPIKey, cfg.EmbedModel), nil
	case "ollama":
		return ollama.New(cfg.EmbedModel), nil
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using ollama")
		return ollama.New(cfg.EmbedModel), nil
	}
}

// NewEmbedClient wraps the configured provider with the embedding retry
// policy.
func NewEmbedClient(cfg *config.Config, log zerolog.Logger) (*emb.Client, error) {
	provider, err := NewEmbeddingProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	return emb.NewClient(provider, retry.EmbedPolicy()), nil
}
