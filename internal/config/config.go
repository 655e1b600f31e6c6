package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the assistant service.
// Environment variables are parsed from the ASSISTANT_ prefix, e.g.
// ASSISTANT_HTTP_PORT, ASSISTANT_PRODUCT_SEARCH_URL.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Embedding / generation provider
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"openai"`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"text-embedding-3-small"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4-turbo-preview"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`

	// Product search index (host:port plus optional API key)
	ProductSearchURL    string `envconfig:"PRODUCT_SEARCH_URL" default:""`
	ProductSearchAPIKey string `envconfig:"PRODUCT_SEARCH_API_KEY" default:""`
	ProductClass        string `envconfig:"PRODUCT_CLASS" default:"Product"`

	// Intent search index. Independent instance from product search.
	IntentSearchURL    string `envconfig:"INTENT_SEARCH_URL" default:""`
	IntentSearchAPIKey string `envconfig:"INTENT_SEARCH_API_KEY" default:""`
	IntentClass        string `envconfig:"INTENT_CLASS" default:"IntentPrompt"`

	// VectorDim is the fallback dimensionality used when the live class
	// cannot be probed.
	VectorDim int `envconfig:"VECTOR_DIM" default:"1536"`

	// SessionTTL bounds session lifetime. Zero keeps sessions for the
	// process lifetime, matching the volatile-store contract.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"0"`

	// Readiness probe cadence
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// Validate enforces fail-fast startup: missing credentials or endpoints must
// stop the process before it serves traffic.
func (c *Config) Validate() error {
	switch c.EmbedProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
	case "ollama":
		// local provider, no credential
	default:
		return fmt.Errorf("unsupported EMBED_PROVIDER: %s", c.EmbedProvider)
	}
	if c.ProductSearchURL == "" {
		return fmt.Errorf("PRODUCT_SEARCH_URL is required")
	}
	if c.IntentSearchURL == "" {
		return fmt.Errorf("INTENT_SEARCH_URL is required")
	}
	if c.VectorDim <= 0 {
		return fmt.Errorf("VECTOR_DIM must be positive")
	}
	return nil
}

// New creates a Config by parsing ASSISTANT_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ASSISTANT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("chat_model", cfg.ChatModel).
		Str("product_search_url", cfg.ProductSearchURL).
		Str("intent_search_url", cfg.IntentSearchURL).
		Int("vector_dim", cfg.VectorDim).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting returns a config wired for unit tests.
func NewForTesting() *Config {
	return &Config{
		HTTPPort:                  8080,
		EmbedProvider:             "ollama",
		EmbedModel:                "mxbai-embed-large",
		ChatModel:                 "gpt-4-turbo-preview",
		ProductSearchURL:          "localhost:8081",
		ProductClass:              "Product",
		IntentSearchURL:           "localhost:8082",
		IntentClass:               "IntentPrompt",
		VectorDim:                 1536,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
	}
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
