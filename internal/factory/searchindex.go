package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/config"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
)

// NewProductIndex creates the product search index from config.
func NewProductIndex(cfg *config.Config, log zerolog.Logger) (searchindex.ProductIndex, error) {
	if cfg.ProductSearchURL == "" {
		return nil, fmt.Errorf("product search URL not configured - required for service operation")
	}
	return searchindex.NewProductIndex(cfg.ProductSearchURL, cfg.ProductSearchAPIKey, cfg.ProductClass, cfg.VectorDim, log)
}

// NewIntentIndex creates the intent search index from config. The intent
// corpus lives on its own instance so a product outage does not take intent
// classification down with it.
func NewIntentIndex(cfg *config.Config, log zerolog.Logger) (searchindex.IntentIndex, error) {
	if cfg.IntentSearchURL == "" {
		return nil, fmt.Errorf("intent search URL not configured - required for service operation")
	}
	return searchindex.NewIntentIndex(cfg.IntentSearchURL, cfg.IntentSearchAPIKey, cfg.IntentClass, log)
}
