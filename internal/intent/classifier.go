// Package intent classifies a user message against the intent corpus.
package intent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
)

// Classifier resolves free text to the closest intent record.
type Classifier struct {
	embedder *embeddings.Client
	intents  searchindex.IntentIndex
	log      zerolog.Logger
}

func NewClassifier(embedder *embeddings.Client, intents searchindex.IntentIndex, log zerolog.Logger) *Classifier {
	return &Classifier{embedder: embedder, intents: intents, log: log}
}

// Classify embeds text and returns the top intent whose similarity clears
// minSimilarity (enforced by the engine). When nothing clears the threshold
// the sentinel Generic intent is returned; that is a value, not an error.
// Errors mean the embedding provider or the intent corpus is unreachable.
func (c *Classifier) Classify(ctx context.Context, text string, limit int, minSimilarity float64) (model.Intent, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return model.Intent{}, err
	}

	hits, err := c.intents.Search(ctx, vec, limit, minSimilarity)
	if err != nil {
		return model.Intent{}, err
	}
	if len(hits) == 0 {
		c.log.Info().Str("text", text).Float64("threshold", minSimilarity).
			Msg("no intent cleared the similarity threshold; returning generic")
		return model.GenericIntent(), nil
	}
	return hits[0], nil
}
