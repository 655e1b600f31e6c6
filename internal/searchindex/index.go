// Package searchindex wraps the vector similarity engine behind small
// query-only interfaces. Two independent corpora exist: products and intents.
package searchindex

import (
	"context"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

// ProductIndex ranks product candidates by vector similarity, constrained by
// an optional structured filter tree.
//
// Search returns an empty slice (not an error) when nothing matches; an error
// means the subsystem itself is unreachable or misconfigured. A non-empty
// clientID scopes the query to that client's catalog entries.
type ProductIndex interface {
	Search(ctx context.Context, vec []float32, limit int, clientID string, filterTree map[string]interface{}) ([]model.Product, error)
}

// IntentIndex ranks intent records by vector similarity. The similarity
// threshold is enforced server-side; hits below it are never returned.
type IntentIndex interface {
	Search(ctx context.Context, vec []float32, limit int, minSimilarity float64) ([]model.Intent, error)
}
