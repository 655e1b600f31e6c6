package embeddings

import (
	"context"
	"fmt"

	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/retry"
)

// Client wraps a Provider with the embedding retry policy. Exhausting the
// policy surfaces model.ErrEmbedding to the caller; there is no silent
// fallback at this layer.
type Client struct {
	provider Provider
	policy   retry.Policy
}

// NewClient builds a Client around provider. A zero-attempt policy falls back
// to the standard embedding policy.
func NewClient(provider Provider, policy retry.Policy) *Client {
	if policy.MaxAttempts <= 0 {
		policy = retry.EmbedPolicy()
	}
	return &Client{provider: provider, policy: policy}
}

// Embed converts text into a fixed-length vector, retrying transient provider
// failures per the policy.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		v, err := c.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return fmt.Errorf("provider returned empty vector")
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	return vec, nil
}

// EmbedMany embeds texts sequentially. A convenience, not a batching
// optimization; the first failure aborts.
func (c *Client) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}
