package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/retry"
)

type scriptedProvider struct {
	calls    int
	failures int
	vec      []float32
}

func (p *scriptedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	if p.failures > 0 {
		p.failures--
		return nil, errors.New("transient provider error")
	}
	return p.vec, nil
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, InitialInterval: 1, MaxInterval: 1}
}

func TestEmbedSuccess(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.1, 0.2}}
	c := NewClient(p, fastPolicy(2))

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, 1, p.calls)
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.5}, failures: 1}
	c := NewClient(p, fastPolicy(2))

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.Equal(t, 2, p.calls)
}

func TestEmbedExhaustsPolicy(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.5}, failures: 5}
	c := NewClient(p, fastPolicy(2))

	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEmbedding)
	assert.Equal(t, 2, p.calls)
}

func TestEmbedRejectsEmptyVector(t *testing.T) {
	p := &scriptedProvider{vec: nil}
	c := NewClient(p, fastPolicy(1))

	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEmbedding)
}

func TestEmbedManySequential(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.1}}
	c := NewClient(p, fastPolicy(1))

	out, err := c.EmbedMany(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, 3, p.calls)
}

func TestEmbedManyAbortsOnFailure(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.1}, failures: 1}
	c := NewClient(p, fastPolicy(1))

	_, err := c.EmbedMany(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestNewClientDefaultsPolicy(t *testing.T) {
	p := &scriptedProvider{vec: []float32{0.1}}
	c := NewClient(p, retry.Policy{})

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1}, vec)
}
