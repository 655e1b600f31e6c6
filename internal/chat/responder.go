// Package chat orchestrates one conversational turn: assemble the prompt,
// request a completion, and augment the reply with retrieved products.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/llm"
	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/retry"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
)

// productLimit bounds product augmentation per turn.
const productLimit = 3

// Request carries one turn's inputs. History is the full prior conversation
// in chronological order; SystemPrompt overrides the default persona.
type Request struct {
	Message      string
	History      []model.ChatMessage
	ClientID     string
	SystemPrompt string
}

// Responder generates replies. Product retrieval is best effort: embedding or
// search failure degrades to zero products, while completion failure after
// retries surfaces to the caller. The caller owns any apology fallback.
type Responder struct {
	llm      llm.Provider
	embedder *embeddings.Client
	products searchindex.ProductIndex
	policy   retry.Policy
	log      zerolog.Logger
}

// NewResponder builds a Responder. A zero-attempt policy falls back to the
// standard completion policy.
func NewResponder(provider llm.Provider, embedder *embeddings.Client, products searchindex.ProductIndex, policy retry.Policy, log zerolog.Logger) *Responder {
	if policy.MaxAttempts <= 0 {
		policy = retry.CompletionPolicy()
	}
	return &Responder{llm: provider, embedder: embedder, products: products, policy: policy, log: log}
}

// Respond executes one turn and assembles the structured reply. The
// recommend flag is true iff at least one product was retrieved.
func (r *Responder) Respond(ctx context.Context, req Request) (*model.ChatResponse, error) {
	messages := r.assemblePrompt(req)

	products := r.retrieveProducts(ctx, req.Message, req.ClientID)

	// The retry policy wraps only the completion call. Retried attempts must
	// not re-run product retrieval.
	var content string
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		text, err := r.llm.Complete(ctx, messages)
		if err != nil {
			return err
		}
		content = text
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCompletion, err)
	}

	return &model.ChatResponse{
		Role:      model.RoleAssistant,
		Content:   content,
		Recommend: len(products) > 0,
		Products:  products,
	}, nil
}

// assemblePrompt orders the instruction message, prior history, and the new
// user message, each tagged with its role.
func (r *Responder) assemblePrompt(req Request) []model.ChatMessage {
	system := req.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	messages := make([]model.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, model.ChatMessage{Role: model.RoleSystem, Content: system})
	messages = append(messages, req.History...)
	messages = append(messages, model.ChatMessage{Role: model.RoleUser, Content: req.Message})
	return messages
}

// retrieveProducts embeds the message and queries the product index. Any
// failure here degrades to "no products found"; the conversational reply
// still proceeds.
func (r *Responder) retrieveProducts(ctx context.Context, message, clientID string) []model.Product {
	vec, err := r.embedder.Embed(ctx, message)
	if err != nil {
		r.log.Warn().Err(err).Msg("embedding failed; continuing without products")
		return nil
	}

	products, err := r.products.Search(ctx, vec, productLimit, clientID, nil)
	if err != nil {
		r.log.Warn().Err(err).Msg("product search failed; continuing without products")
		return nil
	}
	return products
}
