package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

// Generation parameters used for every completion.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 500
)

// OpenAI calls the chat completions API.
type OpenAI struct {
	client *resty.Client
	model  string
}

// NewOpenAI creates an OpenAI chat provider. OPENAI_BASE_URL overrides the
// endpoint for compatible servers.
func NewOpenAI(apiKey, chatModel string) *OpenAI {
	base := os.Getenv("OPENAI_BASE_URL")
	if base == "" {
		base = "https://api.openai.com"
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second)

	return &OpenAI{client: c, model: chatModel}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the assembled prompt and returns the generated text.
func (o *OpenAI) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	msgs := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := chatRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode(), resp.String())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", resp.String())
	}
	return cr.Choices[0].Message.Content, nil
}
