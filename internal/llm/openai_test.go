package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

func TestCompleteSendsGenerationParameters(t *testing.T) {
	var got chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Try magnesium."}},
			},
		})
	}))
	defer srv.Close()
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	o := NewOpenAI("sk-test", "gpt-4-turbo-preview")
	out, err := o.Complete(context.Background(), []model.ChatMessage{
		{Role: model.RoleSystem, Content: "persona"},
		{Role: model.RoleUser, Content: "I can't sleep"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Try magnesium.", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4-turbo-preview", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "I can't sleep", got.Messages[1].Content)
}

func TestCompleteNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	o := NewOpenAI("sk-test", "gpt-4-turbo-preview")
	_, err := o.Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	o := NewOpenAI("sk-test", "gpt-4-turbo-preview")
	_, err := o.Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})
	require.Error(t, err)
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider("openai", "", "gpt-4-turbo-preview")
	require.Error(t, err)

	_, err = NewProvider("openai", "sk-test", "gpt-4-turbo-preview")
	require.NoError(t, err)

	// generation rides on the OpenAI endpoint even for ollama embedders
	_, err = NewProvider("ollama", "sk-test", "gpt-4-turbo-preview")
	require.NoError(t, err)

	_, err = NewProvider("acme", "sk-test", "gpt-4-turbo-preview")
	require.Error(t, err)
}
