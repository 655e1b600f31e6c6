package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-ai/assistant-backend/internal/chat"
	"github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/intent"
	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/retry"
	"github.com/brightside-ai/assistant-backend/internal/sessions"
)

type fakeEmbedProvider struct {
	vec []float32
	err error
}

func (f *fakeEmbedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeProductIndex struct {
	hits []model.Product
	err  error

	gotFilters map[string]interface{}
	gotLimit   int
}

func (f *fakeProductIndex) Search(ctx context.Context, vector []float32, limit int, clientID string, filterTree map[string]interface{}) ([]model.Product, error) {
	f.gotFilters = filterTree
	f.gotLimit = limit
	return f.hits, f.err
}

type fakeIntentIndex struct {
	hits []model.Intent
	err  error
}

func (f *fakeIntentIndex) Search(ctx context.Context, vector []float32, limit int, minSimilarity float64) ([]model.Intent, error) {
	return f.hits, f.err
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(ctx context.Context, msgs []model.ChatMessage) (string, error) {
	return f.reply, f.err
}

func onceOnly() retry.Policy {
	return retry.Policy{MaxAttempts: 1, InitialInterval: 1, MaxInterval: 1}
}

func newEmbedder(p embeddings.Provider) *embeddings.Client {
	return embeddings.NewClient(p, onceOnly())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest("POST", "/", &buf)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// ---- /recommend ----

func TestRecommendReturnsStorefrontItems(t *testing.T) {
	score := 0.88
	idx := &fakeProductIndex{hits: []model.Product{{
		ID:          "sku-1",
		Name:        "Magnesium Glycinate",
		Description: "Chelated magnesium.",
		Price:       "19.99",
		ImageURL:    "https://cdn.example.com/mag.jpg",
		ProductURL:  "/products/magnesium",
		Score:       &score,
	}}}
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), idx, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, model.RecommendRequest{Query: "sleep support"})
	require.Equal(t, http.StatusOK, rr.Code)

	var items []StorefrontItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "sku-1", items[0].ID)
	assert.Equal(t, "Magnesium Glycinate", items[0].Title)
	assert.Equal(t, "19.99", items[0].Price)
	assert.Equal(t, "$19.99", items[0].FormattedPrice)
	require.NotNil(t, items[0].Score)
	assert.InDelta(t, 0.88, *items[0].Score, 1e-9)
	assert.Equal(t, 3, idx.gotLimit)
}

func TestRecommendPassesFilters(t *testing.T) {
	idx := &fakeProductIndex{hits: []model.Product{{ID: "sku-1", Price: "1.00"}}}
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), idx, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, model.RecommendRequest{
		Query:   "snacks",
		Limit:   5,
		Filters: map[string]interface{}{"category": "supplements"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, idx.gotLimit)
	assert.Equal(t, map[string]interface{}{"category": "supplements"}, idx.gotFilters)
}

func TestRecommendFallsBackToMockOnEmbedFailure(t *testing.T) {
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{err: errors.New("down")}), &fakeProductIndex{}, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, model.RecommendRequest{Query: "sleep"})
	require.Equal(t, http.StatusOK, rr.Code)

	var items []StorefrontItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 4)
	assert.Equal(t, "Organic Fresh Avocados", items[0].Title)
	assert.Empty(t, items[0].FormattedPrice)
}

func TestRecommendFallsBackToMockOnSearchFailure(t *testing.T) {
	idx := &fakeProductIndex{err: errors.New("index down")}
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), idx, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, model.RecommendRequest{Query: "sleep"})
	require.Equal(t, http.StatusOK, rr.Code)

	var items []StorefrontItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	assert.Len(t, items, 4)
}

func TestRecommendFallsBackToMockOnEmptyResults(t *testing.T) {
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), &fakeProductIndex{}, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, model.RecommendRequest{Query: "nothing matches this"})
	require.Equal(t, http.StatusOK, rr.Code)

	var items []StorefrontItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	assert.Len(t, items, 4)
}

func TestRecommendRejectsMissingQuery(t *testing.T) {
	h := NewRecommendHandler(newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), &fakeProductIndex{}, zerolog.Nop())

	rr := postJSON(t, h.HandleRecommend, map[string]interface{}{"limit": 3})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ---- /api/chat ----

func newChatHandler(llm *fakeLLM, products *fakeProductIndex, store *sessions.Store) *ChatHandler {
	responder := chat.NewResponder(llm, newEmbedder(&fakeEmbedProvider{vec: []float32{0.1}}), products, onceOnly(), zerolog.Nop())
	return NewChatHandler(responder, store, zerolog.Nop())
}

func TestChatMissingMessageIs422(t *testing.T) {
	h := newChatHandler(&fakeLLM{reply: "hi"}, &fakeProductIndex{}, sessions.New(0))

	rr := postJSON(t, h.HandleChat, map[string]interface{}{"client_id": "acme"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestChatMalformedBodyIs422(t *testing.T) {
	h := newChatHandler(&fakeLLM{reply: "hi"}, &fakeProductIndex{}, sessions.New(0))

	req := httptest.NewRequest("POST", "/api/chat", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.HandleChat(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestChatNewSessionFlow(t *testing.T) {
	store := sessions.New(0)
	products := &fakeProductIndex{hits: []model.Product{{ID: "sku-1"}}}
	h := newChatHandler(&fakeLLM{reply: "Try magnesium."}, products, store)

	rr := postJSON(t, h.HandleChat, model.ChatRequest{Message: "I have trouble sleeping"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAssistant, resp.Role)
	assert.Equal(t, "Try magnesium.", resp.Content)
	assert.True(t, resp.Recommend)
	require.Len(t, resp.Products, 1)
}

func TestChatStoresBothTurnsInSession(t *testing.T) {
	store := sessions.New(0)
	h := newChatHandler(&fakeLLM{reply: "Hello there."}, &fakeProductIndex{}, store)
	sid := store.Create("acme")

	rr := postJSON(t, h.HandleChat, model.ChatRequest{Message: "hi", SessionID: sid})
	require.Equal(t, http.StatusOK, rr.Code)

	msgs := store.Messages(sid)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello there.", msgs[1].Content)
}

func TestChatQuizAnswersReplaceStoredPreferences(t *testing.T) {
	store := sessions.New(0)
	h := newChatHandler(&fakeLLM{reply: "ok"}, &fakeProductIndex{}, store)
	sid := store.Create("")
	store.StorePreferences(sid, map[string]interface{}{"symptoms": []interface{}{"fatigue"}})

	rr := postJSON(t, h.HandleChat, model.ChatRequest{
		Message:     "hi",
		SessionID:   sid,
		QuizAnswers: map[string]interface{}{"health_goals": []interface{}{"sleep"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	prefs := store.Preferences(sid)
	require.NotNil(t, prefs)
	assert.Contains(t, prefs, "health_goals")
	assert.NotContains(t, prefs, "symptoms")
}

func TestChatApologyOnCompletionFailure(t *testing.T) {
	store := sessions.New(0)
	h := newChatHandler(&fakeLLM{err: errors.New("model down")}, &fakeProductIndex{hits: []model.Product{{ID: "sku-1"}}}, store)
	sid := store.Create("")

	rr := postJSON(t, h.HandleChat, model.ChatRequest{Message: "hi", SessionID: sid})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apologyMessage, resp.Content)
	assert.False(t, resp.Recommend)
	assert.Empty(t, resp.Products)

	// the apology is still recorded as the assistant turn
	msgs := store.Messages(sid)
	require.Len(t, msgs, 2)
	assert.Equal(t, apologyMessage, msgs[1].Content)
}

func TestChatSeedsFreshSessionFromProvidedHistory(t *testing.T) {
	store := sessions.New(0)
	llm := &fakeLLM{reply: "ok"}
	h := newChatHandler(llm, &fakeProductIndex{}, store)

	rr := postJSON(t, h.HandleChat, model.ChatRequest{
		Message: "and now?",
		ChatHistory: []model.ChatMessage{
			{Role: model.RoleUser, Content: "earlier"},
			{Role: model.RoleAssistant, Content: "answer"},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)
}

// ---- /api/classify-intent ----

func newIntentHandler(provider *fakeEmbedProvider, idx *fakeIntentIndex) *IntentHandler {
	classifier := intent.NewClassifier(newEmbedder(provider), idx, zerolog.Nop())
	return NewIntentHandler(classifier, zerolog.Nop())
}

func TestClassifyIntentSuccess(t *testing.T) {
	h := newIntentHandler(&fakeEmbedProvider{vec: []float32{0.1}}, &fakeIntentIndex{hits: []model.Intent{
		{IntentID: 7, Title: "supplement_advice", Prompt: "Give advice", SimilarityScore: 0.9},
	}})

	rr := postJSON(t, h.HandleClassifyIntent, model.IntentClassificationRequest{
		Message:                "what helps with sleep",
		MinSimilarityThreshold: 0.75,
		Limit:                  3,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.Intent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.IntentID)
	assert.Equal(t, "supplement_advice", resp.Title)
}

func TestClassifyIntentBlankMessageIs400(t *testing.T) {
	h := newIntentHandler(&fakeEmbedProvider{vec: []float32{0.1}}, &fakeIntentIndex{})

	rr := postJSON(t, h.HandleClassifyIntent, map[string]interface{}{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClassifyIntentEmbedFailureIs500(t *testing.T) {
	h := newIntentHandler(&fakeEmbedProvider{err: errors.New("down")}, &fakeIntentIndex{})

	rr := postJSON(t, h.HandleClassifyIntent, model.IntentClassificationRequest{Message: "hello"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to generate message embedding")
}

func TestClassifyIntentSearchFailureIs500(t *testing.T) {
	h := newIntentHandler(&fakeEmbedProvider{vec: []float32{0.1}}, &fakeIntentIndex{err: errors.New("corpus down")})

	rr := postJSON(t, h.HandleClassifyIntent, model.IntentClassificationRequest{Message: "hello"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to query intent database")
}

func TestClassifyIntentNoMatchReturnsGeneric(t *testing.T) {
	h := newIntentHandler(&fakeEmbedProvider{vec: []float32{0.1}}, &fakeIntentIndex{})

	rr := postJSON(t, h.HandleClassifyIntent, model.IntentClassificationRequest{
		Message:                "complete nonsense",
		MinSimilarityThreshold: 0.99,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.Intent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.IntentID)
	assert.Equal(t, "Generic", resp.Title)
	assert.Zero(t, resp.SimilarityScore)
}

// ---- /health ----

func TestHealthAlwaysOK(t *testing.T) {
	h := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	h.CheckHealth(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestReadinessUnavailableWithoutChecker(t *testing.T) {
	h := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	rr := httptest.NewRecorder()
	h.CheckReadiness(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
