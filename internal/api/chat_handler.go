package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/api/respond"
	"github.com/brightside-ai/assistant-backend/internal/chat"
	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/sessions"
)

// apologyMessage replaces the assistant reply when generation fails after
// retries. The endpoint still answers 200; only the intent endpoint surfaces
// infrastructure failures as error statuses.
const apologyMessage = "I'm sorry, I'm having trouble generating a response right now."

// ChatHandler handles POST /api/chat.
type ChatHandler struct {
	responder *chat.Responder
	store     *sessions.Store
	log       zerolog.Logger
}

func NewChatHandler(responder *chat.Responder, store *sessions.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{responder: responder, store: store, log: log}
}

// HandleChat runs one conversational turn: resolve the session, persist the
// user message and any quiz answers, generate the reply, persist it, respond.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteUnprocessable(w, "invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respond.WriteUnprocessable(w, "'message' field is required")
		return
	}

	sid := req.SessionID
	if sid == "" {
		sid = h.store.Create(req.ClientID)
		// A caller-provided transcript seeds the fresh session so the
		// model sees the conversation so far.
		for _, msg := range req.ChatHistory {
			h.store.AddMessage(sid, msg)
		}
	}

	// History is captured before the new message lands so the prompt
	// carries it exactly once.
	history := h.store.Messages(sid)

	h.store.AddMessage(sid, model.ChatMessage{
		Role:      model.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	})

	if len(req.QuizAnswers) > 0 {
		h.store.StorePreferences(sid, req.QuizAnswers)
	}

	systemPrompt := chat.BuildSystemPrompt(h.store.Preferences(sid))

	resp, err := h.responder.Respond(r.Context(), chat.Request{
		Message:      req.Message,
		History:      history,
		ClientID:     req.ClientID,
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sid).Msg("response generation failed; sending apology")
		resp = &model.ChatResponse{
			Role:      model.RoleAssistant,
			Content:   apologyMessage,
			Recommend: false,
		}
	}

	h.store.AddMessage(sid, model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now().UTC(),
	})

	h.log.Info().Str("session_id", sid).Bool("recommend", resp.Recommend).Msg("chat turn processed")
	respond.WriteJSON(w, http.StatusOK, resp)
}
