package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/api/respond"
	"github.com/brightside-ai/assistant-backend/internal/intent"
	"github.com/brightside-ai/assistant-backend/internal/model"
)

const defaultIntentLimit = 1

// IntentHandler handles POST /api/classify-intent. Unlike the other
// endpoints this one surfaces infrastructure failures as explicit status
// codes; a no-match result is still 200 with the sentinel Generic intent.
type IntentHandler struct {
	classifier *intent.Classifier
	log        zerolog.Logger
}

func NewIntentHandler(classifier *intent.Classifier, log zerolog.Logger) *IntentHandler {
	return &IntentHandler{classifier: classifier, log: log}
}

func (h *IntentHandler) HandleClassifyIntent(w http.ResponseWriter, r *http.Request) {
	var req model.IntentClassificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond.WriteBadRequest(w, "Message cannot be empty")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultIntentLimit
	}

	result, err := h.classifier.Classify(r.Context(), req.Message, req.Limit, req.MinSimilarityThreshold)
	if err != nil {
		if errors.Is(err, model.ErrEmbedding) {
			h.log.Error().Err(err).Msg("intent classification embedding failed")
			respond.WriteInternalError(w, "Failed to generate message embedding")
			return
		}
		h.log.Error().Err(err).Msg("intent corpus query failed")
		respond.WriteInternalError(w, "Failed to query intent database")
		return
	}

	respond.WriteJSON(w, http.StatusOK, result)
}
