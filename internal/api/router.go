package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/api/recovery"
	"github.com/brightside-ai/assistant-backend/internal/chat"
	"github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/health"
	"github.com/brightside-ai/assistant-backend/internal/intent"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
	"github.com/brightside-ai/assistant-backend/internal/sessions"
)

// RouterDeps carries everything the HTTP surface needs, constructed once at
// startup and injected here.
type RouterDeps struct {
	Embedder   *embeddings.Client
	Products   searchindex.ProductIndex
	Responder  *chat.Responder
	Sessions   *sessions.Store
	Classifier *intent.Classifier
	Health     *health.ServiceHealthChecker
	Log        zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	recommendHandler := NewRecommendHandler(deps.Embedder, deps.Products, deps.Log)
	chatHandler := NewChatHandler(deps.Responder, deps.Sessions, deps.Log)
	intentHandler := NewIntentHandler(deps.Classifier, deps.Log)
	healthHandler := NewHealthHandler(deps.Health)

	router.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.CheckReadiness).Methods("GET")

	router.HandleFunc("/recommend", recommendHandler.HandleRecommend).Methods("POST")
	router.HandleFunc("/api/chat", chatHandler.HandleChat).Methods("POST")
	router.HandleFunc("/api/classify-intent", intentHandler.HandleClassifyIntent).Methods("POST")

	return router
}
