// Package assistantservice wires configuration, providers, indexes, and the
// HTTP surface into a running service.
package assistantservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/api"
	"github.com/brightside-ai/assistant-backend/internal/chat"
	"github.com/brightside-ai/assistant-backend/internal/config"
	emb "github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/factory"
	"github.com/brightside-ai/assistant-backend/internal/health"
	"github.com/brightside-ai/assistant-backend/internal/intent"
	"github.com/brightside-ai/assistant-backend/internal/logger"
	"github.com/brightside-ai/assistant-backend/internal/retry"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
	"github.com/brightside-ai/assistant-backend/internal/sessions"
)

// Run starts the assistant HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("assistant-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("chat_model", cfg.ChatModel).
		Msg("Assistant service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}

	// Health probes run in the background and feed /health/ready only.
	// Startup is not gated on them; /health stays a plain liveness check.
	deps.router.Health = startHealthCheckers(ctx, cfg, log, deps)

	router := api.NewRouter(deps.router)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// serviceDeps keeps the raw provider and index handles alongside the router
// wiring so health probes can target them directly.
type serviceDeps struct {
	router   api.RouterDeps
	provider emb.Provider
	intents  searchindex.IntentIndex
}

// initDependencies constructs the shared long-lived clients. Anything that
// fails here stops the process before it serves traffic.
func initDependencies(cfg *config.Config, log zerolog.Logger) (*serviceDeps, error) {
	provider, err := factory.NewEmbeddingProvider(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Embedding provider unavailable")
		return nil, err
	}
	embedder := emb.NewClient(provider, retry.EmbedPolicy())

	products, err := factory.NewProductIndex(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Product index unavailable")
		return nil, err
	}

	intents, err := factory.NewIntentIndex(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Intent index unavailable")
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Chat completion provider unavailable")
		return nil, err
	}

	return &serviceDeps{
		router: api.RouterDeps{
			Embedder:   embedder,
			Products:   products,
			Responder:  chat.NewResponder(llmProvider, embedder, products, retry.CompletionPolicy(), log),
			Sessions:   sessions.New(cfg.SessionTTL),
			Classifier: intent.NewClassifier(embedder, intents, log),
			Log:        log,
		},
		provider: provider,
		intents:  intents,
	}, nil
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *serviceDeps) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	embChecker := emb.NewProviderHealthChecker(deps.provider, log, probeTimeout)
	go embChecker.Start(ctx, interval)

	productChecker := searchindex.NewIndexHealthChecker("product-index", deps.router.Products, log, probeTimeout)
	go productChecker.Start(ctx, interval)

	intentChecker := searchindex.NewIndexHealthChecker("intent-index", deps.intents, log, probeTimeout)
	go intentChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, embChecker, productChecker, intentChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
