package searchindex

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/health"
)

// IndexHealthChecker monitors a search index through its health.Pinger.
type IndexHealthChecker struct {
	name         string
	pinger       health.Pinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewIndexHealthChecker creates a checker for an index. The index argument
// may be a ProductIndex or IntentIndex; both Weaviate implementations expose
// HealthPing.
func NewIndexHealthChecker(name string, index interface{}, log zerolog.Logger, probeTimeout time.Duration) *IndexHealthChecker {
	hc := &IndexHealthChecker{name: name, log: log, probeTimeout: probeTimeout}
	if p, ok := index.(health.Pinger); ok {
		hc.pinger = p
	}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (hc *IndexHealthChecker) Name() string    { return hc.name }
func (hc *IndexHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

func (hc *IndexHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		if hc.pinger == nil {
			// Nothing to probe; assume reachable.
			hc.healthy.Store(1)
			return
		}
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := hc.pinger.HealthPing(checkCtx); err != nil {
			hc.healthy.Store(0)
			hc.log.Error().Str("checker", hc.name).Err(err).Msg("search index health check failed")
			return
		}
		hc.healthy.Store(1)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
