package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 60 * time.Second

// ReadinessChecker is anything that can tell whether its upstream is
// reachable with the configured credentials.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// ProbeSource runs one readiness check and records the outcome.
func ProbeSource(ctx context.Context, source ReadinessChecker, healthy *atomic.Bool) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := source.Ready(probeCtx)
	isHealthy := err == nil
	healthy.Store(isHealthy)

	if isHealthy {
		SourceReady.Set(1)
	} else {
		SourceReady.Set(0)
		slog.Warn("[HealthCheck] Source is unavailable", slog.String("error", err.Error()))
	}
	return isHealthy
}

// MonitorSourceHealth probes the source immediately and then on every tick
// until ctx is cancelled.
func MonitorSourceHealth(ctx context.Context, source ReadinessChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ProbeSource(ctx, source, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ProbeSource(ctx, source, healthy)
		}
	}
}
