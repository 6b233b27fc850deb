package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/sentiment-analyzer/internal/clients"
)

const HEALTHCHECK_TIMER = 15

// MonitorPlatformHealth probes the platform API on a fixed interval and
// mirrors the outcome into healthy. The web health endpoint stays static;
// this only feeds operator logs.
func MonitorPlatformHealth(ctx context.Context, healthy *atomic.Bool) {
	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := clients.GetPlatformClient().HealthCheck()
			healthy.Store(isHealthy)
			if !isHealthy {
				slog.Warn("[HealthCheck] Platform API is unreachable")
			}
		}
	}
}
