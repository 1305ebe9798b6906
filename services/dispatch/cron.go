package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartRescan runs the periodic re-evaluation loop until the context is
// cancelled. Interval is once per minute in production.
func StartRescan(ctx context.Context, svc DispatchService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("dispatch: rescan loop shutdown signal received")
			return
		case <-ticker.C:
			if err := svc.Rescan(ctx); err != nil {
				logger.Warn("dispatch: rescan cycle failed", zap.Error(err))
			}
		}
	}
}
