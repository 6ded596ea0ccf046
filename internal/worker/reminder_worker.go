package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-service/internal/config"
	"github.com/spec-kit/appointment-service/internal/service"
)

// StartReminderWorker runs reminder sweeps on a fixed interval until the
// context is cancelled.
func StartReminderWorker(ctx context.Context, reminderService *service.ReminderService, logger *zap.Logger, cfg config.ReminderConfig) {
	if reminderService == nil || !cfg.Enabled {
		return
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval())
		defer ticker.Stop()

		logger.Info("reminder worker started",
			zap.Duration("interval", cfg.Interval()),
			zap.Duration("lead", cfg.Lead()))

		for {
			select {
			case <-ctx.Done():
				logger.Info("reminder worker stopped")
				return
			case <-ticker.C:
				sent, err := reminderService.DispatchDue(ctx)
				if err != nil {
					logger.Error("reminder sweep failed", zap.Error(err))
					continue
				}
				if sent > 0 {
					logger.Info("reminders dispatched", zap.Int("count", sent))
				}
			}
		}
	}()
}
