package service

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/GophTasks/internal/backend"
	"go.uber.org/zap"
)

// StartAutoRefresh refetches tasks every interval until ctx is done.
// Ticks on which active reports false are skipped; a nil active always refreshes.
func StartAutoRefresh(ctx context.Context, tasks *TaskCollection, interval time.Duration, active func() bool, log *zap.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if active != nil && !active() {
					continue
				}
				err := tasks.FetchTasks(ctx)
				switch {
				case err == nil:
					log.Debug("tasks refreshed", zap.Int("count", len(tasks.Tasks())))
				case errors.Is(err, backend.ErrAuthenticationRequired), errors.Is(err, context.Canceled):
					// logged out mid-tick or shutting down
				default:
					log.Warn("auto refresh failed", zap.Error(err))
				}
			}
		}
	}()
}
