package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/logger"
)

// SessionPurger deletes call sessions started before cutoff.
type SessionPurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CallRetentionWorker periodically drops call sessions older than the retention window.
type CallRetentionWorker struct {
	purger       SessionPurger
	retention    time.Duration
	tickInterval time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewCallRetentionWorker(purger SessionPurger, retention time.Duration, log *zap.Logger) *CallRetentionWorker {
	return &CallRetentionWorker{
		purger:       purger,
		retention:    retention,
		tickInterval: time.Hour,
		now:          time.Now,
		logger:       logger.OrNop(log).Named("call_retention"),
	}
}

// Start blocks until ctx is cancelled, purging once immediately and then every tick.
func (w *CallRetentionWorker) Start(ctx context.Context) {
	w.logger.Info("call retention worker started", zap.Duration("retention", w.retention))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("call retention worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *CallRetentionWorker) purge(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)

	n, err := w.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error("purge call sessions failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("call sessions purged", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}
