package store

import (
	"context"
	"time"

	"github.com/davoli/staticms/internal/logger"
)

// StartPersistenceScheduler runs a goroutine that periodically flushes the
// local store to disk when dirty. On ctx.Done it performs a final flush
// before returning. Returns a channel that is closed when the scheduler has
// completed shutdown.
func StartPersistenceScheduler(ctx context.Context, s *LocalStore, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("persist").Debugf("starting persistence scheduler with interval: %v", interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// Final flush on shutdown - use background context to ensure it completes
				if err := s.Flush(context.Background()); err != nil {
					logger.WithComponent("persist").Errorf("final flush failed: %v", err)
				}
				logger.WithComponent("persist").Info("persistence scheduler stopped after final flush")
				return
			case <-ticker.C:
				if !s.IsDirty() {
					continue
				}
				logger.WithComponent("persist").Debugf("store is dirty, flushing to disk")
				if err := s.Flush(ctx); err != nil {
					logger.WithComponent("persist").Errorf("flush failed: %v", err)
				}
			}
		}
	}()
	return done
}
