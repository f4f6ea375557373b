package repository

import (
	"context"
	"sync"
	"time"

	"github.com/TokenLens/riskgate/internal/pkg/logger"
)

// Cleaner prunes scan history older than a retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

var (
	_ Cleaner = (*PostgresScanRepo)(nil)
	_ Cleaner = (*MemoryScanRepo)(nil)
)

// CleanupWorker periodically prunes a scan repository. Started by the
// composition root alongside the cache janitor and stopped on shutdown.
type CleanupWorker struct {
	stopOnce sync.Once
	stop     chan struct{}
}

func StartCleanup(c Cleaner, interval, retention time.Duration) *CleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	w := &CleanupWorker{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				removed, err := c.Cleanup(ctx, retention)
				cancel()
				if err != nil {
					logger.Warn("scan history cleanup failed", "error", err)
				} else if removed > 0 {
					logger.Info("scan history pruned", "removed", removed)
				}
			}
		}
	}()
	return w
}

func (w *CleanupWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}
