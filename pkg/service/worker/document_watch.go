// Package worker runs the periodic document change detection.
package worker

import (
	"context"
	"time"

	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// DocumentWatchWorker polls every enabled tenant's document folder on a
// fixed interval.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For horizontal scaling, add leader election before running the pass
type DocumentWatchWorker struct {
	uc       *usecase.UseCases
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewDocumentWatchWorker(uc *usecase.UseCases, interval time.Duration) *DocumentWatchWorker {
	return &DocumentWatchWorker{
		uc:       uc,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the watch loop in a background goroutine. Does not block
// server startup; the first pass runs after one interval so a crash loop
// cannot hammer the document source.
func (w *DocumentWatchWorker) Start(ctx context.Context) error {
	logging.Default().Info("document watch worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the loop to exit.
func (w *DocumentWatchWorker) Stop() {
	logging.Default().Info("document watch worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("document watch worker stopped")
}

func (w *DocumentWatchWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.uc.CheckAllTenants(ctx); err != nil {
				logging.Default().Error("document watch pass failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("document watch worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("document watch worker context cancelled")
			return
		}
	}
}
