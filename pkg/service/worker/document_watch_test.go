package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/repository/memory"
	"github.com/pmsync-dev/pmsync/pkg/service/worker"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
)

func TestDocumentWatchWorkerStartStop(t *testing.T) {
	uc := usecase.New(usecase.WithRepository(memory.New()))
	w := worker.NewDocumentWatchWorker(uc, 10*time.Millisecond)

	gt.NoError(t, w.Start(context.Background())).Required()

	// Let a few passes run against the empty tenant list.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop in time")
	}
}

func TestDocumentWatchWorkerStopsOnContextCancel(t *testing.T) {
	uc := usecase.New(usecase.WithRepository(memory.New()))
	w := worker.NewDocumentWatchWorker(uc, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	gt.NoError(t, w.Start(ctx)).Required()

	cancel()

	// Stop must not hang even though the loop already exited.
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
