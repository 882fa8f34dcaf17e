package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// heartbeatEmitter periodically records that this worker process is alive.
// Failures are logged and swallowed; losing a heartbeat must never stop the
// poll loop.
type heartbeatEmitter struct {
	store    *queue.Store
	logger   *slog.Logger
	name     string
	stage    queue.Stage
	interval time.Duration
}

func newHeartbeatEmitter(store *queue.Store, logger *slog.Logger, name string, stg queue.Stage, interval time.Duration) *heartbeatEmitter {
	return &heartbeatEmitter{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "heartbeat"),
		name:     name,
		stage:    stg,
		interval: interval,
	}
}

// Run emits heartbeats until the context is cancelled. It writes once
// immediately so monitoring sees the worker as soon as it starts.
func (h *heartbeatEmitter) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	h.emit(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.emit(ctx)
		}
	}
}

func (h *heartbeatEmitter) emit(ctx context.Context) {
	hostname, _ := os.Hostname()
	hb := queue.WorkerHeartbeat{
		WorkerName: h.name,
		Stage:      h.stage,
		PID:        os.Getpid(),
		Hostname:   hostname,
	}
	if err := h.store.UpsertWorkerHeartbeat(ctx, hb); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Warn("heartbeat write failed", logging.Error(err))
	}
}
