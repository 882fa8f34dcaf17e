package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

// Options tunes a worker's poll loop.
type Options struct {
	// Name identifies this worker in claims and heartbeats. Defaults to
	// <stage>-<hostname>-<pid>.
	Name               string
	PollInterval       time.Duration
	ErrorRetryInterval time.Duration
	HeartbeatInterval  time.Duration
	MaxInFlight        int
	FetchBatch         int
}

func (o *Options) applyDefaults(stg queue.Stage) {
	if o.Name == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "unknown"
		}
		o.Name = fmt.Sprintf("%s-%s-%d", stg, hostname, os.Getpid())
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.ErrorRetryInterval <= 0 {
		o.ErrorRetryInterval = 30 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
	if o.MaxInFlight < 1 {
		o.MaxInFlight = 1
	}
	if o.FetchBatch < 1 {
		o.FetchBatch = 10
	}
}

// Worker runs the poll loop for a single pipeline stage.
type Worker struct {
	store    *queue.Store
	handler  stage.Handler
	logger   *slog.Logger
	opts     Options
	inflight *inflightTracker

	dispatched sync.WaitGroup
	background sync.WaitGroup
}

// New constructs a worker for the handler's stage.
func New(store *queue.Store, handler stage.Handler, logger *slog.Logger, opts Options) *Worker {
	opts.applyDefaults(handler.Stage())
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		store:    store,
		handler:  handler,
		logger:   logging.NewComponentLogger(logger, string(handler.Stage())+"-worker"),
		opts:     opts,
		inflight: newInflightTracker(opts.MaxInFlight),
	}
}

// Name returns the worker's claim identity.
func (w *Worker) Name() string {
	return w.opts.Name
}

// Run polls the ledger until the context is cancelled, then drains. Shutdown
// stops new claims immediately but lets dispatched stage runs finish; a stage
// is never cancelled mid-run.
func (w *Worker) Run(ctx context.Context) error {
	if health := w.handler.HealthCheck(ctx); !health.Ready {
		return services.Wrap(services.ErrConfiguration, string(w.handler.Stage()), "startup", health.Detail, nil)
	}

	w.logger.Info("worker started",
		logging.String(logging.FieldWorker, w.opts.Name),
		logging.Int("max_in_flight", w.opts.MaxInFlight),
		logging.Duration("poll_interval", w.opts.PollInterval))

	hb := newHeartbeatEmitter(w.store, w.logger, w.opts.Name, w.handler.Stage(), w.opts.HeartbeatInterval)
	w.background.Add(1)
	go hb.Run(ctx, &w.background)

	for {
		wait := w.opts.PollInterval
		if err := w.pollOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			w.logger.Error("poll cycle failed", logging.Error(err))
			wait = w.opts.ErrorRetryInterval
		}

		select {
		case <-ctx.Done():
		case <-time.After(wait):
			continue
		}
		break
	}

	if n := w.inflight.Size(); n > 0 {
		w.logger.Info("draining in-flight jobs", logging.Int("count", n))
	}
	w.dispatched.Wait()
	w.background.Wait()
	w.logger.Info("worker stopped")
	return nil
}

// pollOnce fetches eligible jobs and dispatches up to the remaining capacity.
func (w *Worker) pollOnce(ctx context.Context) error {
	capacity := w.inflight.Capacity()
	if capacity == 0 {
		return nil
	}

	jobs, err := w.store.JobsAwaiting(ctx, w.handler.Stage(), w.opts.FetchBatch)
	if err != nil {
		return fmt.Errorf("fetch candidates: %w", err)
	}

	for _, job := range jobs {
		if capacity == 0 {
			return nil
		}
		if w.inflight.Tracked(job.ID) {
			continue
		}

		ready, missing := w.handler.CheckDependencies(job)
		if !ready {
			// Not an error: the job stays pending, annotated so the gap
			// is visible to operators.
			if err := w.store.RecordMissingDependencies(ctx, job.ID, missing); err != nil {
				w.logger.Warn("record missing dependencies failed",
					logging.String(logging.FieldJobID, job.ID), logging.Error(err))
			}
			w.logger.Info("job not ready",
				logging.String(logging.FieldJobID, job.ID),
				logging.Any("missing", missing))
			continue
		}

		if !w.inflight.TryReserve(job.ID) {
			continue
		}

		claimed, err := w.store.Claim(ctx, job.ID, w.handler.Stage(), w.opts.Name)
		if err != nil {
			w.inflight.Release(job.ID)
			w.logger.Warn("claim attempt failed",
				logging.String(logging.FieldJobID, job.ID), logging.Error(err))
			continue
		}
		if !claimed {
			// Another worker won the race. Normal, silent loss.
			w.inflight.Release(job.ID)
			w.logger.Debug("claim lost", logging.String(logging.FieldJobID, job.ID))
			continue
		}

		capacity--
		w.dispatched.Add(1)
		go w.runJob(context.WithoutCancel(ctx), job.ID)
	}
	return nil
}

// runJob executes the stage against a claimed job and routes the result.
// Stage errors terminate the job, never the worker.
func (w *Worker) runJob(ctx context.Context, jobID string) {
	defer w.dispatched.Done()
	defer w.inflight.Release(jobID)

	stg := w.handler.Stage()
	ctx = services.WithJobID(ctx, jobID)
	ctx = services.WithStage(ctx, string(stg))
	ctx = services.WithWorker(ctx, w.opts.Name)
	logger := logging.WithContext(ctx, w.logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", logging.Any("panic", r))
			w.fail(ctx, logger, jobID, fmt.Sprintf("%s stage panicked: %v", stg, r))
		}
	}()

	job, err := w.store.GetByID(ctx, jobID)
	if err != nil {
		logger.Error("reload claimed job failed", logging.Error(err))
		return
	}

	logger.Info("stage started", logging.String(logging.FieldTopic, job.Topic))
	started := time.Now()

	if err := w.handler.Run(ctx, job); err != nil {
		logger.Error("stage failed", logging.Error(err), logging.Duration("elapsed", time.Since(started)))
		w.fail(ctx, logger, jobID, err.Error())
		return
	}

	stage.Advance(job, stg)
	if err := w.store.Update(ctx, job); err != nil {
		logger.Error("persist stage result failed", logging.Error(err))
		w.fail(ctx, logger, jobID, fmt.Sprintf("persist %s result: %v", stg, err))
		return
	}

	logger.Info("stage succeeded",
		logging.String(logging.FieldStatus, string(job.Status)),
		logging.String(logging.FieldAction, string(job.Meta.ActionNeeded)),
		logging.Duration("elapsed", time.Since(started)))
}

func (w *Worker) fail(ctx context.Context, logger *slog.Logger, jobID, message string) {
	if err := w.store.MarkFailed(ctx, jobID, message); err != nil {
		logger.Error("mark job failed errored", logging.Error(err))
	}
}
