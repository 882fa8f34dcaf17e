package testsupport

import (
	"context"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, topic string, meta queue.Metadata) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), topic, meta)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

// NewChainJob creates a job submitted with the auto-chain request.
func NewChainJob(t testing.TB, store *queue.Store, topic string) *queue.Job {
	t.Helper()
	return NewJob(t, store, topic, queue.Metadata{
		ActionNeeded:   queue.ActionRunAll,
		OriginalAction: queue.ActionRunAll,
	})
}

// NewStageJob creates a job awaiting a single explicit stage.
func NewStageJob(t testing.TB, store *queue.Store, topic string, stg queue.Stage) *queue.Job {
	t.Helper()
	return NewJob(t, store, topic, queue.Metadata{ActionNeeded: stg.Action()})
}
