package stage

import (
	"context"

	"clipforge/internal/queue"
)

// Handler describes the contract a worker needs from each stage.
//
// CheckDependencies runs before a claim is attempted: it reports whether the
// job carries the payload fields the stage consumes, and names the missing
// ones so the job can be annotated rather than silently skipped. Run executes
// the stage against a claimed job and mutates the job's payload fields in
// place; the caller persists the result.
type Handler interface {
	Stage() queue.Stage
	CheckDependencies(job *queue.Job) (bool, []string)
	Run(ctx context.Context, job *queue.Job) error
	HealthCheck(ctx context.Context) Health
}
