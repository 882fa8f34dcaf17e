package queue

import (
	"context"
	"fmt"
	"time"
)

// Claim attempts to take exclusive ownership of a job for one stage.
//
// The claim is a single conditional update: the status check and the
// transition to the stage's in-progress status happen in one statement, and
// the claiming worker's identity lands in the same write. Zero rows affected
// means another worker won the race; callers treat that as a normal skip, not
// an error. A statement error leaves the job unclaimed and retryable on the
// next poll.
func (s *Store) Claim(ctx context.Context, jobID string, stg Stage, workerID string) (bool, error) {
	processing := stg.ProcessingStatus()
	if processing == "" {
		return false, fmt.Errorf("unknown stage %q", stg)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, claimed_by = ?, error_message = NULL, sub_status = NULL,
             started_at = COALESCE(started_at, ?), updated_at = ?
         WHERE id = ? AND status = ?`,
		processing,
		workerID,
		now,
		now,
		jobID,
		StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim rows affected: %w", err)
	}
	return affected == 1, nil
}

// RequestStage routes an idle job to a specific stage without the chain
// sentinel: the explicit per-stage trigger. Only unclaimed jobs (pending or
// parked in ready) are eligible; returns false when the job is mid-stage or
// terminal.
func (s *Store) RequestStage(ctx context.Context, jobID string, stg Stage, regenerate bool) (bool, error) {
	action := stg.Action()
	if action == "" {
		return false, fmt.Errorf("unknown stage %q", stg)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, action_needed = ?, original_action = NULL,
             missing_deps_json = NULL, sub_status = NULL, regenerate = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusPending,
		action,
		boolToInt(regenerate),
		now,
		jobID,
		StatusPending,
		StatusReady,
	)
	if err != nil {
		return false, fmt.Errorf("request stage: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("request stage rows affected: %w", err)
	}
	return affected == 1, nil
}
