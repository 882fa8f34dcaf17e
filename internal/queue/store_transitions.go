package queue

import (
	"context"
	"fmt"
	"time"
)

// MarkFailed moves a job to the terminal failed status with the error
// recorded. The pipeline router is bypassed on failure, so chain state is
// irrelevant here; the metadata is left as-is for postmortem inspection.
func (s *Store) MarkFailed(ctx context.Context, jobID, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, sub_status = NULL,
             completed_at = COALESCE(completed_at, ?), updated_at = ?
         WHERE id = ?`,
		StatusFailed,
		message,
		now,
		now,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// RecordMissingDependencies annotates a pending job that a stage examined and
// found not ready. The status is deliberately untouched so the job stays
// visible to future polls.
func (s *Store) RecordMissingDependencies(ctx context.Context, jobID string, missing []string) error {
	encoded, err := encodeMissing(missing)
	if err != nil {
		return fmt.Errorf("encode missing dependencies: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE jobs SET missing_deps_json = ?, updated_at = ? WHERE id = ?`,
		nullableString(encoded),
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("record missing dependencies: %w", err)
	}
	return nil
}

// SetSubStatus records fine-grained progress within a stage. Observability
// only; never read by the claim protocol.
func (s *Store) SetSubStatus(ctx context.Context, jobID, subStatus string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET sub_status = ?, updated_at = ? WHERE id = ?`,
		nullableString(subStatus),
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("set sub status: %w", err)
	}
	return nil
}

// RetryFailed moves failed jobs back to pending for a fresh attempt, clearing
// the recorded error. With no ids, all failed jobs are retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE jobs
            SET status = ?, error_message = NULL, missing_deps_json = NULL,
                sub_status = NULL, completed_at = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			now,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed jobs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, now)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE jobs
        SET status = ?, error_message = NULL, missing_deps_json = NULL,
            sub_status = NULL, completed_at = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected jobs: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing returns jobs stranded in a processing status back to
// pending. This is the manual recovery path for claims abandoned by a killed
// worker; the design has no claim expiry, so nothing does this automatically.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, claimed_by = NULL, sub_status = NULL, updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusGeneratingScript,
		StatusCreatingVoiceover,
		StatusRenderingVideo,
		StatusUploading,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}
