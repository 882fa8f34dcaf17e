package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertWorkerHeartbeat records that a worker process is alive. One row per
// worker name; best effort, callers swallow failures.
func (s *Store) UpsertWorkerHeartbeat(ctx context.Context, hb WorkerHeartbeat) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO worker_heartbeats (worker_name, stage, pid, hostname, last_seen)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(worker_name) DO UPDATE SET
             stage = excluded.stage, pid = excluded.pid,
             hostname = excluded.hostname, last_seen = excluded.last_seen`,
		hb.WorkerName,
		hb.Stage,
		hb.PID,
		hb.Hostname,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert worker heartbeat: %w", err)
	}
	return nil
}

// ListWorkerHeartbeats returns all known worker heartbeats ordered by stage.
func (s *Store) ListWorkerHeartbeats(ctx context.Context) ([]WorkerHeartbeat, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT worker_name, stage, pid, hostname, last_seen
         FROM worker_heartbeats ORDER BY stage, worker_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list worker heartbeats: %w", err)
	}
	defer rows.Close()

	var heartbeats []WorkerHeartbeat
	for rows.Next() {
		var (
			hb      WorkerHeartbeat
			stage   string
			seenRaw sql.NullString
		)
		if err := rows.Scan(&hb.WorkerName, &stage, &hb.PID, &hb.Hostname, &seenRaw); err != nil {
			return nil, err
		}
		hb.Stage = Stage(stage)
		if seen, err := parseTimeString(seenRaw.String); err == nil {
			hb.LastSeen = seen
		}
		heartbeats = append(heartbeats, hb)
	}
	return heartbeats, rows.Err()
}
