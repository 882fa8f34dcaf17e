package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AppendPublishRecord writes an append-only log entry for a successful upload.
func (s *Store) AppendPublishRecord(ctx context.Context, rec PublishRecord) error {
	publishedAt := rec.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO published_videos (job_id, youtube_id, youtube_url, title, published_at)
         VALUES (?, ?, ?, ?, ?)`,
		rec.JobID,
		rec.YouTubeID,
		rec.YouTubeURL,
		nullableString(rec.Title),
		publishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append publish record: %w", err)
	}
	return nil
}

// ListPublishRecords returns publish log entries, newest first.
func (s *Store) ListPublishRecords(ctx context.Context, limit int) ([]PublishRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, job_id, youtube_id, youtube_url, title, published_at
         FROM published_videos ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list publish records: %w", err)
	}
	defer rows.Close()

	var records []PublishRecord
	for rows.Next() {
		var (
			rec          PublishRecord
			title        sql.NullString
			publishedRaw sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.YouTubeID, &rec.YouTubeURL, &title, &publishedRaw); err != nil {
			return nil, err
		}
		rec.Title = title.String
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			rec.PublishedAt = published
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
