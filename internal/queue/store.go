package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clipforge/internal/config"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewJob inserts a job for a topic. The metadata carries the initial routing
// signal: ActionRunAll for an auto-chain request, or a single stage's action.
func (s *Store) NewJob(ctx context.Context, topic string, meta Metadata) (*Job, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, topic, status, action_needed, original_action, privacy_status,
            regenerate, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		topic,
		StatusPending,
		nullableString(string(meta.ActionNeeded)),
		nullableString(string(meta.OriginalAction)),
		nullableString(meta.Privacy),
		boolToInt(meta.Regenerate),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if IsTerminal(job.Status) && job.CompletedAt == nil {
		completed := job.UpdatedAt
		job.CompletedAt = &completed
	}

	tags, err := encodeTags(job.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	missing, err := encodeMissing(job.Meta.MissingDependencies)
	if err != nil {
		return fmt.Errorf("encode missing dependencies: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, script = ?, title = ?, description = ?, tags_json = ?,
             voiceover_ref = ?, video_ref = ?, youtube_id = ?, youtube_url = ?,
             error_message = ?, claimed_by = ?, action_needed = ?, original_action = ?,
             missing_deps_json = ?, sub_status = ?, privacy_status = ?, regenerate = ?,
             updated_at = ?, started_at = ?, completed_at = ?
         WHERE id = ?`,
		job.Status,
		nullableString(job.Script),
		nullableString(job.Title),
		nullableString(job.Description),
		nullableString(tags),
		nullableString(job.VoiceoverRef),
		nullableString(job.VideoRef),
		nullableString(job.YouTubeID),
		nullableString(job.YouTubeURL),
		nullableString(job.ErrorMessage),
		nullableString(job.ClaimedBy),
		nullableString(string(job.Meta.ActionNeeded)),
		nullableString(string(job.Meta.OriginalAction)),
		nullableString(missing),
		nullableString(job.Meta.SubStatus),
		nullableString(job.Meta.Privacy),
		boolToInt(job.Meta.Regenerate),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(job.StartedAt),
		nullableTime(job.CompletedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// JobsAwaiting returns the oldest pending jobs whose routing signal matches
// the given stage. A freshly submitted auto-chain job (action_needed still the
// run_all sentinel) enters the pipeline at the script stage.
func (s *Store) JobsAwaiting(ctx context.Context, stg Stage, limit int) ([]*Job, error) {
	if limit <= 0 {
		return nil, nil
	}

	chainEntry := 0
	if stg == StageScript {
		chainEntry = 1
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE status = ? AND (action_needed = ? OR (? = 1 AND action_needed = ?))
         ORDER BY created_at LIMIT ?`,
		StatusPending,
		stg.Action(),
		chainEntry,
		ActionRunAll,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query awaiting jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusReady:
			health.Ready += count
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// Remove deletes a job by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

const jobColumns = "id, topic, status, script, title, description, tags_json, " +
	"voiceover_ref, video_ref, youtube_id, youtube_url, error_message, claimed_by, " +
	"action_needed, original_action, missing_deps_json, sub_status, privacy_status, " +
	"regenerate, created_at, updated_at, started_at, completed_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id             string
		topic          string
		statusStr      string
		script         sql.NullString
		title          sql.NullString
		description    sql.NullString
		tags           sql.NullString
		voiceoverRef   sql.NullString
		videoRef       sql.NullString
		youtubeID      sql.NullString
		youtubeURL     sql.NullString
		errorMessage   sql.NullString
		claimedBy      sql.NullString
		actionNeeded   sql.NullString
		originalAction sql.NullString
		missingDeps    sql.NullString
		subStatus      sql.NullString
		privacy        sql.NullString
		regenerate     sql.NullInt64
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
		startedRaw     sql.NullString
		completedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&topic,
		&statusStr,
		&script,
		&title,
		&description,
		&tags,
		&voiceoverRef,
		&videoRef,
		&youtubeID,
		&youtubeURL,
		&errorMessage,
		&claimedBy,
		&actionNeeded,
		&originalAction,
		&missingDeps,
		&subStatus,
		&privacy,
		&regenerate,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:           id,
		Topic:        topic,
		Status:       Status(statusStr),
		Script:       script.String,
		Title:        title.String,
		Description:  description.String,
		Tags:         decodeTags(tags.String),
		VoiceoverRef: voiceoverRef.String,
		VideoRef:     videoRef.String,
		YouTubeID:    youtubeID.String,
		YouTubeURL:   youtubeURL.String,
		ErrorMessage: errorMessage.String,
		ClaimedBy:    claimedBy.String,
		Meta: Metadata{
			ActionNeeded:        Action(actionNeeded.String),
			OriginalAction:      Action(originalAction.String),
			MissingDependencies: decodeMissing(missingDeps.String),
			SubStatus:           subStatus.String,
			Privacy:             privacy.String,
			Regenerate:          regenerate.Valid && regenerate.Int64 != 0,
		},
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
