package publishing

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/youtube"
	"clipforge/internal/stage"
)

type uploader interface {
	Upload(ctx context.Context, req youtube.UploadRequest) (youtube.UploadResult, error)
	HealthCheck(ctx context.Context) error
}

// Publisher is the publish stage handler. Publishing is the only stage that
// is never auto-chained: jobs arrive here exclusively through an explicit
// trigger.
type Publisher struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	uploader uploader
	now      func() time.Time
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithUploader overrides the YouTube uploader.
func WithUploader(u uploader) Option {
	return func(p *Publisher) { p.uploader = u }
}

// NewPublisher constructs the publish stage handler.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "publishing"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.uploader == nil {
		p.uploader = youtube.NewUploader(cfg.YouTube)
	}
	return p
}

// Stage identifies the pipeline stage this handler serves.
func (p *Publisher) Stage() queue.Stage {
	return queue.StagePublish
}

// CheckDependencies requires the rendered video and the listing copy.
func (p *Publisher) CheckDependencies(job *queue.Job) (bool, []string) {
	var missing []string
	if strings.TrimSpace(job.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(job.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(job.VideoRef) == "" {
		missing = append(missing, "video_ref")
	}
	return len(missing) == 0, missing
}

// HealthCheck verifies the upload credentials are configured.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	if err := p.uploader.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("publishing", err.Error())
	}
	return stage.Healthy("publishing")
}

// Run uploads the rendered video. A job that already carries a YouTube ID is
// never re-uploaded: duplicate listings cannot be rolled back, so the skip
// ignores regenerate requests.
func (p *Publisher) Run(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)

	if job.YouTubeID != "" {
		logger.Info("job already published, skipping upload",
			logging.String("youtube_id", job.YouTubeID))
		return nil
	}

	if _, err := os.Stat(job.VideoRef); err != nil {
		return services.Wrap(services.ErrValidation, "publish", "verify render", "video file is unreadable", err)
	}

	if err := p.store.SetSubStatus(ctx, job.ID, "uploading_video"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}

	result, err := p.uploader.Upload(ctx, youtube.UploadRequest{
		FilePath:    job.VideoRef,
		Title:       job.Title,
		Description: job.Description,
		Tags:        job.Tags,
		Privacy:     job.Meta.PrivacyOrDefault(),
	})
	if err != nil {
		return err
	}

	job.YouTubeID = result.VideoID
	job.YouTubeURL = result.URL

	record := queue.PublishRecord{
		JobID:       job.ID,
		YouTubeID:   result.VideoID,
		YouTubeURL:  result.URL,
		Title:       job.Title,
		PublishedAt: p.now().UTC(),
	}
	if err := p.store.AppendPublishRecord(ctx, record); err != nil {
		// The upload succeeded; losing the log entry must not fail the job.
		logger.Warn("failed to append publish record", logging.Error(err))
	}

	logger.Info("video published",
		logging.String("youtube_id", result.VideoID),
		logging.String("url", result.URL))
	return nil
}
