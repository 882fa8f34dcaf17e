package rendering

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"clipforge/internal/artifacts"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/ffmpeg"
	"clipforge/internal/services/whisper"
	"clipforge/internal/stage"
)

type transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (string, error)
	HealthCheck(ctx context.Context) error
}

type prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

type renderer interface {
	Render(ctx context.Context, spec ffmpeg.RenderSpec) error
	HealthCheck(ctx context.Context) error
}

// Composer is the video stage handler.
type Composer struct {
	cfg         *config.Config
	store       *queue.Store
	logger      *slog.Logger
	transcriber transcriber
	prober      prober
	renderer    renderer
	pick        func(n int) int
}

// Option customizes a Composer.
type Option func(*Composer)

// WithTranscriber overrides the whisper wrapper.
func WithTranscriber(t transcriber) Option {
	return func(c *Composer) { c.transcriber = t }
}

// WithProber overrides the ffprobe wrapper.
func WithProber(p prober) Option {
	return func(c *Composer) { c.prober = p }
}

// WithRenderer overrides the ffmpeg wrapper.
func WithRenderer(r renderer) Option {
	return func(c *Composer) { c.renderer = r }
}

// NewComposer constructs the video stage handler.
func NewComposer(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Composer {
	c := &Composer{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "rendering"),
		pick:   rand.Intn,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transcriber == nil {
		c.transcriber = whisper.NewTranscriber(cfg.Render.WhisperModel)
	}
	if c.prober == nil {
		c.prober = ffmpeg.NewProber()
	}
	if c.renderer == nil {
		c.renderer = ffmpeg.NewRenderer()
	}
	return c
}

// Stage identifies the pipeline stage this handler serves.
func (c *Composer) Stage() queue.Stage {
	return queue.StageVideo
}

// CheckDependencies requires the script and the narration file from the
// earlier stages.
func (c *Composer) CheckDependencies(job *queue.Job) (bool, []string) {
	var missing []string
	if strings.TrimSpace(job.Script) == "" {
		missing = append(missing, "script")
	}
	if strings.TrimSpace(job.VoiceoverRef) == "" {
		missing = append(missing, "voiceover_ref")
	}
	return len(missing) == 0, missing
}

// HealthCheck verifies the transcriber and renderer binaries plus the
// background library.
func (c *Composer) HealthCheck(ctx context.Context) stage.Health {
	if err := c.transcriber.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("rendering", err.Error())
	}
	if err := c.renderer.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("rendering", err.Error())
	}
	if _, err := listBackgrounds(c.cfg.Paths.BackgroundDir); err != nil {
		return stage.Unhealthy("rendering", err.Error())
	}
	return stage.Healthy("rendering")
}

// Run composes the final video and records its path on the job. An existing
// rendered file is kept unless the job carries a regenerate request.
func (c *Composer) Run(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)

	if job.VideoRef != "" && !job.Meta.Regenerate {
		if _, err := os.Stat(job.VideoRef); err == nil {
			logger.Info("video already present, skipping render",
				logging.String("video", job.VideoRef))
			return nil
		}
		logger.Warn("recorded video file is missing, re-rendering",
			logging.String("video", job.VideoRef))
	}

	if _, err := os.Stat(job.VoiceoverRef); err != nil {
		return services.Wrap(services.ErrValidation, "video", "verify narration", "voiceover file is unreadable", err)
	}

	ws, err := artifacts.NewWorkspace(c.cfg.Paths.StagingDir, job.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "video", "prepare workspace", "could not create staging directory", err)
	}
	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			logger.Warn("staging cleanup failed", logging.Error(cleanupErr))
		}
	}()

	if err := c.store.SetSubStatus(ctx, job.ID, "transcribing_narration"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}
	subtitlePath, err := c.transcriber.Transcribe(ctx, job.VoiceoverRef, ws.Root())
	if err != nil {
		return err
	}
	logger.Info("narration transcribed", logging.String("subtitles", subtitlePath))

	duration, err := c.prober.Duration(ctx, job.VoiceoverRef)
	if err != nil {
		return err
	}

	background, err := c.chooseBackground()
	if err != nil {
		return err
	}
	logger.Info("background selected",
		logging.String("background", background),
		logging.Duration("duration", duration))

	if err := c.store.SetSubStatus(ctx, job.ID, "rendering_video"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}
	staged := ws.Path("video.mp4")
	spec := ffmpeg.RenderSpec{
		BackgroundPath: background,
		AudioPath:      job.VoiceoverRef,
		SubtitlePath:   subtitlePath,
		OutputPath:     staged,
		Duration:       duration,
		Width:          c.cfg.Render.Width,
		Height:         c.cfg.Render.Height,
		Font:           c.cfg.Render.Font,
		FontSize:       c.cfg.Render.FontSize,
	}
	if err := c.renderer.Render(ctx, spec); err != nil {
		return err
	}

	final, err := ws.Promote(staged, c.cfg.Paths.RenderDir, job.ID, ".mp4")
	if err != nil {
		return services.Wrap(services.ErrTransient, "video", "promote render", "could not move render into the output library", err)
	}
	job.VideoRef = final
	logger.Info("video rendered", logging.String("video", final))
	return nil
}

func (c *Composer) chooseBackground() (string, error) {
	candidates, err := listBackgrounds(c.cfg.Paths.BackgroundDir)
	if err != nil {
		return "", err
	}
	return candidates[c.pick(len(candidates))], nil
}

var backgroundExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
}

// listBackgrounds returns the usable clips in the background library, sorted
// for stable selection indexes.
func listBackgrounds(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "video", "scan backgrounds", "background directory is unreadable", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := backgroundExtensions[ext]; !ok {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "video", "scan backgrounds", "background directory has no video clips", nil)
	}
	sort.Strings(out)
	return out, nil
}
