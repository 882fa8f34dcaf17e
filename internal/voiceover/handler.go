package voiceover

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"clipforge/internal/artifacts"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/tts"
	"clipforge/internal/stage"
)

// synthesizer is the slice of the TTS engine this stage exercises.
type synthesizer interface {
	Synthesize(ctx context.Context, script, dest string) error
	HealthCheck(ctx context.Context) error
}

// Narrator is the voiceover stage handler.
type Narrator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	engine synthesizer
}

// Option customizes a Narrator.
type Option func(*Narrator)

// WithEngine overrides the TTS engine.
func WithEngine(engine synthesizer) Option {
	return func(n *Narrator) {
		n.engine = engine
	}
}

// NewNarrator constructs the voiceover stage handler.
func NewNarrator(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Narrator {
	n := &Narrator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "voiceover"),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.engine == nil {
		n.engine = tts.NewEngine(cfg.TTS)
	}
	return n
}

// Stage identifies the pipeline stage this handler serves.
func (n *Narrator) Stage() queue.Stage {
	return queue.StageVoiceover
}

// CheckDependencies requires the script produced by the previous stage.
func (n *Narrator) CheckDependencies(job *queue.Job) (bool, []string) {
	if strings.TrimSpace(job.Script) == "" {
		return false, []string{"script"}
	}
	return true, nil
}

// HealthCheck verifies the TTS command is resolvable.
func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	if err := n.engine.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("voiceover", err.Error())
	}
	return stage.Healthy("voiceover")
}

// Run synthesizes the narration into the voiceover library and records its
// path on the job. An existing narration file is kept unless the job carries
// a regenerate request.
func (n *Narrator) Run(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, n.logger)

	if job.VoiceoverRef != "" && !job.Meta.Regenerate {
		if _, err := os.Stat(job.VoiceoverRef); err == nil {
			logger.Info("voiceover already present, skipping synthesis",
				logging.String("voiceover", job.VoiceoverRef))
			return nil
		}
		logger.Warn("recorded voiceover file is missing, regenerating",
			logging.String("voiceover", job.VoiceoverRef))
	}

	ws, err := artifacts.NewWorkspace(n.cfg.Paths.StagingDir, job.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "voiceover", "prepare workspace", "could not create staging directory", err)
	}
	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			logger.Warn("staging cleanup failed", logging.Error(cleanupErr))
		}
	}()

	if err := n.store.SetSubStatus(ctx, job.ID, "synthesizing_narration"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}

	staged := ws.Path("voiceover.mp3")
	if err := n.engine.Synthesize(ctx, job.Script, staged); err != nil {
		return err
	}

	final, err := ws.Promote(staged, n.cfg.Paths.VoiceoverDir, job.ID, ".mp3")
	if err != nil {
		return services.Wrap(services.ErrTransient, "voiceover", "promote narration", "could not move narration into the voiceover library", err)
	}
	job.VoiceoverRef = final
	logger.Info("voiceover generated", logging.String("voiceover", final))
	return nil
}
