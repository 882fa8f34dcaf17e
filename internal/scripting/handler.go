package scripting

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/llm"
	"clipforge/internal/stage"
)

// completionClient is the slice of the LLM client the script stage exercises.
type completionClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Generator is the script stage handler. It performs two model calls per job:
// one for title/description/tags, one for the script itself, persisting
// sub-status milestones between them so operators can see where a long call
// is stuck.
type Generator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client completionClient
	titler cases.Caser
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClient overrides the LLM client.
func WithClient(client completionClient) Option {
	return func(g *Generator) {
		g.client = client
	}
}

// NewGenerator constructs the script stage handler.
func NewGenerator(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "scripting"),
		titler: cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = llm.NewClient(cfg.LLM)
	}
	return g
}

// Stage identifies the pipeline stage this handler serves.
func (g *Generator) Stage() queue.Stage {
	return queue.StageScript
}

// CheckDependencies requires only the topic, which every job carries from
// submission.
func (g *Generator) CheckDependencies(job *queue.Job) (bool, []string) {
	if strings.TrimSpace(job.Topic) == "" {
		return false, []string{"topic"}
	}
	return true, nil
}

// HealthCheck verifies the LLM credentials and endpoint before the worker
// starts claiming jobs.
func (g *Generator) HealthCheck(ctx context.Context) stage.Health {
	if err := g.cfg.ValidateLLM(); err != nil {
		return stage.Unhealthy("scripting", err.Error())
	}
	if err := g.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("scripting", err.Error())
	}
	return stage.Healthy("scripting")
}

type metadataResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type scriptResult struct {
	Script string `json:"script"`
}

// Run generates the script payload for a claimed job. Populated fields are
// never overwritten unless the job carries a regenerate request.
func (g *Generator) Run(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, g.logger)
	topic := strings.TrimSpace(job.Topic)

	if job.Script != "" && !job.Meta.Regenerate {
		logger.Info("script already present, skipping generation",
			logging.String(logging.FieldTopic, topic))
		return nil
	}

	if err := g.store.SetSubStatus(ctx, job.ID, "generating_title_description"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}
	meta, err := g.generateMetadata(ctx, topic)
	if err != nil {
		return err
	}
	if job.Title == "" || job.Meta.Regenerate {
		job.Title = meta.Title
	}
	if job.Description == "" || job.Meta.Regenerate {
		job.Description = meta.Description
	}
	if len(job.Tags) == 0 || job.Meta.Regenerate {
		job.Tags = meta.Tags
	}
	logger.Info("metadata generated",
		logging.String("title", job.Title),
		logging.Int("tags", len(job.Tags)))

	if err := g.store.SetSubStatus(ctx, job.ID, "generating_script"); err != nil {
		logger.Warn("failed to record sub-status", logging.Error(err))
	}
	script, err := g.generateScript(ctx, topic, job.Title)
	if err != nil {
		return err
	}
	job.Script = script
	logger.Info("script generated", logging.Int("chars", len(script)))
	return nil
}

func (g *Generator) generateMetadata(ctx context.Context, topic string) (metadataResult, error) {
	raw, err := g.client.CompleteJSON(ctx, MetadataSystemPrompt, buildMetadataPrompt(topic))
	if err != nil {
		return metadataResult{}, services.Wrap(services.ErrTransient, "script", "generate metadata", "model call failed", err)
	}
	var meta metadataResult
	if err := llm.DecodeLLMJSON(raw, &meta); err != nil {
		return metadataResult{}, services.Wrap(services.ErrTransient, "script", "generate metadata", "model returned unusable payload", err)
	}
	meta.Title = normalizeTitle(meta.Title, topic, g.titler)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Tags = normalizeTags(meta.Tags)
	return meta, nil
}

func (g *Generator) generateScript(ctx context.Context, topic, title string) (string, error) {
	raw, err := g.client.CompleteJSON(ctx, ScriptSystemPrompt, buildScriptPrompt(topic, title))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "script", "generate script", "model call failed", err)
	}
	var result scriptResult
	if err := llm.DecodeLLMJSON(raw, &result); err != nil {
		return "", services.Wrap(services.ErrTransient, "script", "generate script", "model returned unusable payload", err)
	}
	script := strings.TrimSpace(result.Script)
	if script == "" {
		return "", services.Wrap(services.ErrTransient, "script", "generate script", "model returned an empty script", nil)
	}
	return script, nil
}

const maxTitleLength = 70

// normalizeTitle trims the model's title and falls back to a title-cased
// rendering of the topic when the model returned nothing usable.
func normalizeTitle(title, topic string, titler cases.Caser) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = titler.String(topic)
	}
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	return title
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
