package scripting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/testsupport"
)

type stubClient struct {
	responses []string
	healthErr error
	calls     []string
	err       error
}

func (s *stubClient) CompleteJSON(_ context.Context, _ string, userPrompt string) (string, error) {
	s.calls = append(s.calls, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	idx := len(s.calls) - 1
	if idx >= len(s.responses) {
		return "", errors.New("unexpected call")
	}
	return s.responses[idx], nil
}

func (s *stubClient) HealthCheck(context.Context) error {
	return s.healthErr
}

func newTestGenerator(t *testing.T, client *stubClient) (*Generator, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithLLMKey("test-key"))
	store := testsupport.MustOpenStore(t, cfg)
	return NewGenerator(cfg, store, logging.NewNop(), WithClient(client)), store
}

func TestRunPopulatesScriptAndMetadata(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"title": "Ocean Depths Explained", "description": "A dive into the deep.", "tags": ["ocean", "science", "Ocean", ""]}`,
		`{"script": "Did you know the ocean floor is still mostly unmapped? Let's dive in."}`,
	}}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "the deep ocean", queue.StageScript)

	if err := gen.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Title != "Ocean Depths Explained" {
		t.Fatalf("title = %q", job.Title)
	}
	if job.Description != "A dive into the deep." {
		t.Fatalf("description = %q", job.Description)
	}
	if len(job.Tags) != 2 {
		t.Fatalf("tags = %v (want duplicates and blanks dropped)", job.Tags)
	}
	if !strings.Contains(job.Script, "mostly unmapped") {
		t.Fatalf("script = %q", job.Script)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.calls))
	}
	if !strings.Contains(client.calls[1], "Ocean Depths Explained") {
		t.Fatalf("script prompt should carry the generated title: %q", client.calls[1])
	}
}

func TestRunSkipsWhenScriptAlreadyPresent(t *testing.T) {
	client := &stubClient{}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "volcanoes", queue.StageScript)
	job.Script = "existing narration"
	job.Title = "Existing Title"

	if err := gen.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no model calls, got %d", len(client.calls))
	}
	if job.Script != "existing narration" || job.Title != "Existing Title" {
		t.Fatalf("payload must not change on skip: %q %q", job.Script, job.Title)
	}
}

func TestRunRegenerateOverwrites(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"title": "Fresh Title", "description": "Fresh description.", "tags": ["fresh"]}`,
		`{"script": "A fresh take."}`,
	}}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "volcanoes", queue.StageScript)
	job.Script = "stale narration"
	job.Title = "Stale Title"
	job.Meta.Regenerate = true

	if err := gen.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Script != "A fresh take." || job.Title != "Fresh Title" {
		t.Fatalf("regenerate must overwrite: %q %q", job.Script, job.Title)
	}
}

func TestRunFallsBackToTopicTitle(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"title": "  ", "description": "d", "tags": ["t"]}`,
		`{"script": "s"}`,
	}}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "history of tea", queue.StageScript)

	if err := gen.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Title != "History Of Tea" {
		t.Fatalf("title fallback = %q", job.Title)
	}
}

func TestRunDecodesFencedPayload(t *testing.T) {
	client := &stubClient{responses: []string{
		"```json\n{\"title\": \"T\", \"description\": \"d\", \"tags\": [\"t\"]}\n```",
		"```json\n{\"script\": \"fenced narration\"}\n```",
	}}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "tea", queue.StageScript)

	if err := gen.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Script != "fenced narration" {
		t.Fatalf("script = %q", job.Script)
	}
}

func TestRunEmptyScriptFails(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"title": "T", "description": "d", "tags": ["t"]}`,
		`{"script": "   "}`,
	}}
	gen, store := newTestGenerator(t, client)
	job := testsupport.NewStageJob(t, store, "tea", queue.StageScript)

	err := gen.Run(context.Background(), job)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if job.Script != "" {
		t.Fatalf("script must stay empty on failure, got %q", job.Script)
	}
}

func TestCheckDependencies(t *testing.T) {
	gen, _ := newTestGenerator(t, &stubClient{})
	ok, missing := gen.CheckDependencies(&queue.Job{Topic: "  "})
	if ok || len(missing) != 1 || missing[0] != "topic" {
		t.Fatalf("ok=%v missing=%v", ok, missing)
	}
	ok, missing = gen.CheckDependencies(&queue.Job{Topic: "tea"})
	if !ok || missing != nil {
		t.Fatalf("ok=%v missing=%v", ok, missing)
	}
}

func TestHealthCheckReportsMissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	store := testsupport.MustOpenStore(t, cfg)
	gen := NewGenerator(cfg, store, logging.NewNop(), WithClient(&stubClient{}))

	health := gen.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("expected unhealthy without an API key")
	}
}
