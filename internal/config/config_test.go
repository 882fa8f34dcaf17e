package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipforge/internal/config"
)

func TestLoadDefaultsUseEnvCredentialsAndExpandPaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CLIPFORGE_LLM_API_KEY", "env-key")
	t.Setenv("CLIPFORGE_API_TOKEN", "env-token")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	home := os.Getenv("HOME")
	wantStaging := filepath.Join(home, ".local", "share", "clipforge", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8791" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected API token from env, got %q", cfg.Paths.APIToken)
	}
	if cfg.TTS.Voice != config.Default().TTS.Voice {
		t.Fatalf("unexpected TTS voice: %q", cfg.TTS.Voice)
	}
	if cfg.Workflow.MaxInFlight != 1 {
		t.Fatalf("unexpected max in flight: %d", cfg.Workflow.MaxInFlight)
	}
}

func TestLoadReadsFileAndOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[workflow]
max_in_flight = 3
poll_interval = 5

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Workflow.MaxInFlight != 3 {
		t.Fatalf("expected max_in_flight override, got %d", cfg.Workflow.MaxInFlight)
	}
	if cfg.Workflow.PollInterval != 5 {
		t.Fatalf("expected poll_interval override, got %d", cfg.Workflow.PollInterval)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized logging format, got %q", cfg.Logging.Format)
	}
	if cfg.Workflow.FetchBatch != config.Default().Workflow.FetchBatch {
		t.Fatalf("expected default fetch_batch, got %d", cfg.Workflow.FetchBatch)
	}
}

func TestLoadRejectsInvalidWorkflowValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[workflow]
max_in_flight = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "max_in_flight") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownLoggingFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[logging]
format = "xml"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSampleConfigParsesAndMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if cfg.Paths.APIBind != def.Paths.APIBind {
		t.Fatalf("sample api_bind %q differs from default %q", cfg.Paths.APIBind, def.Paths.APIBind)
	}
	if cfg.Workflow.PollInterval != def.Workflow.PollInterval {
		t.Fatalf("sample poll_interval %d differs from default %d", cfg.Workflow.PollInterval, def.Workflow.PollInterval)
	}
	if cfg.LLM.Model != def.LLM.Model {
		t.Fatalf("sample llm model %q differs from default %q", cfg.LLM.Model, def.LLM.Model)
	}
	if cfg.Render.Width != def.Render.Width || cfg.Render.Height != def.Render.Height {
		t.Fatalf("sample render size %dx%d differs from default", cfg.Render.Width, cfg.Render.Height)
	}
}

func TestValidateYouTubeReportsMissingCredentials(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateYouTube()
	if err == nil {
		t.Fatal("expected missing credential error")
	}
	for _, field := range []string{"client_id", "client_secret", "refresh_token"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error %v does not mention %s", err, field)
		}
	}

	cfg.YouTube.ClientID = "id"
	cfg.YouTube.ClientSecret = "secret"
	cfg.YouTube.RefreshToken = "token"
	if err := cfg.ValidateYouTube(); err != nil {
		t.Fatalf("expected credentials to validate: %v", err)
	}
}
