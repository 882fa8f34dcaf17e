package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.VoiceoverDir = filepath.Join(base, "voiceovers")
	cfg.Paths.RenderDir = filepath.Join(base, "renders")
	cfg.Paths.BackgroundDir = filepath.Join(base, "backgrounds")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLLMKey sets the LLM API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.APIKey = key
	}
}

// WithMaxInFlight overrides the worker concurrency bound on the test config.
func WithMaxInFlight(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.MaxInFlight = n
	}
}
