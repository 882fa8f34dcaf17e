// Package tts synthesizes voiceover audio from script text using the
// edge-tts command line tool.
package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/services"
)

// Engine shells out to a text-to-speech CLI to produce MP3 voiceovers.
type Engine struct {
	cfg    config.TTS
	runner func(ctx context.Context, name string, args ...string) error
}

// NewEngine constructs a TTS engine from configuration.
func NewEngine(cfg config.TTS) *Engine {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "edge-tts"
	}
	return &Engine{cfg: cfg}
}

// WithCommandRunner injects a custom command runner for tests.
func (e *Engine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		e.runner = runner
	}
}

// Synthesize renders the script as speech into dest (an .mp3 path).
func (e *Engine) Synthesize(ctx context.Context, script, dest string) error {
	script = strings.TrimSpace(script)
	if script == "" {
		return services.Wrap(services.ErrValidation, "voiceover", "synthesize", "script text is empty", nil)
	}
	if dest == "" {
		return services.Wrap(services.ErrValidation, "voiceover", "synthesize", "destination path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure voiceover dir: %w", err)
	}

	args := buildSynthesizeArgs(e.cfg, script, dest)
	if err := e.run(ctx, e.cfg.Command, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "voiceover", "synthesize", "tts command failed", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "voiceover", "synthesize", "tts produced no output", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "voiceover", "synthesize", "tts produced an empty file", nil)
	}
	return nil
}

// HealthCheck verifies the TTS command is on PATH.
func (e *Engine) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(e.cfg.Command); err != nil {
		return fmt.Errorf("tts command %q not found: %w", e.cfg.Command, err)
	}
	return nil
}

func (e *Engine) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildSynthesizeArgs(cfg config.TTS, script, dest string) []string {
	args := []string{"--text", script, "--write-media", dest}
	if voice := strings.TrimSpace(cfg.Voice); voice != "" {
		args = append(args, "--voice", voice)
	}
	if rate := strings.TrimSpace(cfg.Rate); rate != "" {
		args = append(args, "--rate", rate)
	}
	return args
}
