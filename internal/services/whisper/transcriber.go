// Package whisper generates caption files from voiceover audio using the
// OpenAI Whisper command line tool.
package whisper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/services"
)

const whisperCommand = "whisper"

// Transcriber shells out to the whisper CLI to produce SRT caption files.
type Transcriber struct {
	model  string
	binary string
	runner func(ctx context.Context, name string, args ...string) error
}

// NewTranscriber constructs a transcriber for the given model name.
func NewTranscriber(model string) *Transcriber {
	if strings.TrimSpace(model) == "" {
		model = "base"
	}
	return &Transcriber{model: model, binary: whisperCommand}
}

// WithCommandRunner injects a custom command runner for tests.
func (t *Transcriber) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		t.runner = runner
	}
}

// Transcribe runs whisper over the audio file and returns the path of the
// generated SRT file inside outputDir.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outputDir string) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", services.Wrap(services.ErrValidation, "rendering", "transcribe", "audio path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure caption dir: %w", err)
	}

	args := buildTranscribeArgs(t.model, audioPath, outputDir)
	if err := t.run(ctx, t.binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "rendering", "transcribe", "whisper command failed", err)
	}

	srtPath := SRTPathFor(audioPath, outputDir)
	if _, err := os.Stat(srtPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "rendering", "transcribe", "whisper produced no srt file", err)
	}
	return srtPath, nil
}

// HealthCheck verifies the whisper command is on PATH.
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(t.binary); err != nil {
		return fmt.Errorf("whisper command not found: %w", err)
	}
	return nil
}

// SRTPathFor returns where whisper writes the SRT for a given audio file.
func SRTPathFor(audioPath, outputDir string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".srt")
}

func (t *Transcriber) run(ctx context.Context, name string, args ...string) error {
	if t.runner != nil {
		return t.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildTranscribeArgs(model, audioPath, outputDir string) []string {
	return []string{
		audioPath,
		"--model", model,
		"--output_format", "srt",
		"--output_dir", outputDir,
		"--task", "transcribe",
		"--fp16", "False",
	}
}
