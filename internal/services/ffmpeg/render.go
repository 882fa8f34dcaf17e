package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/services"
)

// RenderSpec describes one video composition.
type RenderSpec struct {
	BackgroundPath string
	AudioPath      string
	SubtitlePath   string
	OutputPath     string
	Duration       time.Duration
	Width          int
	Height         int
	Font           string
	FontSize       int
}

// Renderer composes vertical videos with ffmpeg.
type Renderer struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) error
}

// NewRenderer constructs an ffmpeg wrapper.
func NewRenderer() *Renderer {
	return &Renderer{binary: ffmpegCommand}
}

// WithCommandRunner injects a custom command runner for tests.
func (r *Renderer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		r.runner = runner
	}
}

// Render loops the background footage for the voiceover's duration, scales
// and crops it to the target frame, mixes in the audio, burns the captions,
// and writes the result to spec.OutputPath.
func (r *Renderer) Render(ctx context.Context, spec RenderSpec) error {
	if err := validateSpec(spec); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(spec.OutputPath), 0o755); err != nil {
		return fmt.Errorf("ensure render dir: %w", err)
	}

	args := buildRenderArgs(spec)
	if err := r.run(ctx, r.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "compose", "ffmpeg failed", err)
	}

	info, err := os.Stat(spec.OutputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "compose", "ffmpeg produced no output", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "rendering", "compose", "ffmpeg produced an empty file", nil)
	}
	return nil
}

// HealthCheck verifies ffmpeg and ffprobe are on PATH.
func (r *Renderer) HealthCheck(ctx context.Context) error {
	for _, binary := range []string{ffmpegCommand, ffprobeCommand} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s not found: %w", binary, err)
		}
	}
	return nil
}

func (r *Renderer) run(ctx context.Context, name string, args ...string) error {
	if r.runner != nil {
		return r.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tailOf(string(output)))
	}
	return nil
}

func validateSpec(spec RenderSpec) error {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(spec.BackgroundPath) == "" {
		missing = append(missing, "background")
	}
	if strings.TrimSpace(spec.AudioPath) == "" {
		missing = append(missing, "audio")
	}
	if strings.TrimSpace(spec.OutputPath) == "" {
		missing = append(missing, "output")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "rendering", "compose",
			"missing render inputs: "+strings.Join(missing, ", "), nil)
	}
	if spec.Duration <= 0 {
		return services.Wrap(services.ErrValidation, "rendering", "compose", "duration must be positive", nil)
	}
	return nil
}

func buildRenderArgs(spec RenderSpec) []string {
	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 1080
	}
	if height <= 0 {
		height = 1920
	}

	filters := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", width, height),
		fmt.Sprintf("crop=%d:%d", width, height),
	}
	if spec.SubtitlePath != "" {
		filters = append(filters, subtitleFilter(spec))
	}

	return []string{
		"-y",
		"-stream_loop", "-1",
		"-i", spec.BackgroundPath,
		"-i", spec.AudioPath,
		"-t", fmt.Sprintf("%.3f", spec.Duration.Seconds()),
		"-vf", strings.Join(filters, ","),
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-shortest",
		spec.OutputPath,
	}
}

func subtitleFilter(spec RenderSpec) string {
	fontSize := spec.FontSize
	if fontSize <= 0 {
		fontSize = 24
	}
	style := fmt.Sprintf("Fontsize=%d,Alignment=10,MarginV=50", fontSize)
	if font := strings.TrimSpace(spec.Font); font != "" {
		style = "Fontname=" + font + "," + style
	}
	return fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(spec.SubtitlePath), style)
}

// escapeFilterPath quotes characters ffmpeg's filter parser treats specially.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		":", `\:`,
		"'", `\'`,
	)
	return replacer.Replace(path)
}

func tailOf(output string) string {
	trimmed := strings.TrimSpace(output)
	const limit = 400
	if len(trimmed) <= limit {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-limit:]
}
