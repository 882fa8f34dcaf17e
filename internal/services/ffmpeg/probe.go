package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"clipforge/internal/services"
)

const (
	ffmpegCommand  = "ffmpeg"
	ffprobeCommand = "ffprobe"
)

// Prober reads media durations via ffprobe.
type Prober struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewProber constructs an ffprobe wrapper.
func NewProber() *Prober {
	return &Prober{binary: ffprobeCommand}
}

// WithOutputRunner injects a custom command runner for tests. The runner
// returns the command's stdout.
func (p *Prober) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	if runner != nil {
		p.runner = runner
	}
}

// Duration returns the duration of a media file.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	if strings.TrimSpace(path) == "" {
		return 0, services.Wrap(services.ErrValidation, "rendering", "probe", "media path required", nil)
	}

	args := buildProbeDurationArgs(path)
	output, err := p.capture(ctx, p.binary, args...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "rendering", "probe", "ffprobe failed", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "rendering", "probe",
			fmt.Sprintf("unparseable duration %q", strings.TrimSpace(output)), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (p *Prober) capture(ctx context.Context, name string, args ...string) (string, error) {
	if p.runner != nil {
		return p.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}

func buildProbeDurationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}
