package whisper_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/services/whisper"
)

func TestTranscribeBuildsArgsAndReturnsSRTPath(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "voice.mp3")
	wantSRT := filepath.Join(dir, "voice.srt")

	tr := whisper.NewTranscriber("base")
	var gotArgs []string
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(wantSRT, []byte("1\n00:00:00,000 --> 00:00:01,000\nhello\n"), 0o644)
	})

	srt, err := tr.Transcribe(context.Background(), audio, dir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if srt != wantSRT {
		t.Fatalf("unexpected srt path %q", srt)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{audio, "--model base", "--output_format srt", "--output_dir " + dir} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
}

func TestTranscribeFailsWhenNoSRTProduced(t *testing.T) {
	dir := t.TempDir()
	tr := whisper.NewTranscriber("base")
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	if _, err := tr.Transcribe(context.Background(), filepath.Join(dir, "voice.mp3"), dir); err == nil {
		t.Fatal("expected error when srt missing")
	}
}

func TestSRTPathFor(t *testing.T) {
	got := whisper.SRTPathFor("/tmp/stuff/clip.mp3", "/out")
	if got != filepath.Join("/out", "clip.srt") {
		t.Fatalf("unexpected path %q", got)
	}
}
