package tts_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/services/tts"
)

func TestSynthesizeBuildsCommandAndVerifiesOutput(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "voice.mp3")

	engine := tts.NewEngine(config.TTS{Voice: "en-US-ChristopherNeural", Rate: "+5%"})
	var gotName string
	var gotArgs []string
	engine.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(dest, []byte("audio"), 0o644)
	})

	if err := engine.Synthesize(context.Background(), "hello world", dest); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotName != "edge-tts" {
		t.Fatalf("unexpected command %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--text hello world", "--write-media " + dest, "--voice en-US-ChristopherNeural", "--rate +5%"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
}

func TestSynthesizeRejectsEmptyScript(t *testing.T) {
	engine := tts.NewEngine(config.TTS{})
	if err := engine.Synthesize(context.Background(), "   ", "out.mp3"); err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestSynthesizeFailsWhenNoOutputProduced(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "voice.mp3")
	engine := tts.NewEngine(config.TTS{})
	engine.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	err := engine.Synthesize(context.Background(), "hello", dest)
	if err == nil {
		t.Fatal("expected error when tts produced no file")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSynthesizeFailsOnEmptyOutput(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "voice.mp3")
	engine := tts.NewEngine(config.TTS{})
	engine.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return os.WriteFile(dest, nil, 0o644)
	})

	if err := engine.Synthesize(context.Background(), "hello", dest); err == nil {
		t.Fatal("expected error for empty output file")
	}
}
