package artifacts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipforge/internal/artifacts"
)

func TestWorkspaceLifecycle(t *testing.T) {
	staging := t.TempDir()

	ws, err := artifacts.NewWorkspace(staging, "job-1")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(ws.Root()), "job-1-") {
		t.Fatalf("workspace name should embed the job id: %q", ws.Root())
	}

	scratch := ws.Path("voice.mp3")
	if err := os.WriteFile(scratch, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Fatal("expected workspace removed")
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("second Cleanup must be a no-op: %v", err)
	}
}

func TestPromoteMovesFileUnderPersistentName(t *testing.T) {
	staging := t.TempDir()
	dest := t.TempDir()

	ws, err := artifacts.NewWorkspace(staging, "job-2")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer ws.Cleanup()

	scratch := ws.Path("voice.mp3")
	if err := os.WriteFile(scratch, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}

	final, err := ws.Promote(scratch, dest, "job-2", ".mp3")
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if filepath.Dir(final) != dest {
		t.Fatalf("artifact landed outside dest dir: %q", final)
	}
	base := filepath.Base(final)
	if !strings.HasPrefix(base, "job-2_") || !strings.HasSuffix(base, ".mp3") {
		t.Fatalf("unexpected artifact name %q", base)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("promoted file missing: %v", err)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatal("staged copy should be gone after promote")
	}
}

func TestArtifactNamesDoNotCollide(t *testing.T) {
	a := artifacts.ArtifactName("job", "mp4")
	b := artifacts.ArtifactName("job", "mp4")
	if a == b {
		t.Fatalf("expected unique names, got %q twice", a)
	}
}

func TestCleanStaleRemovesOnlyOldWorkspaces(t *testing.T) {
	staging := t.TempDir()

	old := filepath.Join(staging, "job-old")
	if err := os.MkdirAll(old, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	fresh := filepath.Join(staging, "job-fresh")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	removed, err := artifacts.CleanStale(staging, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanStale: %v", err)
	}
	if len(removed) != 1 || removed[0] != old {
		t.Fatalf("unexpected removals %v", removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh workspace must survive")
	}
}
