// Package artifacts manages the files a job produces: private per-attempt
// staging workspaces and the persistent voiceover/render outputs they get
// promoted into.
//
// Staging space is scratch: it must be cleaned up on both success and failure
// paths, so callers defer Workspace.Cleanup immediately after creation.
// Persistent artifact names embed the job ID plus a timestamp and a short
// random suffix so regenerated outputs never collide with earlier attempts.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Workspace is a job-scoped scratch directory for one stage attempt.
type Workspace struct {
	root string
}

// NewWorkspace creates a fresh scratch directory under stagingDir for the job.
func NewWorkspace(stagingDir, jobID string) (*Workspace, error) {
	if strings.TrimSpace(stagingDir) == "" {
		return nil, fmt.Errorf("staging dir required")
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("job id required")
	}
	root := filepath.Join(stagingDir, jobID+"-"+shortID())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging workspace: %w", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// Path joins name onto the workspace root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, name)
}

// Cleanup removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Cleanup() error {
	if w == nil || w.root == "" {
		return nil
	}
	err := os.RemoveAll(w.root)
	w.root = ""
	return err
}

// Promote moves a staged file into destDir under a persistent artifact name
// and returns the final path.
func (w *Workspace) Promote(stagedPath, destDir, jobID, ext string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure artifact dir: %w", err)
	}
	dest := filepath.Join(destDir, ArtifactName(jobID, ext))
	if err := os.Rename(stagedPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy.
		if copyErr := copyFile(stagedPath, dest); copyErr != nil {
			return "", fmt.Errorf("promote artifact: %w", copyErr)
		}
		_ = os.Remove(stagedPath)
	}
	return dest, nil
}

// ArtifactName builds a persistent, collision-free file name for a job output.
func ArtifactName(jobID, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	timestamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s_%s_%s.%s", jobID, timestamp, shortID(), ext)
}

// CleanStale removes workspace directories older than maxAge. Abandoned
// workspaces accumulate when a worker process dies mid-stage.
func CleanStale(stagingDir string, maxAge time.Duration) ([]string, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(path); err == nil {
				removed = append(removed, path)
			}
		}
	}
	return removed, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}
