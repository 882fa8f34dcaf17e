package publishing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/youtube"
	"clipforge/internal/testsupport"
)

type stubUploader struct {
	result youtube.UploadResult
	req    youtube.UploadRequest
	err    error
	calls  int
}

func (s *stubUploader) Upload(_ context.Context, req youtube.UploadRequest) (youtube.UploadResult, error) {
	s.calls++
	s.req = req
	if s.err != nil {
		return youtube.UploadResult{}, s.err
	}
	return s.result, nil
}

func (s *stubUploader) HealthCheck(context.Context) error { return nil }

func newTestPublisher(t *testing.T, up *stubUploader) (*Publisher, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return NewPublisher(cfg, store, logging.NewNop(), WithUploader(up)), store
}

func publishableJob(t *testing.T, pub *Publisher, store *queue.Store) *queue.Job {
	t.Helper()
	job := testsupport.NewStageJob(t, store, "tea", queue.StagePublish)
	job.Title = "A Short History of Tea"
	job.Description = "Steeped in time."
	job.Tags = []string{"tea", "history"}
	video := filepath.Join(pub.cfg.Paths.RenderDir, job.ID+".mp4")
	if err := os.WriteFile(video, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	job.VideoRef = video
	return job
}

func TestRunUploadsAndRecords(t *testing.T) {
	up := &stubUploader{result: youtube.UploadResult{VideoID: "abc123", URL: "https://www.youtube.com/watch?v=abc123"}}
	pub, store := newTestPublisher(t, up)
	job := publishableJob(t, pub, store)
	job.Meta.Privacy = "unlisted"

	if err := pub.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.YouTubeID != "abc123" || job.YouTubeURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("identity = %q %q", job.YouTubeID, job.YouTubeURL)
	}
	if up.req.Privacy != "unlisted" {
		t.Fatalf("privacy = %q", up.req.Privacy)
	}
	if up.req.Title != job.Title || up.req.FilePath != job.VideoRef {
		t.Fatalf("request = %+v", up.req)
	}

	records, err := store.ListPublishRecords(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPublishRecords: %v", err)
	}
	if len(records) != 1 || records[0].YouTubeID != "abc123" || records[0].JobID != job.ID {
		t.Fatalf("records = %+v", records)
	}
}

func TestRunDefaultsToPrivate(t *testing.T) {
	up := &stubUploader{result: youtube.UploadResult{VideoID: "v", URL: "u"}}
	pub, store := newTestPublisher(t, up)
	job := publishableJob(t, pub, store)

	if err := pub.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if up.req.Privacy != "private" {
		t.Fatalf("privacy = %q, want private", up.req.Privacy)
	}
}

func TestRunNeverReuploads(t *testing.T) {
	up := &stubUploader{result: youtube.UploadResult{VideoID: "new", URL: "u"}}
	pub, store := newTestPublisher(t, up)
	job := publishableJob(t, pub, store)
	job.YouTubeID = "already-up"
	job.Meta.Regenerate = true

	if err := pub.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if up.calls != 0 {
		t.Fatalf("expected no upload, got %d calls", up.calls)
	}
	if job.YouTubeID != "already-up" {
		t.Fatalf("youtube id changed to %q", job.YouTubeID)
	}
}

func TestRunFailsWhenVideoMissing(t *testing.T) {
	up := &stubUploader{}
	pub, store := newTestPublisher(t, up)
	job := publishableJob(t, pub, store)
	if err := os.Remove(job.VideoRef); err != nil {
		t.Fatal(err)
	}

	err := pub.Run(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if up.calls != 0 {
		t.Fatalf("uploader should not run, got %d calls", up.calls)
	}
}

func TestRunPropagatesUploadFailure(t *testing.T) {
	up := &stubUploader{err: errors.New("quota exceeded")}
	pub, store := newTestPublisher(t, up)
	job := publishableJob(t, pub, store)

	err := pub.Run(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	if job.YouTubeID != "" {
		t.Fatalf("youtube id must stay empty on failure, got %q", job.YouTubeID)
	}
	records, listErr := store.ListPublishRecords(context.Background(), 10)
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(records) != 0 {
		t.Fatalf("no publish record expected on failure, got %+v", records)
	}
}

func TestCheckDependencies(t *testing.T) {
	pub, _ := newTestPublisher(t, &stubUploader{})
	ok, missing := pub.CheckDependencies(&queue.Job{Topic: "tea"})
	if ok || len(missing) != 3 {
		t.Fatalf("ok=%v missing=%v", ok, missing)
	}
	if missing[0] != "title" || missing[1] != "description" || missing[2] != "video_ref" {
		t.Fatalf("missing must name the job's fields, got %v", missing)
	}
	ok, missing = pub.CheckDependencies(&queue.Job{VideoRef: "/tmp/v.mp4", Title: "T", Description: "d"})
	if !ok || missing != nil {
		t.Fatalf("ok=%v missing=%v", ok, missing)
	}
}
