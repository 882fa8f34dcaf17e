package youtube_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	api "google.golang.org/api/youtube/v3"

	"clipforge/internal/config"
	yt "clipforge/internal/services/youtube"
)

func writeVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestUploadSendsMetadataAndReturnsIdentity(t *testing.T) {
	uploader := yt.NewUploader(config.YouTube{CategoryID: "22"})
	var gotVideo *api.Video
	uploader.WithInserter(func(ctx context.Context, video *api.Video, media *os.File) (*api.Video, error) {
		gotVideo = video
		return &api.Video{Id: "vid123"}, nil
	})

	result, err := uploader.Upload(context.Background(), yt.UploadRequest{
		FilePath:    writeVideoFile(t),
		Title:       "A Title",
		Description: "A description #Shorts",
		Tags:        []string{"one", "two"},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.VideoID != "vid123" {
		t.Fatalf("unexpected video id %q", result.VideoID)
	}
	if result.URL != "https://www.youtube.com/watch?v=vid123" {
		t.Fatalf("unexpected url %q", result.URL)
	}
	if gotVideo.Snippet.CategoryId != "22" {
		t.Fatalf("expected configured category fallback, got %q", gotVideo.Snippet.CategoryId)
	}
	if gotVideo.Status.PrivacyStatus != "private" {
		t.Fatalf("uploads must default to private, got %q", gotVideo.Status.PrivacyStatus)
	}
	if len(gotVideo.Snippet.Tags) != 2 {
		t.Fatalf("tags not forwarded: %v", gotVideo.Snippet.Tags)
	}
}

func TestUploadHonorsRequestedPrivacy(t *testing.T) {
	uploader := yt.NewUploader(config.YouTube{})
	uploader.WithInserter(func(ctx context.Context, video *api.Video, media *os.File) (*api.Video, error) {
		if video.Status.PrivacyStatus != "unlisted" {
			t.Fatalf("expected unlisted, got %q", video.Status.PrivacyStatus)
		}
		return &api.Video{Id: "vid"}, nil
	})

	if _, err := uploader.Upload(context.Background(), yt.UploadRequest{
		FilePath: writeVideoFile(t),
		Title:    "A Title",
		Privacy:  "unlisted",
	}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func TestUploadRequiresFileAndTitle(t *testing.T) {
	uploader := yt.NewUploader(config.YouTube{})
	if _, err := uploader.Upload(context.Background(), yt.UploadRequest{Title: "t"}); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := uploader.Upload(context.Background(), yt.UploadRequest{FilePath: writeVideoFile(t)}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestUploadRejectsEmptyAPIResponse(t *testing.T) {
	uploader := yt.NewUploader(config.YouTube{})
	uploader.WithInserter(func(ctx context.Context, video *api.Video, media *os.File) (*api.Video, error) {
		return &api.Video{}, nil
	})

	if _, err := uploader.Upload(context.Background(), yt.UploadRequest{
		FilePath: writeVideoFile(t),
		Title:    "A Title",
	}); err == nil {
		t.Fatal("expected error for missing video id")
	}
}

func TestHealthCheckReportsMissingCredentials(t *testing.T) {
	uploader := yt.NewUploader(config.YouTube{})
	if err := uploader.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected credential error")
	}
}
