// Package youtube publishes rendered videos through the YouTube Data API v3
// using OAuth client credentials and a long-lived refresh token.
package youtube

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"clipforge/internal/config"
	"clipforge/internal/services"
)

// UploadRequest describes one video upload.
type UploadRequest struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// UploadResult reports the published video's identity.
type UploadResult struct {
	VideoID string
	URL     string
}

// videoInserter is the slice of the YouTube API the uploader needs; tests
// substitute a fake.
type videoInserter func(ctx context.Context, video *youtube.Video, media *os.File) (*youtube.Video, error)

// Uploader publishes videos to YouTube.
type Uploader struct {
	cfg    config.YouTube
	insert videoInserter
}

// NewUploader constructs an uploader from credentials config.
func NewUploader(cfg config.YouTube) *Uploader {
	return &Uploader{cfg: cfg}
}

// WithInserter injects a fake API call for tests.
func (u *Uploader) WithInserter(insert videoInserter) {
	if insert != nil {
		u.insert = insert
	}
}

// Upload publishes the video file with the supplied metadata. The request's
// privacy status is applied verbatim; callers default it to private.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	var result UploadResult
	if strings.TrimSpace(req.FilePath) == "" {
		return result, services.Wrap(services.ErrValidation, "publish", "upload", "video file required", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return result, services.Wrap(services.ErrValidation, "publish", "upload", "title required", nil)
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "publish", "upload", "open video file", err)
	}
	defer file.Close()

	categoryID := strings.TrimSpace(req.CategoryID)
	if categoryID == "" {
		categoryID = u.cfg.CategoryID
	}
	privacy := strings.TrimSpace(req.Privacy)
	if privacy == "" {
		privacy = "private"
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	insert := u.insert
	if insert == nil {
		insert, err = u.apiInserter(ctx)
		if err != nil {
			return result, err
		}
	}

	uploaded, err := insert(ctx, video, file)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "publish", "upload", "youtube api", err)
	}
	if uploaded == nil || uploaded.Id == "" {
		return result, services.Wrap(services.ErrExternalTool, "publish", "upload", "youtube api returned no video id", nil)
	}

	result.VideoID = uploaded.Id
	result.URL = WatchURL(uploaded.Id)
	return result, nil
}

// HealthCheck verifies upload credentials are configured.
func (u *Uploader) HealthCheck(ctx context.Context) error {
	cfg := config.Config{YouTube: u.cfg}
	return cfg.ValidateYouTube()
}

// WatchURL returns the public URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (u *Uploader) apiInserter(ctx context.Context) (videoInserter, error) {
	if err := u.HealthCheck(ctx); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "upload", err.Error(), nil)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     u.cfg.ClientID,
		ClientSecret: u.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: u.cfg.RefreshToken})

	svc, err := youtube.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	return func(ctx context.Context, video *youtube.Video, media *os.File) (*youtube.Video, error) {
		call := svc.Videos.Insert([]string{"snippet", "status"}, video)
		call.Media(media)
		return call.Context(ctx).Do()
	}, nil
}
