// Package publish pushes finished videos to YouTube. Publishing is
// optional: the pipeline completes without it, and it runs only when
// enabled in config and the OAuth credentials are present.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"storyreel/config"
	"storyreel/types"
)

// Downloader fetches the finished video back out of storage for upload.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Publisher uploads videos through the YouTube Data API v3.
type Publisher struct {
	cfg    config.PublishConfig
	creds  config.Credentials
	store  Downloader
	logger *zap.Logger
}

// New builds a publisher. Credential presence is checked here so a
// misconfigured publisher fails before any pipeline work is done.
func New(cfg config.PublishConfig, creds config.Credentials, store Downloader, logger *zap.Logger) (*Publisher, error) {
	if err := creds.ValidatePublish(); err != nil {
		return nil, err
	}
	return &Publisher{cfg: cfg, creds: creds, store: store, logger: logger.Named("publish")}, nil
}

// Run fetches the stored video and uploads it with the given title.
// Returns the YouTube video id and watch URL.
func (p *Publisher) Run(ctx context.Context, video types.FinalVideo, title, description string) (string, string, error) {
	client, err := p.oauthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	data, err := p.store.Download(ctx, video.URL)
	if err != nil {
		return "", "", fmt.Errorf("fetch video for upload: %w", err)
	}
	p.logger.Info("uploading video",
		zap.String("title", title),
		zap.Float64("size_mb", float64(len(data))/1024/1024),
	)

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                title,
			Description:          description,
			CategoryId:           p.cfg.CategoryID,
			DefaultLanguage:      p.cfg.DefaultLanguage,
			DefaultAudioLanguage: p.cfg.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: p.cfg.Visibility,
		},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, upload)
	call.NotifySubscribers(p.cfg.NotifySubscribers)
	call.Media(bytes.NewReader(data))

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	p.logger.Info("upload complete", zap.String("video_id", uploaded.Id), zap.String("url", watchURL))
	return uploaded.Id, watchURL, nil
}

func (p *Publisher) oauthClient(ctx context.Context) (*http.Client, error) {
	conf := &oauth2.Config{
		ClientID:     p.creds.YouTubeClientID,
		ClientSecret: p.creds.YouTubeSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: p.creds.YouTubeRefresh,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}
