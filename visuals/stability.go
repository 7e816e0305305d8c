package visuals

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyreel/prompts"
	"storyreel/types"
)

const defaultImageEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/core"

// Uploader is the slice of the storage client the generator needs.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Generator calls the image service for one fully-resolved prompt and stores
// the result.
type Generator struct {
	apiKey     string
	endpoint   string
	store      Uploader
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGenerator builds an image adapter.
func NewGenerator(apiKey string, store Uploader, logger *zap.Logger) *Generator {
	return &Generator{
		apiKey:     apiKey,
		endpoint:   defaultImageEndpoint,
		store:      store,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		logger:     logger.Named("image"),
	}
}

// Run generates one still image and stamps the description's timestamp span
// through onto the stored result. A non-2xx response is a hard failure
// carrying the status code and raw body.
func (g *Generator) Run(ctx context.Context, desc types.ImageDescription, prompt string, aspect types.AspectRatio) (types.GeneratedImage, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("prompt", prompt)
	_ = form.WriteField("aspect_ratio", string(aspect))
	_ = form.WriteField("negative_prompt", prompts.NegativePrompt)
	if err := form.Close(); err != nil {
		return types.GeneratedImage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, &buf)
	if err != nil {
		return types.GeneratedImage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return types.GeneratedImage{}, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.GeneratedImage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return types.GeneratedImage{}, &types.ServiceError{
			Service:    "image-generation",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	url, err := g.store.Upload(ctx, fmt.Sprintf("images/%s.png", uuid.NewString()), body, "image/png")
	if err != nil {
		return types.GeneratedImage{}, fmt.Errorf("store generated image: %w", err)
	}

	g.logger.Info("image generated",
		zap.Float64("start", desc.Start),
		zap.Float64("end", desc.End),
		zap.String("url", url),
	)
	return types.GeneratedImage{Start: desc.Start, End: desc.End, URL: url}, nil
}
