package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storyreel/types"
)

const defaultTranscriptionURL = "https://api.openai.com/v1/audio/transcriptions"

// Transcriber recovers time-aligned segments from synthesized audio. The
// script's literal text is never assumed to match spoken timing, hence a
// fresh transcription instead of reusing the script.
type Transcriber struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTranscriber builds a transcription adapter.
func NewTranscriber(apiKey, model string, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultTranscriptionURL,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		logger:     logger.Named("transcribe"),
	}
}

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Run fetches the audio binary and submits it for segment-level
// transcription.
func (t *Transcriber) Run(ctx context.Context, track types.AudioTrack) (types.Transcript, error) {
	t.logger.Info("transcribing narration audio", zap.String("url", track.URL))

	audio, err := t.fetchAudio(ctx, track.URL)
	if err != nil {
		return types.Transcript{}, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "audio.mp3")
	if err != nil {
		return types.Transcript{}, err
	}
	if _, err := part.Write(audio); err != nil {
		return types.Transcript{}, err
	}
	_ = form.WriteField("model", t.model)
	_ = form.WriteField("response_format", "verbose_json")
	_ = form.WriteField("timestamp_granularities[]", "segment")
	if err := form.Close(); err != nil {
		return types.Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, &buf)
	if err != nil {
		return types.Transcript{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Transcript{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return types.Transcript{}, &types.ServiceError{
			Service:    "transcription",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcription response: %w", err)
	}

	transcript := types.Transcript{FullText: parsed.Text, Duration: parsed.Duration}
	for _, seg := range parsed.Segments {
		transcript.Segments = append(transcript.Segments, types.TranscriptSegment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}
	if transcript.Duration == 0 && len(transcript.Segments) > 0 {
		transcript.Duration = transcript.Segments[len(transcript.Segments)-1].End
	}

	t.logger.Info("transcript ready",
		zap.Int("segments", len(transcript.Segments)),
		zap.Float64("duration_sec", transcript.Duration),
	)
	return transcript, nil
}

func (t *Transcriber) fetchAudio(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ServiceError{Service: "audio-fetch", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}
