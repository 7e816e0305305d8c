// Package speech synthesizes narration audio and transcribes it back for
// timing. Synthesis goes through ElevenLabs; transcription through the
// OpenAI Whisper API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyreel/config"
	"storyreel/types"
)

const defaultSynthesisBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

// Uploader is the slice of the storage client the synthesis path needs.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Synthesizer converts a narration script to stored speech audio.
type Synthesizer struct {
	cfg        config.SpeechConfig
	apiKey     string
	voiceID    string
	baseURL    string
	store      Uploader
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSynthesizer builds a speech-synthesis adapter. The credential is
// required up front so a misconfigured deployment fails before any pipeline
// work starts, not in the middle of a request.
func NewSynthesizer(cfg config.SpeechConfig, apiKey, voiceID string, store Uploader, logger *zap.Logger) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("speech: ELEVEN_LABS_API_KEY is not configured")
	}
	if voiceID == "" {
		return nil, errors.New("speech: ELEVEN_LABS_VOICE_ID is not configured")
	}
	return &Synthesizer{
		cfg:        cfg,
		apiKey:     apiKey,
		voiceID:    voiceID,
		baseURL:    defaultSynthesisBaseURL,
		store:      store,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		logger:     logger.Named("synthesize"),
	}, nil
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Run synthesizes the script, uploads the audio, and returns its reference.
func (s *Synthesizer) Run(ctx context.Context, narration string) (types.AudioTrack, error) {
	s.logger.Info("synthesizing narration", zap.Int("chars", len(narration)))

	body, err := json.Marshal(synthesisRequest{
		Text:    narration,
		ModelID: s.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.SimilarityBoost,
		},
	})
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("marshal synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return types.AudioTrack{}, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.AudioTrack{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return types.AudioTrack{}, &types.ServiceError{
			Service:    "speech-synthesis",
			StatusCode: resp.StatusCode,
			Body:       string(audio),
		}
	}

	url, err := s.store.Upload(ctx, fmt.Sprintf("audio/%s.mp3", uuid.NewString()), audio, "audio/mpeg")
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("store narration audio: %w", err)
	}

	s.logger.Info("narration audio stored", zap.Int("bytes", len(audio)), zap.String("url", url))
	return types.AudioTrack{URL: url}, nil
}
