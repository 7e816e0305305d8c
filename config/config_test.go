package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Generation.Model != "gpt-3.5-turbo-0125" {
		t.Errorf("model = %q", cfg.Generation.Model)
	}
	if cfg.Generation.Temperature != 0.2 || cfg.Generation.MaxTokens != 3600 {
		t.Errorf("generation defaults = %+v", cfg.Generation)
	}
	if cfg.Generation.CharacterLimit != 5000 {
		t.Errorf("character limit = %d", cfg.Generation.CharacterLimit)
	}
	if cfg.Generation.RetryAttempts != 1 {
		t.Errorf("retry attempts = %d, want 1 (single attempt)", cfg.Generation.RetryAttempts)
	}
	if cfg.Speech.ModelID != "eleven_multilingual_v2" || cfg.Speech.WhisperModel != "whisper-1" {
		t.Errorf("speech defaults = %+v", cfg.Speech)
	}
	if cfg.Speech.Stability != 0.5 || cfg.Speech.SimilarityBoost != 0.5 {
		t.Errorf("voice settings = %+v", cfg.Speech)
	}
	if cfg.Images.BatchSize != 10 {
		t.Errorf("batch size = %d", cfg.Images.BatchSize)
	}
	if cfg.Video.FPS != 25 {
		t.Errorf("fps = %d", cfg.Video.FPS)
	}
	if cfg.Storage.Bucket != "videos" {
		t.Errorf("bucket = %q", cfg.Storage.Bucket)
	}
	if cfg.RequestTimeout() != 1800*time.Second || cfg.CallTimeout() != 180*time.Second {
		t.Errorf("timeouts = %+v", cfg.Timeouts)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
generation:
  model: gpt-4o-mini
  retry_attempts: 3
images:
  batch_size: 5
video:
  fps: 30
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("model override lost: %q", cfg.Generation.Model)
	}
	if cfg.Generation.RetryAttempts != 3 {
		t.Errorf("retry attempts = %d", cfg.Generation.RetryAttempts)
	}
	if cfg.Images.BatchSize != 5 || cfg.Video.FPS != 30 {
		t.Errorf("overrides lost: %+v %+v", cfg.Images, cfg.Video)
	}
	// Unset fields still get defaults.
	if cfg.Generation.Temperature != 0.2 || cfg.Storage.Bucket != "videos" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Generation, cfg.Storage)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCredentialsValidate(t *testing.T) {
	full := Credentials{
		OpenAIKey:       "a",
		ElevenLabsKey:   "b",
		ElevenLabsVoice: "c",
		StabilityKey:    "d",
		SupabaseURL:     "e",
		SupabaseKey:     "f",
	}
	if err := full.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	missing := full
	missing.StabilityKey = ""
	missing.SupabaseKey = ""
	err := missing.Validate()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, name := range []string{"STABILITY_API_KEY", "SUPABASE_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error does not name %s: %v", name, err)
		}
	}
}

func TestCredentialsValidatePublish(t *testing.T) {
	creds := Credentials{YouTubeClientID: "a", YouTubeSecret: "b", YouTubeRefresh: "c"}
	if err := creds.ValidatePublish(); err != nil {
		t.Errorf("ValidatePublish() = %v, want nil", err)
	}
	creds.YouTubeRefresh = ""
	if err := creds.ValidatePublish(); err == nil {
		t.Error("expected error without refresh token")
	}
}
