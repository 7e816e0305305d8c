package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Speech     SpeechConfig     `yaml:"speech"`
	Images     ImagesConfig     `yaml:"images"`
	Video      VideoConfig      `yaml:"video"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Publish    PublishConfig    `yaml:"publish"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`

	// Credentials are loaded from the environment once, in main, and passed
	// down explicitly. They never appear in config.yaml.
	Credentials Credentials `yaml:"-"`
}

type GenerationConfig struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	CharacterLimit int     `yaml:"character_limit"`
	RetryAttempts  int     `yaml:"retry_attempts"`
	RetryDelaySec  float64 `yaml:"retry_delay_sec"`
}

type SpeechConfig struct {
	ModelID         string  `yaml:"model_id"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	WhisperModel    string  `yaml:"whisper_model"`
}

type ImagesConfig struct {
	BatchSize int `yaml:"batch_size"`
}

type VideoConfig struct {
	FPS        int    `yaml:"fps"`
	ScratchDir string `yaml:"scratch_dir"`
}

type StorageConfig struct {
	Bucket string `yaml:"bucket"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type PublishConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	DefaultLanguage   string `yaml:"default_language"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
}

type TimeoutsConfig struct {
	RequestSec int `yaml:"request_sec"`
	CallSec    int `yaml:"call_sec"`
	ConvertSec int `yaml:"convert_sec"`
}

// Credentials holds every secret the pipeline needs. Loaded from the
// environment by LoadCredentials.
type Credentials struct {
	OpenAIKey       string
	ElevenLabsKey   string
	ElevenLabsVoice string
	StabilityKey    string
	SupabaseURL     string
	SupabaseKey     string
	YouTubeClientID string
	YouTubeSecret   string
	YouTubeRefresh  string
}

// Load reads config.yaml and applies defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied, for callers that run
// without a config.yaml.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-3.5-turbo-0125"
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = 0.2
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = 3600
	}
	if c.Generation.CharacterLimit == 0 {
		c.Generation.CharacterLimit = 5000
	}
	if c.Generation.RetryAttempts == 0 {
		c.Generation.RetryAttempts = 1
	}
	if c.Generation.RetryDelaySec == 0 {
		c.Generation.RetryDelaySec = 1
	}
	if c.Speech.ModelID == "" {
		c.Speech.ModelID = "eleven_multilingual_v2"
	}
	if c.Speech.Stability == 0 {
		c.Speech.Stability = 0.5
	}
	if c.Speech.SimilarityBoost == 0 {
		c.Speech.SimilarityBoost = 0.5
	}
	if c.Speech.WhisperModel == "" {
		c.Speech.WhisperModel = "whisper-1"
	}
	if c.Images.BatchSize == 0 {
		c.Images.BatchSize = 10
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 25
	}
	if c.Video.ScratchDir == "" {
		c.Video.ScratchDir = os.TempDir()
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "videos"
	}
	if c.Database.Path == "" {
		c.Database.Path = "storyreel.db"
	}
	if c.Publish.Visibility == "" {
		c.Publish.Visibility = "private"
	}
	if c.Publish.DefaultLanguage == "" {
		c.Publish.DefaultLanguage = "en"
	}
	if c.Timeouts.RequestSec == 0 {
		c.Timeouts.RequestSec = 1800
	}
	if c.Timeouts.CallSec == 0 {
		c.Timeouts.CallSec = 180
	}
	if c.Timeouts.ConvertSec == 0 {
		c.Timeouts.ConvertSec = 300
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeouts.RequestSec) * time.Second
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Timeouts.CallSec) * time.Second
}

func (c *Config) ConvertTimeout() time.Duration {
	return time.Duration(c.Timeouts.ConvertSec) * time.Second
}

// LoadCredentials reads every secret from the environment. Call godotenv.Load
// first for local development.
func LoadCredentials() Credentials {
	return Credentials{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ElevenLabsKey:   os.Getenv("ELEVEN_LABS_API_KEY"),
		ElevenLabsVoice: os.Getenv("ELEVEN_LABS_VOICE_ID"),
		StabilityKey:    os.Getenv("STABILITY_API_KEY"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseKey:     os.Getenv("SUPABASE_KEY"),
		YouTubeClientID: os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeSecret:   os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeRefresh:  os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}
}

// Validate checks that every credential the pipeline itself depends on is
// present. Publishing credentials are checked separately since publishing is
// optional.
func (cr Credentials) Validate() error {
	missing := []string{}
	if cr.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if cr.ElevenLabsKey == "" {
		missing = append(missing, "ELEVEN_LABS_API_KEY")
	}
	if cr.ElevenLabsVoice == "" {
		missing = append(missing, "ELEVEN_LABS_VOICE_ID")
	}
	if cr.StabilityKey == "" {
		missing = append(missing, "STABILITY_API_KEY")
	}
	if cr.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cr.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %v", missing)
	}
	return nil
}

// ValidatePublish checks the credentials the optional YouTube publisher needs.
func (cr Credentials) ValidatePublish() error {
	if cr.YouTubeClientID == "" || cr.YouTubeSecret == "" || cr.YouTubeRefresh == "" {
		return fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}
	return nil
}
