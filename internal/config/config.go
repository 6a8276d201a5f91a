package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the dictation client.
type Config struct {
	Env string `env:"SCRIBEWIRE_ENV" envDefault:"production"`

	// Transcription service connection.
	ServiceURL           string        `env:"SCRIBEWIRE_SERVICE_URL" envDefault:"http://localhost:8000"`
	Topic                string        `env:"SCRIBEWIRE_TOPIC" envDefault:"en"`
	MaxReconnectAttempts int           `env:"SCRIBEWIRE_MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectBaseDelay   time.Duration `env:"SCRIBEWIRE_RECONNECT_BASE_DELAY" envDefault:"1s"`
	KeepaliveInterval    time.Duration `env:"SCRIBEWIRE_KEEPALIVE_INTERVAL" envDefault:"30s"`

	// Microphone capture.
	RecorderCommand  string `env:"SCRIBEWIRE_FFMPEG_COMMAND" envDefault:"ffmpeg"`
	AudioInputFormat string `env:"SCRIBEWIRE_AUDIO_INPUT_FORMAT" envDefault:"pulse"`
	AudioInputDevice string `env:"SCRIBEWIRE_AUDIO_INPUT_DEVICE" envDefault:"default"`
	SampleRate       int    `env:"SCRIBEWIRE_SAMPLE_RATE" envDefault:"16000"`
	Channels         int    `env:"SCRIBEWIRE_CHANNELS" envDefault:"1"`
	ChunkSize        int    `env:"SCRIBEWIRE_AUDIO_CHUNK_SIZE" envDefault:"4096"`

	// Dictation vocabulary normalization.
	VocabularyFile           string `env:"SCRIBEWIRE_VOCABULARY_FILE"`
	VocabularyIterationLimit int    `env:"SCRIBEWIRE_VOCABULARY_ITERATION_LIMIT" envDefault:"30"`

	// Persistence and artifact delivery.
	DatabasePath       string `env:"SCRIBEWIRE_DB_PATH"`
	ArtifactWebhookURL string `env:"SCRIBEWIRE_ARTIFACT_WEBHOOK_URL"`
}

// Load resolves configuration from a .env file (when present) and the
// environment, applies defaults and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}

	if cfg.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		cfg.DatabasePath = filepath.Join(home, ".local", "share", "scribewire", "scribewire.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ServiceURL, "http://") && !strings.HasPrefix(c.ServiceURL, "https://") {
		return fmt.Errorf("SCRIBEWIRE_SERVICE_URL must be an http(s) origin, got %q", c.ServiceURL)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("SCRIBEWIRE_TOPIC is required")
	}
	if c.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("SCRIBEWIRE_MAX_RECONNECT_ATTEMPTS must be positive, got %d", c.MaxReconnectAttempts)
	}
	if c.ReconnectBaseDelay <= 0 {
		return fmt.Errorf("SCRIBEWIRE_RECONNECT_BASE_DELAY must be positive, got %s", c.ReconnectBaseDelay)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("SCRIBEWIRE_SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("SCRIBEWIRE_CHANNELS must be positive, got %d", c.Channels)
	}
	if c.ChunkSize < 256 {
		return fmt.Errorf("SCRIBEWIRE_AUDIO_CHUNK_SIZE must be at least 256, got %d", c.ChunkSize)
	}
	if c.VocabularyIterationLimit <= 0 {
		return fmt.Errorf("SCRIBEWIRE_VOCABULARY_ITERATION_LIMIT must be positive, got %d", c.VocabularyIterationLimit)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
