package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TwitterConfig holds the scraping credentials.
type TwitterConfig struct {
	BearerToken string `yaml:"bearer_token"`
}

// TranscriptionConfig holds the transcription service settings.
type TranscriptionConfig struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Prompt      string   `yaml:"prompt"`
	Temperature *float64 `yaml:"temperature"`
	Language    string   `yaml:"language"`
	CleanAudio  bool     `yaml:"clean_audio"`
	TrimSilence bool     `yaml:"trim_silence"`
}

// Config is the resolved application configuration. Resolution order:
// built-in defaults, then the optional YAML file, then environment
// variables. Command-line flags override all three in the entrypoints.
type Config struct {
	Twitter       TwitterConfig       `yaml:"twitter"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	OutputDir     string              `yaml:"output_dir"`
}

func defaults() *Config {
	return &Config{
		Transcription: TranscriptionConfig{
			Language:    "fa",
			CleanAudio:  true,
			TrimSilence: true,
		},
		OutputDir: "output",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		cfg.Twitter.BearerToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Transcription.APIKey = v
	}
	if v := os.Getenv("OPENAI_TRANSCRIBE_MODEL"); v != "" {
		cfg.Transcription.Model = v
	}
	if v := os.Getenv("OPENAI_TRANSCRIBE_PROMPT"); v != "" {
		cfg.Transcription.Prompt = v
	}
	if v := os.Getenv("OPENAI_TRANSCRIBE_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Transcription.Temperature = &f
		}
	}
	if v := os.Getenv("TRANSCRIBE_LANGUAGE"); v != "" {
		cfg.Transcription.Language = v
	}
	if v := os.Getenv("TRANSCRIBE_CLEAN_AUDIO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transcription.CleanAudio = b
		}
	}
	if v := os.Getenv("TRANSCRIBE_TRIM_SILENCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transcription.TrimSilence = b
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
}
