package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Media directories
	UploadsDir   string `yaml:"uploads_dir"`
	ClipsDir     string `yaml:"clips_dir"`
	ProcessedDir string `yaml:"processed_dir"`

	Concurrency int `yaml:"concurrency"`

	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Clips     ClipsConfig     `yaml:"clips"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Cache     CacheConfig     `yaml:"cache"`
}

type FFmpegConfig struct {
	Threads int    `yaml:"threads"`
	Preset  string `yaml:"preset"`
}

// SegmenterConfig controls scene-cut detection. Threshold is a mean
// absolute intensity difference on a 0-255 scale; SampleInterval is the
// sampling cadence in seconds; FallbackStride is the frame stride used
// when the source frame rate is unknown.
type SegmenterConfig struct {
	Threshold      float64 `yaml:"threshold"`
	SampleInterval float64 `yaml:"sample_interval"`
	FallbackStride int     `yaml:"fallback_stride"`
}

type ScoringConfig struct {
	JitterSeed int64 `yaml:"jitter_seed"`
}

type ClipsConfig struct {
	NumClips     int     `yaml:"num_clips"`
	ClipDuration float64 `yaml:"clip_duration"`
	Platform     string  `yaml:"platform"`
	ThumbQuality int     `yaml:"thumb_quality"`
}

type WhisperConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

type SentimentConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"`
}

type CacheConfig struct {
	Path       string `yaml:"path"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		UploadsDir:   "./data/uploads",
		ClipsDir:     "./data/clips",
		ProcessedDir: "./data/processed",
		Concurrency:  4,
		FFmpeg: FFmpegConfig{
			Threads: 0,
			Preset:  "medium",
		},
		Segmenter: SegmenterConfig{
			Threshold:      30,
			SampleInterval: 1,
			FallbackStride: 30,
		},
		Scoring: ScoringConfig{
			JitterSeed: 1,
		},
		Clips: ClipsConfig{
			NumClips:     5,
			ClipDuration: 30,
			Platform:     "youtube_short",
			ThumbQuality: 85,
		},
		Whisper: WhisperConfig{
			Enabled: true,
			Model:   "base",
		},
		Sentiment: SentimentConfig{
			Enabled: false,
		},
		Cache: CacheConfig{
			Path:       "./data/manifest.db",
			TTLSeconds: 3600,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".manifest", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
