// Package config loads pdf2deck settings from defaults, an optional YAML file,
// a .env file and PDF2DECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for a run.
type Config struct {
	AI      AIConfig      `mapstructure:"ai"`
	Images  ImagesConfig  `mapstructure:"images"`
	Deck    DeckConfig    `mapstructure:"deck"`
	Extract ExtractConfig `mapstructure:"extract"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type AIConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	TextModel   string  `mapstructure:"text_model"`
	ImageModel  string  `mapstructure:"image_model"`
	Temperature float32 `mapstructure:"temperature"`
}

type ImagesConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Concurrency bounds in-flight image requests during prefetch.
	Concurrency     int     `mapstructure:"concurrency"`
	RatePerSecond   float64 `mapstructure:"rate_per_second"`
	ObjectivesStyle string  `mapstructure:"objectives_style"` // ai | pyramid | stairs | cards
	FontPath        string  `mapstructure:"font_path"`
}

type DeckConfig struct {
	Template          string  `mapstructure:"template"`
	Layouts           string  `mapstructure:"layouts"`
	CourseSystemImage string  `mapstructure:"course_system_image"`
	WidthIn           float64 `mapstructure:"width_in"`
	HeightIn          float64 `mapstructure:"height_in"`
}

type ExtractConfig struct {
	TextEngine string `mapstructure:"text_engine"` // native | poppler
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.text_model", "gemini-2.0-flash")
	v.SetDefault("ai.image_model", "imagen-4.0-fast-generate-001")
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("images.enabled", true)
	v.SetDefault("images.timeout", 15*time.Second)
	v.SetDefault("images.concurrency", 3)
	v.SetDefault("images.rate_per_second", 2.0)
	v.SetDefault("images.objectives_style", "ai")
	v.SetDefault("deck.width_in", 16.0)
	v.SetDefault("deck.height_in", 9.0)
	v.SetDefault("extract.text_engine", "native")
	v.SetDefault("output.dir", "output")
	v.SetDefault("storage.prefix", "decks")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Keys without a meaningful default still need registering so that
	// AutomaticEnv picks them up during Unmarshal.
	for _, key := range []string{
		"ai.api_key", "ai.base_url", "images.font_path",
		"deck.template", "deck.layouts", "deck.course_system_image",
		"storage.endpoint", "storage.bucket", "storage.access_key_id",
		"storage.access_key_secret", "storage.region",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.use_ssl", true)
}

// Load reads configuration. An empty path means defaults plus environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PDF2DECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyKeyFallbacks(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyKeyFallbacks picks up the vendor-standard key variables when no
// PDF2DECK_AI_API_KEY was given.
func applyKeyFallbacks(cfg *Config) {
	if cfg.AI.APIKey != "" {
		return
	}
	switch strings.ToLower(cfg.AI.Provider) {
	case "gemini", "google":
		cfg.AI.APIKey = os.Getenv("GOOGLE_API_KEY")
		if cfg.AI.APIKey == "" {
			cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	case "openai":
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "google", "openai", "off", "none", "":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	switch c.Images.ObjectivesStyle {
	case "ai", "pyramid", "stairs", "cards":
	default:
		return fmt.Errorf("unknown images.objectives_style %q", c.Images.ObjectivesStyle)
	}
	switch c.Extract.TextEngine {
	case "native", "poppler":
	default:
		return fmt.Errorf("unknown extract.text_engine %q", c.Extract.TextEngine)
	}
	if c.Images.Concurrency < 1 {
		c.Images.Concurrency = 1
	}
	if c.Deck.WidthIn <= 0 || c.Deck.HeightIn <= 0 {
		return errors.New("deck.width_in and deck.height_in must be positive")
	}
	if c.Storage.Enabled && (c.Storage.Endpoint == "" || c.Storage.Bucket == "") {
		return errors.New("storage.endpoint and storage.bucket are required when storage is enabled")
	}
	return nil
}

// RequireTemplate reports whether a deck template is configured and exists.
func (c *Config) RequireTemplate() error {
	if c.Deck.Template == "" {
		return errors.New("deck.template is required (set --template or PDF2DECK_DECK_TEMPLATE)")
	}
	if _, err := os.Stat(c.Deck.Template); err != nil {
		return fmt.Errorf("deck template: %w", err)
	}
	return nil
}

// AIEnabled is false when the provider is switched off.
func (c *Config) AIEnabled() bool {
	switch strings.ToLower(c.AI.Provider) {
	case "off", "none", "":
		return false
	}
	return true
}
