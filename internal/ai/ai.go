package ai

import (
	"context"
	"errors"
	"strings"
)

// AspectRatio is the requested shape of a generated image, e.g. "16:9".
type AspectRatio string

const (
	AspectWide   AspectRatio = "16:9"
	AspectSquare AspectRatio = "1:1"
)

// ErrNoImage is returned when a model answered but carried no image payload.
var ErrNoImage = errors.New("model returned no image")

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) ([]byte, error)
}

// Provider bundles both capabilities; every concrete client implements it.
type Provider interface {
	TextGenerator
	ImageGenerator
	Name() string
}

type Noop struct{}

func (Noop) Name() string { return "off" }
func (Noop) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
func (Noop) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) ([]byte, error) {
	return nil, nil
}

// Options configures New.
type Options struct {
	Provider    string
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	Temperature float32
}

// New returns the provider named in opts; "off" or "" yields Noop.
func New(ctx context.Context, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "off", "none":
		return Noop{}, nil
	case "gemini", "google":
		return NewGemini(ctx, opts)
	case "openai":
		return NewOpenAI(opts)
	default:
		return nil, errors.New("unknown ai provider: " + opts.Provider)
	}
}
