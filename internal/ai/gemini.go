package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

type Gemini struct {
	client      *genai.Client
	textModel   string
	imageModel  string
	temperature float32
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	if opts.TextModel == "" {
		opts.TextModel = "gemini-2.0-flash"
	}
	if opts.ImageModel == "" {
		opts.ImageModel = "imagen-4.0-fast-generate-001"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client:      c,
		textModel:   opts.TextModel,
		imageModel:  opts.ImageModel,
		temperature: opts.Temperature,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini not configured")
	}
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	res, err := g.client.Models.GenerateContent(ctx, g.textModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return res.Text(), nil
}

// GenerateImage uses the Imagen endpoint unless the configured image model is a
// Gemini multimodal model, which answers through GenerateContent with inline data.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) ([]byte, error) {
	if g.client == nil {
		return nil, errors.New("gemini not configured")
	}
	if strings.Contains(strings.ToLower(g.imageModel), "gemini") {
		return g.generateInline(ctx, prompt)
	}
	res, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages:    1,
		AspectRatio:       string(aspect),
		SafetyFilterLevel: genai.SafetyFilterLevelBlockLowAndAbove,
		PersonGeneration:  genai.PersonGenerationAllowAdult,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen call failed: %w", err)
	}
	for _, img := range res.GeneratedImages {
		if img != nil && img.Image != nil && len(img.Image.ImageBytes) > 0 {
			return img.Image.ImageBytes, nil
		}
	}
	return nil, ErrNoImage
}

func (g *Gemini) generateInline(ctx context.Context, prompt string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}
	res, err := g.client.Models.GenerateContent(ctx, g.imageModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini image call failed: %w", err)
	}
	for _, cand := range res.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, ErrNoImage
}
