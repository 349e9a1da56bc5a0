package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI talks to the OpenAI API or any compatible endpoint set through BaseURL.
type OpenAI struct {
	client      *openai.Client
	textModel   string
	imageModel  string
	temperature float64
	httpClient  *http.Client
}

func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	if opts.TextModel == "" {
		opts.TextModel = "gpt-4o-mini"
	}
	if opts.ImageModel == "" {
		opts.ImageModel = "gpt-image-1"
	}
	var reqOpts []option.RequestOption
	reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)
	return &OpenAI{
		client:      &client,
		textModel:   opts.TextModel,
		imageModel:  opts.ImageModel,
		temperature: float64(opts.Temperature),
		httpClient:  http.DefaultClient,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       o.textModel,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("no response choices returned from LLM")
	}
	return res.Choices[0].Message.Content, nil
}

func (o *OpenAI) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) ([]byte, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.imageModel),
		N:      openai.Int(1),
		Size:   openAISize(aspect),
	}
	// gpt-image models always answer in base64 and reject the parameter.
	if strings.HasPrefix(o.imageModel, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}
	res, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image generation failed: %w", err)
	}
	for _, img := range res.Data {
		if img.B64JSON != "" {
			return base64.StdEncoding.DecodeString(img.B64JSON)
		}
		if img.URL != "" {
			return o.download(ctx, img.URL)
		}
	}
	return nil, ErrNoImage
}

func (o *OpenAI) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func openAISize(aspect AspectRatio) openai.ImageGenerateParamsSize {
	switch aspect {
	case AspectWide:
		return openai.ImageGenerateParamsSize1536x1024
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}
