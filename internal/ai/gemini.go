package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/constants"
	"google.golang.org/genai"
)

// GeminiProvider implements Stylist using the Gemini API: an image model for
// edits and a text/vision model for critiques.
type GeminiProvider struct {
	client        *genai.Client
	imageModel    string
	critiqueModel string
	usage         Usage
}

func NewGeminiProvider(ctx context.Context, cfg *config.GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:        client,
		imageModel:    cfg.ImageModel,
		critiqueModel: cfg.CritiqueModel,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return p.imageModel
}

func (p *GeminiProvider) GetUsage() *Usage {
	return &p.usage
}

func (p *GeminiProvider) trackUsage(inputTokens, outputTokens int32) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
}

// EditImage sends the source image and prompt to the image model and returns
// the first inline image of the response. Returns (nil, nil) when the model
// answers without an image part.
func (p *GeminiProvider) EditImage(ctx context.Context, image []byte, mimeType, prompt string) (*EditedImage, error) {
	prepared, preparedMime, err := PrepareForModel(image, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{Data: prepared, MIMEType: preparedMime}},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.imageModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if result.UsageMetadata != nil {
		p.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &EditedImage{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// The model replied without an image. Callers treat this as a no-op.
	return nil, nil
}

// CritiqueStyle asks the critique model for a structured style review.
func (p *GeminiProvider) CritiqueStyle(ctx context.Context, image []byte, mimeType, prompt string) (*Critique, error) {
	prepared, preparedMime, err := PrepareForModel(image, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{Data: prepared, MIMEType: preparedMime}},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.critiqueModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if result.UsageMetadata != nil {
		p.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
	}

	content := result.Text()
	if content == "" {
		return nil, errors.New("no response from Gemini")
	}

	return ParseCritique(content)
}
