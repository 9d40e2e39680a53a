package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stylemirror/stylemirror/internal/constants"
)

const openAIChatModel = openai.ChatModelGPT4_1Mini

// OpenAICritic implements Critic using an OpenAI vision chat model. It does
// not generate images; it only serves the critique flow when configured as
// the critic backend.
type OpenAICritic struct {
	client *openai.Client
	usage  Usage
}

func NewOpenAICritic(apiKey string) *OpenAICritic {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAICritic{client: &client}
}

func (p *OpenAICritic) Name() string {
	return openAIChatModel
}

func (p *OpenAICritic) GetUsage() *Usage {
	return &p.usage
}

func (p *OpenAICritic) trackUsage(inputTokens, outputTokens int64) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
}

// CritiqueStyle asks the chat model for a structured style review of the image.
func (p *OpenAICritic) CritiqueStyle(ctx context.Context, image []byte, mimeType, prompt string) (*Critique, error) {
	prepared, _, err := PrepareForModel(image, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(prepared)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openAIChatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.TextContentPart(prompt),
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "low",
							}),
						},
					},
				},
			},
		},
		MaxTokens: openai.Int(700),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		p.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	return ParseCritique(resp.Choices[0].Message.Content)
}
