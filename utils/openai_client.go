package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT4oMini

type OpenAIOptions struct {
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL  string
	Model    string
	Language string
	Retry    RetryPolicy
}

// OpenAIClient transcribes clips with Whisper and answers prompts with a
// chat model.
type OpenAIClient struct {
	client *openai.Client
	opts   OpenAIOptions
}

func NewOpenAIClient(apiKey string, opts OpenAIOptions) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is empty")
	}
	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), opts: opts}, nil
}

func (c *OpenAIClient) TranscribeClip(ctx context.Context, clipFile string) (string, error) {
	zerolog.Ctx(ctx).Info().Str("clip", clipFile).Msg("Transcribing clip with Whisper")

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: clipFile,
		Language: c.opts.Language,
	}
	resp, err := CallWithRetry(ctx, c.opts.Retry, func(ctx context.Context) (openai.AudioResponse, error) {
		return c.client.CreateTranscription(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("transcription error: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant that extracts facts from film review transcriptions. Answer with only the requested value.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := CallWithRetry(ctx, c.opts.Retry, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion error: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
