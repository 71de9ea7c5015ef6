package utils

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

var (
	ErrRemoteFileFailed = errors.New("remote file processing failed")
	ErrPollTimeout      = errors.New("timed out waiting for remote file")
)

type geminiFiles interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	Model               string
	TranscriptionPrompt string
	Retry               RetryPolicy
	PollInterval        time.Duration
	PollTimeout         time.Duration
}

// GeminiClient transcribes clips through the Files API and answers text
// prompts. It implements both ClipTranscriber and TextCompleter.
type GeminiClient struct {
	files  geminiFiles
	models geminiModels
	opts   GeminiOptions
}

func NewGeminiClient(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiClient(client.Files, client.Models, opts), nil
}

func newGeminiClient(files geminiFiles, models geminiModels, opts GeminiOptions) *GeminiClient {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.TranscriptionPrompt == "" {
		opts.TranscriptionPrompt = TranscriptionPrompt("es")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	return &GeminiClient{files: files, models: models, opts: opts}
}

// TranscribeClip uploads clipFile, waits for it to become active, asks the
// model for a transcription and always deletes the upload afterwards.
func (g *GeminiClient) TranscribeClip(ctx context.Context, clipFile string) (string, error) {
	logger := zerolog.Ctx(ctx)

	logger.Info().Str("clip", clipFile).Msg("Uploading clip for transcription")
	file, err := g.files.UploadFromPath(ctx, clipFile, &genai.UploadFileConfig{MIMEType: clipMIMEType(clipFile)})
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", clipFile, err)
	}
	defer g.deleteRemote(ctx, file.Name)

	file, err = g.waitActive(ctx, file)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(g.opts.TranscriptionPrompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	logger.Info().Str("model", g.opts.Model).Msg("Transcribing clip with Gemini")
	resp, err := CallWithRetry(ctx, g.opts.Retry, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(ctx, g.opts.Model, contents, nil)
	})
	if err != nil {
		return "", fmt.Errorf("transcription error: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := CallWithRetry(ctx, g.opts.Retry, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(ctx, g.opts.Model, contents, nil)
	})
	if err != nil {
		return "", fmt.Errorf("completion error: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// waitActive polls while the file is processing, bounded by PollTimeout.
func (g *GeminiClient) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	logger := zerolog.Ctx(ctx)
	deadline := time.Now().Add(g.opts.PollTimeout)

	logger.Info().Str("file", file.Name).Msg("Waiting for remote file to become active")
	for file.State == genai.FileStateProcessing || file.State == genai.FileStateUnspecified || file.State == "" {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w %q after %s", ErrPollTimeout, file.Name, g.opts.PollTimeout)
		}
		if err := SleepContext(ctx, g.opts.PollInterval); err != nil {
			return nil, err
		}
		next, err := g.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("get remote file %q: %w", file.Name, err)
		}
		file = next
	}

	if file.State != genai.FileStateActive {
		return nil, fmt.Errorf("%w: %q is %s", ErrRemoteFileFailed, file.Name, file.State)
	}
	return file, nil
}

// deleteRemote is best-effort; it still runs after ctx is cancelled.
func (g *GeminiClient) deleteRemote(ctx context.Context, name string) {
	if _, err := g.files.Delete(context.WithoutCancel(ctx), name, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("file", name).Msg("Failed to delete remote file")
	}
}

func clipMIMEType(clipFile string) string {
	ext := strings.ToLower(filepath.Ext(clipFile))
	switch ext {
	case ".wav":
		return "audio/wav"
	case ".mp4":
		return "video/mp4"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
