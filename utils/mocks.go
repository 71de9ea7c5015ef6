package utils

import (
	"context"
	"time"
)

type MockClipExtractor struct {
	ProbeDurationFunc func(ctx context.Context, videoFile string) (time.Duration, error)
	ExtractClipFunc   func(ctx context.Context, videoFile, clipFile string, start, end time.Duration) error
}

func (m *MockClipExtractor) ProbeDuration(ctx context.Context, videoFile string) (time.Duration, error) {
	return m.ProbeDurationFunc(ctx, videoFile)
}

func (m *MockClipExtractor) ExtractClip(ctx context.Context, videoFile, clipFile string, start, end time.Duration) error {
	return m.ExtractClipFunc(ctx, videoFile, clipFile, start, end)
}

type MockClipTranscriber struct {
	TranscribeClipFunc func(ctx context.Context, clipFile string) (string, error)
}

func (m *MockClipTranscriber) TranscribeClip(ctx context.Context, clipFile string) (string, error) {
	return m.TranscribeClipFunc(ctx, clipFile)
}

type MockTextCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockTextCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return m.CompleteFunc(ctx, prompt)
}

type MockLanguageDetector struct {
	DetectLanguageFunc func(text string) (string, bool)
}

func (m *MockLanguageDetector) DetectLanguage(text string) (string, bool) {
	return m.DetectLanguageFunc(text)
}
