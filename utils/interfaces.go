package utils

import (
	"context"
	"time"
)

type ClipExtractor interface {
	ProbeDuration(ctx context.Context, videoFile string) (time.Duration, error)
	ExtractClip(ctx context.Context, videoFile, clipFile string, start, end time.Duration) error
}

type ClipTranscriber interface {
	TranscribeClip(ctx context.Context, clipFile string) (string, error)
}

type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LanguageDetector reports the ISO 639-1 code of text, or ok=false when unsure.
type LanguageDetector interface {
	DetectLanguage(text string) (code string, ok bool)
}
