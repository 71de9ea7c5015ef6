package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	TitleNotFound = "pelicula_no_encontrada"
	TitleUnknown  = "nombre_desconocido"
)

var invalidTitleRunes = regexp.MustCompile(`[\\/*?:"<>|\x00-\x1F]`)

// InferTitle asks completer for the film's official Spain release title.
// The answer is sanitized for use as a file stem; an empty answer becomes
// TitleUnknown.
func InferTitle(ctx context.Context, completer TextCompleter, transcription string) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return TitleUnknown, nil
	}

	zerolog.Ctx(ctx).Info().Msg("Asking for the film title")
	resp, err := completer.Complete(ctx, titlePrompt(transcription))
	if err != nil {
		return "", fmt.Errorf("title inference: %w", err)
	}
	return SanitizeTitle(resp), nil
}

// SanitizeTitle strips characters that are illegal in file names.
func SanitizeTitle(raw string) string {
	// Line breaks and tabs become single spaces before the strip.
	clean := strings.Join(strings.Fields(raw), " ")
	clean = invalidTitleRunes.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")
	// Trailing dots and spaces are dropped by Windows shares.
	clean = strings.TrimRight(clean, ". ")
	if clean == "" {
		return TitleUnknown
	}
	return clean
}

// IsTitleMissing reports whether title is a sentinel rather than a real name.
func IsTitleMissing(title string) bool {
	return title == "" || title == TitleNotFound || title == TitleUnknown
}
