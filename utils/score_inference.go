package utils

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const ScoreNone = "no"

var (
	scoreToken = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d+)?|\.\d+)`)
	scoreWhole = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d+)?|\.\d+)$`)
)

// InferScore asks completer for the reviewer's 0-10 score and normalizes the
// reply with NormalizeScore.
func InferScore(ctx context.Context, completer TextCompleter, transcription string) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return ScoreNone, nil
	}

	zerolog.Ctx(ctx).Info().Msg("Asking for the score")
	resp, err := completer.Complete(ctx, scorePrompt(transcription))
	if err != nil {
		return "", fmt.Errorf("score inference: %w", err)
	}
	return NormalizeScore(resp), nil
}

// NormalizeScore returns the score in raw with a "." decimal separator, or
// ScoreNone when raw holds no score in [0, 10]. A reply that is a bare number
// is taken as is; otherwise the first number that is not a scale ("sobre 10",
// "/10") is used.
func NormalizeScore(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	s = strings.TrimSpace(strings.Trim(s, `"'`))

	candidate := s
	if !scoreWhole.MatchString(s) {
		candidate = firstScoreToken(s)
	}
	if candidate == "" {
		return ScoreNone
	}

	value, err := strconv.ParseFloat(candidate, 64)
	if err != nil || math.IsNaN(value) || value < 0 || value > 10 {
		return ScoreNone
	}
	if value == 0 {
		// -0
		value = 0
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func firstScoreToken(s string) string {
	for _, loc := range scoreToken.FindAllStringIndex(s, -1) {
		before := strings.ToLower(strings.TrimRight(s[:loc[0]], " "))
		if strings.HasSuffix(before, "sobre") || strings.HasSuffix(before, "/") {
			continue
		}
		return s[loc[0]:loc[1]]
	}
	return ""
}

// ScoreFileToken makes a score safe for a file stem ("8.5" -> "8_5").
func ScoreFileToken(score string) string {
	return strings.ReplaceAll(score, ".", "_")
}
