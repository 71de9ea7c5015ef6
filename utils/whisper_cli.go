package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// WhisperModels are the accepted local model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

func IsWhisperModel(size string) bool {
	return slices.Contains(WhisperModels, size)
}

// WhisperCLITranscriber runs a local whisper.cpp binary. No network, no
// polling: the transcript is read from stdout.
type WhisperCLITranscriber struct {
	CLIPath   string
	ModelsDir string
	Model     string
	Language  string
}

func NewWhisperCLITranscriber(cliPath, modelsDir, model, language string) (*WhisperCLITranscriber, error) {
	if !IsWhisperModel(model) {
		return nil, fmt.Errorf("unknown whisper model %q (want one of %s)", model, strings.Join(WhisperModels, ", "))
	}
	if cliPath == "" {
		cliPath = "whisper-cli"
	}
	return &WhisperCLITranscriber{CLIPath: cliPath, ModelsDir: modelsDir, Model: model, Language: language}, nil
}

// ModelPath maps a size to the ggml file whisper.cpp ships ("large" is v3).
func (w *WhisperCLITranscriber) ModelPath() string {
	name := w.Model
	if name == "large" {
		name = "large-v3"
	}
	return filepath.Join(w.ModelsDir, fmt.Sprintf("ggml-%s.bin", name))
}

func (w *WhisperCLITranscriber) Args(clipFile string) []string {
	args := []string{"--model", w.ModelPath(), "--no-timestamps", "--no-prints"}
	if w.Language != "" {
		args = append(args, "--language", w.Language)
	}
	return append(args, "--file", clipFile)
}

func (w *WhisperCLITranscriber) TranscribeClip(ctx context.Context, clipFile string) (string, error) {
	logger := zerolog.Ctx(ctx)
	cmd := exec.CommandContext(ctx, w.CLIPath, w.Args(clipFile)...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	logger.Info().Str("model", w.Model).Str("clip", clipFile).Msg("Transcribing clip with whisper-cli")
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper-cli error: %w\nStderr: %s", err, stderr.String())
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("whisper-cli finished")

	return strings.Join(strings.Fields(out.String()), " "), nil
}
