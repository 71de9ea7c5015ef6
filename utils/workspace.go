package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

var DefaultVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv"}

// NewWorkspace creates a run-scoped scratch directory under parent. The
// returned cleanup removes it, and parent too when nothing else is left in
// it. Cleanup failures are logged, never returned.
func NewWorkspace(ctx context.Context, parent string) (string, func(), error) {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory %q: %w", parent, err)
	}
	dir, err := os.MkdirTemp(parent, "run-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create workspace in %q: %w", parent, err)
	}

	cleanup := func() {
		logger := zerolog.Ctx(ctx)
		logger.Info().Str("dir", dir).Msg("Cleaning up temp workspace")
		if err := os.RemoveAll(dir); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("Failed to remove temp workspace")
			return
		}
		// Fails harmlessly when the parent holds other files.
		if err := os.Remove(parent); err != nil && !os.IsNotExist(err) {
			logger.Debug().Err(err).Str("dir", parent).Msg("Temp directory kept")
		}
	}
	return dir, cleanup, nil
}

// DiscoverVideos lists files directly inside dir whose extension is in exts
// (case-insensitive), sorted by name. Subdirectories are not visited.
func DiscoverVideos(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultVideoExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	var videos []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if slices.Contains(exts, ext) {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(videos)
	return videos, nil
}
