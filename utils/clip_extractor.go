package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrNoAudioStream = errors.New("video has no audio stream")

// FFmpegClipExtractor probes with ffprobe and cuts 16 kHz mono WAV clips
// with ffmpeg. Empty binary names default to the ones on PATH.
type FFmpegClipExtractor struct {
	FFmpegPath  string
	FFprobePath string
}

func (e FFmpegClipExtractor) ProbeDuration(ctx context.Context, videoFile string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe(), "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", videoFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w\nStderr: %s", videoFile, err, stderr.String())
	}
	return ParseProbeDuration(string(output))
}

// ParseProbeDuration converts ffprobe's "format=duration" output (seconds)
// into a duration.
func ParseProbeDuration(output string) (time.Duration, error) {
	durationStr := strings.TrimSpace(output)
	seconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid duration %q", durationStr)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (e FFmpegClipExtractor) ExtractClip(ctx context.Context, videoFile, clipFile string, start, end time.Duration) error {
	if end <= start {
		return fmt.Errorf("empty clip window %s-%s", start, end)
	}
	cmd := exec.CommandContext(ctx, e.ffmpeg(), ExtractClipArgs(videoFile, clipFile, start, end)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := stderr.String()
		if strings.Contains(stderrStr, "Output file does not contain any stream") ||
			strings.Contains(stderrStr, "does not contain any stream") {
			return fmt.Errorf("%s: %w", videoFile, ErrNoAudioStream)
		}
		return fmt.Errorf("ffmpeg error: %w\nStderr: %s", err, stderrStr)
	}
	return nil
}

// ExtractClipArgs builds the ffmpeg arguments for the [start, end] window.
func ExtractClipArgs(videoFile, clipFile string, start, end time.Duration) []string {
	return []string{
		"-y", "-v", "error",
		"-ss", formatSeconds(start),
		"-i", videoFile,
		"-t", formatSeconds(end - start),
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		clipFile,
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func (e FFmpegClipExtractor) ffmpeg() string {
	if e.FFmpegPath != "" {
		return e.FFmpegPath
	}
	return "ffmpeg"
}

func (e FFmpegClipExtractor) ffprobe() string {
	if e.FFprobePath != "" {
		return e.FFprobePath
	}
	return "ffprobe"
}

// LeadWindow is [0, min(clip, duration)].
func LeadWindow(duration, clip time.Duration) (time.Duration, time.Duration) {
	return 0, min(clip, duration)
}

// TailWindow is [max(0, duration-clip), duration].
func TailWindow(duration, clip time.Duration) (time.Duration, time.Duration) {
	return max(0, duration-clip), duration
}
