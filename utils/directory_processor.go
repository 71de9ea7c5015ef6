package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrEmptyTranscription = errors.New("empty transcription")

const (
	DefaultClipLength     = 20 * time.Second
	DefaultScoreSeparator = "_puntos_"
	DefaultMoveAttempts   = 3
	DefaultMoveDelay      = 2 * time.Second
	ErrorFolderName       = "error"
)

type ProcessorOptions struct {
	// DestinationDir receives renamed videos; unrecognized ones go to its
	// "error" subfolder.
	DestinationDir string
	ClipLength     time.Duration
	ScoreSeparator string
	// Language is the expected transcript language (ISO 639-1). A detected
	// mismatch is only logged.
	Language       string
	MoveAttempts   int
	MoveDelay      time.Duration
	SaveTranscript bool
	Extensions     []string
}

// Processor renames film review videos after the title and score spoken in
// their first and last seconds.
type Processor struct {
	Extractor   ClipExtractor
	Transcriber ClipTranscriber
	Completer   TextCompleter
	// Detector is optional.
	Detector LanguageDetector
	Options  ProcessorOptions
	// Sleep replaces SleepContext between move attempts; nil uses it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewProcessor(extractor ClipExtractor, transcriber ClipTranscriber, completer TextCompleter, opts ProcessorOptions) *Processor {
	if opts.ClipLength <= 0 {
		opts.ClipLength = DefaultClipLength
	}
	if opts.ScoreSeparator == "" {
		opts.ScoreSeparator = DefaultScoreSeparator
	}
	if opts.MoveAttempts <= 0 {
		opts.MoveAttempts = DefaultMoveAttempts
	}
	if opts.MoveDelay <= 0 {
		opts.MoveDelay = DefaultMoveDelay
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultVideoExtensions
	}
	return &Processor{
		Extractor:   extractor,
		Transcriber: transcriber,
		Completer:   completer,
		Options:     opts,
	}
}

// ProcessDirectory processes every video directly inside uploadDir, one at a
// time. A failing video never stops the batch. onResult, if set, is called
// after each video. The workspace under tempParent is removed on return.
func (p *Processor) ProcessDirectory(ctx context.Context, uploadDir, tempParent string, onResult func(ItemResult)) (RunReport, error) {
	logger := zerolog.Ctx(ctx)
	var report RunReport

	info, err := os.Stat(uploadDir)
	if err != nil {
		return report, fmt.Errorf("upload directory: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("upload directory %q is not a directory", uploadDir)
	}

	videos, err := DiscoverVideos(uploadDir, p.Options.Extensions)
	if err != nil {
		return report, err
	}
	if len(videos) == 0 {
		logger.Info().Str("dir", uploadDir).Msg("No videos found")
		return report, nil
	}
	logger.Info().Int("count", len(videos)).Str("dir", uploadDir).Msg("Found videos to process")

	workspace, cleanup, err := NewWorkspace(ctx, tempParent)
	if err != nil {
		return report, err
	}
	defer cleanup()

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := p.ProcessVideo(ctx, video, workspace)
		report.add(res)
		if onResult != nil {
			onResult(res)
		}
	}

	logSummary(logger, report)
	return report, nil
}

// ProcessFile processes a single video with its own workspace.
func (p *Processor) ProcessFile(ctx context.Context, videoFile, tempParent string) (RunReport, error) {
	var report RunReport

	info, err := os.Stat(videoFile)
	if err != nil {
		return report, fmt.Errorf("invalid video file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return report, fmt.Errorf("invalid video file: %q is not a regular file", videoFile)
	}

	workspace, cleanup, err := NewWorkspace(ctx, tempParent)
	if err != nil {
		return report, err
	}
	defer cleanup()

	report.add(p.ProcessVideo(ctx, videoFile, workspace))
	logSummary(zerolog.Ctx(ctx), report)
	return report, nil
}

// ProcessVideo runs the whole pipeline for one video: probe, lead clip,
// title, tail clip, score, rename, relocate. Clip files are written to
// workspace. Errors are reported in the result, never returned.
func (p *Processor) ProcessVideo(ctx context.Context, videoFile, workspace string) ItemResult {
	logger := zerolog.Ctx(ctx).With().Str("video", filepath.Base(videoFile)).Logger()
	ctx = logger.WithContext(ctx)
	result := ItemResult{VideoFile: videoFile}

	fail := func(outcome Outcome, err error) ItemResult {
		result.Outcome = outcome
		result.Err = err
		if outcome == OutcomeSkipped {
			logger.Warn().Err(err).Msg("Skipping video")
		} else {
			logger.Error().Err(err).Msg("Failed to process video")
		}
		return result
	}

	logger.Info().Msg("Processing video")

	duration, err := p.Extractor.ProbeDuration(ctx, videoFile)
	if err != nil {
		return fail(OutcomeFailed, fmt.Errorf("failed to probe video: %w", err))
	}
	logger.Debug().Dur("duration", duration).Msg("Probed video")

	start, end := LeadWindow(duration, p.Options.ClipLength)
	lead, err := p.transcribeWindow(ctx, videoFile, workspace, "lead", start, end)
	if err != nil {
		return fail(transcriptionOutcome(err), err)
	}
	logger.Info().Str("text", lead).Msg("Lead transcription")
	p.checkLanguage(ctx, lead, &result)

	title, err := InferTitle(ctx, p.Completer, lead)
	if err != nil {
		return fail(OutcomeFailed, err)
	}
	result.Title = title
	if IsTitleMissing(title) {
		logger.Warn().Str("response", title).Msg("No valid film title found")
		p.routeToError(ctx, videoFile, &result)
		return result
	}
	logger.Info().Str("title", title).Msg("Film identified")

	start, end = TailWindow(duration, p.Options.ClipLength)
	tail, err := p.transcribeWindow(ctx, videoFile, workspace, "tail", start, end)
	if err != nil {
		return fail(transcriptionOutcome(err), err)
	}
	logger.Info().Str("text", tail).Msg("Tail transcription")

	score, err := InferScore(ctx, p.Completer, tail)
	if err != nil {
		return fail(OutcomeFailed, err)
	}
	result.Score = score
	logger.Info().Str("score", score).Msg("Score identified")

	renamed, err := p.rename(videoFile, title, score)
	if err != nil {
		return fail(OutcomeFailed, err)
	}
	result.FinalPath = renamed
	logger.Info().Str("path", renamed).Msg("Video renamed")

	final, err := p.relocate(renamed)
	if err != nil {
		result.Outcome = OutcomeRenamedNotRelocated
		result.Err = err
		logger.Error().Err(err).Str("path", renamed).Str("destination", p.Options.DestinationDir).
			Msg("Video renamed but not moved to destination")
		return result
	}
	result.FinalPath = final
	result.Outcome = OutcomeRelocated
	logger.Info().Str("path", final).Msg("Video moved to destination")

	if p.Options.SaveTranscript {
		p.saveTranscript(ctx, final, lead, tail)
	}
	return result
}

// transcribeWindow extracts [start, end] of videoFile into workspace and
// transcribes it. The clip file is removed before returning.
func (p *Processor) transcribeWindow(ctx context.Context, videoFile, workspace, label string, start, end time.Duration) (string, error) {
	logger := zerolog.Ctx(ctx)
	clipFile := filepath.Join(workspace, fmt.Sprintf("%s_%d.wav", label, time.Now().UnixNano()))

	logger.Info().Str("clip", clipFile).Dur("start", start).Dur("end", end).Msg("Extracting clip")
	if err := p.Extractor.ExtractClip(ctx, videoFile, clipFile, start, end); err != nil {
		return "", fmt.Errorf("failed to extract %s clip: %w", label, err)
	}
	defer func() {
		if err := os.Remove(clipFile); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("clip", clipFile).Msg("Failed to remove clip")
		}
	}()

	text, err := p.Transcriber.TranscribeClip(ctx, clipFile)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe %s clip: %w", label, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s clip: %w", label, ErrEmptyTranscription)
	}
	return text, nil
}

func transcriptionOutcome(err error) Outcome {
	if errors.Is(err, ErrEmptyTranscription) || errors.Is(err, ErrNoAudioStream) {
		return OutcomeSkipped
	}
	return OutcomeFailed
}

func (p *Processor) checkLanguage(ctx context.Context, text string, result *ItemResult) {
	if p.Detector == nil {
		return
	}
	code, ok := p.Detector.DetectLanguage(text)
	if !ok {
		return
	}
	result.Language = code
	logger := zerolog.Ctx(ctx)
	if p.Options.Language != "" && code != p.Options.Language {
		logger.Warn().Str("detected", code).Str("expected", p.Options.Language).Msg("Transcription language differs from the configured one")
		return
	}
	logger.Debug().Str("language", code).Msg("Detected transcription language")
}

// rename gives videoFile its "<title><sep><score>" name in its own directory.
func (p *Processor) rename(videoFile, title, score string) (string, error) {
	ext := filepath.Ext(videoFile)
	name := title + p.Options.ScoreSeparator + ScoreFileToken(score) + ext
	renamed := ResolveUniquePath(filepath.Join(filepath.Dir(videoFile), name))
	if err := renameFunc(videoFile, renamed); err != nil {
		return "", fmt.Errorf("failed to rename video: %w", err)
	}
	return renamed, nil
}

func (p *Processor) relocate(renamed string) (string, error) {
	dest := p.Options.DestinationDir
	if dest == "" || sameDir(filepath.Dir(renamed), dest) {
		return renamed, nil
	}
	final := ResolveUniquePath(filepath.Join(dest, filepath.Base(renamed)))
	if err := MoveFile(renamed, final); err != nil {
		return "", fmt.Errorf("failed to move %q to %q: %w", renamed, dest, err)
	}
	return final, nil
}

// routeToError moves the untouched video into <destination>/error.
func (p *Processor) routeToError(ctx context.Context, videoFile string, result *ItemResult) {
	logger := zerolog.Ctx(ctx)
	errorDir := filepath.Join(p.destinationRoot(videoFile), ErrorFolderName)

	if err := os.MkdirAll(errorDir, 0o755); err != nil {
		result.Outcome = OutcomeRoutingFailed
		result.Err = fmt.Errorf("failed to create error folder: %w", err)
		logger.Error().Err(result.Err).Msg("Video left in place")
		return
	}

	target := ResolveUniquePath(filepath.Join(errorDir, filepath.Base(videoFile)))
	if err := MoveWithRetry(ctx, videoFile, target, p.Options.MoveAttempts, p.Options.MoveDelay, p.Sleep); err != nil {
		result.Outcome = OutcomeRoutingFailed
		result.Err = err
		logger.Error().Err(err).Msg("Could not move unrecognized video to the error folder, left in place")
		return
	}
	result.Outcome = OutcomeRoutedToError
	result.FinalPath = target
	logger.Info().Str("path", target).Msg("Unrecognized video moved to the error folder")
}

func (p *Processor) destinationRoot(videoFile string) string {
	if p.Options.DestinationDir != "" {
		return p.Options.DestinationDir
	}
	return filepath.Dir(videoFile)
}

// saveTranscript writes lead and tail text next to the video. Best-effort.
func (p *Processor) saveTranscript(ctx context.Context, videoPath, lead, tail string) {
	txt := ResolveUniquePath(strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".txt")
	content := fmt.Sprintf("[inicio]\n%s\n\n[final]\n%s\n", lead, tail)
	if err := os.WriteFile(txt, []byte(content), 0o644); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", txt).Msg("Failed to save transcription")
		return
	}
	zerolog.Ctx(ctx).Info().Str("path", txt).Msg("Transcription saved")
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func logSummary(logger *zerolog.Logger, report RunReport) {
	logger.Info().
		Int("total", len(report.Results)).
		Int("relocated", report.Count(OutcomeRelocated)).
		Int("renamed_not_relocated", report.Count(OutcomeRenamedNotRelocated)).
		Int("routed_to_error", report.Count(OutcomeRoutedToError)).
		Int("routing_failed", report.Count(OutcomeRoutingFailed)).
		Int("skipped", report.Count(OutcomeSkipped)).
		Int("failed", report.Count(OutcomeFailed)).
		Msg("Run finished")
}
