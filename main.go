package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/HugeFrog24/cineclub-renamer/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type cliFlags struct {
	folder         string
	whisperModel   string
	transcriber    string
	completer      string
	configFile     string
	logLevel       string
	reportPath     string
	progress       bool
	saveTranscript bool
}

func main() {
	logger := newLogger("info", os.Stderr)

	// Cancelled on interrupt; deferred cleanup still runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&logger).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Aborted")
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *zerolog.Logger) *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "cineclub [archivo]",
		Short: "Rename film review videos after the film title and score spoken in them",
		Long: "Transcribes the first and last seconds of each video, asks the model for the film's\n" +
			"official title in Spain and the score given, and renames the video to\n" +
			"<Title>_puntos_<score>.<ext> inside VIDEO_PROCESSING_DIR. Videos whose film cannot be\n" +
			"identified are moved to VIDEO_PROCESSING_DIR/error.\n\n" +
			"Without arguments, every video in VIDEO_PROCESSING_DIR/upload is processed.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return run(cmd, logger, flags, file)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.folder, "carpeta", "", "process every video in this folder instead of VIDEO_PROCESSING_DIR/upload")
	f.StringVar(&flags.whisperModel, "modelo", "", "local whisper model ("+strings.Join(utils.WhisperModels, ", ")+"); implies --provider whisper")
	f.StringVar(&flags.transcriber, "provider", "", "transcription provider: gemini, openai or whisper")
	f.StringVar(&flags.completer, "completer", "", "title/score provider: gemini or openai")
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "YAML config file (default $CINECLUB_CONFIG)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&flags.reportPath, "report", "", "write an XML report of the run to this file")
	f.BoolVar(&flags.progress, "progress", false, "show a progress bar in batch mode")
	f.BoolVar(&flags.saveTranscript, "save-transcript", false, "save the transcriptions next to each renamed video")

	cmd.AddCommand(newCheckCmd(logger, &flags))
	return cmd
}

func run(cmd *cobra.Command, base *zerolog.Logger, flags cliFlags, file string) error {
	cfg, err := LoadConfig(flags.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := base.Level(level)
	ctx := logger.WithContext(cmd.Context())

	mode, err := resolveMode(cfg, flags.folder, file)
	if err != nil {
		return err
	}

	processor, err := buildProcessor(ctx, cfg, mode.destination)
	if err != nil {
		return err
	}

	var report utils.RunReport
	if mode.file != "" {
		logger.Info().Str("file", mode.file).Msg("Processing single video")
		report, err = processor.ProcessFile(ctx, mode.file, mode.tempDir)
	} else {
		var progress *batchProgress
		if cfg.Progress {
			progress = newBatchProgress(mode.scanDir, cfg.Extensions)
			defer progress.Finish()
		}
		report, err = processor.ProcessDirectory(ctx, mode.scanDir, mode.tempDir, progress.Record)
	}
	if err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := utils.WriteReport(cfg.ReportPath, report); err != nil {
			logger.Error().Err(err).Msg("Failed to write report")
		} else {
			logger.Info().Str("path", cfg.ReportPath).Msg("Report written")
		}
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *Config, flags cliFlags) {
	f := cmd.Flags()
	if f.Changed("modelo") {
		cfg.Whisper.Model = flags.whisperModel
		cfg.Transcriber = ProviderWhisper
	}
	if f.Changed("provider") {
		cfg.Transcriber = flags.transcriber
	}
	if f.Changed("completer") {
		cfg.Completer = flags.completer
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("report") {
		cfg.ReportPath = flags.reportPath
	}
	if f.Changed("progress") {
		cfg.Progress = flags.progress
	}
	if f.Changed("save-transcript") {
		cfg.SaveTranscript = flags.saveTranscript
	}
}

type runMode struct {
	file        string
	scanDir     string
	tempDir     string
	destination string
}

// resolveMode picks single-file, folder or upload-directory mode.
func resolveMode(cfg *Config, folder, file string) (runMode, error) {
	switch {
	case file != "":
		if cfg.BaseDir == "" {
			return runMode{}, fmt.Errorf("VIDEO_PROCESSING_DIR is not set")
		}
		info, err := os.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			return runMode{}, fmt.Errorf("not a valid video file: %s", file)
		}
		return runMode{
			file:        file,
			tempDir:     filepath.Join(filepath.Dir(file), "temp"),
			destination: cfg.BaseDir,
		}, nil

	case folder != "":
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return runMode{}, fmt.Errorf("not a valid folder: %s", folder)
		}
		dest := cfg.BaseDir
		if dest == "" {
			dest = folder
		}
		return runMode{
			scanDir:     folder,
			tempDir:     filepath.Join(folder, "temp"),
			destination: dest,
		}, nil

	default:
		if cfg.BaseDir == "" {
			return runMode{}, fmt.Errorf("VIDEO_PROCESSING_DIR is not set")
		}
		upload := cfg.UploadDir()
		if info, err := os.Stat(upload); err != nil || !info.IsDir() {
			return runMode{}, fmt.Errorf("upload directory does not exist: %s", upload)
		}
		return runMode{
			scanDir:     upload,
			tempDir:     cfg.TempDir(),
			destination: cfg.BaseDir,
		}, nil
	}
}

func buildProcessor(ctx context.Context, cfg *Config, destination string) (*utils.Processor, error) {
	logger := zerolog.Ctx(ctx)

	var (
		gemini *utils.GeminiClient
		oai    *utils.OpenAIClient
		err    error
	)
	if cfg.uses(ProviderGemini) {
		logger.Info().Str("model", cfg.GeminiModel).Msg("Initializing Gemini client")
		gemini, err = utils.NewGeminiClient(ctx, cfg.GeminiAPIKey, utils.GeminiOptions{
			Model:               cfg.GeminiModel,
			TranscriptionPrompt: utils.TranscriptionPrompt(cfg.Language),
			Retry:               cfg.retryPolicy(),
			PollInterval:        cfg.PollInterval,
			PollTimeout:         cfg.PollTimeout,
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.uses(ProviderOpenAI) {
		logger.Info().Str("model", cfg.OpenAIModel).Msg("Initializing OpenAI client")
		oai, err = utils.NewOpenAIClient(cfg.OpenAIAPIKey, utils.OpenAIOptions{
			BaseURL:  cfg.OpenAIURL,
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
			Retry:    cfg.retryPolicy(),
		})
		if err != nil {
			return nil, err
		}
	}

	var transcriber utils.ClipTranscriber
	switch cfg.Transcriber {
	case ProviderGemini:
		transcriber = gemini
	case ProviderOpenAI:
		transcriber = oai
	case ProviderWhisper:
		logger.Info().Str("model", cfg.Whisper.Model).Msg("Using local whisper model")
		whisper, err := utils.NewWhisperCLITranscriber(cfg.Whisper.CLIPath, cfg.Whisper.ModelsDir, cfg.Whisper.Model, cfg.Language)
		if err != nil {
			return nil, err
		}
		transcriber = whisper
	}

	var completer utils.TextCompleter = gemini
	if cfg.Completer == ProviderOpenAI {
		completer = oai
	}

	extractor := utils.FFmpegClipExtractor{FFmpegPath: cfg.FFmpegPath, FFprobePath: cfg.FFprobePath}
	processor := utils.NewProcessor(extractor, transcriber, completer, utils.ProcessorOptions{
		DestinationDir: destination,
		ClipLength:     cfg.ClipLength,
		ScoreSeparator: cfg.ScoreSeparator,
		Language:       cfg.Language,
		MoveAttempts:   cfg.MoveAttempts,
		MoveDelay:      cfg.MoveDelay,
		SaveTranscript: cfg.SaveTranscript,
		Extensions:     cfg.Extensions,
	})
	processor.Detector = utils.NewLinguaDetector()
	return processor, nil
}
