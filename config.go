package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugeFrog24/cineclub-renamer/utils"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderWhisper = "whisper"
)

// Config is built once in main and handed to every component.
type Config struct {
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`

	// BaseDir holds upload/ and temp/, and receives renamed videos.
	BaseDir string `yaml:"base_dir"`

	Transcriber string `yaml:"transcriber"`
	Completer   string `yaml:"completer"`
	GeminiModel string `yaml:"gemini_model"`
	OpenAIModel string `yaml:"openai_model"`
	OpenAIURL   string `yaml:"openai_base_url"`
	Language    string `yaml:"language"`

	Whisper struct {
		CLIPath   string `yaml:"cli_path"`
		ModelsDir string `yaml:"models_dir"`
		Model     string `yaml:"model"`
	} `yaml:"whisper"`

	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	ClipLength     time.Duration `yaml:"clip_length"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PollTimeout    time.Duration `yaml:"poll_timeout"`
	MoveAttempts   int           `yaml:"move_attempts"`
	MoveDelay      time.Duration `yaml:"move_delay"`
	ScoreSeparator string        `yaml:"score_separator"`
	Extensions     []string      `yaml:"extensions"`
	SaveTranscript bool          `yaml:"save_transcript"`

	LogLevel   string `yaml:"log_level"`
	ReportPath string `yaml:"report_path"`
	Progress   bool   `yaml:"progress"`
}

func defaultConfig() *Config {
	c := &Config{
		Transcriber:    ProviderGemini,
		Completer:      ProviderGemini,
		GeminiModel:    utils.DefaultGeminiModel,
		OpenAIModel:    utils.DefaultOpenAIModel,
		Language:       "es",
		ClipLength:     utils.DefaultClipLength,
		MaxRetries:     utils.DefaultMaxRetries,
		RetryDelay:     utils.DefaultRetryDelay,
		PollInterval:   utils.DefaultPollInterval,
		PollTimeout:    utils.DefaultPollTimeout,
		MoveAttempts:   utils.DefaultMoveAttempts,
		MoveDelay:      utils.DefaultMoveDelay,
		ScoreSeparator: utils.DefaultScoreSeparator,
		Extensions:     append([]string(nil), utils.DefaultVideoExtensions...),
		LogLevel:       "info",
	}
	c.Whisper.CLIPath = "whisper-cli"
	c.Whisper.ModelsDir = "models"
	c.Whisper.Model = "tiny"
	return c
}

// LoadConfig layers defaults, the optional YAML file and the environment.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := defaultConfig()

	if configFile == "" {
		configFile = os.Getenv("CINECLUB_CONFIG")
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setFromEnv(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.BaseDir, "VIDEO_PROCESSING_DIR")
	setFromEnv(&c.GeminiModel, "GEMINI_MODEL")
	setFromEnv(&c.OpenAIModel, "OPENAI_MODEL")
	setFromEnv(&c.Whisper.CLIPath, "WHISPER_CLI")
	setFromEnv(&c.Whisper.ModelsDir, "WHISPER_MODELS_DIR")
	setFromEnv(&c.LogLevel, "CINECLUB_LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the settings needed by the selected providers and
// normalizes extensions to lowercase with a leading dot.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transcriber {
	case ProviderGemini, ProviderOpenAI:
	case ProviderWhisper:
		if !utils.IsWhisperModel(c.Whisper.Model) {
			errs = append(errs, fmt.Errorf("unknown whisper model %q (want one of %s)", c.Whisper.Model, strings.Join(utils.WhisperModels, ", ")))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transcriber %q", c.Transcriber))
	}
	switch c.Completer {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown completer %q", c.Completer))
	}

	if c.uses(ProviderGemini) && c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
	}
	if c.uses(ProviderOpenAI) && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}

	if c.BaseDir != "" {
		if info, err := os.Stat(c.BaseDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("VIDEO_PROCESSING_DIR %q is not a directory", c.BaseDir))
		}
	}

	if c.ClipLength <= 0 {
		errs = append(errs, errors.New("clip_length must be positive"))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, errors.New("max_retries must be positive"))
	}
	if c.MoveAttempts <= 0 {
		errs = append(errs, errors.New("move_attempts must be positive"))
	}
	if c.RetryDelay < 0 || c.MoveDelay < 0 || c.PollInterval <= 0 || c.PollTimeout <= 0 {
		errs = append(errs, errors.New("delays must not be negative and poll settings must be positive"))
	}
	if strings.ContainsAny(c.ScoreSeparator, `/\`) {
		errs = append(errs, fmt.Errorf("score_separator %q must not contain path separators", c.ScoreSeparator))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}

	return errors.Join(errs...)
}

func (c *Config) uses(provider string) bool {
	return c.Transcriber == provider || c.Completer == provider
}

func (c *Config) UploadDir() string { return filepath.Join(c.BaseDir, "upload") }
func (c *Config) TempDir() string   { return filepath.Join(c.BaseDir, "temp") }

func (c *Config) retryPolicy() utils.RetryPolicy {
	return utils.RetryPolicy{MaxRetries: c.MaxRetries, Delay: c.RetryDelay}
}
