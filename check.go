package main

import (
	"context"
	"fmt"
	"io"

	"github.com/HugeFrog24/cineclub-renamer/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultCheckPrompt = "¿Cómo funciona la inteligencia artificial?"

func newCheckCmd(logger *zerolog.Logger, flags *cliFlags) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Send one prompt to the configured completer to verify the API key and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(flags.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", cfg.LogLevel)
			}
			ctx := logger.Level(level).WithContext(cmd.Context())

			completer, err := newCompleter(ctx, cfg)
			if err != nil {
				return err
			}
			return runCheck(ctx, completer, prompt, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", defaultCheckPrompt, "prompt to send")
	return cmd
}

// newCompleter builds only the client the completer setting names.
func newCompleter(ctx context.Context, cfg *Config) (utils.TextCompleter, error) {
	switch cfg.Completer {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return utils.NewGeminiClient(ctx, cfg.GeminiAPIKey, utils.GeminiOptions{
			Model: cfg.GeminiModel,
			Retry: cfg.retryPolicy(),
		})
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return utils.NewOpenAIClient(cfg.OpenAIAPIKey, utils.OpenAIOptions{
			BaseURL: cfg.OpenAIURL,
			Model:   cfg.OpenAIModel,
			Retry:   cfg.retryPolicy(),
		})
	default:
		return nil, fmt.Errorf("unknown completer %q", cfg.Completer)
	}
}

func runCheck(ctx context.Context, completer utils.TextCompleter, prompt string, out io.Writer) error {
	zerolog.Ctx(ctx).Info().Str("prompt", prompt).Msg("Checking completer")
	reply, err := completer.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if reply == "" {
		return fmt.Errorf("check failed: empty reply")
	}
	_, err = fmt.Fprintln(out, reply)
	return err
}
