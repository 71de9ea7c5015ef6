package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/HugeFrog24/cineclub-renamer/utils"
	"github.com/rs/zerolog"
)

func TestRunCheck(t *testing.T) {
	var got string
	completer := &utils.MockTextCompleter{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			got = prompt
			return "Funciona aprendiendo de datos.", nil
		},
	}

	var out bytes.Buffer
	if err := runCheck(context.Background(), completer, defaultCheckPrompt, &out); err != nil {
		t.Fatalf("runCheck failed: %v", err)
	}
	if got != defaultCheckPrompt {
		t.Errorf("Expected the default prompt, got %q", got)
	}
	if out.String() != "Funciona aprendiendo de datos.\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRunCheckFailures(t *testing.T) {
	failing := &utils.MockTextCompleter{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", utils.ErrRetriesExhausted
		},
	}
	if err := runCheck(context.Background(), failing, "hola", io.Discard); !errors.Is(err, utils.ErrRetriesExhausted) {
		t.Errorf("Expected ErrRetriesExhausted, got %v", err)
	}

	silent := &utils.MockTextCompleter{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) { return "", nil },
	}
	if err := runCheck(context.Background(), silent, "hola", io.Discard); err == nil {
		t.Error("Expected an error for an empty reply")
	}
}

func TestNewCompleterRequiresKey(t *testing.T) {
	cfg := defaultConfig()
	if _, err := newCompleter(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Expected a missing GEMINI_API_KEY error, got %v", err)
	}

	cfg.Completer = ProviderOpenAI
	if _, err := newCompleter(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Expected a missing OPENAI_API_KEY error, got %v", err)
	}

	cfg.OpenAIAPIKey = "key"
	completer, err := newCompleter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newCompleter failed: %v", err)
	}
	if _, ok := completer.(*utils.OpenAIClient); !ok {
		t.Errorf("Expected an OpenAI client, got %T", completer)
	}
}

func TestCheckCommandRegistered(t *testing.T) {
	logger := zerolog.New(io.Discard)
	root := newRootCmd(&logger)
	cmd, _, err := root.Find([]string{"check"})
	if err != nil || cmd.Name() != "check" {
		t.Fatalf("Expected a check subcommand, got %v (%v)", cmd, err)
	}
	if cmd.Flags().Lookup("prompt") == nil {
		t.Error("Expected a --prompt flag")
	}
}
