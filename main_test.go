package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestApplyFlags(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cmd := newRootCmd(&logger)
	if err := cmd.ParseFlags([]string{"--modelo", "medium", "--completer", "openai", "--save-transcript"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := defaultConfig()
	cfg.ReportPath = "keep.xml"
	applyFlags(cmd, cfg, cliFlags{whisperModel: "medium", completer: "openai", saveTranscript: true})

	if cfg.Transcriber != ProviderWhisper || cfg.Whisper.Model != "medium" {
		t.Errorf("Expected --modelo to select whisper medium, got %s/%s", cfg.Transcriber, cfg.Whisper.Model)
	}
	if cfg.Completer != ProviderOpenAI || !cfg.SaveTranscript {
		t.Errorf("Expected completer and save-transcript from flags, got %+v", cfg)
	}
	if cfg.ReportPath != "keep.xml" {
		t.Errorf("Unset flags must not override config, got %q", cfg.ReportPath)
	}
}

func TestResolveMode(t *testing.T) {
	base := t.TempDir()
	upload := filepath.Join(base, "upload")
	if err := os.MkdirAll(upload, 0o755); err != nil {
		t.Fatal(err)
	}
	video := filepath.Join(upload, "review.mp4")
	if err := os.WriteFile(video, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := defaultConfig()
	cfg.BaseDir = base

	mode, err := resolveMode(cfg, "", "")
	if err != nil {
		t.Fatalf("Default mode failed: %v", err)
	}
	if mode.scanDir != upload || mode.tempDir != filepath.Join(base, "temp") || mode.destination != base {
		t.Errorf("Unexpected default mode %+v", mode)
	}

	mode, err = resolveMode(cfg, "", video)
	if err != nil {
		t.Fatalf("File mode failed: %v", err)
	}
	if mode.file != video || mode.tempDir != filepath.Join(upload, "temp") || mode.destination != base {
		t.Errorf("Unexpected file mode %+v", mode)
	}

	folder := t.TempDir()
	mode, err = resolveMode(&Config{}, folder, "")
	if err != nil {
		t.Fatalf("Folder mode failed: %v", err)
	}
	if mode.scanDir != folder || mode.destination != folder {
		t.Errorf("Expected folder mode to rename in place, got %+v", mode)
	}

	if _, err := resolveMode(&Config{}, "", ""); err == nil {
		t.Error("Expected an error without VIDEO_PROCESSING_DIR")
	}
	if _, err := resolveMode(&Config{}, "", video); err == nil {
		t.Error("Expected file mode to require VIDEO_PROCESSING_DIR")
	}
	if _, err := resolveMode(cfg, "", filepath.Join(base, "missing.mp4")); err == nil {
		t.Error("Expected an error for a missing video")
	}
	if _, err := resolveMode(cfg, video, ""); err == nil {
		t.Error("Expected an error when --carpeta is a file")
	}
	empty := defaultConfig()
	empty.BaseDir = t.TempDir()
	if _, err := resolveMode(empty, "", ""); err == nil {
		t.Error("Expected an error when upload/ is missing")
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	if got := newLogger("chatty", io.Discard).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Expected info level for an unknown name, got %s", got)
	}
	if got := newLogger("debug", io.Discard).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", got)
	}
}
