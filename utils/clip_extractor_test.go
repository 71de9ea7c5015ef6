package utils

import (
	"slices"
	"testing"
	"time"
)

func TestParseProbeDuration(t *testing.T) {
	d, err := ParseProbeDuration("125.480000\n")
	if err != nil {
		t.Fatalf("ParseProbeDuration failed: %v", err)
	}
	if d != 125480*time.Millisecond {
		t.Errorf("Expected 2m5.48s, got %s", d)
	}

	for _, bad := range []string{"", "N/A", "0", "-3"} {
		if _, err := ParseProbeDuration(bad); err == nil {
			t.Errorf("Expected an error for %q", bad)
		}
	}
}

func TestClipWindows(t *testing.T) {
	tests := []struct {
		duration           time.Duration
		leadStart, leadEnd time.Duration
		tailStart, tailEnd time.Duration
	}{
		{40 * time.Second, 0, 20 * time.Second, 20 * time.Second, 40 * time.Second},
		{10 * time.Second, 0, 10 * time.Second, 0, 10 * time.Second},
		{20 * time.Second, 0, 20 * time.Second, 0, 20 * time.Second},
	}
	for _, tt := range tests {
		ls, le := LeadWindow(tt.duration, 20*time.Second)
		if ls != tt.leadStart || le != tt.leadEnd {
			t.Errorf("%s: lead window [%s, %s]", tt.duration, ls, le)
		}
		ts, te := TailWindow(tt.duration, 20*time.Second)
		if ts != tt.tailStart || te != tt.tailEnd {
			t.Errorf("%s: tail window [%s, %s]", tt.duration, ts, te)
		}
	}
}

func TestExtractClipArgs(t *testing.T) {
	got := ExtractClipArgs("in.mp4", "out.wav", 20*time.Second, 40500*time.Millisecond)
	want := []string{
		"-y", "-v", "error",
		"-ss", "20.000",
		"-i", "in.mp4",
		"-t", "20.500",
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		"out.wav",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
