package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func TestCallWithRetrySucceedsAfterRateLimits(t *testing.T) {
	for k := 0; k < 3; k++ {
		sleeper := &sleepRecorder{}
		attempts := 0
		policy := RetryPolicy{MaxRetries: 3, Delay: 5 * time.Second, Sleep: sleeper.Sleep}

		got, err := CallWithRetry(context.Background(), policy, func(context.Context) (string, error) {
			attempts++
			if attempts <= k {
				return "", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
			}
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if got != "ok" {
			t.Errorf("k=%d: expected 'ok', got %q", k, got)
		}
		if len(sleeper.calls) != k {
			t.Errorf("k=%d: expected %d sleeps, got %d", k, k, len(sleeper.calls))
		}
		for _, d := range sleeper.calls {
			if d != 5*time.Second {
				t.Errorf("k=%d: expected fixed 5s delay, got %s", k, d)
			}
		}
	}
}

func TestCallWithRetryExhausted(t *testing.T) {
	sleeper := &sleepRecorder{}
	attempts := 0
	policy := RetryPolicy{MaxRetries: 4, Delay: time.Second, Sleep: sleeper.Sleep}

	_, err := CallWithRetry(context.Background(), policy, func(context.Context) (int, error) {
		attempts++
		return 0, fmt.Errorf("quota: %w", ErrRateLimited)
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected the last rate-limit error to be wrapped, got %v", err)
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
}

func TestCallWithRetryFailsFastOnOtherErrors(t *testing.T) {
	sleeper := &sleepRecorder{}
	attempts := 0
	authErr := &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
	policy := RetryPolicy{MaxRetries: 3, Delay: time.Second, Sleep: sleeper.Sleep}

	_, err := CallWithRetry(context.Background(), policy, func(context.Context) (string, error) {
		attempts++
		return "", authErr
	})
	if !errors.Is(err, authErr) {
		t.Fatalf("Expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if len(sleeper.calls) != 0 {
		t.Errorf("Expected no sleeps, got %d", len(sleeper.calls))
	}
}

func TestCallWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	policy := RetryPolicy{MaxRetries: 3, Delay: time.Hour}

	_, err := CallWithRetry(ctx, policy, func(context.Context) (string, error) {
		attempts++
		cancel()
		return "", ErrRateLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("wrapped: %w", ErrRateLimited), true},
		{"gemini 429", genai.APIError{Code: 429}, true},
		{"gemini resource exhausted", fmt.Errorf("x: %w", genai.APIError{Status: "RESOURCE_EXHAUSTED"}), true},
		{"gemini 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"openai request 429", &openai.RequestError{HTTPStatusCode: 429}, true},
		{"openai 500", &openai.APIError{HTTPStatusCode: 500}, false},
		{"plain", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		if got := IsRateLimited(tt.err); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
