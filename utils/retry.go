package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var (
	// ErrRateLimited can be wrapped by any provider to mark a quota failure.
	ErrRateLimited      = errors.New("rate limited")
	ErrRetriesExhausted = errors.New("retries exhausted on rate limit")
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

// RetryPolicy bounds CallWithRetry. Zero values fall back to the defaults.
type RetryPolicy struct {
	MaxRetries  int
	Delay       time.Duration
	IsRetryable func(error) bool
	Sleep       func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay}
}

// CallWithRetry runs call at most p.MaxRetries times. Only rate-limit errors
// are retried, after a fixed delay; any other error is returned immediately.
func CallWithRetry[T any](ctx context.Context, p RetryPolicy, call func(context.Context) (T, error)) (T, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryable := p.IsRetryable
	if retryable == nil {
		retryable = IsRateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", maxRetries).
			Dur("delay", p.Delay).
			Msg("Quota limit reached, retrying")
		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxRetries, lastErr)
}

// IsRateLimited reports whether err is a quota or throttling failure from
// either remote API.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var gemErr genai.APIError
	if errors.As(err, &gemErr) {
		return gemErr.Code == http.StatusTooManyRequests || gemErr.Status == "RESOURCE_EXHAUSTED"
	}
	var gemErrPtr *genai.APIError
	if errors.As(err, &gemErrPtr) && gemErrPtr != nil {
		return gemErrPtr.Code == http.StatusTooManyRequests || gemErrPtr.Status == "RESOURCE_EXHAUSTED"
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
