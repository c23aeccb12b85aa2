package provider

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/sethvargo/go-retry"
	"github.com/theimaginaryfoundation/bluum-journal/journal"
)

// Policy configures Retry. A zero MaxRetries means a single attempt.
type Policy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     *slog.Logger
}

// DefaultPolicy backs off from 2s up to 30s.
func DefaultPolicy(maxRetries uint64) Policy {
	return Policy{
		MaxRetries: maxRetries,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Retry runs fn with exponential backoff, retrying only errors that
// journal.IsRetryable accepts. A rate-limited attempt waits an extra BaseDelay
// before the backoff timer starts. The last error is returned unchanged.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	var b retry.Backoff = retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	b = retry.WithMaxRetries(p.MaxRetries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || !journal.IsRetryable(err) {
			return err
		}
		if p.Logger != nil {
			p.Logger.Warn("retryable provider error",
				"attempt", attempt,
				"rate_limited", IsRateLimit(err),
				"server_error", IsServerError(err),
				"error", err,
			)
		}
		if IsRateLimit(err) {
			// Give the quota window a head start before the backoff timer.
			t := time.NewTimer(base)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		return retry.RetryableError(err)
	})
}

// IsRateLimit reports a 429 from the provider.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsServerError reports a 5xx from the provider.
func IsServerError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
