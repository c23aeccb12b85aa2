// Package journal classifies a single journal entry through an external
// text-generation provider and returns a supportive reply.
//
// The package is stateless: reflection history travels with each Request and
// nothing is retained between calls, so one Dispatcher may be shared freely
// across goroutines as long as its Provider is safe for concurrent use.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theimaginaryfoundation/bluum-journal/journal/config"
)

// DefaultTimeout bounds a single provider call when Dispatcher.Timeout is zero.
const DefaultTimeout = 45 * time.Second

// Provider turns a rendered Completion into raw model text.
type Provider interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, c Completion) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, c Completion) (string, error) {
	return f(ctx, c)
}

// Dispatcher maps one Request to one Result.
type Dispatcher struct {
	Provider Provider
	Timeout  time.Duration
	Logger   *slog.Logger

	// Screen forwards a keyword pre-check as an advisory hint.
	Screen bool
}

// Classify validates req, calls the provider once and strictly decodes its answer.
//
// Errors wrap ErrInvalidInput (no provider call was made), ErrProviderUnavailable
// (the call failed or timed out) or ErrMalformedResponse (the answer did not match
// the result record). A failed call never yields a partially populated Result.
func (d Dispatcher) Classify(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if d.Provider == nil {
		return Result{}, errors.New("journal: dispatcher provider is nil")
	}
	logger := d.logger()

	var hint Category
	if d.Screen {
		if h := Screen(req.Entry); h != CategoryUnclear {
			hint = h
		}
	}

	completion, err := Render(req, hint)
	if err != nil {
		return Result{}, err
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("classify request",
		"history_len", len(req.History),
		"entry_chars", len(req.Entry),
		"screening_hint", string(hint),
	)

	logger.Log(ctx, config.LevelTrace, "provider input", "input", completion.Input)

	start := time.Now()
	out, err := d.Provider.Complete(callCtx, completion)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("provider call abandoned by caller", "error", ctx.Err(), "elapsed", elapsed)
			return Result{}, fmt.Errorf("%w: caller context done after %s: %w", ErrProviderUnavailable, elapsed.Round(time.Millisecond), err)
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("provider call timed out", "timeout", timeout, "elapsed", elapsed)
			return Result{}, fmt.Errorf("%w: timed out after %s: %w", ErrProviderUnavailable, timeout, err)
		}
		logger.Warn("provider call failed", "error", err, "elapsed", elapsed)
		return Result{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	logger.Log(ctx, config.LevelTrace, "provider output", "output", out)

	res, err := DecodeResult(out)
	if err != nil {
		logger.Warn("malformed provider output", "error", err, "output_chars", len(out))
		return Result{}, err
	}

	words := WordCount(res.ResponseText)
	if words > MaxResponseWords {
		logger.Warn("response text exceeds advisory length", "words", words, "max_words", MaxResponseWords)
	}
	logger.Info("classified entry", "category", string(res.Category), "words", words, "elapsed", elapsed.Round(time.Millisecond))
	return res, nil
}

func (d Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
