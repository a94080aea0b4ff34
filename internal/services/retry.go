package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy runs an operation up to MaxAttempts times, sleeping an
// exponentially growing, jittered delay between attempts. Only errors accepted
// by Retryable are retried.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Retryable    func(error) bool
}

// retryJitterPercent spreads each delay over [d/2, 3d/2] before capping.
const retryJitterPercent = 50

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// run out, or ctx is done. The last error from fn is returned unwrapped so
// callers can still inspect its kind.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt < attempts {
			log.Printf("⚠️ %s attempt %d/%d failed: %v. Retrying...", name, attempt, attempts, err)
		}
		return retry.RetryableError(err)
	})
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%s cancelled: %w", name, err)
	}
	return err
}

// backoff builds a fresh backoff for one Do call: InitialDelay doubled per
// retry, jittered, capped at MaxDelay, stopping after MaxAttempts-1 retries.
func (p RetryPolicy) backoff() retry.Backoff {
	retries := uint64(0)
	if p.MaxAttempts > 1 {
		retries = uint64(p.MaxAttempts - 1)
	}

	var b retry.Backoff
	if p.InitialDelay <= 0 {
		b = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	} else {
		b = retry.NewExponential(p.InitialDelay)
		if p.MaxDelay > 0 {
			b = retry.WithCappedDuration(p.MaxDelay, b)
		}
		if p.InitialDelay >= time.Microsecond {
			b = retry.WithJitterPercent(retryJitterPercent, b)
		}
	}
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(retries, b)
}

// ScoringRetryable retries rate limits and transient upstream failures.
// Unauthorized and malformed responses fail immediately, as do 4xx statuses
// other than 408 and 429.
func ScoringRetryable(err error) bool {
	var scoringErr *ScoringError
	if !errors.As(err, &scoringErr) {
		return false
	}

	switch scoringErr.Kind {
	case KindRateLimited:
		return true
	case KindUnavailable:
		code := scoringErr.StatusCode
		return code == 0 || code == 408 || code >= 500
	default:
		return false
	}
}
