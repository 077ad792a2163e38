package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"gastobot/internal/storage"
)

const (
	defaultMaxAttempts = 5
	defaultBackoffBase = 2 * time.Second
	defaultOpDeadline  = 10 * time.Second

	// Uniform jitter in [0.5, 1.5] of the computed backoff.
	jitterPercent = 50
)

type retryPolicy struct {
	maxAttempts uint64
	backoffBase time.Duration
	opDeadline  time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		opDeadline:  defaultOpDeadline,
	}
}

// Option configures a Store.
type Option func(*Store)

// WithRetryPolicy overrides the attempt cap and backoff base. Tests use it
// to keep backoff in the millisecond range.
func WithRetryPolicy(maxAttempts int, backoffBase time.Duration) Option {
	return func(s *Store) {
		if maxAttempts > 0 {
			s.retry.maxAttempts = uint64(maxAttempts)
		}
		if backoffBase > 0 {
			s.retry.backoffBase = backoffBase
		}
	}
}

// WithOpDeadline overrides the per-attempt deadline.
func WithOpDeadline(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retry.opDeadline = d
		}
	}
}

// withRetry runs fn up to the configured attempt cap, backing off
// exponentially with jitter between attempts. Only transient failures are
// retried; each attempt is an independent statement with its own deadline.
func (s *Store) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithJitterPercent(jitterPercent,
		retry.WithMaxRetries(s.retry.maxAttempts-1,
			retry.NewExponential(s.retry.backoffBase)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, s.retry.opDeadline)
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			s.logger.Warn("transient database error",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isTransient classifies connection-level failures as retryable and data,
// integrity, and internal database errors as permanent. Transient SQLSTATE
// classes: 08 connection exception, 53 insufficient resources, 57 operator
// intervention, plus 40001 serialization failures.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrAlreadyExists) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		return strings.HasPrefix(code, "08") ||
			strings.HasPrefix(code, "53") ||
			strings.HasPrefix(code, "57") ||
			code == "40001"
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
