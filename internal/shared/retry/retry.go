// Package retry wraps calls to external services that get one more chance
// after a short pause.
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxRetries = 1
)

// Policy is a constant backoff with a retry cap. The zero value uses the defaults.
type Policy struct {
	Backoff    time.Duration
	MaxRetries uint64
}

// Permanent marks err as not worth retrying.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the retries run
// out or ctx is done. The last error is returned unwrapped from Permanent.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	maxRetries := p.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	b := goretry.WithMaxRetries(maxRetries, goretry.NewConstant(backoff))
	err := goretry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
		return goretry.RetryableError(err)
	})

	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}

// Do runs fn under the default policy.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return Policy{}.Do(ctx, fn)
}
