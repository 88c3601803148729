package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// ErrUnavailable wraps every failure to reach a remote backend.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff paces repeated attempts to reach Redis or MongoDB.
type Backoff struct {
	Attempts int           // total calls, the first included
	Initial  time.Duration // pause after the first failure, doubled after each
	Max      time.Duration // cap on a single pause; zero means none
}

// ConnectBackoff is used when a backend is dialled at startup. Its pauses
// add up to just under four seconds.
var ConnectBackoff = Backoff{Attempts: 5, Initial: 250 * time.Millisecond, Max: 2 * time.Second}

// pause returns the wait after failed attempt n, counting from zero.
func (b Backoff) pause(n int) time.Duration {
	d := b.Initial << n
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return max(d, 0)
}

// Retry calls fn until it succeeds, fails with an error that is not
// [Transient], runs out of attempts or ctx ends. It returns the last error
// from fn, or the context error.
func (b Backoff) Retry(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(b.Attempts, 1)
	var err error
	for n := range attempts {
		if err = fn(ctx); err == nil || !Transient(err) {
			return err
		}
		if n == attempts-1 {
			break
		}
		t := time.NewTimer(b.pause(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

type retryable struct{ error }

func (r retryable) Unwrap() error { return r.error }

// Retryable marks err as transient. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// Transient reports whether err is worth another attempt: errors marked with
// [Retryable], network errors such as refused or timed-out dials, and a
// connection dropped mid-reply. Context cancellation and deadlines never are.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var r retryable
	var ne net.Error
	return errors.As(err, &r) || errors.As(err, &ne) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
