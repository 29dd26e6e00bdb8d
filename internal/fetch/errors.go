package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnreachable reports that every attempt at a URL failed at the
// transport level (timeout, refused connection, DNS). It is a skippable
// failure: harvest runs log it and move on to the next page.
type ErrUnreachable struct {
	URL      string
	Attempts int
	Err      error
}

func (e ErrUnreachable) Error() string {
	return fmt.Sprintf("unreachable after %d attempts: %s: %v", e.Attempts, e.URL, e.Err)
}

func (e ErrUnreachable) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err is an exhausted-retries transport failure.
func IsUnreachable(err error) bool {
	var unreachable ErrUnreachable
	return errors.As(err, &unreachable)
}

// IsTimeout reports whether err ultimately stems from a deadline rather
// than a refused or broken connection.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func errorTypeLabel(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case IsTimeout(err):
		return "timeout"
	case IsUnreachable(err):
		return "unreachable"
	default:
		return "connection"
	}
}
