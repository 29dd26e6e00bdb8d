package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestErrorTypeLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: "connection"},
		{name: "unreachable wrapping refused", err: ErrUnreachable{URL: "http://x.test", Attempts: 4, Err: errors.New("connection refused")}, expected: "unreachable"},
		{name: "other", err: errors.New("some other error"), expected: "connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorTypeLabel(tt.err); got != tt.expected {
				t.Fatalf("errorTypeLabel(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsUnreachable(t *testing.T) {
	base := ErrUnreachable{URL: "http://x.test", Attempts: 4, Err: errors.New("refused")}

	if !IsUnreachable(base) {
		t.Fatalf("bare ErrUnreachable not recognized")
	}
	wrapped := fmt.Errorf("harvesting page: %w", base)
	if !IsUnreachable(wrapped) {
		t.Fatalf("wrapped ErrUnreachable not recognized")
	}
	if IsUnreachable(errors.New("plain")) {
		t.Fatalf("plain error misclassified as unreachable")
	}
}

func TestIsTimeoutUnwrapsThroughUnreachable(t *testing.T) {
	err := ErrUnreachable{URL: "http://x.test", Attempts: 4, Err: &net.DNSError{IsTimeout: true}}
	if !IsTimeout(err) {
		t.Fatalf("timeout buried under ErrUnreachable not detected")
	}
	if !IsUnreachable(err) {
		t.Fatalf("unreachable wrapper lost")
	}
}

