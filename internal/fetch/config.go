package fetch

import (
	"fmt"
	"time"
)

// UserAgent sent on every request, plain and rendered.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the fetch layer's tunables.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	MaxPerDomain   int
	CacheCapacity  int

	BrowserHeadless bool
	BrowserTimeout  time.Duration
	SettleDelay     time.Duration
}

// DefaultConfig returns the defaults used by the service and the CLI.
func DefaultConfig() Config {
	return Config{
		UserAgent:       UserAgent,
		Timeout:         25 * time.Second,
		MaxRetries:      3,
		BackoffInitial:  2 * time.Second,
		BackoffMax:      10 * time.Second,
		MaxPerDomain:    5,
		CacheCapacity:   256,
		BrowserHeadless: true,
		BrowserTimeout:  30 * time.Second,
		SettleDelay:     time.Second,
	}
}

// Validate ensures all configuration values are coherent.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.BackoffInitial <= 0 {
		return fmt.Errorf("backoff initial must be positive")
	}
	if c.BackoffMax > 0 && c.BackoffInitial > c.BackoffMax {
		return fmt.Errorf("backoff initial (%s) cannot exceed backoff max (%s)", c.BackoffInitial, c.BackoffMax)
	}
	if c.MaxPerDomain <= 0 {
		return fmt.Errorf("max per-domain concurrency must be positive")
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive")
	}
	if c.BrowserTimeout <= 0 {
		return fmt.Errorf("browser timeout must be positive")
	}
	return nil
}
