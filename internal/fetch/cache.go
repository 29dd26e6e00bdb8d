package fetch

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is one cached response: the body plus the validators needed for
// conditional revalidation.
type Entry struct {
	Body         []byte
	ETag         string
	LastModified string
	FetchedAt    time.Time
}

// Fresh reports whether the entry is younger than ttl. A zero or negative
// ttl means every entry is stale and must be revalidated.
func (e *Entry) Fresh(ttl time.Duration) bool {
	if e == nil || ttl <= 0 {
		return false
	}
	return time.Since(e.FetchedAt) < ttl
}

// Cache stores responses by URL with an LRU bound. Freshness is decided
// per lookup against the caller's TTL, not at insert time. Two fetchers
// racing on the same URL may both write; last write wins and both bodies
// are valid.
type Cache struct {
	entries *lru.Cache[string, *Entry]
	now     func() time.Time
}

// NewCache creates a cache bounded to capacity entries.
func NewCache(capacity int) (*Cache, error) {
	entries, err := lru.New[string, *Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries, now: time.Now}, nil
}

// Get returns the entry for url, if any.
func (c *Cache) Get(url string) (*Entry, bool) {
	return c.entries.Get(url)
}

// Put stores a response body with its validators, stamped now.
func (c *Cache) Put(url string, body []byte, etag, lastModified string) {
	c.entries.Add(url, &Entry{
		Body:         body,
		ETag:         etag,
		LastModified: lastModified,
		FetchedAt:    c.now(),
	})
}

// Touch refreshes the entry's timestamp after a 304 revalidation so the
// unchanged body counts as fresh again.
func (c *Cache) Touch(url string) {
	if entry, ok := c.entries.Get(url); ok {
		entry.FetchedAt = c.now()
		c.entries.Add(url, entry)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
