package fetch

import (
	"testing"
	"time"
)

func TestCacheFreshness(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	c.Put("http://a.test/page", []byte("body"), `"tag"`, "Mon, 01 Jan 2024 00:00:00 GMT")

	entry, ok := c.Get("http://a.test/page")
	if !ok {
		t.Fatalf("entry missing after Put")
	}
	if !entry.Fresh(time.Minute) {
		t.Fatalf("entry should be fresh within a minute of Put")
	}
	if entry.Fresh(0) {
		t.Fatalf("zero TTL must always read as stale")
	}

	var nilEntry *Entry
	if nilEntry.Fresh(time.Minute) {
		t.Fatalf("nil entry cannot be fresh")
	}
}

func TestCacheTouchRefreshesTimestamp(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	c.Put("http://a.test/page", []byte("body"), "", "")
	entry, _ := c.Get("http://a.test/page")
	entry.FetchedAt = time.Now().Add(-time.Hour)

	if entry.Fresh(time.Minute) {
		t.Fatalf("backdated entry should be stale")
	}

	c.Touch("http://a.test/page")
	entry, _ = c.Get("http://a.test/page")
	if !entry.Fresh(time.Minute) {
		t.Fatalf("touched entry should be fresh again")
	}
	if string(entry.Body) != "body" {
		t.Fatalf("touch must not alter the body")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	c.Put("http://a.test/1", []byte("one"), "", "")
	c.Put("http://a.test/2", []byte("two"), "", "")
	c.Get("http://a.test/1")
	c.Put("http://a.test/3", []byte("three"), "", "")

	if _, ok := c.Get("http://a.test/2"); ok {
		t.Fatalf("least recently used entry should have been evicted")
	}
	if _, ok := c.Get("http://a.test/1"); !ok {
		t.Fatalf("recently used entry should survive")
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}
