// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(ttl time.Duration, max int) (*Cache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](ttl, max)
	c.now = clock.now
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)

	c.Set("key1", "value1")
	value, ok := c.Get("key1")
	if !ok || value != "value1" {
		t.Errorf("Get(key1) = %q, %v", value, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("expected key2 to be missing")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Keys != 1 {
		t.Errorf("stats = %+v", s)
	}
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate() = %v, want 50", got)
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clock := newTestCache(time.Minute, 0)

	c.Set("key1", "value1")
	clock.t = clock.t.Add(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected key1 before expiry")
	}
	clock.t = clock.t.Add(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key1 to be expired")
	}
	if s := c.Stats(); s.Evictions != 1 || s.Keys != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache(0, 0)
	c.Set("key1", "value1")
	if _, ok := c.Get("key1"); ok {
		t.Error("zero TTL cache stored a value")
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	c.Clear()
	if s := c.Stats(); s.Keys != 0 || s.Evictions != 5 {
		t.Errorf("stats after Clear = %+v", s)
	}
}

func TestCacheBoundPrunesExpiredFirst(t *testing.T) {
	c, clock := newTestCache(time.Minute, 3)

	c.Set("old", "v")
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("a", "v")
	c.Set("b", "v")
	c.Set("c", "v")

	if _, ok := c.Get("a"); !ok {
		t.Error("live entry evicted while an expired one was available")
	}
	if s := c.Stats(); s.Keys != 3 {
		t.Errorf("keys = %d, want 3", s.Keys)
	}

	c.Set("d", "v")
	if s := c.Stats(); s.Keys != 1 {
		t.Errorf("keys after overflow = %d, want 1", s.Keys)
	}
	if _, ok := c.Get("d"); !ok {
		t.Error("newest entry missing after overflow")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%100)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Clear()
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("directory", map[string]any{"q": "jane", "limit": 50})
	b := GenerateKey("directory", map[string]any{"limit": 50, "q": "jane"})
	c := GenerateKey("directory", map[string]any{"q": "john", "limit": 50})
	if a != b {
		t.Errorf("equal params produced different keys: %s %s", a, b)
	}
	if a == c {
		t.Error("different params produced the same key")
	}
}
