// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package cache

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func TestCacheGetSet(t *testing.T) {
	c := New[string](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", "v")
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Errorf("Get(k) = %q, %v", got, ok)
	}

	c.Set("k", "v2")
	if got, _ := c.Get("k"); got != "v2" {
		t.Errorf("overwrite: got %q, want v2", got)
	}

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheExpiration(t *testing.T) {
	clock := newClock()
	c := New[int](time.Minute, WithClock(clock.Now))

	c.Set("a", 1)
	c.SetWithTTL("b", 2, 10*time.Minute)

	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should expire exactly at its TTL")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("custom TTL entry: got %d, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after lazy eviction", c.Len())
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheSetSweepsExpired(t *testing.T) {
	clock := newClock()
	c := New[int](time.Minute, WithClock(clock.Now))

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(2 * time.Minute)

	c.Set("c", 3)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after sweep", c.Len())
	}
	if !c.GetStats().LastCleanup.Equal(clock.Now()) {
		t.Error("LastCleanup not updated")
	}
}

func TestCacheCleanup(t *testing.T) {
	clock := newClock()
	c := New[int](time.Hour, WithClock(clock.Now))
	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)

	clock.Advance(time.Minute)
	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("unexpired entry removed")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	if got := c.GetStats().Evictions; got != 3 {
		t.Errorf("Evictions = %d, want 3", got)
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New[int](time.Minute)
	if c.HitRate() != 0 {
		t.Error("empty cache hit rate should be 0")
	}
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("b")
	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := GenerateKey("k", j%10)
				c.Set(key, n)
				c.Get(key)
				if j%25 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestGenerateKey(t *testing.T) {
	type params struct {
		Source string
		Pool   int
	}
	a := GenerateKey("feed", params{"uniqlo", 100})
	b := GenerateKey("feed", params{"uniqlo", 100})
	c := GenerateKey("feed", params{"zara", 100})

	if a != b {
		t.Error("same params should produce the same key")
	}
	if a == c {
		t.Error("different params should produce different keys")
	}
	if !strings.HasPrefix(a, "feed:") || len(a) != len("feed:")+32 {
		t.Errorf("unexpected key shape %q", a)
	}
}
