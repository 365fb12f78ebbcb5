// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
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

func newTestMemoryCache(maxSize int) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute, MaxSize: maxSize})
	c.now = clock.Now
	return c, clock
}

func TestMemoryCacheGetSet(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	value := []byte("hello")
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'j'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want %q (stored value must be a copy)", got, "hello")
	}

	got[0] = 'x'
	again, _ := c.Get(ctx, "k")
	if string(again) != "hello" {
		t.Errorf("returned slice aliases the cache: %q", again)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	c, clock := newTestMemoryCache(0)
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), time.Second)
	_ = c.Set(ctx, "default", []byte("2"), 0)

	clock.Advance(time.Second)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry returned, error = %v", err)
	}
	if _, err := c.Get(ctx, "default"); err != nil {
		t.Errorf("default TTL entry expired early: %v", err)
	}

	clock.Advance(time.Minute)
	if _, err := c.Get(ctx, "default"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("default TTL entry did not expire, error = %v", err)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c, clock := newTestMemoryCache(2)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("a"), time.Minute)
	clock.Advance(time.Second)
	_ = c.Set(ctx, "b", []byte("b"), time.Minute)
	_ = c.Set(ctx, "c", []byte("c"), time.Minute)

	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry closest to expiry should have been evicted")
	}
	for _, key := range []string{"b", "c"} {
		if _, err := c.Get(ctx, key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}

	// Overwriting an existing key never evicts.
	_ = c.Set(ctx, "c", []byte("c2"), time.Minute)
	if stats := c.Stats(); stats.Items != 2 {
		t.Errorf("Items = %d, want 2", stats.Items)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	for i := range 3 {
		_ = c.Set(ctx, fmt.Sprintf("page:%d", i), []byte("p"), 0)
	}
	_ = c.Set(ctx, "other", []byte("o"), 0)

	if err := c.DeleteByPrefix(ctx, "page:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	stats := c.Stats()
	if stats.Items != 1 {
		t.Errorf("Items = %d, want 1", stats.Items)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1", stats.Size)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats = %+v, want 2 hits, 1 miss, 1 set", stats)
	}
	if stats.HitRate < 66 || stats.HitRate > 67 {
		t.Errorf("HitRate = %v, want ~66.7", stats.HitRate)
	}

	c.ResetStats()
	if stats := c.Stats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("ResetStats did not reset counters: %+v", stats)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()
	_ = c.Close()
	_ = c.Close()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close error = %v", err)
	}
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close error = %v", err)
	}
}

func TestMemoryCacheConcurrency(t *testing.T) {
	c, _ := newTestMemoryCache(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d-%d", n, j%10)
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if items := c.Stats().Items; items > 50 {
		t.Errorf("Items = %d, exceeds MaxSize", items)
	}
}
