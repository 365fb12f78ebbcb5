// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("OCMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: OCMS_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCacheBasic(t *testing.T) {
	url := skipIfNoRedis(t)

	c, err := NewRedisCacheFromURL(url, "ocms-render-test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	_ = c.Clear(ctx)

	if err := c.Set(ctx, "page:1", []byte("one"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = c.Set(ctx, "page:2", []byte("two"), 0)
	_ = c.Set(ctx, "other", []byte("x"), 0)

	got, err := c.Get(ctx, "page:1")
	if err != nil || string(got) != "one" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := c.DeleteByPrefix(ctx, "page:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, err := c.Get(ctx, "page:2"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after DeleteByPrefix error = %v", err)
	}
	if _, err := c.Get(ctx, "other"); err != nil {
		t.Errorf("unrelated key removed: %v", err)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if stats := c.Stats(); stats.Hits < 2 || stats.Misses < 1 {
		t.Errorf("Stats = %+v", stats)
	}
	_ = c.Clear(ctx)
}

func TestNewRedisCacheRequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
