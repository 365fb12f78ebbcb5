// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"
)

type testItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedCache(t *testing.T) {
	backend, _ := newTestMemoryCache(0)
	tc := NewTypedCache[testItem](backend, time.Minute)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "k"); ok {
		t.Error("Get on empty cache returned ok")
	}

	if err := tc.Set(ctx, "k", &testItem{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := tc.Get(ctx, "k")
	if !ok || got.Name != "a" || got.Count != 2 {
		t.Errorf("Get = %+v, %v", got, ok)
	}

	_ = backend.Set(ctx, "bad", []byte("{not json"), 0)
	if _, ok := tc.Get(ctx, "bad"); ok {
		t.Error("undecodable entry should be a miss")
	}

	_ = backend.Delete(ctx, "k")
	if _, ok := tc.Get(ctx, "k"); ok {
		t.Error("deleted entry still present")
	}
}
