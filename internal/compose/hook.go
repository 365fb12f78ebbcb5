// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"context"

	"github.com/olegiv/ocms-render/internal/model"
)

// HookResult tells the caller what to do with a composed page.
type HookResult int

const (
	// HookNormal keeps the composed tree.
	HookNormal HookResult = iota
	// HookForceNotFound discards the tree and reports not found.
	HookForceNotFound
)

func (r HookResult) String() string {
	if r == HookForceNotFound {
		return "force_not_found"
	}
	return "normal"
}

// RetrievalHook is notified after a page tree has been composed.
type RetrievalHook interface {
	OnPageRetrieved(ctx context.Context, tree *Tree, page *model.Page) HookResult
}

// HookFunc adapts a function to RetrievalHook.
type HookFunc func(ctx context.Context, tree *Tree, page *model.Page) HookResult

// OnPageRetrieved calls f.
func (f HookFunc) OnPageRetrieved(ctx context.Context, tree *Tree, page *model.Page) HookResult {
	return f(ctx, tree, page)
}
