// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
)

// ListEnabledRedirects returns enabled redirects in match order.
func (q *Queries) ListEnabledRedirects(ctx context.Context) ([]model.Redirect, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, source_path, target_url, is_wildcard, status_code, enabled
		FROM redirects
		WHERE enabled = 1
		ORDER BY position, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing redirects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var redirects []model.Redirect
	for rows.Next() {
		var r model.Redirect
		if err := rows.Scan(&r.ID, &r.SourcePath, &r.TargetURL, &r.IsWildcard, &r.StatusCode, &r.Enabled); err != nil {
			return nil, fmt.Errorf("scanning redirect: %w", err)
		}
		redirects = append(redirects, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing redirects: %w", err)
	}
	return redirects, nil
}

// CreateRedirect inserts a redirect at the given match position. A zero ID
// is replaced by a new one.
func (q *Queries) CreateRedirect(ctx context.Context, r model.Redirect, position int) (model.Redirect, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StatusCode == 0 {
		r.StatusCode = 301
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO redirects (id, source_path, target_url, is_wildcard, status_code, enabled, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourcePath, r.TargetURL, boolInt(r.IsWildcard), r.StatusCode, boolInt(r.Enabled), position)
	if err != nil {
		return model.Redirect{}, fmt.Errorf("creating redirect %s: %w", r.SourcePath, err)
	}
	return r, nil
}
