// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

const contentColumns = `c.id, c.original_id, c.name, c.kind, c.status, c.body, c.custom_css, c.custom_js,
	c.widget_path, c.activation_date, c.expiration_date, c.created_at`

func scanContent(row interface{ Scan(...any) error }, extra ...any) (*model.Content, error) {
	var (
		c                      model.Content
		originalID             sql.NullString
		kind, status           string
		activation, expiration sql.NullTime
	)
	dest := append(extra, &c.ID, &originalID, &c.Name, &kind, &status, &c.Body, &c.CustomCSS, &c.CustomJS,
		&c.WidgetPath, &activation, &expiration, &c.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.OriginalID = util.ParseNullUUID(originalID)
	c.Kind = model.ContentKind(kind)
	c.Status = model.ContentStatus(status)
	c.ActivationDate = util.TimePtr(activation)
	c.ExpirationDate = util.TimePtr(expiration)
	return &c, nil
}

// FetchPageContents returns the non-deleted slots of the given pages whose
// content the filter allows. Each slot carries its content with options and
// declared regions, and the content history when the filter asks for it.
func (q *Queries) FetchPageContents(ctx context.Context, pageIDs []uuid.UUID, filter model.ContentFilter) ([]model.PageContent, error) {
	if len(pageIDs) == 0 {
		return nil, nil
	}

	in, args := inClause(pageIDs, func(id uuid.UUID) any { return id.String() })
	rows, err := q.db.QueryContext(ctx, `
		SELECT pc.id, pc.page_id, pc.position, r.id, r.identifier, `+contentColumns+`
		FROM page_contents pc
		JOIN regions r ON r.id = pc.region_id
		JOIN contents c ON c.id = pc.content_id
		WHERE pc.is_deleted = 0 AND c.is_deleted = 0 AND pc.page_id IN `+in+`
		ORDER BY pc.page_id, pc.position, pc.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading page contents: %w", err)
	}

	var slots []model.PageContent
	for rows.Next() {
		var pc model.PageContent
		content, err := scanContent(rows, &pc.ID, &pc.PageID, &pc.Order, &pc.Region.ID, &pc.Region.Identifier)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning page content: %w", err)
		}
		if !filter.Allows(pc.ID, content.Status) {
			continue
		}
		pc.Content = content
		slots = append(slots, pc)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("loading page contents: %w", err)
	}
	_ = rows.Close()

	if len(slots) == 0 {
		return nil, nil
	}
	if err := q.attachContentDetails(ctx, slots, filter.WithHistory()); err != nil {
		return nil, err
	}
	return slots, nil
}

func (q *Queries) attachContentDetails(ctx context.Context, slots []model.PageContent, withHistory bool) error {
	slotIDs := make([]uuid.UUID, 0, len(slots))
	contentIDs := make([]uuid.UUID, 0, len(slots))
	seen := make(map[uuid.UUID]bool)
	for _, s := range slots {
		slotIDs = append(slotIDs, s.ID)
		if !seen[s.Content.ID] {
			seen[s.Content.ID] = true
			contentIDs = append(contentIDs, s.Content.ID)
		}
	}

	var history map[uuid.UUID][]model.Content
	if withHistory {
		var err error
		if history, err = q.listHistory(ctx, contentIDs); err != nil {
			return err
		}
		for _, versions := range history {
			for _, v := range versions {
				contentIDs = append(contentIDs, v.ID)
			}
		}
	}

	contentOpts, err := q.listOptions(ctx, ownerContent, contentIDs)
	if err != nil {
		return err
	}
	slotOpts, err := q.listOptions(ctx, ownerPageContent, slotIDs)
	if err != nil {
		return err
	}
	regions, err := q.listContentRegions(ctx, contentIDs)
	if err != nil {
		return err
	}

	for i := range slots {
		c := slots[i].Content
		c.Options = contentOpts[c.ID]
		c.Regions = regions[c.ID]
		if versions, ok := history[c.ID]; ok {
			c.History = make([]model.Content, len(versions))
			for j, v := range versions {
				v.Options = contentOpts[v.ID]
				v.Regions = regions[v.ID]
				c.History[j] = v
			}
		}
		slots[i].Options = slotOpts[slots[i].ID]
	}
	return nil
}

// listHistory loads the history versions of the given contents, newest first.
func (q *Queries) listHistory(ctx context.Context, contentIDs []uuid.UUID) (map[uuid.UUID][]model.Content, error) {
	in, args := inClause(contentIDs, func(id uuid.UUID) any { return id.String() })
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+contentColumns+`
		FROM contents c
		WHERE c.is_deleted = 0 AND c.original_id IN `+in+`
		ORDER BY c.original_id, c.created_at DESC, c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading content history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[uuid.UUID][]model.Content)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning content history: %w", err)
		}
		out[c.OriginalID] = append(out[c.OriginalID], *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading content history: %w", err)
	}
	return out, nil
}

func (q *Queries) listContentRegions(ctx context.Context, contentIDs []uuid.UUID) (map[uuid.UUID][]model.Region, error) {
	in, args := inClause(contentIDs, func(id uuid.UUID) any { return id.String() })
	rows, err := q.db.QueryContext(ctx, `
		SELECT cr.content_id, r.id, r.identifier
		FROM content_regions cr
		JOIN regions r ON r.id = cr.region_id
		WHERE cr.content_id IN `+in+`
		ORDER BY cr.content_id, cr.position, r.identifier`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading content regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[uuid.UUID][]model.Region)
	for rows.Next() {
		var (
			owner uuid.UUID
			r     model.Region
		)
		if err := rows.Scan(&owner, &r.ID, &r.Identifier); err != nil {
			return nil, fmt.Errorf("scanning content region: %w", err)
		}
		out[owner] = append(out[owner], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading content regions: %w", err)
	}
	return out, nil
}
