// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

const pageColumns = `id, url, url_hash, title, status, is_archived, is_master_page, language_code,
	layout_id, master_page_id, meta_title, meta_description, meta_keywords, custom_css, custom_js,
	created_at, updated_at`

// pageRow is a page row before its references are loaded.
type pageRow struct {
	page     model.Page
	layoutID uuid.UUID
	masterID uuid.UUID
}

func scanPage(row interface{ Scan(...any) error }) (pageRow, error) {
	var (
		r                  pageRow
		status             string
		layoutID, masterID sql.NullString
	)
	err := row.Scan(&r.page.ID, &r.page.URL, &r.page.URLHash, &r.page.Title, &status,
		&r.page.IsArchived, &r.page.IsMasterPage, &r.page.LanguageCode,
		&layoutID, &masterID, &r.page.MetaTitle, &r.page.MetaDescription, &r.page.MetaKeywords,
		&r.page.CustomCSS, &r.page.CustomJS, &r.page.CreatedAt, &r.page.UpdatedAt)
	if err != nil {
		return pageRow{}, err
	}
	r.page.Status = model.PageStatus(status)
	r.layoutID = util.ParseNullUUID(layoutID)
	r.masterID = util.ParseNullUUID(masterID)
	return r, nil
}

// ResolvePage loads a page with its whole master chain, layout, options and,
// when requested, access rules. Visibility only filters the requested page;
// master pages are loaded whatever their status. It returns (nil, nil) when
// no page matches. A master chain that loops back is tied to the page
// already loaded, so the returned graph contains the cycle.
func (q *Queries) ResolvePage(ctx context.Context, lookup model.PageLookup, visibility model.Visibility, withAccessRules bool) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE is_deleted = 0`
	var arg any
	if lookup.ByID() {
		query += ` AND id = ?`
		arg = lookup.ID
	} else {
		query += ` AND url_hash = ?`
		arg = lookup.URLHash
	}
	if visibility == model.VisibilityPublished {
		query += ` AND status = 'published'`
	}

	row, err := scanPage(q.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}

	loaded := make(map[uuid.UUID]*model.Page)
	layouts := make(map[uuid.UUID]*model.Layout)
	root := &row.page

	for cur := root; ; {
		loaded[cur.ID] = cur
		if err := q.completePage(ctx, cur, row.layoutID, withAccessRules, layouts); err != nil {
			return nil, err
		}
		if row.masterID == uuid.Nil {
			return root, nil
		}
		if seen, ok := loaded[row.masterID]; ok {
			cur.MasterPage = seen
			return root, nil
		}

		next, err := scanPage(q.db.QueryRowContext(ctx,
			`SELECT `+pageColumns+` FROM pages WHERE is_deleted = 0 AND id = ?`, row.masterID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %s references master %s: %w", cur.ID, row.masterID, model.ErrMissingMaster)
		}
		if err != nil {
			return nil, fmt.Errorf("loading master page %s: %w", row.masterID, err)
		}
		row = next
		cur.MasterPage = &row.page
		cur = cur.MasterPage
	}
}

func (q *Queries) completePage(ctx context.Context, p *model.Page, layoutID uuid.UUID, withAccessRules bool, layouts map[uuid.UUID]*model.Layout) error {
	opts, err := q.listOptions(ctx, ownerPage, []uuid.UUID{p.ID})
	if err != nil {
		return err
	}
	p.Options = opts[p.ID]

	if layoutID != uuid.Nil {
		layout, ok := layouts[layoutID]
		if !ok {
			if layout, err = q.getLayout(ctx, layoutID); err != nil {
				return err
			}
			layouts[layoutID] = layout
		}
		p.Layout = layout
	}

	if withAccessRules {
		if p.AccessRules, err = q.listAccessRules(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) getLayout(ctx context.Context, id uuid.UUID) (*model.Layout, error) {
	layout := &model.Layout{}
	err := q.db.QueryRowContext(ctx, `SELECT id, name, layout_path FROM layouts WHERE id = ?`, id).
		Scan(&layout.ID, &layout.Name, &layout.LayoutPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layout %s: %w", id, model.ErrMissingLayout)
	}
	if err != nil {
		return nil, fmt.Errorf("loading layout %s: %w", id, err)
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT r.id, r.identifier
		FROM layout_regions lr
		JOIN regions r ON r.id = lr.region_id
		WHERE lr.layout_id = ?
		ORDER BY lr.position, r.identifier`, id)
	if err != nil {
		return nil, fmt.Errorf("loading layout regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Identifier); err != nil {
			return nil, fmt.Errorf("scanning layout region: %w", err)
		}
		layout.Regions = append(layout.Regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading layout regions: %w", err)
	}

	opts, err := q.listOptions(ctx, ownerLayout, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	layout.Options = opts[id]
	return layout, nil
}

func (q *Queries) listAccessRules(ctx context.Context, pageID uuid.UUID) ([]model.AccessRule, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, identity, access_level, is_for_role FROM access_rules WHERE page_id = ? ORDER BY identity`, pageID)
	if err != nil {
		return nil, fmt.Errorf("loading access rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.AccessRule
	for rows.Next() {
		var (
			r     model.AccessRule
			level string
		)
		if err := rows.Scan(&r.ID, &r.Identity, &level, &r.IsForRole); err != nil {
			return nil, fmt.Errorf("scanning access rule: %w", err)
		}
		r.AccessLevel = model.ParseAccessLevel(level)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading access rules: %w", err)
	}
	return rules, nil
}

// PageRef identifies a renderable page.
type PageRef struct {
	ID  uuid.UUID
	URL string
}

// ListPublishedPages returns published non-master pages, most recently
// updated first.
func (q *Queries) ListPublishedPages(ctx context.Context, limit int) ([]PageRef, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, url FROM pages
		WHERE is_deleted = 0 AND status = 'published' AND is_master_page = 0
		ORDER BY updated_at DESC, url
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing published pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []PageRef
	for rows.Next() {
		var ref PageRef
		if err := rows.Scan(&ref.ID, &ref.URL); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
