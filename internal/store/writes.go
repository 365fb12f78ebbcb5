// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

// UpsertRegion returns the region with the given identifier, creating it
// when missing.
func (q *Queries) UpsertRegion(ctx context.Context, identifier string) (model.Region, error) {
	r := model.Region{ID: uuid.New(), Identifier: identifier}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO regions (id, identifier) VALUES (?, ?)
		ON CONFLICT(identifier) DO UPDATE SET identifier = excluded.identifier
		RETURNING id`, r.ID, identifier).Scan(&r.ID)
	if err != nil {
		return model.Region{}, fmt.Errorf("upserting region %q: %w", identifier, err)
	}
	return r, nil
}

// CreateLayout inserts a layout with its regions and options. Regions must
// already exist.
func (q *Queries) CreateLayout(ctx context.Context, l *model.Layout) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO layouts (id, name, layout_path) VALUES (?, ?, ?)`,
		l.ID, l.Name, l.LayoutPath); err != nil {
		return fmt.Errorf("creating layout %q: %w", l.Name, err)
	}
	for i, r := range l.Regions {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO layout_regions (layout_id, region_id, position) VALUES (?, ?, ?)`,
			l.ID, r.ID, i); err != nil {
			return fmt.Errorf("linking region %q to layout %q: %w", r.Identifier, l.Name, err)
		}
	}
	return q.ReplaceOptions(ctx, ownerLayout, l.ID, l.Options)
}

// CreatePage inserts a page with its options and access rules. The page's
// Layout and MasterPage only contribute their IDs and must already exist.
func (q *Queries) CreatePage(ctx context.Context, p *model.Page) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	if p.URLHash == "" {
		p.URLHash = util.URLHash(p.URL)
	}

	var layoutID, masterID uuid.UUID
	if p.Layout != nil {
		layoutID = p.Layout.ID
	}
	if p.MasterPage != nil {
		masterID = p.MasterPage.ID
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO pages (id, url, url_hash, title, status, is_archived, is_master_page, language_code,
			layout_id, master_page_id, meta_title, meta_description, meta_keywords, custom_css, custom_js,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.URL, p.URLHash, p.Title, string(p.Status), boolInt(p.IsArchived), boolInt(p.IsMasterPage),
		p.LanguageCode, util.NullUUID(layoutID), util.NullUUID(masterID), p.MetaTitle, p.MetaDescription,
		p.MetaKeywords, p.CustomCSS, p.CustomJS, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating page %q: %w", p.URL, err)
	}

	for i := range p.AccessRules {
		r := &p.AccessRules[i]
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO access_rules (id, page_id, identity, access_level, is_for_role) VALUES (?, ?, ?, ?, ?)`,
			r.ID, p.ID, r.Identity, r.AccessLevel.String(), boolInt(r.IsForRole)); err != nil {
			return fmt.Errorf("creating access rule for page %q: %w", p.URL, err)
		}
	}
	return q.ReplaceOptions(ctx, ownerPage, p.ID, p.Options)
}

// SetMasterPage points a page at a master page. It is used when pages are
// created before the master they reference.
func (q *Queries) SetMasterPage(ctx context.Context, pageID, masterID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE pages SET master_page_id = ?, updated_at = ? WHERE id = ?`,
		util.NullUUID(masterID), time.Now().UTC(), pageID)
	if err != nil {
		return fmt.Errorf("setting master of page %s: %w", pageID, err)
	}
	return nil
}

// CreateContent inserts a content with its options, declared regions and
// history versions.
func (q *Queries) CreateContent(ctx context.Context, c *model.Content) error {
	if err := q.insertContent(ctx, c, uuid.Nil); err != nil {
		return err
	}
	for i := range c.History {
		if err := q.insertContent(ctx, &c.History[i], c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) insertContent(ctx context.Context, c *model.Content, originalID uuid.UUID) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Kind == "" {
		c.Kind = model.ContentKindHTML
	}
	c.OriginalID = originalID

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO contents (id, original_id, name, kind, status, body, custom_css, custom_js,
			widget_path, activation_date, expiration_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, util.NullUUID(originalID), c.Name, string(c.Kind), string(c.Status), c.Body, c.CustomCSS,
		c.CustomJS, c.WidgetPath, util.NullTimeFromPtr(c.ActivationDate), util.NullTimeFromPtr(c.ExpirationDate),
		c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating content %q: %w", c.Name, err)
	}

	for i, r := range c.Regions {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO content_regions (content_id, region_id, position) VALUES (?, ?, ?)`,
			c.ID, r.ID, i); err != nil {
			return fmt.Errorf("linking region %q to content %q: %w", r.Identifier, c.Name, err)
		}
	}
	return q.ReplaceOptions(ctx, ownerContent, c.ID, c.Options)
}

// CreatePageContent places a content in a region of a page.
func (q *Queries) CreatePageContent(ctx context.Context, pc *model.PageContent) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	if pc.Content == nil {
		return fmt.Errorf("page content %s has no content", pc.ID)
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO page_contents (id, page_id, content_id, region_id, position)
		VALUES (?, ?, ?, ?, ?)`,
		pc.ID, pc.PageID, pc.Content.ID, pc.Region.ID, pc.Order)
	if err != nil {
		return fmt.Errorf("creating page content in region %q: %w", pc.Region.Identifier, err)
	}
	return q.ReplaceOptions(ctx, ownerPageContent, pc.ID, pc.Options)
}
