// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/store"
	"github.com/olegiv/ocms-render/internal/util"
)

// ErrValidation is returned when a document fails validation. The result
// lists the individual problems.
var ErrValidation = errors.New("validation failed")

// Importer writes site fixtures into the store.
type Importer struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewImporter creates a new Importer instance.
func NewImporter(db *sql.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ParseSite decodes a YAML site document. Unknown fields are rejected.
func ParseSite(r io.Reader) (*Site, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("parsing site document: %w", err)
	}
	return &site, nil
}

// ImportFromFile reads and imports a YAML document from path.
func (i *Importer) ImportFromFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return i.ImportFromReader(ctx, f, opts)
}

// ImportFromReader parses and imports a YAML document.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	site, err := ParseSite(r)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, site, opts)
}

// Import validates the site and writes it in a single transaction. Nothing
// is written when validation fails or DryRun is set.
func (i *Importer) Import(ctx context.Context, site *Site, opts ImportOptions) (*ImportResult, error) {
	start := time.Now()
	result := NewImportResult(opts.DryRun)

	if errs := Validate(site); len(errs) > 0 {
		result.Errors = errs
		return result, ErrValidation
	}

	if opts.DryRun {
		countEntities(site, result)
		result.Duration = time.Since(start)
		return result, nil
	}

	err := store.InTx(ctx, i.db, func(q *store.Queries) error {
		return i.write(ctx, q, site, result)
	})
	if err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	i.logger.Info("site imported",
		"layouts", result.Created["layouts"],
		"pages", result.Created["pages"],
		"contents", result.Created["contents"],
		"redirects", result.Created["redirects"],
		"duration", result.Duration)
	return result, nil
}

func (i *Importer) write(ctx context.Context, q *store.Queries, site *Site, result *ImportResult) error {
	regions := make(map[string]model.Region)
	region := func(identifier string) (model.Region, error) {
		if r, ok := regions[identifier]; ok {
			return r, nil
		}
		r, err := q.UpsertRegion(ctx, identifier)
		if err != nil {
			return model.Region{}, err
		}
		regions[identifier] = r
		result.Count("regions", 1)
		return r, nil
	}
	regionList := func(identifiers []string) ([]model.Region, error) {
		out := make([]model.Region, 0, len(identifiers))
		for _, id := range identifiers {
			r, err := region(id)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}

	if _, err := regionList(site.Regions); err != nil {
		return err
	}

	layouts := make(map[string]*model.Layout, len(site.Layouts))
	for _, sl := range site.Layouts {
		rs, err := regionList(sl.Regions)
		if err != nil {
			return err
		}
		name := sl.Name
		if name == "" {
			name = sl.Key
		}
		l := &model.Layout{Name: name, LayoutPath: sl.Path, Regions: rs, Options: sl.Options}
		if err := q.CreateLayout(ctx, l); err != nil {
			return err
		}
		layouts[sl.Key] = l
		result.Count("layouts", 1)
	}

	// Pages are created first and linked to their masters afterwards, so a
	// page may reference a master defined later in the document.
	pages := make(map[string]*model.Page, len(site.Pages))
	for _, sp := range site.Pages {
		p := &model.Page{
			URL:             pageURL(sp),
			Title:           sp.Title,
			Status:          pageStatus(sp.Status),
			IsArchived:      sp.Archived,
			IsMasterPage:    sp.MasterPage,
			LanguageCode:    sp.Language,
			MetaTitle:       sp.MetaTitle,
			MetaDescription: sp.MetaDescription,
			MetaKeywords:    sp.MetaKeywords,
			CustomCSS:       sp.CustomCSS,
			CustomJS:        sp.CustomJS,
			Options:         sp.Options,
		}
		if sp.Layout != "" {
			p.Layout = layouts[sp.Layout]
		}
		for _, ar := range sp.Access {
			p.AccessRules = append(p.AccessRules, model.AccessRule{
				Identity:    ar.Identity,
				AccessLevel: model.ParseAccessLevel(ar.Level),
				IsForRole:   ar.Role,
			})
		}
		if err := q.CreatePage(ctx, p); err != nil {
			return err
		}
		pages[sp.Key] = p
		result.Count("pages", 1)
	}

	for _, sp := range site.Pages {
		if sp.Master == "" {
			continue
		}
		if err := q.SetMasterPage(ctx, pages[sp.Key].ID, pages[sp.Master].ID); err != nil {
			return err
		}
	}

	for _, sp := range site.Pages {
		page := pages[sp.Key]
		for n, slot := range sp.Contents {
			content, err := buildContent(slot.Content, regionList)
			if err != nil {
				return err
			}
			if err := q.CreateContent(ctx, content); err != nil {
				return err
			}
			result.Count("contents", 1+len(content.History))

			r, err := region(slot.Region)
			if err != nil {
				return err
			}
			order := slot.Order
			if order == 0 {
				order = n + 1
			}
			pc := &model.PageContent{PageID: page.ID, Region: r, Content: content, Order: order, Options: slot.Options}
			if err := q.CreatePageContent(ctx, pc); err != nil {
				return err
			}
			result.Count("page_contents", 1)
		}
	}

	for n, sr := range site.Redirects {
		_, err := q.CreateRedirect(ctx, model.Redirect{
			SourcePath: sr.From,
			TargetURL:  sr.To,
			IsWildcard: sr.Wildcard,
			StatusCode: sr.Status,
			Enabled:    !sr.Disabled,
		}, n)
		if err != nil {
			return err
		}
		result.Count("redirects", 1)
	}
	return nil
}

func buildContent(sc SiteContent, regionList func([]string) ([]model.Region, error)) (*model.Content, error) {
	rs, err := regionList(sc.Regions)
	if err != nil {
		return nil, err
	}
	c := &model.Content{
		ID:             uuid.New(),
		Name:           sc.Name,
		Kind:           sc.Kind,
		Status:         contentStatus(sc.Status),
		Body:           sc.Body,
		CustomCSS:      sc.CustomCSS,
		CustomJS:       sc.CustomJS,
		WidgetPath:     sc.Widget,
		ActivationDate: sc.ActiveFrom,
		ExpirationDate: sc.ActiveTo,
		Regions:        rs,
		Options:        sc.Options,
	}
	for _, h := range sc.History {
		version, err := buildContent(h, regionList)
		if err != nil {
			return nil, err
		}
		c.History = append(c.History, *version)
	}
	return c, nil
}

func pageURL(sp SitePage) string {
	if sp.URL != "" {
		return util.NormalizeURL(sp.URL)
	}
	return util.URLFromTitle(sp.Title)
}

func pageStatus(s model.PageStatus) model.PageStatus {
	if s == "" {
		return model.PageStatusPublished
	}
	return s
}

func contentStatus(s model.ContentStatus) model.ContentStatus {
	if s == "" {
		return model.ContentStatusPublished
	}
	return s
}

func countEntities(site *Site, result *ImportResult) {
	result.Count("layouts", len(site.Layouts))
	result.Count("pages", len(site.Pages))
	result.Count("redirects", len(site.Redirects))
	for _, p := range site.Pages {
		result.Count("page_contents", len(p.Contents))
		for _, s := range p.Contents {
			result.Count("contents", 1+len(s.Content.History))
		}
	}
}
