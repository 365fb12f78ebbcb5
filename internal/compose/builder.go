// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package compose builds render trees for pages: it walks the master page
// chain, chooses a content version for every slot and merges options so the
// setting closest to the requested page wins.
package compose

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/options"
)

// DefaultMaxDepth bounds the master chain when no limit is configured.
const DefaultMaxDepth = 32

// BuilderConfig controls composition.
type BuilderConfig struct {
	// AccessControl enables access rule evaluation and AccessDenied results.
	AccessControl bool
	// MaxDepth is the longest allowed chain of pages including the requested
	// one. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Builder composes page trees. It holds no per-request state and is safe for
// concurrent use.
type Builder struct {
	factory *ProjectionFactory
	cfg     BuilderConfig
	logger  *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(factory *ProjectionFactory, cfg BuilderConfig, logger *slog.Logger) *Builder {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{factory: factory, cfg: cfg, logger: logger}
}

// composition is the read-only input shared by every level of one Compose call.
type composition struct {
	req       model.RenderRequest
	sel       Selection
	props     PageProperties
	slots     map[uuid.UUID][]*model.PageContent
	requested uuid.UUID
}

// path is the chain of pages between the requested page and the node being
// composed. Appending never aliases the parent's backing array.
type path []*model.Page

func (p path) contains(id uuid.UUID) bool {
	return slices.ContainsFunc(p, func(pg *model.Page) bool { return pg.ID == id })
}

func (p path) with(page *model.Page) path {
	return append(p[:len(p):len(p)], page)
}

// Compose builds the render tree of page. slots must hold the page contents
// of the page and of every master page above it; slots of other pages are
// ignored.
func (b *Builder) Compose(req model.RenderRequest, page *model.Page, slots []model.PageContent) (*Tree, error) {
	if page == nil {
		return nil, ErrNotFound
	}
	if err := b.checkVisible(req, page); err != nil {
		return nil, err
	}

	c := &composition{
		req:       req,
		sel:       SelectionFor(req),
		props:     PropertiesOf(page),
		slots:     groupSlots(slots),
		requested: page.ID,
	}

	root, err := b.compose(c, page, nil)
	if err != nil {
		return nil, err
	}
	tree := &Tree{Root: root}

	b.logger.Debug("composed page",
		"page_id", page.ID,
		"url", page.URL,
		"depth", len(tree.Chain()),
		"projections", len(tree.Projections()))
	return tree, nil
}

// checkVisible applies the status gate to the requested page.
func (b *Builder) checkVisible(req model.RenderRequest, page *model.Page) error {
	v := req.Viewer
	if !page.IsPublished() && !req.IsPreview() && !v.Authenticated {
		if b.cfg.AccessControl {
			return fmt.Errorf("page %s is %s: %w", page.ID, page.Status, ErrAccessDenied)
		}
		return fmt.Errorf("page %s is %s: %w", page.ID, page.Status, ErrNotFound)
	}
	// With access control on, the page's access rules decide in compose.
	if !page.IsPublished() && page.Status != model.PageStatusPreview &&
		!v.HasContentAccess && !b.cfg.AccessControl {
		return fmt.Errorf("page %s is %s: %w", page.ID, page.Status, ErrNotFound)
	}
	return nil
}

func (b *Builder) compose(c *composition, node *model.Page, ancestors path) (*Node, error) {
	if ancestors.contains(node.ID) {
		return nil, &ConfigurationError{PageID: node.ID, URL: node.URL, Reason: "master page chain contains a cycle"}
	}
	if len(ancestors) >= b.cfg.MaxDepth {
		return nil, &ConfigurationError{
			PageID: node.ID,
			URL:    node.URL,
			Reason: fmt.Sprintf("master page chain deeper than %d", b.cfg.MaxDepth),
		}
	}
	if err := node.Validate(); err != nil {
		return nil, &ConfigurationError{PageID: node.ID, URL: node.URL, Reason: "invalid template reference", Err: err}
	}

	isRequested := node.ID == c.requested && len(ancestors) == 0
	rules := dedupeRules(node.AccessRules)
	readOnly := false
	if b.cfg.AccessControl {
		level := EvaluateAccess(rules, c.req.Viewer)
		if level == model.AccessDeny && isRequested {
			return nil, fmt.Errorf("page %s: %w", node.ID, ErrAccessDenied)
		}
		readOnly = level < model.AccessReadWrite
	}

	excluded := options.IdentitiesOf(ancestors...)
	out := &Node{
		PageID:           node.ID,
		URL:              node.URL,
		Title:            node.Title,
		Status:           node.Status,
		IsMasterPage:     node.IsMasterPage,
		LanguageCode:     node.LanguageCode,
		AccessRules:      rules,
		ReadOnly:         readOnly,
		CanManageContent: c.req.Viewer.CanManageContent,
		Metadata:         metadataOf(node, c.req.Viewer.CanManageContent),
	}
	out.RegionsEditable = isRequested
	out.CanEdit = out.CanManageContent && out.RegionsEditable

	var regions []model.Region
	if node.Layout != nil {
		out.LayoutPath = node.Layout.LayoutPath
		out.Options = options.Merge(node.Layout.Options, node.Options).Without(excluded)
		regions = distinctRegions(node.Layout.Regions)
	} else {
		master, err := b.compose(c, node.MasterPage, ancestors.with(node))
		if err != nil {
			return nil, err
		}
		out.Master = master
		out.Options = options.Merge(node.Options).Without(excluded)
		regions = regionsDefinedBy(c.slots[node.MasterPage.ID])
	}
	out.Resources = resourcesOf(node.CustomCSS, node.CustomJS, out.Options)

	projections, err := b.project(c, c.slots[node.ID])
	if err != nil {
		return nil, err
	}
	out.Regions, out.projections = placeProjections(regions, projections)
	return out, nil
}

// project selects a version for each slot and builds its projection. Slots
// with nothing to show are skipped.
func (b *Builder) project(c *composition, slots []*model.PageContent) ([]*Projection, error) {
	out := make([]*Projection, 0, len(slots))
	for _, slot := range slots {
		content, ok, err := SelectVersion(c.sel, slot)
		if err != nil {
			return nil, err
		}
		if !ok {
			b.logger.Debug("slot hidden outside activation window", "slot_id", slot.ID, "page_id", slot.PageID)
			continue
		}
		p, err := b.factory.Create(slot, content, options.Merge(content.Options, slot.Options), c.props)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// placeProjections fills the regions in declaration order and returns every
// projection ordered by region, then by slot order. Projections of undeclared
// regions go last.
func placeProjections(regions []model.Region, projections []*Projection) ([]RegionNode, []*Projection) {
	nodes := make([]RegionNode, len(regions))
	index := make(map[uuid.UUID]int, len(regions))
	for i, r := range regions {
		nodes[i] = RegionNode{ID: r.ID, Identifier: r.Identifier, Projections: []*Projection{}}
		index[r.ID] = i
	}

	var orphans []*Projection
	for _, p := range projections {
		i, ok := index[p.region.ID]
		if !ok {
			orphans = append(orphans, p)
			continue
		}
		nodes[i].Projections = append(nodes[i].Projections, p)
	}

	ordered := make([]*Projection, 0, len(projections))
	for _, n := range nodes {
		ordered = append(ordered, n.Projections...)
	}
	return nodes, append(ordered, orphans...)
}

// groupSlots indexes slots by owning page, sorted by order then ID and with
// duplicate slot IDs removed.
func groupSlots(slots []model.PageContent) map[uuid.UUID][]*model.PageContent {
	byPage := make(map[uuid.UUID][]*model.PageContent)
	seen := make(map[uuid.UUID]bool, len(slots))
	for i := range slots {
		s := &slots[i]
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		byPage[s.PageID] = append(byPage[s.PageID], s)
	}
	for _, list := range byPage {
		slices.SortStableFunc(list, func(a, b *model.PageContent) int {
			if c := cmp.Compare(a.Order, b.Order); c != 0 {
				return c
			}
			return cmp.Compare(a.ID.String(), b.ID.String())
		})
	}
	return byPage
}

// regionsDefinedBy returns the distinct regions declared by the contents of
// a master page's slots, in slot order.
func regionsDefinedBy(slots []*model.PageContent) []model.Region {
	var regions []model.Region
	for _, s := range slots {
		if s.Content != nil {
			regions = append(regions, s.Content.Regions...)
		}
	}
	return distinctRegions(regions)
}

func distinctRegions(regions []model.Region) []model.Region {
	out := make([]model.Region, 0, len(regions))
	seen := make(map[uuid.UUID]bool, len(regions))
	for _, r := range regions {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func metadataOf(p *model.Page, manage bool) []MetaData {
	var meta []MetaData
	if manage {
		meta = append(meta, MetaData{HTTPEquiv: "X-UA-Compatible", Content: "IE=edge,chrome=1"})
	}
	if p.MetaTitle != "" {
		meta = append(meta, MetaData{Name: "title", Content: p.MetaTitle})
	}
	if p.MetaDescription != "" {
		meta = append(meta, MetaData{Name: "description", Content: p.MetaDescription})
	}
	if p.MetaKeywords != "" {
		meta = append(meta, MetaData{Name: "keywords", Content: p.MetaKeywords})
	}
	return meta
}
