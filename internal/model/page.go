// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PageStatus is the lifecycle stage of a page.
type PageStatus string

// Page statuses
const (
	PageStatusUnpublished PageStatus = "unpublished"
	PageStatusPublished   PageStatus = "published"
	PageStatusPreview     PageStatus = "preview"
)

// Valid reports whether s is a known page status.
func (s PageStatus) Valid() bool {
	switch s {
	case PageStatusUnpublished, PageStatusPublished, PageStatusPreview:
		return true
	}
	return false
}

// Template reference errors reported by Page.Validate.
var (
	ErrNoTemplate        = errors.New("page has neither layout nor master page")
	ErrAmbiguousTemplate = errors.New("page has both layout and master page")
)

// Reference errors reported by repositories loading a page graph.
var (
	ErrMissingMaster = errors.New("master page does not exist")
	ErrMissingLayout = errors.New("layout does not exist")
)

// Page represents a renderable CMS page or a master page.
// Exactly one of Layout and MasterPage is set.
type Page struct {
	ID              uuid.UUID    `json:"id"`
	URL             string       `json:"url"`
	URLHash         string       `json:"url_hash"`
	Title           string       `json:"title"`
	Status          PageStatus   `json:"status"`
	IsArchived      bool         `json:"is_archived"`
	IsMasterPage    bool         `json:"is_master_page"`
	LanguageCode    string       `json:"language_code,omitempty"`
	MetaTitle       string       `json:"meta_title,omitempty"`
	MetaDescription string       `json:"meta_description,omitempty"`
	MetaKeywords    string       `json:"meta_keywords,omitempty"`
	CustomCSS       string       `json:"custom_css,omitempty"`
	CustomJS        string       `json:"custom_js,omitempty"`
	Layout          *Layout      `json:"layout,omitempty"`
	MasterPage      *Page        `json:"master_page,omitempty"`
	Options         []Option     `json:"options,omitempty"`
	AccessRules     []AccessRule `json:"access_rules,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsPublished returns true if the page is published.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// Validate checks the layout/master page invariant.
func (p *Page) Validate() error {
	switch {
	case p.Layout == nil && p.MasterPage == nil:
		return ErrNoTemplate
	case p.Layout != nil && p.MasterPage != nil:
		return ErrAmbiguousTemplate
	}
	return nil
}

// MasterChainIDs returns the IDs of the page followed by every master page
// above it. The walk stops at the first repeated ID so cyclic graphs terminate;
// detecting the cycle is left to the composer.
func (p *Page) MasterChainIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for cur := p; cur != nil && !seen[cur.ID]; cur = cur.MasterPage {
		seen[cur.ID] = true
		ids = append(ids, cur.ID)
	}
	return ids
}

// HasMasterCycle reports whether following MasterPage links revisits a page.
func (p *Page) HasMasterCycle() bool {
	seen := make(map[uuid.UUID]bool)
	for cur := p; cur != nil; cur = cur.MasterPage {
		if seen[cur.ID] {
			return true
		}
		seen[cur.ID] = true
	}
	return false
}

// OptionIdentities returns the identities of all options set on the page.
func (p *Page) OptionIdentities() []OptionIdentity {
	ids := make([]OptionIdentity, 0, len(p.Options))
	for _, o := range p.Options {
		ids = append(ids, o.Identity())
	}
	return ids
}

// PageLookup selects a page either by ID or by URL hash.
type PageLookup struct {
	ID      uuid.UUID
	URLHash string
}

// ByID reports whether the lookup targets an exact page ID.
func (l PageLookup) ByID() bool {
	return l.ID != uuid.Nil
}

// Visibility restricts the statuses a page lookup may return.
type Visibility int

const (
	// VisibilityPublished only returns published pages.
	VisibilityPublished Visibility = iota
	// VisibilityAll returns pages in any status; gating happens downstream.
	VisibilityAll
)

func (v Visibility) String() string {
	if v == VisibilityAll {
		return "all"
	}
	return "published"
}
