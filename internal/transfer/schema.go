// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer imports site fixtures (layouts, pages, contents and
// redirects) from YAML documents.
package transfer

import (
	"time"

	"github.com/olegiv/ocms-render/internal/model"
)

// Site is the root of a site fixture document.
type Site struct {
	Version   string         `yaml:"version"`
	Regions   []string       `yaml:"regions,omitempty"`
	Layouts   []SiteLayout   `yaml:"layouts,omitempty"`
	Pages     []SitePage     `yaml:"pages,omitempty"`
	Redirects []SiteRedirect `yaml:"redirects,omitempty"`
}

// SiteLayout describes a layout and the regions it declares, in order.
type SiteLayout struct {
	Key     string         `yaml:"key"`
	Name    string         `yaml:"name,omitempty"`
	Path    string         `yaml:"path"`
	Regions []string       `yaml:"regions,omitempty"`
	Options []model.Option `yaml:"options,omitempty"`
}

// SitePage describes a page. Exactly one of Layout and Master must be set;
// both name a layout or page key of the same document. URL defaults to a
// slug of the title.
type SitePage struct {
	Key             string           `yaml:"key"`
	URL             string           `yaml:"url,omitempty"`
	Title           string           `yaml:"title"`
	Status          model.PageStatus `yaml:"status,omitempty"`
	MasterPage      bool             `yaml:"master_page,omitempty"`
	Archived        bool             `yaml:"archived,omitempty"`
	Language        string           `yaml:"language,omitempty"`
	Layout          string           `yaml:"layout,omitempty"`
	Master          string           `yaml:"master,omitempty"`
	MetaTitle       string           `yaml:"meta_title,omitempty"`
	MetaDescription string           `yaml:"meta_description,omitempty"`
	MetaKeywords    string           `yaml:"meta_keywords,omitempty"`
	CustomCSS       string           `yaml:"custom_css,omitempty"`
	CustomJS        string           `yaml:"custom_js,omitempty"`
	Options         []model.Option   `yaml:"options,omitempty"`
	Access          []SiteAccessRule `yaml:"access,omitempty"`
	Contents        []SiteSlot       `yaml:"contents,omitempty"`
}

// SiteAccessRule grants a user or role an access level on a page.
type SiteAccessRule struct {
	Identity string `yaml:"identity"`
	Level    string `yaml:"level"`
	Role     bool   `yaml:"role,omitempty"`
}

// SiteSlot places a content in a region of a page.
type SiteSlot struct {
	Region  string         `yaml:"region"`
	Order   int            `yaml:"order,omitempty"`
	Options []model.Option `yaml:"options,omitempty"`
	Content SiteContent    `yaml:"content"`
}

// SiteContent describes a content version. History entries are older or
// pending versions of the same content.
type SiteContent struct {
	Name       string              `yaml:"name"`
	Kind       model.ContentKind   `yaml:"kind,omitempty"`
	Status     model.ContentStatus `yaml:"status,omitempty"`
	Body       string              `yaml:"body,omitempty"`
	CustomCSS  string              `yaml:"custom_css,omitempty"`
	CustomJS   string              `yaml:"custom_js,omitempty"`
	Widget     string              `yaml:"widget,omitempty"`
	ActiveFrom *time.Time          `yaml:"active_from,omitempty"`
	ActiveTo   *time.Time          `yaml:"active_to,omitempty"`
	Regions    []string            `yaml:"regions,omitempty"`
	Options    []model.Option      `yaml:"options,omitempty"`
	History    []SiteContent       `yaml:"history,omitempty"`
}

// SiteRedirect describes a redirect rule.
type SiteRedirect struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Wildcard bool   `yaml:"wildcard,omitempty"`
	Status   int    `yaml:"status,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// ImportOptions controls an import run.
type ImportOptions struct {
	// DryRun validates and counts entities without writing anything.
	DryRun bool
}

// ImportError reports a problem with one entity of the document.
type ImportError struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (e ImportError) Error() string {
	if e.ID == "" {
		return e.Entity + ": " + e.Message
	}
	return e.Entity + " " + e.ID + ": " + e.Message
}

// ImportResult summarizes an import run.
type ImportResult struct {
	DryRun   bool           `json:"dry_run"`
	Created  map[string]int `json:"created"`
	Errors   []ImportError  `json:"errors,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{DryRun: dryRun, Created: make(map[string]int)}
}

// Count adds n created entities of a kind.
func (r *ImportResult) Count(entity string, n int) {
	r.Created[entity] += n
}
