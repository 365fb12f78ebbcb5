// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus is the lifecycle stage of a content version.
type ContentStatus string

// Content statuses
const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusPreview   ContentStatus = "preview"
)

// ContentKind determines how the content body is turned into markup.
type ContentKind string

// Content kinds
const (
	ContentKindHTML     ContentKind = "html"
	ContentKindMarkdown ContentKind = "markdown"
	ContentKindWidget   ContentKind = "widget"
)

// Content is a versioned block of markup or a widget reference.
// Historical copies carry OriginalID and are only reachable via History.
type Content struct {
	ID             uuid.UUID     `json:"id"`
	OriginalID     uuid.UUID     `json:"original_id,omitempty"`
	Name           string        `json:"name"`
	Kind           ContentKind   `json:"kind"`
	Status         ContentStatus `json:"status"`
	Body           string        `json:"body,omitempty"`
	CustomCSS      string        `json:"custom_css,omitempty"`
	CustomJS       string        `json:"custom_js,omitempty"`
	WidgetPath     string        `json:"widget_path,omitempty"`
	ActivationDate *time.Time    `json:"activation_date,omitempty"`
	ExpirationDate *time.Time    `json:"expiration_date,omitempty"`
	Options        []Option      `json:"options,omitempty"`
	Regions        []Region      `json:"regions,omitempty"`
	History        []Content     `json:"history,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// IsHistory reports whether c is an archived copy of another content.
func (c *Content) IsHistory() bool {
	return c.OriginalID != uuid.Nil
}

// ActiveAt reports whether the activation window contains now.
// The window is half-open: activation is inclusive, expiration exclusive.
func (c *Content) ActiveAt(now time.Time) bool {
	if c.ActivationDate != nil && now.Before(*c.ActivationDate) {
		return false
	}
	if c.ExpirationDate != nil && !now.Before(*c.ExpirationDate) {
		return false
	}
	return true
}

// FindHistory returns the first history entry with the given status.
func (c *Content) FindHistory(status ContentStatus) (*Content, bool) {
	for i := range c.History {
		if c.History[i].Status == status {
			return &c.History[i], true
		}
	}
	return nil, false
}

// PageContent places a content into a region of a page.
type PageContent struct {
	ID      uuid.UUID `json:"id"`
	PageID  uuid.UUID `json:"page_id"`
	Region  Region    `json:"region"`
	Content *Content  `json:"content"`
	Order   int       `json:"order"`
	Options []Option  `json:"options,omitempty"`
}

// ContentFilter narrows which slots the repository returns for a request.
type ContentFilter struct {
	PreviewContentID uuid.UUID
	CanManageContent bool
}

// IsPreview reports whether a specific slot is being previewed.
func (f ContentFilter) IsPreview() bool {
	return f.PreviewContentID != uuid.Nil
}

// WithHistory reports whether history must be loaded eagerly.
func (f ContentFilter) WithHistory() bool {
	return f.CanManageContent || f.IsPreview()
}

// Allows reports whether a slot with the given ID and current content status
// passes the filter.
func (f ContentFilter) Allows(slotID uuid.UUID, status ContentStatus) bool {
	switch {
	case status == ContentStatusPublished:
		return true
	case f.IsPreview() && slotID == f.PreviewContentID:
		return true
	case f.WithHistory() && status == ContentStatusDraft:
		return true
	}
	return false
}
