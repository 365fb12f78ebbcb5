// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types read by the page composition
// engine: pages, layouts, regions, content slots, options and access rules.
package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User roles recognised when building a viewer.
const (
	RoleAdmin     = "admin"
	RoleEditor    = "editor"
	RolePublisher = "publisher"
)

// Viewer describes who is asking for a page.
type Viewer struct {
	Authenticated    bool
	UserName         string
	Roles            []string
	CanManageContent bool
	HasContentAccess bool
}

// HasRole returns true if the viewer holds the role.
func (v Viewer) HasRole(role string) bool {
	return slices.Contains(v.Roles, role)
}

// IsAdmin returns true if the viewer has the admin role.
func (v Viewer) IsAdmin() bool {
	return v.HasRole(RoleAdmin)
}

// NewViewer derives content privileges from roles.
func NewViewer(userName string, roles []string) Viewer {
	v := Viewer{
		Authenticated: userName != "",
		UserName:      userName,
		Roles:         roles,
	}
	v.CanManageContent = v.Authenticated && (v.HasRole(RoleAdmin) || v.HasRole(RoleEditor))
	v.HasContentAccess = v.CanManageContent || (v.Authenticated && v.HasRole(RolePublisher))
	return v
}

// RenderRequest is one request to render a page.
type RenderRequest struct {
	PageID           uuid.UUID
	URL              string
	PreviewContentID uuid.UUID
	Viewer           Viewer
	Now              time.Time
}

// IsPreview reports whether the request previews a content slot.
func (r RenderRequest) IsPreview() bool {
	return r.PreviewContentID != uuid.Nil
}

// Visibility returns the page statuses the requester may load.
func (r RenderRequest) Visibility() Visibility {
	if !r.Viewer.Authenticated && !r.IsPreview() {
		return VisibilityPublished
	}
	return VisibilityAll
}

// ContentFilter returns the slot filter for the request mode.
func (r RenderRequest) ContentFilter() ContentFilter {
	return ContentFilter{
		PreviewContentID: r.PreviewContentID,
		CanManageContent: r.Viewer.CanManageContent,
	}
}
