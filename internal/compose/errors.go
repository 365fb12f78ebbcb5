// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
)

// Sentinel errors returned by page composition. Typed errors below match
// them through errors.Is.
var (
	// ErrConfiguration marks broken page templates: no layout and no master,
	// both at once, or a master chain that loops.
	ErrConfiguration = errors.New("page configuration error")

	// ErrContentResolution marks a fetched slot for which no content version
	// could be chosen.
	ErrContentResolution = errors.New("content version not resolved")

	// ErrNotFound is returned when no page is visible for the request.
	ErrNotFound = errors.New("page not found")

	// ErrAccessDenied is returned when access rules deny the viewer.
	ErrAccessDenied = errors.New("access denied")
)

// ConfigurationError describes an invalid master chain or template setup.
type ConfigurationError struct {
	PageID uuid.UUID
	URL    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("page %s (%s): %s: %v", e.PageID, e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("page %s (%s): %s", e.PageID, e.URL, e.Reason)
}

// Is reports ErrConfiguration as a match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ContentResolutionError reports the slot that resolved to nothing.
type ContentResolutionError struct {
	PageContentID uuid.UUID
	ContentID     uuid.UUID
	Status        model.ContentStatus
	Preview       bool
	Manage        bool
}

func (e *ContentResolutionError) Error() string {
	return fmt.Sprintf("no content version to project for slot %s (content %s, status %q, preview=%t, manage=%t)",
		e.PageContentID, e.ContentID, e.Status, e.Preview, e.Manage)
}

// Is reports ErrContentResolution as a match.
func (e *ContentResolutionError) Is(target error) bool {
	return target == ErrContentResolution
}
