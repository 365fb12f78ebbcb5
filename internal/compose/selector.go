// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
)

// Selection carries the request facts the version selector depends on.
type Selection struct {
	PreviewContentID uuid.UUID
	CanManageContent bool
	Now              time.Time
}

// SelectionFor extracts a Selection from a render request.
func SelectionFor(req model.RenderRequest) Selection {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	return Selection{
		PreviewContentID: req.PreviewContentID,
		CanManageContent: req.Viewer.CanManageContent,
		Now:              now,
	}
}

func (s Selection) editMode() bool {
	return s.CanManageContent || s.PreviewContentID != uuid.Nil
}

// SelectVersion picks the content version to project for a slot.
//
// Rules are evaluated in order and the first match wins:
//  1. the slot itself is previewed: a Preview history entry, else a Preview
//     current content;
//  2. manage or preview mode: a Draft current content, else a Draft history
//     entry;
//  3. a Published current content, hidden from non-managers outside its
//     activation window (ok is false, err is nil);
//  4. anything else is a ContentResolutionError.
func SelectVersion(sel Selection, slot *model.PageContent) (content *model.Content, ok bool, err error) {
	current := slot.Content
	if current == nil {
		return nil, false, &ContentResolutionError{PageContentID: slot.ID}
	}

	if sel.PreviewContentID != uuid.Nil && sel.PreviewContentID == slot.ID {
		if h, found := current.FindHistory(model.ContentStatusPreview); found {
			return h, true, nil
		}
		if current.Status == model.ContentStatusPreview {
			return current, true, nil
		}
	}

	if sel.editMode() {
		if current.Status == model.ContentStatusDraft {
			return current, true, nil
		}
		if h, found := current.FindHistory(model.ContentStatusDraft); found {
			return h, true, nil
		}
	}

	if current.Status == model.ContentStatusPublished {
		if !sel.CanManageContent && !current.ActiveAt(sel.Now) {
			return nil, false, nil
		}
		return current, true, nil
	}

	return nil, false, &ContentResolutionError{
		PageContentID: slot.ID,
		ContentID:     current.ID,
		Status:        current.Status,
		Preview:       sel.PreviewContentID != uuid.Nil,
		Manage:        sel.CanManageContent,
	}
}
