// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBuilder(t *testing.T, cfg BuilderConfig) *Builder {
	t.Helper()
	return NewBuilder(NewProjectionFactory(false), cfg, testLogger())
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func region(identifier string) model.Region {
	return model.Region{ID: uuid.New(), Identifier: identifier}
}

func textOption(key, value string) model.Option {
	return model.Option{Key: key, Type: model.OptionTypeText, Value: strPtr(value)}
}

func defaultOption(key, def string) model.Option {
	return model.Option{Key: key, Type: model.OptionTypeText, DefaultValue: def}
}

func layoutPage(title string, layout *model.Layout, opts ...model.Option) *model.Page {
	return &model.Page{
		ID:      uuid.New(),
		URL:     "/" + title + "/",
		Title:   title,
		Status:  model.PageStatusPublished,
		Layout:  layout,
		Options: opts,
	}
}

func childPage(title string, master *model.Page, opts ...model.Option) *model.Page {
	return &model.Page{
		ID:         uuid.New(),
		URL:        "/" + title + "/",
		Title:      title,
		Status:     model.PageStatusPublished,
		MasterPage: master,
		Options:    opts,
	}
}

func publishedContent(body string) *model.Content {
	return &model.Content{
		ID:     uuid.New(),
		Name:   "content",
		Kind:   model.ContentKindHTML,
		Status: model.ContentStatusPublished,
		Body:   body,
	}
}

func slot(page *model.Page, r model.Region, order int, c *model.Content) model.PageContent {
	return model.PageContent{ID: uuid.New(), PageID: page.ID, Region: r, Content: c, Order: order}
}

func anonymous() model.RenderRequest {
	return model.RenderRequest{Viewer: model.NewViewer("", nil), Now: testNow}
}

func manager() model.RenderRequest {
	return model.RenderRequest{Viewer: model.NewViewer("editor1", []string{model.RoleEditor}), Now: testNow}
}
