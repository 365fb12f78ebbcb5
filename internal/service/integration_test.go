// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-render/internal/cache"
	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/redirect"
	"github.com/olegiv/ocms-render/internal/store"
	"github.com/olegiv/ocms-render/internal/testutil"
	"github.com/olegiv/ocms-render/internal/transfer"
)

const integrationSite = `
version: "1"
layouts:
  - key: base
    path: layouts/base.html
    regions: [header, main, footer]
    options:
      - {key: theme, type: text, value: light}
      - {key: columns, type: integer, default: "1"}
pages:
  - key: master
    title: Master
    master_page: true
    layout: base
    options:
      - {key: theme, type: text, value: dark}
    contents:
      - region: header
        content: {name: Banner, body: "<h1>Site</h1>"}
  - key: docs
    title: Docs
    master: master
    options:
      - {key: columns, type: integer, value: "2"}
    contents:
      - region: main
        order: 2
        content: {name: Second, body: "<p>second</p>"}
      - region: main
        order: 1
        content:
          name: First
          kind: markdown
          body: "# {{CmsPageTitle}}"
      - region: footer
        content:
          name: Pending
          status: draft
          body: "<p>pending</p>"
redirects:
  - {from: /documentation/*, to: /docs/, wildcard: true}
`

func TestRenderFromStore(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	logger := testutil.TestLoggerSilent()

	_, err := transfer.NewImporter(db, logger).ImportFromReader(ctx, strings.NewReader(integrationSite), transfer.ImportOptions{})
	require.NoError(t, err)

	q := store.New(db)
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	pageCache := cache.NewPageCache(backend, time.Minute, logger)

	resolver := NewPageResolver(q, pageCache, false, nil, logger)
	builder := compose.NewBuilder(compose.NewProjectionFactory(true), compose.BuilderConfig{}, logger)
	renderer := NewRenderer(resolver, q, builder, redirect.NewResolver(q, time.Minute, logger), nil, logger)

	req := model.RenderRequest{URL: "/docs/", Viewer: model.NewViewer("", nil), Now: time.Now()}
	for range 2 { // second pass is served from the page cache
		res, err := renderer.Render(ctx, req, nil)
		require.NoError(t, err)
		tree := res.Tree

		assert.Equal(t, "layouts/base.html", tree.LayoutPath())
		require.Len(t, tree.Chain(), 2)

		opts := tree.Options()
		theme, ok := opts.Get(model.StandardIdentity("theme", model.OptionTypeText))
		require.True(t, ok)
		assert.Equal(t, "dark", theme.Effective())
		columns, ok := opts.Get(model.StandardIdentity("columns", model.OptionTypeInteger))
		require.True(t, ok)
		assert.Equal(t, "2", columns.Effective())

		projections := tree.Root.Projections()
		require.Len(t, projections, 2, "draft content is hidden from anonymous viewers")
		assert.Contains(t, string(projections[0].HTML()), "Docs")
		assert.Equal(t, "<p>second</p>", string(projections[1].HTML()))

		master := tree.Root.Master
		require.NotNil(t, master)
		header, ok := master.Region("header")
		require.True(t, ok)
		require.Len(t, header.Projections, 1)
	}

	res, err := renderer.Render(ctx, model.RenderRequest{URL: "/documentation/setup", Now: time.Now()}, nil)
	require.NoError(t, err)
	assert.True(t, res.IsRedirect())
	assert.Equal(t, "/docs/", res.RedirectURL)
}

func TestRenderFromStoreManagerSeesDrafts(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	logger := testutil.TestLoggerSilent()

	_, err := transfer.NewImporter(db, logger).ImportFromReader(ctx, strings.NewReader(integrationSite), transfer.ImportOptions{})
	require.NoError(t, err)

	q := store.New(db)
	renderer := NewRenderer(NewPageResolver(q, nil, false, nil, logger), q,
		compose.NewBuilder(compose.NewProjectionFactory(false), compose.BuilderConfig{}, logger), nil, nil, logger)

	req := model.RenderRequest{URL: "/docs/", Viewer: model.NewViewer("ed", []string{model.RoleEditor}), Now: time.Now()}
	res, err := renderer.Render(ctx, req, nil)
	require.NoError(t, err)
	assert.Len(t, res.Tree.Root.Projections(), 3)
	assert.True(t, res.Tree.Root.CanEdit)
}
