// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/metrics"
	"github.com/olegiv/ocms-render/internal/model"
)

// RedirectSource finds a redirect for a URL that has no page.
type RedirectSource interface {
	Resolve(ctx context.Context, url string) (target string, status int, ok bool)
}

// Result is the outcome of a successful render: a composed tree or a
// redirect.
type Result struct {
	Tree           *compose.Tree
	Page           *model.Page
	RedirectURL    string
	RedirectStatus int
}

// IsRedirect reports whether the result is a redirect.
func (r *Result) IsRedirect() bool {
	return r.RedirectURL != ""
}

// Renderer resolves a page, composes its tree and applies the retrieval
// hook. Redirects are consulted when no page matches a URL request.
type Renderer struct {
	resolver  *PageResolver
	repo      PageRepository
	builder   *compose.Builder
	redirects RedirectSource
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewRenderer creates a Renderer. redirects and m may be nil.
func NewRenderer(resolver *PageResolver, repo PageRepository, builder *compose.Builder, redirects RedirectSource, m *metrics.Metrics, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		resolver:  resolver,
		repo:      repo,
		builder:   builder,
		redirects: redirects,
		metrics:   m,
		logger:    logger,
	}
}

// Render handles one render request. hook may be nil. Errors match
// compose.ErrNotFound, compose.ErrAccessDenied, compose.ErrConfiguration or
// compose.ErrContentResolution, or wrap a repository failure.
func (s *Renderer) Render(ctx context.Context, req model.RenderRequest, hook compose.RetrievalHook) (*Result, error) {
	start := time.Now()
	res, err := s.render(ctx, req, hook)
	outcome := outcomeOf(res, err)
	s.metrics.ObserveRender(outcome, time.Since(start))

	switch outcome {
	case metrics.OutcomeConfigurationError, metrics.OutcomeContentError, metrics.OutcomeError:
		s.logger.Error("page render failed",
			"page_id", req.PageID,
			"url", req.URL,
			"preview", req.IsPreview(),
			"error", err)
	default:
		s.logger.Debug("page render",
			"page_id", req.PageID,
			"url", req.URL,
			"outcome", outcome,
			"duration", time.Since(start))
	}
	return res, err
}

func (s *Renderer) render(ctx context.Context, req model.RenderRequest, hook compose.RetrievalHook) (*Result, error) {
	page, err := s.resolver.Resolve(ctx, req)
	if errors.Is(err, compose.ErrNotFound) {
		if res, ok := s.redirect(ctx, req); ok {
			return res, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.FetchPageContents(ctx, page.MasterChainIDs(), req.ContentFilter())
	if err != nil {
		return nil, fmt.Errorf("fetching page contents: %w", err)
	}

	tree, err := s.builder.Compose(req, page, slots)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveChainDepth(len(tree.Chain()))

	if hook != nil && hook.OnPageRetrieved(ctx, tree, page) == compose.HookForceNotFound {
		return nil, fmt.Errorf("page %s hidden by retrieval hook: %w", page.ID, compose.ErrNotFound)
	}
	return &Result{Tree: tree, Page: page}, nil
}

// redirect only applies to URL requests.
func (s *Renderer) redirect(ctx context.Context, req model.RenderRequest) (*Result, bool) {
	if s.redirects == nil || req.URL == "" || LookupFor(req).ByID() {
		return nil, false
	}
	target, status, ok := s.redirects.Resolve(ctx, req.URL)
	if !ok {
		return nil, false
	}
	return &Result{RedirectURL: target, RedirectStatus: status}, true
}

func outcomeOf(res *Result, err error) string {
	switch {
	case err == nil && res.IsRedirect():
		return metrics.OutcomeRedirect
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, compose.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, compose.ErrAccessDenied):
		return metrics.OutcomeAccessDenied
	case errors.Is(err, compose.ErrConfiguration):
		return metrics.OutcomeConfigurationError
	case errors.Is(err, compose.ErrContentResolution):
		return metrics.OutcomeContentError
	default:
		return metrics.OutcomeError
	}
}
