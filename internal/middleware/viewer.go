// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for viewer identification,
// preview throttling, metrics and response hardening.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-render/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyViewer holds the model.Viewer of the request.
const ContextKeyViewer ContextKey = "viewer"

// Session keys written by the CMS admin that shares the session store.
const (
	SessionKeyUserName  = "user_name"
	SessionKeyUserRoles = "user_roles"
)

// LoadViewer creates middleware that reads the signed-in user from the
// session into the request context. Requests without a session get an
// anonymous viewer. It must run inside sm.LoadAndSave.
func LoadViewer(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := sm.GetString(r.Context(), SessionKeyUserName)
			roles := parseRoles(sm.GetString(r.Context(), SessionKeyUserRoles))
			viewer := model.NewViewer(name, roles)

			ctx := WithViewer(r.Context(), viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithViewer returns a copy of ctx carrying the viewer.
func WithViewer(ctx context.Context, v model.Viewer) context.Context {
	return context.WithValue(ctx, ContextKeyViewer, v)
}

// GetViewer retrieves the viewer from the request context.
// Returns an anonymous viewer if none was loaded.
func GetViewer(r *http.Request) model.Viewer {
	if v, ok := r.Context().Value(ContextKeyViewer).(model.Viewer); ok {
		return v
	}
	return model.NewViewer("", nil)
}

// parseRoles splits a comma separated role list.
func parseRoles(raw string) []string {
	if raw == "" {
		return nil
	}
	var roles []string
	for _, role := range strings.Split(raw, ",") {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
