// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-render/internal/model"
)

// sessionServer signs a user in on /login and reports the viewer on /.
func sessionServer(sm *scs.SessionManager, got *model.Viewer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyUserName, r.URL.Query().Get("user"))
		sm.Put(r.Context(), SessionKeyUserRoles, r.URL.Query().Get("roles"))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/", LoadViewer(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetViewer(r)
	})))
	return sm.LoadAndSave(mux)
}

func TestLoadViewer_Anonymous(t *testing.T) {
	var got model.Viewer
	srv := sessionServer(scs.New(), &got)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.False(t, got.Authenticated)
	assert.False(t, got.CanManageContent)
	assert.Empty(t, got.UserName)
}

func TestLoadViewer_FromSession(t *testing.T) {
	var got model.Viewer
	srv := sessionServer(scs.New(), &got)

	login := httptest.NewRecorder()
	srv.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login?user=alice&roles=Editor,%20publisher", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	srv.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, got.Authenticated)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, []string{"editor", "publisher"}, got.Roles)
	assert.True(t, got.CanManageContent)
	assert.True(t, got.HasContentAccess)
}

func TestGetViewer_Default(t *testing.T) {
	v := GetViewer(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, v.Authenticated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithViewer(req.Context(), model.NewViewer("bob", []string{model.RoleAdmin})))
	assert.True(t, GetViewer(req).IsAdmin())
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"admin", []string{"admin"}},
		{" Admin , ,editor", []string{"admin", "editor"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRoles(tt.raw))
		})
	}
}
