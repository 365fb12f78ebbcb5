// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"strings"

	"github.com/olegiv/ocms-render/internal/model"
)

// Built-in role identities usable in access rules.
const (
	RoleEveryone      = "everyone"
	RoleAuthenticated = "authenticated"
)

// EvaluateAccess returns the access level the viewer holds on a page.
// Admins always get read/write. A page without rules is open: read/write for
// content managers, read for everyone else. Otherwise rules naming the user
// take precedence over role rules; within each group the most permissive
// level wins. No matching rule denies.
func EvaluateAccess(rules []model.AccessRule, v model.Viewer) model.AccessLevel {
	if v.IsAdmin() {
		return model.AccessReadWrite
	}
	if len(rules) == 0 {
		if v.CanManageContent {
			return model.AccessReadWrite
		}
		return model.AccessRead
	}

	userLevel, userMatched := model.AccessDeny, false
	roleLevel, roleMatched := model.AccessDeny, false
	for _, r := range rules {
		switch {
		case !r.IsForRole:
			if v.Authenticated && strings.EqualFold(r.Identity, v.UserName) {
				userLevel, userMatched = max(userLevel, r.AccessLevel), true
			}
		case roleMatches(r.Identity, v):
			roleLevel, roleMatched = max(roleLevel, r.AccessLevel), true
		}
	}

	switch {
	case userMatched:
		return userLevel
	case roleMatched:
		return roleLevel
	default:
		return model.AccessDeny
	}
}

func roleMatches(identity string, v model.Viewer) bool {
	switch strings.ToLower(identity) {
	case RoleEveryone:
		return true
	case RoleAuthenticated:
		return v.Authenticated
	}
	for _, role := range v.Roles {
		if strings.EqualFold(role, identity) {
			return true
		}
	}
	return false
}

// dedupeRules drops rules repeating an ID already seen.
func dedupeRules(rules []model.AccessRule) []model.AccessRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]model.AccessRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		key := r.ID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
