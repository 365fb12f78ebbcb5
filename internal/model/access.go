// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/google/uuid"

// AccessLevel is the permission an access rule grants.
type AccessLevel int

// Access levels, ordered from least to most permissive.
const (
	AccessDeny AccessLevel = iota
	AccessRead
	AccessReadWrite
)

func (l AccessLevel) String() string {
	switch l {
	case AccessRead:
		return "read"
	case AccessReadWrite:
		return "readwrite"
	default:
		return "deny"
	}
}

// ParseAccessLevel converts a stored level name. Unknown names deny.
func ParseAccessLevel(s string) AccessLevel {
	switch s {
	case "read":
		return AccessRead
	case "readwrite":
		return AccessReadWrite
	default:
		return AccessDeny
	}
}

// AccessRule grants a user or a role an access level on a page.
type AccessRule struct {
	ID          uuid.UUID   `json:"id"`
	Identity    string      `json:"identity"`
	AccessLevel AccessLevel `json:"access_level"`
	IsForRole   bool        `json:"is_for_role"`
}
