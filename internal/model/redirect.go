// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/google/uuid"

// Redirect is a stored URL redirect rule.
type Redirect struct {
	ID         uuid.UUID
	SourcePath string
	TargetURL  string
	IsWildcard bool
	StatusCode int
	Enabled    bool
}
