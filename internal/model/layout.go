// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/google/uuid"

// Layout is the terminal template of a master chain. It defines the regions
// and default options of every page built on it.
type Layout struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	LayoutPath string    `json:"layout_path"`
	Regions    []Region  `json:"regions,omitempty"`
	Options    []Option  `json:"options,omitempty"`
}

// Region is a named rendering zone targeted by content slots.
type Region struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
}
