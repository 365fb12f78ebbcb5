// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package options

import "github.com/olegiv/ocms-render/internal/model"

// IdentitySet is a set of option identities already fixed by a more specific
// page. A nil IdentitySet is empty.
type IdentitySet map[model.OptionIdentity]struct{}

// IdentitiesOf collects the identities of every option set on the pages.
func IdentitiesOf(pages ...*model.Page) IdentitySet {
	s := make(IdentitySet)
	for _, p := range pages {
		for _, id := range p.OptionIdentities() {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set.
func (s IdentitySet) Has(id model.OptionIdentity) bool {
	_, ok := s[id]
	return ok
}
