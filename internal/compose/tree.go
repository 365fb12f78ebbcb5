// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/options"
)

// MetaData is a page-level meta element.
type MetaData struct {
	Name      string `json:"name,omitempty"`
	HTTPEquiv string `json:"http_equiv,omitempty"`
	Content   string `json:"content"`
}

// RegionNode is a region with the projections placed into it, in order.
type RegionNode struct {
	ID          uuid.UUID     `json:"id"`
	Identifier  string        `json:"identifier"`
	Projections []*Projection `json:"projections"`
}

// Node is one level of a composed page: the requested page or one of its
// master pages. Nodes are never modified after Compose returns.
type Node struct {
	PageID           uuid.UUID          `json:"page_id"`
	URL              string             `json:"url"`
	Title            string             `json:"title"`
	Status           model.PageStatus   `json:"status"`
	IsMasterPage     bool               `json:"is_master_page"`
	LanguageCode     string             `json:"language_code,omitempty"`
	LayoutPath       string             `json:"layout_path,omitempty"`
	Regions          []RegionNode       `json:"regions"`
	Options          options.Set        `json:"options"`
	Metadata         []MetaData         `json:"metadata,omitempty"`
	Resources        Resources          `json:"resources"`
	AccessRules      []model.AccessRule `json:"access_rules,omitempty"`
	ReadOnly         bool               `json:"read_only"`
	CanManageContent bool               `json:"can_manage_content"`
	RegionsEditable  bool               `json:"regions_editable"`
	CanEdit          bool               `json:"can_edit"`
	Master           *Node              `json:"master,omitempty"`

	// projections in region order, including slots whose region the node
	// does not declare.
	projections []*Projection
}

// IsTerminal reports whether the node is rendered directly from a layout.
func (n *Node) IsTerminal() bool {
	return n.Master == nil
}

// Projections returns every projection of the node in region order.
func (n *Node) Projections() []*Projection {
	return n.projections
}

// Region returns the region node with the given identifier.
func (n *Node) Region(identifier string) (*RegionNode, bool) {
	for i := range n.Regions {
		if n.Regions[i].Identifier == identifier {
			return &n.Regions[i], true
		}
	}
	return nil, false
}

// Stylesheets returns the node's CSS sources: page resources first, then
// each projection.
func (n *Node) Stylesheets() []StylesheetAccessor {
	out := []StylesheetAccessor{n.Resources}
	for _, p := range n.projections {
		out = append(out, p)
	}
	return out
}

// Scripts returns the node's script sources: page resources first, then
// each projection.
func (n *Node) Scripts() []JavaScriptAccessor {
	out := []JavaScriptAccessor{n.Resources}
	for _, p := range n.projections {
		out = append(out, p)
	}
	return out
}

// Tree is the composed render tree of a requested page.
type Tree struct {
	Root *Node `json:"root"`
}

// Chain returns the requested page node followed by its master nodes,
// ending with the layout-rendered node.
func (t *Tree) Chain() []*Node {
	var chain []*Node
	for n := t.Root; n != nil; n = n.Master {
		chain = append(chain, n)
	}
	return chain
}

// Ancestors returns the master nodes above the requested page.
func (t *Tree) Ancestors() []*Node {
	chain := t.Chain()
	if len(chain) == 0 {
		return nil
	}
	return chain[1:]
}

// Terminal returns the layout-rendered node at the top of the chain.
func (t *Tree) Terminal() *Node {
	chain := t.Chain()
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// LayoutPath returns the layout view path of the terminal node.
func (t *Tree) LayoutPath() string {
	if n := t.Terminal(); n != nil {
		return n.LayoutPath
	}
	return ""
}

// Options returns the effective options of the whole page. Values from nodes
// closer to the requested page win.
func (t *Tree) Options() options.Set {
	var merged options.Set
	for _, n := range t.Chain() {
		merged = merged.Union(n.Options)
	}
	return merged
}

// Projections returns all projections of all nodes, requested page first.
func (t *Tree) Projections() []*Projection {
	var out []*Projection
	for _, n := range t.Chain() {
		out = append(out, n.projections...)
	}
	return out
}
