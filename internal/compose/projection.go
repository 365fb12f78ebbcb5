// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/options"
)

// StylesheetAccessor exposes the CSS an element contributes to the page.
type StylesheetAccessor interface {
	CustomCSS() string
	CSSIncludes() []string
}

// JavaScriptAccessor exposes the scripts an element contributes to the page.
type JavaScriptAccessor interface {
	CustomJS() string
	JSIncludes() []string
}

// Resources are the page-level styles and scripts: inline custom code plus
// URLs taken from options of type css_url and js_url.
type Resources struct {
	InlineCSS string   `json:"inline_css,omitempty"`
	Styles    []string `json:"styles,omitempty"`
	InlineJS  string   `json:"inline_js,omitempty"`
	Scripts   []string `json:"scripts,omitempty"`
}

// CustomCSS returns inline page CSS.
func (r Resources) CustomCSS() string { return r.InlineCSS }

// CSSIncludes returns stylesheet URLs.
func (r Resources) CSSIncludes() []string { return r.Styles }

// CustomJS returns inline page JavaScript.
func (r Resources) CustomJS() string { return r.InlineJS }

// JSIncludes returns script URLs.
func (r Resources) JSIncludes() []string { return r.Scripts }

func resourcesOf(css, js string, opts options.Set) Resources {
	return Resources{
		InlineCSS: css,
		Styles:    effectiveValues(opts.OfType(model.OptionTypeCSSURL)),
		InlineJS:  js,
		Scripts:   effectiveValues(opts.OfType(model.OptionTypeJavaScriptURL)),
	}
}

func effectiveValues(values []options.Value) []string {
	var out []string
	for _, v := range values {
		if e := v.Effective(); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Projection is the render-ready view of one content slot.
type Projection struct {
	slotID    uuid.UUID
	pageID    uuid.UUID
	region    model.Region
	order     int
	content   *model.Content
	options   options.Set
	html      template.HTML
	resources Resources
}

// SlotID returns the page content ID.
func (p *Projection) SlotID() uuid.UUID { return p.slotID }

// PageID returns the page that owns the slot.
func (p *Projection) PageID() uuid.UUID { return p.pageID }

// Region returns the region the slot is placed in.
func (p *Projection) Region() model.Region { return p.region }

// Order returns the slot position inside its region.
func (p *Projection) Order() int { return p.order }

// ContentID returns the ID of the selected content version.
func (p *Projection) ContentID() uuid.UUID { return p.content.ID }

// ContentStatus returns the status of the selected content version.
func (p *Projection) ContentStatus() model.ContentStatus { return p.content.Status }

// IsHistoryVersion reports whether the selected version is a retained
// history entry rather than the slot's current content.
func (p *Projection) IsHistoryVersion() bool { return p.content.IsHistory() }

// Kind returns the content kind.
func (p *Projection) Kind() model.ContentKind { return p.content.Kind }

// WidgetPath returns the widget view path for widget contents.
func (p *Projection) WidgetPath() string { return p.content.WidgetPath }

// Options returns the merged content and slot options.
func (p *Projection) Options() options.Set { return p.options }

// HTML returns the markup payload.
func (p *Projection) HTML() template.HTML { return p.html }

// CustomCSS returns the content's inline CSS.
func (p *Projection) CustomCSS() string { return p.resources.InlineCSS }

// CSSIncludes returns stylesheet URLs declared through options.
func (p *Projection) CSSIncludes() []string { return p.resources.Styles }

// CustomJS returns the content's inline JavaScript.
func (p *Projection) CustomJS() string { return p.resources.InlineJS }

// JSIncludes returns script URLs declared through options.
func (p *Projection) JSIncludes() []string { return p.resources.Scripts }

type projectionJSON struct {
	SlotID     uuid.UUID           `json:"slot_id"`
	PageID     uuid.UUID           `json:"page_id"`
	Region     string              `json:"region"`
	Order      int                 `json:"order"`
	ContentID  uuid.UUID           `json:"content_id"`
	Status     model.ContentStatus `json:"status"`
	History    bool                `json:"history,omitempty"`
	Kind       model.ContentKind   `json:"kind"`
	WidgetPath string              `json:"widget_path,omitempty"`
	HTML       string              `json:"html,omitempty"`
	Resources  Resources           `json:"resources"`
	Options    options.Set         `json:"options"`
}

// MarshalJSON encodes the projection for external renderers.
func (p *Projection) MarshalJSON() ([]byte, error) {
	return json.Marshal(projectionJSON{
		SlotID:     p.slotID,
		PageID:     p.pageID,
		Region:     p.region.Identifier,
		Order:      p.order,
		ContentID:  p.content.ID,
		Status:     p.content.Status,
		History:    p.content.IsHistory(),
		Kind:       p.content.Kind,
		WidgetPath: p.content.WidgetPath,
		HTML:       string(p.html),
		Resources:  p.resources,
		Options:    p.options,
	})
}

// ProjectionFactory turns selected content versions into projections.
// It is safe for concurrent use.
type ProjectionFactory struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewProjectionFactory creates a factory. With sanitize set, every payload is
// passed through a user-generated-content HTML policy.
func NewProjectionFactory(sanitize bool) *ProjectionFactory {
	f := &ProjectionFactory{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	if sanitize {
		f.policy = bluemonday.UGCPolicy()
	}
	return f
}

// Create builds the projection for a slot and the content version chosen for
// it. Page property tokens in the body are expanded with props.
func (f *ProjectionFactory) Create(slot *model.PageContent, content *model.Content, opts options.Set, props PageProperties) (*Projection, error) {
	payload, err := f.payload(content, props)
	if err != nil {
		return nil, fmt.Errorf("rendering content %s of slot %s: %w", content.ID, slot.ID, err)
	}
	return &Projection{
		slotID:    slot.ID,
		pageID:    slot.PageID,
		region:    slot.Region,
		order:     slot.Order,
		content:   content,
		options:   opts,
		html:      payload,
		resources: resourcesOf(content.CustomCSS, content.CustomJS, opts),
	}, nil
}

func (f *ProjectionFactory) payload(content *model.Content, props PageProperties) (template.HTML, error) {
	var out string
	switch content.Kind {
	case model.ContentKindWidget:
		return "", nil
	case model.ContentKindMarkdown:
		var buf bytes.Buffer
		if err := f.markdown.Convert([]byte(props.Expand(content.Body)), &buf); err != nil {
			return "", err
		}
		out = buf.String()
	default:
		out = props.Expand(content.Body)
	}
	if f.policy != nil {
		out = f.policy.Sanitize(out)
	}
	return template.HTML(out), nil
}
