// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"fmt"
	"strconv"

	"github.com/olegiv/ocms-render/internal/model"
)

var validOptionTypes = map[model.OptionType]bool{
	model.OptionTypeText:          true,
	model.OptionTypeInteger:       true,
	model.OptionTypeFloat:         true,
	model.OptionTypeDateTime:      true,
	model.OptionTypeBoolean:       true,
	model.OptionTypeJavaScriptURL: true,
	model.OptionTypeCSSURL:        true,
	model.OptionTypeCustom:        true,
}

var validContentKinds = map[model.ContentKind]bool{
	"":                        true,
	model.ContentKindHTML:     true,
	model.ContentKindMarkdown: true,
	model.ContentKindWidget:   true,
}

var validAccessLevels = map[string]bool{"deny": true, "read": true, "readwrite": true}

type validator struct {
	errs []ImportError
}

func (v *validator) add(entity, id, format string, args ...any) {
	v.errs = append(v.errs, ImportError{Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)})
}

// Validate checks references and values of a site document and returns
// every problem found.
func Validate(site *Site) []ImportError {
	v := &validator{}
	if site.Version == "" {
		v.add("site", "", "missing version field")
	}

	layouts := make(map[string]bool)
	for n, l := range site.Layouts {
		id := l.Key
		if id == "" {
			id = "#" + strconv.Itoa(n)
			v.add("layout", id, "missing key")
		} else if layouts[l.Key] {
			v.add("layout", id, "duplicate key")
		}
		layouts[l.Key] = true
		if l.Path == "" {
			v.add("layout", id, "missing path")
		}
		v.checkRegions("layout", id, l.Regions)
		v.checkOptions("layout", id, l.Options)
	}

	keys := make(map[string]bool)
	urls := make(map[string]string)
	for n, p := range site.Pages {
		id := p.Key
		if id == "" {
			id = "#" + strconv.Itoa(n)
			v.add("page", id, "missing key")
		} else if keys[p.Key] {
			v.add("page", id, "duplicate key")
		}
		keys[p.Key] = true

		if p.Title == "" {
			v.add("page", id, "missing title")
		}
		u := pageURL(p)
		if u == "" {
			v.add("page", id, "title %q does not yield a url; set url explicitly", p.Title)
		} else if other, ok := urls[u]; ok {
			v.add("page", id, "url %s already used by page %s", u, other)
		}
		urls[u] = id

		if p.Status != "" && !p.Status.Valid() {
			v.add("page", id, "invalid status %q", p.Status)
		}
		for _, ar := range p.Access {
			if ar.Identity == "" {
				v.add("page", id, "access rule without identity")
			}
			if !validAccessLevels[ar.Level] {
				v.add("page", id, "invalid access level %q", ar.Level)
			}
		}
		v.checkOptions("page", id, p.Options)
	}

	for n, p := range site.Pages {
		id := p.Key
		if id == "" {
			id = "#" + strconv.Itoa(n)
		}
		switch {
		case p.Layout == "" && p.Master == "":
			v.add("page", id, "needs a layout or a master page")
		case p.Layout != "" && p.Master != "":
			v.add("page", id, "cannot have both a layout and a master page")
		case p.Layout != "" && !layouts[p.Layout]:
			v.add("page", id, "unknown layout %q", p.Layout)
		case p.Master != "" && !keys[p.Master]:
			v.add("page", id, "unknown master page %q", p.Master)
		}

		for i, s := range p.Contents {
			slot := id + "/contents/" + strconv.Itoa(i)
			if s.Region == "" {
				v.add("content", slot, "missing region")
			}
			v.checkOptions("content", slot, s.Options)
			v.checkContent(slot, s.Content, true)
		}
	}

	for n, r := range site.Redirects {
		id := "#" + strconv.Itoa(n)
		if r.From == "" || r.To == "" {
			v.add("redirect", id, "from and to are required")
		}
		if r.Status != 0 && (r.Status < 300 || r.Status > 308) {
			v.add("redirect", id, "invalid status code %d", r.Status)
		}
	}
	return v.errs
}

func (v *validator) checkContent(id string, c SiteContent, current bool) {
	if c.Name == "" {
		v.add("content", id, "missing name")
	}
	if !validContentKinds[c.Kind] {
		v.add("content", id, "invalid kind %q", c.Kind)
	}
	switch c.Status {
	case "", model.ContentStatusDraft, model.ContentStatusPublished, model.ContentStatusPreview:
	default:
		v.add("content", id, "invalid status %q", c.Status)
	}
	if c.Kind == model.ContentKindWidget && c.Widget == "" {
		v.add("content", id, "widget content needs a widget path")
	}
	if c.ActiveFrom != nil && c.ActiveTo != nil && !c.ActiveFrom.Before(*c.ActiveTo) {
		v.add("content", id, "active_from must be before active_to")
	}
	v.checkRegions("content", id, c.Regions)
	v.checkOptions("content", id, c.Options)

	if !current && len(c.History) > 0 {
		v.add("content", id, "history versions cannot have history")
	}
	for i, h := range c.History {
		v.checkContent(id+"/history/"+strconv.Itoa(i), h, false)
	}
}

func (v *validator) checkRegions(entity, id string, regions []string) {
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		if r == "" {
			v.add(entity, id, "empty region identifier")
		}
		if seen[r] {
			v.add(entity, id, "duplicate region %q", r)
		}
		seen[r] = true
	}
}

func (v *validator) checkOptions(entity, id string, opts []model.Option) {
	seen := make(map[model.OptionIdentity]bool, len(opts))
	for _, o := range opts {
		if o.Key == "" {
			v.add(entity, id, "option without key")
			continue
		}
		if !validOptionTypes[o.Type] {
			v.add(entity, id, "option %s has invalid type %q", o.Key, o.Type)
			continue
		}
		if o.Type == model.OptionTypeCustom && o.CustomIdentifier == "" {
			v.add(entity, id, "custom option %s needs an identifier", o.Key)
		}
		if seen[o.Identity()] {
			v.add(entity, id, "duplicate option %s", o.Identity())
		}
		seen[o.Identity()] = true
	}
}
