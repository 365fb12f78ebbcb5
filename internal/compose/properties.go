// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
)

// propertyToken matches {{CmsPageName}} and {{CmsPageName:arg}} placeholders.
var propertyToken = regexp.MustCompile(`\{\{(CmsPage[A-Za-z]+)((?::[^:{}]*)*)\}\}`)

// Named date formats accepted as the first token argument. Any other argument
// is used as a Go time layout.
var dateFormats = map[string]string{
	"date":     time.DateOnly,
	"time":     "15.04",
	"datetime": time.DateTime,
	"rfc3339":  time.RFC3339,
	"rfc1123":  time.RFC1123,
	"year":     "2006",
}

// PageProperties holds the page fields that content markup may reference.
type PageProperties struct {
	ID              uuid.UUID
	Title           string
	URL             string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	CreatedOn       time.Time
	ModifiedOn      time.Time
}

// PropertiesOf captures the properties of the page being rendered.
func PropertiesOf(p *model.Page) PageProperties {
	return PageProperties{
		ID:              p.ID,
		Title:           p.Title,
		URL:             p.URL,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		MetaKeywords:    p.MetaKeywords,
		CreatedOn:       p.CreatedAt,
		ModifiedOn:      p.UpdatedAt,
	}
}

// Expand replaces page property tokens in markup with HTML-escaped values.
// Unknown tokens are left untouched.
func (pp PageProperties) Expand(markup string) string {
	if !strings.Contains(markup, "{{CmsPage") {
		return markup
	}
	return propertyToken.ReplaceAllStringFunc(markup, func(token string) string {
		m := propertyToken.FindStringSubmatch(token)
		var args []string
		if m[2] != "" {
			args = strings.Split(m[2][1:], ":")
		}
		value, ok := pp.lookup(m[1], args)
		if !ok {
			return token
		}
		return html.EscapeString(value)
	})
}

func (pp PageProperties) lookup(name string, args []string) (string, bool) {
	switch name {
	case "CmsPageTitle":
		return pp.Title, true
	case "CmsPageUrl":
		return pp.URL, true
	case "CmsPageId":
		return pp.ID.String(), true
	case "CmsPageMetaTitle":
		return pp.MetaTitle, true
	case "CmsPageMetaDescription":
		return pp.MetaDescription, true
	case "CmsPageMetaKeywords":
		return pp.MetaKeywords, true
	case "CmsPageCreatedOn":
		return formatDate(pp.CreatedOn, args), true
	case "CmsPageModifiedOn":
		return formatDate(pp.ModifiedOn, args), true
	}
	return "", false
}

func formatDate(t time.Time, args []string) string {
	if t.IsZero() {
		return ""
	}
	layout := time.DateTime
	if len(args) > 0 && args[0] != "" {
		if named, ok := dateFormats[strings.ToLower(args[0])]; ok {
			layout = named
		} else {
			layout = args[0]
		}
	}
	return t.Format(layout)
}
