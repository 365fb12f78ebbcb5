// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides URL normalization and hashing for page lookup plus
// small database conversion helpers.
package util

import (
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"github.com/zeebo/blake3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// multipleSlashes matches runs of path separators
	multipleSlashes = regexp.MustCompile(`/{2,}`)
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// NormalizeURL converts a request path or absolute URL into the canonical
// page URL form: NFC-normalized, lowercase, no query or fragment, single
// slashes, with leading and trailing slash.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}

	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\`, "/")
	s = multipleSlashes.ReplaceAllString("/"+s+"/", "/")
	return s
}

// URLHash returns the hex BLAKE3 digest of the normalized URL. Pages are
// looked up by this hash.
func URLHash(raw string) string {
	sum := blake3.Sum256([]byte(NormalizeURL(raw)))
	return hex.EncodeToString(sum[:])
}

// URLFromTitle builds a normalized single-segment page URL from a title.
// Accents are removed and non-Latin scripts transliterated to ASCII. It
// returns "" when nothing of the title survives slugging.
func URLFromTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ := transform.String(t, title)
	s = unidecode.Unidecode(s)

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = slugRegex.ReplaceAllString(s, "")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return ""
	}
	return "/" + s + "/"
}
