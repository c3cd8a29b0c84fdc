// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates URL path segments for pages.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLength is the longest slug accepted by Valid.
const MaxLength = 200

var valid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Generate creates a URL-friendly slug from the given string. Whitespace,
// underscores and hyphens become single hyphens; other non-ASCII-alphanumeric
// runes are dropped.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// Valid reports whether s is a canonical slug: lowercase ASCII letters and
// digits separated by single hyphens.
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}
