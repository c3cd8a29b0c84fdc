// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateType categorizes templates by their role in page composition.
type TemplateType string

const (
	TemplateTypeHeader TemplateType = "header"
	TemplateTypeFooter TemplateType = "footer"
	TemplateTypePage   TemplateType = "page"
)

// ValidTemplateType reports whether v is a known template type.
func ValidTemplateType(v string) bool {
	switch TemplateType(v) {
	case TemplateTypeHeader, TemplateTypeFooter, TemplateTypePage:
		return true
	}
	return false
}

// Template is a reusable block list rendered around page content. Header
// and footer templates wrap every page of a site; a page template lays out
// the main area and marks where page blocks go with a "slot" block.
type Template struct {
	ID        uuid.UUID    `json:"id"`
	SiteID    uuid.UUID    `json:"site_id"`
	Name      string       `json:"name"`
	Type      TemplateType `json:"type"`
	ThemeID   string       `json:"theme_id"`
	IsActive  bool         `json:"is_active"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Blocks []Block `json:"blocks,omitempty"`
}
