// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the publication state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// HomeSlug is the slug served at the site root.
const HomeSlug = "home"

// Page is a routable document composed of ordered blocks.
type Page struct {
	ID               uuid.UUID  `json:"id"`
	SiteID           uuid.UUID  `json:"site_id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Status           PageStatus `json:"status"`
	MetaDescription  *string    `json:"meta_description,omitempty"`
	HeaderTemplateID *uuid.UUID `json:"header_template_id,omitempty"`
	FooterTemplateID *uuid.UUID `json:"footer_template_id,omitempty"`
	PageTemplateID   *uuid.UUID `json:"page_template_id,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Blocks is populated by callers that need the page body.
	Blocks []Block `json:"blocks,omitempty"`
}

// IsPublished returns true if the page is visible to the public.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// ValidPageStatus reports whether v is a known status.
func ValidPageStatus(v string) bool {
	switch PageStatus(v) {
	case PageStatusDraft, PageStatusPublished:
		return true
	}
	return false
}
