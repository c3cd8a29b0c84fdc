// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// NavigationType tells whether an item points at a page or a URL.
type NavigationType string

const (
	NavigationInternal NavigationType = "internal"
	NavigationExternal NavigationType = "external"
)

// NavigationItem is one entry of a site's main menu.
type NavigationItem struct {
	ID           uuid.UUID      `json:"id"`
	SiteID       uuid.UUID      `json:"site_id"`
	Label        string         `json:"label"`
	Type         NavigationType `json:"type"`
	Href         *string        `json:"href,omitempty"`
	PageID       *uuid.UUID     `json:"page_id,omitempty"`
	PageSlug     *string        `json:"page_slug,omitempty"` // joined from pages, read-only
	OrderIndex   int            `json:"order_index"`
	IsVisible    bool           `json:"is_visible"`
	OpenInNewTab bool           `json:"open_in_new_tab"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// URL returns the link target. Internal items link to their page slug, the
// home page links to "/". An internal item whose page is gone yields "".
func (n *NavigationItem) URL() string {
	if n.Type == NavigationExternal {
		if n.Href == nil {
			return ""
		}
		return *n.Href
	}
	if n.PageSlug == nil {
		return ""
	}
	if *n.PageSlug == HomeSlug {
		return "/"
	}
	return "/" + *n.PageSlug
}

// ValidNavigationType reports whether v is a known navigation type.
func ValidNavigationType(v string) bool {
	switch NavigationType(v) {
	case NavigationInternal, NavigationExternal:
		return true
	}
	return false
}
