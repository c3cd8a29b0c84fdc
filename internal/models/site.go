// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteStatus controls whether a site can be resolved for visitors.
type SiteStatus string

const (
	SiteStatusActive   SiteStatus = "active"
	SiteStatusInactive SiteStatus = "inactive"
)

// Site is a tenant. Every page, template, navigation item and setting
// belongs to exactly one site.
type Site struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Domain    *string    `json:"domain,omitempty"` // Nullable; unique when set
	Status    SiteStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsActive returns true if the site may be served.
func (s *Site) IsActive() bool {
	return s.Status == SiteStatusActive
}

// DomainOrEmpty returns the domain or "" when none is set.
func (s *Site) DomainOrEmpty() string {
	if s.Domain == nil {
		return ""
	}
	return *s.Domain
}

// ValidSiteStatus reports whether v is a known status.
func ValidSiteStatus(v string) bool {
	switch SiteStatus(v) {
	case SiteStatusActive, SiteStatusInactive:
		return true
	}
	return false
}
