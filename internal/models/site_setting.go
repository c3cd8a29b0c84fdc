// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known setting keys.
const (
	SettingActiveTheme     = "active_theme"
	SettingSiteTitle       = "site_title"
	SettingSiteDescription = "site_description"
)

// DefaultThemeID is used when a site has no active_theme setting.
const DefaultThemeID = "default"

// SiteSetting represents a single configuration key-value pair of a site.
type SiteSetting struct {
	SiteID    uuid.UUID `json:"site_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteSettings is a convenience map for accessing settings by key.
type SiteSettings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s SiteSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// ActiveTheme returns the site's theme id, defaulting to DefaultThemeID.
func (s SiteSettings) ActiveTheme() string {
	return s.Get(SettingActiveTheme, DefaultThemeID)
}
