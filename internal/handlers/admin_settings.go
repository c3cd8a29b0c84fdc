// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockpress/internal/components"
	"blockpress/internal/models"
)

const maxSettingKeyLen = 100

type settingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,required,max=100,endkeys,max=10000"`
}

type settingRequest struct {
	Value string `json:"value" validate:"max=10000"`
}

// SettingsGet returns every setting of the site.
func (a *Admin) SettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := a.Settings.All(siteFromCtx(r.Context()).ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	if settings == nil {
		settings = models.SiteSettings{}
	}
	writeJSON(w, http.StatusOK, settings)
}

// SettingsPut stores several settings at once. Setting active_theme goes
// through the same checks as a theme switch.
func (a *Admin) SettingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a.saveSettings(w, r, req.Settings)
}

// SettingPut stores one setting.
func (a *Admin) SettingPut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" || len(key) > maxSettingKeyLen {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}
	var req settingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a.saveSettings(w, r, map[string]string{key: req.Value})
}

func (a *Admin) saveSettings(w http.ResponseWriter, r *http.Request, values map[string]string) {
	site := siteFromCtx(r.Context())

	current, err := a.Settings.All(site.ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	oldTheme := current.ActiveTheme()
	newTheme, switching := values[models.SettingActiveTheme]
	if switching {
		newTheme = strings.TrimSpace(newTheme)
		values[models.SettingActiveTheme] = newTheme
		if newTheme == "" {
			// An empty value means the default theme.
			newTheme = models.DefaultThemeID
		}
		if msg := a.checkTheme(newTheme); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	if err := a.Settings.SetMany(site.ID, values); err != nil {
		serverError(w, r, "save settings failed", err)
		return
	}
	if switching && newTheme != oldTheme {
		a.themeSwitched(r, site.ID, oldTheme, newTheme)
	} else {
		a.changed(r, site.ID, "settings", uuid.Nil, "update")
	}

	settings, err := a.Settings.All(site.ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// checkTheme returns a message when id cannot be used as a site theme.
func (a *Admin) checkTheme(id string) string {
	if _, err := a.Components.Theme(id); err != nil {
		if errors.Is(err, components.ErrThemeNotFound) {
			return "theme " + id + " is not available"
		}
		zap.S().Warnw("theme cannot be loaded", "theme", id, "error", err)
		return "theme " + id + " cannot be loaded"
	}
	return ""
}

// themeSwitched drops the old theme's components and the site's rendered
// pages, so the next render resolves through the new theme.
func (a *Admin) themeSwitched(r *http.Request, siteID uuid.UUID, oldTheme, newTheme string) {
	a.Components.Invalidate(oldTheme)
	a.changed(r, siteID, "theme", uuid.Nil, "switch")
	zap.S().Infow("site theme switched", "site_id", siteID, "from", oldTheme, "to", newTheme)
}
