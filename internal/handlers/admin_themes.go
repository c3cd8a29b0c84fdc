// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blockpress/internal/components"
	"blockpress/internal/models"
)

type themeSwitchRequest struct {
	ThemeID string `json:"theme_id" validate:"required,max=255"`
}

// themeView describes an available theme.
type themeView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Extends     string   `json:"extends,omitempty"`
	Builtin     bool     `json:"builtin"`
	Components  []string `json:"components"`
	Error       string   `json:"error,omitempty"`
}

// describeTheme reports a theme from its compiled definition or its
// manifest. Broken manifests are reported, not hidden.
func (a *Admin) describeTheme(id string) themeView {
	if t, ok := components.Compiled(id); ok {
		return themeView{ID: id, Name: t.Name, Version: t.Version, Builtin: true, Components: t.Types()}
	}
	view := themeView{ID: id, Name: id, Builtin: a.Themes.IsBuiltin(id), Components: []string{}}
	m, err := a.Themes.Manifest(id)
	if err != nil {
		zap.S().Warnw("theme manifest cannot be loaded", "theme", id, "error", err)
		view.Error = "manifest cannot be loaded"
		return view
	}
	view.Name = m.Name
	view.Version = m.Version
	view.Description = m.Description
	view.Author = m.Author
	view.Extends = m.Extends
	for _, c := range m.Components {
		view.Components = append(view.Components, c.Type)
	}
	return view
}

func (a *Admin) themeList() []themeView {
	ids := a.Themes.Available()
	seen := make(map[string]bool, len(ids))
	out := make([]themeView, 0, len(ids))
	for _, id := range ids {
		seen[id] = true
		out = append(out, a.describeTheme(id))
	}
	for _, id := range components.CompiledIDs() {
		if !seen[id] {
			out = append(out, a.describeTheme(id))
		}
	}
	return out
}

// ThemesList returns every available theme with its manifest.
func (a *Admin) ThemesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.themeList())
}

// ThemesRefresh forgets discovered themes and loaded components, then
// rescans the themes directory.
func (a *Admin) ThemesRefresh(w http.ResponseWriter, r *http.Request) {
	a.Themes.Invalidate()
	a.Components.InvalidateAll()
	writeJSON(w, http.StatusOK, a.themeList())
}

// ThemeComponents lists the block types a theme renders with their schemas.
func (a *Admin) ThemeComponents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "themeID")
	infos, err := a.Components.Describe(id)
	if errors.Is(err, components.ErrThemeNotFound) {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}
	if err != nil {
		serverError(w, r, "describe theme failed", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// SiteThemeGet returns the site's active theme.
func (a *Admin) SiteThemeGet(w http.ResponseWriter, r *http.Request) {
	settings, err := a.Settings.All(siteFromCtx(r.Context()).ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	id := settings.ActiveTheme()
	writeJSON(w, http.StatusOK, map[string]any{
		"theme_id": id,
		"theme":    a.describeTheme(id),
	})
}

// SiteThemeSwitch changes the site's active theme.
func (a *Admin) SiteThemeSwitch(w http.ResponseWriter, r *http.Request) {
	var req themeSwitchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := siteFromCtx(r.Context())
	if msg := a.checkTheme(req.ThemeID); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	settings, err := a.Settings.All(site.ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	old := settings.ActiveTheme()
	if err := a.Settings.Set(site.ID, models.SettingActiveTheme, req.ThemeID); err != nil {
		serverError(w, r, "save active theme failed", err)
		return
	}
	if old != req.ThemeID {
		a.themeSwitched(r, site.ID, old, req.ThemeID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"theme_id": req.ThemeID,
		"previous": old,
		"theme":    a.describeTheme(req.ThemeID),
	})
}
