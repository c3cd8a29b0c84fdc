// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blockpress/internal/engine"
	"blockpress/internal/models"
	"blockpress/internal/slug"
	"blockpress/internal/tenant"
)

// PublicDeps are the collaborators of the public site.
type PublicDeps struct {
	Pages      PageStore
	PageBlocks BlockStore
	Navigation NavigationStore
	Settings   SettingStore
	Engine     Renderer
}

// Public serves the tenant-resolved site: the JSON site API and the
// rendered HTML pages. Routes must run behind tenant.Resolver.Middleware.
type Public struct {
	PublicDeps
}

// NewPublic creates the Public handler group.
func NewPublic(d PublicDeps) *Public {
	return &Public{PublicDeps: d}
}

// Site returns the resolved site with its presentation settings.
func (p *Public) Site(w http.ResponseWriter, r *http.Request) {
	site := tenant.FromContext(r.Context())
	settings, err := p.Settings.All(site.ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           site.ID,
		"name":         site.Name,
		"domain":       site.Domain,
		"title":        settings.Get(models.SettingSiteTitle, site.Name),
		"description":  settings.Get(models.SettingSiteDescription, ""),
		"active_theme": settings.ActiveTheme(),
	})
}

// PageBySlug returns a published page with its visible blocks. Drafts and
// unknown slugs are 404.
func (p *Public) PageBySlug(w http.ResponseWriter, r *http.Request) {
	site := tenant.FromContext(r.Context())
	page, err := p.Pages.FindPublishedBySlug(site.ID, chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, r, "page lookup failed", err)
		return
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	blocks, err := p.PageBlocks.List(page.ID)
	if err != nil {
		serverError(w, r, "list page blocks failed", err)
		return
	}
	page.Blocks = models.VisibleBlocks(blocks)
	writeJSON(w, http.StatusOK, page)
}

// NavigationItems returns the site's visible menu.
func (p *Public) NavigationItems(w http.ResponseWriter, r *http.Request) {
	items, err := p.Navigation.ListVisible(tenant.FromContext(r.Context()).ID)
	if err != nil {
		serverError(w, r, "list navigation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, withURLs(items))
}

// SettingsAll returns every setting of the site.
func (p *Public) SettingsAll(w http.ResponseWriter, r *http.Request) {
	settings, err := p.Settings.All(tenant.FromContext(r.Context()).ID)
	if err != nil {
		serverError(w, r, "load settings failed", err)
		return
	}
	if settings == nil {
		settings = models.SiteSettings{}
	}
	writeJSON(w, http.StatusOK, settings)
}

// Home renders the page with the home slug.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.renderPage(w, r, models.HomeSlug)
}

// Page renders the page named by the {slug} parameter.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		writeHTML(w, http.StatusNotFound, engine.RenderError(http.StatusNotFound))
		return
	}
	p.renderPage(w, r, s)
}

// renderPage serves a published page, from the page cache when possible.
func (p *Public) renderPage(w http.ResponseWriter, r *http.Request, pageSlug string) {
	site := tenant.FromContext(r.Context())
	if html, ok := p.Engine.CachedPage(r.Context(), site.ID, pageSlug); ok {
		w.Header().Set("X-Cache", "HIT")
		writeHTML(w, http.StatusOK, html)
		return
	}

	page, err := p.Pages.FindPublishedBySlug(site.ID, pageSlug)
	if err != nil {
		zap.S().Errorw("page lookup failed", "site_id", site.ID, "slug", pageSlug, "error", err)
		writeHTML(w, http.StatusInternalServerError, engine.RenderError(http.StatusInternalServerError))
		return
	}
	if page == nil {
		writeHTML(w, http.StatusNotFound, engine.RenderError(http.StatusNotFound))
		return
	}

	html, err := p.Engine.RenderPage(site, page)
	if err != nil {
		zap.S().Errorw("page render failed", "site_id", site.ID, "page_id", page.ID, "error", err)
		writeHTML(w, http.StatusInternalServerError, engine.RenderError(http.StatusInternalServerError))
		return
	}
	p.Engine.StorePage(r.Context(), site.ID, pageSlug, html)
	w.Header().Set("X-Cache", "MISS")
	writeHTML(w, http.StatusOK, html)
}

func writeHTML(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}
