// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of BlockPress. Handlers are
// grouped by concern (admin, auth, public, webhook, debug) and receive
// their dependencies through the handler struct. Every admin and API
// handler speaks JSON.
package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

type ctxKey string

const siteCtxKey ctxKey = "admin_site"

// AdminDeps are the collaborators of the admin API.
type AdminDeps struct {
	Sites          SiteStore
	Pages          PageStore
	PageBlocks     BlockStore
	Templates      TemplateStore
	TemplateBlocks BlockStore
	Navigation     NavigationStore
	Settings       SettingStore
	Engine         Renderer
	Components     ComponentLoader
	Themes         ThemeRegistry
	Snapshots      Snapshotter
	Tenants        TenantResolver
}

// Admin groups the admin API handlers.
type Admin struct {
	AdminDeps
}

// NewAdmin creates the Admin handler group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{AdminDeps: d}
}

// SiteCtx loads the site named by the {siteID} URL parameter. Unknown
// sites answer 404.
func (a *Admin) SiteCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "siteID")
		if !ok {
			return
		}
		site, err := a.Sites.FindByID(id)
		if err != nil {
			serverError(w, r, "site lookup failed", err)
			return
		}
		if site == nil {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), siteCtxKey, site)))
	})
}

func siteFromCtx(ctx context.Context) *models.Site {
	site, _ := ctx.Value(siteCtxKey).(*models.Site)
	return site
}

// changed drops the site's rendered pages after an admin write.
func (a *Admin) changed(r *http.Request, siteID uuid.UUID, entity string, entityID uuid.UUID, action string) {
	a.Engine.InvalidateSite(r.Context(), siteID, entity, entityID, action)
}
