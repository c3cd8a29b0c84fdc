// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"blockpress/internal/models"
	"blockpress/internal/store"
)

type siteRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Domain string `json:"domain" validate:"omitempty,max=253,hostname_rfc1123"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (req *siteRequest) normalize() {
	req.Domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(req.Domain)), ".")
}

func (req *siteRequest) apply(site *models.Site) {
	site.Name = strings.TrimSpace(req.Name)
	site.Domain = nil
	if d := req.Domain; d != "" {
		site.Domain = &d
	}
	if req.Status != "" {
		site.Status = models.SiteStatus(req.Status)
	}
}

// SitesList returns every site.
func (a *Admin) SitesList(w http.ResponseWriter, r *http.Request) {
	sites, err := a.Sites.List()
	if err != nil {
		serverError(w, r, "list sites failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// SiteGet returns one site.
func (a *Admin) SiteGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, siteFromCtx(r.Context()))
}

// SiteCreate adds a site.
func (a *Admin) SiteCreate(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := &models.Site{Status: models.SiteStatusActive}
	req.apply(site)

	created, err := a.Sites.Create(site)
	if errors.Is(err, store.ErrDuplicateDomain) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "create site failed", err)
		return
	}
	a.Tenants.Invalidate()
	zap.S().Infow("site created", "site_id", created.ID, "domain", created.DomainOrEmpty())
	writeJSON(w, http.StatusCreated, created)
}

// SiteUpdate modifies a site.
func (a *Admin) SiteUpdate(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := *siteFromCtx(r.Context())
	req.apply(&site)

	err := a.Sites.Update(&site)
	switch {
	case errors.Is(err, store.ErrDuplicateDomain):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "site not found")
		return
	case err != nil:
		serverError(w, r, "update site failed", err)
		return
	}
	a.Tenants.Invalidate()
	a.changed(r, site.ID, "site", site.ID, "update")
	writeJSON(w, http.StatusOK, site)
}

// SiteDelete removes a site with all its content.
func (a *Admin) SiteDelete(w http.ResponseWriter, r *http.Request) {
	site := siteFromCtx(r.Context())
	// Invalidate first: the log entry references the site row.
	a.changed(r, site.ID, "site", site.ID, "delete")
	err := a.Sites.Delete(site.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete site failed", err)
		return
	}
	a.Tenants.Invalidate()
	zap.S().Infow("site deleted", "site_id", site.ID)
	w.WriteHeader(http.StatusNoContent)
}
