// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockpress/internal/models"
	"blockpress/internal/slug"
	"blockpress/internal/store"
)

type pageRequest struct {
	Title            string         `json:"title" validate:"required,max=300"`
	Slug             string         `json:"slug" validate:"omitempty,max=300,slug"`
	Status           string         `json:"status" validate:"omitempty,oneof=draft published"`
	MetaDescription  *string        `json:"meta_description" validate:"omitempty,max=500"`
	HeaderTemplateID *uuid.UUID     `json:"header_template_id"`
	FooterTemplateID *uuid.UUID     `json:"footer_template_id"`
	PageTemplateID   *uuid.UUID     `json:"page_template_id"`
	Blocks           []blockRequest `json:"blocks" validate:"omitempty,dive"`
}

// apply copies the request onto p. It returns a message when the request
// cannot be applied.
func (req *pageRequest) apply(p *models.Page) string {
	p.Title = strings.TrimSpace(req.Title)
	p.Slug = req.Slug
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if p.Slug == "" {
		return "slug is required"
	}
	if req.Status != "" {
		p.Status = models.PageStatus(req.Status)
	}
	p.MetaDescription = req.MetaDescription
	p.HeaderTemplateID = req.HeaderTemplateID
	p.FooterTemplateID = req.FooterTemplateID
	p.PageTemplateID = req.PageTemplateID
	return ""
}

// checkTemplateRefs verifies that every template a page references exists
// on the site and has the expected type.
func (a *Admin) checkTemplateRefs(siteID uuid.UUID, p *models.Page) (string, error) {
	refs := []struct {
		id  *uuid.UUID
		typ models.TemplateType
	}{
		{p.HeaderTemplateID, models.TemplateTypeHeader},
		{p.FooterTemplateID, models.TemplateTypeFooter},
		{p.PageTemplateID, models.TemplateTypePage},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		t, err := a.Templates.FindByID(siteID, *ref.id)
		if err != nil {
			return "", err
		}
		if t == nil || t.Type != ref.typ {
			return string(ref.typ) + "_template_id does not name a " + string(ref.typ) + " template of this site", nil
		}
	}
	return "", nil
}

// PagesList returns the site's pages without blocks.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	pages, err := a.Pages.ListBySite(siteFromCtx(r.Context()).ID)
	if err != nil {
		serverError(w, r, "list pages failed", err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// loadPage resolves the {id} parameter. It writes the error response and
// returns nil when the page is unknown.
func (a *Admin) loadPage(w http.ResponseWriter, r *http.Request) *models.Page {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return nil
	}
	p, err := a.Pages.FindByID(siteFromCtx(r.Context()).ID, id)
	if err != nil {
		serverError(w, r, "page lookup failed", err)
		return nil
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return nil
	}
	return p
}

// PageGet returns a page with all its blocks, hidden ones included.
func (a *Admin) PageGet(w http.ResponseWriter, r *http.Request) {
	p := a.loadPage(w, r)
	if p == nil {
		return
	}
	blocks, err := a.PageBlocks.List(p.ID)
	if err != nil {
		serverError(w, r, "list page blocks failed", err)
		return
	}
	p.Blocks = blocks
	writeJSON(w, http.StatusOK, p)
}

// PageCreate adds a page, optionally with its blocks.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := siteFromCtx(r.Context())
	p := &models.Page{SiteID: site.ID, Status: models.PageStatusDraft}
	if msg := req.apply(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.templateRefsOK(w, r, site.ID, p) {
		return
	}

	created, err := a.Pages.Create(p)
	if errors.Is(err, store.ErrDuplicateSlug) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "create page failed", err)
		return
	}
	if req.Blocks != nil {
		blocks, err := a.PageBlocks.Replace(created.ID, blocksFrom(created.ID, req.Blocks))
		if err != nil {
			serverError(w, r, "save page blocks failed", err)
			return
		}
		created.Blocks = blocks
	}

	a.changed(r, site.ID, "page", created.ID, "create")
	zap.S().Infow("page created", "site_id", site.ID, "page_id", created.ID, "slug", created.Slug)
	writeJSON(w, http.StatusCreated, created)
}

func (a *Admin) templateRefsOK(w http.ResponseWriter, r *http.Request, siteID uuid.UUID, p *models.Page) bool {
	msg, err := a.checkTemplateRefs(siteID, p)
	if err != nil {
		serverError(w, r, "template lookup failed", err)
		return false
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// PageUpdate replaces a page's fields and, when given, its blocks.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	p := a.loadPage(w, r)
	if p == nil {
		return
	}
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.apply(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.templateRefsOK(w, r, p.SiteID, p) {
		return
	}

	err := a.Pages.Update(p)
	switch {
	case errors.Is(err, store.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "page not found")
		return
	case err != nil:
		serverError(w, r, "update page failed", err)
		return
	}
	if req.Blocks != nil {
		blocks, err := a.PageBlocks.Replace(p.ID, blocksFrom(p.ID, req.Blocks))
		if err != nil {
			serverError(w, r, "save page blocks failed", err)
			return
		}
		p.Blocks = blocks
	}

	a.changed(r, p.SiteID, "page", p.ID, "update")
	writeJSON(w, http.StatusOK, p)
}

// PageDelete removes a page and its blocks.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	site := siteFromCtx(r.Context())
	err := a.Pages.Delete(site.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete page failed", err)
		return
	}
	a.changed(r, site.ID, "page", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}
