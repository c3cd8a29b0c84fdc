// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"blockpress/internal/models"
	"blockpress/internal/store"
	"blockpress/internal/themes"
)

type templateRequest struct {
	Name    string         `json:"name" validate:"required,max=200"`
	Type    string         `json:"type" validate:"omitempty,oneof=header footer page"`
	ThemeID string         `json:"theme_id" validate:"omitempty,max=255"`
	Blocks  []blockRequest `json:"blocks" validate:"omitempty,dive"`
}

func (a *Admin) loadTemplate(w http.ResponseWriter, r *http.Request) *models.Template {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return nil
	}
	t, err := a.Templates.FindByID(siteFromCtx(r.Context()).ID, id)
	if err != nil {
		serverError(w, r, "template lookup failed", err)
		return nil
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return nil
	}
	return t
}

// TemplatesList returns the site's templates.
func (a *Admin) TemplatesList(w http.ResponseWriter, r *http.Request) {
	list, err := a.Templates.ListBySite(siteFromCtx(r.Context()).ID)
	if err != nil {
		serverError(w, r, "list templates failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// TemplateGet returns a template with its blocks.
func (a *Admin) TemplateGet(w http.ResponseWriter, r *http.Request) {
	t := a.loadTemplate(w, r)
	if t == nil {
		return
	}
	blocks, err := a.TemplateBlocks.List(t.ID)
	if err != nil {
		serverError(w, r, "list template blocks failed", err)
		return
	}
	t.Blocks = blocks
	writeJSON(w, http.StatusOK, t)
}

// TemplateCreate adds an inactive template.
func (a *Admin) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.ThemeID != "" && !themes.ValidID(req.ThemeID) {
		writeError(w, http.StatusBadRequest, "theme_id is invalid")
		return
	}
	site := siteFromCtx(r.Context())

	created, err := a.Templates.Create(&models.Template{
		SiteID:  site.ID,
		Name:    strings.TrimSpace(req.Name),
		Type:    models.TemplateType(req.Type),
		ThemeID: req.ThemeID,
	})
	if err != nil {
		serverError(w, r, "create template failed", err)
		return
	}
	if req.Blocks != nil {
		blocks, err := a.TemplateBlocks.Replace(created.ID, blocksFrom(created.ID, req.Blocks))
		if err != nil {
			serverError(w, r, "save template blocks failed", err)
			return
		}
		created.Blocks = blocks
	}
	writeJSON(w, http.StatusCreated, created)
}

// TemplateUpdate renames a template, changes its theme and, when given,
// replaces its blocks. The type cannot change.
func (a *Admin) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	t := a.loadTemplate(w, r)
	if t == nil {
		return
	}
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type != "" && models.TemplateType(req.Type) != t.Type {
		writeError(w, http.StatusBadRequest, "type cannot be changed")
		return
	}
	if req.ThemeID != "" {
		if !themes.ValidID(req.ThemeID) {
			writeError(w, http.StatusBadRequest, "theme_id is invalid")
			return
		}
		t.ThemeID = req.ThemeID
	}
	t.Name = strings.TrimSpace(req.Name)

	err := a.Templates.Update(t)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		serverError(w, r, "update template failed", err)
		return
	}
	t.Version++
	if req.Blocks != nil {
		blocks, err := a.TemplateBlocks.Replace(t.ID, blocksFrom(t.ID, req.Blocks))
		if err != nil {
			serverError(w, r, "save template blocks failed", err)
			return
		}
		t.Blocks = blocks
	}
	a.changed(r, t.SiteID, "template", t.ID, "update")
	writeJSON(w, http.StatusOK, t)
}

// TemplateActivate makes a template the active one of its type.
func (a *Admin) TemplateActivate(w http.ResponseWriter, r *http.Request) {
	t := a.loadTemplate(w, r)
	if t == nil {
		return
	}
	err := a.Templates.Activate(t.SiteID, t.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		serverError(w, r, "activate template failed", err)
		return
	}
	t.IsActive = true
	a.changed(r, t.SiteID, "template", t.ID, "activate")
	writeJSON(w, http.StatusOK, t)
}

// TemplateDelete removes an inactive template.
func (a *Admin) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	site := siteFromCtx(r.Context())
	err := a.Templates.Delete(site.ID, id)
	switch {
	case errors.Is(err, store.ErrActiveTemplate):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "template not found")
		return
	case err != nil:
		serverError(w, r, "delete template failed", err)
		return
	}
	a.changed(r, site.ID, "template", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}
