// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blockpress/internal/models"
	"blockpress/internal/store"
)

type blockRequest struct {
	ComponentType string          `json:"component_type" validate:"required,max=100"`
	Props         json.RawMessage `json:"props" validate:"jsonobject"`
	IsVisible     *bool           `json:"is_visible"`
}

func (req blockRequest) block(parentID uuid.UUID) models.Block {
	b := models.Block{
		ParentID:      parentID,
		ComponentType: strings.TrimSpace(req.ComponentType),
		Props:         req.Props,
		IsVisible:     true,
	}
	if req.IsVisible != nil {
		b.IsVisible = *req.IsVisible
	}
	return b
}

func blocksFrom(parentID uuid.UUID, reqs []blockRequest) []models.Block {
	out := make([]models.Block, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, req.block(parentID))
	}
	return out
}

type replaceBlocksRequest struct {
	Blocks []blockRequest `json:"blocks" validate:"required,dive"`
}

type blockPatchRequest struct {
	ComponentType *string         `json:"component_type" validate:"omitempty,max=100"`
	Props         json.RawMessage `json:"props" validate:"jsonobject"`
	IsVisible     *bool           `json:"is_visible"`
}

type orderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required"`
}

// blockScope serves the block endpoints of one kind of parent.
type blockScope struct {
	entity string // "page" or "template"
	blocks BlockStore
	// exists reports whether the parent belongs to the site.
	exists func(siteID, id uuid.UUID) (bool, error)
	// touched runs after the parent's block list changed.
	touched func(r *http.Request, siteID, id uuid.UUID)
}

func (a *Admin) pageBlocks() blockScope {
	return blockScope{
		entity: "page",
		blocks: a.PageBlocks,
		exists: func(siteID, id uuid.UUID) (bool, error) {
			p, err := a.Pages.FindByID(siteID, id)
			return p != nil, err
		},
		touched: func(r *http.Request, siteID, id uuid.UUID) {
			a.changed(r, siteID, "page", id, "blocks")
		},
	}
}

func (a *Admin) templateBlocks() blockScope {
	return blockScope{
		entity: "template",
		blocks: a.TemplateBlocks,
		exists: func(siteID, id uuid.UUID) (bool, error) {
			t, err := a.Templates.FindByID(siteID, id)
			return t != nil, err
		},
		touched: func(r *http.Request, siteID, id uuid.UUID) {
			if err := a.Templates.Touch(siteID, id); err != nil {
				serverErrorLog(r, "touch template failed", err)
			}
			a.changed(r, siteID, "template", id, "blocks")
		},
	}
}

// parent resolves the {id} parameter. It writes the error response and
// returns false when the parent is unknown.
func (s blockScope) parent(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	site := siteFromCtx(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	found, err := s.exists(site.ID, id)
	if err != nil {
		serverError(w, r, s.entity+" lookup failed", err)
		return uuid.Nil, uuid.Nil, false
	}
	if !found {
		writeError(w, http.StatusNotFound, s.entity+" not found")
		return uuid.Nil, uuid.Nil, false
	}
	return site.ID, id, true
}

func (s blockScope) list(w http.ResponseWriter, r *http.Request) {
	_, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	blocks, err := s.blocks.List(id)
	if err != nil {
		serverError(w, r, "list blocks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s blockScope) replace(w http.ResponseWriter, r *http.Request) {
	siteID, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	var req replaceBlocksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	blocks, err := s.blocks.Replace(id, blocksFrom(id, req.Blocks))
	if err != nil {
		serverError(w, r, "replace blocks failed", err)
		return
	}
	s.touched(r, siteID, id)
	writeJSON(w, http.StatusOK, blocks)
}

func (s blockScope) create(w http.ResponseWriter, r *http.Request) {
	siteID, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b := req.block(id)
	created, err := s.blocks.Create(&b)
	if err != nil {
		serverError(w, r, "create block failed", err)
		return
	}
	s.touched(r, siteID, id)
	writeJSON(w, http.StatusCreated, created)
}

func (s blockScope) order(w http.ResponseWriter, r *http.Request) {
	siteID, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := s.blocks.Reorder(id, req.IDs)
	if errors.Is(err, store.ErrOrderMismatch) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "reorder blocks failed", err)
		return
	}
	s.touched(r, siteID, id)

	blocks, err := s.blocks.List(id)
	if err != nil {
		serverError(w, r, "list blocks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s blockScope) patch(w http.ResponseWriter, r *http.Request) {
	siteID, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	var req blockPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.blocks.FindByID(id, blockID)
	if err != nil {
		serverError(w, r, "block lookup failed", err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	if req.ComponentType != nil {
		typ := strings.TrimSpace(*req.ComponentType)
		if typ == "" {
			writeError(w, http.StatusBadRequest, "component_type is required")
			return
		}
		b.ComponentType = typ
	}
	if req.Props != nil {
		b.Props = req.Props
	}
	if req.IsVisible != nil {
		b.IsVisible = *req.IsVisible
	}

	err = s.blocks.Update(b)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	if err != nil {
		serverError(w, r, "update block failed", err)
		return
	}
	s.touched(r, siteID, id)
	writeJSON(w, http.StatusOK, b)
}

func (s blockScope) remove(w http.ResponseWriter, r *http.Request) {
	siteID, id, ok := s.parent(w, r)
	if !ok {
		return
	}
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	err := s.blocks.Delete(id, blockID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete block failed", err)
		return
	}
	s.touched(r, siteID, id)
	w.WriteHeader(http.StatusNoContent)
}

// Page block endpoints.

func (a *Admin) PageBlocksList(w http.ResponseWriter, r *http.Request)    { a.pageBlocks().list(w, r) }
func (a *Admin) PageBlocksReplace(w http.ResponseWriter, r *http.Request) { a.pageBlocks().replace(w, r) }
func (a *Admin) PageBlockCreate(w http.ResponseWriter, r *http.Request)   { a.pageBlocks().create(w, r) }
func (a *Admin) PageBlocksOrder(w http.ResponseWriter, r *http.Request)   { a.pageBlocks().order(w, r) }
func (a *Admin) PageBlockPatch(w http.ResponseWriter, r *http.Request)    { a.pageBlocks().patch(w, r) }
func (a *Admin) PageBlockDelete(w http.ResponseWriter, r *http.Request)   { a.pageBlocks().remove(w, r) }

// Template block endpoints. Every change bumps the template version.

func (a *Admin) TemplateBlocksList(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().list(w, r)
}
func (a *Admin) TemplateBlocksReplace(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().replace(w, r)
}
func (a *Admin) TemplateBlockCreate(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().create(w, r)
}
func (a *Admin) TemplateBlocksOrder(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().order(w, r)
}
func (a *Admin) TemplateBlockPatch(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().patch(w, r)
}
func (a *Admin) TemplateBlockDelete(w http.ResponseWriter, r *http.Request) {
	a.templateBlocks().remove(w, r)
}
