// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blockpress/internal/models"
	"blockpress/internal/store"
)

type navigationRequest struct {
	Label        string     `json:"label" validate:"required,max=200"`
	Type         string     `json:"type" validate:"required,oneof=internal external"`
	Href         *string    `json:"href" validate:"required_if=Type external,omitempty,max=2000"`
	PageID       *uuid.UUID `json:"page_id" validate:"required_if=Type internal"`
	IsVisible    *bool      `json:"is_visible"`
	OpenInNewTab bool       `json:"open_in_new_tab"`
}

// apply copies the request onto n. Internal items must point at a page of
// the same site.
func (a *Admin) applyNavigation(w http.ResponseWriter, r *http.Request, req *navigationRequest, n *models.NavigationItem) bool {
	n.Label = strings.TrimSpace(req.Label)
	n.Type = models.NavigationType(req.Type)
	n.OpenInNewTab = req.OpenInNewTab
	if req.IsVisible != nil {
		n.IsVisible = *req.IsVisible
	}

	if n.Type == models.NavigationExternal {
		href := strings.TrimSpace(*req.Href)
		if href == "" {
			writeError(w, http.StatusBadRequest, "href is required")
			return false
		}
		n.Href, n.PageID = &href, nil
		return true
	}

	p, err := a.Pages.FindByID(n.SiteID, *req.PageID)
	if err != nil {
		serverError(w, r, "page lookup failed", err)
		return false
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "page_id does not name a page of this site")
		return false
	}
	n.PageID, n.Href = req.PageID, nil
	return true
}

// NavigationList returns every navigation item of the site, hidden ones
// included.
func (a *Admin) NavigationList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Navigation.ListBySite(siteFromCtx(r.Context()).ID)
	if err != nil {
		serverError(w, r, "list navigation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, withURLs(items))
}

// NavigationCreate appends an item to the menu.
func (a *Admin) NavigationCreate(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := siteFromCtx(r.Context())
	n := &models.NavigationItem{SiteID: site.ID, IsVisible: true}
	if !a.applyNavigation(w, r, &req, n) {
		return
	}
	created, err := a.Navigation.Create(n)
	if err != nil {
		serverError(w, r, "create navigation item failed", err)
		return
	}
	a.changed(r, site.ID, "navigation", created.ID, "create")
	writeJSON(w, http.StatusCreated, withURL(*created))
}

// NavigationUpdate modifies an item.
func (a *Admin) NavigationUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	site := siteFromCtx(r.Context())
	n, err := a.Navigation.FindByID(site.ID, id)
	if err != nil {
		serverError(w, r, "navigation lookup failed", err)
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "navigation item not found")
		return
	}
	var req navigationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !a.applyNavigation(w, r, &req, n) {
		return
	}

	err = a.Navigation.Update(n)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "navigation item not found")
		return
	}
	if err != nil {
		serverError(w, r, "update navigation item failed", err)
		return
	}
	updated, err := a.Navigation.FindByID(site.ID, id)
	if err != nil || updated == nil {
		serverError(w, r, "navigation reload failed", err)
		return
	}
	a.changed(r, site.ID, "navigation", id, "update")
	writeJSON(w, http.StatusOK, withURL(*updated))
}

// NavigationDelete removes an item.
func (a *Admin) NavigationDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	site := siteFromCtx(r.Context())
	err := a.Navigation.Delete(site.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "navigation item not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete navigation item failed", err)
		return
	}
	a.changed(r, site.ID, "navigation", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// NavigationOrder persists a new menu order.
func (a *Admin) NavigationOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	site := siteFromCtx(r.Context())
	err := a.Navigation.Reorder(site.ID, req.IDs)
	if errors.Is(err, store.ErrOrderMismatch) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "reorder navigation failed", err)
		return
	}
	a.changed(r, site.ID, "navigation", uuid.Nil, "reorder")

	items, err := a.Navigation.ListBySite(site.ID)
	if err != nil {
		serverError(w, r, "list navigation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, withURLs(items))
}

// navigationView adds the resolved link target to an item.
type navigationView struct {
	models.NavigationItem
	URL string `json:"url"`
}

func withURL(n models.NavigationItem) navigationView {
	return navigationView{NavigationItem: n, URL: n.URL()}
}

func withURLs(items []models.NavigationItem) []navigationView {
	out := make([]navigationView, 0, len(items))
	for _, n := range items {
		out = append(out, withURL(n))
	}
	return out
}
