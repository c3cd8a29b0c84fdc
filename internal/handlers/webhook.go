// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockpress/internal/snapshot"
)

// WebhookSecretHeader carries the shared webhook secret.
const WebhookSecretHeader = "X-Webhook-Secret"

// Webhook triggers snapshot regeneration from outside systems.
type Webhook struct {
	snapshots Snapshotter
	secret    string
}

// NewWebhook creates the webhook handler. An empty secret disables it.
func NewWebhook(snapshots Snapshotter, secret string) *Webhook {
	return &Webhook{snapshots: snapshots, secret: secret}
}

type regenerateRequest struct {
	SiteID *uuid.UUID `json:"site_id"`
}

// Regenerate rebuilds the snapshot of one site, or of every active site
// when the body names none.
func (h *Webhook) Regenerate(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeError(w, http.StatusNotFound, "webhook disabled")
		return
	}
	got := r.Header.Get(WebhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		zap.S().Warnw("webhook rejected", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var req regenerateRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	var results []snapshot.Result
	if req.SiteID != nil {
		results = []snapshot.Result{h.snapshots.Generate(r.Context(), *req.SiteID)}
	} else {
		all, err := h.snapshots.GenerateAll(r.Context())
		if err != nil {
			serverError(w, r, "regenerate all snapshots failed", err)
			return
		}
		results = all
	}

	status := http.StatusOK
	for _, res := range results {
		if !res.Success {
			status = http.StatusInternalServerError
		}
	}
	zap.S().Infow("webhook regeneration finished", "sites", len(results), "status", status)
	writeJSON(w, status, map[string]any{"results": results})
}
