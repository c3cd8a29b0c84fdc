// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"blockpress/internal/tenant"
)

// recentInvalidations is how many cache log entries the cache report shows.
const recentInvalidations = 20

// Debug exposes cache and tenant internals. Mount only outside production.
type Debug struct {
	components ComponentLoader
	pages      PageCacheInspector
	log        CacheLog
	tenants    TenantResolver
}

// NewDebug creates the Debug handler group. pages may be nil.
func NewDebug(components ComponentLoader, pages PageCacheInspector, log CacheLog, tenants TenantResolver) *Debug {
	return &Debug{components: components, pages: pages, log: log, tenants: tenants}
}

// Cache reports the loaded themes, the cached pages of the resolved site
// and the latest invalidations.
func (d *Debug) Cache(w http.ResponseWriter, r *http.Request) {
	report := map[string]any{
		"component_themes": d.components.Cached(),
		"tenant_keys":      d.tenants.CacheKeys(),
	}

	if match, err := d.tenants.Resolve(r); err == nil && match != nil && d.pages != nil {
		keys, err := d.pages.Keys(r.Context(), match.Site.ID)
		if err != nil {
			serverError(w, r, "list page cache failed", err)
			return
		}
		report["site_id"] = match.Site.ID
		report["page_keys"] = keys
	}

	entries, err := d.log.RecentEntries(recentInvalidations)
	if err != nil {
		serverError(w, r, "read cache log failed", err)
		return
	}
	report["invalidations"] = entries
	writeJSON(w, http.StatusOK, report)
}

// Tenant shows how the request resolves to a site.
func (d *Debug) Tenant(w http.ResponseWriter, r *http.Request) {
	match, err := d.tenants.Resolve(r)
	if err != nil {
		serverError(w, r, "tenant resolve failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"host":       tenant.RequestHost(r),
		"header":     r.Header.Get(tenant.HeaderSiteID),
		"query":      r.URL.Query().Get("site"),
		"match":      match,
		"cache_keys": d.tenants.CacheKeys(),
	})
}
