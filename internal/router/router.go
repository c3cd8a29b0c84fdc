// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes are
// grouped into operational endpoints, the auth and admin JSON API, the
// tenant-resolved public API and pages, and static files (snapshots and
// theme assets).
package router

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blockpress/internal/components"
	"blockpress/internal/handlers"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
	"blockpress/internal/themes"
)

// Deps are the handler groups and settings the router mounts.
type Deps struct {
	Sessions middleware.SessionGetter
	// Tenant resolves the site of public requests.
	Tenant func(http.Handler) http.Handler

	Auth    *handlers.Auth
	Admin   *handlers.Admin
	Public  *handlers.Public
	Webhook *handlers.Webhook
	Debug   *handlers.Debug // nil leaves the debug routes unmounted

	// LoginLimiter throttles login attempts per client. Optional.
	LoginLimiter *middleware.RateLimiter

	ThemesDir    string
	SnapshotDir  string
	SecureCookie bool
}

// New creates the chi router with all middleware and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.SecureCookie))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))

		login := r.With()
		if d.LoginLimiter != nil {
			login = r.With(d.LoginLimiter.Middleware)
		}
		login.Post("/login", d.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRF(d.SecureCookie))
			r.Use(middleware.RequireAuth)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
			r.Get("/me", d.Auth.Me)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.CSRF(d.SecureCookie))
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		mountAdmin(r, d.Admin)
	})

	r.Post("/api/webhooks/regenerate", d.Webhook.Regenerate)

	if d.Debug != nil {
		r.Get("/api/debug/cache", d.Debug.Cache)
		r.Get("/api/debug/tenant", d.Debug.Tenant)
	}

	r.Get("/data/{siteID}/{file}", snapshotFile(d.SnapshotDir))
	r.Get("/themes/{themeID}/assets/*", themeAssets(d.ThemesDir))

	// Public API and pages, scoped to the resolved site.
	r.Group(func(r chi.Router) {
		r.Use(d.Tenant)
		r.Get("/api/site", d.Public.Site)
		r.Get("/api/pages/{slug}", d.Public.PageBySlug)
		r.Get("/api/navigation", d.Public.NavigationItems)
		r.Get("/api/settings", d.Public.SettingsAll)
		r.Get("/", d.Public.Home)
		r.Get("/{slug}", d.Public.Page)
	})

	return r
}

// mountAdmin registers the admin API. Site writes need the master role;
// design changes need admin or master; content is open to every role.
func mountAdmin(r chi.Router, a *handlers.Admin) {
	designers := middleware.RequireRole(models.RoleMaster, models.RoleAdmin)

	r.Get("/sites", a.SitesList)
	r.With(middleware.RequireMaster).Post("/sites", a.SiteCreate)

	r.Get("/themes", a.ThemesList)
	r.With(designers).Post("/themes/refresh", a.ThemesRefresh)
	r.Get("/themes/{themeID}/components", a.ThemeComponents)

	r.Route("/sites/{siteID}", func(r chi.Router) {
		r.Use(a.SiteCtx)

		r.Get("/", a.SiteGet)
		r.With(middleware.RequireMaster).Put("/", a.SiteUpdate)
		r.With(middleware.RequireMaster).Delete("/", a.SiteDelete)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", a.PagesList)
			r.Post("/", a.PageCreate)
			r.Get("/{id}", a.PageGet)
			r.Put("/{id}", a.PageUpdate)
			r.Delete("/{id}", a.PageDelete)
			r.Get("/{id}/blocks", a.PageBlocksList)
			r.Put("/{id}/blocks", a.PageBlocksReplace)
			r.Post("/{id}/blocks", a.PageBlockCreate)
			r.Put("/{id}/blocks/order", a.PageBlocksOrder)
			r.Patch("/{id}/blocks/{blockID}", a.PageBlockPatch)
			r.Delete("/{id}/blocks/{blockID}", a.PageBlockDelete)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", a.TemplatesList)
			r.Get("/{id}", a.TemplateGet)
			r.Get("/{id}/blocks", a.TemplateBlocksList)
			r.Group(func(r chi.Router) {
				r.Use(designers)
				r.Post("/", a.TemplateCreate)
				r.Put("/{id}", a.TemplateUpdate)
				r.Delete("/{id}", a.TemplateDelete)
				r.Post("/{id}/activate", a.TemplateActivate)
				r.Put("/{id}/blocks", a.TemplateBlocksReplace)
				r.Post("/{id}/blocks", a.TemplateBlockCreate)
				r.Put("/{id}/blocks/order", a.TemplateBlocksOrder)
				r.Patch("/{id}/blocks/{blockID}", a.TemplateBlockPatch)
				r.Delete("/{id}/blocks/{blockID}", a.TemplateBlockDelete)
			})
		})

		r.Route("/navigation", func(r chi.Router) {
			r.Get("/", a.NavigationList)
			r.Post("/", a.NavigationCreate)
			r.Put("/order", a.NavigationOrder)
			r.Put("/{id}", a.NavigationUpdate)
			r.Delete("/{id}", a.NavigationDelete)
		})

		r.Get("/settings", a.SettingsGet)
		r.With(designers).Put("/settings", a.SettingsPut)
		r.With(designers).Put("/settings/{key}", a.SettingPut)

		r.Get("/theme", a.SiteThemeGet)
		r.With(designers).Put("/theme", a.SiteThemeSwitch)

		r.With(designers).Post("/snapshot", a.SnapshotGenerate)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// snapshotFile serves <dir>/<siteID>/<file>. Only JSON files of a
// well-formed site id are reachable.
func snapshotFile(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
		file := chi.URLParam(r, "file")
		if err != nil || !strings.HasSuffix(file, ".json") || !filepath.IsLocal(file) || strings.ContainsRune(file, '/') {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filepath.Join(dir, siteID.String(), file))
	}
}

// themeAssets serves the assets of a theme. Compiled themes serve their
// embedded files; disk themes serve <dir>/<id>/assets.
func themeAssets(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathParam(r, "themeID")
		if err != nil || !themes.ValidID(id) {
			http.NotFound(w, r)
			return
		}
		name, err := pathParam(r, "*")
		if err != nil || name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}

		var files http.Handler
		if t, ok := components.Compiled(id); ok && t.Assets != nil {
			files = http.FileServerFS(t.Assets)
		} else {
			files = http.FileServer(http.Dir(filepath.Join(dir, id, "assets")))
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = "/" + name
		r2.URL.RawPath = ""
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r2)
	}
}

// pathParam returns a decoded URL parameter. chi matches on the raw path
// when the request has one, leaving parameters escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
