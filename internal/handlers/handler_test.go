package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blockpress/internal/models"
	"blockpress/internal/tenant"
)

// testEnv wires the handlers to in-memory fakes behind a chi router laid
// out like the production routes.
type testEnv struct {
	t *testing.T

	site           *models.Site
	sites          *fakeSites
	pages          *fakePages
	pageBlocks     *fakeBlocks
	templates      *fakeTemplates
	templateBlocks *fakeBlocks
	nav            *fakeNavigation
	settings       *fakeSettings
	engine         *fakeEngine
	loader         *fakeLoader
	registry       *fakeRegistry
	snapshots      *fakeSnapshots
	tenants        *fakeTenants

	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	domain := "example.com"
	site := &models.Site{ID: uuid.New(), Name: "Example", Domain: &domain, Status: models.SiteStatusActive}

	e := &testEnv{
		t:              t,
		site:           site,
		sites:          newFakeSites(site),
		pages:          &fakePages{},
		pageBlocks:     newFakeBlocks(),
		templates:      &fakeTemplates{},
		templateBlocks: newFakeBlocks(),
		nav:            &fakeNavigation{},
		settings:       newFakeSettings(),
		engine:         newFakeEngine(),
		loader:         newFakeLoader("modern"),
		registry:       &fakeRegistry{ids: []string{"broken", "modern"}},
		snapshots:      &fakeSnapshots{success: true},
		tenants:        &fakeTenants{match: &tenant.Match{Site: site, By: tenant.ByDomain}},
	}

	admin := NewAdmin(AdminDeps{
		Sites:          e.sites,
		Pages:          e.pages,
		PageBlocks:     e.pageBlocks,
		Templates:      e.templates,
		TemplateBlocks: e.templateBlocks,
		Navigation:     e.nav,
		Settings:       e.settings,
		Engine:         e.engine,
		Components:     e.loader,
		Themes:         e.registry,
		Snapshots:      e.snapshots,
		Tenants:        e.tenants,
	})
	public := NewPublic(PublicDeps{
		Pages:      e.pages,
		PageBlocks: e.pageBlocks,
		Navigation: e.nav,
		Settings:   e.settings,
		Engine:     e.engine,
	})

	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/sites", admin.SitesList)
		r.Post("/sites", admin.SiteCreate)
		r.Get("/themes", admin.ThemesList)
		r.Post("/themes/refresh", admin.ThemesRefresh)
		r.Get("/themes/{themeID}/components", admin.ThemeComponents)
		r.Route("/sites/{siteID}", func(r chi.Router) {
			r.Use(admin.SiteCtx)
			r.Get("/", admin.SiteGet)
			r.Put("/", admin.SiteUpdate)
			r.Delete("/", admin.SiteDelete)

			r.Get("/pages", admin.PagesList)
			r.Post("/pages", admin.PageCreate)
			r.Get("/pages/{id}", admin.PageGet)
			r.Put("/pages/{id}", admin.PageUpdate)
			r.Delete("/pages/{id}", admin.PageDelete)
			r.Get("/pages/{id}/blocks", admin.PageBlocksList)
			r.Put("/pages/{id}/blocks", admin.PageBlocksReplace)
			r.Post("/pages/{id}/blocks", admin.PageBlockCreate)
			r.Put("/pages/{id}/blocks/order", admin.PageBlocksOrder)
			r.Patch("/pages/{id}/blocks/{blockID}", admin.PageBlockPatch)
			r.Delete("/pages/{id}/blocks/{blockID}", admin.PageBlockDelete)

			r.Post("/templates", admin.TemplateCreate)
			r.Put("/templates/{id}", admin.TemplateUpdate)
			r.Post("/templates/{id}/activate", admin.TemplateActivate)
			r.Delete("/templates/{id}", admin.TemplateDelete)
			r.Put("/templates/{id}/blocks", admin.TemplateBlocksReplace)

			r.Get("/navigation", admin.NavigationList)
			r.Post("/navigation", admin.NavigationCreate)
			r.Put("/navigation/order", admin.NavigationOrder)
			r.Put("/navigation/{id}", admin.NavigationUpdate)

			r.Get("/settings", admin.SettingsGet)
			r.Put("/settings", admin.SettingsPut)
			r.Put("/settings/{key}", admin.SettingPut)
			r.Get("/theme", admin.SiteThemeGet)
			r.Put("/theme", admin.SiteThemeSwitch)
			r.Post("/snapshot", admin.SnapshotGenerate)
		})
	})
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(tenant.WithSite(req.Context(), site)))
			})
		})
		r.Get("/api/site", public.Site)
		r.Get("/api/pages/{slug}", public.PageBySlug)
		r.Get("/api/navigation", public.NavigationItems)
		r.Get("/api/settings", public.SettingsAll)
		r.Get("/", public.Home)
		r.Get("/{slug}", public.Page)
	})
	e.router = r
	return e
}

func (e *testEnv) sitePath(suffix string) string {
	return "/api/admin/sites/" + e.site.ID.String() + suffix
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// createPage adds a page through the API and returns it.
func (e *testEnv) createPage(body string) models.Page {
	e.t.Helper()
	rec := e.do(http.MethodPost, e.sitePath("/pages"), body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Page](e.t, rec)
}
