package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockpress/internal/components"
	"blockpress/internal/models"
	"blockpress/internal/snapshot"
)

func TestSiteCtx(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/api/admin/sites/not-a-uuid/pages", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/sites/"+uuid.NewString()+"/pages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"site not found"}`, rec.Body.String())

	rec = e.do(http.MethodGet, e.sitePath(""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, e.site.ID, decode[models.Site](t, rec).ID)
}

func TestSiteCreateAndDuplicateDomain(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/admin/sites", `{"name":"Second","domain":"Second.Example.org"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Site](t, rec)
	assert.Equal(t, "second.example.org", created.DomainOrEmpty())
	assert.Equal(t, models.SiteStatusActive, created.Status)
	assert.Equal(t, 1, e.tenants.invalidated)

	rec = e.do(http.MethodPost, "/api/admin/sites", `{"name":"Clash","domain":"example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/admin/sites", `{"name":"Bad","domain":"not a host"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/admin/sites", `{"name":"Padded","domain":" Third.Example.org. "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	padded := decode[models.Site](t, rec)
	assert.Equal(t, "third.example.org", padded.DomainOrEmpty())
}

func TestSiteDeleteInvalidatesTenants(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodDelete, e.sitePath(""), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, e.tenants.invalidated)
	require.NotEmpty(t, e.engine.invalidations)
}

func TestPageCreateDuplicateSlugConflict(t *testing.T) {
	e := newTestEnv(t)

	e.createPage(`{"title":"About","slug":"about"}`)
	rec := e.do(http.MethodPost, e.sitePath("/pages"), `{"title":"About again","slug":"about"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "slug already exists")
}

func TestPageUpdateDuplicateSlugConflict(t *testing.T) {
	e := newTestEnv(t)
	e.createPage(`{"title":"About","slug":"about"}`)
	contact := e.createPage(`{"title":"Contact","slug":"contact"}`)

	rec := e.do(http.MethodPut, e.sitePath("/pages/"+contact.ID.String()), `{"title":"Contact","slug":"about"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPageCreateDefaults(t *testing.T) {
	e := newTestEnv(t)

	p := e.createPage(`{"title":"Hello, World!","blocks":[{"component_type":"hero","props":{"title":"Hi"}}]}`)
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, models.PageStatusDraft, p.Status)
	require.Len(t, p.Blocks, 1)
	assert.True(t, p.Blocks[0].IsVisible)

	assert.Equal(t, []invalidation{{e.site.ID, "page", "create"}}, e.engine.invalidations)
}

func TestPageCreateValidation(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"slug":"x"}`, "title is required"},
		{"bad slug", `{"title":"T","slug":"Not Valid"}`, "slug must be lowercase"},
		{"bad status", `{"title":"T","status":"archived"}`, "status must be one of"},
		{"props not object", `{"title":"T","blocks":[{"component_type":"hero","props":[1]}]}`, "blocks[0].props must be a JSON object"},
		{"block without type", `{"title":"T","blocks":[{"props":{}}]}`, "blocks[0].component_type is required"},
		{"unknown field", `{"title":"T","bogus":1}`, "invalid JSON"},
		{"empty body", ``, "request body is empty"},
		{"no slug possible", `{"title":"!!!"}`, "slug is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, e.sitePath("/pages"), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestPageTemplateRefsMustMatchType(t *testing.T) {
	e := newTestEnv(t)
	footer, _ := e.templates.Create(&models.Template{SiteID: e.site.ID, Name: "F", Type: models.TemplateTypeFooter})

	rec := e.do(http.MethodPost, e.sitePath("/pages"),
		fmt.Sprintf(`{"title":"T","header_template_id":%q}`, footer.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, e.sitePath("/pages"),
		fmt.Sprintf(`{"title":"T","footer_template_id":%q}`, footer.ID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPageBlocksReorderPersistsExactOrder(t *testing.T) {
	e := newTestEnv(t)
	p := e.createPage(`{"title":"Home","slug":"home","blocks":[
		{"component_type":"text","props":{"content":"A"}},
		{"component_type":"text","props":{"content":"B"}},
		{"component_type":"text","props":{"content":"C"}}]}`)
	a, b, c := p.Blocks[0].ID, p.Blocks[1].ID, p.Blocks[2].ID

	rec := e.do(http.MethodPut, e.sitePath("/pages/"+p.ID.String()+"/blocks/order"),
		fmt.Sprintf(`{"ids":[%q,%q,%q]}`, c, a, b))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[[]models.Block](t, rec)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{c, a, b}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})

	rec = e.do(http.MethodPut, e.sitePath("/pages/"+p.ID.String()+"/blocks/order"),
		fmt.Sprintf(`{"ids":[%q,%q]}`, c, a))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPageBlockPatchAndDelete(t *testing.T) {
	e := newTestEnv(t)
	p := e.createPage(`{"title":"Home","blocks":[{"component_type":"text","props":{"content":"A"}}]}`)
	blockPath := e.sitePath("/pages/" + p.ID.String() + "/blocks/" + p.Blocks[0].ID.String())

	rec := e.do(http.MethodPatch, blockPath, `{"is_visible":false,"props":{"content":"B"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[models.Block](t, rec)
	assert.False(t, patched.IsVisible)
	assert.Equal(t, "text", patched.ComponentType)
	assert.JSONEq(t, `{"content":"B"}`, string(patched.Props))

	rec = e.do(http.MethodPatch, blockPath, `{"component_type":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodDelete, blockPath, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(http.MethodDelete, blockPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageBlocksUnknownPage(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodPost, e.sitePath("/pages/"+uuid.NewString()+"/blocks"), `{"component_type":"text"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"page not found"}`, rec.Body.String())
}

func TestTemplateLifecycle(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, e.sitePath("/templates"), `{"name":"Main header","type":"header"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tmpl := decode[models.Template](t, rec)
	path := e.sitePath("/templates/" + tmpl.ID.String())

	rec = e.do(http.MethodPut, path+"/blocks", `{"blocks":[{"component_type":"navigation"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.templates.touched)

	rec = e.do(http.MethodPut, path, `{"name":"Renamed","type":"footer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "type cannot change")

	rec = e.do(http.MethodPut, path, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[models.Template](t, rec).Version)

	rec = e.do(http.MethodPost, path+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Template](t, rec).IsActive)

	rec = e.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusConflict, rec.Code, "active template cannot be deleted")
}

func TestTemplateCreateRequiresType(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodPost, e.sitePath("/templates"), `{"name":"X"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(http.MethodPost, e.sitePath("/templates"), `{"name":"X","type":"page","theme_id":"../etc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigationCreateAndReorder(t *testing.T) {
	e := newTestEnv(t)
	about := e.createPage(`{"title":"About","slug":"about"}`)

	rec := e.do(http.MethodPost, e.sitePath("/navigation"), `{"label":"Docs","type":"external","href":"https://docs.example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	docs := decode[navigationView](t, rec)
	assert.Equal(t, "https://docs.example.com", docs.URL)

	rec = e.do(http.MethodPost, e.sitePath("/navigation"), fmt.Sprintf(`{"label":"About","type":"internal","page_id":%q}`, about.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	aboutItem := decode[navigationView](t, rec)

	rec = e.do(http.MethodPut, e.sitePath("/navigation/order"), fmt.Sprintf(`{"ids":[%q,%q]}`, aboutItem.ID, docs.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	items := decode[[]navigationView](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, aboutItem.ID, items[0].ID)
	assert.Equal(t, docs.ID, items[1].ID)
}

func TestNavigationValidation(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"external without href", `{"label":"X","type":"external"}`},
		{"internal without page", `{"label":"X","type":"internal"}`},
		{"internal unknown page", fmt.Sprintf(`{"label":"X","type":"internal","page_id":%q}`, uuid.New())},
		{"bad type", `{"label":"X","type":"anchor","href":"#top"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, e.sitePath("/navigation"), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSiteThemeSwitchInvalidatesOldTheme(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, e.sitePath("/theme"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, components.DefaultThemeID, decode[map[string]any](t, rec)["theme_id"])

	rec = e.do(http.MethodPut, e.sitePath("/theme"), `{"theme_id":"modern"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "modern", body["theme_id"])
	assert.Equal(t, components.DefaultThemeID, body["previous"])

	assert.Equal(t, []string{components.DefaultThemeID}, e.loader.invalidated)
	assert.Contains(t, e.engine.invalidations, invalidation{e.site.ID, "theme", "switch"})
	settings, _ := e.settings.All(e.site.ID)
	assert.Equal(t, "modern", settings.ActiveTheme())

	rec = e.do(http.MethodPut, e.sitePath("/theme"), `{"theme_id":"ghost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	settings, _ = e.settings.All(e.site.ID)
	assert.Equal(t, "modern", settings.ActiveTheme(), "failed switch keeps the theme")
}

func TestSiteThemeSwitchHidesLoadErrors(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPut, e.sitePath("/theme"), `{"theme_id":"broken"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decode[map[string]string](t, rec)["error"]
	assert.Equal(t, "theme broken cannot be loaded", msg)
	assert.NotContains(t, msg, "/srv")

	rec = e.do(http.MethodPut, e.sitePath("/settings"), `{"settings":{"active_theme":"broken"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "theme broken cannot be loaded", decode[map[string]string](t, rec)["error"])
}

func TestSettingsPutActiveThemeGoesThroughSwitch(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPut, e.sitePath("/settings"), `{"settings":{"site_title":"Hello","active_theme":"ghost"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	settings, _ := e.settings.All(e.site.ID)
	assert.Empty(t, settings, "nothing is saved when the theme is unknown")

	rec = e.do(http.MethodPut, e.sitePath("/settings"), `{"settings":{"site_title":"Hello","active_theme":"modern"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.SiteSettings{"site_title": "Hello", "active_theme": "modern"}, decode[models.SiteSettings](t, rec))
	assert.Equal(t, []string{components.DefaultThemeID}, e.loader.invalidated)

	rec = e.do(http.MethodPut, e.sitePath("/settings/site_description"), `{"value":"A site"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A site", decode[models.SiteSettings](t, rec)["site_description"])
	assert.Contains(t, e.engine.invalidations, invalidation{e.site.ID, "settings", "update"})

	rec = e.do(http.MethodPut, e.sitePath("/settings"), `{"settings":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemesListAndRefresh(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/api/admin/themes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]themeView](t, rec)
	byID := map[string]themeView{}
	for _, v := range list {
		byID[v.ID] = v
	}
	require.Contains(t, byID, components.DefaultThemeID)
	assert.True(t, byID[components.DefaultThemeID].Builtin)
	assert.Contains(t, byID[components.DefaultThemeID].Components, "hero")
	assert.Equal(t, "Theme modern", byID["modern"].Name)
	assert.Equal(t, "manifest cannot be loaded", byID["broken"].Error)

	rec = e.do(http.MethodPost, "/api/admin/themes/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.registry.invalidated)
	assert.Equal(t, 1, e.loader.all)
}

func TestThemeComponents(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/api/admin/themes/default/components", "")
	require.Equal(t, http.StatusOK, rec.Code)
	infos := decode[[]components.Info](t, rec)
	assert.NotEmpty(t, infos)

	rec = e.do(http.MethodGet, "/api/admin/themes/ghost/components", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotGenerate(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, e.sitePath("/snapshot"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[snapshot.Result](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, []uuid.UUID{e.site.ID}, e.snapshots.calls)

	e.snapshots.success = false
	rec = e.do(http.MethodPost, e.sitePath("/snapshot"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "write failed")
}
