// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders public pages. A page is composed from the blocks
// of its header template, its own blocks (optionally placed inside a page
// template) and the blocks of its footer template. Every block renders
// through the component loader with the site's active theme; a block that
// fails renders as an HTML comment and the rest of the page is kept.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockpress/internal/components"
	"blockpress/internal/metrics"
	"blockpress/internal/models"
)

// SlotType is the block type that marks where a page template places the
// page's own blocks. Without a slot they are appended after the template.
const SlotType = "slot"

// TemplateSource looks up a site's templates.
type TemplateSource interface {
	FindByID(siteID, id uuid.UUID) (*models.Template, error)
	FindActiveByType(siteID uuid.UUID, tmplType models.TemplateType) (*models.Template, error)
}

// BlockSource lists the blocks of a page or template, in order.
type BlockSource interface {
	List(parentID uuid.UUID) ([]models.Block, error)
}

// NavigationSource lists a site's visible navigation items.
type NavigationSource interface {
	ListVisible(siteID uuid.UUID) ([]models.NavigationItem, error)
}

// SettingsSource returns a site's settings.
type SettingsSource interface {
	All(siteID uuid.UUID) (models.SiteSettings, error)
}

// ComponentRenderer renders blocks by theme. *components.Loader satisfies it.
type ComponentRenderer interface {
	Theme(id string) (*components.Theme, error)
	Render(w io.Writer, themeID, componentType string, props components.Props) error
}

// PageCache stores rendered pages. *cache.PageCache satisfies it.
type PageCache interface {
	Get(ctx context.Context, siteID uuid.UUID, slug string) ([]byte, bool)
	Set(ctx context.Context, siteID uuid.UUID, slug string, html []byte)
	InvalidateSite(ctx context.Context, siteID uuid.UUID) int
}

// InvalidationLog records cache invalidations. *store.CacheLogStore satisfies it.
type InvalidationLog interface {
	Log(siteID uuid.UUID, entityType string, entityID uuid.UUID, action string)
}

// Deps are the collaborators of an Engine. Cache and Log are optional.
type Deps struct {
	Templates      TemplateSource
	TemplateBlocks BlockSource
	PageBlocks     BlockSource
	Navigation     NavigationSource
	Settings       SettingsSource
	Components     ComponentRenderer
	Cache          PageCache
	Log            InvalidationLog
}

// Engine renders pages and manages the rendered-page cache.
type Engine struct {
	templates      TemplateSource
	templateBlocks BlockSource
	pageBlocks     BlockSource
	navigation     NavigationSource
	settings       SettingsSource
	components     ComponentRenderer
	cache          PageCache
	log            InvalidationLog
}

// New creates an Engine.
func New(d Deps) *Engine {
	return &Engine{
		templates:      d.Templates,
		templateBlocks: d.TemplateBlocks,
		pageBlocks:     d.PageBlocks,
		navigation:     d.Navigation,
		settings:       d.Settings,
		components:     d.Components,
		cache:          d.Cache,
		log:            d.Log,
	}
}

// renderContext is shared by every block of one page.
type renderContext struct {
	site    *models.Site
	theme   *components.Theme
	context components.SiteContext
}

// ActiveTheme returns the theme a site renders with. A theme that cannot be
// loaded is replaced by the default theme.
func (e *Engine) ActiveTheme(siteID uuid.UUID) (*components.Theme, models.SiteSettings) {
	settings, err := e.settings.All(siteID)
	if err != nil {
		zap.S().Errorw("load site settings failed", "site_id", siteID, "error", err)
		settings = models.SiteSettings{}
	}
	id := settings.ActiveTheme()
	theme, err := e.components.Theme(id)
	if err != nil {
		zap.S().Warnw("active theme unavailable, using default",
			"site_id", siteID,
			"theme", id,
			"error", err,
		)
		theme, err = e.components.Theme(components.DefaultThemeID)
		if err != nil {
			// The default theme is compiled in; this only fails in tests
			// that replace the renderer.
			theme = components.NewTheme(components.DefaultThemeID, "Default", nil)
		}
	}
	return theme, settings
}

func (e *Engine) newRenderContext(site *models.Site) *renderContext {
	theme, settings := e.ActiveTheme(site.ID)

	sc := components.SiteContext{
		ID:          site.ID.String(),
		Title:       settings.Get(models.SettingSiteTitle, site.Name),
		Description: settings.Get(models.SettingSiteDescription, ""),
		ThemeID:     theme.ID,
	}
	items, err := e.navigation.ListVisible(site.ID)
	if err != nil {
		zap.S().Warnw("load navigation failed", "site_id", site.ID, "error", err)
	}
	for i := range items {
		sc.Navigation = append(sc.Navigation, components.NavLink{
			Label:  items[i].Label,
			URL:    items[i].URL(),
			NewTab: items[i].OpenInNewTab,
		})
	}
	return &renderContext{site: site, theme: theme, context: sc}
}

// RenderPage renders a full HTML document for page.
func (e *Engine) RenderPage(site *models.Site, page *models.Page) ([]byte, error) {
	rc := e.newRenderContext(site)

	blocks := page.Blocks
	if blocks == nil {
		var err error
		blocks, err = e.pageBlocks.List(page.ID)
		if err != nil {
			return nil, fmt.Errorf("load page blocks: %w", err)
		}
	}

	var body bytes.Buffer
	e.renderBlocks(&body, rc, blocks)

	if tmpl := e.template(site.ID, page.PageTemplateID, models.TemplateTypePage); tmpl != nil {
		var composed bytes.Buffer
		e.composeInto(&composed, rc, tmpl, body.Bytes())
		body = composed
	}

	data := layoutData{
		Title:       page.Title,
		SiteTitle:   rc.context.Title,
		Description: rc.context.Description,
		ThemeID:     rc.theme.ID,
		Header:      template.HTML(e.fragment(rc, page.HeaderTemplateID, models.TemplateTypeHeader)),
		Body:        template.HTML(body.String()),
		Footer:      template.HTML(e.fragment(rc, page.FooterTemplateID, models.TemplateTypeFooter)),
	}
	if page.MetaDescription != nil && *page.MetaDescription != "" {
		data.Description = *page.MetaDescription
	}
	if rc.theme.Stylesheet != "" {
		data.Stylesheet = "/themes/" + url.PathEscape(rc.theme.ID) + "/assets/" + rc.theme.Stylesheet
	}

	var out bytes.Buffer
	if err := layoutTmpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("execute layout: %w", err)
	}
	return out.Bytes(), nil
}

// template returns the referenced template, or the site's active template of
// the given type when the reference is empty or dangling.
func (e *Engine) template(siteID uuid.UUID, ref *uuid.UUID, tmplType models.TemplateType) *models.Template {
	if ref != nil {
		t, err := e.templates.FindByID(siteID, *ref)
		if err != nil {
			zap.S().Warnw("load referenced template failed", "site_id", siteID, "template_id", *ref, "error", err)
		}
		if t != nil {
			return t
		}
	}
	t, err := e.templates.FindActiveByType(siteID, tmplType)
	if err != nil {
		zap.S().Warnw("load active template failed", "site_id", siteID, "type", tmplType, "error", err)
		return nil
	}
	return t
}

// fragment renders a header or footer. A missing template renders nothing.
func (e *Engine) fragment(rc *renderContext, ref *uuid.UUID, tmplType models.TemplateType) string {
	tmpl := e.template(rc.site.ID, ref, tmplType)
	if tmpl == nil {
		return ""
	}
	blocks, err := e.templateBlocks.List(tmpl.ID)
	if err != nil {
		zap.S().Warnw("load template blocks failed", "template_id", tmpl.ID, "error", err)
		return ""
	}
	var buf bytes.Buffer
	e.renderBlocks(&buf, rc, blocks)
	return buf.String()
}

// composeInto renders a page template, replacing its slot blocks with the
// page body.
func (e *Engine) composeInto(w *bytes.Buffer, rc *renderContext, tmpl *models.Template, body []byte) {
	blocks, err := e.templateBlocks.List(tmpl.ID)
	if err != nil {
		zap.S().Warnw("load page template blocks failed", "template_id", tmpl.ID, "error", err)
		w.Write(body)
		return
	}
	slotted := false
	for _, b := range models.VisibleBlocks(blocks) {
		if b.ComponentType == SlotType {
			w.Write(body)
			slotted = true
			continue
		}
		e.renderBlock(w, rc, b)
	}
	if !slotted {
		w.Write(body)
	}
}

func (e *Engine) renderBlocks(w *bytes.Buffer, rc *renderContext, blocks []models.Block) {
	for _, b := range models.VisibleBlocks(blocks) {
		e.renderBlock(w, rc, b)
	}
}

// renderBlock writes one block, or a comment placeholder when it fails.
func (e *Engine) renderBlock(w *bytes.Buffer, rc *renderContext, b models.Block) {
	props, err := b.PropsMap()
	if err == nil {
		props[components.SiteKey] = rc.context
		err = e.components.Render(w, rc.theme.ID, b.ComponentType, props)
		if err == nil {
			return
		}
	}
	metrics.BlockRenderErrors.WithLabelValues(rc.theme.ID, b.ComponentType).Inc()
	zap.S().Warnw("block render failed",
		"site_id", rc.site.ID,
		"block_id", b.ID,
		"component", b.ComponentType,
		"theme", rc.theme.ID,
		"error", err,
	)
	fmt.Fprintf(w, "<!-- block %s (%s) failed to render -->", b.ID, commentSafe(b.ComponentType))
}

// commentSafe keeps a value from closing or breaking an HTML comment.
func commentSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		case r == '-':
			return r
		}
		return -1
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// CachedPage returns a cached rendering of a page.
func (e *Engine) CachedPage(ctx context.Context, siteID uuid.UUID, slug string) ([]byte, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(ctx, siteID, slug)
}

// StorePage caches a rendered page.
func (e *Engine) StorePage(ctx context.Context, siteID uuid.UUID, slug string, html []byte) {
	if e.cache != nil {
		e.cache.Set(ctx, siteID, slug, html)
	}
}

// InvalidateSite drops every cached page of a site after a change to one of
// its entities and records the invalidation.
func (e *Engine) InvalidateSite(ctx context.Context, siteID uuid.UUID, entityType string, entityID uuid.UUID, action string) {
	if e.cache != nil {
		e.cache.InvalidateSite(ctx, siteID)
	}
	if e.log != nil {
		e.log.Log(siteID, entityType, entityID, action)
	}
	zap.S().Debugw("site pages invalidated",
		"site_id", siteID,
		"entity", entityType,
		"entity_id", entityID,
		"action", action,
	)
}
