// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"blockpress/internal/components"
	"blockpress/internal/models"
	"blockpress/internal/session"
	"blockpress/internal/snapshot"
	"blockpress/internal/store"
	"blockpress/internal/tenant"
	"blockpress/internal/themes"
)

// The interfaces below are satisfied by the store, engine, components,
// themes and snapshot packages. Handlers depend on them so tests can swap
// in fakes.

type SiteStore interface {
	List() ([]models.Site, error)
	FindByID(id uuid.UUID) (*models.Site, error)
	Create(site *models.Site) (*models.Site, error)
	Update(site *models.Site) error
	Delete(id uuid.UUID) error
}

type PageStore interface {
	ListBySite(siteID uuid.UUID) ([]models.Page, error)
	FindByID(siteID, id uuid.UUID) (*models.Page, error)
	FindPublishedBySlug(siteID uuid.UUID, slug string) (*models.Page, error)
	Create(p *models.Page) (*models.Page, error)
	Update(p *models.Page) error
	Delete(siteID, id uuid.UUID) error
}

type BlockStore interface {
	List(parentID uuid.UUID) ([]models.Block, error)
	FindByID(parentID, id uuid.UUID) (*models.Block, error)
	Create(b *models.Block) (*models.Block, error)
	Update(b *models.Block) error
	Delete(parentID, id uuid.UUID) error
	Replace(parentID uuid.UUID, blocks []models.Block) ([]models.Block, error)
	Reorder(parentID uuid.UUID, ids []uuid.UUID) error
}

type TemplateStore interface {
	ListBySite(siteID uuid.UUID) ([]models.Template, error)
	FindByID(siteID, id uuid.UUID) (*models.Template, error)
	Create(t *models.Template) (*models.Template, error)
	Update(t *models.Template) error
	Touch(siteID, id uuid.UUID) error
	Activate(siteID, id uuid.UUID) error
	Delete(siteID, id uuid.UUID) error
}

type NavigationStore interface {
	ListBySite(siteID uuid.UUID) ([]models.NavigationItem, error)
	ListVisible(siteID uuid.UUID) ([]models.NavigationItem, error)
	FindByID(siteID, id uuid.UUID) (*models.NavigationItem, error)
	Create(n *models.NavigationItem) (*models.NavigationItem, error)
	Update(n *models.NavigationItem) error
	Delete(siteID, id uuid.UUID) error
	Reorder(siteID uuid.UUID, ids []uuid.UUID) error
}

type SettingStore interface {
	All(siteID uuid.UUID) (models.SiteSettings, error)
	Set(siteID uuid.UUID, key, value string) error
	SetMany(siteID uuid.UUID, settings map[string]string) error
}

type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

type CacheLog interface {
	RecentEntries(limit int) ([]store.CacheLogEntry, error)
}

// Sessions manages admin sessions. *session.Store satisfies it.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Renderer renders and caches public pages. *engine.Engine satisfies it.
type Renderer interface {
	RenderPage(site *models.Site, page *models.Page) ([]byte, error)
	CachedPage(ctx context.Context, siteID uuid.UUID, slug string) ([]byte, bool)
	StorePage(ctx context.Context, siteID uuid.UUID, slug string, html []byte)
	InvalidateSite(ctx context.Context, siteID uuid.UUID, entityType string, entityID uuid.UUID, action string)
}

// ComponentLoader resolves themes. *components.Loader satisfies it.
type ComponentLoader interface {
	Theme(id string) (*components.Theme, error)
	Describe(themeID string) ([]components.Info, error)
	Invalidate(themeID string)
	InvalidateAll()
	Cached() []string
}

// ThemeRegistry lists themes on disk. *themes.Registry satisfies it.
type ThemeRegistry interface {
	Available() []string
	IsBuiltin(id string) bool
	Manifest(id string) (*themes.Manifest, error)
	Invalidate()
}

// Snapshotter writes static site snapshots. *snapshot.Generator satisfies it.
type Snapshotter interface {
	Generate(ctx context.Context, siteID uuid.UUID) snapshot.Result
	GenerateAll(ctx context.Context) ([]snapshot.Result, error)
}

// TenantResolver resolves requests to sites. *tenant.Resolver satisfies it.
type TenantResolver interface {
	Resolve(r *http.Request) (*tenant.Match, error)
	Invalidate()
	CacheKeys() []string
}

// PageCacheInspector lists cached pages. *cache.PageCache satisfies it.
type PageCacheInspector interface {
	Keys(ctx context.Context, siteID uuid.UUID) ([]string, error)
}
