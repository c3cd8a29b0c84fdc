// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

const pageColumns = `id, site_id, slug, title, status, meta_description,
	header_template_id, footer_template_id, page_template_id,
	published_at, created_at, updated_at`

// pageSlugConstraint is the UNIQUE (site_id, slug) constraint on pages.
const pageSlugConstraint = "pages_site_slug_key"

// PageStore handles page rows. Every query is scoped to a site.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	p := &models.Page{}
	err := scanner.Scan(
		&p.ID, &p.SiteID, &p.Slug, &p.Title, &p.Status, &p.MetaDescription,
		&p.HeaderTemplateID, &p.FooterTemplateID, &p.PageTemplateID,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PageStore) list(query string, args ...any) ([]models.Page, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// ListBySite returns every page of a site, drafts included, by slug.
func (s *PageStore) ListBySite(siteID uuid.UUID) ([]models.Page, error) {
	return s.list(`SELECT `+pageColumns+` FROM pages WHERE site_id = $1 ORDER BY slug`, siteID)
}

// ListPublished returns the published pages of a site by slug.
func (s *PageStore) ListPublished(siteID uuid.UUID) ([]models.Page, error) {
	return s.list(`SELECT `+pageColumns+` FROM pages WHERE site_id = $1 AND status = $2 ORDER BY slug`,
		siteID, models.PageStatusPublished)
}

// FindByID retrieves a page of the site. Returns nil if not found.
func (s *PageStore) FindByID(siteID, id uuid.UUID) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE site_id = $1 AND id = $2`, siteID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published page by slug. Drafts are never
// returned, so public callers can treat nil as 404.
func (s *PageStore) FindPublishedBySlug(siteID uuid.UUID, slug string) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE site_id = $1 AND slug = $2 AND status = $3
	`, siteID, slug, models.PageStatusPublished))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// Create inserts a page. Publishing sets published_at.
func (s *PageStore) Create(p *models.Page) (*models.Page, error) {
	created, err := scanPage(s.db.QueryRow(`
		INSERT INTO pages (site_id, slug, title, status, meta_description,
			header_template_id, footer_template_id, page_template_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			CASE WHEN $4 = 'published' THEN NOW() END)
		RETURNING `+pageColumns,
		p.SiteID, p.Slug, p.Title, p.Status, p.MetaDescription,
		p.HeaderTemplateID, p.FooterTemplateID, p.PageTemplateID,
	))
	if isUniqueViolation(err, pageSlugConstraint) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

// Update modifies a page. published_at is set on the first publish and kept
// afterwards.
func (s *PageStore) Update(p *models.Page) error {
	res, err := s.db.Exec(`
		UPDATE pages SET
			slug = $1, title = $2, status = $3, meta_description = $4,
			header_template_id = $5, footer_template_id = $6, page_template_id = $7,
			published_at = CASE
				WHEN $3 = 'published' THEN COALESCE(published_at, NOW())
				ELSE published_at
			END,
			updated_at = NOW()
		WHERE site_id = $8 AND id = $9
	`, p.Slug, p.Title, p.Status, p.MetaDescription,
		p.HeaderTemplateID, p.FooterTemplateID, p.PageTemplateID,
		p.SiteID, p.ID)
	if isUniqueViolation(err, pageSlugConstraint) {
		return ErrDuplicateSlug
	}
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a page and its blocks.
func (s *PageStore) Delete(siteID, id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM pages WHERE site_id = $1 AND id = $2`, siteID, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBySite returns the number of pages of a site.
func (s *PageStore) CountBySite(siteID uuid.UUID) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pages WHERE site_id = $1`, siteID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return count, nil
}
