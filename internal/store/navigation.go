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

// navSelect joins the target page so internal items carry their slug.
const navSelect = `
	SELECT n.id, n.site_id, n.label, n.type, n.href, n.page_id, p.slug,
		n.order_index, n.is_visible, n.open_in_new_tab, n.created_at, n.updated_at
	FROM navigation_items n
	LEFT JOIN pages p ON p.id = n.page_id`

// NavigationStore handles a site's menu entries.
type NavigationStore struct {
	db *sql.DB
}

// NewNavigationStore creates a new NavigationStore with the given database connection.
func NewNavigationStore(db *sql.DB) *NavigationStore {
	return &NavigationStore{db: db}
}

func scanNavigation(scanner interface{ Scan(...any) error }) (*models.NavigationItem, error) {
	n := &models.NavigationItem{}
	err := scanner.Scan(&n.ID, &n.SiteID, &n.Label, &n.Type, &n.Href, &n.PageID, &n.PageSlug,
		&n.OrderIndex, &n.IsVisible, &n.OpenInNewTab, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NavigationStore) list(query string, args ...any) ([]models.NavigationItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list navigation: %w", err)
	}
	defer rows.Close()

	items := []models.NavigationItem{}
	for rows.Next() {
		n, err := scanNavigation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan navigation item: %w", err)
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// ListBySite returns every item of a site in menu order.
func (s *NavigationStore) ListBySite(siteID uuid.UUID) ([]models.NavigationItem, error) {
	return s.list(navSelect+` WHERE n.site_id = $1 ORDER BY n.order_index, n.created_at`, siteID)
}

// ListVisible returns the visible items of a site in menu order.
func (s *NavigationStore) ListVisible(siteID uuid.UUID) ([]models.NavigationItem, error) {
	return s.list(navSelect+` WHERE n.site_id = $1 AND n.is_visible ORDER BY n.order_index, n.created_at`, siteID)
}

// FindByID retrieves one item of the site. Returns nil if not found.
func (s *NavigationStore) FindByID(siteID, id uuid.UUID) (*models.NavigationItem, error) {
	n, err := scanNavigation(s.db.QueryRow(navSelect+` WHERE n.site_id = $1 AND n.id = $2`, siteID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find navigation item: %w", err)
	}
	return n, nil
}

// Create appends an item at the end of the menu.
func (s *NavigationStore) Create(n *models.NavigationItem) (*models.NavigationItem, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO navigation_items (site_id, label, type, href, page_id, order_index, is_visible, open_in_new_tab)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(order_index) + 1, 0) FROM navigation_items WHERE site_id = $1), $6, $7)
		RETURNING id
	`, n.SiteID, n.Label, n.Type, n.Href, n.PageID, n.IsVisible, n.OpenInNewTab).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create navigation item: %w", err)
	}
	return s.FindByID(n.SiteID, id)
}

// Update modifies an item. Order is changed only through Reorder.
func (s *NavigationStore) Update(n *models.NavigationItem) error {
	res, err := s.db.Exec(`
		UPDATE navigation_items SET
			label = $1, type = $2, href = $3, page_id = $4,
			is_visible = $5, open_in_new_tab = $6, updated_at = NOW()
		WHERE site_id = $7 AND id = $8
	`, n.Label, n.Type, n.Href, n.PageID, n.IsVisible, n.OpenInNewTab, n.SiteID, n.ID)
	if err != nil {
		return fmt.Errorf("update navigation item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (s *NavigationStore) Delete(siteID, id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM navigation_items WHERE site_id = $1 AND id = $2`, siteID, id)
	if err != nil {
		return fmt.Errorf("delete navigation item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder persists the given menu order for a site.
func (s *NavigationStore) Reorder(siteID uuid.UUID, ids []uuid.UUID) error {
	return reorder(s.db, "navigation_items", "site_id", siteID, ids)
}
