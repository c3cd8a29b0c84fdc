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

const siteColumns = `id, name, domain, status, created_at, updated_at`

// SiteStore handles tenant rows.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a new SiteStore with the given database connection.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

func scanSite(scanner interface{ Scan(...any) error }) (*models.Site, error) {
	s := &models.Site{}
	err := scanner.Scan(&s.ID, &s.Name, &s.Domain, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SiteStore) list(query string, args ...any) ([]models.Site, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

// List returns every site, oldest first.
func (s *SiteStore) List() ([]models.Site, error) {
	return s.list(`SELECT ` + siteColumns + ` FROM sites ORDER BY created_at ASC`)
}

// ListActive returns the active sites, oldest first.
func (s *SiteStore) ListActive() ([]models.Site, error) {
	return s.list(`SELECT `+siteColumns+` FROM sites WHERE status = $1 ORDER BY created_at ASC`,
		models.SiteStatusActive)
}

func (s *SiteStore) findOne(what, query string, args ...any) (*models.Site, error) {
	site, err := scanSite(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by %s: %w", what, err)
	}
	return site, nil
}

// FindByID retrieves a site regardless of status. Returns nil if not found.
func (s *SiteStore) FindByID(id uuid.UUID) (*models.Site, error) {
	return s.findOne("id", `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)
}

// FindActiveByID retrieves an active site by id. Returns nil if the site is
// missing or inactive.
func (s *SiteStore) FindActiveByID(id uuid.UUID) (*models.Site, error) {
	return s.findOne("id", `SELECT `+siteColumns+` FROM sites WHERE id = $1 AND status = $2`,
		id, models.SiteStatusActive)
}

// FindActiveByDomain retrieves an active site by its domain (case-insensitive).
func (s *SiteStore) FindActiveByDomain(domain string) (*models.Site, error) {
	return s.findOne("domain", `SELECT `+siteColumns+` FROM sites WHERE LOWER(domain) = LOWER($1) AND status = $2`,
		domain, models.SiteStatusActive)
}

// FirstActive returns the oldest active site, used when a request names no site.
func (s *SiteStore) FirstActive() (*models.Site, error) {
	return s.findOne("first active", `SELECT `+siteColumns+` FROM sites WHERE status = $1 ORDER BY created_at ASC LIMIT 1`,
		models.SiteStatusActive)
}

// Create inserts a new site. An empty domain is stored as NULL.
func (s *SiteStore) Create(site *models.Site) (*models.Site, error) {
	status := site.Status
	if status == "" {
		status = models.SiteStatusActive
	}
	created, err := scanSite(s.db.QueryRow(`
		INSERT INTO sites (name, domain, status)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING `+siteColumns,
		site.Name, site.DomainOrEmpty(), status,
	))
	if isUniqueViolation(err, "") {
		return nil, ErrDuplicateDomain
	}
	if err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return created, nil
}

// Update modifies name, domain and status of a site.
func (s *SiteStore) Update(site *models.Site) error {
	res, err := s.db.Exec(`
		UPDATE sites SET name = $1, domain = NULLIF($2, ''), status = $3, updated_at = NOW()
		WHERE id = $4
	`, site.Name, site.DomainOrEmpty(), site.Status, site.ID)
	if isUniqueViolation(err, "") {
		return ErrDuplicateDomain
	}
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a site and, through foreign keys, everything it owns.
func (s *SiteStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
