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

const templateColumns = `id, site_id, name, type, theme_id, is_active, version, created_at, updated_at`

// TemplateStore handles all template-related database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	t := &models.Template{}
	err := scanner.Scan(&t.ID, &t.SiteID, &t.Name, &t.Type, &t.ThemeID,
		&t.IsActive, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListBySite returns the templates of a site ordered by type and name.
func (s *TemplateStore) ListBySite(siteID uuid.UUID) ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+` FROM templates
		WHERE site_id = $1
		ORDER BY type, name
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template of the site. Returns nil if not found.
func (s *TemplateStore) FindByID(siteID, id uuid.UUID) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		SELECT `+templateColumns+` FROM templates WHERE site_id = $1 AND id = $2
	`, siteID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindActiveByType returns the site's active template for the given type.
func (s *TemplateStore) FindActiveByType(siteID uuid.UUID, tmplType models.TemplateType) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		SELECT `+templateColumns+` FROM templates
		WHERE site_id = $1 AND type = $2 AND is_active = TRUE
		LIMIT 1
	`, siteID, tmplType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active template: %w", err)
	}
	return t, nil
}

// Create inserts a new template. Does NOT activate it automatically.
func (s *TemplateStore) Create(t *models.Template) (*models.Template, error) {
	themeID := t.ThemeID
	if themeID == "" {
		themeID = models.DefaultThemeID
	}
	created, err := scanTemplate(s.db.QueryRow(`
		INSERT INTO templates (site_id, name, type, theme_id, version, is_active)
		VALUES ($1, $2, $3, $4, 1, FALSE)
		RETURNING `+templateColumns,
		t.SiteID, t.Name, t.Type, themeID))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// Update modifies a template and increments its version.
func (s *TemplateStore) Update(t *models.Template) error {
	res, err := s.db.Exec(`
		UPDATE templates SET
			name = $1, theme_id = $2, version = version + 1, updated_at = NOW()
		WHERE site_id = $3 AND id = $4
	`, t.Name, t.ThemeID, t.SiteID, t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Touch increments the version after the template's blocks changed.
func (s *TemplateStore) Touch(siteID, id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE templates SET version = version + 1, updated_at = NOW()
		WHERE site_id = $1 AND id = $2
	`, siteID, id)
	if err != nil {
		return fmt.Errorf("touch template: %w", err)
	}
	return nil
}

// Activate sets a template as the active one for its type on its site,
// deactivating any other template of the same type in one transaction.
func (s *TemplateStore) Activate(siteID, id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var tmplType string
	err = tx.QueryRow(`SELECT type FROM templates WHERE site_id = $1 AND id = $2`, siteID, id).Scan(&tmplType)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get template type: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE templates SET is_active = FALSE WHERE site_id = $1 AND type = $2 AND is_active
	`, siteID, tmplType); err != nil {
		return fmt.Errorf("deactivate templates: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE templates SET is_active = TRUE, updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("activate template: %w", err)
	}

	return tx.Commit()
}

// Delete removes an inactive template. Active templates return
// ErrActiveTemplate, unknown ids ErrNotFound.
func (s *TemplateStore) Delete(siteID, id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRow(`SELECT is_active FROM templates WHERE site_id = $1 AND id = $2 FOR UPDATE`, siteID, id).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock template: %w", err)
	}
	if active {
		return ErrActiveTemplate
	}

	if _, err := tx.Exec(`DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return tx.Commit()
}
