// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SeedOptions holds the credentials of the initial master user.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.AdminEmail == "" {
		o.AdminEmail = "admin@blockpress.local"
	}
	if o.AdminPassword == "" {
		o.AdminPassword = "admin"
	}
	return o
}

// Seed populates an empty database with a master user and a default site
// holding a published home page, header and footer templates and one
// navigation item. It is a no-op once any user exists.
func Seed(db *sql.DB, opts SeedOptions) error {
	opts = opts.withDefaults()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		zap.S().Infow("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	// 2FA is not enabled; the master sets it up on first login.
	if _, err := tx.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, 'master', FALSE)
	`, opts.AdminEmail, string(hash), "Master Admin"); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var siteID string
	if err := tx.QueryRow(`
		INSERT INTO sites (name, status) VALUES ('Default Site', 'active') RETURNING id
	`).Scan(&siteID); err != nil {
		return fmt.Errorf("seed insert site: %w", err)
	}

	settings := map[string]string{
		"active_theme":     "default",
		"site_title":       "BlockPress",
		"site_description": "A block-based site",
	}
	for k, v := range settings {
		if _, err := tx.Exec(`
			INSERT INTO site_settings (site_id, key, value) VALUES ($1, $2, $3)
		`, siteID, k, v); err != nil {
			return fmt.Errorf("seed insert setting %s: %w", k, err)
		}
	}

	var headerID, footerID string
	if err := tx.QueryRow(`
		INSERT INTO templates (site_id, name, type, theme_id, is_active)
		VALUES ($1, 'Default Header', 'header', 'default', TRUE) RETURNING id
	`, siteID).Scan(&headerID); err != nil {
		return fmt.Errorf("seed insert header: %w", err)
	}
	if err := tx.QueryRow(`
		INSERT INTO templates (site_id, name, type, theme_id, is_active)
		VALUES ($1, 'Default Footer', 'footer', 'default', TRUE) RETURNING id
	`, siteID).Scan(&footerID); err != nil {
		return fmt.Errorf("seed insert footer: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO template_blocks (template_id, component_type, props, order_index)
		VALUES ($1, 'navigation', '{"brand":"BlockPress"}'::jsonb, 0),
		       ($2, 'footer', '{"text":"Powered by BlockPress"}'::jsonb, 0)
	`, headerID, footerID); err != nil {
		return fmt.Errorf("seed insert template blocks: %w", err)
	}

	var pageID string
	if err := tx.QueryRow(`
		INSERT INTO pages (site_id, slug, title, status, published_at)
		VALUES ($1, 'home', 'Home', 'published', NOW()) RETURNING id
	`, siteID).Scan(&pageID); err != nil {
		return fmt.Errorf("seed insert home page: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO page_blocks (page_id, component_type, props, order_index)
		VALUES ($1, 'hero', '{"title":"Welcome to BlockPress","subtitle":"Edit this page from the admin API."}'::jsonb, 0),
		       ($1, 'text', '{"content":"Pages are built from **blocks**."}'::jsonb, 1)
	`, pageID); err != nil {
		return fmt.Errorf("seed insert page blocks: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO navigation_items (site_id, label, type, page_id, order_index)
		VALUES ($1, 'Home', 'internal', $2, 0)
	`, siteID, pageID); err != nil {
		return fmt.Errorf("seed insert navigation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	zap.S().Infow("database seeded",
		"admin_email", opts.AdminEmail,
		"site_id", siteID,
	)
	return nil
}
