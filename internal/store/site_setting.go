// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

const upsertSetting = `
	INSERT INTO site_settings (site_id, key, value, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (site_id, key)
	DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// SiteSettingStore manages per-site key/value configuration.
type SiteSettingStore struct {
	db *sql.DB
}

// NewSiteSettingStore returns a new SiteSettingStore backed by the given database.
func NewSiteSettingStore(db *sql.DB) *SiteSettingStore {
	return &SiteSettingStore{db: db}
}

// All returns every setting of a site as a convenience map.
func (s *SiteSettingStore) All(siteID uuid.UUID) (models.SiteSettings, error) {
	rows, err := s.db.Query(`SELECT key, value FROM site_settings WHERE site_id = $1 ORDER BY key`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(models.SiteSettings)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// Get returns a single setting by key, or the fallback if not found or empty.
func (s *SiteSettingStore) Get(siteID uuid.UUID, key, fallback string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM site_settings WHERE site_id = $1 AND key = $2`, siteID, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("get setting %s: %w", key, err)
	}
	if val == "" {
		return fallback, nil
	}
	return val, nil
}

// Set upserts a single setting.
func (s *SiteSettingStore) Set(siteID uuid.UUID, key, value string) error {
	if _, err := s.db.Exec(upsertSetting, siteID, key, value, time.Now()); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// SetMany upserts multiple settings in a single transaction. Keys are
// written in sorted order so concurrent writers lock rows consistently.
func (s *SiteSettingStore) SetMany(siteID uuid.UUID, settings map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertSetting)
	if err != nil {
		return fmt.Errorf("prepare setting upsert: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	for _, k := range keys {
		if _, err := stmt.Exec(siteID, k, settings[k], now); err != nil {
			return fmt.Errorf("set setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}
