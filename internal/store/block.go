// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// BlockStore handles an ordered list of blocks owned by a parent row. The
// same code serves page blocks and template blocks; only the table and the
// parent column differ.
type BlockStore struct {
	db        *sql.DB
	table     string
	parentCol string
}

// NewPageBlockStore returns a BlockStore over page_blocks.
func NewPageBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db, table: "page_blocks", parentCol: "page_id"}
}

// NewTemplateBlockStore returns a BlockStore over template_blocks.
func NewTemplateBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db, table: "template_blocks", parentCol: "template_id"}
}

func (s *BlockStore) columns() string {
	return `id, ` + s.parentCol + `, component_type, props, order_index, is_visible, created_at, updated_at`
}

func scanBlock(scanner interface{ Scan(...any) error }) (*models.Block, error) {
	b := &models.Block{}
	var props []byte
	err := scanner.Scan(&b.ID, &b.ParentID, &b.ComponentType, &props,
		&b.OrderIndex, &b.IsVisible, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Props = json.RawMessage(props)
	return b, nil
}

// List returns the blocks of a parent in render order.
func (s *BlockStore) List(parentID uuid.UUID) ([]models.Block, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 ORDER BY order_index, created_at`,
		s.columns(), s.table, s.parentCol), parentID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	defer rows.Close()

	blocks := []models.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// FindByID retrieves one block of the parent. Returns nil if not found.
func (s *BlockStore) FindByID(parentID, id uuid.UUID) (*models.Block, error) {
	b, err := scanBlock(s.db.QueryRow(fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND id = $2`, s.columns(), s.table, s.parentCol),
		parentID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find block: %w", err)
	}
	return b, nil
}

// Create appends a block after the parent's last block.
func (s *BlockStore) Create(b *models.Block) (*models.Block, error) {
	created, err := scanBlock(s.db.QueryRow(fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, component_type, props, order_index, is_visible)
		VALUES ($1, $2, $3::jsonb,
			(SELECT COALESCE(MAX(order_index) + 1, 0) FROM %[1]s WHERE %[2]s = $1), $4)
		RETURNING %[3]s`, s.table, s.parentCol, s.columns()),
		b.ParentID, b.ComponentType, b.PropsJSON(), b.IsVisible))
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return created, nil
}

// Update modifies type, props and visibility of a block. Order is changed
// only through Reorder.
func (s *BlockStore) Update(b *models.Block) error {
	res, err := s.db.Exec(fmt.Sprintf(`
		UPDATE %s SET component_type = $1, props = $2::jsonb, is_visible = $3, updated_at = NOW()
		WHERE %s = $4 AND id = $5`, s.table, s.parentCol),
		b.ComponentType, b.PropsJSON(), b.IsVisible, b.ParentID, b.ID)
	if err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a block. Remaining blocks keep their relative order.
func (s *BlockStore) Delete(parentID, id uuid.UUID) error {
	res, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND id = $2`, s.table, s.parentCol),
		parentID, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace swaps the whole block list of a parent in one transaction. The
// order of blocks is the order of the slice.
func (s *BlockStore) Replace(parentID uuid.UUID, blocks []models.Block) ([]models.Block, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, s.table, s.parentCol), parentID); err != nil {
		return nil, fmt.Errorf("clear %s: %w", s.table, err)
	}

	out := make([]models.Block, 0, len(blocks))
	for i, b := range blocks {
		created, err := scanBlock(tx.QueryRow(fmt.Sprintf(`
			INSERT INTO %s (%s, component_type, props, order_index, is_visible)
			VALUES ($1, $2, $3::jsonb, $4, $5)
			RETURNING %s`, s.table, s.parentCol, s.columns()),
			parentID, b.ComponentType, b.PropsJSON(), i, b.IsVisible))
		if err != nil {
			return nil, fmt.Errorf("insert block %d: %w", i, err)
		}
		out = append(out, *created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit blocks: %w", err)
	}
	return out, nil
}

// Reorder persists the given order of block ids for a parent.
func (s *BlockStore) Reorder(parentID uuid.UUID, ids []uuid.UUID) error {
	return reorder(s.db, s.table, s.parentCol, parentID, ids)
}
