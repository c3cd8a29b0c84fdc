// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// reorder rewrites order_index of every child of parentID so that ids[i]
// gets index i. ids must be a permutation of the current children, otherwise
// ErrOrderMismatch is returned and nothing changes. table and parentCol are
// compile-time constants of the calling store.
func reorder(db *sql.DB, table, parentCol string, parentID uuid.UUID, ids []uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 FOR UPDATE`, table, parentCol), parentID)
	if err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	current := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s id: %w", table, err)
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s ids: %w", table, err)
	}

	if !isPermutation(current, ids) {
		return ErrOrderMismatch
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		`UPDATE %s SET order_index = $1, updated_at = NOW() WHERE id = $2 AND %s = $3`, table, parentCol))
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id, parentID); err != nil {
			return fmt.Errorf("reorder %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// isPermutation reports whether ids lists every key of current exactly once.
func isPermutation(current map[uuid.UUID]bool, ids []uuid.UUID) bool {
	if len(ids) != len(current) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !current[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
