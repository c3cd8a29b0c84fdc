// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all BlockPress
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups that find nothing return (nil, nil); writes that touch no row
// return ErrNotFound.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug is returned when a page slug is already used on the site.
	ErrDuplicateSlug = errors.New("slug already exists on this site")
	// ErrDuplicateDomain is returned when another site already owns the domain.
	ErrDuplicateDomain = errors.New("domain already assigned to another site")
	// ErrOrderMismatch is returned when a reorder list is not a permutation
	// of the parent's current children.
	ErrOrderMismatch = errors.New("order list does not match existing items")
	// ErrActiveTemplate is returned when deleting the active template of a type.
	ErrActiveTemplate = errors.New("cannot delete an active template")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique violation,
// optionally restricted to one constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
