// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is the permission level of an admin account. Every role may edit
// pages and navigation.
type Role string

const (
	RoleMaster Role = "master" // also manages sites
	RoleAdmin  Role = "admin"  // also manages templates, settings and themes
	RoleEditor Role = "editor"
)

// Roles lists the known roles from most to least privileged.
var Roles = []Role{RoleMaster, RoleAdmin, RoleEditor}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// User is an admin account. Visitors of public sites never sign in.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // set by 2FA setup, before the first verified code
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Needs2FASetup reports whether the user still has to enroll an
// authenticator. Enrollment is mandatory on first login.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
