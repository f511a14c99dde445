// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access: catalogue management and admin listings
	RoleAdmin UserRole = "admin"

	// Default role for registered users; can borrow and return books
	RoleLender UserRole = "lender"
)

// IsAdmin reports whether the role grants administrative access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether the role is one of the allowed values.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleLender
}
