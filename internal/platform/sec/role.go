// Copyright (c) 2026 Parcelia. All rights reserved.

package sec

// # Staff Roles

// UserRole represents the authorization level granted to a staff account.
type UserRole string

const (
	// Unrestricted system access, including the status catalog and user management
	RoleAdmin UserRole = "admin"

	// Day-to-day dispatch operations: clients, companies, colis, bons
	RoleManager UserRole = "manager"

	// Delivery staff: own assignments, status updates on carried parcels
	RoleCourier UserRole = "courier"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) leaves room for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleManager:
		return 20
	case RoleCourier:
		return 10
	default:
		return 0
	}
}
