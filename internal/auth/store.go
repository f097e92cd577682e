// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"context"
	"time"
)

// UserRepository defines the data access contract for staff accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go). Kept in a
// separate file from user.go so entity changes and storage-contract changes
// can be reviewed independently.
// UserFilter holds the parameters for a paginated staff search.
type UserFilter struct {
	// Query matches against display name and email.
	Query string

	// Role restricts to one role, e.g. couriers for assignment pickers.
	Role string
}

type UserRepository interface {
	// List returns active accounts matching the filter, ordered by
	// display name.
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*User, int, error)

	// FindByID returns the account with the given durable ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no account uses this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByAuthID returns the account bound to the given auth-layer
	// subject. This is the cross-reference used for history attribution
	// and for resolving pushed auth events into operator profiles.
	//
	// Returns [apperr.NotFound] if no account carries this subject.
	FindByAuthID(ctx context.Context, authID string) (*User, error)

	// Create persists a brand-new staff account.
	//
	// Returns a wrapped error if a unique constraint (email) fails.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable profile fields (DisplayName,
	// Phone, Role, IsActive). Passwords go through [UpdatePassword].
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the account's password hash, separate
	// from [Update] to prevent accidental overwrites during unrelated
	// profile updates.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// TouchLastLogin records a successful credential check timestamp.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// SoftDelete marks the account as deleted without removing the row,
	// preserving history attribution for parcels the user handled.
	SoftDelete(ctx context.Context, id string) error
}

// SessionRepository defines the data access contract for refresh-token
// sessions. Kept alongside [UserRepository] because sessions are owned
// entirely by the auth domain.
type SessionRepository interface {
	// Create persists a new tracking session for an authenticated login.
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash returns the active session matching the token hash.
	//
	// Returns [apperr.NotFound] if the session is invalid, expired, or revoked.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke marks a specific session as permanently invalidated.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAll revokes every active session belonging to the userID.
	// Used on password change or account deactivation.
	RevokeAll(ctx context.Context, userID string) error

	// DeleteExpired physically removes sessions whose ExpiresAt is in the
	// past. Called by a periodic background cleanup worker.
	DeleteExpired(ctx context.Context) error
}
