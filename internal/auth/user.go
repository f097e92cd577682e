// Copyright (c) 2026 Parcelia. All rights reserved.

// Package auth implements staff authentication for the Parcelia back office.
//
// # Architecture
//
// The package owns the staff account entity, the refresh-token session
// entity, and the use cases around them (enroll, login, logout, token
// rotation). Every auth lifecycle change is also published on the shared
// event channel so running session engines can reconcile.
package auth

import (
	"time"

	"github.com/parcelia/backoffice/internal/platform/sec"
)

// User represents a staff account of the Parcelia back office.
//
// # Identity
//
// ID is the durable directory identifier used for parcel history
// attribution. AuthID is the auth-layer subject written into tokens and
// lifecycle events. The two are distinct and cross-referenced through
// [UserRepository.FindByAuthID]; conflating them breaks attribution.
type User struct {
	ID           string       `json:"id"`
	AuthID       string       `json:"auth_id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Phone        string       `json:"phone,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	IsActive     bool         `json:"is_active"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// JSON field names shared between request payloads, validation errors,
// and response maps.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldDisplayName  = "display_name"
	FieldPhone        = "phone"
	FieldRole         = "role"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldUser         = "user"
)

// Session represents an active refresh-token session.
//
// # Security Concept
//
// Access tokens (JWT) are stateless and cannot be revoked before expiry.
// Parcelia pairs short-lived JWTs with long-lived sessions stored in the
// database: when the JWT expires, the client trades the refresh token for
// a new pair. Revoking the session logs the operator out everywhere.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}
