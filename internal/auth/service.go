// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/pkg/uuidv7"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given
	// operator. UserID and authID are both embedded: handlers attribute
	// with the durable UserID, the event stream speaks in authID.
	GenerateAccessToken(userID, authID, email, role string, timeToLive time.Duration) (string, error)
}

// EventPublisher pushes auth lifecycle events to running session engines.
// The canonical implementation is [authgw.Broker].
type EventPublisher interface {
	Publish(ctx context.Context, event authgw.Event) error
}

// Service implements staff authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, enrollment,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	events            EventPublisher
	logger            *slog.Logger
}

// NewService constructs the auth [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	events EventPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		events:            events,
		logger:            logger,
	}
}

// EnrollInput holds the data required to create a new staff account.
type EnrollInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Role        sec.UserRole
}

// Enroll validates, hashes, and persists a brand new staff account.
//
// # Business Rules
//   - Emails must be unique.
//   - Default role is courier when none is given.
//   - A fresh auth-layer subject is minted alongside the durable ID.
func (service *Service) Enroll(ctx context.Context, input EnrollInput) (*User, error) {
	// ── 1. Uniqueness Check ───────────────────────────────────────────────

	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost balances security
	// against CPU utilization during enrollment bursts.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	role := input.Role
	if role == "" {
		role = sec.RoleCourier
	}

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		AuthID:       uuidv7.New(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Phone:        input.Phone,
		Role:         role,
		IsVerified:   false,
		IsActive:     true,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_enroll_failed: %w", err)
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established staff session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// Login validates staff credentials and issues security tokens.
//
// # Flow
//  1. Lookup account by email, reject deactivated accounts.
//  2. Verify password hash using Bcrypt.
//  3. Issue access + refresh token pair.
//  4. Publish SIGNED_IN so running session engines reconcile.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	// ── 1. Fetch Account ──────────────────────────────────────────────────

	// Generic unauthorized errors prevent email enumeration.
	user, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// Bcrypt compares in constant time, preventing timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	session, err := service.issueTokens(ctx, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	if err := service.userRepository.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		service.logger.Warn("auth_touch_last_login_failed", slog.Any("error", err))
	}

	// ── 4. Event Fan-Out ──────────────────────────────────────────────────

	service.publish(ctx, authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: user.AuthID, Email: user.Email},
	})

	return session, nil
}

// Logout permanently revokes the operator's active session and announces
// the sign-out. Revoking a session that is already gone is a successful
// no-op, so logout stays idempotent.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	if user, err := service.userRepository.FindByID(ctx, session.UserID); err == nil {
		service.publish(ctx, authgw.Event{
			Type:     authgw.EventSignedOut,
			Identity: authgw.Identity{AuthID: user.AuthID, Email: user.Email},
		})
	}

	return nil
}

// RefreshSession implements refresh token rotation: verify the existing
// token, revoke it to prevent replay, issue a fresh pair, and announce the
// rotation so engines holding this operator keep their profile.
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	// ── 1. Find Existing Session ──────────────────────────────────────────

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Rotation (Revoke Old Session) ──────────────────────────────────

	if err := service.sessionRepository.Revoke(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// ── 3. Find Account ───────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, session.UserID)
	if err != nil || !user.IsActive {
		return nil, apperr.Unauthorized("User not found or deactivated")
	}

	// ── 4. Issue New Tokens ───────────────────────────────────────────────

	fresh, err := service.issueTokens(ctx, user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	service.publish(ctx, authgw.Event{
		Type:     authgw.EventTokenRefreshed,
		Identity: authgw.Identity{AuthID: user.AuthID, Email: user.Email},
	})

	return fresh, nil
}

// Profile returns the staff account bound to the durable userID.
func (service *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(ctx, userID)
}

// ProfileByAuthID returns the staff account bound to an auth-layer subject.
func (service *Service) ProfileByAuthID(ctx context.Context, authID string) (*User, error) {
	return service.userRepository.FindByAuthID(ctx, authID)
}

// issueTokens creates the access token and a tracked refresh session.
func (service *Service) issueTokens(ctx context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.AuthID, user.Email, string(user.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// publish fans an auth event out best-effort. A broker hiccup must never
// fail the login itself: engines re-probe on their own schedule.
func (service *Service) publish(ctx context.Context, event authgw.Event) {
	if service.events == nil {
		return
	}
	if err := service.events.Publish(ctx, event); err != nil {
		service.logger.Warn("auth_event_publish_failed",
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
