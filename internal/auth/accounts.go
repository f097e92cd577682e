// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/internal/platform/validate"
)

// Staff account administration. Enrollment lives in service.go next to the
// credential flow; everything here is day-two management of existing
// accounts.

// ListUsers returns active staff accounts matching the filter.
func (service *Service) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]*User, int, error) {
	return service.userRepository.List(ctx, filter, limit, offset)
}

// UpdateUserInput holds the mutable profile fields an admin can change.
type UpdateUserInput struct {
	DisplayName string       `json:"display_name"`
	Phone       string       `json:"phone"`
	Role        sec.UserRole `json:"role"`
	IsActive    *bool        `json:"is_active"`
}

// UpdateUser rewrites an account's profile fields. Deactivating an account
// also revokes its refresh sessions so open dashboards lose access on the
// next token rotation.
func (service *Service) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldDisplayName, input.DisplayName).
		MaxLen(FieldDisplayName, input.DisplayName, 100).
		OneOf(FieldRole, string(input.Role),
			string(sec.RoleAdmin), string(sec.RoleManager), string(sec.RoleCourier))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasActive := user.IsActive
	user.DisplayName = input.DisplayName
	user.Phone = input.Phone
	user.Role = input.Role
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := service.userRepository.Update(ctx, user); err != nil {
		return nil, err
	}

	if wasActive && !user.IsActive {
		if err := service.sessionRepository.RevokeAll(ctx, user.ID); err != nil {
			service.logger.Warn("auth_deactivation_revoke_failed",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}

	service.logger.Info("auth_user_updated",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.Bool("is_active", user.IsActive),
	)
	return user, nil
}

// ChangePassword verifies the current password before replacing it, then
// revokes every other refresh session.
func (service *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	validator := &validate.Validator{}
	validator.MinLen(FieldPassword, next, 8)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := service.userRepository.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := service.sessionRepository.RevokeAll(ctx, user.ID); err != nil {
		service.logger.Warn("auth_password_change_revoke_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("auth_password_changed", slog.String("user_id", user.ID))
	return nil
}

// RemoveUser soft-deletes the account and revokes its sessions. The row
// stays so history attribution keeps resolving.
func (service *Service) RemoveUser(ctx context.Context, userID string) error {
	if err := service.userRepository.SoftDelete(ctx, userID); err != nil {
		return err
	}

	if err := service.sessionRepository.RevokeAll(ctx, userID); err != nil {
		service.logger.Warn("auth_removal_revoke_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("auth_user_removed", slog.String("user_id", userID))
	return nil
}
