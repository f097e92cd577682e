// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/session"
)

// Directory adapts [UserRepository] to the session engine's directory
// contract, cross-referencing auth identities to durable staff profiles.
type Directory struct {
	users UserRepository
}

// NewDirectory creates a directory over the staff account repository.
func NewDirectory(users UserRepository) *Directory {
	return &Directory{users: users}
}

// FindOperator resolves an auth identity to an operator profile. The
// auth-layer subject is authoritative; email is the fallback for accounts
// enrolled before subjects were backfilled.
func (directory *Directory) FindOperator(ctx context.Context, identity authgw.Identity) (*session.Operator, error) {
	user, err := directory.users.FindByAuthID(ctx, identity.AuthID)
	if err != nil {
		user, err = directory.users.FindByEmail(ctx, identity.Email)
		if err != nil {
			return nil, err
		}
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_directory_bad_user_id: %w", err)
	}

	return &session.Operator{
		ID:          id,
		AuthID:      user.AuthID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// FindActorID resolves an auth-layer subject to the durable staff ID used
// for audit attribution. Satisfies the parcel tracker's directory contract.
func (directory *Directory) FindActorID(ctx context.Context, authID string) (string, error) {
	user, err := directory.users.FindByAuthID(ctx, authID)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
