// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package authgw defines the gateway contracts between the back office and the
authentication layer.

The session reconciliation engine never talks to a concrete auth backend.
It depends on the [Provider] interface, which models the three signal sources
the engine must reconcile: the synchronous session probe, explicit
sign-in/sign-out calls, and the pushed stream of auth lifecycle events.

Two implementations exist:

  - the in-process auth service (internal/auth) feeds the [Broker], which
    fans events out over Redis pub/sub to every running engine;
  - [HTTPProvider] implements the same contract against the API's auth
    endpoints plus its SSE event stream, for workstation agents.
*/
package authgw

import (
	"context"
	"errors"
	"time"
)

// EventType identifies an auth lifecycle event pushed by the backend.
type EventType string

const (
	// EventSignedIn signals that a credential check succeeded somewhere.
	EventSignedIn EventType = "SIGNED_IN"

	// EventSignedOut signals that the session was revoked.
	EventSignedOut EventType = "SIGNED_OUT"

	// EventTokenRefreshed signals a token rotation; the identity is unchanged.
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Identity is the raw authentication identity. It is NOT the durable staff
// profile: the two are keyed independently and must be cross-referenced
// through the directory before any attribution.
type Identity struct {
	// AuthID is the auth-layer subject identifier.
	AuthID string `json:"auth_id"`

	// Email is the login email, shared with the directory record.
	Email string `json:"email"`
}

// Session is an active authentication session as seen by the gateway.
type Session struct {
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Event is one entry of the pushed auth-event stream.
type Event struct {
	Type     EventType `json:"type"`
	Identity Identity  `json:"identity"`
	At       time.Time `json:"at"`
}

// ErrNoSession is returned by [Provider.GetSession] when no valid session
// exists. It is an authentication outcome, never a connectivity failure —
// the two must stay distinguishable for the reconciliation engine.
var ErrNoSession = errors.New("authgw: no active session")

// Provider is the authentication service contract consumed by the session
// reconciliation engine.
type Provider interface {
	// SignIn performs a credential check and establishes a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the current session. Revoking an already-revoked
	// session is not an error.
	SignOut(ctx context.Context) error

	// GetSession probes for an existing valid session. Returns
	// [ErrNoSession] when there is none.
	GetSession(ctx context.Context) (*Session, error)

	// Events returns the pushed auth-event stream. The channel is closed
	// when the provider shuts down.
	Events() <-chan Event
}
