// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package session implements the session reconciliation engine.

The engine maintains the single source of truth for "who is logged in" by
reconciling three independent signal sources: the initial session probe, the
pushed stream of auth lifecycle events, and explicit login/logout calls.

The state machine itself is a pure reducer ([Reduce]) over an explicit
[Phase] enum, so every transition is testable without a provider or any
network at all. [Engine] wraps the reducer with the concurrency rules:
probe ceiling, logout guard, event de-duplication, and bounded profile
retry.
*/
package session

import (
	"github.com/google/uuid"

	"github.com/parcelia/backoffice/internal/platform/errclass"
	"github.com/parcelia/backoffice/internal/platform/sec"
)

// Phase is the session lifecycle phase.
type Phase string

const (
	// PhaseLoading is the initial phase, before the first probe resolves.
	// Login also re-enters it while credentials are in flight.
	PhaseLoading Phase = "loading"

	// PhaseAuthenticated means an operator profile is resolved and active.
	PhaseAuthenticated Phase = "authenticated"

	// PhaseUnauthenticated means no valid session exists. Credential
	// rejections and missing profiles land here.
	PhaseUnauthenticated Phase = "unauthenticated"

	// PhaseConnectionError means the probe or a fetch failed at the
	// network level. Distinct from unauthenticated: the operator is
	// offered a retry, not a login form.
	PhaseConnectionError Phase = "connection_error"
)

// Operator is the resolved staff profile bound to the active session.
//
// ID is the durable directory identifier used for history attribution;
// AuthID is the auth-layer subject. They are distinct and must never be
// conflated.
type Operator struct {
	ID          uuid.UUID
	AuthID      string
	Email       string
	DisplayName string
	Role        sec.UserRole
}

// State is one immutable snapshot of the session machine.
type State struct {
	Phase Phase

	// Operator is non-nil exactly when Phase is PhaseAuthenticated.
	Operator *Operator

	// Cause records why the session is unauthenticated or in connection
	// error. KindUnknown when the phase carries no failure.
	Cause errclass.Kind
}

// Initial returns the starting state of a fresh engine.
func Initial() State {
	return State{Phase: PhaseLoading}
}

// # Events

// Event is a sealed input to [Reduce]. Each variant corresponds to one
// signal the engine can receive.
type Event interface {
	isSessionEvent()
}

// ProbeSucceeded carries the operator resolved by the initial probe.
type ProbeSucceeded struct{ Operator Operator }

// ProbeFailed carries the classified failure of the initial probe.
// A connectivity kind lands in connection error, anything else in
// unauthenticated.
type ProbeFailed struct{ Kind errclass.Kind }

// LoginStarted marks an explicit login attempt entering flight.
type LoginStarted struct{}

// LoginSucceeded carries the operator resolved after a credential check.
type LoginSucceeded struct{ Operator Operator }

// LoginFailed carries the classified failure of an explicit login.
type LoginFailed struct{ Kind errclass.Kind }

// LogoutRequested is applied optimistically, before the sign-out round
// trip completes.
type LogoutRequested struct{}

// RetryRequested re-enters loading. Only honored from connection error;
// ignored in every other phase.
type RetryRequested struct{}

// RemoteSignedIn carries an operator resolved from a pushed sign-in event.
type RemoteSignedIn struct{ Operator Operator }

// RemoteSignedOut reflects a pushed session revocation.
type RemoteSignedOut struct{}

// RemoteSignInFailed reflects a pushed sign-in whose profile resolution
// failed or timed out. It always falls back to unauthenticated, whatever
// the failure kind: a pushed event has no caller to offer a retry to.
type RemoteSignInFailed struct{ Kind errclass.Kind }

func (ProbeSucceeded) isSessionEvent()     {}
func (ProbeFailed) isSessionEvent()        {}
func (LoginStarted) isSessionEvent()       {}
func (LoginSucceeded) isSessionEvent()     {}
func (LoginFailed) isSessionEvent()        {}
func (LogoutRequested) isSessionEvent()    {}
func (RetryRequested) isSessionEvent()     {}
func (RemoteSignedIn) isSessionEvent()     {}
func (RemoteSignedOut) isSessionEvent()    {}
func (RemoteSignInFailed) isSessionEvent() {}

// # Reducer

// Reduce applies one event to a state and returns the next state. It is
// pure: no I/O, no clocks, no mutation of its inputs.
func Reduce(state State, event Event) State {
	switch e := event.(type) {
	case ProbeSucceeded:
		return authenticated(e.Operator)

	case ProbeFailed:
		return failed(e.Kind)

	case LoginStarted:
		return State{Phase: PhaseLoading}

	case LoginSucceeded:
		return authenticated(e.Operator)

	case LoginFailed:
		return failed(e.Kind)

	case LogoutRequested:
		return State{Phase: PhaseUnauthenticated}

	case RetryRequested:
		if state.Phase != PhaseConnectionError {
			return state
		}
		return State{Phase: PhaseLoading}

	case RemoteSignedIn:
		return authenticated(e.Operator)

	case RemoteSignedOut:
		return State{Phase: PhaseUnauthenticated}

	case RemoteSignInFailed:
		return State{Phase: PhaseUnauthenticated, Cause: e.Kind}

	default:
		return state
	}
}

func authenticated(operator Operator) State {
	return State{Phase: PhaseAuthenticated, Operator: &operator}
}

// failed routes a classified failure: network-shaped kinds go to
// connection error, everything else (rejected credentials, missing
// profile, no session) goes to unauthenticated.
func failed(kind errclass.Kind) State {
	if kind.IsConnectivity() {
		return State{Phase: PhaseConnectionError, Cause: kind}
	}
	return State{Phase: PhaseUnauthenticated, Cause: kind}
}
