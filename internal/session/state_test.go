// Copyright (c) 2026 Parcelia. All rights reserved.

package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/platform/errclass"
	"github.com/parcelia/backoffice/internal/platform/sec"
)

func testOperator() Operator {
	return Operator{
		ID:          uuid.New(),
		AuthID:      "auth-123",
		Email:       "courier@example.com",
		DisplayName: "Jean Courier",
		Role:        sec.RoleCourier,
	}
}

func TestReduce_ProbeOutcomes(t *testing.T) {
	t.Parallel()

	operator := testOperator()

	tests := []struct {
		name      string
		event     Event
		wantPhase Phase
		wantCause errclass.Kind
	}{
		{
			name:      "probe success authenticates",
			event:     ProbeSucceeded{Operator: operator},
			wantPhase: PhaseAuthenticated,
		},
		{
			name:      "network failure is a connection error",
			event:     ProbeFailed{Kind: errclass.KindConnectivity},
			wantPhase: PhaseConnectionError,
			wantCause: errclass.KindConnectivity,
		},
		{
			name:      "missing session is unauthenticated, never a connection error",
			event:     ProbeFailed{Kind: errclass.KindUnknown},
			wantPhase: PhaseUnauthenticated,
		},
		{
			name:      "missing profile is unauthenticated",
			event:     ProbeFailed{Kind: errclass.KindProfileNotFound},
			wantPhase: PhaseUnauthenticated,
			wantCause: errclass.KindProfileNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := Reduce(Initial(), tt.event)

			assert.Equal(t, tt.wantPhase, next.Phase)
			assert.Equal(t, tt.wantCause, next.Cause)
		})
	}
}

func TestReduce_LoginLifecycle(t *testing.T) {
	t.Parallel()

	operator := testOperator()

	state := Reduce(Initial(), ProbeFailed{Kind: errclass.KindUnknown})
	require.Equal(t, PhaseUnauthenticated, state.Phase)

	state = Reduce(state, LoginStarted{})
	assert.Equal(t, PhaseLoading, state.Phase)

	state = Reduce(state, LoginSucceeded{Operator: operator})
	require.Equal(t, PhaseAuthenticated, state.Phase)
	require.NotNil(t, state.Operator)
	assert.Equal(t, "courier@example.com", state.Operator.Email)
	assert.Equal(t, sec.RoleCourier, state.Operator.Role)
}

func TestReduce_LoginFailureClassification(t *testing.T) {
	t.Parallel()

	t.Run("rejected credentials go to unauthenticated", func(t *testing.T) {
		t.Parallel()

		state := Reduce(State{Phase: PhaseLoading}, LoginFailed{Kind: errclass.KindInvalidCredentials})

		assert.Equal(t, PhaseUnauthenticated, state.Phase)
		assert.Equal(t, errclass.KindInvalidCredentials, state.Cause)
	})

	t.Run("network failure goes to connection error", func(t *testing.T) {
		t.Parallel()

		state := Reduce(State{Phase: PhaseLoading}, LoginFailed{Kind: errclass.KindConnectivity})

		assert.Equal(t, PhaseConnectionError, state.Phase)
	})
}

func TestReduce_LogoutClearsOperator(t *testing.T) {
	t.Parallel()

	operator := testOperator()
	state := Reduce(Initial(), ProbeSucceeded{Operator: operator})
	require.Equal(t, PhaseAuthenticated, state.Phase)

	state = Reduce(state, LogoutRequested{})

	assert.Equal(t, PhaseUnauthenticated, state.Phase)
	assert.Nil(t, state.Operator)
}

func TestReduce_RetryOnlyFromConnectionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state State
		want  Phase
	}{
		{
			name:  "retry from connection error re-enters loading",
			state: State{Phase: PhaseConnectionError, Cause: errclass.KindConnectivity},
			want:  PhaseLoading,
		},
		{
			name:  "retry while authenticated is ignored",
			state: Reduce(Initial(), ProbeSucceeded{Operator: testOperator()}),
			want:  PhaseAuthenticated,
		},
		{
			name:  "retry while unauthenticated is ignored",
			state: State{Phase: PhaseUnauthenticated},
			want:  PhaseUnauthenticated,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := Reduce(tt.state, RetryRequested{})

			assert.Equal(t, tt.want, next.Phase)
		})
	}
}

func TestReduce_RemoteEvents(t *testing.T) {
	t.Parallel()

	operator := testOperator()

	t.Run("remote sign-in authenticates", func(t *testing.T) {
		t.Parallel()

		state := Reduce(State{Phase: PhaseUnauthenticated}, RemoteSignedIn{Operator: operator})

		require.Equal(t, PhaseAuthenticated, state.Phase)
		assert.Equal(t, operator.AuthID, state.Operator.AuthID)
	})

	t.Run("remote sign-out drops the operator", func(t *testing.T) {
		t.Parallel()

		state := Reduce(Reduce(Initial(), ProbeSucceeded{Operator: operator}), RemoteSignedOut{})

		assert.Equal(t, PhaseUnauthenticated, state.Phase)
		assert.Nil(t, state.Operator)
	})

	t.Run("remote sign-in failure always falls back to unauthenticated", func(t *testing.T) {
		t.Parallel()

		// Even a connectivity-shaped failure: a pushed event has no
		// caller to offer a retry to.
		state := Reduce(State{Phase: PhaseUnauthenticated}, RemoteSignInFailed{Kind: errclass.KindConnectivity})

		assert.Equal(t, PhaseUnauthenticated, state.Phase)
	})
}

func TestReduce_IsPure(t *testing.T) {
	t.Parallel()

	original := Reduce(Initial(), ProbeSucceeded{Operator: testOperator()})
	before := *original.Operator

	_ = Reduce(original, LogoutRequested{})
	_ = Reduce(original, RemoteSignedOut{})

	assert.Equal(t, PhaseAuthenticated, original.Phase)
	assert.Equal(t, before, *original.Operator)
}
