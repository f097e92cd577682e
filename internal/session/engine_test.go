// Copyright (c) 2026 Parcelia. All rights reserved.

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/errclass"
	"github.com/parcelia/backoffice/internal/platform/sec"
)

// # Fakes

type fakeProvider struct {
	mu           sync.Mutex
	session      *authgw.Session
	sessionErr   error
	sessionDelay time.Duration
	signInErr    error
	signOutHang  chan struct{}
	signOuts     atomic.Int32
	events       chan authgw.Event
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: make(chan authgw.Event, 8)}
}

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (*authgw.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return &authgw.Session{Identity: authgw.Identity{AuthID: "auth-123", Email: email}}, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.signOuts.Add(1)
	if p.signOutHang != nil {
		<-p.signOutHang
		return ctx.Err()
	}
	return nil
}

func (p *fakeProvider) GetSession(ctx context.Context) (*authgw.Session, error) {
	if p.sessionDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.sessionDelay):
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	if p.session == nil {
		return nil, authgw.ErrNoSession
	}
	return p.session, nil
}

func (p *fakeProvider) Events() <-chan authgw.Event { return p.events }

type fakeDirectory struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
	delay    time.Duration
	operator Operator
}

func (d *fakeDirectory) FindOperator(ctx context.Context, _ authgw.Identity) (*Operator, error) {
	if d.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.delay):
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if d.calls <= d.failures {
		return nil, apperr.NotFound("Operator")
	}
	operator := d.operator
	return &operator, nil
}

func (d *fakeDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func courierOperator() Operator {
	return Operator{
		ID:          uuid.New(),
		AuthID:      "auth-123",
		Email:       "courier@example.com",
		DisplayName: "Jean Courier",
		Role:        sec.RoleCourier,
	}
}

func testConfig() Config {
	return Config{
		ProbeTimeout:          50 * time.Millisecond,
		LogoutTimeout:         200 * time.Millisecond,
		SignInEventTimeout:    50 * time.Millisecond,
		EventDedupWindow:      time.Second,
		ProfileRetryAttempts:  3,
		ProfileRetryBaseDelay: time.Millisecond,
	}
}

func newTestEngine(provider *fakeProvider, directory *fakeDirectory) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(provider, directory, testConfig(), logger)
}

// # Probe

func TestEngine_ProbeAuthenticates(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.session = &authgw.Session{Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"}}
	directory := &fakeDirectory{operator: courierOperator()}
	engine := newTestEngine(provider, directory)

	engine.probe(context.Background())

	snapshot := engine.Snapshot()
	require.Equal(t, PhaseAuthenticated, snapshot.Phase)
	assert.Equal(t, "courier@example.com", snapshot.Operator.Email)
	assert.Equal(t, sec.RoleCourier, snapshot.Operator.Role)
}

func TestEngine_ProbeClassifiesFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing session means unauthenticated", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		engine := newTestEngine(provider, &fakeDirectory{})

		engine.probe(context.Background())

		assert.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)
	})

	t.Run("network failure means connection error", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		provider.sessionErr = errors.New("dial tcp 10.0.0.1:443: connection refused")
		engine := newTestEngine(provider, &fakeDirectory{})

		engine.probe(context.Background())

		snapshot := engine.Snapshot()
		assert.Equal(t, PhaseConnectionError, snapshot.Phase)
		assert.Equal(t, errclass.KindConnectivity, snapshot.Cause)
	})
}

func TestEngine_ProbeCeilingIsConnectionError(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.sessionDelay = time.Second
	engine := newTestEngine(provider, &fakeDirectory{})

	start := time.Now()
	engine.probe(context.Background())

	assert.Less(t, time.Since(start), 500*time.Millisecond, "probe must give up at its ceiling")
	assert.Equal(t, PhaseConnectionError, engine.Snapshot().Phase)
}

// # Login

func TestEngine_LoginRetriesLaggingProfile(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{failures: 2, operator: courierOperator()}
	engine := newTestEngine(provider, directory)

	err := engine.Login(context.Background(), "courier@example.com", "validpass")

	require.NoError(t, err)
	assert.Equal(t, 3, directory.callCount())

	snapshot := engine.Snapshot()
	require.Equal(t, PhaseAuthenticated, snapshot.Phase)
	assert.Equal(t, sec.RoleCourier, snapshot.Operator.Role)
}

func TestEngine_LoginRetryIsBounded(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{failures: 10, operator: courierOperator()}
	engine := newTestEngine(provider, directory)

	err := engine.Login(context.Background(), "courier@example.com", "validpass")

	require.Error(t, err)
	assert.Equal(t, 3, directory.callCount())
	assert.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)
}

func TestEngine_LoginConnectivityAbortsRetry(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{err: errors.New("dial tcp 10.0.0.1:5432: i/o timeout")}
	engine := newTestEngine(provider, directory)

	err := engine.Login(context.Background(), "courier@example.com", "validpass")

	require.Error(t, err)
	assert.Equal(t, 1, directory.callCount(), "connectivity failures must not be retried")
	assert.Equal(t, PhaseConnectionError, engine.Snapshot().Phase)
}

func TestEngine_LoginRejectedCredentials(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.signInErr = apperr.Unauthorized("Invalid credentials")
	engine := newTestEngine(provider, &fakeDirectory{})

	err := engine.Login(context.Background(), "courier@example.com", "wrongpass")

	require.Error(t, err)

	snapshot := engine.Snapshot()
	assert.Equal(t, PhaseUnauthenticated, snapshot.Phase)
	assert.True(t, snapshot.Cause.IsAuthFailure())
}

// # Logout

func TestEngine_LogoutIsOptimisticAndSingleFlight(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.signOutHang = make(chan struct{})

	engine := newTestEngine(provider, &fakeDirectory{})
	engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

	done := make(chan error, 1)
	go func() { done <- engine.Logout(context.Background()) }()

	// The local transition must not wait for the sign-out round trip.
	require.Eventually(t, func() bool {
		return engine.Snapshot().Phase == PhaseUnauthenticated
	}, time.Second, time.Millisecond)

	// A concurrent logout while one is in flight is a no-op.
	require.NoError(t, engine.Logout(context.Background()))
	assert.Equal(t, int32(1), provider.signOuts.Load())

	close(provider.signOutHang)
	<-done
}

func TestEngine_LogoutGuardClearsAfterTimeout(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.signOutHang = make(chan struct{})
	t.Cleanup(func() { close(provider.signOutHang) })

	engine := newTestEngine(provider, &fakeDirectory{})
	engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

	go func() { _ = engine.Logout(context.Background()) }()

	require.Eventually(t, func() bool {
		return provider.signOuts.Load() == 1
	}, time.Second, time.Millisecond)

	// The safety timer must release the guard even though the first
	// sign-out call is still hanging.
	require.Eventually(t, func() bool {
		return !engine.logoutInFlight.Load()
	}, time.Second, time.Millisecond)

	go func() { _ = engine.Logout(context.Background()) }()

	require.Eventually(t, func() bool {
		return provider.signOuts.Load() == 2
	}, time.Second, time.Millisecond)
}

// # Remote Events

func TestEngine_EventsBeforeProbeAreDropped(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{operator: courierOperator()}
	engine := newTestEngine(provider, directory)

	engine.handleRemoteEvent(context.Background(), authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"},
	})

	assert.Equal(t, 0, directory.callCount())
	assert.Equal(t, PhaseLoading, engine.Snapshot().Phase)
}

func TestEngine_DuplicateEventsAreSuppressed(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{failures: 10}
	engine := newTestEngine(provider, directory)
	engine.probe(context.Background())

	event := authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-456", Email: "other@example.com"},
	}

	engine.handleRemoteEvent(context.Background(), event)
	callsAfterFirst := directory.callCount()
	require.Positive(t, callsAfterFirst)

	engine.handleRemoteEvent(context.Background(), event)

	assert.Equal(t, callsAfterFirst, directory.callCount(), "redelivered event must not be reprocessed")
}

func TestEngine_SignInForCurrentOperatorIsNoOp(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{operator: courierOperator()}
	engine := newTestEngine(provider, directory)
	engine.probeDone.Store(true)
	engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

	engine.handleRemoteEvent(context.Background(), authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"},
	})

	assert.Equal(t, 0, directory.callCount())
	assert.Equal(t, PhaseAuthenticated, engine.Snapshot().Phase)
}

func TestEngine_TokenRefresh(t *testing.T) {
	t.Parallel()

	t.Run("same identity preserves the profile", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		directory := &fakeDirectory{operator: courierOperator()}
		engine := newTestEngine(provider, directory)
		engine.probeDone.Store(true)
		current := courierOperator()
		engine.dispatch(ProbeSucceeded{Operator: current})

		engine.handleRemoteEvent(context.Background(), authgw.Event{
			Type:     authgw.EventTokenRefreshed,
			Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"},
		})

		assert.Equal(t, 0, directory.callCount())
		assert.Equal(t, current.ID, engine.Snapshot().Operator.ID)
	})

	t.Run("refresh without a held profile triggers a fetch", func(t *testing.T) {
		t.Parallel()

		operator := courierOperator()
		provider := newFakeProvider()
		directory := &fakeDirectory{operator: operator}
		engine := newTestEngine(provider, directory)
		engine.probe(context.Background())
		require.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)

		engine.handleRemoteEvent(context.Background(), authgw.Event{
			Type:     authgw.EventTokenRefreshed,
			Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"},
		})

		assert.Equal(t, 1, directory.callCount())
		assert.Equal(t, "auth-123", engine.Snapshot().Operator.AuthID)
	})
}

func TestEngine_ForeignEventsAreIgnored(t *testing.T) {
	t.Parallel()

	t.Run("foreign sign-in keeps the local operator", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		directory := &fakeDirectory{operator: courierOperator()}
		engine := newTestEngine(provider, directory)
		engine.probeDone.Store(true)
		engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

		engine.handleRemoteEvent(context.Background(), authgw.Event{
			Type:     authgw.EventSignedIn,
			Identity: authgw.Identity{AuthID: "auth-999", Email: "manager@example.com"},
		})

		snapshot := engine.Snapshot()
		assert.Equal(t, 0, directory.callCount())
		require.Equal(t, PhaseAuthenticated, snapshot.Phase)
		assert.Equal(t, "courier@example.com", snapshot.Operator.Email)
	})

	t.Run("foreign sign-out keeps the session", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		engine := newTestEngine(provider, &fakeDirectory{})
		engine.probeDone.Store(true)
		engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

		engine.handleRemoteEvent(context.Background(), authgw.Event{
			Type:     authgw.EventSignedOut,
			Identity: authgw.Identity{AuthID: "auth-999", Email: "manager@example.com"},
		})

		assert.Equal(t, PhaseAuthenticated, engine.Snapshot().Phase)
	})

	t.Run("own sign-out still signs out", func(t *testing.T) {
		t.Parallel()

		provider := newFakeProvider()
		engine := newTestEngine(provider, &fakeDirectory{})
		engine.probeDone.Store(true)
		engine.dispatch(ProbeSucceeded{Operator: courierOperator()})

		engine.handleRemoteEvent(context.Background(), authgw.Event{
			Type:     authgw.EventSignedOut,
			Identity: authgw.Identity{AuthID: "auth-123", Email: "courier@example.com"},
		})

		assert.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)
	})
}

func TestEngine_DedupTracksEachSignature(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{failures: 100}
	engine := newTestEngine(provider, directory)
	engine.probe(context.Background())

	first := authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-456", Email: "other@example.com"},
	}
	second := authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-789", Email: "third@example.com"},
	}

	engine.handleRemoteEvent(context.Background(), first)
	callsAfterFirst := directory.callCount()
	require.Positive(t, callsAfterFirst)

	engine.handleRemoteEvent(context.Background(), second)
	callsAfterSecond := directory.callCount()
	require.Greater(t, callsAfterSecond, callsAfterFirst)

	// The interleaved event must not evict the first signature.
	engine.handleRemoteEvent(context.Background(), first)

	assert.Equal(t, callsAfterSecond, directory.callCount(), "redelivery behind an interleaved event must still be suppressed")
}

func TestEngine_EventsDroppedDuringLogout(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	engine := newTestEngine(provider, &fakeDirectory{})
	engine.probeDone.Store(true)
	engine.dispatch(ProbeSucceeded{Operator: courierOperator()})
	engine.logoutInFlight.Store(true)

	engine.handleRemoteEvent(context.Background(), authgw.Event{Type: authgw.EventSignedOut})

	assert.Equal(t, PhaseAuthenticated, engine.Snapshot().Phase)
}

func TestEngine_SignInEventCeilingFallsBackToUnauthenticated(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	directory := &fakeDirectory{delay: time.Second, operator: courierOperator()}
	engine := newTestEngine(provider, directory)
	engine.probe(context.Background())
	require.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)

	start := time.Now()
	engine.handleRemoteEvent(context.Background(), authgw.Event{
		Type:     authgw.EventSignedIn,
		Identity: authgw.Identity{AuthID: "auth-456", Email: "other@example.com"},
	})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, PhaseUnauthenticated, engine.Snapshot().Phase)
}
