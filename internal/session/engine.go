// Copyright (c) 2026 Parcelia. All rights reserved.

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/errclass"
)

// Directory resolves an auth identity to the durable staff profile.
//
// The auth layer and the staff directory are keyed independently, and the
// directory record may lag a freshly created auth identity. Callers must
// therefore expect transient not-found results right after sign-up.
type Directory interface {
	FindOperator(ctx context.Context, identity authgw.Identity) (*Operator, error)
}

// Config carries the engine's timing rules. Production code should use
// [DefaultConfig]; tests shrink the durations to keep runs fast.
type Config struct {
	// ProbeTimeout is the hard ceiling on the initial session probe.
	// Exceeding it is a connection error, never an endless loading state.
	ProbeTimeout time.Duration

	// LogoutTimeout bounds the sign-out round trip and the in-flight
	// guard. The guard is forcibly cleared when it elapses so a hung
	// call can never wedge logout permanently.
	LogoutTimeout time.Duration

	// SignInEventTimeout bounds profile resolution for a pushed sign-in
	// event. Exceeding it falls back to unauthenticated.
	SignInEventTimeout time.Duration

	// EventDedupWindow suppresses a repeated (type, email) event pair
	// delivered within the window.
	EventDedupWindow time.Duration

	// ProfileRetryAttempts bounds profile-resolution retries after a
	// sign-in. Only not-found results are retried.
	ProfileRetryAttempts int

	// ProfileRetryBaseDelay is multiplied by the attempt number for the
	// incremental backoff between retries.
	ProfileRetryBaseDelay time.Duration
}

// DefaultConfig returns the production timing rules.
func DefaultConfig() Config {
	return Config{
		ProbeTimeout:          constants.SessionProbeTimeout,
		LogoutTimeout:         constants.LogoutTimeout,
		SignInEventTimeout:    constants.SignInEventTimeout,
		EventDedupWindow:      constants.AuthEventDedupWindow,
		ProfileRetryAttempts:  constants.ProfileRetryAttempts,
		ProfileRetryBaseDelay: constants.ProfileRetryBaseDelay,
	}
}

// Engine reconciles the three session signal sources into one [State].
//
// It owns the state exclusively: consumers read it through [Engine.Snapshot]
// or [Engine.Watch] and mutate it only through Login, Logout and
// RetryConnection.
type Engine struct {
	provider   authgw.Provider
	directory  Directory
	classifier errclass.Classifier
	cfg        Config
	logger     *slog.Logger

	mu    sync.Mutex
	state State

	// Remote events arriving before the first probe resolves are dropped
	// so they cannot race it.
	probeDone atomic.Bool

	// logoutInFlight makes logout a no-op for concurrent callers. A
	// safety timer clears it even if the sign-out call hangs.
	logoutInFlight atomic.Bool
	logoutTimer    *time.Timer

	// De-duplication of redelivered auth events, keyed by type and email.
	// Each signature keeps its own window so interleaved deliveries
	// (A, B, A) still suppress the redelivered A.
	recentEvents map[string]time.Time

	watchers []chan State
}

// New creates an engine in the loading phase. Call [Engine.Start] to run
// the initial probe and begin consuming remote events.
func New(provider authgw.Provider, directory Directory, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		provider:     provider,
		directory:    directory,
		classifier:   errclass.Default(),
		cfg:          cfg,
		logger:       logger,
		state:        Initial(),
		recentEvents: map[string]time.Time{},
	}
}

// Start runs the initial session probe, then consumes the provider's
// event stream until ctx is cancelled. It returns once the probe has
// resolved; event consumption continues in the background.
func (engine *Engine) Start(ctx context.Context) {
	engine.probe(ctx)
	go engine.consumeEvents(ctx)
}

// Snapshot returns the current state. The returned value is a copy.
func (engine *Engine) Snapshot() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

// Watch returns a channel receiving every state transition. Slow readers
// miss intermediate states rather than blocking the engine.
func (engine *Engine) Watch() <-chan State {
	ch := make(chan State, 8)
	engine.mu.Lock()
	engine.watchers = append(engine.watchers, ch)
	engine.mu.Unlock()
	return ch
}

// # Operations

// Login performs a credential check and resolves the operator profile.
//
// Profile resolution is retried a bounded number of times with incremental
// backoff, because the directory record may not be consistent with a brand
// new auth identity yet. A connectivity failure aborts immediately. The
// failure is both applied to the state machine and returned, so the caller
// can surface it.
func (engine *Engine) Login(ctx context.Context, email, password string) error {
	engine.dispatch(LoginStarted{})

	sess, err := engine.provider.SignIn(ctx, email, password)
	if err != nil {
		kind := engine.classifier.Classify(err)
		engine.dispatch(LoginFailed{Kind: kind})
		return err
	}

	operator, err := engine.resolveWithRetry(ctx, sess.Identity)
	if err != nil {
		kind := engine.classifier.Classify(err)
		engine.dispatch(LoginFailed{Kind: kind})
		return err
	}

	engine.dispatch(LoginSucceeded{Operator: *operator})
	return nil
}

// Logout revokes the session. It is idempotent: a logout already in
// flight makes concurrent calls a no-op. The local transition to
// unauthenticated happens before the network round trip, so the operator
// is never stuck on a protected view waiting for the backend.
func (engine *Engine) Logout(ctx context.Context) error {
	if !engine.logoutInFlight.CompareAndSwap(false, true) {
		return nil
	}

	// Safety valve: clear the guard even if SignOut hangs past its
	// deadline, otherwise the logout path stays wedged forever.
	engine.mu.Lock()
	engine.logoutTimer = time.AfterFunc(engine.cfg.LogoutTimeout, func() {
		engine.logoutInFlight.Store(false)
	})
	engine.mu.Unlock()

	engine.dispatch(LogoutRequested{})

	ctx, cancel := context.WithTimeout(ctx, engine.cfg.LogoutTimeout)
	defer cancel()

	err := engine.provider.SignOut(ctx)

	engine.mu.Lock()
	if engine.logoutTimer != nil {
		engine.logoutTimer.Stop()
		engine.logoutTimer = nil
	}
	engine.mu.Unlock()
	engine.logoutInFlight.Store(false)

	if err != nil {
		engine.logger.Warn("logout_signout_failed", slog.Any("error", err))
	}
	return err
}

// RetryConnection re-runs the initial probe. It only acts when the
// current phase is connection error.
func (engine *Engine) RetryConnection(ctx context.Context) {
	engine.mu.Lock()
	phase := engine.state.Phase
	engine.mu.Unlock()

	if phase != PhaseConnectionError {
		return
	}

	engine.dispatch(RetryRequested{})
	engine.probe(ctx)
}

// # Probe

func (engine *Engine) probe(ctx context.Context) {
	defer engine.probeDone.Store(true)

	ctx, cancel := context.WithTimeout(ctx, engine.cfg.ProbeTimeout)
	defer cancel()

	sess, err := engine.provider.GetSession(ctx)
	if err != nil {
		if errors.Is(err, authgw.ErrNoSession) {
			engine.dispatch(ProbeFailed{Kind: errclass.KindUnknown})
			return
		}
		engine.dispatch(ProbeFailed{Kind: engine.classifier.Classify(err)})
		return
	}

	operator, err := engine.resolveWithRetry(ctx, sess.Identity)
	if err != nil {
		engine.dispatch(ProbeFailed{Kind: engine.classifier.Classify(err)})
		return
	}

	engine.dispatch(ProbeSucceeded{Operator: *operator})
}

// resolveWithRetry looks the operator up in the directory, retrying only
// not-found results: the directory may lag a fresh auth identity. Every
// other failure kind aborts immediately.
func (engine *Engine) resolveWithRetry(ctx context.Context, identity authgw.Identity) (*Operator, error) {
	var lastErr error
	for attempt := 1; attempt <= engine.cfg.ProfileRetryAttempts; attempt++ {
		operator, err := engine.directory.FindOperator(ctx, identity)
		if err == nil {
			return operator, nil
		}
		lastErr = err

		if engine.classifier.Classify(err) != errclass.KindProfileNotFound {
			return nil, err
		}

		if attempt == engine.cfg.ProfileRetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * engine.cfg.ProfileRetryBaseDelay):
		}
	}
	return nil, lastErr
}

// # Remote Events

func (engine *Engine) consumeEvents(ctx context.Context) {
	events := engine.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			engine.handleRemoteEvent(ctx, event)
		}
	}
}

func (engine *Engine) handleRemoteEvent(ctx context.Context, event authgw.Event) {
	// Events racing the initial probe would apply stale transitions.
	if !engine.probeDone.Load() {
		engine.logger.Debug("auth_event_dropped_before_probe", slog.String("type", string(event.Type)))
		return
	}

	// A logout in flight wins over anything the stream says.
	if engine.logoutInFlight.Load() {
		engine.logger.Debug("auth_event_dropped_during_logout", slog.String("type", string(event.Type)))
		return
	}

	// The server scopes the stream to the bearer, but a misrouted event
	// for another operator must never displace the local session.
	if engine.isForeign(event.Identity) {
		engine.logger.Debug("auth_event_foreign_dropped",
			slog.String("type", string(event.Type)),
			slog.String("email", event.Identity.Email),
		)
		return
	}

	if engine.isDuplicate(event) {
		engine.logger.Debug("auth_event_deduplicated",
			slog.String("type", string(event.Type)),
			slog.String("email", event.Identity.Email),
		)
		return
	}

	switch event.Type {
	case authgw.EventSignedIn:
		engine.handleRemoteSignIn(ctx, event.Identity)

	case authgw.EventSignedOut:
		engine.dispatch(RemoteSignedOut{})

	case authgw.EventTokenRefreshed:
		engine.handleTokenRefresh(ctx, event.Identity)

	default:
		engine.logger.Warn("auth_event_unknown_type", slog.String("type", string(event.Type)))
	}
}

// isForeign reports whether an event identity belongs to someone other
// than the authenticated operator. While authenticated, the engine only
// reacts to its own operator's lifecycle; an event for anyone else can
// only corrupt the local session.
func (engine *Engine) isForeign(identity authgw.Identity) bool {
	engine.mu.Lock()
	current := engine.state
	engine.mu.Unlock()

	if current.Phase != PhaseAuthenticated {
		return false
	}
	if identity.AuthID != "" && identity.AuthID == current.Operator.AuthID {
		return false
	}
	return identity.Email != current.Operator.Email
}

// isDuplicate records the event signature and reports whether the same
// (type, email) pair was already seen within the de-duplication window.
// Backends are allowed to redeliver; the engine is not allowed to react
// twice.
func (engine *Engine) isDuplicate(event authgw.Event) bool {
	sig := string(event.Type) + "|" + event.Identity.Email
	now := time.Now()

	engine.mu.Lock()
	defer engine.mu.Unlock()

	if seen, ok := engine.recentEvents[sig]; ok && now.Sub(seen) < engine.cfg.EventDedupWindow {
		return true
	}
	for key, seen := range engine.recentEvents {
		if now.Sub(seen) >= engine.cfg.EventDedupWindow {
			delete(engine.recentEvents, key)
		}
	}
	engine.recentEvents[sig] = now
	return false
}

func (engine *Engine) handleRemoteSignIn(ctx context.Context, identity authgw.Identity) {
	// A sign-in for the operator we already hold is fully skippable.
	engine.mu.Lock()
	current := engine.state
	engine.mu.Unlock()
	if current.Phase == PhaseAuthenticated && current.Operator.Email == identity.Email {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, engine.cfg.SignInEventTimeout)
	defer cancel()

	operator, err := engine.resolveWithRetry(ctx, identity)
	if err != nil {
		// No caller to offer a retry to: fall back to unauthenticated
		// rather than hang, whatever the failure kind.
		engine.dispatch(RemoteSignInFailed{Kind: engine.classifier.Classify(err)})
		return
	}

	engine.dispatch(RemoteSignedIn{Operator: *operator})
}

func (engine *Engine) handleTokenRefresh(ctx context.Context, identity authgw.Identity) {
	engine.mu.Lock()
	current := engine.state
	engine.mu.Unlock()

	// Token rotation for the operator we already hold changes nothing
	// profile-wise: keep the resolved profile instead of refetching.
	if current.Phase == PhaseAuthenticated && current.Operator.AuthID == identity.AuthID {
		return
	}

	engine.handleRemoteSignIn(ctx, identity)
}

// # Dispatch

func (engine *Engine) dispatch(event Event) {
	engine.mu.Lock()
	previous := engine.state.Phase
	engine.state = Reduce(engine.state, event)
	next := engine.state
	watchers := engine.watchers
	engine.mu.Unlock()

	if previous != next.Phase {
		engine.logger.Info("session_phase_changed",
			slog.String("from", string(previous)),
			slog.String("to", string(next.Phase)),
		)
	}

	for _, watcher := range watchers {
		select {
		case watcher <- next:
		default:
		}
	}
}
