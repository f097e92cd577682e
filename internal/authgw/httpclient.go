// Copyright (c) 2026 Parcelia. All rights reserved.

package authgw

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/parcelia/backoffice/internal/platform/apperr"
)

// HTTPProvider implements Provider against a remote Parcelia API.
//
// Workstation agents use it to drive their local session reconciliation
// engine: sign-in and sign-out are plain JSON calls, remote events arrive
// over a server-sent-events stream that reconnects on failure.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu      sync.Mutex
	session *Session

	events     chan Event
	eventsOnce sync.Once
	cancelSSE  context.CancelFunc
}

// NewHTTPProvider creates a provider talking to the API at baseURL,
// e.g. "https://api.parcelia.app".
func NewHTTPProvider(baseURL string, logger *slog.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		events:  make(chan Event, 16),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AuthID       string    `json:"auth_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (response sessionResponse) toSession() *Session {
	return &Session{
		Identity:     Identity{AuthID: response.AuthID, Email: response.Email},
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
		ExpiresAt:    response.ExpiresAt,
	}
}

// SignIn authenticates against POST /api/v1/auth/login and caches the
// resulting session for subsequent authenticated calls.
func (provider *HTTPProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("authgw_http_marshal_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.baseURL+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("authgw_http_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := provider.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("authgw_http_login_failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, decodeAPIError(response)
	}

	var payload sessionResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("authgw_http_decode_failed: %w", err)
	}

	session := payload.toSession()

	provider.mu.Lock()
	provider.session = session
	provider.mu.Unlock()

	return session, nil
}

// SignOut revokes the cached session via POST /api/v1/auth/logout.
//
// The local session cache is cleared even when the remote call fails: a
// stale token on disk is worse than an unrevoked one server-side, and the
// engine treats logout optimistically anyway.
func (provider *HTTPProvider) SignOut(ctx context.Context) error {
	provider.mu.Lock()
	session := provider.session
	provider.session = nil
	provider.mu.Unlock()

	if session == nil {
		return nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.baseURL+"/api/v1/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("authgw_http_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+session.AccessToken)

	response, err := provider.client.Do(request)
	if err != nil {
		return fmt.Errorf("authgw_http_logout_failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusNoContent {
		return decodeAPIError(response)
	}

	return nil
}

// GetSession validates the cached session against GET /api/v1/auth/session.
// A 401 means the session is gone and maps to ErrNoSession.
func (provider *HTTPProvider) GetSession(ctx context.Context) (*Session, error) {
	provider.mu.Lock()
	session := provider.session
	provider.mu.Unlock()

	if session == nil {
		return nil, ErrNoSession
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.baseURL+"/api/v1/auth/session", nil)
	if err != nil {
		return nil, fmt.Errorf("authgw_http_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+session.AccessToken)

	response, err := provider.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("authgw_http_session_failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusUnauthorized {
		provider.mu.Lock()
		provider.session = nil
		provider.mu.Unlock()
		return nil, ErrNoSession
	}
	if response.StatusCode != http.StatusOK {
		return nil, decodeAPIError(response)
	}

	var payload sessionResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("authgw_http_decode_failed: %w", err)
	}

	refreshed := payload.toSession()
	if refreshed.AccessToken == "" {
		refreshed.AccessToken = session.AccessToken
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = session.RefreshToken
	}

	provider.mu.Lock()
	provider.session = refreshed
	provider.mu.Unlock()

	return refreshed, nil
}

// CurrentSession returns the locally cached session without probing the
// API. Callers needing a token for follow-up requests (profile lookups)
// read it from here; nil means signed out.
func (provider *HTTPProvider) CurrentSession() *Session {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	if provider.session == nil {
		return nil
	}
	s := *provider.session
	return &s
}

// Events returns the remote auth event stream. The SSE consumer starts
// lazily on first call and reconnects with a fixed backoff until Close.
func (provider *HTTPProvider) Events() <-chan Event {
	provider.eventsOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		provider.cancelSSE = cancel
		go provider.consumeSSE(ctx)
	})
	return provider.events
}

// Close stops the SSE consumer and closes the event channel.
func (provider *HTTPProvider) Close() {
	if provider.cancelSSE != nil {
		provider.cancelSSE()
	}
}

func (provider *HTTPProvider) consumeSSE(ctx context.Context) {
	defer close(provider.events)

	const reconnectDelay = 2 * time.Second

	for {
		if err := provider.streamOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			provider.logger.Warn("auth_event_stream_dropped", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (provider *HTTPProvider) streamOnce(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.baseURL+"/api/v1/auth/events", nil)
	if err != nil {
		return fmt.Errorf("authgw_sse_request_failed: %w", err)
	}
	request.Header.Set("Accept", "text/event-stream")

	provider.mu.Lock()
	if provider.session != nil {
		request.Header.Set("Authorization", "Bearer "+provider.session.AccessToken)
	}
	provider.mu.Unlock()

	response, err := provider.client.Do(request)
	if err != nil {
		return fmt.Errorf("authgw_sse_connect_failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("authgw_sse_status: %d", response.StatusCode)
	}

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			provider.logger.Warn("auth_event_decode_failed", slog.Any("error", err))
			continue
		}

		select {
		case provider.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("authgw_sse_read_failed: %w", err)
	}

	return io.EOF
}

// decodeAPIError rebuilds an [*apperr.AppError] from the API's error
// envelope so downstream classification sees the same typed codes the
// server emitted.
func decodeAPIError(response *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"error"`
	}
	message := fmt.Sprintf("unexpected status %d", response.StatusCode)
	code := "INTERNAL_ERROR"
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
		if payload.Code != "" {
			code = payload.Code
		}
	}

	return &apperr.AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: response.StatusCode,
	}
}
