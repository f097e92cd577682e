// Copyright (c) 2026 Parcelia. All rights reserved.

// Command agent runs the workstation session agent.
//
// It connects to the back-office API, reconciles the local session state
// through the session engine (probe, remote sign-in/sign-out events, token
// refreshes), and logs every phase transition. Warehouse kiosks run one
// agent per workstation; the dashboard reads its state instead of talking
// to the auth layer directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/internal/session"
)

// agentConfig holds the workstation agent's environment configuration.
type agentConfig struct {
	// APIBaseURL points at the back-office API, e.g. "https://api.parcelia.app".
	APIBaseURL string `env:"API_BASE_URL,required"`

	// Optional service-account credentials. When set, the agent signs in
	// after the initial probe finds no session.
	Email    string `env:"AGENT_EMAIL"`
	Password string `env:"AGENT_PASSWORD"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

func main() {
	cfg := agentConfig{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "agent: bad configuration:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "parcelia-agent"))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	provider := authgw.NewHTTPProvider(cfg.APIBaseURL, log)
	defer provider.Close()

	directory := &apiDirectory{
		baseURL:  cfg.APIBaseURL,
		provider: provider,
		client:   http.DefaultClient,
	}

	engine := session.New(provider, directory, session.DefaultConfig(), log)
	engine.Start(ctx)

	if engine.Snapshot().Phase == session.PhaseUnauthenticated && cfg.Email != "" {
		if err := engine.Login(ctx, cfg.Email, cfg.Password); err != nil {
			log.Warn("agent_login_failed", slog.Any("error", err))
		}
	}

	watch := engine.Watch()
	for {
		select {
		case <-ctx.Done():
			log.Info("agent stopping")
			return
		case state := <-watch:
			attrs := []any{
				slog.String("phase", string(state.Phase)),
			}
			if state.Operator != nil {
				attrs = append(attrs, slog.String("operator", state.Operator.Email))
			}
			if state.Phase == session.PhaseConnectionError || state.Phase == session.PhaseUnauthenticated {
				attrs = append(attrs, slog.String("cause", state.Cause.String()))
			}
			log.Info("session_state", attrs...)
		}
	}
}

// apiDirectory resolves operator profiles through the API's /auth/me
// endpoint, authenticated with the provider's current access token. The
// agent never talks to the database directly.
type apiDirectory struct {
	baseURL  string
	provider *authgw.HTTPProvider
	client   *http.Client
}

type profileEnvelope struct {
	Data struct {
		ID          string       `json:"id"`
		AuthID      string       `json:"auth_id"`
		Email       string       `json:"email"`
		DisplayName string       `json:"display_name"`
		Role        sec.UserRole `json:"role"`
	} `json:"data"`
}

func (d *apiDirectory) FindOperator(ctx context.Context, identity authgw.Identity) (*session.Operator, error) {
	current := d.provider.CurrentSession()
	if current == nil {
		return nil, authgw.ErrNoSession
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/v1/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("agent_profile_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+current.AccessToken)

	response, err := d.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("agent_profile_fetch_failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent_profile_fetch_failed: status %d", response.StatusCode)
	}

	var payload profileEnvelope
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("agent_profile_decode_failed: %w", err)
	}

	id, err := uuid.Parse(payload.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("agent_profile_bad_id: %w", err)
	}

	return &session.Operator{
		ID:          id,
		AuthID:      payload.Data.AuthID,
		Email:       payload.Data.Email,
		DisplayName: payload.Data.DisplayName,
		Role:        payload.Data.Role,
	}, nil
}
