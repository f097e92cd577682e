// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package auth HTTP delivery layer.

The handler is a thin mediation layer between the web and the auth service:
  - Protocol: RESTful JSON, plus a server-sent-events stream for lifecycle events.
  - Security: JWT orchestration and refresh-token cookie injection.
  - Verification: strict input validation before anything reaches [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/middleware"
	requestutil "github.com/parcelia/backoffice/internal/platform/request"
	"github.com/parcelia/backoffice/internal/platform/respond"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Everything related to the staff session lifecycle: enrollment, login,
// token rotation, the session probe, and the pushed event stream consumed
// by workstation agents.
type Handler struct {
	authService *Service
	stream      Streamer
}

// Streamer provides the live auth-event feed for the SSE endpoint.
type Streamer interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

// NewHandler constructs a new [Handler] with its dependencies. stream may
// be nil, in which case the /events endpoint responds 503.
func NewHandler(service *Service, stream Streamer) *Handler {
	return &Handler{authService: service, stream: stream}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login   : Authenticates and returns a token pair.
//   - POST /refresh : Rotates the refresh token.
//   - POST /logout  : Revokes the session (authenticated).
//   - GET  /session : Probes for a valid session (authenticated).
//   - GET  /me      : Returns the full staff profile (authenticated).
//   - GET  /events  : Server-sent auth lifecycle events, scoped to the
//     bearer's own identity (authenticated).
//   - POST /enroll  : Creates a staff account (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/session", handler.session)
		r.Get("/me", handler.me)
		r.Get("/events", handler.events)
	})

	// Admin endpoints
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/enroll", handler.enroll)
	})

	return router
}

// # Request Payloads

type enrollRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/*
Enroll creates a new staff account.

POST /api/v1/auth/enroll

Description: Validates input, checks for email conflicts, and persists a
new staff profile. Admin only.

Response:
  - 201: User: Created staff profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) enroll(writer http.ResponseWriter, request *http.Request) {
	var input enrollRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldDisplayName, input.DisplayName)
	if input.Role != "" {
		validator.OneOf(FieldRole, input.Role,
			string(sec.RoleAdmin), string(sec.RoleManager), string(sec.RoleCourier))
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Enroll(request.Context(), EnrollInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		Role:        sec.UserRole(input.Role),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a staff member and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates the JWT access token, injects
a secure refresh token cookie, and returns the token pair in the body for
non-browser clients (workstation agents).

Response:
  - 200: Session payload with access token, identity, and profile
  - 401: ErrUnauthorized: Invalid credentials or deactivated account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: getClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		"auth_id":        session.User.AuthID,
		FieldEmail:       session.User.Email,
		FieldAccessToken: session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		"expires_at":     time.Now().Add(constants.AccessTokenTTL),
		FieldUser:        session.User,
	})
}

/*
Logout terminates the current staff session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (cookie or JSON body) and clears
the security cookie from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	refreshToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		refreshToken = cookie.Value
	} else {
		// Workstation agents carry the refresh token in the body.
		var input logoutRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			refreshToken = input.RefreshToken
		}
	}

	if refreshToken != "" {
		_ = handler.authService.Logout(request.Context(), refreshToken)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie
(or JSON body) and issuing a fresh token pair.

Response:
  - 200: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		refreshToken = cookie.Value
	} else {
		var input logoutRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.authService.RefreshSession(
		request.Context(),
		refreshToken,
		request.UserAgent(),
		getClientIP(request),
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    constants.AccessTokenTTL / time.Second,
	})
}

/*
Session probes for a valid staff session.

GET /api/v1/auth/session

Description: Confirms the bearer token still maps to an active account.
This is the endpoint behind the session reconciliation engine's initial
probe: a 401 here means "no session", never a connectivity problem.

Response:
  - 200: Current session identity
  - 401: ErrUnauthorized: Token valid but account gone or deactivated
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.ProfileByAuthID(request.Context(), claims.AuthID)
	if err != nil || !user.IsActive {
		respond.Error(writer, request, apperr.Unauthorized("Session is no longer valid"))
		return
	}

	respond.OK(writer, map[string]any{
		"auth_id":    user.AuthID,
		FieldEmail:   user.Email,
		"expires_at": claims.ExpiresAt.Time,
	})
}

/*
Me returns the full staff profile of the current operator.

GET /api/v1/auth/me

Response:
  - 200: User: Full staff profile
  - 401: ErrUnauthorized: No valid session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Profile(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Events streams auth lifecycle events as server-sent events.

GET /api/v1/auth/events

Description: Long-lived SSE connection; each event is one JSON line.
Workstation agents feed this stream into their session engine.
*/
func (handler *Handler) events(writer http.ResponseWriter, request *http.Request) {
	if handler.stream == nil {
		respond.Error(writer, request, apperr.Unavailable("Event stream is not configured", nil))
		return
	}
	handler.stream.Stream(writer, request)
}

// # Helpers

func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// getClientIP extracts the real client address in proxy environments.
func getClientIP(request *http.Request) string {
	ip := request.Header.Get("X-Real-IP")
	if ip == "" {
		ip = request.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = request.RemoteAddr
	}
	return ip
}
