// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parcelia/backoffice/internal/platform/middleware"
	requestutil "github.com/parcelia/backoffice/internal/platform/request"
	"github.com/parcelia/backoffice/internal/platform/respond"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/pkg/pagination"
)

// AccountHandler exposes staff-account administration under /users.
// Separate from [Handler] so the credential endpoints and the management
// endpoints can be mounted and gated independently.
type AccountHandler struct {
	authService *Service
}

// NewAccountHandler creates the staff administration handler.
func NewAccountHandler(service *Service) *AccountHandler {
	return &AccountHandler{authService: service}
}

// Routes mounts the staff administration routes.
func (handler *AccountHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	// Listing is open to all staff: assignment pickers need the courier
	// roster.
	router.Get("/", handler.listUsers)
	router.Get("/{id}", handler.getUser)
	router.Post("/me/password", handler.changeMyPassword)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Patch("/{id}", handler.updateUser)
		admin.Delete("/{id}", handler.removeUser)
	})

	return router
}

func (handler *AccountHandler) listUsers(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := UserFilter{
		Query: request.URL.Query().Get("q"),
		Role:  request.URL.Query().Get("role"),
	}

	users, total, err := handler.authService.ListUsers(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *AccountHandler) getUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	user, err := handler.authService.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *AccountHandler) updateUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	var input UpdateUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.UpdateUser(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (handler *AccountHandler) changeMyPassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), userID, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *AccountHandler) removeUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	if err := handler.authService.RemoveUser(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
