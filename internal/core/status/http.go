package status

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/middleware"
	requestutil "github.com/parcelia/backoffice/internal/platform/request"
	"github.com/parcelia/backoffice/internal/platform/respond"
	"github.com/parcelia/backoffice/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listStatuses)

	// Catalog edits are admin only.
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createStatus)
		admin.Patch("/{id}", handler.updateStatus)
		admin.Delete("/{id}", handler.deleteStatus)
	})

	return router
}

func (handler *Handler) listStatuses(writer http.ResponseWriter, request *http.Request) {
	entityType := request.URL.Query().Get("type")
	if entityType == "" {
		entityType = constants.StatusTypeColis
	}

	statuses, err := handler.service.ListStatuses(request.Context(), entityType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, statuses)
}

func (handler *Handler) createStatus(writer http.ResponseWriter, request *http.Request) {
	var input Status

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateStatus(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	statusID, err := strconv.Atoi(requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Status
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateStatus(request.Context(), statusID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteStatus(writer http.ResponseWriter, request *http.Request) {
	statusID, err := strconv.Atoi(requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteStatus(request.Context(), statusID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
