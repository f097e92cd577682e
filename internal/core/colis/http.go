package colis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parcelia/backoffice/internal/platform/middleware"
	requestutil "github.com/parcelia/backoffice/internal/platform/request"
	"github.com/parcelia/backoffice/internal/platform/respond"
	"github.com/parcelia/backoffice/internal/platform/sec"
	"github.com/parcelia/backoffice/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Every parcel route requires an authenticated operator.
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listColis)
	router.Get("/{id}", handler.getColis)
	router.Get("/{id}/history", handler.getHistory)
	router.Post("/{id}/status", handler.updateStatus)

	// Managers and above
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleManager))

		staff.Post("/", handler.createColis)
		staff.Patch("/{id}", handler.updateColis)
		staff.Delete("/{id}", handler.deleteColis)
	})

	return router
}

func (handler *Handler) listColis(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:     request.URL.Query().Get("q"),
		Status:    request.URL.Query().Get("status"),
		ClientID:  request.URL.Query().Get("client_id"),
		CourierID: request.URL.Query().Get("courier_id"),
	}

	parcels, total, err := handler.service.ListColis(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, parcels, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getColis(writer http.ResponseWriter, request *http.Request) {
	colisID := requestutil.Param(request, "id")

	tracker := handler.service.Tracker()
	if err := tracker.Load(request.Context(), colisID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view := tracker.View()
	respond.OK(writer, map[string]any{
		"colis":   view.Colis,
		"history": view.History,
	})
}

func (handler *Handler) getHistory(writer http.ResponseWriter, request *http.Request) {
	colisID := requestutil.Param(request, "id")

	entries, err := handler.service.GetHistory(request.Context(), colisID, 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateStatus handles POST /api/v1/colis/{id}/status.
//
// Attribution uses the auth-layer subject from the bearer token, which the
// tracker cross-references to the durable staff ID before writing the
// audit entry.
func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	colisID := requestutil.Param(request, "id")

	tracker := handler.service.Tracker()
	if err := tracker.Load(request.Context(), colisID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := tracker.UpdateStatus(request.Context(), input.Status, claims.AuthID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view := tracker.View()
	respond.OK(writer, map[string]any{
		"colis":   view.Colis,
		"history": view.History,
	})
}

func (handler *Handler) createColis(writer http.ResponseWriter, request *http.Request) {
	var input Colis

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateColis(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateColis(writer http.ResponseWriter, request *http.Request) {
	colisID := requestutil.Param(request, "id")

	var input Colis
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateColis(request.Context(), colisID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteColis(writer http.ResponseWriter, request *http.Request) {
	colisID := requestutil.Param(request, "id")

	tracker := handler.service.Tracker()
	if err := tracker.Load(request.Context(), colisID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := tracker.Delete(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
