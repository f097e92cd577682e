package bon

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

	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listBons)
	router.Get("/{id}", handler.getBon)
	router.Post("/{id}/status", handler.setStatus)

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleManager))

		staff.Post("/", handler.createBon)
		staff.Patch("/{id}", handler.updateBon)
		staff.Post("/{id}/items", handler.addItems)
		staff.Delete("/{id}/items/{colisID}", handler.removeItem)
		staff.Delete("/{id}", handler.deleteBon)
	})

	return router
}

func (handler *Handler) listBons(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Status:    request.URL.Query().Get("status"),
		CourierID: request.URL.Query().Get("courier_id"),
	}

	vouchers, total, err := handler.service.ListBons(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, vouchers, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getBon(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")

	b, err := handler.service.GetBon(request.Context(), bonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, b)
}

type createBonRequest struct {
	Bon
	ColisIDs []string `json:"colis_ids"`
}

func (handler *Handler) createBon(writer http.ResponseWriter, request *http.Request) {
	var input createBonRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateBon(request.Context(), &input.Bon, input.ColisIDs); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input.Bon)
}

func (handler *Handler) updateBon(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")

	var input Bon
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateBon(request.Context(), bonID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")

	var input setStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetStatus(request.Context(), bonID, input.Status); err != nil {
		respond.Error(writer, request, err)
		return
	}

	b, err := handler.service.GetBon(request.Context(), bonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, b)
}

type addItemsRequest struct {
	ColisIDs []string `json:"colis_ids"`
}

func (handler *Handler) addItems(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")

	var input addItemsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddItems(request.Context(), bonID, input.ColisIDs); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")
	colisID := requestutil.Param(request, "colisID")

	if err := handler.service.RemoveItem(request.Context(), bonID, colisID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) deleteBon(writer http.ResponseWriter, request *http.Request) {
	bonID := requestutil.Param(request, "id")
	force := request.URL.Query().Get("force") == "true"

	if err := handler.service.DeleteBon(request.Context(), bonID, force); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
