package client

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

	router.Get("/", handler.listClients)
	router.Get("/{id}", handler.getClient)

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleManager))

		staff.Post("/", handler.createClient)
		staff.Patch("/{id}", handler.updateClient)
		staff.Delete("/{id}", handler.deleteClient)
	})

	return router
}

func (handler *Handler) listClients(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
		City:  request.URL.Query().Get("city"),
	}

	clients, total, err := handler.service.ListClients(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, clients, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getClient(writer http.ResponseWriter, request *http.Request) {
	clientID := requestutil.Param(request, "id")

	c, err := handler.service.GetClient(request.Context(), clientID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, c)
}

func (handler *Handler) createClient(writer http.ResponseWriter, request *http.Request) {
	var input Client
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateClient(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateClient(writer http.ResponseWriter, request *http.Request) {
	clientID := requestutil.Param(request, "id")

	var input Client
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateClient(request.Context(), clientID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteClient(writer http.ResponseWriter, request *http.Request) {
	clientID := requestutil.Param(request, "id")

	if err := handler.service.DeleteClient(request.Context(), clientID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
