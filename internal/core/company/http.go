package company

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

	router.Get("/", handler.listCompanies)
	router.Get("/{id}", handler.getCompany)

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleManager))

		staff.Post("/", handler.createCompany)
		staff.Patch("/{id}", handler.updateCompany)
		staff.Delete("/{id}", handler.deleteCompany)
	})

	return router
}

func (handler *Handler) listCompanies(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
		City:  request.URL.Query().Get("city"),
	}

	companies, total, err := handler.service.ListCompanies(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, companies, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getCompany(writer http.ResponseWriter, request *http.Request) {
	companyID := requestutil.Param(request, "id")

	c, err := handler.service.GetCompany(request.Context(), companyID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, c)
}

func (handler *Handler) createCompany(writer http.ResponseWriter, request *http.Request) {
	var input Company
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateCompany(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateCompany(writer http.ResponseWriter, request *http.Request) {
	companyID := requestutil.Param(request, "id")

	var input Company
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateCompany(request.Context(), companyID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteCompany(writer http.ResponseWriter, request *http.Request) {
	companyID := requestutil.Param(request, "id")

	if err := handler.service.DeleteCompany(request.Context(), companyID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
