package transport

import (
	"net/http"

	"pos-till/internal/domain"
	"pos-till/internal/middleware"
	"pos-till/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CustomerRequest struct {
	DocType   string `json:"doc_type"`
	DocNumber string `json:"doc_number"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (c CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		DocType:   c.DocType,
		DocNumber: c.DocNumber,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
	}
}

type CustomerHandler struct {
	customers service.CustomerService
	logger    *zap.Logger
}

func NewCustomerHandler(customers service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/stats", h.Stats)
		r.Put("/{id}", h.Update)
		r.With(middleware.RequireRole(domain.RoleManager, h.logger)).Delete("/{id}", h.Delete)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers := h.customers.List(r.Context(), r.URL.Query().Get("q"))
	if customers == nil {
		customers = []domain.Customer{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.customers.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	customer, err := h.customers.Create(r.Context(), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	customer, err := h.customers.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
