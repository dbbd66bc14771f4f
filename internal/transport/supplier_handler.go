package transport

import (
	"net/http"

	"pos-till/internal/domain"
	"pos-till/internal/middleware"
	"pos-till/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SupplierRequest carries a supplier. A negative balance is debt owed to
// the supplier, a positive one is credit in our favour.
type SupplierRequest struct {
	Name    string          `json:"name" validate:"required"`
	Company string          `json:"company" validate:"required"`
	TaxID   string          `json:"tax_id"`
	Email   string          `json:"email" validate:"omitempty,email"`
	Phone   string          `json:"phone"`
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

func (s SupplierRequest) input() service.SupplierInput {
	return service.SupplierInput{
		Name:    s.Name,
		Company: s.Company,
		TaxID:   s.TaxID,
		Email:   s.Email,
		Phone:   s.Phone,
		Address: s.Address,
		Balance: s.Balance,
	}
}

// SupplierHandler is the back-office supplier registry; manager or above
type SupplierHandler struct {
	suppliers service.SupplierService
	logger    *zap.Logger
}

func NewSupplierHandler(suppliers service.SupplierService, logger *zap.Logger) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers, logger: logger}
}

func (h *SupplierHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/suppliers", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole(domain.RoleManager, h.logger))

		r.Get("/", h.List)
		r.Get("/totals", h.Totals)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers := h.suppliers.List(r.Context())
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, suppliers)
}

func (h *SupplierHandler) Totals(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.suppliers.Totals(r.Context()))
}

func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.suppliers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}

func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	supplier, err := h.suppliers.Create(r.Context(), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, supplier)
}

func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	supplier, err := h.suppliers.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}

func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.suppliers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
