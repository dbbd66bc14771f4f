package transport

import (
	"net/http"

	"pos-till/internal/domain"
	"pos-till/internal/middleware"
	"pos-till/internal/repository"
	"pos-till/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the create/update payload for a catalog entry
type ProductRequest struct {
	SKU      string           `json:"sku" validate:"required"`
	Barcode  string           `json:"barcode"`
	Name     string           `json:"name" validate:"required"`
	Category string           `json:"category"`
	Price    decimal.Decimal  `json:"price" validate:"gte=0"`
	Cost     decimal.Decimal  `json:"cost" validate:"gte=0"`
	TaxRate  *decimal.Decimal `json:"tax_rate"`
	Stock    int              `json:"stock" validate:"gte=0"`
	MinStock int              `json:"min_stock" validate:"gte=0"`
	Active   *bool            `json:"active"`
}

func (p ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		SKU:      p.SKU,
		Barcode:  p.Barcode,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Cost:     p.Cost,
		TaxRate:  p.TaxRate,
		Stock:    p.Stock,
		MinStock: p.MinStock,
		Active:   p.Active,
	}
}

type StockMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=in out"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Reason    string `json:"reason"`
	Note      string `json:"note"`
}

// ProductHandler handles the catalog and stock adjustments
type ProductHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

func NewProductHandler(inventory service.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{inventory: inventory, logger: logger}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	manager := middleware.RequireRole(domain.RoleManager, h.logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/barcode/{barcode}", h.GetByBarcode)
		r.Get("/low-stock", h.LowStock)
		r.Get("/categories", h.Categories)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(manager)
			r.Get("/valuation", h.Valuation)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	r.Route("/api/stock-movements", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.StockMovements)
		r.With(manager).Post("/", h.RecordStockMovement)
	})
}

// List returns the catalog; ?q= searches name, sku and barcode
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, nonNil(h.inventory.List(r.Context(), r.URL.Query().Get("q"))))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.inventory.FindByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	product, err := h.inventory.Create(r.Context(), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	product, err := h.inventory.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, nonNil(h.inventory.LowStock(r.Context())))
}

func (h *ProductHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"valuation": h.inventory.Valuation(r.Context()),
	})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.inventory.Categories(r.Context())
	if categories == nil {
		categories = []repository.CategoryStock{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// StockMovements lists adjustments newest first; ?type= and ?q= filter
func (h *ProductHandler) StockMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.StockMovementFilter{
		Type:   domain.StockMovementType(q.Get("type")),
		Search: q.Get("q"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "type must be in or out")
		return
	}
	movements := h.inventory.StockMovements(r.Context(), filter)
	if movements == nil {
		movements = []domain.StockMovement{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, movements)
}

func (h *ProductHandler) RecordStockMovement(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req StockMovementRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	movement, err := h.inventory.RecordStockMovement(r.Context(), op, req.ProductID,
		domain.StockMovementType(req.Type), req.Quantity, req.Reason, req.Note)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, movement)
}

func nonNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
