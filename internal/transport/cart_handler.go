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

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type AddBarcodeRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

type SetDiscountRequest struct {
	Discount decimal.Decimal `json:"discount" validate:"gte=0,lte=100"`
}

type ConfirmRequest struct {
	Method   string          `json:"method" validate:"required,oneof=cash card qr"`
	Tendered decimal.Decimal `json:"tendered" validate:"gte=0"`
}

// CartHandler drives the operator's cart through checkout
type CartHandler struct {
	till   service.TillService
	logger *zap.Logger
}

func NewCartHandler(till service.TillService, logger *zap.Logger) *CartHandler {
	return &CartHandler{till: till, logger: logger}
}

func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Post("/barcode", h.AddBarcode)
		r.Put("/items/{productID}", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Put("/customer", h.SetCustomer)
		r.Put("/discount", h.SetDiscount)
		r.Post("/suspend", h.Suspend)
		r.Post("/resume", h.Resume)
		r.Post("/clear", h.Clear)
		r.Post("/confirm", h.Confirm)
	})
}

// respond writes the cart view or maps the service error.
func (h *CartHandler) respond(w http.ResponseWriter, view service.CartView, err error) {
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.till.Cart(r.Context(), op)
	h.respond(w, view, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req AddItemRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	view, err := h.till.AddProduct(r.Context(), op, req.ProductID, quantityOrOne(req.Quantity))
	h.respond(w, view, err)
}

func (h *CartHandler) AddBarcode(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req AddBarcodeRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	view, err := h.till.AddBarcode(r.Context(), op, req.Barcode, quantityOrOne(req.Quantity))
	h.respond(w, view, err)
}

// UpdateQuantity sets a line's quantity; zero or less removes it
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	view, err := h.till.UpdateQuantity(r.Context(), op, chi.URLParam(r, "productID"), req.Quantity)
	h.respond(w, view, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.till.RemoveItem(r.Context(), op, chi.URLParam(r, "productID"))
	h.respond(w, view, err)
}

// SetCustomer attaches a customer; an empty customer_id detaches it
func (h *CartHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req SetCustomerRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	view, err := h.till.SetCustomer(r.Context(), op, req.CustomerID)
	h.respond(w, view, err)
}

func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req SetDiscountRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	view, err := h.till.SetDiscount(r.Context(), op, req.Discount)
	h.respond(w, view, err)
}

func (h *CartHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.till.Suspend(r.Context(), op)
	h.respond(w, view, err)
}

func (h *CartHandler) Resume(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.till.Resume(r.Context(), op)
	h.respond(w, view, err)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.till.Clear(r.Context(), op)
	h.respond(w, view, err)
}

// Confirm checks the cart out and returns the sale record
func (h *CartHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req ConfirmRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	sale, err := h.till.Confirm(r.Context(), op, service.Payment{
		Method:   domain.PaymentMethod(req.Method),
		Tendered: req.Tendered,
	})
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

func quantityOrOne(q int) int {
	if q == 0 {
		return 1
	}
	return q
}
