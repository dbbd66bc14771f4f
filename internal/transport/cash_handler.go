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

type OpenSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"gte=0"`
}

type CloseSessionRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" validate:"gte=0"`
}

type MovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"required"`
}

// CashHandler exposes the operator's till session
type CashHandler struct {
	cash   service.CashSessionService
	logger *zap.Logger
}

func NewCashHandler(cash service.CashSessionService, logger *zap.Logger) *CashHandler {
	return &CashHandler{cash: cash, logger: logger}
}

func (h *CashHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cash", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/session", h.Current)
		r.Post("/session/open", h.Open)
		r.Post("/session/close", h.Close)
		r.Get("/session/expected", h.Expected)
		r.Get("/session/summary", h.Summary)
		r.Get("/movements", h.Movements)
		r.Post("/movements", h.RecordMovement)

		r.With(middleware.RequireRole(domain.RoleManager, h.logger)).Get("/history", h.History)
	})
}

// Current returns the open session, or null when the till is closed
func (h *CashHandler) Current(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session": h.cash.Current(r.Context(), op.ID),
	})
}

func (h *CashHandler) Open(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req OpenSessionRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	session, err := h.cash.Open(r.Context(), op, req.OpeningAmount)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, session)
}

func (h *CashHandler) Close(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req CloseSessionRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	session, err := h.cash.Close(r.Context(), op, req.ClosingAmount)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, session)
}

func (h *CashHandler) Expected(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	expected, err := h.cash.ExpectedAmount(r.Context(), op.ID)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]decimal.Decimal{"expected_amount": expected})
}

func (h *CashHandler) Summary(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	summary, err := h.cash.Summary(r.Context(), op.ID)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CashHandler) Movements(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	movements, err := h.cash.Movements(r.Context(), op.ID)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	if movements == nil {
		movements = []domain.CashMovement{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, movements)
}

func (h *CashHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	var req MovementRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	movement, err := h.cash.RecordMovement(r.Context(), op, domain.MovementType(req.Type), req.Amount, req.Description)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, movement)
}

// History lists closed sessions; manager or above
func (h *CashHandler) History(w http.ResponseWriter, r *http.Request) {
	history := h.cash.History(r.Context())
	if history == nil {
		history = []domain.CashSession{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, history)
}
