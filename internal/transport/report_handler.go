package transport

import (
	"net/http"

	"pos-till/internal/domain"
	"pos-till/internal/middleware"
	"pos-till/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler serves the sale history and the back-office reports
type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/sales", h.Sales)

		r.Route("/api/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleManager, h.logger))
			r.Get("/dashboard", h.Dashboard)
			r.Get("/employees", h.Employees)
		})
	})
}

// Sales lists confirmed sales, newest first. Cashiers only see their own.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := service.SaleFilter{
		From:       from,
		To:         to,
		UserID:     q.Get("user_id"),
		CustomerID: q.Get("customer_id"),
		Method:     domain.PaymentMethod(q.Get("method")),
	}
	if filter.Method != "" && !filter.Method.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "method must be cash, card or qr")
		return
	}
	if !op.Role.AtLeast(domain.RoleManager) {
		filter.UserID = op.ID
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Sales(r.Context(), filter))
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Dashboard(r.Context()))
}

func (h *ReportHandler) Employees(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	report := h.reports.Employees(r.Context(), from, to)
	if report == nil {
		report = []service.EmployeeReport{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, report)
}
