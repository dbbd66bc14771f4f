package service

import (
	"context"
	"time"

	"pos-till/internal/domain"
	"pos-till/internal/repository"
)

// SaleLedger is the append-only record of confirmed sales and the read
// model for reports and cash reconciliation. Every read scans the full list.
type SaleLedger struct {
	sales repository.SaleRepository
}

func NewSaleLedger(sales repository.SaleRepository) *SaleLedger {
	return &SaleLedger{sales: sales}
}

func (l *SaleLedger) Append(ctx context.Context, sale *domain.SaleRecord) {
	l.sales.Append(ctx, sale)
}

// List returns every sale in insertion order.
func (l *SaleLedger) List(ctx context.Context) []domain.SaleRecord {
	return l.sales.List(ctx)
}

// Query returns the sales matching pred, in insertion order.
func (l *SaleLedger) Query(ctx context.Context, pred func(domain.SaleRecord) bool) []domain.SaleRecord {
	var out []domain.SaleRecord
	for _, sale := range l.sales.List(ctx) {
		if pred(sale) {
			out = append(out, sale)
		}
	}
	return out
}

// SaleFilter narrows a sales listing. Zero fields match everything.
type SaleFilter struct {
	From       time.Time
	To         time.Time
	UserID     string
	CustomerID string
	Method     domain.PaymentMethod
}

func (f SaleFilter) Match(sale domain.SaleRecord) bool {
	if !f.From.IsZero() && sale.ClosedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && sale.ClosedAt.After(f.To) {
		return false
	}
	if f.UserID != "" && sale.UserID != f.UserID {
		return false
	}
	if f.CustomerID != "" && sale.CustomerID != f.CustomerID {
		return false
	}
	if f.Method != "" && sale.Payment.Method != f.Method {
		return false
	}
	return true
}
