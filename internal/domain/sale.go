package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

const SaleCompleted = "completed"

// SaleItem is the frozen form of a cart line inside a sale record.
type SaleItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Total       decimal.Decimal `json:"total"`
}

type Payment struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// SaleRecord is an immutable ledger entry for a confirmed sale.
// Total always equals Subtotal + TaxTotal - DiscountTotal.
type SaleRecord struct {
	V             int             `json:"v"`
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Total         decimal.Decimal `json:"total"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
	Change        decimal.Decimal `json:"change"`
	Payment       Payment         `json:"payment"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	CashSessionID string          `json:"cash_session_id,omitempty"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// Upgrade checks the totals invariant. Older records that only stored the
// payment amount get their paid total back from it.
func (s *SaleRecord) Upgrade() error {
	if s.V == 0 {
		if s.PaidTotal.IsZero() {
			s.PaidTotal = s.Payment.Amount
		}
		if s.Status == "" {
			s.Status = SaleCompleted
		}
	}
	if err := upgradeVersion(&s.V); err != nil {
		return err
	}
	if s.ID == "" {
		return errors.New("sale record without id")
	}
	if !s.Balanced() {
		return fmt.Errorf("sale %s: total %s does not match subtotal %s + tax %s - discount %s",
			s.ID, s.Total, s.Subtotal, s.TaxTotal, s.DiscountTotal)
	}
	return nil
}

// Balanced reports whether total == subtotal + tax - discount.
func (s SaleRecord) Balanced() bool {
	return s.Subtotal.Add(s.TaxTotal).Sub(s.DiscountTotal).Equal(s.Total)
}

// IsCash reports whether the sale was paid in cash.
func (s SaleRecord) IsCash() bool {
	return s.Payment.Method == PaymentCash
}

// Units is the number of items sold across all lines.
func (s SaleRecord) Units() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}
