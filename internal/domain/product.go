package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry that can be sold at the till
type Product struct {
	V         int             `json:"v"`
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Upgrade fills the tax rate and active flag older records left out.
func (p *Product) Upgrade() error {
	if p.V == 0 {
		p.Active = true
		if p.TaxRate.IsZero() {
			p.TaxRate = DefaultTaxRate
		}
	}
	if err := upgradeVersion(&p.V); err != nil {
		return err
	}
	if p.ID == "" {
		return errors.New("product without id")
	}
	return nil
}

// LowStock reports whether the stock level is at or below its minimum.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Valuation is cost times units on hand.
func (p Product) Valuation() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Stock)))
}
