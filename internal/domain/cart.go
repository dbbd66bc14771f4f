package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product line of a cart. Name, price and tax rate are
// snapshotted when the product is first added.
type LineItem struct {
	ProductID string          `json:"id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Quantity  int             `json:"quantity"`
}

// NewLineItem snapshots a product into a cart line.
func NewLineItem(p Product, quantity int) LineItem {
	return LineItem{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		TaxRate:   p.TaxRate,
		Quantity:  quantity,
	}
}

// Amount is price times quantity, before tax.
func (l LineItem) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Rate returns the line's tax rate, or def when none was captured.
func (l LineItem) Rate(def decimal.Decimal) decimal.Decimal {
	if l.TaxRate.IsZero() {
		return def
	}
	return l.TaxRate
}

// CustomerRef is the customer attached to a cart or sale.
type CustomerRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DocNumber string `json:"doc_number,omitempty"`
}

// SuspendedSale is the persisted form of a suspended cart.
type SuspendedSale struct {
	V         int             `json:"v"`
	Cart      []LineItem      `json:"cart"`
	Customer  *CustomerRef    `json:"customer"`
	Discount  decimal.Decimal `json:"discount"`
	Timestamp time.Time       `json:"timestamp"`
}

func (s *SuspendedSale) Upgrade() error {
	if err := upgradeVersion(&s.V); err != nil {
		return err
	}
	for _, item := range s.Cart {
		if item.ProductID == "" {
			return fmt.Errorf("suspended line without product id")
		}
		if item.Quantity < 1 {
			return fmt.Errorf("suspended line %s has quantity %d", item.ProductID, item.Quantity)
		}
	}
	return nil
}
