package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is a vendor. A negative balance is money owed to the supplier.
type Supplier struct {
	V         int             `json:"v"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Company   string          `json:"company"`
	TaxID     string          `json:"tax_id,omitempty"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *Supplier) Upgrade() error {
	if err := upgradeVersion(&s.V); err != nil {
		return err
	}
	if s.ID == "" {
		return errors.New("supplier without id")
	}
	return nil
}
