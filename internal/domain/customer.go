package domain

import (
	"errors"
	"time"
)

// Customer is a buyer record. Spend statistics are derived from the sale ledger.
type Customer struct {
	V         int       `json:"v"`
	ID        string    `json:"id"`
	DocType   string    `json:"doc_type,omitempty"`
	DocNumber string    `json:"doc_number,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) Upgrade() error {
	if err := upgradeVersion(&c.V); err != nil {
		return err
	}
	if c.ID == "" {
		return errors.New("customer without id")
	}
	return nil
}

// Ref returns the reference stored on carts and sales.
func (c Customer) Ref() *CustomerRef {
	return &CustomerRef{ID: c.ID, Name: c.Name, DocNumber: c.DocNumber}
}
