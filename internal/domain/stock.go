package domain

import (
	"errors"
	"time"
)

type StockMovementType string

const (
	StockIn  StockMovementType = "in"
	StockOut StockMovementType = "out"
)

func (t StockMovementType) Valid() bool {
	return t == StockIn || t == StockOut
}

// StockMovement records a manual stock entry or exit for a product.
type StockMovement struct {
	V           int               `json:"v"`
	ID          string            `json:"id"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Type        StockMovementType `json:"type"`
	Quantity    int               `json:"quantity"`
	Reason      string            `json:"reason"`
	Note        string            `json:"note,omitempty"`
	StockAfter  int               `json:"stock_after"`
	UserID      string            `json:"user_id,omitempty"`
	CreatedAt   time.Time         `json:"date"`
}

func (m *StockMovement) Upgrade() error {
	if err := upgradeVersion(&m.V); err != nil {
		return err
	}
	if !m.Type.Valid() {
		return errors.New("stock movement with unknown type " + string(m.Type))
	}
	return nil
}
