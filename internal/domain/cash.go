package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementIncome || t == MovementExpense
}

// CashSession is one till shift for one user, from open to close.
// The closing fields are only set once the session is closed.
type CashSession struct {
	V              int              `json:"v"`
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	UserName       string           `json:"user_name,omitempty"`
	OpenedAt       time.Time        `json:"opened_at"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	Status         SessionStatus    `json:"status"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
}

func (s *CashSession) Upgrade() error {
	if err := upgradeVersion(&s.V); err != nil {
		return err
	}
	if s.ID == "" || s.UserID == "" {
		return errors.New("cash session without id or user")
	}
	if s.Status != SessionOpen && s.Status != SessionClosed {
		return errors.New("cash session with unknown status " + string(s.Status))
	}
	return nil
}

// Duration is the time the session stayed open; zero while still open.
func (s CashSession) Duration() time.Duration {
	if s.ClosedAt == nil {
		return 0
	}
	return s.ClosedAt.Sub(s.OpenedAt)
}

// CashMovement is a manual cash income or expense. Never modified once written.
type CashMovement struct {
	V           int             `json:"v"`
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user,omitempty"`
}

func (m *CashMovement) Upgrade() error {
	if err := upgradeVersion(&m.V); err != nil {
		return err
	}
	if !m.Type.Valid() {
		return errors.New("cash movement with unknown type " + string(m.Type))
	}
	if !m.Amount.IsPositive() {
		return errors.New("cash movement with non-positive amount")
	}
	return nil
}

// Signed returns the amount as it affects the drawer.
func (m CashMovement) Signed() decimal.Decimal {
	if m.Type == MovementExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}
