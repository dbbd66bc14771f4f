package domain

import "github.com/shopspring/decimal"

type DisplayMessageType string

const (
	DisplayUpdate DisplayMessageType = "UPDATE_DISPLAY"
	DisplayThanks DisplayMessageType = "SHOW_THANKS"
)

// DisplayMessage is pushed to the customer-facing display.
type DisplayMessage struct {
	Type    DisplayMessageType `json:"type"`
	Payload *DisplayPayload    `json:"payload,omitempty"`
}

type DisplayPayload struct {
	LastProduct *LineItem       `json:"lastProduct,omitempty"`
	Total       decimal.Decimal `json:"total"`
}
