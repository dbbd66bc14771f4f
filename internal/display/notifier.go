package display

import (
	"context"

	"pos-till/internal/domain"

	"github.com/shopspring/decimal"
)

// Notifier pushes messages to the customer display of one till. Publish
// must not block and must not fail the caller; undelivered messages are dropped.
type Notifier interface {
	Publish(ctx context.Context, till string, msg domain.DisplayMessage)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Publish(context.Context, string, domain.DisplayMessage) {}

// UpdateMessage is sent after an item is added to the cart.
func UpdateMessage(last domain.LineItem, total decimal.Decimal) domain.DisplayMessage {
	return domain.DisplayMessage{
		Type:    domain.DisplayUpdate,
		Payload: &domain.DisplayPayload{LastProduct: &last, Total: total},
	}
}

// ThanksMessage is sent once a sale is confirmed.
func ThanksMessage() domain.DisplayMessage {
	return domain.DisplayMessage{Type: domain.DisplayThanks}
}
