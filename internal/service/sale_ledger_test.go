package service

import (
	"context"
	"testing"
	"time"

	"pos-till/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Feature: pos-till, Property 27: Confirmed sales land in the ledger in order and balanced
func TestProperty_LedgerKeepsConfirmOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("n confirms give n balanced records in confirm order", prop.ForAll(
		func(qtys []int) bool {
			ctx := context.Background()
			env := newTestEnv(t)
			product := env.addProduct(t, "Mate", "12.99", 1000)
			if _, err := env.cash.Open(ctx, cashier, dec("0")); err != nil {
				return false
			}

			var numbers []string
			for _, q := range qtys {
				if _, err := env.till.AddProduct(ctx, cashier, product.ID, q); err != nil {
					return false
				}
				sale, err := env.till.Confirm(ctx, cashier, Payment{Method: domain.PaymentCard})
				if err != nil {
					return false
				}
				numbers = append(numbers, sale.Number)
				env.clock.Advance(time.Second)
			}

			records := env.ledger.List(ctx)
			if len(records) != len(qtys) {
				return false
			}
			for i, r := range records {
				if r.Number != numbers[i] || !r.Balanced() || r.Items[0].Quantity != qtys[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.IntRange(1, 9)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSaleFilterMatch(t *testing.T) {
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	sale := domain.SaleRecord{
		UserID:     "u-1",
		CustomerID: "c-1",
		ClosedAt:   at,
		Payment:    domain.Payment{Method: domain.PaymentQR},
	}

	assert.True(t, SaleFilter{}.Match(sale))
	assert.True(t, SaleFilter{From: at, To: at}.Match(sale), "bounds are inclusive")
	assert.False(t, SaleFilter{From: at.Add(time.Second)}.Match(sale))
	assert.False(t, SaleFilter{To: at.Add(-time.Second)}.Match(sale))
	assert.False(t, SaleFilter{UserID: "u-2"}.Match(sale))
	assert.False(t, SaleFilter{CustomerID: "c-2"}.Match(sale))
	assert.False(t, SaleFilter{Method: domain.PaymentCash}.Match(sale))
	assert.True(t, SaleFilter{Method: domain.PaymentQR, UserID: "u-1"}.Match(sale))
}

func TestLedgerQueryKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for _, id := range []string{"a", "b", "c"} {
		env.ledger.Append(ctx, &domain.SaleRecord{V: domain.SchemaVersion, ID: id, UserID: "u-" + id})
	}

	got := env.ledger.Query(ctx, func(s domain.SaleRecord) bool { return s.ID != "b" })
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
