package repository

import (
	"context"
	"testing"
	"time"

	"pos-till/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashSessionLifecycleKeys(t *testing.T) {
	repo := NewCashSessionRepository(newTestStore())
	ctx := context.Background()

	assert.Nil(t, repo.Current(ctx, "u1"))

	session := &domain.CashSession{
		ID:            "s1",
		UserID:        "u1",
		OpenedAt:      time.Now(),
		OpeningAmount: decimal.NewFromInt(1000),
		Status:        domain.SessionOpen,
	}
	repo.SaveCurrent(ctx, session)

	current := repo.Current(ctx, "u1")
	require.NotNil(t, current)
	assert.Equal(t, "s1", current.ID)
	assert.Nil(t, repo.Current(ctx, "u2"))

	repo.AppendMovement(ctx, &domain.CashMovement{ID: "m1", SessionID: "s1", Type: domain.MovementIncome, Amount: decimal.NewFromInt(5)})
	repo.AppendMovement(ctx, &domain.CashMovement{ID: "m2", SessionID: "other", Type: domain.MovementExpense, Amount: decimal.NewFromInt(5)})
	assert.Len(t, repo.Movements(ctx, "s1"), 1)
	assert.Len(t, repo.AllMovements(ctx), 2)

	session.Status = domain.SessionClosed
	repo.Archive(ctx, session)
	repo.ClearCurrent(ctx, "u1")

	assert.Nil(t, repo.Current(ctx, "u1"))
	history := repo.History(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SessionClosed, history[0].Status)
}

func TestSuspendedSaleRepository(t *testing.T) {
	repo := NewSuspendedSaleRepository(newTestStore())
	ctx := context.Background()

	assert.Nil(t, repo.Get(ctx, "u1"))

	repo.Save(ctx, "u1", &domain.SuspendedSale{
		Cart:     []domain.LineItem{{ProductID: "p1", Name: "Mate", Price: decimal.NewFromInt(150), Quantity: 2}},
		Discount: decimal.NewFromInt(10),
	})
	got := repo.Get(ctx, "u1")
	require.NotNil(t, got)
	assert.True(t, got.Discount.Equal(decimal.NewFromInt(10)))

	repo.Remove(ctx, "u1")
	assert.Nil(t, repo.Get(ctx, "u1"))
}
