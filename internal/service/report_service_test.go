package service

import (
	"context"
	"testing"
	"time"

	"pos-till/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellAt(t *testing.T, env *testEnv, op Operator, product domain.Product, qty int) *domain.SaleRecord {
	t.Helper()
	ctx := context.Background()
	_, err := env.till.AddProduct(ctx, op, product.ID, qty)
	require.NoError(t, err)
	sale, err := env.till.Confirm(ctx, op, Payment{Method: domain.PaymentCard})
	require.NoError(t, err)
	return sale
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reports := NewReportService(env.ledger, env.sessions, env.inventory, env.clock)

	mate := env.addProduct(t, "Mate", "100", 10)
	yerba := env.addProduct(t, "Yerba", "10", 10)

	_, err := env.cash.Open(ctx, cashier, dec("0"))
	require.NoError(t, err)
	sellAt(t, env, cashier, mate, 1)
	env.clock.Advance(24 * time.Hour)
	sellAt(t, env, cashier, yerba, 4)
	sellAt(t, env, cashier, mate, 2)

	_, err = env.cash.RecordMovement(ctx, cashier, domain.MovementIncome, dec("70"), "Cambio")
	require.NoError(t, err)
	_, err = env.cash.RecordMovement(ctx, cashier, domain.MovementExpense, dec("20"), "Limpieza")
	require.NoError(t, err)

	d := reports.Dashboard(ctx)
	require.Len(t, d.Last7Days, 7)
	assert.Equal(t, "2024-05-11", d.Last7Days[6].Date)
	assert.Equal(t, "2024-05-05", d.Last7Days[0].Date)
	assertDec(t, "121", d.Last7Days[5].Total)
	assertDec(t, "290.4", d.Last7Days[6].Total)
	assert.Equal(t, 2, d.Last7Days[6].Count)

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, ProductRank{Name: "Yerba", Quantity: 4}, d.TopProducts[0])
	assert.Equal(t, ProductRank{Name: "Mate", Quantity: 3}, d.TopProducts[1])

	assertDec(t, "70", d.TotalIncome)
	assertDec(t, "20", d.TotalExpense)
	assertDec(t, "50", d.Net)
	assertDec(t, "550", d.Valuation)
}

func TestEmployeeReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reports := NewReportService(env.ledger, env.sessions, env.inventory, env.clock)
	start := env.clock.Now()

	for _, closing := range []string{"98", "104"} {
		_, err := env.cash.Open(ctx, cashier, dec("100"))
		require.NoError(t, err)
		env.clock.Advance(2 * time.Hour)
		_, err = env.cash.Close(ctx, cashier, dec(closing))
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
	}
	_, err := env.cash.Open(ctx, manager, dec("10"))
	require.NoError(t, err)
	env.clock.Advance(4 * time.Hour)
	_, err = env.cash.Close(ctx, manager, dec("10"))
	require.NoError(t, err)

	all := reports.Employees(ctx, time.Time{}, time.Time{})
	require.Len(t, all, 2)

	c := all[0]
	assert.Equal(t, cashier.ID, c.UserID)
	assert.Equal(t, 2, c.Turns)
	assert.Equal(t, 4*time.Hour, c.TotalDuration)
	assert.Equal(t, 2*time.Hour, c.AvgDuration)
	assertDec(t, "200", c.TotalCashOpen)
	assertDec(t, "202", c.TotalCashClose)
	assertDec(t, "2", c.TotalDifference)
	assertDec(t, "1", c.AvgDifference)
	assertDec(t, "402", c.TotalHandled)

	later := reports.Employees(ctx, start.Add(time.Hour), time.Time{})
	require.Len(t, later, 2)
	assert.Equal(t, 1, later[0].Turns)
}

func TestSalesQueryNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reports := NewReportService(env.ledger, env.sessions, env.inventory, env.clock)
	mate := env.addProduct(t, "Mate", "100", 10)

	assert.NotNil(t, reports.Sales(ctx, SaleFilter{}))

	_, err := env.cash.Open(ctx, cashier, dec("0"))
	require.NoError(t, err)
	_, err = env.cash.Open(ctx, manager, dec("0"))
	require.NoError(t, err)

	first := sellAt(t, env, cashier, mate, 1)
	env.clock.Advance(time.Minute)
	second := sellAt(t, env, manager, mate, 1)

	all := reports.Sales(ctx, SaleFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	mine := reports.Sales(ctx, SaleFilter{UserID: cashier.ID})
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	recent := reports.Sales(ctx, SaleFilter{From: second.ClosedAt})
	require.Len(t, recent, 1)
	assert.Equal(t, second.ID, recent[0].ID)
}
