package service

import (
	"context"
	"testing"

	"pos-till/internal/apperror"
	"pos-till/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.Create(ctx, ProductInput{Price: dec("1")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.inventory.Create(ctx, ProductInput{Name: "X", Price: dec("-1")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	rate := dec("1.5")
	_, err = env.inventory.Create(ctx, ProductInput{Name: "X", Price: dec("1"), TaxRate: &rate})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	p, err := env.inventory.Create(ctx, ProductInput{Name: " Mate ", Price: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, "Mate", p.Name)
	assert.True(t, p.Active)
	assertDec(t, "0.21", p.TaxRate)
}

func TestInventoryBarcodeConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.Create(ctx, ProductInput{Name: "A", Barcode: "779123", Price: dec("1")})
	require.NoError(t, err)
	_, err = env.inventory.Create(ctx, ProductInput{Name: "B", Barcode: "779123", Price: dec("1")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	found, err := env.inventory.FindByBarcode(ctx, "779123")
	require.NoError(t, err)
	assert.Equal(t, "A", found.Name)
}

func TestInventoryUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Mate", "10", 3)

	active := false
	updated, err := env.inventory.Update(ctx, p.ID, ProductInput{Name: "Mate grande", Price: dec("12"), Stock: 3, Active: &active})
	require.NoError(t, err)
	assert.Equal(t, "Mate grande", updated.Name)
	assert.False(t, updated.Active)
	assertDec(t, "0.21", updated.TaxRate, "tax rate kept when not supplied")

	require.NoError(t, env.inventory.Delete(ctx, p.ID))
	_, err = env.inventory.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, env.inventory.Delete(ctx, p.ID), apperror.ErrNotFound)
}

func TestStockMovements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Yerba", "10", 5)

	in, err := env.inventory.RecordStockMovement(ctx, manager, p.ID, domain.StockIn, 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, 8, in.StockAfter)
	assert.Equal(t, "Manual entry", in.Reason)

	_, err = env.inventory.RecordStockMovement(ctx, manager, p.ID, domain.StockOut, 9, "Rotura", "")
	assert.ErrorIs(t, err, apperror.ErrValidation, "stock cannot go negative")

	out, err := env.inventory.RecordStockMovement(ctx, manager, p.ID, domain.StockOut, 8, "", "vencido")
	require.NoError(t, err)
	assert.Equal(t, 0, out.StockAfter)
	assert.Equal(t, "Manual exit", out.Reason)

	stored, err := env.inventory.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	all := env.inventory.StockMovements(ctx, StockMovementFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, domain.StockOut, all[0].Type, "newest first")

	assert.Len(t, env.inventory.StockMovements(ctx, StockMovementFilter{Type: domain.StockIn}), 1)
	assert.Len(t, env.inventory.StockMovements(ctx, StockMovementFilter{Search: "yer"}), 2)
	assert.Empty(t, env.inventory.StockMovements(ctx, StockMovementFilter{Search: "harina"}))

	_, err = env.inventory.RecordStockMovement(ctx, manager, p.ID, domain.StockIn, 0, "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLowStockAndValuation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.Create(ctx, ProductInput{Name: "A", Category: "Bebidas", Price: dec("10"), Cost: dec("4"), Stock: 2, MinStock: 2})
	require.NoError(t, err)
	_, err = env.inventory.Create(ctx, ProductInput{Name: "B", Price: dec("10"), Cost: dec("2.5"), Stock: 10, MinStock: 1})
	require.NoError(t, err)

	low := env.inventory.LowStock(ctx)
	require.Len(t, low, 1)
	assert.Equal(t, "A", low[0].Name)

	assertDec(t, "33", env.inventory.Valuation(ctx))

	cats := env.inventory.Categories(ctx)
	require.Len(t, cats, 2)
	assert.Equal(t, "Bebidas", cats[0].Name)
	assert.Equal(t, "Sin categoría", cats[1].Name)
	assert.Equal(t, 10, cats[1].Units)
}

func TestInventoryListSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "Alfajor", "10", 1)
	env.addProduct(t, "Mate", "10", 1)

	assert.Len(t, env.inventory.List(ctx, ""), 2)
	found := env.inventory.List(ctx, "ALF")
	require.Len(t, found, 1)
	assert.Equal(t, "Alfajor", found[0].Name)
}
