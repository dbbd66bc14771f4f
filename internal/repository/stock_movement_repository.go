package repository

import (
	"context"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

type StockMovementRepository interface {
	Append(ctx context.Context, movement *domain.StockMovement)
	List(ctx context.Context) []domain.StockMovement
}

type stockMovementRepository struct {
	store *kvstore.Store
}

func NewStockMovementRepository(store *kvstore.Store) StockMovementRepository {
	return &stockMovementRepository{store: store}
}

func (r *stockMovementRepository) Append(ctx context.Context, movement *domain.StockMovement) {
	kvstore.Append(ctx, r.store, keyStockMovements, *movement)
}

func (r *stockMovementRepository) List(ctx context.Context) []domain.StockMovement {
	return kvstore.LoadList[domain.StockMovement](ctx, r.store, keyStockMovements)
}
