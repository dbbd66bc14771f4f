package repository

import (
	"context"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

// SaleRepository is the append-only sales list.
type SaleRepository interface {
	Append(ctx context.Context, sale *domain.SaleRecord)
	List(ctx context.Context) []domain.SaleRecord
}

type saleRepository struct {
	store *kvstore.Store
}

func NewSaleRepository(store *kvstore.Store) SaleRepository {
	return &saleRepository{store: store}
}

func (r *saleRepository) Append(ctx context.Context, sale *domain.SaleRecord) {
	kvstore.Append(ctx, r.store, keySales, *sale)
}

func (r *saleRepository) List(ctx context.Context) []domain.SaleRecord {
	return kvstore.LoadList[domain.SaleRecord](ctx, r.store, keySales)
}
