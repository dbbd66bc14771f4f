package repository

import (
	"context"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

// SuspendedSaleRepository holds at most one suspended cart per user.
type SuspendedSaleRepository interface {
	Get(ctx context.Context, userID string) *domain.SuspendedSale
	Save(ctx context.Context, userID string, sale *domain.SuspendedSale)
	Remove(ctx context.Context, userID string)
}

type suspendedSaleRepository struct {
	store *kvstore.Store
}

func NewSuspendedSaleRepository(store *kvstore.Store) SuspendedSaleRepository {
	return &suspendedSaleRepository{store: store}
}

// Get returns nil when nothing usable is stored.
func (r *suspendedSaleRepository) Get(ctx context.Context, userID string) *domain.SuspendedSale {
	sale := kvstore.Load(ctx, r.store, keySuspendedSalePrefix+userID, domain.SuspendedSale{})
	if len(sale.Cart) == 0 {
		return nil
	}
	return &sale
}

func (r *suspendedSaleRepository) Save(ctx context.Context, userID string, sale *domain.SuspendedSale) {
	r.store.Set(ctx, keySuspendedSalePrefix+userID, sale)
}

func (r *suspendedSaleRepository) Remove(ctx context.Context, userID string) {
	r.store.Remove(ctx, keySuspendedSalePrefix+userID)
}
