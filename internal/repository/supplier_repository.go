package repository

import (
	"context"
	"errors"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

var ErrSupplierNotFound = errors.New("supplier not found")

type SupplierRepository interface {
	List(ctx context.Context) []domain.Supplier
	FindByID(ctx context.Context, id string) (*domain.Supplier, error)
	Save(ctx context.Context, supplier *domain.Supplier)
	Delete(ctx context.Context, id string) error
}

type supplierRepository struct {
	store *kvstore.Store
}

func NewSupplierRepository(store *kvstore.Store) SupplierRepository {
	return &supplierRepository{store: store}
}

func supplierID(s domain.Supplier) string { return s.ID }

func (r *supplierRepository) List(ctx context.Context) []domain.Supplier {
	return kvstore.LoadList[domain.Supplier](ctx, r.store, keySuppliers)
}

func (r *supplierRepository) FindByID(ctx context.Context, id string) (*domain.Supplier, error) {
	for _, s := range r.List(ctx) {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, ErrSupplierNotFound
}

func (r *supplierRepository) Save(ctx context.Context, supplier *domain.Supplier) {
	kvstore.Upsert(ctx, r.store, keySuppliers, *supplier, supplierID)
}

func (r *supplierRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	kvstore.DeleteByID(ctx, r.store, keySuppliers, id, supplierID)
	return nil
}
