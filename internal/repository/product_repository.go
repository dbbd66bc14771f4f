package repository

import (
	"context"
	"errors"
	"strings"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateBarcode = errors.New("barcode already assigned to another product")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	List(ctx context.Context) []domain.Product
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Search(ctx context.Context, query string) []domain.Product
	Save(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	store *kvstore.Store
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(store *kvstore.Store) ProductRepository {
	return &productRepository{store: store}
}

func productID(p domain.Product) string { return p.ID }

func (r *productRepository) List(ctx context.Context) []domain.Product {
	return kvstore.LoadList[domain.Product](ctx, r.store, keyProducts)
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	for _, p := range r.List(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, ErrProductNotFound
	}
	for _, p := range r.List(ctx) {
		if p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// Search matches name, SKU or barcode, case-insensitively. An empty query returns everything.
func (r *productRepository) Search(ctx context.Context, query string) []domain.Product {
	products := r.List(ctx)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}

	var out []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.SKU), query) ||
			strings.Contains(p.Barcode, query) {
			out = append(out, p)
		}
	}
	return out
}

// Save inserts or replaces the product, keeping barcodes unique.
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	if product.Barcode != "" {
		if existing, err := r.FindByBarcode(ctx, product.Barcode); err == nil && existing.ID != product.ID {
			return ErrDuplicateBarcode
		}
	}
	kvstore.Upsert(ctx, r.store, keyProducts, *product, productID)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	kvstore.DeleteByID(ctx, r.store, keyProducts, id, productID)
	return nil
}
