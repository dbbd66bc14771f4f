package repository

import (
	"context"
	"errors"
	"strings"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerRepository interface {
	List(ctx context.Context) []domain.Customer
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	Search(ctx context.Context, query string) []domain.Customer
	Save(ctx context.Context, customer *domain.Customer)
	Delete(ctx context.Context, id string) error
}

type customerRepository struct {
	store *kvstore.Store
}

func NewCustomerRepository(store *kvstore.Store) CustomerRepository {
	return &customerRepository{store: store}
}

func customerID(c domain.Customer) string { return c.ID }

func (r *customerRepository) List(ctx context.Context) []domain.Customer {
	return kvstore.LoadList[domain.Customer](ctx, r.store, keyCustomers)
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.List(ctx) {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, ErrCustomerNotFound
}

// Search matches name, document number or email.
func (r *customerRepository) Search(ctx context.Context, query string) []domain.Customer {
	customers := r.List(ctx)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return customers
	}

	var out []domain.Customer
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(c.DocNumber, query) ||
			strings.Contains(strings.ToLower(c.Email), query) {
			out = append(out, c)
		}
	}
	return out
}

func (r *customerRepository) Save(ctx context.Context, customer *domain.Customer) {
	kvstore.Upsert(ctx, r.store, keyCustomers, *customer, customerID)
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	kvstore.DeleteByID(ctx, r.store, keyCustomers, id, customerID)
	return nil
}
