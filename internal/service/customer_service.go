package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerInput carries the editable fields of a customer.
type CustomerInput struct {
	DocType   string
	DocNumber string
	Name      string
	Email     string
	Phone     string
	Address   string
}

// CustomerStats summarises a customer's purchases from the sale ledger.
type CustomerStats struct {
	CustomerID   string          `json:"customer_id"`
	Purchases    int             `json:"purchases"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	AverageSpend decimal.Decimal `json:"average_spend"`
	LastPurchase *time.Time      `json:"last_purchase"`
}

type CustomerService interface {
	List(ctx context.Context, query string) []domain.Customer
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Create(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*CustomerStats, error)
}

type customerService struct {
	customers repository.CustomerRepository
	ledger    *SaleLedger
	clock     clock.Clock
}

func NewCustomerService(customers repository.CustomerRepository, ledger *SaleLedger, clk clock.Clock) CustomerService {
	return &customerService{customers: customers, ledger: ledger, clock: clk}
}

func (s *customerService) List(ctx context.Context, query string) []domain.Customer {
	return s.customers.Search(ctx, query)
}

func (s *customerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, customerError(err)
	}
	return c, nil
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.NewFieldValidation("name", "name is required")
	}
	now := s.clock.Now()
	customer := &domain.Customer{
		V:         domain.SchemaVersion,
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	applyCustomer(customer, in)
	customer.UpdatedAt = now
	s.customers.Save(ctx, customer)
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.NewFieldValidation("name", "name is required")
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCustomer(customer, in)
	customer.UpdatedAt = s.clock.Now()
	s.customers.Save(ctx, customer)
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	return customerError(s.customers.Delete(ctx, id))
}

// Stats derives spend figures from the ledger rather than stored counters.
func (s *customerService) Stats(ctx context.Context, id string) (*CustomerStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	stats := &CustomerStats{
		CustomerID:   id,
		TotalSpent:   decimal.Zero,
		AverageSpend: decimal.Zero,
	}
	for _, sale := range s.ledger.Query(ctx, SaleFilter{CustomerID: id}.Match) {
		stats.Purchases++
		stats.TotalSpent = stats.TotalSpent.Add(sale.Total)
		if stats.LastPurchase == nil || sale.ClosedAt.After(*stats.LastPurchase) {
			at := sale.ClosedAt
			stats.LastPurchase = &at
		}
	}
	if stats.Purchases > 0 {
		stats.AverageSpend = stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.Purchases)))
	}
	return stats, nil
}

func applyCustomer(c *domain.Customer, in CustomerInput) {
	c.DocType = strings.TrimSpace(in.DocType)
	c.DocNumber = strings.TrimSpace(in.DocNumber)
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
}

func customerError(err error) error {
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return apperror.Wrap(apperror.KindNotFound, "customer not found", err)
	}
	return err
}
