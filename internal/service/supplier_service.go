package service

import (
	"context"
	"errors"
	"strings"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SupplierInput struct {
	Name    string
	Company string
	TaxID   string
	Email   string
	Phone   string
	Address string
	Balance decimal.Decimal
}

// SupplierTotals splits balances into what is owed and what is in favour.
type SupplierTotals struct {
	Debt   decimal.Decimal `json:"debt"`
	Credit decimal.Decimal `json:"credit"`
}

type SupplierService interface {
	List(ctx context.Context) []domain.Supplier
	Get(ctx context.Context, id string) (*domain.Supplier, error)
	Create(ctx context.Context, in SupplierInput) (*domain.Supplier, error)
	Update(ctx context.Context, id string, in SupplierInput) (*domain.Supplier, error)
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context) SupplierTotals
}

type supplierService struct {
	suppliers repository.SupplierRepository
	clock     clock.Clock
}

func NewSupplierService(suppliers repository.SupplierRepository, clk clock.Clock) SupplierService {
	return &supplierService{suppliers: suppliers, clock: clk}
}

func (s *supplierService) List(ctx context.Context) []domain.Supplier {
	return s.suppliers.List(ctx)
}

func (s *supplierService) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, supplierError(err)
	}
	return sup, nil
}

func (s *supplierService) Create(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	if err := validateSupplier(in); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	sup := &domain.Supplier{
		V:         domain.SchemaVersion,
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	applySupplier(sup, in)
	sup.UpdatedAt = now
	s.suppliers.Save(ctx, sup)
	return sup, nil
}

func (s *supplierService) Update(ctx context.Context, id string, in SupplierInput) (*domain.Supplier, error) {
	if err := validateSupplier(in); err != nil {
		return nil, err
	}
	sup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplier(sup, in)
	sup.UpdatedAt = s.clock.Now()
	s.suppliers.Save(ctx, sup)
	return sup, nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	return supplierError(s.suppliers.Delete(ctx, id))
}

// Totals sums negative balances as debt and positive balances as credit.
func (s *supplierService) Totals(ctx context.Context) SupplierTotals {
	totals := SupplierTotals{Debt: decimal.Zero, Credit: decimal.Zero}
	for _, sup := range s.suppliers.List(ctx) {
		if sup.Balance.IsNegative() {
			totals.Debt = totals.Debt.Add(sup.Balance.Abs())
		} else {
			totals.Credit = totals.Credit.Add(sup.Balance)
		}
	}
	return totals
}

func validateSupplier(in SupplierInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}
	if strings.TrimSpace(in.Company) == "" {
		return apperror.NewFieldValidation("company", "company is required")
	}
	return nil
}

func applySupplier(sup *domain.Supplier, in SupplierInput) {
	sup.Name = strings.TrimSpace(in.Name)
	sup.Company = strings.TrimSpace(in.Company)
	sup.TaxID = strings.TrimSpace(in.TaxID)
	sup.Email = strings.TrimSpace(in.Email)
	sup.Phone = strings.TrimSpace(in.Phone)
	sup.Address = strings.TrimSpace(in.Address)
	sup.Balance = in.Balance
}

func supplierError(err error) error {
	if errors.Is(err, repository.ErrSupplierNotFound) {
		return apperror.Wrap(apperror.KindNotFound, "supplier not found", err)
	}
	return err
}
