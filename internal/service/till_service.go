package service

import (
	"context"
	"errors"
	"fmt"

	"pos-till/internal/apperror"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/shopspring/decimal"
)

// TillService is the checkout surface: it resolves products and customers
// and applies cart operations inside the operator's workspace.
type TillService interface {
	Cart(ctx context.Context, op Operator) (CartView, error)
	AddProduct(ctx context.Context, op Operator, productID string, quantity int) (CartView, error)
	AddBarcode(ctx context.Context, op Operator, barcode string, quantity int) (CartView, error)
	UpdateQuantity(ctx context.Context, op Operator, productID string, quantity int) (CartView, error)
	RemoveItem(ctx context.Context, op Operator, productID string) (CartView, error)
	SetCustomer(ctx context.Context, op Operator, customerID string) (CartView, error)
	SetDiscount(ctx context.Context, op Operator, pct decimal.Decimal) (CartView, error)
	Suspend(ctx context.Context, op Operator) (CartView, error)
	Resume(ctx context.Context, op Operator) (CartView, error)
	Clear(ctx context.Context, op Operator) (CartView, error)
	Confirm(ctx context.Context, op Operator, payment Payment) (*domain.SaleRecord, error)
}

type tillService struct {
	workspaces *Workspaces
	products   repository.ProductRepository
	customers  repository.CustomerRepository
}

func NewTillService(workspaces *Workspaces, products repository.ProductRepository, customers repository.CustomerRepository) TillService {
	return &tillService{
		workspaces: workspaces,
		products:   products,
		customers:  customers,
	}
}

// apply runs fn on the operator's cart and returns the resulting view.
func (s *tillService) apply(ctx context.Context, op Operator, fn func(cart *Cart) error) (CartView, error) {
	if err := op.validate(); err != nil {
		return CartView{}, err
	}
	var view CartView
	err := s.workspaces.For(ctx, op).With(func(cart *Cart) error {
		if err := fn(cart); err != nil {
			return err
		}
		view = cart.View()
		return nil
	})
	return view, err
}

func (s *tillService) Cart(ctx context.Context, op Operator) (CartView, error) {
	return s.apply(ctx, op, func(*Cart) error { return nil })
}

func (s *tillService) AddProduct(ctx context.Context, op Operator, productID string, quantity int) (CartView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return CartView{}, productError(err)
	}
	if !product.Active {
		return CartView{}, inactiveProduct(product)
	}
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.AddItem(ctx, *product, quantity)
	})
}

func (s *tillService) AddBarcode(ctx context.Context, op Operator, barcode string, quantity int) (CartView, error) {
	product, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return CartView{}, productError(err)
	}
	if !product.Active {
		return CartView{}, inactiveProduct(product)
	}
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.AddItem(ctx, *product, quantity)
	})
}

func (s *tillService) UpdateQuantity(ctx context.Context, op Operator, productID string, quantity int) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.UpdateQuantity(productID, quantity)
	})
}

func (s *tillService) RemoveItem(ctx context.Context, op Operator, productID string) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.RemoveItem(productID)
	})
}

// SetCustomer attaches a customer; an empty id detaches it.
func (s *tillService) SetCustomer(ctx context.Context, op Operator, customerID string) (CartView, error) {
	var ref *domain.CustomerRef
	if customerID != "" {
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return CartView{}, apperror.NewNotFound("customer not found")
			}
			return CartView{}, err
		}
		ref = customer.Ref()
	}
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.SetCustomer(ref)
	})
}

func (s *tillService) SetDiscount(ctx context.Context, op Operator, pct decimal.Decimal) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.SetDiscount(pct)
	})
}

func (s *tillService) Suspend(ctx context.Context, op Operator) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		return cart.Suspend(ctx)
	})
}

func (s *tillService) Resume(ctx context.Context, op Operator) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		cart.Resume(ctx)
		return nil
	})
}

func (s *tillService) Clear(ctx context.Context, op Operator) (CartView, error) {
	return s.apply(ctx, op, func(cart *Cart) error {
		cart.Clear(ctx)
		return nil
	})
}

func (s *tillService) Confirm(ctx context.Context, op Operator, payment Payment) (*domain.SaleRecord, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}
	var sale *domain.SaleRecord
	err := s.workspaces.For(ctx, op).With(func(cart *Cart) error {
		var err error
		sale, err = cart.Confirm(ctx, payment)
		return err
	})
	return sale, err
}

func productError(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return apperror.NewNotFound("product not found")
	}
	return err
}

func inactiveProduct(p *domain.Product) error {
	return apperror.NewFieldValidation("product", fmt.Sprintf("product %q is not available for sale", p.Name))
}
