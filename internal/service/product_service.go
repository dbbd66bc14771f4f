package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultEntryReason = "Manual entry"
	defaultExitReason  = "Manual exit"
)

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	SKU      string
	Barcode  string
	Name     string
	Category string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	TaxRate  *decimal.Decimal
	Stock    int
	MinStock int
	Active   *bool
}

// StockMovementFilter narrows the movement listing. Zero fields match all.
type StockMovementFilter struct {
	Type   domain.StockMovementType
	Search string
}

// InventoryService manages the catalog and manual stock adjustments.
type InventoryService interface {
	List(ctx context.Context, query string) []domain.Product
	Get(ctx context.Context, id string) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context) []domain.Product
	Valuation(ctx context.Context) decimal.Decimal
	Categories(ctx context.Context) []repository.CategoryStock
	RecordStockMovement(ctx context.Context, op Operator, productID string, kind domain.StockMovementType, quantity int, reason, note string) (*domain.StockMovement, error)
	StockMovements(ctx context.Context, filter StockMovementFilter) []domain.StockMovement
}

type inventoryService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	movements  repository.StockMovementRepository
	clock      clock.Clock
	logger     *zap.Logger
	taxRate    decimal.Decimal
}

func NewInventoryService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	movements repository.StockMovementRepository,
	clk clock.Clock,
	defaultTaxRate decimal.Decimal,
	logger *zap.Logger,
) InventoryService {
	if defaultTaxRate.IsZero() {
		defaultTaxRate = domain.DefaultTaxRate
	}
	return &inventoryService{
		products:   products,
		categories: categories,
		movements:  movements,
		clock:      clk,
		logger:     logger,
		taxRate:    defaultTaxRate,
	}
}

// List returns the catalog, or the products matching query by name, sku or barcode.
func (s *inventoryService) List(ctx context.Context, query string) []domain.Product {
	if strings.TrimSpace(query) == "" {
		return s.products.List(ctx)
	}
	return s.products.Search(ctx, query)
}

func (s *inventoryService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return p, nil
}

func (s *inventoryService) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	p, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, productError(err)
	}
	return p, nil
}

func (s *inventoryService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	product := &domain.Product{
		V:         domain.SchemaVersion,
		ID:        uuid.NewString(),
		CreatedAt: now,
		Active:    true,
	}
	s.apply(product, in)
	product.UpdatedAt = now

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *inventoryService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(product, in)
	product.UpdatedAt = s.clock.Now()

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return productError(err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// LowStock lists products at or below their minimum stock.
func (s *inventoryService) LowStock(ctx context.Context) []domain.Product {
	var out []domain.Product
	for _, p := range s.products.List(ctx) {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

// Valuation is the sum of cost times stock across the catalog.
func (s *inventoryService) Valuation(ctx context.Context) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.products.List(ctx) {
		total = total.Add(p.Valuation())
	}
	return total
}

func (s *inventoryService) Categories(ctx context.Context) []repository.CategoryStock {
	return s.categories.List(ctx)
}

// RecordStockMovement adjusts a product's stock and logs the movement. An
// exit that would leave negative stock is rejected.
func (s *inventoryService) RecordStockMovement(ctx context.Context, op Operator, productID string, kind domain.StockMovementType, quantity int, reason, note string) (*domain.StockMovement, error) {
	if !kind.Valid() {
		return nil, apperror.NewFieldValidation("type", "movement type must be in or out")
	}
	if quantity < 1 {
		return nil, apperror.NewFieldValidation("quantity", "quantity must be at least 1")
	}
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	switch kind {
	case domain.StockIn:
		product.Stock += quantity
		if reason == "" {
			reason = defaultEntryReason
		}
	case domain.StockOut:
		if quantity > product.Stock {
			return nil, apperror.NewFieldValidation("quantity",
				fmt.Sprintf("only %d units of %s in stock", product.Stock, product.Name))
		}
		product.Stock -= quantity
		if reason == "" {
			reason = defaultExitReason
		}
	}

	now := s.clock.Now()
	product.UpdatedAt = now
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	movement := &domain.StockMovement{
		V:           domain.SchemaVersion,
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        kind,
		Quantity:    quantity,
		Reason:      reason,
		Note:        strings.TrimSpace(note),
		StockAfter:  product.Stock,
		UserID:      op.ID,
		CreatedAt:   now,
	}
	s.movements.Append(ctx, movement)

	s.logger.Info("Stock movement recorded",
		zap.String("product_id", product.ID),
		zap.String("type", string(kind)),
		zap.Int("quantity", quantity),
		zap.Int("stock_after", product.Stock),
	)
	return movement, nil
}

// StockMovements lists movements newest first.
func (s *inventoryService) StockMovements(ctx context.Context, filter StockMovementFilter) []domain.StockMovement {
	all := s.movements.List(ctx)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]domain.StockMovement, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.ProductName), search) &&
			!strings.Contains(strings.ToLower(m.Reason), search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *inventoryService) apply(p *domain.Product, in ProductInput) {
	p.SKU = strings.TrimSpace(in.SKU)
	p.Barcode = strings.TrimSpace(in.Barcode)
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Cost = in.Cost
	p.Stock = in.Stock
	p.MinStock = in.MinStock
	switch {
	case in.TaxRate != nil:
		p.TaxRate = *in.TaxRate
	case p.TaxRate.IsZero():
		p.TaxRate = s.taxRate
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}

func (s *inventoryService) save(ctx context.Context, p *domain.Product) error {
	if err := s.products.Save(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateBarcode) {
			return apperror.Wrap(apperror.KindConflict, "barcode already assigned to another product", err)
		}
		return err
	}
	return nil
}

func validateProduct(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperror.NewFieldValidation("name", "name is required")
	case in.Price.IsNegative():
		return apperror.NewFieldValidation("price", "price cannot be negative")
	case in.Cost.IsNegative():
		return apperror.NewFieldValidation("cost", "cost cannot be negative")
	case in.TaxRate != nil && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1))):
		return apperror.NewFieldValidation("tax_rate", "tax rate must be a fraction between 0 and 1")
	case in.Stock < 0:
		return apperror.NewFieldValidation("stock", "stock cannot be negative")
	case in.MinStock < 0:
		return apperror.NewFieldValidation("min_stock", "minimum stock cannot be negative")
	}
	return nil
}
