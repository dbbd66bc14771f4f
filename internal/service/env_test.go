package service

import (
	"context"
	"testing"
	"time"

	"pos-till/internal/clock"
	"pos-till/internal/display"
	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
	"pos-till/internal/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store     *kvstore.Store
	clock     *clock.FakeClock
	hub       *display.Hub
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sessions  repository.CashSessionRepository
	suspended repository.SuspendedSaleRepository
	ledger    *SaleLedger
	cash      CashSessionService
	deps      CartDeps
	till      TillService
	inventory InventoryService
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	return newTestEnvOn(t, kvstore.NewMemoryBackend())
}

// newTestEnvOn builds an env over backend so a second env can read what a
// first one wrote, as after a restart.
func newTestEnvOn(t testing.TB, backend kvstore.Backend) *testEnv {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	logger := zap.NewNop()
	store := kvstore.New(backend, "test_", logger)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	env := &testEnv{
		store:     store,
		clock:     clk,
		hub:       display.NewHub(),
		products:  repository.NewProductRepository(store),
		customers: repository.NewCustomerRepository(store),
		sessions:  repository.NewCashSessionRepository(store),
		suspended: repository.NewSuspendedSaleRepository(store),
	}
	env.ledger = NewSaleLedger(repository.NewSaleRepository(store))
	env.cash = NewCashSessionService(env.sessions, env.ledger, clk, nil, logger)
	env.deps = CartDeps{
		Suspended:      env.suspended,
		Sessions:       env.cash,
		Ledger:         env.ledger,
		Display:        env.hub,
		Clock:          clk,
		IDs:            node,
		Logger:         logger,
		DefaultTaxRate: domain.DefaultTaxRate,
	}
	env.till = NewTillService(NewWorkspaces(env.deps), env.products, env.customers)
	env.inventory = NewInventoryService(
		env.products,
		repository.NewCategoryRepository(env.products),
		repository.NewStockMovementRepository(store),
		clk,
		domain.DefaultTaxRate,
		logger,
	)
	return env
}

func (e *testEnv) addProduct(t testing.TB, name string, price string, stock int) domain.Product {
	t.Helper()
	p, err := e.inventory.Create(context.Background(), ProductInput{
		SKU:   "SKU-" + name,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Cost:  decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return *p
}

func (e *testEnv) newCart(op Operator) *Cart {
	cart := NewCart(op, e.deps)
	cart.Hydrate(context.Background())
	return cart
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	cashier = Operator{ID: "u-cashier", Name: "Cajero", Role: domain.RoleCashier}
	manager = Operator{ID: "u-manager", Name: "Gerente", Role: domain.RoleManager}
)

func repositorySuppliers(e *testEnv) repository.SupplierRepository {
	return repository.NewSupplierRepository(e.store)
}
