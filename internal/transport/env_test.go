package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-till/internal/clock"
	"pos-till/internal/display"
	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
	"pos-till/internal/middleware"
	"pos-till/internal/repository"
	"pos-till/internal/service"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "transport-test-secret"

// apiEnv is the full route table over an in-memory store.
type apiEnv struct {
	router    chi.Router
	clock     *clock.FakeClock
	hub       *display.Hub
	users     service.UserService
	inventory service.InventoryService
	customers service.CustomerService
}

func newAPIEnv(t testing.TB) *apiEnv {
	t.Helper()

	logger := zap.NewNop()
	store := kvstore.New(kvstore.NewMemoryBackend(), "test_", logger)
	// tokens are checked against the wall clock, so start from it
	clk := clock.NewFakeClock(time.Now().UTC())
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	products := repository.NewProductRepository(store)
	customers := repository.NewCustomerRepository(store)
	sessions := repository.NewCashSessionRepository(store)
	ledger := service.NewSaleLedger(repository.NewSaleRepository(store))
	hub := display.NewHub()

	users := service.NewUserService(
		repository.NewUserRepository(store),
		repository.NewRefreshTokenRepository(store),
		testSecret,
		service.TokenTTL{Access: 15 * time.Minute, Refresh: 24 * time.Hour},
		clk,
		logger,
	)
	cash := service.NewCashSessionService(sessions, ledger, clk, nil, logger)
	inventory := service.NewInventoryService(products, repository.NewCategoryRepository(products),
		repository.NewStockMovementRepository(store), clk, domain.DefaultTaxRate, logger)
	till := service.NewTillService(service.NewWorkspaces(service.CartDeps{
		Suspended: repository.NewSuspendedSaleRepository(store),
		Sessions:  cash,
		Ledger:    ledger,
		Display:   hub,
		Clock:     clk,
		IDs:       node,
		Logger:    logger,
	}), products, customers)
	customerService := service.NewCustomerService(customers, ledger, clk)

	require.NoError(t, users.SeedDefaults(context.Background()))

	auth := middleware.AuthMiddleware(testSecret, logger)
	noLimit := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	NewUserHandler(users, logger).RegisterRoutes(r, auth, noLimit)
	NewCashHandler(cash, logger).RegisterRoutes(r, auth)
	NewCartHandler(till, logger).RegisterRoutes(r, auth)
	NewReportHandler(service.NewReportService(ledger, sessions, inventory, clk), logger).RegisterRoutes(r, auth)
	NewProductHandler(inventory, logger).RegisterRoutes(r, auth)
	NewCustomerHandler(customerService, logger).RegisterRoutes(r, auth)
	NewSupplierHandler(service.NewSupplierService(repository.NewSupplierRepository(store), clk), logger).RegisterRoutes(r, auth)
	NewDisplayHandler(hub, logger).RegisterRoutes(r, auth)

	return &apiEnv{
		router:    r,
		clock:     clk,
		hub:       hub,
		users:     users,
		inventory: inventory,
		customers: customerService,
	}
}

// token logs a seeded account in and returns its access token.
func (e *apiEnv) token(t testing.TB, email, password string) string {
	t.Helper()
	access, _, _, err := e.users.Login(context.Background(), email, password)
	require.NoError(t, err)
	return access
}

func (e *apiEnv) cashierToken(t testing.TB) string {
	return e.token(t, "cashier@pos.com", "cashier123")
}

func (e *apiEnv) managerToken(t testing.TB) string {
	return e.token(t, "manager@pos.com", "manager123")
}

func (e *apiEnv) adminToken(t testing.TB) string {
	return e.token(t, "admin@pos.com", "admin123")
}

// do sends body as JSON, or raw when it is already a string.
func (e *apiEnv) do(t testing.TB, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func (e *apiEnv) addProduct(t testing.TB, name, price string, stock int) domain.Product {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/products", e.managerToken(t), map[string]interface{}{
		"sku":       "SKU-" + name,
		"name":      name,
		"price":     price,
		"cost":      "1",
		"stock":     stock,
		"min_stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Product](t, w)
}
