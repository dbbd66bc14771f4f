package transport

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-till/internal/domain"
	"pos-till/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sell opens a session when needed and checks out qty units of product.
func (e *apiEnv) sell(t *testing.T, token string, product domain.Product, qty int, method string) domain.SaleRecord {
	t.Helper()
	e.do(t, http.MethodPost, "/api/cash/session/open", token, OpenSessionRequest{OpeningAmount: decimal.Zero})
	w := e.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: product.ID, Quantity: qty})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(t, http.MethodPost, "/api/cart/confirm", token, ConfirmRequest{Method: method, Tendered: decimal.NewFromInt(100000)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.SaleRecord](t, w)
}

func TestSalesListingScopesCashiers(t *testing.T) {
	env := newAPIEnv(t)
	cashier := env.cashierToken(t)
	manager := env.managerToken(t)
	mate := env.addProduct(t, "Mate", "100", 50)

	env.sell(t, cashier, mate, 1, "cash")
	env.clock.Advance(time.Minute)
	env.sell(t, manager, mate, 2, "card")

	w := env.do(t, http.MethodGet, "/api/sales", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	own := decode[[]domain.SaleRecord](t, w)
	require.Len(t, own, 1)
	assert.Equal(t, domain.PaymentCash, own[0].Payment.Method)

	w = env.do(t, http.MethodGet, "/api/sales", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]domain.SaleRecord](t, w)
	require.Len(t, all, 2)
	assert.Equal(t, domain.PaymentCard, all[0].Payment.Method, "newest first")

	w = env.do(t, http.MethodGet, "/api/sales?method=card", manager, nil)
	assert.Len(t, decode[[]domain.SaleRecord](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/sales?method=barter", manager, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/sales?from=yesterday", manager, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	future := env.clock.Now().Add(48 * time.Hour).Format(time.DateOnly)
	w = env.do(t, http.MethodGet, "/api/sales?from="+future, manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReportsNeedManager(t *testing.T) {
	env := newAPIEnv(t)
	cashier := env.cashierToken(t)
	mate := env.addProduct(t, "Mate", "100", 50)
	env.sell(t, cashier, mate, 2, "cash")

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/reports/dashboard", cashier, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/cash/history", cashier, nil).Code)

	w := env.do(t, http.MethodGet, "/api/reports/dashboard", env.managerToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dash := decode[service.Dashboard](t, w)
	require.Len(t, dash.Last7Days, 7)
	assertDec(t, "242", dash.Last7Days[6].Total, "today")
	require.NotEmpty(t, dash.TopProducts)
	assert.Equal(t, "Mate", dash.TopProducts[0].Name)

	w = env.do(t, http.MethodPost, "/api/cash/session/close", cashier, CloseSessionRequest{ClosingAmount: decimal.NewFromInt(242)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/reports/employees", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[[]service.EmployeeReport](t, w)
	require.Len(t, report, 1)

	w = env.do(t, http.MethodGet, "/api/cash/history", env.managerToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.CashSession](t, w), 1)
}

func TestSupplierRoutes(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.managerToken(t)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/suppliers", env.cashierToken(t), nil).Code)

	w := env.do(t, http.MethodPost, "/api/suppliers", manager, SupplierRequest{Name: "Ana", Company: "Distribuidora Sur", Balance: decimal.NewFromInt(-1500)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/api/suppliers", manager, SupplierRequest{Name: "Juan", Company: "Molinos", Balance: decimal.NewFromInt(300)})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodPost, "/api/suppliers", manager, SupplierRequest{Name: "Nadie"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/suppliers/totals", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode[service.SupplierTotals](t, w)
	assertDec(t, "1500", totals.Debt, "debt")
	assertDec(t, "300", totals.Credit, "credit")
}

func TestDisplayStreamReceivesCartUpdates(t *testing.T) {
	env := newAPIEnv(t)
	token := env.cashierToken(t)
	mate := env.addProduct(t, "Mate", "100", 50)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/display/stream?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, ": connected", lines.Text())

	env.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: mate.ID, Quantity: 2})

	var event, data string
	for lines.Scan() {
		line := lines.Text()
		if after, ok := strings.CutPrefix(line, "event: "); ok {
			event = after
		}
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			data = after
			break
		}
	}
	assert.Equal(t, string(domain.DisplayUpdate), event)
	assert.Contains(t, data, `"lastProduct"`)
	assert.Contains(t, data, `"total":242`)
}
