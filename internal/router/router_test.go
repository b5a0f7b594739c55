package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository/memory"
	"github.com/iliyamo/restaurant-pos/internal/router"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const secret = "router-test-secret"

// newAPI wires the catalog and ledger routes over an in-memory store the
// same way cmd/server does.
func newAPI(t *testing.T) *echo.Echo {
	t.Helper()
	d := service.Deps{Store: memory.New()}
	o := router.Options{JWTSecret: secret}
	e := echo.New()
	router.RegisterCatalog(e, handler.NewCatalogHandler(service.NewCatalogService(d)), o)
	router.RegisterLedger(e, router.LedgerHandlers{
		Payments: handler.NewPaymentHandler(service.NewPaymentService(d)),
		Expenses: handler.NewExpenseHandler(service.NewExpenseService(d)),
		Cash:     handler.NewCashHandler(service.NewCashService(d)),
		Reports: handler.NewReportHandler(
			service.NewReportService(d),
			service.NewBalanceService(d, nil, decimal.Zero),
		),
	}, o)
	return e
}

func bearer(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 9, role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func call(t *testing.T, e *echo.Echo, role model.Role, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set(echo.HeaderAuthorization, bearer(t, role))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func field(t *testing.T, rec *httptest.ResponseRecorder, name string) any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out[name]
}

func TestCapabilityChecks(t *testing.T) {
	e := newAPI(t)
	tests := []struct {
		name   string
		role   model.Role
		method string
		target string
		body   string
		code   int
	}{
		{"anonymous", "", http.MethodGet, "/v1/cash", "", http.StatusUnauthorized},
		{"cook cannot withdraw", model.RoleCook, http.MethodPost, "/v1/cash/withdraw", `{"amount":"10"}`, http.StatusForbidden},
		{"cashier cannot reset", model.RoleCashier, http.MethodPost, "/v1/cash/reset", "", http.StatusForbidden},
		{"waiter cannot read the register", model.RoleWaiter, http.MethodGet, "/v1/cash", "", http.StatusForbidden},
		{"cashier cannot record expenses", model.RoleCashier, http.MethodPost, "/v1/expenses", `{"description":"Gaz","amount":"1500"}`, http.StatusForbidden},
		{"table cannot read reports", model.RoleTable, http.MethodGet, "/v1/reports/payments", "", http.StatusForbidden},
		{"cashier cannot run the daily balance", model.RoleCashier, http.MethodPost, "/v1/reports/daily-balance/run", "", http.StatusForbidden},
		{"waiter cannot edit dishes", model.RoleWaiter, http.MethodPost, "/v1/dishes", `{"name":"Alloco","price":"1500"}`, http.StatusForbidden},
		{"waiter reads dishes", model.RoleWaiter, http.MethodGet, "/v1/dishes", "", http.StatusOK},
		{"cashier reads the register", model.RoleCashier, http.MethodGet, "/v1/cash", "", http.StatusOK},
		{"cashier reads reports", model.RoleCashier, http.MethodGet, "/v1/reports/payments", "", http.StatusOK},
		{"admin resets", model.RoleAdmin, http.MethodPost, "/v1/cash/reset", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, call(t, e, tt.role, tt.method, tt.target, tt.body).Code)
		})
	}
}

func TestCashRoutes(t *testing.T) {
	e := newAPI(t)

	rec := call(t, e, model.RoleCashier, http.MethodPost, "/v1/cash/withdraw", `{"amount":"100"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "empty register")

	rec = call(t, e, model.RoleCashier, http.MethodPost, "/v1/cash/deposit", `{"amount":"5000","note":"fond"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "5000", field(t, rec, "balance_after"))

	rec = call(t, e, model.RoleCashier, http.MethodPost, "/v1/cash/withdraw", `{"amount":"5000.01"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, e, model.RoleAccountant, http.MethodPost, "/v1/cash/withdraw", `{"amount":"2000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "3000", field(t, rec, "balance_after"))

	for _, body := range []string{`{"amount":"0"}`, `{"amount":"-5"}`, `{"amount":"0.001"}`, `{"amount":`} {
		assert.Equal(t, http.StatusBadRequest, call(t, e, model.RoleCashier, http.MethodPost, "/v1/cash/deposit", body).Code, body)
	}

	rec = call(t, e, model.RoleCashier, http.MethodGet, "/v1/cash", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3000", field(t, rec, "balance"))

	rec = call(t, e, model.RoleAdmin, http.MethodPost, "/v1/cash/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-3000", field(t, rec, "amount"))
	assert.Equal(t, "0", field(t, rec, "balance_after"))

	rec = call(t, e, model.RoleCashier, http.MethodGet, "/v1/cash/movements?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, field(t, rec, "items"), 2)
}

func TestExpenseRoutes(t *testing.T) {
	e := newAPI(t)

	bad := []string{
		`{"description":"","amount":"1500"}`,
		`{"description":"Gaz","amount":"0"}`,
		`{"description":"Gaz","amount":"12.345"}`,
		`{"description":"Gaz","amount":"1500","spent_on":"10/03/2026"}`,
		`{"description":"Gaz","amount":"1500","category_id":404}`,
		`{"description":`,
	}
	for _, body := range bad {
		t.Run(body, func(t *testing.T) {
			rec := call(t, e, model.RoleAccountant, http.MethodPost, "/v1/expenses", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := call(t, e, model.RoleAccountant, http.MethodPost, "/v1/expenses",
		`{"description":"Bouteille de gaz","amount":"1500","spent_on":"2026-03-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1500", field(t, rec, "amount"))
	assert.Equal(t, "2026-03-10T00:00:00Z", field(t, rec, "spent_on"))

	rec = call(t, e, model.RoleAdmin, http.MethodGet, "/v1/cash", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-1500", field(t, rec, "balance"), "expenses debit the register even below zero")

	rec = call(t, e, model.RoleAccountant, http.MethodGet, "/v1/expenses?from=2026-03-10&to=2026-03-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, field(t, rec, "items"), 1)
}
