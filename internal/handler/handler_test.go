package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) Create(_ context.Context, a model.Actor, in service.CreateOrderInput) (model.Order, error) {
	args := m.Called(a, in)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrders) AddLine(_ context.Context, a model.Actor, orderID uint64, in service.LineInput) (model.Order, error) {
	args := m.Called(a, orderID, in)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrders) RemoveLine(_ context.Context, a model.Actor, orderID, dishID uint64) (model.Order, error) {
	args := m.Called(a, orderID, dishID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrders) Transition(_ context.Context, a model.Actor, orderID uint64, to model.OrderStatus) (model.Order, error) {
	args := m.Called(a, orderID, to)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrders) Get(_ context.Context, orderID uint64) (model.Order, error) {
	args := m.Called(orderID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrders) List(_ context.Context, f model.OrderFilter) ([]model.Order, error) {
	args := m.Called(f)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *mockOrders) History(_ context.Context, orderID uint64) ([]model.OrderStatusLog, error) {
	args := m.Called(orderID)
	return args.Get(0).([]model.OrderStatusLog), args.Error(1)
}

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Record(_ context.Context, a model.Actor, in service.PaymentInput) (model.Payment, error) {
	args := m.Called(a, in)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *mockPayments) Delete(_ context.Context, a model.Actor, paymentID uint64) error {
	return m.Called(a, paymentID).Error(0)
}

func (m *mockPayments) GetByOrder(_ context.Context, orderID uint64) (model.Payment, error) {
	args := m.Called(orderID)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *mockPayments) List(_ context.Context, p model.Period) ([]model.Payment, error) {
	args := m.Called(p)
	return args.Get(0).([]model.Payment), args.Error(1)
}

var testWaiter = model.Actor{UserID: 7, Role: model.RoleWaiter}

// serve routes one request through a fresh echo instance. A nil actor
// leaves the request unauthenticated.
func serve(t *testing.T, a *model.Actor, routes func(e *echo.Echo), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	if a != nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				middleware.SetActor(c, *a)
				return next(c)
			}
		})
	}
	routes(e)
	return record(e, newJSONRequest(method, target, body))
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func record(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func orderRoutes(h *OrderHandler) func(e *echo.Echo) {
	return func(e *echo.Echo) {
		e.POST("/orders", h.Create)
		e.GET("/orders", h.List)
		e.GET("/orders/:id", h.Get)
		e.POST("/orders/:id/lines", h.AddLine)
		e.DELETE("/orders/:id/lines/:dish_id", h.RemoveLine)
		e.POST("/orders/:id/status", h.Transition)
	}
}

func TestOrderCreate(t *testing.T) {
	m := &mockOrders{}
	h := NewOrderHandler(m)
	in := service.CreateOrderInput{
		TableID: 5,
		Lines:   []service.LineInput{{DishID: 1, Quantity: 2}, {DishID: 2, Quantity: 1}},
	}
	m.On("Create", testWaiter, in).Return(model.Order{ID: 1, TableID: 5, Status: model.StatusPending, Total: decimal.NewFromInt(45000)}, nil)

	rec := serve(t, &testWaiter, orderRoutes(h), http.MethodPost, "/orders",
		`{"table_id":5,"lines":[{"dish_id":1,"quantity":2},{"dish_id":2,"quantity":1}]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "45000", body["total"])
	assert.Equal(t, "EN_ATTENTE", body["status"])
	m.AssertExpectations(t)
}

func TestOrderCreateBadRequests(t *testing.T) {
	tests := []struct {
		name  string
		actor *model.Actor
		body  string
		code  int
	}{
		{"missing table", &testWaiter, `{"lines":[]}`, http.StatusBadRequest},
		{"malformed json", &testWaiter, `{"table_id":`, http.StatusBadRequest},
		{"anonymous", nil, `{"table_id":5}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockOrders{}
			rec := serve(t, tt.actor, orderRoutes(NewOrderHandler(m)), http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderTransitionMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"accepted", nil, http.StatusOK},
		{"refused", fmt.Errorf("%w: EN_PREPARATION -> EN_ATTENTE", service.ErrInvalidTransition), http.StatusConflict},
		{"unknown order", repository.ErrNotFound, http.StatusNotFound},
		{"unknown status", fmt.Errorf("%w: unknown status", service.ErrValidation), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockOrders{}
			m.On("Transition", testWaiter, uint64(9), model.StatusPreparing).
				Return(model.Order{ID: 9, Status: model.StatusPreparing}, tt.err)

			rec := serve(t, &testWaiter, orderRoutes(NewOrderHandler(m)), http.MethodPost, "/orders/9/status", `{"status":"en_preparation"}`)
			assert.Equal(t, tt.code, rec.Code)
			m.AssertExpectations(t)
		})
	}
}

func TestOrderGet(t *testing.T) {
	m := &mockOrders{}
	m.On("Get", uint64(3)).Return(model.Order{}, repository.ErrNotFound)
	m.On("Get", uint64(4)).Return(model.Order{}, errors.New("connection reset"))
	routes := orderRoutes(NewOrderHandler(m))

	assert.Equal(t, http.StatusNotFound, serve(t, &testWaiter, routes, http.MethodGet, "/orders/3", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, &testWaiter, routes, http.MethodGet, "/orders/abc", "").Code)

	rec := serve(t, &testWaiter, routes, http.MethodGet, "/orders/4", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"], "unexpected errors are not leaked")
}

func TestOrderLines(t *testing.T) {
	m := &mockOrders{}
	m.On("AddLine", testWaiter, uint64(2), service.LineInput{DishID: 8, Quantity: 3}).
		Return(model.Order{ID: 2}, nil)
	m.On("RemoveLine", testWaiter, uint64(2), uint64(8)).
		Return(model.Order{}, fmt.Errorf("%w: order 2 is TERMINEE", service.ErrOrderClosed))
	routes := orderRoutes(NewOrderHandler(m))

	assert.Equal(t, http.StatusOK, serve(t, &testWaiter, routes, http.MethodPost, "/orders/2/lines", `{"dish_id":8,"quantity":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, &testWaiter, routes, http.MethodPost, "/orders/2/lines", `{"quantity":3}`).Code)
	assert.Equal(t, http.StatusConflict, serve(t, &testWaiter, routes, http.MethodDelete, "/orders/2/lines/8", "").Code)
	m.AssertExpectations(t)
}

func TestOrderListFilters(t *testing.T) {
	m := &mockOrders{}
	m.On("List", mock.MatchedBy(func(f model.OrderFilter) bool {
		return f.TableID == 5 &&
			len(f.Statuses) == 2 && f.Statuses[0] == model.StatusPending && f.Statuses[1] == model.StatusPreparing &&
			f.Period.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			f.Period.To.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) &&
			f.Limit == 20
	})).Return([]model.Order{{ID: 1}}, nil)
	routes := orderRoutes(NewOrderHandler(m))

	rec := serve(t, &testWaiter, routes, http.MethodGet, "/orders?table_id=5&status=en_attente,EN_PREPARATION&from=2026-03-01&to=2026-03-10&limit=20", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
	m.AssertExpectations(t)

	for _, q := range []string{"table_id=x", "from=10-03-2026", "from=2026-03-10&to=2026-03-01", "limit=-1"} {
		t.Run(q, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, serve(t, &testWaiter, routes, http.MethodGet, "/orders?"+q, "").Code)
		})
	}
}

func TestPaymentRecord(t *testing.T) {
	cashier := model.Actor{UserID: 4, Role: model.RoleCashier}
	routes := func(h *PaymentHandler) func(e *echo.Echo) {
		return func(e *echo.Echo) { e.POST("/orders/:id/payment", h.Record) }
	}

	t.Run("created", func(t *testing.T) {
		m := &mockPayments{}
		m.On("Record", cashier, service.PaymentInput{OrderID: 3, Method: "cash"}).
			Return(model.Payment{ID: 1, OrderID: 3, Method: model.MethodCash, Amount: decimal.NewFromInt(45000)}, nil)
		rec := serve(t, &cashier, routes(NewPaymentHandler(m)), http.MethodPost, "/orders/3/payment", `{"method":"cash"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "45000", decode(t, rec)["amount"])
		m.AssertExpectations(t)
	})
	t.Run("already paid", func(t *testing.T) {
		m := &mockPayments{}
		m.On("Record", cashier, mock.Anything).Return(model.Payment{}, service.ErrAlreadyPaid)
		rec := serve(t, &cashier, routes(NewPaymentHandler(m)), http.MethodPost, "/orders/3/payment", `{"method":"CARD"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("method required", func(t *testing.T) {
		m := &mockPayments{}
		rec := serve(t, &cashier, routes(NewPaymentHandler(m)), http.MethodPost, "/orders/3/payment", `{"amount":"10"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		m.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errUnauthorized, http.StatusUnauthorized},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrEmptyCart, http.StatusBadRequest},
		{fmt.Errorf("dish 4: %w", repository.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: table 2", service.ErrForbidden), http.StatusForbidden},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrAlreadyPaid, http.StatusConflict},
		{service.ErrInsufficientFunds, http.StatusConflict},
		{service.ErrOrderClosed, http.StatusConflict},
		{service.ErrDishUnavailable, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestHealth(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	t.Run("all up", func(t *testing.T) {
		rec := serve(t, nil, func(e *echo.Echo) { e.GET("/healthz", Health(map[string]Pinger{"mysql": up})) }, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec)["status"])
	})
	t.Run("one down", func(t *testing.T) {
		rec := serve(t, nil, func(e *echo.Echo) {
			e.GET("/healthz", Health(map[string]Pinger{"mysql": up, "redis": down}))
		}, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, map[string]any{"mysql": "up", "redis": "down"}, body["checks"])
	})
}
