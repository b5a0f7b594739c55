package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository/memory"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []queue.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	events *recorder
	deps   service.Deps

	catalog  *service.CatalogService
	orders   *service.OrderService
	payments *service.PaymentService
	expenses *service.ExpenseService
	cash     *service.CashService
	reports  *service.ReportService
	users    *service.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := func() time.Time { return fixedNow }
	store := memory.New(memory.WithClock(now))
	rec := &recorder{}
	d := service.Deps{Store: store, Events: rec, Now: now}
	return &fixture{
		store:    store,
		events:   rec,
		deps:     d,
		catalog:  service.NewCatalogService(d),
		orders:   service.NewOrderService(d),
		payments: service.NewPaymentService(d),
		expenses: service.NewExpenseService(d),
		cash:     service.NewCashService(d),
		reports:  service.NewReportService(d),
		users:    service.NewUserService(d, 4),
	}
}

func (f *fixture) table(t *testing.T, number string) model.Table {
	t.Helper()
	tb, err := f.catalog.CreateTable(context.Background(), service.TableInput{Number: number})
	require.NoError(t, err)
	return tb
}

func (f *fixture) dish(t *testing.T, name, price string) model.Dish {
	t.Helper()
	p := dec(price)
	d, err := f.catalog.CreateDish(context.Background(), service.DishInput{Name: &name, Price: &p})
	require.NoError(t, err)
	return d
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	reg, err := f.cash.GetInstance(context.Background())
	require.NoError(t, err)
	return reg.Balance
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

var (
	waiter     = model.Actor{UserID: 2, Role: model.RoleWaiter}
	cook       = model.Actor{UserID: 3, Role: model.RoleCook}
	cashier    = model.Actor{UserID: 4, Role: model.RoleCashier}
	accountant = model.Actor{UserID: 5, Role: model.RoleAccountant}
	admin      = model.Actor{UserID: 1, Role: model.RoleAdmin}
)
