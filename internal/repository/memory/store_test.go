package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func seed(t *testing.T, s *Store) (model.Table, model.Dish, model.Order) {
	t.Helper()
	var (
		tb model.Table
		d  model.Dish
		o  model.Order
	)
	err := s.WithinTx(context.Background(), func(q repository.Querier) error {
		ctx := context.Background()
		tb = model.Table{Number: "1", Seats: 4}
		if err := q.CreateTable(ctx, &tb); err != nil {
			return err
		}
		d = model.Dish{Name: "Ndole", Price: decimal.NewFromInt(2500), Kind: model.DishMain, Available: true}
		if err := q.CreateDish(ctx, &d); err != nil {
			return err
		}
		o = model.Order{TableID: tb.ID, Status: model.StatusPending}
		return q.InsertOrder(ctx, &o)
	})
	require.NoError(t, err)
	return tb, d, o
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, d, o := seed(t, s)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(q repository.Querier) error {
		if err := q.InsertLine(ctx, &model.OrderLine{OrderID: o.ID, DishID: d.ID, Quantity: 2, UnitPrice: d.Price}); err != nil {
			return err
		}
		if err := q.EnsureCashRegister(ctx); err != nil {
			return err
		}
		if err := q.SetCashBalance(ctx, decimal.NewFromInt(999)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.WithinTx(ctx, func(q repository.Querier) error {
		lines, err := q.ListLines(ctx, o.ID)
		require.NoError(t, err)
		assert.Empty(t, lines)
		_, err = q.GetCashRegister(ctx)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	tb, d, o := seed(t, s)

	err := s.WithinTx(ctx, func(q repository.Querier) error {
		dup := model.Table{Number: tb.Number, Seats: 2}
		assert.ErrorIs(t, q.CreateTable(ctx, &dup), repository.ErrDuplicate)

		line := model.OrderLine{OrderID: o.ID, DishID: d.ID, Quantity: 1, UnitPrice: d.Price}
		require.NoError(t, q.InsertLine(ctx, &line))
		again := line
		assert.ErrorIs(t, q.InsertLine(ctx, &again), repository.ErrDuplicate)
		assert.ErrorIs(t, q.InsertLine(ctx, &model.OrderLine{OrderID: 404, DishID: d.ID, Quantity: 1}), repository.ErrNotFound)

		p := model.Payment{OrderID: o.ID, Method: model.MethodCash, Amount: decimal.NewFromInt(2500)}
		require.NoError(t, q.InsertPayment(ctx, &p))
		second := model.Payment{OrderID: o.ID, Method: model.MethodCard, Amount: decimal.NewFromInt(2500)}
		assert.ErrorIs(t, q.InsertPayment(ctx, &second), repository.ErrDuplicate)

		_, err := q.CreateUser(ctx, "a@pos.test", "password1", model.RoleAdmin, 4)
		require.NoError(t, err)
		_, err = q.CreateUser(ctx, "A@POS.test", "password1", model.RoleWaiter, 4)
		assert.ErrorIs(t, err, repository.ErrEmailExists)
		return nil
	})
	require.NoError(t, err)
}

func TestOrderInsertRequiresTable(t *testing.T) {
	s := New()
	err := s.WithinTx(context.Background(), func(q repository.Querier) error {
		return q.InsertOrder(context.Background(), &model.Order{TableID: 7, Status: model.StatusPending})
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCashMovementsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.WithinTx(ctx, func(q repository.Querier) error {
		for _, k := range []model.MovementKind{model.MovementDeposit, model.MovementPayment, model.MovementExpense} {
			if err := q.InsertCashMovement(ctx, &model.CashMovement{Kind: k}); err != nil {
				return err
			}
		}
		out, err := q.ListCashMovements(ctx, model.Period{}, 2)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, model.MovementExpense, out[0].Kind)
		assert.Equal(t, model.MovementPayment, out[1].Kind)
		return nil
	})
	require.NoError(t, err)
}

func TestCartStore(t *testing.T) {
	c := NewCartStore()
	ctx := context.Background()

	require.NoError(t, c.SetItem(ctx, 1, 10, 2))
	require.NoError(t, c.SetItem(ctx, 1, 11, 1))
	require.NoError(t, c.SetItem(ctx, 1, 11, 0))
	require.NoError(t, c.SetItem(ctx, 2, 10, 5))

	items, err := c.Items(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{10: 2}, items)

	require.NoError(t, c.Clear(ctx, 1))
	items, err = c.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = c.Items(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{10: 5}, items)
}
