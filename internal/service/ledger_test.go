package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// placeOrder creates a 45000 order: two dishes at 10000 and one at 25000.
func placeOrder(t *testing.T, f *fixture, table string) model.Order {
	t.Helper()
	tb := f.table(t, table)
	a := f.dish(t, "A"+table, "10000")
	b := f.dish(t, "B"+table, "25000")
	o, err := f.orders.Create(context.Background(), waiter, service.CreateOrderInput{
		TableID: tb.ID,
		Lines:   []service.LineInput{{DishID: a.ID, Quantity: 2}, {DishID: b.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return o
}

func TestPaymentCreditsAndReversalRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, "5")
	before := f.balance(t)

	p, err := f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, model.MethodCash, p.Method)
	assertAmount(t, "45000", p.Amount)
	assert.Equal(t, cashier.UserID, p.OperatorID)
	assertAmount(t, before.Add(dec("45000")).String(), f.balance(t))

	got, err := f.payments.GetByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, f.payments.Delete(ctx, admin, p.ID))
	assertAmount(t, before.String(), f.balance(t))

	_, err = f.payments.Get(ctx, p.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.payments.Delete(ctx, admin, p.ID), service.ErrNotFound)

	movements, err := f.cash.Movements(ctx, model.Period{}, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementPaymentReversal, movements[0].Kind)
	assert.Equal(t, model.MovementPayment, movements[1].Kind)

	assert.Contains(t, f.events.types(), queue.PaymentRecorded)
	assert.Contains(t, f.events.types(), queue.PaymentDeleted)
}

func TestPaymentIsRecordedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, "5")

	_, err := f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: model.MethodCard})
	require.NoError(t, err)
	_, err = f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: model.MethodCash})
	assert.ErrorIs(t, err, service.ErrAlreadyPaid)

	assertAmount(t, "45000", f.balance(t))
	movements, err := f.cash.Movements(ctx, model.Period{}, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestPaymentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, "9")
	cancelled := placeOrder(t, f, "10")
	_, err := f.orders.Transition(ctx, waiter, cancelled.ID, model.StatusCancelled)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   service.PaymentInput
		want error
	}{
		{"unknown method", service.PaymentInput{OrderID: o.ID, Method: "BITCOIN"}, service.ErrValidation},
		{"negative amount", service.PaymentInput{OrderID: o.ID, Method: model.MethodCash, Amount: decPtr("-5")}, service.ErrValidation},
		{"unknown order", service.PaymentInput{OrderID: 404, Method: model.MethodCash}, service.ErrNotFound},
		{"cancelled order", service.PaymentInput{OrderID: cancelled.ID, Method: model.MethodCash}, service.ErrOrderClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.Record(ctx, cashier, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assertAmount(t, "0", f.balance(t))
}

func TestPaymentExplicitAmount(t *testing.T) {
	f := newFixture(t)
	o := placeOrder(t, f, "11")

	p, err := f.payments.Record(context.Background(), cashier, service.PaymentInput{
		OrderID: o.ID, Method: model.MethodMobileMoney, Amount: decPtr("50000"),
	})
	require.NoError(t, err)
	assertAmount(t, "50000", p.Amount)
	assertAmount(t, "50000", f.balance(t))
}

func TestExpenseDebitsRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, "5")
	_, err := f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: model.MethodCash})
	require.NoError(t, err)

	e, err := f.expenses.Record(ctx, accountant, service.ExpenseInput{Description: "Gaz", Amount: dec("10000")})
	require.NoError(t, err)
	assert.Equal(t, accountant.UserID, e.UserID)
	assert.Equal(t, "2026-03-10", e.SpentOn.Format("2006-01-02"))
	assertAmount(t, "35000", f.balance(t))

	b, err := f.reports.DailyBalance(ctx, fixedNow)
	require.NoError(t, err)
	assertAmount(t, "45000", b.TotalIn)
	assertAmount(t, "10000", b.TotalOut)
	assertAmount(t, "35000", b.DayBalance)
	assertAmount(t, b.CumulativeIn.Sub(b.CumulativeOut).String(), b.CumulativeBalance)
	assertAmount(t, "35000", b.CumulativeBalance)

	require.NoError(t, f.expenses.Delete(ctx, admin, e.ID))
	assertAmount(t, "45000", f.balance(t))
	_, err = f.expenses.Get(ctx, e.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestExpenseMayOverdrawRegister(t *testing.T) {
	f := newFixture(t)

	_, err := f.expenses.Record(context.Background(), admin, service.ExpenseInput{Description: "Loyer", Amount: dec("20000")})
	require.NoError(t, err)
	assertAmount(t, "-20000", f.balance(t))

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, queue.ExpenseRecorded, ev.Type)
	assert.Contains(t, string(ev.Data), `"overdrawn":true`)
}

func TestExpenseRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uint64(404)

	tests := []struct {
		name  string
		actor model.Actor
		in    service.ExpenseInput
		want  error
	}{
		{"cashier may not author", cashier, service.ExpenseInput{Description: "Sel", Amount: dec("100")}, service.ErrForbidden},
		{"empty description", accountant, service.ExpenseInput{Description: "  ", Amount: dec("100")}, service.ErrValidation},
		{"zero amount", accountant, service.ExpenseInput{Description: "Sel", Amount: dec("0")}, service.ErrValidation},
		{"unknown category", accountant, service.ExpenseInput{Description: "Sel", Amount: dec("100"), CategoryID: &missing}, service.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.expenses.Record(ctx, tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assertAmount(t, "0", f.balance(t))
}

func TestExpenseCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.expenses.CreateCategory(ctx, "Energie", "gaz et electricite")
	require.NoError(t, err)
	_, err = f.expenses.CreateCategory(ctx, "Energie", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	e, err := f.expenses.Record(ctx, accountant, service.ExpenseInput{Description: "Gaz", Amount: dec("5000"), CategoryID: &c.ID})
	require.NoError(t, err)
	require.NotNil(t, e.CategoryID)
	assert.Equal(t, c.ID, *e.CategoryID)

	cats, err := f.expenses.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestCashWithdrawIsGuarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cash.Deposit(ctx, cashier, dec("3000"), "fond de caisse")
	require.NoError(t, err)

	_, err = f.cash.Withdraw(ctx, cashier, dec("5000"), "banque")
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	assertAmount(t, "3000", f.balance(t))

	mv, err := f.cash.Withdraw(ctx, cashier, dec("3000"), "banque")
	require.NoError(t, err)
	assertAmount(t, "-3000", mv.Amount)
	assertAmount(t, "0", mv.BalanceAfter)

	_, err = f.cash.Deposit(ctx, cashier, dec("0"), "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCashReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cash.Deposit(ctx, cashier, dec("7000"), "")
	require.NoError(t, err)

	mv, err := f.cash.Reset(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, model.MovementReset, mv.Kind)
	assertAmount(t, "-7000", mv.Amount)
	assertAmount(t, "0", f.balance(t))
}

func TestCashRegisterIsCreatedOnFirstRead(t *testing.T) {
	f := newFixture(t)
	reg, err := f.cash.GetInstance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.CashRegisterID, reg.ID)
	assertAmount(t, "0", reg.Balance)
}

func TestMoneyBeyondTwoDecimalsIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, "12")
	d := f.dish(t, "Alloco", "1500")

	t.Run("payment", func(t *testing.T) {
		_, err := f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: model.MethodCash, Amount: decPtr("10.005")})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("expense", func(t *testing.T) {
		_, err := f.expenses.Record(ctx, accountant, service.ExpenseInput{Description: "Gaz", Amount: dec("0.015")})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("deposit and withdraw", func(t *testing.T) {
		_, err := f.cash.Deposit(ctx, cashier, dec("0.001"), "")
		assert.ErrorIs(t, err, service.ErrValidation)
		_, err = f.cash.Withdraw(ctx, cashier, dec("0.001"), "")
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("line unit price", func(t *testing.T) {
		_, err := f.orders.AddLine(ctx, waiter, o.ID, service.LineInput{DishID: d.ID, Quantity: 1, UnitPrice: decPtr("99.999")})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("dish price", func(t *testing.T) {
		name := "Beignets"
		_, err := f.catalog.CreateDish(ctx, service.DishInput{Name: &name, Price: decPtr("250.125")})
		assert.ErrorIs(t, err, service.ErrValidation)
		_, err = f.catalog.UpdateDish(ctx, d.ID, service.DishInput{Price: decPtr("1500.5001")})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	assertAmount(t, "0", f.balance(t))
	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assertAmount(t, "45000", got.Total)

	t.Run("trailing zeros are fine", func(t *testing.T) {
		p, err := f.payments.Record(ctx, cashier, service.PaymentInput{OrderID: o.ID, Method: model.MethodCash, Amount: decPtr("10.500")})
		require.NoError(t, err)
		assertAmount(t, "10.5", p.Amount)
		assertAmount(t, "10.5", f.balance(t))
	})
}
