package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func (q *Queries) InsertPayment(_ context.Context, p *model.Payment) error {
	for _, existing := range q.st.payments {
		if existing.OrderID == p.OrderID {
			return repository.ErrDuplicate
		}
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = q.now()
	}
	p.ID = q.st.next("payments")
	q.st.payments[p.ID] = *p
	return nil
}

func (q *Queries) GetPayment(_ context.Context, id uint64) (model.Payment, error) {
	p, ok := q.st.payments[id]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

func (q *Queries) GetPaymentByOrder(_ context.Context, orderID uint64) (model.Payment, error) {
	for _, p := range q.st.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return model.Payment{}, repository.ErrNotFound
}

func (q *Queries) DeletePayment(_ context.Context, id uint64) error {
	if _, ok := q.st.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(q.st.payments, id)
	return nil
}

func (q *Queries) ListPayments(_ context.Context, p model.Period) ([]model.Payment, error) {
	var out []model.Payment
	for _, pay := range q.st.payments {
		if p.Contains(pay.PaidAt) {
			out = append(out, pay)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.After(out[j].PaidAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (q *Queries) CreateExpenseCategory(_ context.Context, c *model.ExpenseCategory) error {
	for _, existing := range q.st.expenseCategories {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = q.st.next("expense_categories")
	q.st.expenseCategories[c.ID] = *c
	return nil
}

func (q *Queries) ListExpenseCategories(_ context.Context) ([]model.ExpenseCategory, error) {
	var out []model.ExpenseCategory
	for _, c := range q.st.expenseCategories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (q *Queries) InsertExpense(_ context.Context, e *model.Expense) error {
	e.ID = q.st.next("expenses")
	e.CreatedAt = q.now()
	e.UpdatedAt = e.CreatedAt
	q.st.expenses[e.ID] = *e
	return nil
}

func (q *Queries) GetExpense(_ context.Context, id uint64) (model.Expense, error) {
	e, ok := q.st.expenses[id]
	if !ok {
		return model.Expense{}, repository.ErrNotFound
	}
	return e, nil
}

func (q *Queries) DeleteExpense(_ context.Context, id uint64) error {
	if _, ok := q.st.expenses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(q.st.expenses, id)
	return nil
}

func (q *Queries) ListExpenses(_ context.Context, p model.Period) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range q.st.expenses {
		if p.Contains(e.SpentOn) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SpentOn.Equal(out[j].SpentOn) {
			return out[i].SpentOn.After(out[j].SpentOn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (q *Queries) EnsureCashRegister(_ context.Context) error {
	if q.st.register == nil {
		now := q.now()
		q.st.register = &model.CashRegister{ID: model.CashRegisterID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	}
	return nil
}

func (q *Queries) GetCashRegister(_ context.Context) (model.CashRegister, error) {
	if q.st.register == nil {
		return model.CashRegister{}, repository.ErrNotFound
	}
	return *q.st.register, nil
}

func (q *Queries) LockCashRegister(ctx context.Context) (model.CashRegister, error) {
	return q.GetCashRegister(ctx)
}

func (q *Queries) SetCashBalance(_ context.Context, balance decimal.Decimal) error {
	if q.st.register == nil {
		return repository.ErrNotFound
	}
	q.st.register.Balance = balance
	q.st.register.UpdatedAt = q.now()
	return nil
}

func (q *Queries) InsertCashMovement(_ context.Context, m *model.CashMovement) error {
	m.ID = q.st.next("cash_movements")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = q.now()
	}
	q.st.movements = append(q.st.movements, *m)
	return nil
}

// ListCashMovements returns newest first.
func (q *Queries) ListCashMovements(_ context.Context, p model.Period, limit int) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for i := len(q.st.movements) - 1; i >= 0; i-- {
		m := q.st.movements[i]
		if !p.Contains(m.CreatedAt) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
