package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// ExpenseService is the expense ledger. Every expense debits the register
// without a balance check; Withdraw on CashService is the guarded path.
type ExpenseService struct {
	base
	reg register
}

func NewExpenseService(d Deps) *ExpenseService {
	b := newBase(d)
	return &ExpenseService{base: b, reg: register{now: b.now, log: b.log}}
}

type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	CategoryID  *uint64
	// SpentOn defaults to today. Only the date part is kept.
	SpentOn time.Time
}

func (s *ExpenseService) CreateCategory(ctx context.Context, name, description string) (model.ExpenseCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ExpenseCategory{}, validation("name is required")
	}
	c := model.ExpenseCategory{Name: name, Description: strings.TrimSpace(description)}
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		err := q.CreateExpenseCategory(ctx, &c)
		if errors.Is(err, repository.ErrDuplicate) {
			return validation(fmt.Sprintf("expense category %q already exists", name))
		}
		return err
	})
	if err != nil {
		return model.ExpenseCategory{}, err
	}
	return c, nil
}

func (s *ExpenseService) ListCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	var out []model.ExpenseCategory
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListExpenseCategories(ctx)
		return err
	})
	return out, err
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Record writes the expense with actor as author and debits the register.
// The debit goes through even when it leaves the balance negative; the
// expense.recorded event then carries overdrawn=true.
func (s *ExpenseService) Record(ctx context.Context, actor model.Actor, in ExpenseInput) (model.Expense, error) {
	if !actor.Role.MayAuthorExpenses() {
		return model.Expense{}, fmt.Errorf("%w: role %s cannot record expenses", ErrForbidden, actor.Role)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return model.Expense{}, validation("description is required")
	}
	if in.Amount.LessThan(model.MinExpenseAmount) {
		return model.Expense{}, validation("amount must be at least " + model.MinExpenseAmount.String())
	}
	if err := checkScale("amount", in.Amount); err != nil {
		return model.Expense{}, err
	}
	spentOn := in.SpentOn
	if spentOn.IsZero() {
		spentOn = s.now()
	}

	e := model.Expense{
		Description: desc,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		SpentOn:     dateOf(spentOn),
		UserID:      actor.UserID,
	}
	var mv model.CashMovement
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if e.CategoryID != nil {
			if err := checkExpenseCategory(ctx, q, *e.CategoryID); err != nil {
				return err
			}
		}
		if err := q.InsertExpense(ctx, &e); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		var err error
		mv, err = s.reg.debit(ctx, q, Movement{
			Kind:        model.MovementExpense,
			Amount:      e.Amount,
			ReferenceID: &e.ID,
			Note:        e.Description,
			ActorID:     &actor.UserID,
		})
		return err
	})
	if err != nil {
		return model.Expense{}, err
	}
	s.log.Info("expense_recorded", map[string]any{
		"expense_id": e.ID, "amount": e.Amount.String(), "balance": mv.BalanceAfter.String(), "actor_id": actor.UserID,
	})
	s.emit(ctx, event(queue.ExpenseRecorded, e.ID, queue.ExpenseData{
		ExpenseID: e.ID, Amount: e.Amount, Balance: mv.BalanceAfter, Overdrawn: mv.BalanceAfter.IsNegative(),
	}))
	return e, nil
}

func checkExpenseCategory(ctx context.Context, q repository.Querier, id uint64) error {
	cats, err := q.ListExpenseCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return validation(fmt.Sprintf("expense category %d does not exist", id))
}

// Delete removes the expense and credits its amount back.
func (s *ExpenseService) Delete(ctx context.Context, actor model.Actor, expenseID uint64) error {
	var (
		e  model.Expense
		mv model.CashMovement
	)
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		e, err = q.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := q.DeleteExpense(ctx, e.ID); err != nil {
			return err
		}
		mv, err = s.reg.credit(ctx, q, Movement{
			Kind:        model.MovementExpenseReversal,
			Amount:      e.Amount,
			ReferenceID: &e.ID,
			ActorID:     &actor.UserID,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("expense_deleted", map[string]any{
		"expense_id": e.ID, "amount": e.Amount.String(), "balance": mv.BalanceAfter.String(), "actor_id": actor.UserID,
	})
	s.emit(ctx, event(queue.ExpenseDeleted, e.ID, queue.ExpenseData{
		ExpenseID: e.ID, Amount: e.Amount, Balance: mv.BalanceAfter, Overdrawn: mv.BalanceAfter.IsNegative(),
	}))
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id uint64) (model.Expense, error) {
	var e model.Expense
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		e, err = q.GetExpense(ctx, id)
		return err
	})
	return e, err
}

// List returns expenses whose spent_on falls in p, newest first.
func (s *ExpenseService) List(ctx context.Context, p model.Period) ([]model.Expense, error) {
	var out []model.Expense
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListExpenses(ctx, p)
		return err
	})
	return out, err
}
