package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Movement describes one change to the register. Amount is positive; the
// direction comes from the call (credit or debit).
type Movement struct {
	Kind        model.MovementKind
	Amount      decimal.Decimal
	ReferenceID *uint64
	Note        string
	ActorID     *uint64
}

// register mutates the singleton cash register inside the caller's unit of
// work. It never opens a transaction of its own, so a ledger write and its
// register effect commit or roll back together.
type register struct {
	now func() time.Time
	log *logger.Logger
}

// instance returns the register row locked for the rest of the transaction,
// creating it with a zero balance on first use.
func (r register) instance(ctx context.Context, q repository.Querier) (model.CashRegister, error) {
	if err := q.EnsureCashRegister(ctx); err != nil {
		return model.CashRegister{}, fmt.Errorf("ensure cash register: %w", err)
	}
	reg, err := q.LockCashRegister(ctx)
	if err != nil {
		return model.CashRegister{}, fmt.Errorf("lock cash register: %w", err)
	}
	return reg, nil
}

func (r register) apply(ctx context.Context, q repository.Querier, m Movement, signed decimal.Decimal) (model.CashMovement, error) {
	reg, err := r.instance(ctx, q)
	if err != nil {
		return model.CashMovement{}, err
	}
	balance := reg.Balance.Add(signed)
	if err := q.SetCashBalance(ctx, balance); err != nil {
		return model.CashMovement{}, fmt.Errorf("set cash balance: %w", err)
	}
	mv := model.CashMovement{
		Kind:         m.Kind,
		Amount:       signed,
		BalanceAfter: balance,
		ReferenceID:  m.ReferenceID,
		Note:         m.Note,
		ActorID:      m.ActorID,
		CreatedAt:    r.now(),
	}
	if err := q.InsertCashMovement(ctx, &mv); err != nil {
		return model.CashMovement{}, fmt.Errorf("insert cash movement: %w", err)
	}
	return mv, nil
}

func (r register) credit(ctx context.Context, q repository.Querier, m Movement) (model.CashMovement, error) {
	return r.apply(ctx, q, m, m.Amount)
}

// debit subtracts unconditionally. A balance that goes negative is accepted
// and logged; the movement's BalanceAfter shows the deficit.
func (r register) debit(ctx context.Context, q repository.Querier, m Movement) (model.CashMovement, error) {
	mv, err := r.apply(ctx, q, m, m.Amount.Neg())
	if err != nil {
		return mv, err
	}
	if mv.BalanceAfter.IsNegative() {
		r.log.Warn("cash_register_overdrawn", map[string]any{
			"kind":    m.Kind,
			"amount":  m.Amount.String(),
			"balance": mv.BalanceAfter.String(),
		})
	}
	return mv, nil
}

// CashService exposes the register to operators: reading it, manual deposits
// and withdrawals, and the administrative reset.
type CashService struct {
	base
	reg register
}

func NewCashService(d Deps) *CashService {
	b := newBase(d)
	return &CashService{base: b, reg: register{now: b.now, log: b.log}}
}

// GetInstance returns the register, creating it with balance 0 if absent.
func (s *CashService) GetInstance(ctx context.Context) (model.CashRegister, error) {
	var reg model.CashRegister
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if err := q.EnsureCashRegister(ctx); err != nil {
			return err
		}
		var err error
		reg, err = q.GetCashRegister(ctx)
		return err
	})
	return reg, err
}

func (s *CashService) Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal, note string) (model.CashMovement, error) {
	if !amount.IsPositive() {
		return model.CashMovement{}, validation("amount must be positive")
	}
	if err := checkScale("amount", amount); err != nil {
		return model.CashMovement{}, err
	}
	var mv model.CashMovement
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		mv, err = s.reg.credit(ctx, q, Movement{Kind: model.MovementDeposit, Amount: amount, Note: note, ActorID: &actor.UserID})
		return err
	})
	if err != nil {
		return model.CashMovement{}, err
	}
	s.log.Info("cash_deposit", map[string]any{"amount": amount.String(), "balance": mv.BalanceAfter.String(), "actor_id": actor.UserID})
	s.emit(ctx, s.adjusted(mv, actor))
	return mv, nil
}

// Withdraw is the guarded debit: it refuses to take the balance below zero.
func (s *CashService) Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, note string) (model.CashMovement, error) {
	if !amount.IsPositive() {
		return model.CashMovement{}, validation("amount must be positive")
	}
	if err := checkScale("amount", amount); err != nil {
		return model.CashMovement{}, err
	}
	var mv model.CashMovement
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		reg, err := s.reg.instance(ctx, q)
		if err != nil {
			return err
		}
		if reg.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, reg.Balance.String(), amount.String())
		}
		mv, err = s.reg.debit(ctx, q, Movement{Kind: model.MovementWithdrawal, Amount: amount, Note: note, ActorID: &actor.UserID})
		return err
	})
	if err != nil {
		return model.CashMovement{}, err
	}
	s.log.Info("cash_withdrawal", map[string]any{"amount": amount.String(), "balance": mv.BalanceAfter.String(), "actor_id": actor.UserID})
	s.emit(ctx, s.adjusted(mv, actor))
	return mv, nil
}

// Reset sets the balance to zero without looking at the ledgers. The
// movement records the amount that was written off.
func (s *CashService) Reset(ctx context.Context, actor model.Actor) (model.CashMovement, error) {
	var mv model.CashMovement
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		reg, err := s.reg.instance(ctx, q)
		if err != nil {
			return err
		}
		mv, err = s.reg.apply(ctx, q, Movement{Kind: model.MovementReset, Note: "reset", ActorID: &actor.UserID}, reg.Balance.Neg())
		return err
	})
	if err != nil {
		return model.CashMovement{}, err
	}
	s.log.Warn("cash_reset", map[string]any{"written_off": mv.Amount.Neg().String(), "actor_id": actor.UserID})
	s.emit(ctx, s.adjusted(mv, actor))
	return mv, nil
}

// Movements lists the journal newest first. limit <= 0 means all.
func (s *CashService) Movements(ctx context.Context, p model.Period, limit int) ([]model.CashMovement, error) {
	var out []model.CashMovement
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListCashMovements(ctx, p, limit)
		return err
	})
	return out, err
}

func (s *CashService) adjusted(mv model.CashMovement, actor model.Actor) pendingEvent {
	return event(queue.CashAdjusted, mv.ID, queue.CashAdjustedData{
		Kind:      string(mv.Kind),
		Amount:    mv.Amount,
		Balance:   mv.BalanceAfter,
		Overdrawn: mv.BalanceAfter.IsNegative(),
		ActorID:   actor.UserID,
		Note:      mv.Note,
	})
}
