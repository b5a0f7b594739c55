package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// PaymentService is the payment ledger. Recording a payment is the only way
// money from an order reaches the cash register.
type PaymentService struct {
	base
	reg register
}

func NewPaymentService(d Deps) *PaymentService {
	b := newBase(d)
	return &PaymentService{base: b, reg: register{now: b.now, log: b.log}}
}

// PaymentInput settles OrderID. A nil Amount charges the order total.
type PaymentInput struct {
	OrderID uint64
	Method  model.PaymentMethod
	Amount  *decimal.Decimal
}

// Record creates the payment and credits the register in one transaction.
// An order is paid at most once: a second attempt is ErrAlreadyPaid whether
// the pre-check or the unique key catches it.
func (s *PaymentService) Record(ctx context.Context, actor model.Actor, in PaymentInput) (model.Payment, error) {
	method, ok := model.ParsePaymentMethod(string(in.Method))
	if !ok {
		return model.Payment{}, validation(fmt.Sprintf("unknown payment method %q", in.Method))
	}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return model.Payment{}, validation("amount cannot be negative")
		}
		if err := checkScale("amount", *in.Amount); err != nil {
			return model.Payment{}, err
		}
	}

	var (
		p  model.Payment
		mv model.CashMovement
	)
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		o, err := q.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o.Status == model.StatusCancelled {
			return fmt.Errorf("%w: order %d is cancelled", ErrOrderClosed, o.ID)
		}
		if existing, err := q.GetPaymentByOrder(ctx, o.ID); err == nil {
			return fmt.Errorf("%w: payment %d", ErrAlreadyPaid, existing.ID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		p = model.Payment{OrderID: o.ID, Method: method, Amount: o.Total, OperatorID: actor.UserID, PaidAt: s.now()}
		if in.Amount != nil {
			p.Amount = *in.Amount
		}
		if err := q.InsertPayment(ctx, &p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: order %d", ErrAlreadyPaid, o.ID)
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		mv, err = s.reg.credit(ctx, q, Movement{
			Kind:        model.MovementPayment,
			Amount:      p.Amount,
			ReferenceID: &p.ID,
			ActorID:     &actor.UserID,
		})
		return err
	})
	if err != nil {
		return model.Payment{}, err
	}
	s.log.Info("payment_recorded", map[string]any{
		"payment_id": p.ID, "order_id": p.OrderID, "method": p.Method,
		"amount": p.Amount.String(), "balance": mv.BalanceAfter.String(), "actor_id": actor.UserID,
	})
	s.emit(ctx, event(queue.PaymentRecorded, p.OrderID, queue.PaymentData{
		PaymentID: p.ID, OrderID: p.OrderID, Method: string(p.Method), Amount: p.Amount, Balance: mv.BalanceAfter,
	}))
	return p, nil
}

// Delete removes the payment and debits the register by the same amount, so
// record followed by delete leaves the balance where it was.
func (s *PaymentService) Delete(ctx context.Context, actor model.Actor, paymentID uint64) error {
	var (
		p  model.Payment
		mv model.CashMovement
	)
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		p, err = q.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := q.DeletePayment(ctx, p.ID); err != nil {
			return err
		}
		mv, err = s.reg.debit(ctx, q, Movement{
			Kind:        model.MovementPaymentReversal,
			Amount:      p.Amount,
			ReferenceID: &p.ID,
			ActorID:     &actor.UserID,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("payment_deleted", map[string]any{
		"payment_id": p.ID, "order_id": p.OrderID, "amount": p.Amount.String(),
		"balance": mv.BalanceAfter.String(), "actor_id": actor.UserID,
	})
	s.emit(ctx, event(queue.PaymentDeleted, p.OrderID, queue.PaymentData{
		PaymentID: p.ID, OrderID: p.OrderID, Method: string(p.Method), Amount: p.Amount, Balance: mv.BalanceAfter,
	}))
	return nil
}

func (s *PaymentService) Get(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		p, err = q.GetPayment(ctx, id)
		return err
	})
	return p, err
}

func (s *PaymentService) GetByOrder(ctx context.Context, orderID uint64) (model.Payment, error) {
	var p model.Payment
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		p, err = q.GetPaymentByOrder(ctx, orderID)
		return err
	})
	return p, err
}

// List returns payments in p, newest first.
func (s *PaymentService) List(ctx context.Context, p model.Period) ([]model.Payment, error) {
	var out []model.Payment
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListPayments(ctx, p)
		return err
	})
	return out, err
}
