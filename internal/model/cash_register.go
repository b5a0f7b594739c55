package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegisterID is the fixed primary key of the only register row.
const CashRegisterID uint64 = 1

// CashRegister holds the running balance. Exactly one row exists.
type CashRegister struct {
	ID        uint64          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementKind says why the balance moved.
type MovementKind string

const (
	MovementPayment         MovementKind = "PAYMENT"
	MovementPaymentReversal MovementKind = "PAYMENT_REVERSAL"
	MovementExpense         MovementKind = "EXPENSE"
	MovementExpenseReversal MovementKind = "EXPENSE_REVERSAL"
	MovementDeposit         MovementKind = "DEPOSIT"
	MovementWithdrawal      MovementKind = "WITHDRAWAL"
	MovementReset           MovementKind = "RESET"
)

// CashMovement is an append-only journal entry written with every balance
// change. Amount is signed: credits are positive, debits negative.
type CashMovement struct {
	ID           uint64          `json:"id"`
	Kind         MovementKind    `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ReferenceID  *uint64         `json:"reference_id,omitempty"`
	Note         string          `json:"note,omitempty"`
	ActorID      *uint64         `json:"actor_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
