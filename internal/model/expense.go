package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is a named bucket for expenses; names are unique.
type ExpenseCategory struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MinExpenseAmount is the smallest expense accepted.
var MinExpenseAmount = decimal.RequireFromString("0.01")

// Expense is money taken out of the register for a business cost.
//
// Fields:
//  SpentOn – calendar date of the expense (no time part).
//  UserID  – author, an ADMIN or ACCOUNTANT.
type Expense struct {
	ID          uint64          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  *uint64         `json:"category_id,omitempty"`
	SpentOn     time.Time       `json:"spent_on"`
	UserID      uint64          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
