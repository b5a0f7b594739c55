package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order was settled.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "CASH"
	MethodCard        PaymentMethod = "CARD"
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	MethodWire        PaymentMethod = "WIRE"
	MethodCheck       PaymentMethod = "CHECK"
)

// PaymentMethods lists every method in display order.
var PaymentMethods = []PaymentMethod{MethodCash, MethodCard, MethodMobileMoney, MethodWire, MethodCheck}

// ParsePaymentMethod accepts any casing and surrounding blanks.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PaymentMethods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Payment settles exactly one order; payments.order_id is unique.
type Payment struct {
	ID         uint64          `json:"id"`          // payments.id
	OrderID    uint64          `json:"order_id"`    // payments.order_id
	Method     PaymentMethod   `json:"method"`      // payments.method
	Amount     decimal.Decimal `json:"amount"`      // payments.amount
	OperatorID uint64          `json:"operator_id"` // payments.operator_id
	PaidAt     time.Time       `json:"paid_at"`     // payments.paid_at
}
