// Package queue carries domain events to the message brokers and consumes
// them back for the audit trail.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType doubles as the RabbitMQ routing key.
type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	OrderLineChanged   EventType = "order.line_changed"
	PaymentRecorded    EventType = "payment.recorded"
	PaymentDeleted     EventType = "payment.deleted"
	ExpenseRecorded    EventType = "expense.recorded"
	ExpenseDeleted     EventType = "expense.deleted"
	CashAdjusted       EventType = "cash.adjusted"
	ReportDaily        EventType = "report.daily"
	AlertLowBalance    EventType = "alert.low_balance"
)

// Event is the envelope shared by every sink.  AggregateID is the Kafka
// message key, so events of one order stay on one partition.
type Event struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id.
func NewEvent(typ EventType, aggregateID string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        typ,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        raw,
	}, nil
}

// Publisher delivers events.  Implementations must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Payloads.  Amounts are decimals so consumers never see float rounding.

type OrderCreatedData struct {
	OrderID  uint64          `json:"order_id"`
	TableID  uint64          `json:"table_id"`
	WaiterID *uint64         `json:"waiter_id,omitempty"`
	Status   string          `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Lines    int             `json:"lines"`
}

type OrderStatusChangedData struct {
	OrderID uint64 `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	ActorID uint64 `json:"actor_id"`
}

// OrderLineChangedData has Quantity 0 when the line was removed.
type OrderLineChangedData struct {
	OrderID  uint64          `json:"order_id"`
	DishID   uint64          `json:"dish_id"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"order_total"`
}

type PaymentData struct {
	PaymentID uint64          `json:"payment_id"`
	OrderID   uint64          `json:"order_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
}

type ExpenseData struct {
	ExpenseID uint64          `json:"expense_id"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Overdrawn bool            `json:"overdrawn"`
}

type CashAdjustedData struct {
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Overdrawn bool            `json:"overdrawn"`
	ActorID   uint64          `json:"actor_id,omitempty"`
	Note      string          `json:"note,omitempty"`
}

type DailyReportData struct {
	Date              string          `json:"date"`
	Currency          string          `json:"currency"`
	Recipients        []string        `json:"recipients"`
	TotalIn           decimal.Decimal `json:"total_in"`
	TotalOut          decimal.Decimal `json:"total_out"`
	DayBalance        decimal.Decimal `json:"day_balance"`
	CumulativeIn      decimal.Decimal `json:"cumulative_in"`
	CumulativeOut     decimal.Decimal `json:"cumulative_out"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	PaymentCount      int             `json:"payment_count"`
	ExpenseCount      int             `json:"expense_count"`
}

type LowBalanceAlertData struct {
	Date              string          `json:"date"`
	Currency          string          `json:"currency"`
	Recipients        []string        `json:"recipients"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	Threshold         decimal.Decimal `json:"threshold"`
}
