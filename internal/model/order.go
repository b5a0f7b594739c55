package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen/service workflow state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "EN_ATTENTE"
	StatusPreparing  OrderStatus = "EN_PREPARATION"
	StatusInProgress OrderStatus = "EN_COURS"
	StatusCompleted  OrderStatus = "TERMINEE"
	StatusCancelled  OrderStatus = "ANNULEE"
)

// transitions is the only source of legal status moves. Terminal states map
// to an empty set.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is in the adjacency table.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	out := make([]OrderStatus, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// KitchenQueue lists the statuses shown to the kitchen.
var KitchenQueue = []OrderStatus{StatusPending, StatusPreparing, StatusInProgress}

// Order is a row of the `orders` table. Total is derived from the lines and
// is rewritten whenever a line changes.
type Order struct {
	ID        uint64          `json:"id"`                  // orders.id
	TableID   uint64          `json:"table_id"`            // orders.table_id
	WaiterID  *uint64         `json:"waiter_id,omitempty"` // orders.waiter_id (nullable)
	Status    OrderStatus     `json:"status"`              // orders.status
	Total     decimal.Decimal `json:"total"`               // orders.total
	CreatedAt time.Time       `json:"created_at"`          // orders.created_at
	UpdatedAt time.Time       `json:"updated_at"`          // orders.updated_at
	Lines     []OrderLine     `json:"lines,omitempty"`
}

// OrderLine is a row of `order_lines`. UnitPrice is a snapshot of the dish
// price taken when the line was created and is never resynced.
type OrderLine struct {
	ID        uint64          `json:"id"`         // order_lines.id
	OrderID   uint64          `json:"order_id"`   // order_lines.order_id
	DishID    uint64          `json:"dish_id"`    // order_lines.dish_id
	DishName  string          `json:"dish_name"`  // joined from dishes.name
	Quantity  int             `json:"quantity"`   // order_lines.quantity
	UnitPrice decimal.Decimal `json:"unit_price"` // order_lines.unit_price
	CreatedAt time.Time       `json:"created_at"` // order_lines.created_at
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines returns the order total for the given lines.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// OrderStatusLog records one accepted transition.
type OrderStatusLog struct {
	ID        uint64      `json:"id"`
	OrderID   uint64      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy *uint64     `json:"changed_by,omitempty"`
	ChangedAt time.Time   `json:"changed_at"`
}

// OrderFilter narrows ListOrders. Empty fields do not filter.
type OrderFilter struct {
	TableID  uint64
	Statuses []OrderStatus
	Period   Period
	Limit    int
}
