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

// OrderService is the order engine. It owns orders and their lines, keeps
// every order total equal to the sum of its line subtotals and guards the
// status state machine.
type OrderService struct {
	base
}

func NewOrderService(d Deps) *OrderService { return &OrderService{base: newBase(d)} }

// LineInput adds or replaces the line for DishID. A nil UnitPrice snapshots
// the current dish price.
type LineInput struct {
	DishID    uint64
	Quantity  int
	UnitPrice *decimal.Decimal
}

type CreateOrderInput struct {
	TableID  uint64
	WaiterID *uint64
	// Assisted orders are taken by staff at the table and start EN_COURS.
	Assisted bool
	Lines    []LineInput
}

func validateLine(l LineInput) error {
	if l.Quantity <= 0 {
		return validation(fmt.Sprintf("quantity for dish %d must be positive", l.DishID))
	}
	if l.UnitPrice != nil {
		if l.UnitPrice.IsNegative() {
			return validation(fmt.Sprintf("unit price for dish %d cannot be negative", l.DishID))
		}
		return checkScale("unit price", *l.UnitPrice)
	}
	return nil
}

// Create writes the order, its lines and its total in one transaction. Any
// non-positive quantity rejects the whole order before anything is written.
func (s *OrderService) Create(ctx context.Context, actor model.Actor, in CreateOrderInput) (model.Order, error) {
	seen := make(map[uint64]bool, len(in.Lines))
	for _, l := range in.Lines {
		if err := validateLine(l); err != nil {
			return model.Order{}, err
		}
		if seen[l.DishID] {
			return model.Order{}, validation(fmt.Sprintf("dish %d listed twice", l.DishID))
		}
		seen[l.DishID] = true
	}
	if in.WaiterID == nil && actor.Role == model.RoleWaiter {
		in.WaiterID = &actor.UserID
	}

	var o model.Order
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		o, err = s.createTx(ctx, q, in)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	s.log.Info("order_created", map[string]any{"order_id": o.ID, "table_id": o.TableID, "status": o.Status, "total": o.Total.String()})
	s.emit(ctx, s.createdEvent(o))
	return o, nil
}

func (s *OrderService) createTx(ctx context.Context, q repository.Querier, in CreateOrderInput) (model.Order, error) {
	if _, err := q.GetTable(ctx, in.TableID); err != nil {
		return model.Order{}, fmt.Errorf("table %d: %w", in.TableID, err)
	}
	o := model.Order{TableID: in.TableID, WaiterID: in.WaiterID, Status: model.StatusPending, Total: decimal.Zero}
	if in.Assisted {
		o.Status = model.StatusInProgress
	}
	if err := q.InsertOrder(ctx, &o); err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	for _, l := range in.Lines {
		if err := upsertLine(ctx, q, o.ID, l); err != nil {
			return model.Order{}, err
		}
	}
	return loadWithTotal(ctx, q, o.ID)
}

func (s *OrderService) createdEvent(o model.Order) pendingEvent {
	return event(queue.OrderCreated, o.ID, queue.OrderCreatedData{
		OrderID:  o.ID,
		TableID:  o.TableID,
		WaiterID: o.WaiterID,
		Status:   string(o.Status),
		Total:    o.Total,
		Lines:    len(o.Lines),
	})
}

// upsertLine creates the (order, dish) line or replaces the quantity of the
// existing one. The snapshot price of an existing line is kept.
func upsertLine(ctx context.Context, q repository.Querier, orderID uint64, in LineInput) error {
	dish, err := q.GetDish(ctx, in.DishID)
	if err != nil {
		return fmt.Errorf("dish %d: %w", in.DishID, err)
	}
	if !dish.Available {
		return fmt.Errorf("%w: %s", ErrDishUnavailable, dish.Name)
	}
	existing, err := q.GetLine(ctx, orderID, in.DishID)
	switch {
	case err == nil:
		return q.UpdateLineQuantity(ctx, existing.ID, in.Quantity)
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	price := dish.Price
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}
	line := model.OrderLine{OrderID: orderID, DishID: in.DishID, Quantity: in.Quantity, UnitPrice: price}
	if err := q.InsertLine(ctx, &line); err != nil {
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// recomputeTotal sums the line subtotals and persists the result on the
// order. Every line mutation calls it before its transaction commits.
func recomputeTotal(ctx context.Context, q repository.Querier, orderID uint64) (decimal.Decimal, []model.OrderLine, error) {
	lines, err := q.ListLines(ctx, orderID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	total := model.SumLines(lines)
	if err := q.UpdateOrderTotal(ctx, orderID, total); err != nil {
		return decimal.Zero, nil, fmt.Errorf("update total: %w", err)
	}
	return total, lines, nil
}

func loadWithTotal(ctx context.Context, q repository.Querier, orderID uint64) (model.Order, error) {
	if _, _, err := recomputeTotal(ctx, q, orderID); err != nil {
		return model.Order{}, err
	}
	return loadOrder(ctx, q, orderID)
}

func loadOrder(ctx context.Context, q repository.Querier, orderID uint64) (model.Order, error) {
	o, err := q.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	o.Lines, err = q.ListLines(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// lockOpen locks the order row and refuses terminal orders.
func lockOpen(ctx context.Context, q repository.Querier, orderID uint64) (model.Order, error) {
	o, err := q.LockOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status.Terminal() {
		return model.Order{}, fmt.Errorf("%w: order %d is %s", ErrOrderClosed, o.ID, o.Status)
	}
	return o, nil
}

// AddLine creates or updates the line for in.DishID and recomputes the
// total in the same transaction.
func (s *OrderService) AddLine(ctx context.Context, actor model.Actor, orderID uint64, in LineInput) (model.Order, error) {
	if err := validateLine(in); err != nil {
		return model.Order{}, err
	}
	var o model.Order
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if _, err := lockOpen(ctx, q, orderID); err != nil {
			return err
		}
		if err := upsertLine(ctx, q, orderID, in); err != nil {
			return err
		}
		var err error
		o, err = loadWithTotal(ctx, q, orderID)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	s.log.Info("order_line_set", map[string]any{"order_id": orderID, "dish_id": in.DishID, "quantity": in.Quantity, "total": o.Total.String(), "actor_id": actor.UserID})
	s.emit(ctx, event(queue.OrderLineChanged, orderID, queue.OrderLineChangedData{
		OrderID: orderID, DishID: in.DishID, Quantity: in.Quantity, Total: o.Total,
	}))
	return o, nil
}

// RemoveLine deletes the line for dishID and recomputes the total.
func (s *OrderService) RemoveLine(ctx context.Context, actor model.Actor, orderID, dishID uint64) (model.Order, error) {
	var o model.Order
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if _, err := lockOpen(ctx, q, orderID); err != nil {
			return err
		}
		line, err := q.GetLine(ctx, orderID, dishID)
		if err != nil {
			return fmt.Errorf("line for dish %d: %w", dishID, err)
		}
		if err := q.DeleteLine(ctx, line.ID); err != nil {
			return err
		}
		o, err = loadWithTotal(ctx, q, orderID)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	s.log.Info("order_line_removed", map[string]any{"order_id": orderID, "dish_id": dishID, "total": o.Total.String(), "actor_id": actor.UserID})
	s.emit(ctx, event(queue.OrderLineChanged, orderID, queue.OrderLineChangedData{
		OrderID: orderID, DishID: dishID, Quantity: 0, Total: o.Total,
	}))
	return o, nil
}

// RecomputeTotal re-derives the total from the lines. Line mutations already
// do this; the method exists for repair after manual data fixes.
func (s *OrderService) RecomputeTotal(ctx context.Context, orderID uint64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if _, err := q.LockOrder(ctx, orderID); err != nil {
			return err
		}
		var err error
		total, _, err = recomputeTotal(ctx, q, orderID)
		return err
	})
	return total, err
}

// Transition moves the order to status to when the adjacency table allows
// it. A refused transition changes nothing.
func (s *OrderService) Transition(ctx context.Context, actor model.Actor, orderID uint64, to model.OrderStatus) (model.Order, error) {
	if !to.Valid() {
		return model.Order{}, validation(fmt.Sprintf("unknown status %q", to))
	}
	var (
		o    model.Order
		from model.OrderStatus
	)
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		cur, err := q.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		from = cur.Status
		if !model.CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if err := q.UpdateOrderStatus(ctx, orderID, to); err != nil {
			return err
		}
		entry := model.OrderStatusLog{OrderID: orderID, From: from, To: to, ChangedBy: &actor.UserID, ChangedAt: s.now()}
		if err := q.InsertStatusLog(ctx, &entry); err != nil {
			return err
		}
		o, err = loadOrder(ctx, q, orderID)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	s.log.Info("order_status_changed", map[string]any{"order_id": orderID, "from": from, "to": to, "actor_id": actor.UserID})
	s.emit(ctx, event(queue.OrderStatusChanged, orderID, queue.OrderStatusChangedData{
		OrderID: orderID, From: string(from), To: string(to), ActorID: actor.UserID,
	}))
	return o, nil
}

// Get returns the order with its lines.
func (s *OrderService) Get(ctx context.Context, orderID uint64) (model.Order, error) {
	var o model.Order
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		o, err = loadOrder(ctx, q, orderID)
		return err
	})
	return o, err
}

// List returns orders without lines.
func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, validation(fmt.Sprintf("unknown status %q", st))
		}
	}
	var out []model.Order
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListOrders(ctx, f)
		return err
	})
	return out, err
}

// KitchenQueue lists the orders the kitchen still has to handle.
func (s *OrderService) KitchenQueue(ctx context.Context) ([]model.Order, error) {
	return s.List(ctx, model.OrderFilter{Statuses: model.KitchenQueue})
}

// History returns the accepted transitions of an order, oldest first.
func (s *OrderService) History(ctx context.Context, orderID uint64) ([]model.OrderStatusLog, error) {
	var out []model.OrderStatusLog
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetOrder(ctx, orderID); err != nil {
			return err
		}
		var err error
		out, err = q.ListStatusLog(ctx, orderID)
		return err
	})
	return out, err
}
