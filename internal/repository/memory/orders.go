package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func (q *Queries) InsertOrder(_ context.Context, o *model.Order) error {
	if _, ok := q.st.tables[o.TableID]; !ok {
		return repository.ErrNotFound
	}
	o.ID = q.st.next("orders")
	o.CreatedAt = q.now()
	o.UpdatedAt = o.CreatedAt
	o.Lines = nil
	q.st.orders[o.ID] = *o
	return nil
}

func (q *Queries) GetOrder(_ context.Context, id uint64) (model.Order, error) {
	o, ok := q.st.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

// LockOrder is GetOrder: the store mutex already serializes units of work.
func (q *Queries) LockOrder(ctx context.Context, id uint64) (model.Order, error) {
	return q.GetOrder(ctx, id)
}

func (q *Queries) ListOrders(_ context.Context, f model.OrderFilter) ([]model.Order, error) {
	var out []model.Order
	for _, o := range q.st.orders {
		if f.TableID != 0 && o.TableID != f.TableID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if !f.Period.Contains(o.CreatedAt) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsStatus(list []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (q *Queries) UpdateOrderStatus(_ context.Context, id uint64, status model.OrderStatus) error {
	o, ok := q.st.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = q.now()
	q.st.orders[id] = o
	return nil
}

func (q *Queries) UpdateOrderTotal(_ context.Context, id uint64, total decimal.Decimal) error {
	o, ok := q.st.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Total = total
	o.UpdatedAt = q.now()
	q.st.orders[id] = o
	return nil
}

func (q *Queries) InsertStatusLog(_ context.Context, l *model.OrderStatusLog) error {
	l.ID = q.st.next("order_status_log")
	q.st.statusLog = append(q.st.statusLog, *l)
	return nil
}

func (q *Queries) ListStatusLog(_ context.Context, orderID uint64) ([]model.OrderStatusLog, error) {
	var out []model.OrderStatusLog
	for _, l := range q.st.statusLog {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (q *Queries) withDishName(l model.OrderLine) model.OrderLine {
	l.DishName = q.st.dishes[l.DishID].Name
	return l
}

func (q *Queries) GetLine(_ context.Context, orderID, dishID uint64) (model.OrderLine, error) {
	for _, l := range q.st.lines {
		if l.OrderID == orderID && l.DishID == dishID {
			return q.withDishName(l), nil
		}
	}
	return model.OrderLine{}, repository.ErrNotFound
}

func (q *Queries) InsertLine(ctx context.Context, l *model.OrderLine) error {
	if _, ok := q.st.orders[l.OrderID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := q.st.dishes[l.DishID]; !ok {
		return repository.ErrNotFound
	}
	if _, err := q.GetLine(ctx, l.OrderID, l.DishID); err == nil {
		return repository.ErrDuplicate
	}
	l.ID = q.st.next("order_lines")
	l.CreatedAt = q.now()
	*l = q.withDishName(*l)
	q.st.lines[l.ID] = *l
	return nil
}

func (q *Queries) UpdateLineQuantity(_ context.Context, lineID uint64, quantity int) error {
	l, ok := q.st.lines[lineID]
	if !ok {
		return repository.ErrNotFound
	}
	l.Quantity = quantity
	q.st.lines[lineID] = l
	return nil
}

func (q *Queries) DeleteLine(_ context.Context, lineID uint64) error {
	if _, ok := q.st.lines[lineID]; !ok {
		return repository.ErrNotFound
	}
	delete(q.st.lines, lineID)
	return nil
}

func (q *Queries) ListLines(_ context.Context, orderID uint64) ([]model.OrderLine, error) {
	var out []model.OrderLine
	for _, id := range sortedKeys(q.st.lines) {
		if l := q.st.lines[id]; l.OrderID == orderID {
			out = append(out, q.withDishName(l))
		}
	}
	return out, nil
}
