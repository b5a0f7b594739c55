package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderRepo provides persistence for orders, their lines and the status
// log. Totals are written by the order engine only; nothing here computes
// them.
type OrderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, table_id, waiter_id, status, total, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o        model.Order
		waiterID sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.TableID, &waiterID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return model.Order{}, err
	}
	o.WaiterID = idPtr(waiterID)
	return o, nil
}

// InsertOrder creates the order row and populates id and timestamps.
func (r *OrderRepo) InsertOrder(ctx context.Context, o *model.Order) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (table_id, waiter_id, status, total) VALUES (?, ?, ?, ?)`,
		o.TableID, nullID(o.WaiterID), o.Status, o.Total)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetOrder(ctx, uint64(id))
	if err != nil {
		return err
	}
	*o = created
	return nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	return o, notFound(err)
}

// LockOrder reads the order with a row lock held until the surrounding
// transaction ends.
func (r *OrderRepo) LockOrder(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id))
	return o, notFound(err)
}

func (r *OrderRepo) ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []any
	if f.TableID != 0 {
		q += ` AND table_id = ?`
		args = append(args, f.TableID)
	}
	if len(f.Statuses) > 0 {
		q += ` AND status IN (?` + strings.Repeat(`, ?`, len(f.Statuses)-1) + `)`
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	clause, pargs := periodClause("created_at", f.Period)
	q += clause
	args = append(args, pargs...)
	q += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *OrderRepo) UpdateOrderTotal(ctx context.Context, id uint64, total decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET total = ? WHERE id = ?`, total, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *OrderRepo) InsertStatusLog(ctx context.Context, l *model.OrderStatusLog) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO order_status_log (order_id, from_status, to_status, changed_by, changed_at) VALUES (?, ?, ?, ?, ?)`,
		l.OrderID, l.From, l.To, nullID(l.ChangedBy), l.ChangedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

func (r *OrderRepo) ListStatusLog(ctx context.Context, orderID uint64) ([]model.OrderStatusLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, from_status, to_status, changed_by, changed_at
		 FROM order_status_log WHERE order_id = ? ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OrderStatusLog
	for rows.Next() {
		var (
			l  model.OrderStatusLog
			by sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.From, &l.To, &by, &l.ChangedAt); err != nil {
			return nil, err
		}
		l.ChangedBy = idPtr(by)
		out = append(out, l)
	}
	return out, rows.Err()
}

const lineSelect = `SELECT l.id, l.order_id, l.dish_id, d.name, l.quantity, l.unit_price, l.created_at
	FROM order_lines l JOIN dishes d ON d.id = l.dish_id`

func scanLine(row interface{ Scan(...any) error }) (model.OrderLine, error) {
	var l model.OrderLine
	err := row.Scan(&l.ID, &l.OrderID, &l.DishID, &l.DishName, &l.Quantity, &l.UnitPrice, &l.CreatedAt)
	return l, err
}

func (r *OrderRepo) GetLine(ctx context.Context, orderID, dishID uint64) (model.OrderLine, error) {
	l, err := scanLine(r.db.QueryRowContext(ctx, lineSelect+` WHERE l.order_id = ? AND l.dish_id = ?`, orderID, dishID))
	return l, notFound(err)
}

// InsertLine adds a line. (order_id, dish_id) is unique; a second insert
// for the same dish returns ErrDuplicate.
func (r *OrderRepo) InsertLine(ctx context.Context, l *model.OrderLine) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO order_lines (order_id, dish_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
		l.OrderID, l.DishID, l.Quantity, l.UnitPrice)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanLine(r.db.QueryRowContext(ctx, lineSelect+` WHERE l.id = ?`, id))
	if err != nil {
		return err
	}
	*l = created
	return nil
}

func (r *OrderRepo) UpdateLineQuantity(ctx context.Context, lineID uint64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE order_lines SET quantity = ? WHERE id = ?`, quantity, lineID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *OrderRepo) DeleteLine(ctx context.Context, lineID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_lines WHERE id = ?`, lineID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *OrderRepo) ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, lineSelect+` WHERE l.order_id = ? ORDER BY l.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
