package repository

import (
	"context"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// PaymentRepo persists payments. payments.order_id carries a unique key so
// an order can be settled once; a second insert returns ErrDuplicate.
type PaymentRepo struct {
	db DBTX
}

func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, order_id, method, amount, operator_id, paid_at`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.OperatorID, &p.PaidAt)
	return p, err
}

func (r *PaymentRepo) InsertPayment(ctx context.Context, p *model.Payment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (order_id, method, amount, operator_id, paid_at) VALUES (?, ?, ?, ?, ?)`,
		p.OrderID, p.Method, p.Amount, p.OperatorID, p.PaidAt.UTC())
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
	p.ID = uint64(id)
	return nil
}

func (r *PaymentRepo) GetPayment(ctx context.Context, id uint64) (model.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	return p, notFound(err)
}

func (r *PaymentRepo) GetPaymentByOrder(ctx context.Context, orderID uint64) (model.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = ?`, orderID))
	return p, notFound(err)
}

func (r *PaymentRepo) DeletePayment(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PaymentRepo) ListPayments(ctx context.Context, p model.Period) ([]model.Payment, error) {
	clause, args := periodClause("paid_at", p)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE 1=1`+clause+` ORDER BY paid_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		pay, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pay)
	}
	return out, rows.Err()
}
