package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ReportRepo runs the aggregate queries behind the dashboards and the daily
// balance. Sums are computed in SQL; COALESCE keeps empty periods at zero.
type ReportRepo struct {
	db DBTX
}

func NewReportRepo(db DBTX) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) countAndSum(ctx context.Context, q string, args []any) (int, decimal.Decimal, error) {
	var (
		n   int
		sum decimal.Decimal
	)
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n, &sum); err != nil {
		return 0, decimal.Zero, err
	}
	return n, sum, nil
}

func (r *ReportRepo) PaymentTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error) {
	clause, args := periodClause("paid_at", p)
	return r.countAndSum(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM payments WHERE 1=1`+clause, args)
}

func (r *ReportRepo) PaymentStatsByMethod(ctx context.Context, p model.Period) ([]model.MethodStat, error) {
	clause, args := periodClause("paid_at", p)
	rows, err := r.db.QueryContext(ctx,
		`SELECT method, COUNT(*), COALESCE(SUM(amount), 0) FROM payments WHERE 1=1`+clause+
			` GROUP BY method ORDER BY method`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MethodStat
	for rows.Next() {
		var s model.MethodStat
		if err := rows.Scan(&s.Method, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ReportRepo) ExpenseTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error) {
	clause, args := periodClause("spent_on", p)
	return r.countAndSum(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM expenses WHERE 1=1`+clause, args)
}

// OrderTotals ignores cancelled orders.
func (r *ReportRepo) OrderTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error) {
	clause, args := periodClause("created_at", p)
	args = append([]any{model.StatusCancelled}, args...)
	return r.countAndSum(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders WHERE status <> ?`+clause, args)
}

// PopularDishes ranks dishes by quantity ordered in non-cancelled orders.
func (r *ReportRepo) PopularDishes(ctx context.Context, p model.Period, limit int) ([]model.DishStat, error) {
	clause, args := periodClause("o.created_at", p)
	args = append([]any{model.StatusCancelled}, args...)
	q := `SELECT l.dish_id, d.name, SUM(l.quantity), COALESCE(SUM(l.quantity * l.unit_price), 0)
	      FROM order_lines l
	      JOIN orders o ON o.id = l.order_id
	      JOIN dishes d ON d.id = l.dish_id
	      WHERE o.status <> ?` + clause + `
	      GROUP BY l.dish_id, d.name
	      ORDER BY SUM(l.quantity) DESC, l.dish_id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.DishStat
	for rows.Next() {
		var s model.DishStat
		if err := rows.Scan(&s.DishID, &s.DishName, &s.Quantity, &s.Revenue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
