package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// CashRegisterRepo owns the single cash_register row (id = 1) and the
// cash_movements journal.
type CashRegisterRepo struct {
	db DBTX
}

func NewCashRegisterRepo(db DBTX) *CashRegisterRepo { return &CashRegisterRepo{db: db} }

// EnsureCashRegister creates the row with a zero balance if it is missing.
// Concurrent callers are safe: the fixed id makes the insert idempotent.
func (r *CashRegisterRepo) EnsureCashRegister(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cash_register (id, balance) VALUES (?, 0) ON DUPLICATE KEY UPDATE id = id`,
		model.CashRegisterID)
	return err
}

const cashRegisterSelect = `SELECT id, balance, created_at, updated_at FROM cash_register WHERE id = ?`

func (r *CashRegisterRepo) GetCashRegister(ctx context.Context) (model.CashRegister, error) {
	var c model.CashRegister
	err := r.db.QueryRowContext(ctx, cashRegisterSelect, model.CashRegisterID).
		Scan(&c.ID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err)
}

// LockCashRegister reads the row with SELECT ... FOR UPDATE. Concurrent
// ledger writes serialize here, which closes the read-modify-write race on
// the balance.
func (r *CashRegisterRepo) LockCashRegister(ctx context.Context) (model.CashRegister, error) {
	var c model.CashRegister
	err := r.db.QueryRowContext(ctx, cashRegisterSelect+` FOR UPDATE`, model.CashRegisterID).
		Scan(&c.ID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err)
}

func (r *CashRegisterRepo) SetCashBalance(ctx context.Context, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cash_register SET balance = ? WHERE id = ?`, balance, model.CashRegisterID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *CashRegisterRepo) InsertCashMovement(ctx context.Context, m *model.CashMovement) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cash_movements (kind, amount, balance_after, reference_id, note, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Kind, m.Amount, m.BalanceAfter, nullID(m.ReferenceID), m.Note, nullID(m.ActorID), m.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListCashMovements returns the newest movements first. limit <= 0 means
// no limit.
func (r *CashRegisterRepo) ListCashMovements(ctx context.Context, p model.Period, limit int) ([]model.CashMovement, error) {
	clause, args := periodClause("created_at", p)
	q := `SELECT id, kind, amount, balance_after, reference_id, note, actor_id, created_at
	      FROM cash_movements WHERE 1=1` + clause + ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CashMovement
	for rows.Next() {
		var (
			m          model.CashMovement
			ref, actor sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Kind, &m.Amount, &m.BalanceAfter, &ref, &m.Note, &actor, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ReferenceID = idPtr(ref)
		m.ActorID = idPtr(actor)
		out = append(out, m)
	}
	return out, rows.Err()
}
