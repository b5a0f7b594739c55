package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableRepo persists dining tables. Table numbers are unique; a duplicate
// insert returns ErrDuplicate.
type TableRepo struct {
	db DBTX
}

func NewTableRepo(db DBTX) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, number, seats, user_id, occupied, created_at`

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var (
		t      model.Table
		userID sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Number, &t.Seats, &userID, &t.Occupied, &t.CreatedAt); err != nil {
		return model.Table{}, err
	}
	t.UserID = idPtr(userID)
	return t, nil
}

// CreateTable inserts t and reads back the generated id and defaults.
func (r *TableRepo) CreateTable(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tables (number, seats, user_id, occupied) VALUES (?, ?, ?, ?)`,
		t.Number, t.Seats, nullID(t.UserID), t.Occupied)
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
	created, err := r.GetTable(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = created
	return nil
}

func (r *TableRepo) GetTable(ctx context.Context, id uint64) (model.Table, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = ?`, id)
	t, err := scanTable(row)
	return t, notFound(err)
}

func (r *TableRepo) ListTables(ctx context.Context) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TableRepo) SetTableOccupied(ctx context.Context, id uint64, occupied bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tables SET occupied = ? WHERE id = ?`, occupied, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow turns a zero-row UPDATE/DELETE into ErrNotFound. The DSN sets
// clientFoundRows, so an UPDATE writing an unchanged value still counts.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
