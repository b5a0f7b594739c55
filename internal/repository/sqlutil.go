package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so a repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullID(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func idPtr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// periodClause renders " AND col >= ? AND col < ?" for the bounds that are set.
func periodClause(col string, p model.Period) (string, []any) {
	var (
		clause string
		args   []any
	)
	if !p.From.IsZero() {
		clause += " AND " + col + " >= ?"
		args = append(args, p.From.UTC())
	}
	if !p.To.IsZero() {
		clause += " AND " + col + " < ?"
		args = append(args, p.To.UTC())
	}
	return clause, args
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
