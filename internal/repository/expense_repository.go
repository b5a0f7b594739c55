package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ExpenseRepo persists expenses and their categories.
type ExpenseRepo struct {
	db DBTX
}

func NewExpenseRepo(db DBTX) *ExpenseRepo { return &ExpenseRepo{db: db} }

func (r *ExpenseRepo) CreateExpenseCategory(ctx context.Context, c *model.ExpenseCategory) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
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
	c.ID = uint64(id)
	return nil
}

func (r *ExpenseRepo) ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ExpenseCategory
	for rows.Next() {
		var c model.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const expenseColumns = `id, description, amount, category_id, spent_on, user_id, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (model.Expense, error) {
	var (
		e          model.Expense
		categoryID sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &categoryID, &e.SpentOn, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Expense{}, err
	}
	e.CategoryID = idPtr(categoryID)
	return e, nil
}

func (r *ExpenseRepo) InsertExpense(ctx context.Context, e *model.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, amount, category_id, spent_on, user_id) VALUES (?, ?, ?, ?, ?)`,
		e.Description, e.Amount, nullID(e.CategoryID), dateOnly(e.SpentOn), e.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetExpense(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = created
	return nil
}

func (r *ExpenseRepo) GetExpense(ctx context.Context, id uint64) (model.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	return e, notFound(err)
}

func (r *ExpenseRepo) DeleteExpense(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListExpenses filters on spent_on, the business date of the expense.
func (r *ExpenseRepo) ListExpenses(ctx context.Context, p model.Period) ([]model.Expense, error) {
	clause, args := periodClause("spent_on", p)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE 1=1`+clause+` ORDER BY spent_on DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
