package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// DishRepo persists menu categories and dishes.
type DishRepo struct {
	db DBTX
}

func NewDishRepo(db DBTX) *DishRepo { return &DishRepo{db: db} }

func (r *DishRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
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

func (r *DishRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const dishColumns = `id, name, description, price, kind, available, category_id, requires_preparation, created_at, updated_at`

func scanDish(row interface{ Scan(...any) error }) (model.Dish, error) {
	var (
		d          model.Dish
		categoryID sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Kind, &d.Available,
		&categoryID, &d.RequiresPreparation, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Dish{}, err
	}
	d.CategoryID = idPtr(categoryID)
	return d, nil
}

func (r *DishRepo) CreateDish(ctx context.Context, d *model.Dish) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dishes (name, description, price, kind, available, category_id, requires_preparation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Description, d.Price, d.Kind, d.Available, nullID(d.CategoryID), d.RequiresPreparation)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetDish(ctx, uint64(id))
	if err != nil {
		return err
	}
	*d = created
	return nil
}

// UpdateDish rewrites every editable column. Existing order lines keep their
// snapshot price.
func (r *DishRepo) UpdateDish(ctx context.Context, d *model.Dish) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dishes SET name = ?, description = ?, price = ?, kind = ?, available = ?,
		        category_id = ?, requires_preparation = ?
		 WHERE id = ?`,
		d.Name, d.Description, d.Price, d.Kind, d.Available, nullID(d.CategoryID), d.RequiresPreparation, d.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	updated, err := r.GetDish(ctx, d.ID)
	if err != nil {
		return err
	}
	*d = updated
	return nil
}

func (r *DishRepo) GetDish(ctx context.Context, id uint64) (model.Dish, error) {
	d, err := scanDish(r.db.QueryRowContext(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = ?`, id))
	return d, notFound(err)
}

func (r *DishRepo) ListDishes(ctx context.Context, onlyAvailable bool) ([]model.Dish, error) {
	q := `SELECT ` + dishColumns + ` FROM dishes`
	if onlyAvailable {
		q += ` WHERE available = TRUE`
	}
	q += ` ORDER BY kind, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
