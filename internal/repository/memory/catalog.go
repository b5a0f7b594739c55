package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func (q *Queries) CreateTable(_ context.Context, t *model.Table) error {
	for _, existing := range q.st.tables {
		if existing.Number == t.Number {
			return repository.ErrDuplicate
		}
	}
	t.ID = q.st.next("tables")
	t.CreatedAt = q.now()
	q.st.tables[t.ID] = *t
	return nil
}

func (q *Queries) GetTable(_ context.Context, id uint64) (model.Table, error) {
	t, ok := q.st.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return t, nil
}

func (q *Queries) ListTables(_ context.Context) ([]model.Table, error) {
	var out []model.Table
	for _, t := range q.st.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (q *Queries) SetTableOccupied(_ context.Context, id uint64, occupied bool) error {
	t, ok := q.st.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Occupied = occupied
	q.st.tables[id] = t
	return nil
}

func (q *Queries) CreateCategory(_ context.Context, c *model.Category) error {
	for _, existing := range q.st.categories {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = q.st.next("categories")
	q.st.categories[c.ID] = *c
	return nil
}

func (q *Queries) ListCategories(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range q.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (q *Queries) CreateDish(_ context.Context, d *model.Dish) error {
	d.ID = q.st.next("dishes")
	d.CreatedAt = q.now()
	d.UpdatedAt = d.CreatedAt
	q.st.dishes[d.ID] = *d
	return nil
}

func (q *Queries) UpdateDish(_ context.Context, d *model.Dish) error {
	old, ok := q.st.dishes[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	d.CreatedAt = old.CreatedAt
	d.UpdatedAt = q.now()
	q.st.dishes[d.ID] = *d
	return nil
}

func (q *Queries) GetDish(_ context.Context, id uint64) (model.Dish, error) {
	d, ok := q.st.dishes[id]
	if !ok {
		return model.Dish{}, repository.ErrNotFound
	}
	return d, nil
}

func (q *Queries) ListDishes(_ context.Context, onlyAvailable bool) ([]model.Dish, error) {
	var out []model.Dish
	for _, id := range sortedKeys(q.st.dishes) {
		d := q.st.dishes[id]
		if onlyAvailable && !d.Available {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
