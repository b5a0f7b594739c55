package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// CatalogService manages tables, menu categories and dishes.
type CatalogService struct {
	base
}

func NewCatalogService(d Deps) *CatalogService { return &CatalogService{base: newBase(d)} }

type TableInput struct {
	Number string
	Seats  int // 0 means DefaultTableSeats
	UserID *uint64
}

func (s *CatalogService) CreateTable(ctx context.Context, in TableInput) (model.Table, error) {
	t := model.Table{Number: strings.TrimSpace(in.Number), Seats: in.Seats, UserID: in.UserID}
	if t.Number == "" {
		return model.Table{}, validation("table number is required")
	}
	if t.Seats == 0 {
		t.Seats = model.DefaultTableSeats
	}
	if t.Seats < model.MinTableSeats || t.Seats > model.MaxTableSeats {
		return model.Table{}, validation("seats must be between 1 and 20")
	}
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if t.UserID != nil {
			u, err := q.GetUser(ctx, *t.UserID)
			if err != nil {
				return err
			}
			if u.Role != model.RoleTable {
				return validation("linked user must have the TABLE role")
			}
		}
		return q.CreateTable(ctx, &t)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return model.Table{}, validation("table number already exists")
	}
	return t, err
}

func (s *CatalogService) GetTable(ctx context.Context, id uint64) (model.Table, error) {
	var t model.Table
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		t, err = q.GetTable(ctx, id)
		return err
	})
	return t, err
}

func (s *CatalogService) ListTables(ctx context.Context) ([]model.Table, error) {
	var out []model.Table
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListTables(ctx)
		return err
	})
	return out, err
}

func (s *CatalogService) SetTableOccupied(ctx context.Context, id uint64, occupied bool) error {
	return s.store.WithinTx(ctx, func(q repository.Querier) error {
		return q.SetTableOccupied(ctx, id, occupied)
	})
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (model.Category, error) {
	c := model.Category{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if c.Name == "" {
		return model.Category{}, validation("category name is required")
	}
	err := s.store.WithinTx(ctx, func(q repository.Querier) error { return q.CreateCategory(ctx, &c) })
	if errors.Is(err, repository.ErrDuplicate) {
		return model.Category{}, validation("category already exists")
	}
	return c, err
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListCategories(ctx)
		return err
	})
	return out, err
}

// DishInput carries optional fields as pointers. On create, nil Kind means
// main, nil Available and RequiresPreparation mean true. On update, nil
// leaves the field unchanged.
type DishInput struct {
	Name                *string
	Description         *string
	Price               *decimal.Decimal
	Kind                *model.DishKind
	Available           *bool
	CategoryID          *uint64
	RequiresPreparation *bool
}

func (in DishInput) applyTo(d *model.Dish) {
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		d.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		d.Price = *in.Price
	}
	if in.Kind != nil {
		d.Kind = *in.Kind
	}
	if in.Available != nil {
		d.Available = *in.Available
	}
	if in.CategoryID != nil {
		d.CategoryID = in.CategoryID
	}
	if in.RequiresPreparation != nil {
		d.RequiresPreparation = *in.RequiresPreparation
	}
}

func validateDish(d model.Dish) error {
	switch {
	case d.Name == "":
		return validation("dish name is required")
	case d.Price.LessThan(model.MinDishPrice):
		return validation("price must be at least 0.01")
	case !model.FitsMoneyScale(d.Price):
		return checkScale("price", d.Price)
	case !d.Kind.Valid():
		return validation("unknown dish kind")
	}
	return nil
}

func (s *CatalogService) CreateDish(ctx context.Context, in DishInput) (model.Dish, error) {
	d := model.Dish{Kind: model.DishMain, Available: true, RequiresPreparation: true}
	in.applyTo(&d)
	if err := validateDish(d); err != nil {
		return model.Dish{}, err
	}
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		if err := checkCategory(ctx, q, d.CategoryID); err != nil {
			return err
		}
		return q.CreateDish(ctx, &d)
	})
	if err != nil {
		return model.Dish{}, err
	}
	s.log.Info("dish_created", map[string]any{"dish_id": d.ID, "price": d.Price.String()})
	return d, nil
}

// UpdateDish edits a dish. Lines already on orders keep their snapshot
// price.
func (s *CatalogService) UpdateDish(ctx context.Context, id uint64, in DishInput) (model.Dish, error) {
	var d model.Dish
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		d, err = q.GetDish(ctx, id)
		if err != nil {
			return err
		}
		in.applyTo(&d)
		if err := validateDish(d); err != nil {
			return err
		}
		if in.CategoryID != nil {
			if err := checkCategory(ctx, q, d.CategoryID); err != nil {
				return err
			}
		}
		return q.UpdateDish(ctx, &d)
	})
	if err != nil {
		return model.Dish{}, err
	}
	return d, nil
}

func checkCategory(ctx context.Context, q repository.Querier, id *uint64) error {
	if id == nil {
		return nil
	}
	cats, err := q.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c.ID == *id {
			return nil
		}
	}
	return validation("unknown category")
}

func (s *CatalogService) GetDish(ctx context.Context, id uint64) (model.Dish, error) {
	var d model.Dish
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		d, err = q.GetDish(ctx, id)
		return err
	})
	return d, err
}

func (s *CatalogService) ListDishes(ctx context.Context, onlyAvailable bool) ([]model.Dish, error) {
	var out []model.Dish
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListDishes(ctx, onlyAvailable)
		return err
	})
	return out, err
}
