package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Catalog is implemented by *service.CatalogService.
type Catalog interface {
	CreateTable(ctx context.Context, in service.TableInput) (model.Table, error)
	GetTable(ctx context.Context, id uint64) (model.Table, error)
	ListTables(ctx context.Context) ([]model.Table, error)
	SetTableOccupied(ctx context.Context, id uint64, occupied bool) error
	CreateCategory(ctx context.Context, name, description string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateDish(ctx context.Context, in service.DishInput) (model.Dish, error)
	UpdateDish(ctx context.Context, id uint64, in service.DishInput) (model.Dish, error)
	GetDish(ctx context.Context, id uint64) (model.Dish, error)
	ListDishes(ctx context.Context, onlyAvailable bool) ([]model.Dish, error)
}

type CatalogHandler struct {
	Catalog Catalog
}

func NewCatalogHandler(c Catalog) *CatalogHandler { return &CatalogHandler{Catalog: c} }

// ListTables handles GET /v1/tables.
func (h *CatalogHandler) ListTables(c echo.Context) error {
	out, err := h.Catalog.ListTables(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetTable handles GET /v1/tables/:id.
func (h *CatalogHandler) GetTable(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	t, err := h.Catalog.GetTable(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// CreateTable handles POST /v1/tables.
func (h *CatalogHandler) CreateTable(c echo.Context) error {
	var body struct {
		Number string  `json:"number"`
		Seats  int     `json:"seats"`
		UserID *uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.Catalog.CreateTable(c.Request().Context(), service.TableInput{
		Number: body.Number, Seats: body.Seats, UserID: body.UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// SetOccupied handles PUT /v1/tables/:id/occupied.
func (h *CatalogHandler) SetOccupied(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	var body struct {
		Occupied *bool `json:"occupied"`
	}
	if err := c.Bind(&body); err != nil || body.Occupied == nil {
		return badRequest(c, "occupied is required")
	}
	if err := h.Catalog.SetTableOccupied(c.Request().Context(), id, *body.Occupied); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategories handles GET /v1/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	out, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CreateCategory handles POST /v1/categories.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat, err := h.Catalog.CreateCategory(c.Request().Context(), body.Name, body.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

type dishBody struct {
	Name                *string          `json:"name"`
	Description         *string          `json:"description"`
	Price               *decimal.Decimal `json:"price"`
	Kind                *model.DishKind  `json:"kind"`
	Available           *bool            `json:"available"`
	CategoryID          *uint64          `json:"category_id"`
	RequiresPreparation *bool            `json:"requires_preparation"`
}

func (b dishBody) input() service.DishInput {
	return service.DishInput{
		Name:                b.Name,
		Description:         b.Description,
		Price:               b.Price,
		Kind:                b.Kind,
		Available:           b.Available,
		CategoryID:          b.CategoryID,
		RequiresPreparation: b.RequiresPreparation,
	}
}

// ListDishes handles GET /v1/dishes; ?available=true hides unavailable
// dishes.
func (h *CatalogHandler) ListDishes(c echo.Context) error {
	only := false
	if raw := c.QueryParam("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "available must be a boolean")
		}
		only = v
	}
	out, err := h.Catalog.ListDishes(c.Request().Context(), only)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetDish handles GET /v1/dishes/:id.
func (h *CatalogHandler) GetDish(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid dish id")
	}
	d, err := h.Catalog.GetDish(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDish handles POST /v1/dishes.
func (h *CatalogHandler) CreateDish(c echo.Context) error {
	var body dishBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, err := h.Catalog.CreateDish(c.Request().Context(), body.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDish handles PUT /v1/dishes/:id. Absent fields are left unchanged.
func (h *CatalogHandler) UpdateDish(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid dish id")
	}
	var body dishBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, err := h.Catalog.UpdateDish(c.Request().Context(), id, body.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
